package storage

import "context"

// Archive keeps a copy of every generated CSV and returns a URL to it.
type Archive interface {
	Store(ctx context.Context, filename string, content []byte) (string, error)
}

// NopArchive is used when no archive backend is configured.
type NopArchive struct{}

// Store does nothing and returns an empty URL.
func (NopArchive) Store(context.Context, string, []byte) (string, error) { return "", nil }
