package workflow

import (
	"fmt"
	"os"
	"path/filepath"
)

// Downloader receives the CSV produced by a successful send.
type Downloader interface {
	Download(filename string, content []byte) error
}

// DirDownloader writes downloads into a directory.
type DirDownloader struct {
	Dir string
}

func (d DirDownloader) Download(filename string, content []byte) error {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid file name %q", filename)
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.Dir, name), content, 0o644)
}

// DiscardDownloader drops downloads.
type DiscardDownloader struct{}

func (DiscardDownloader) Download(string, []byte) error { return nil }
