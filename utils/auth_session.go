// File: oseplatform/utils/auth_session.go
package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const RevokedTokenPrefix = "revokedToken:"

// TokenRevoker remembers logged-out tokens until they would have expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// RedisTokenRevoker keeps revoked token hashes in Redis with a TTL.
type RedisTokenRevoker struct {
	client *redis.Client
}

// NewRedisTokenRevoker wraps a Redis client.
func NewRedisTokenRevoker(client *redis.Client) *RedisTokenRevoker {
	return &RedisTokenRevoker{client: client}
}

// Revoke stores the hash until ttl elapses. Non-positive TTLs are ignored.
func (r *RedisTokenRevoker) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, RevokedTokenPrefix+tokenHash, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the hash was revoked.
func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := r.client.Exists(ctx, RevokedTokenPrefix+tokenHash).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}
