package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"oseplatform/models"
	"oseplatform/services/csvformat"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const configOptionsCacheKey = "seriesNotifications:configOptions"

// OptionsCache stores the serialized config options. Get returns nil bytes on a miss.
type OptionsCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisOptionsCache is an OptionsCache over a go-redis client.
type RedisOptionsCache struct {
	client *redis.Client
}

func NewRedisOptionsCache(client *redis.Client) *RedisOptionsCache {
	return &RedisOptionsCache{client: client}
}

func (c *RedisOptionsCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (c *RedisOptionsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// ConfigOptions returns the customers and CSV formats offered by the configure step.
func (s *DefaultNotificationService) ConfigOptions(ctx context.Context) (*models.ConfigOptions, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, configOptionsCacheKey); err != nil {
			s.logger.Warn("config options cache read failed", zap.Error(err))
		} else if cached != nil {
			var opts models.ConfigOptions
			if err := json.Unmarshal(cached, &opts); err == nil {
				return &opts, nil
			}
		}
	}

	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ConfigOptions: %w", err)
	}
	opts := &models.ConfigOptions{Customers: customers, CSVFormats: csvformat.Formats()}

	if s.cache != nil {
		if b, err := json.Marshal(opts); err == nil {
			if err := s.cache.Set(ctx, configOptionsCacheKey, b, s.cacheTTL); err != nil {
				s.logger.Warn("config options cache write failed", zap.Error(err))
			}
		}
	}
	return opts, nil
}
