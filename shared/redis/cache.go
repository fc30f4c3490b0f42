package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ViewCache stores read projections of type T as JSON strings. Cache errors
// never reach callers: a failed read is a miss and a failed write is logged,
// so the store stays the source of truth.
type ViewCache[T any] struct {
	client *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewViewCache keeps entries for ttl; zero means no expiry.
func NewViewCache[T any](client *goredis.Client, ttl time.Duration, logger *zap.Logger) *ViewCache[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewCache[T]{client: client, ttl: ttl, logger: logger.Named("view_cache")}
}

func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, false
	case err != nil:
		c.logger.Warn("get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	view := new(T)
	if err := json.Unmarshal(raw, view); err != nil {
		c.logger.Warn("dropping undecodable entry", zap.String("key", key), zap.Error(err))
		c.Delete(ctx, key)
		return nil, false
	}
	return view, true
}

func (c *ViewCache[T]) Set(ctx context.Context, key string, view *T) {
	raw, err := json.Marshal(view)
	if err != nil {
		c.logger.Warn("encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("delete failed", zap.String("key", key), zap.Error(err))
	}
}
