// Package cache keeps serialized owner list pages in Redis.
//
// Pages are keyed by a per-owner version counter; Invalidate bumps the
// counter so stale pages are never read again and expire on their own TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"docingest/internal/config"
)

// ListCache stores owner list pages. Implementations never fail the caller;
// a cache error behaves as a miss.
//
// GetPage reports the owner version it observed. SetPage stores under that version
// only, so a page read before an Invalidate can never be served after it.
type ListCache interface {
	GetPage(ctx context.Context, owner string, limit, offset int) (page []byte, version int64, ok bool)
	SetPage(ctx context.Context, owner string, version int64, limit, offset int, page []byte)
	Invalidate(ctx context.Context, owner string)
}

// NoVersion is returned by GetPage when the owner version could not be read.
// SetPage ignores it.
const NoVersion int64 = -1

// Redis is a ListCache backed by go-redis. A nil *Redis is a valid, always-missing cache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedis connects to cfg.Addr. An empty Addr yields a nil cache and no error.
func NewRedis(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("event", "redis_connected").Str("addr", cfg.Addr).Msg("redis connected")
	return NewRedisWithClient(client, time.Duration(cfg.PageTTLSec)*time.Second, log), nil
}

func NewRedisWithClient(client *redis.Client, ttl time.Duration, log zerolog.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, log: log}
}

func versionKey(owner string) string {
	return "docs:owner:" + owner + ":ver"
}

func pageKey(owner string, version int64, limit, offset int) string {
	return fmt.Sprintf("docs:owner:%s:v%d:%d:%d", owner, version, limit, offset)
}

func (r *Redis) version(ctx context.Context, owner string) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(owner)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (r *Redis) GetPage(ctx context.Context, owner string, limit, offset int) ([]byte, int64, bool) {
	if r == nil {
		return nil, NoVersion, false
	}
	v, err := r.version(ctx, owner)
	if err != nil {
		r.log.Warn().Err(err).Str("event", "cache_read_failed").Msg("cache version read failed")
		return nil, NoVersion, false
	}
	b, err := r.client.Get(ctx, pageKey(owner, v, limit, offset)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Str("event", "cache_read_failed").Msg("cache page read failed")
		}
		return nil, v, false
	}
	return b, v, true
}

// SetPage stores page under version, as returned by the GetPage that missed.
// If the owner was invalidated in between, the page lands under a retired key
// and is never read.
func (r *Redis) SetPage(ctx context.Context, owner string, version int64, limit, offset int, page []byte) {
	if r == nil || version < 0 {
		return
	}
	if err := r.client.Set(ctx, pageKey(owner, version, limit, offset), page, r.ttl).Err(); err != nil {
		r.log.Warn().Err(err).Str("event", "cache_write_failed").Msg("cache page write failed")
	}
}

func (r *Redis) Invalidate(ctx context.Context, owner string) {
	if r == nil {
		return
	}
	if err := r.client.Incr(ctx, versionKey(owner)).Err(); err != nil {
		r.log.Warn().Err(err).Str("event", "cache_invalidate_failed").Str("owner", owner).Msg("cache invalidate failed")
	}
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}
