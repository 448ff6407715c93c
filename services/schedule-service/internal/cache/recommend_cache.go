// Package cache holds the short-lived Redis cache for recommendation
// responses. The engine is deterministic, so a response can be replayed
// for identical inputs until the day's schedule changes; a short TTL keeps
// staleness bounded without any invalidation plumbing.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 30 * time.Second

type RecommendCache struct {
	rdb    *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

func NewRecommendCache(rdb *redis.Client, logger *slog.Logger, ttl time.Duration) *RecommendCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RecommendCache{rdb: rdb, logger: logger, ttl: ttl}
}

// Key hashes the full input tuple; any change to any parameter lands on a
// different cache entry.
func Key(tutorID, date string, duration int, kind string, lat, lng, excludeID string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		tutorID, date, fmt.Sprintf("%d", duration), kind, lat, lng, excludeID,
	}, "|")))
	return "recommend:" + hex.EncodeToString(sum[:])
}

// Get returns the cached response body, or false on miss. Redis errors are
// treated as misses so the request still succeeds off the database.
func (c *RecommendCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.Warn("recommend cache read failed", "err", err)
		}
		return nil, false
	}
	return raw, true
}

func (c *RecommendCache) Set(ctx context.Context, key string, body []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("recommend cache write failed", "err", err)
	}
}
