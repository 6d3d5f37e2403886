package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const reportGenerationKey = "reportes:gen"

// ReportCache stores computed sales reports in Redis under a generation-versioned
// key. Invalidar bumps the generation, so entries written before a sale commits
// are never read again. A nil *ReportCache or a nil Redis client disables caching.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReportCache{rdb: rdb, ttl: ttl}
}

func (c *ReportCache) enabled() bool { return c != nil && c.rdb != nil }

// key returns the versioned cache key, or "" when the generation cannot be read.
func (c *ReportCache) key(ctx context.Context, parts ...string) string {
	if !c.enabled() {
		return ""
	}
	gen, err := c.rdb.Get(ctx, reportGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return ""
	}
	return fmt.Sprintf("reportes:v%d:%s", gen, strings.Join(parts, ":"))
}

func (c *ReportCache) get(ctx context.Context, key string, dst any) bool {
	if key == "" {
		return false
	}
	cached, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(cached, dst) == nil
}

// set is best effort; errors are ignored.
func (c *ReportCache) set(ctx context.Context, key string, v any) {
	if key == "" {
		return
	}
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

// Invalidar bumps the cache generation. Called after every committed change
// that alters report results.
func (c *ReportCache) Invalidar(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Incr(context.WithoutCancel(ctx), reportGenerationKey).Err(); err != nil {
		log.Warn().Err(err).Msg("report cache: failed to bump generation")
	}
}
