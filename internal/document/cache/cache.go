// Package cache provides a Redis-backed cache for document statistics
// responses. Entries are keyed by document ID and result size, deduplicated
// with singleflight, and invalidated wholesale whenever the corpus grows,
// since every stored IDF value shifts with the document count.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/avdeevsm/tfidf-analyzer/pkg/config"
	pkgredis "github.com/avdeevsm/tfidf-analyzer/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "stats:"

// StatsCache caches JSON-serialisable statistics payloads in Redis.
type StatsCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a StatsCache over the given Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *StatsCache {
	return &StatsCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "stats-cache"),
	}
}

// Get returns the cached payload for the document, unmarshalled into dst.
func (c *StatsCache) Get(ctx context.Context, docID string, topN int, dst any) bool {
	key := c.buildKey(docID, topN)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return false
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "doc_id", docID, "key", key)
	return true
}

// Set stores the payload with the configured TTL.
func (c *StatsCache) Set(ctx context.Context, docID string, topN int, payload any) {
	key := c.buildKey(docID, topN)
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// Do runs computeFn at most once per key across concurrent callers and
// caches the result. The bool result reports whether the value came from
// the cache.
func (c *StatsCache) Do(
	ctx context.Context,
	docID string,
	topN int,
	dst *json.RawMessage,
	computeFn func() (any, error),
) (bool, error) {
	var cached json.RawMessage
	if c.Get(ctx, docID, topN, &cached) {
		*dst = cached
		return true, nil
	}
	key := c.buildKey(docID, topN)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		var again json.RawMessage
		if c.Get(ctx, docID, topN, &again) {
			return again, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("marshaling statistics: %w", err)
		}
		c.Set(ctx, docID, topN, json.RawMessage(data))
		return json.RawMessage(data), nil
	})
	if err != nil {
		return false, err
	}
	*dst = val.(json.RawMessage)
	return false, nil
}

// InvalidateAll drops every cached statistics entry.
func (c *StatsCache) InvalidateAll(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating statistics cache: %w", err)
	}
	c.logger.Debug("statistics cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counters.
func (c *StatsCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *StatsCache) buildKey(docID string, topN int) string {
	return fmt.Sprintf("%s%s:top=%d", keyPrefix, docID, topN)
}
