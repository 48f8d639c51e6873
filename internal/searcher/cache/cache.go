// Package cache memoises ranked results in Redis. Concurrent misses for the
// same query are collapsed with singleflight.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "retrieval:"

// Store is satisfied by *pkgredis.Client.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	store     Store
	ttl       time.Duration
	namespace string
	group     singleflight.Group
	logger    *slog.Logger
	hits      atomic.Int64
	misses    atomic.Int64
}

// Namespace scopes cache keys to everything that changes a ranking: the
// scoring parameters, the result limit, and the corpus and index paths. The
// system label stays readable; the rest is hashed.
func Namespace(cfg config.RetrievalConfig) string {
	fingerprint := fmt.Sprintf("idf=%s|w=%s|k1=%g|b=%g|limit=%d|docs=%s|index=%s",
		cfg.IDF, cfg.Weighting, cfg.K1, cfg.B, cfg.Limit, cfg.DocsDir, cfg.IndexFile)
	sum := sha256.Sum256([]byte(fingerprint))
	return fmt.Sprintf("%s:%x", cfg.SystemLabel, sum[:8])
}

// New returns a cache whose keys are scoped by namespace, normally built by
// Namespace, so differently configured services never share entries.
func New(store Store, ttl time.Duration, namespace string) *QueryCache {
	return &QueryCache{
		store:     store,
		ttl:       ttl,
		namespace: namespace,
		logger:    slog.Default().With("component", "query-cache"),
	}
}

// Get looks up the ranking for text. The returned QueryID is whatever was
// stored; callers stamp their own.
func (c *QueryCache) Get(ctx context.Context, text string) (*ranker.RankedResult, bool) {
	key := c.buildKey(text)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result ranker.RankedResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, text string, result *ranker.RankedResult) {
	key := c.buildKey(text)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	text string,
	computeFn func() (*ranker.RankedResult, error),
) (*ranker.RankedResult, bool, error) {
	if result, ok := c.Get(ctx, text); ok {
		return result, true, nil
	}
	key := c.buildKey(text)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, text, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	result := *val.(*ranker.RankedResult)
	return &result, false, nil
}

func (c *QueryCache) Invalidate(ctx context.Context) error {
	pattern := keyPrefix + c.namespace + ":*"
	deleted, err := c.store.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the whitespace-normalised query. Term order and case are
// kept because both can change the ranking.
func (c *QueryCache) buildKey(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s%s:%x", keyPrefix, c.namespace, hash[:16])
}
