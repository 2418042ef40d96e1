// Package resultcache persists full search results in a key-value store,
// keyed by a content-derived hash of the (question, city) pair.
package resultcache

import (
	"context"
	"crypto/md5" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yellowbooks/bizsearch/internal/db"
	"github.com/yellowbooks/bizsearch/internal/domain"
)

// keyPrefix namespaces search result entries; DeleteAll removes exactly this range.
var keyPrefix = domain.KeyPrefix + "ai:q:"

// cityAll is the canonical token for "no city filter".
const cityAll = "all"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Cache stores serialized search results. Every operation absorbs store
// errors and returns a safe default: search must degrade to "always miss"
// when the cache infrastructure is down, never fail.
type Cache struct {
	store  store
	logger *zap.Logger
}

// New creates a result cache over a key-value store.
func New(s store, logger *zap.Logger) *Cache {
	return &Cache{store: s, logger: logger}
}

// Key derives the deterministic cache key for a (question, city) pair.
// An absent city normalizes to the "all" token, so Key(q, "") == Key(q, "all").
func Key(question, city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		city = cityAll
	}
	text := strings.TrimSpace(question) + "|" + city
	h := md5.Sum([]byte(text)) //nolint:gosec // content addressing, not security
	return keyPrefix + hex.EncodeToString(h[:])
}

// Get returns the cached result for the pair, reporting whether it was found.
func (c *Cache) Get(ctx context.Context, question, city string) (domain.SearchResult, bool) {
	key := Key(question, city)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search result", zap.String("key", key), zap.Error(err))
		}
		return domain.SearchResult{}, false
	}

	var res domain.SearchResult
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Warn("Failed to parse cached search result", zap.String("key", key), zap.Error(err))
		return domain.SearchResult{}, false
	}

	return res, true
}

// Set stores a result with the given TTL, reporting success.
func (c *Cache) Set(ctx context.Context, question, city string, res domain.SearchResult, ttl time.Duration) bool {
	key := Key(question, city)

	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("Failed to serialize search result", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := c.store.SetWithTTL(ctx, key, data, ttl); err != nil {
		c.logger.Warn("Failed to cache search result", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

// Delete removes the entry for the pair, reporting success.
func (c *Cache) Delete(ctx context.Context, question, city string) bool {
	key := Key(question, city)

	if err := c.store.Del(ctx, key); err != nil {
		c.logger.Warn("Failed to delete cached search result", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

// DeleteAll removes every entry under the search cache prefix and returns
// the count removed.
func (c *Cache) DeleteAll(ctx context.Context) int {
	keys, err := c.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		c.logger.Warn("Failed to scan search cache keys", zap.Error(err))
		return 0
	}

	deleted := 0
	for _, key := range keys {
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to delete cached search result", zap.String("key", key), zap.Error(err))
			continue
		}
		deleted++
	}

	return deleted
}
