package feed

import (
	"fmt"
	"log/slog"
	"time"

	"newsly/internal/cache"
)

const (
	TypeRSS  = "rss"
	TypeAtom = "atom"
	TypeJSON = "json"
)

// CacheKey identifies one rendered document: a snapshot, an output format
// and an optional category selector.
type CacheKey struct {
	RunID    string
	Type     string
	Category string
}

func NewCacheKey(runID, feedType, category string) CacheKey {
	return CacheKey{
		RunID:    runID,
		Type:     feedType,
		Category: category,
	}
}

func (k CacheKey) ToString() string {
	return fmt.Sprintf("%s:%s:%s", k.RunID, k.Type, k.Category)
}

func NewCache(ttl time.Duration, logger *slog.Logger) *cache.Cache[CacheKey, string] {
	return cache.NewCache[CacheKey, string](cache.CacheConfig{TTL: ttl, Logger: logger}, func(k CacheKey) string {
		return k.ToString()
	})
}
