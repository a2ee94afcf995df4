package cache

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a typed wrapper around an in-process TTL cache. Keys are mapped
// to strings with keyToString so related entries can be dropped by prefix.
type Cache[K comparable, V any] struct {
	cache       *gocache.Cache
	mu          sync.RWMutex
	keyToString func(K) string
	logger      *slog.Logger
}

type CacheConfig struct {
	TTL    time.Duration
	Logger *slog.Logger
}

type Stats struct {
	Items int `json:"items"`
}

func NewCache[K comparable, V any](config CacheConfig, keyToString func(K) string) *Cache[K, V] {
	if config.TTL == 0 {
		config.TTL = 5 * time.Minute
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	config.Logger.Debug("Cache initialized", "ttl", config.TTL)

	return &Cache[K, V]{
		cache:       gocache.New(config.TTL, config.TTL/2),
		keyToString: keyToString,
		logger:      config.Logger,
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, found := c.cache.Get(c.keyToString(key))
	if !found {
		var zero V
		return zero, false
	}

	typedValue, ok := value.(V)
	return typedValue, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stringKey := c.keyToString(key)
	c.cache.Set(stringKey, value, gocache.DefaultExpiration)
	c.logger.Debug("Cache stored", "key", stringKey)
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. Errors from compute are returned and nothing is stored.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return value, err
	}

	c.Set(key, value)
	return value, nil
}

func (c *Cache[K, V]) InvalidateKey(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Delete(c.keyToString(key))
}

// InvalidatePrefix drops every entry whose string key starts with prefix.
func (c *Cache[K, V]) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
			dropped++
		}
	}

	if dropped > 0 {
		c.logger.Debug("Cache invalidated", "prefix", prefix, "entries", dropped)
	}
	return dropped
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
}

func (c *Cache[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{Items: c.cache.ItemCount()}
}
