package db

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type CacheEntry struct {
	Result    *ResultSet
	Timestamp time.Time
}

// Cache is a thread-safe in-memory cache of materialized results
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	maxAge  time.Duration
}

func NewCache(maxAge time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		maxAge:  maxAge,
	}
}

func (c *Cache) Set(connectionName string, query string, args []any, result *ResultSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[getCacheKey(connectionName, query, args)] = CacheEntry{
		Result:    result,
		Timestamp: time.Now(),
	}
}

func (c *Cache) Get(connectionName string, query string, args []any) (*ResultSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[getCacheKey(connectionName, query, args)]
	if !ok {
		return nil, false
	}

	if time.Since(entry.Timestamp) > c.maxAge {
		slog.Info("Cache entry expired", "connection", connectionName, "query", query)
		return nil, false
	}

	return entry.Result, true
}

// Removes all cache entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]CacheEntry)
}

// Removes all cache entries older than the given duration
func (c *Cache) InvalidateOlder(olderThan time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clearOlderThan := time.Now().Add(-olderThan)

	for key, entry := range c.entries {
		if entry.Timestamp.Before(clearOlderThan) {
			delete(c.entries, key)
		}
	}
}

// Returns the cache key hash (sha256) for one connection, query and
// parameter list
func getCacheKey(connectionName string, query string, args []any) string {
	data := fmt.Sprintf("%s-%s-%v", connectionName, query, args)
	hash := sha256.Sum256([]byte(data))

	return fmt.Sprintf("%x", hash)
}
