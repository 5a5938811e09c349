// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/court-tools/rankpull/pkg/models"
)

// Cache stores rendered pages so repeated pulls of the same URL within a
// run, or across quickly repeated runs, skip the fetch entirely. Browser
// renders in particular are expensive enough to be worth keeping.
type Cache interface {
	// Get retrieves a cached page by key.
	// Returns the cached PageData and a boolean indicating if the key was found.
	Get(key string) (*models.PageData, bool)

	// Set stores a page in cache with the specified TTL.
	// A non-positive TTL selects the implementation default.
	Set(key string, data *models.PageData, ttl time.Duration) error

	// Delete removes a cached page by key.
	// Should not error if the key doesn't exist.
	Delete(key string) error

	// Clear removes all cached pages.
	Clear() error

	// Close performs cleanup and stops background goroutines.
	Close()
}

// cacheEntry represents a cached page with expiry and size bookkeeping
type cacheEntry struct {
	Data      *models.PageData
	ExpiresAt time.Time
	Key       string
	Size      int64
}

// MemoryCache implements in-memory page caching with LRU eviction
type MemoryCache struct {
	store   map[string]*list.Element
	lruList *list.List
	mu      sync.RWMutex
	maxSize int64
	size    int64
	ctx     context.Context
	cancel  context.CancelFunc
	hits    uint64
	misses  uint64
}

// NewMemoryCache creates an in-memory cache bounded to maxSizeBytes
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 100 * 1024 * 1024 // 100MB
	}

	ctx, cancel := context.WithCancel(context.Background())

	cache := &MemoryCache{
		store:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSizeBytes,
		ctx:     ctx,
		cancel:  cancel,
	}

	go cache.cleanupExpired()

	return cache
}

// entrySize estimates how much memory a cached page occupies
func entrySize(data *models.PageData) int64 {
	size := int64(len(data.HTML) + len(data.Title) + len(data.URL))
	for key, value := range data.Headers {
		size += int64(len(key) + len(value))
	}
	return size + 1024 // struct and map overhead
}

// Get retrieves a cached page and marks it most recently used
func (mc *MemoryCache) Get(key string) (*models.PageData, bool) {
	mc.mu.Lock()
	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		mc.mu.Unlock()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)

	if time.Now().After(entry.ExpiresAt) {
		mc.misses++
		mc.mu.Unlock()
		go mc.Delete(key)
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++
	mc.mu.Unlock()

	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Data, true
}

// Set stores a page in cache with TTL
func (mc *MemoryCache) Set(key string, data *models.PageData, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	size := entrySize(data)

	// Existing key: replace in place
	if element, exists := mc.store[key]; exists {
		oldEntry := element.Value.(*cacheEntry)
		mc.size -= oldEntry.Size

		element.Value = &cacheEntry{
			Data:      data,
			ExpiresAt: time.Now().Add(ttl),
			Key:       key,
			Size:      size,
		}
		mc.lruList.MoveToFront(element)
		mc.size += size

		log.Debug().Str("key", key).Dur("ttl", ttl).Int64("size_bytes", size).Msg("Updated cache entry")
		return nil
	}

	for mc.size+size > mc.maxSize && mc.lruList.Len() > 0 {
		mc.evictLRU()
	}

	element := mc.lruList.PushFront(&cacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		Key:       key,
		Size:      size,
	})
	mc.store[key] = element
	mc.size += size

	log.Debug().Str("key", key).Dur("ttl", ttl).Int64("size_bytes", size).Msg("Cached page")

	return nil
}

// Delete removes a cached page
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		entry := element.Value.(*cacheEntry)
		mc.lruList.Remove(element)
		delete(mc.store, key)
		mc.size -= entry.Size
		log.Debug().Str("key", key).Msg("Deleted from cache")
	}

	return nil
}

// Clear removes all cached pages
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.size = 0
	mc.hits = 0
	mc.misses = 0

	log.Debug().Msg("Cache cleared")
	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
	log.Debug().Msg("Cache closed")
}

// evictLRU removes the least recently used entry (lock must be held)
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}

	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
	mc.size -= entry.Size

	log.Debug().Str("key", entry.Key).Msg("Evicted from cache (LRU)")
}

// cleanupExpired periodically removes expired entries
func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()

			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				entry := element.Value.(*cacheEntry)

				if now.After(entry.ExpiresAt) {
					mc.lruList.Remove(element)
					delete(mc.store, entry.Key)
					mc.size -= entry.Size
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			log.Debug().Msg("Cache cleanup routine stopped")
			return
		}
	}
}

// Stats returns cache statistics including hit rate
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	hitRate := 0.0
	total := mc.hits + mc.misses
	if total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":     mc.lruList.Len(),
		"size_bytes":  mc.size,
		"max_size":    mc.maxSize,
		"utilization": float64(mc.size) / float64(mc.maxSize) * 100,
		"hits":        mc.hits,
		"misses":      mc.misses,
		"hit_rate":    hitRate,
	}
}
