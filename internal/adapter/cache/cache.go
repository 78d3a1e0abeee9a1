// Package cache fronts the bulletin archive with an in-memory LRU cache.
package cache

import (
	"context"
	"sync"

	"github.com/couchcryptid/heatguard-service/internal/domain"
	"github.com/couchcryptid/heatguard-service/internal/observability"
)

// Archive is the store the cache decorates.
type Archive interface {
	Save(ctx context.Context, b domain.Bulletin) error
	Get(ctx context.Context, id string) (domain.Bulletin, error)
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
	Recent(ctx context.Context, limit int) ([]domain.Bulletin, error)
}

// CachedArchive wraps an Archive with a read-through, write-through LRU
// cache keyed by bulletin ID.
type CachedArchive struct {
	inner   Archive
	cache   *lruCache[string, domain.Bulletin]
	metrics *observability.Metrics
}

// NewCachedArchive creates a cache decorator holding at most maxEntries bulletins.
func NewCachedArchive(inner Archive, maxEntries int, metrics *observability.Metrics) *CachedArchive {
	return &CachedArchive{
		inner:   inner,
		cache:   newLRUCache[string, domain.Bulletin](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedArchive) Get(ctx context.Context, id string) (domain.Bulletin, error) {
	if b, ok := c.cache.get(id); ok {
		c.metrics.ArchiveCache.WithLabelValues("hit").Inc()
		return b, nil
	}
	c.metrics.ArchiveCache.WithLabelValues("miss").Inc()

	b, err := c.inner.Get(ctx, id)
	if err != nil {
		// Misses are not cached; the pipeline may archive the ID later.
		return b, err
	}
	c.cache.put(id, b)
	return b, nil
}

func (c *CachedArchive) Save(ctx context.Context, b domain.Bulletin) error {
	if err := c.inner.Save(ctx, b); err != nil {
		return err
	}
	c.cache.put(b.ID, b)
	return nil
}

// LoadBatch archives pipeline output and refreshes any cached copies.
func (c *CachedArchive) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if err := c.inner.LoadBatch(ctx, events); err != nil {
		return err
	}
	for _, e := range events {
		c.cache.update(e.Bulletin.ID, e.Bulletin)
	}
	return nil
}

// Recent lists from the underlying archive; listings are not cached.
func (c *CachedArchive) Recent(ctx context.Context, limit int) ([]domain.Bulletin, error) {
	return c.inner.Recent(ctx, limit)
}

// Len reports the number of cached bulletins.
func (c *CachedArchive) Len() int {
	return c.cache.len()
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[K comparable, V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[K]*entry[K, V]
	head       *entry[K, V] // most recently used
	tail       *entry[K, V] // least recently used
}

type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

func newLRUCache[K comparable, V any](maxEntries int) *lruCache[K, V] {
	return &lruCache[K, V]{
		maxEntries: maxEntries,
		entries:    make(map[K]*entry[K, V]),
	}
}

func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[K, V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

// update replaces the value for a cached key without inserting or promoting.
func (c *lruCache[K, V]) update(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
	}
}

func (c *lruCache[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[K, V]) moveToFront(e *entry[K, V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[K, V]) addToFront(e *entry[K, V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[K, V]) remove(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[K, V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
