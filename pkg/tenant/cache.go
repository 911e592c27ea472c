package tenant

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores provider lookups between requests.
type Cache interface {
	Get(ctx context.Context, key string) (*Info, bool)
	Set(ctx context.Context, key string, info *Info, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// DefaultCacheSize is the default maximum number of items in the cache.
const DefaultCacheSize = 1000

type cacheItem struct {
	key       string
	info      *Info
	expiresAt time.Time
}

// inMemoryCache is a size-bounded LRU with per-entry TTL and a background
// sweeper for expired entries.
type inMemoryCache struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front is most recently used
	maxSize int
	now     func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewInMemoryCache creates a cache holding at most maxSize entries.
// Non-positive sizes select DefaultCacheSize.
func NewInMemoryCache(maxSize int) Cache {
	return newInMemoryCache(maxSize, time.Minute, time.Now)
}

func newInMemoryCache(maxSize int, sweep time.Duration, now func() time.Time) *inMemoryCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	c := &inMemoryCache{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		now:     now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep(sweep)
	return c
}

func (c *inMemoryCache) Get(_ context.Context, key string) (*Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	item := el.Value.(*cacheItem)
	if c.now().After(item.expiresAt) {
		c.remove(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return item.info, true
}

func (c *inMemoryCache) Set(_ context.Context, key string, info *Info, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		item := el.Value.(*cacheItem)
		item.info = info
		item.expiresAt = c.now().Add(ttl)
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
	c.items[key] = c.order.PushFront(&cacheItem{key: key, info: info, expiresAt: c.now().Add(ttl)})
}

func (c *inMemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (c *inMemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
	return nil
}

func (c *inMemoryCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheItem).key)
}

func (c *inMemoryCache) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *inMemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*cacheItem).expiresAt) {
			c.remove(el)
		}
		el = prev
	}
}

type noOpCache struct{}

// NewNoOpCache returns a cache that stores nothing.
func NewNoOpCache() Cache { return noOpCache{} }

func (noOpCache) Get(context.Context, string) (*Info, bool)         { return nil, false }
func (noOpCache) Set(context.Context, string, *Info, time.Duration) {}
func (noOpCache) Delete(context.Context, string)                    {}
func (noOpCache) Close() error                                      { return nil }
