// Package imagecache remembers the decoded dimensions of images by URL so a
// later mount of the same URL can render at its final size immediately.
package imagecache

import "sync"

// DefaultCapacity is the number of URLs remembered by New(0).
const DefaultCapacity = 20

// Dims are the natural pixel dimensions of a decoded image.
type Dims struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Cache is a bounded insertion-ordered map of URL to Dims. Re-putting an
// existing key updates it in place and keeps its eviction position.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]Dims
	order    []string

	nextSub int
	subs    map[int]func(url string)
}

// New returns a cache holding at most capacity entries.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]Dims, capacity),
		subs:     make(map[int]func(string)),
	}
}

// Has reports whether url is cached.
func (c *Cache) Has(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[url]
	return ok
}

// Get returns the dimensions stored for url.
func (c *Cache) Get(url string) (Dims, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[url]
	return d, ok
}

// Put stores dims for url, evicting the oldest entry when a new key arrives
// at capacity. Subscribers are notified unless the put was a no-op.
func (c *Cache) Put(url string, dims Dims) {
	c.mu.Lock()
	prev, exists := c.entries[url]
	if exists && prev == dims {
		c.mu.Unlock()
		return
	}
	if !exists {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, url)
	}
	c.entries[url] = dims
	subs := c.snapshotSubs()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(url)
	}
}

// Clear drops every entry and notifies subscribers with an empty URL.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Dims, c.capacity)
	c.order = nil
	subs := c.snapshotSubs()
	c.mu.Unlock()

	for _, fn := range subs {
		fn("")
	}
}

// Len returns the number of cached URLs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (c *Cache) Subscribe(fn func(url string)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Cache) snapshotSubs() []func(string) {
	out := make([]func(string), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}
