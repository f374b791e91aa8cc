package service

import (
	"strings"
	"sync"
	"time"
)

type cachedAnswer struct {
	text      string
	createdAt time.Time
}

// ResponseCache memoizes final validated answers keyed by the normalized
// utterance. Expiry is lazy: expired entries read as misses and are only
// evicted when overwritten or on Clear.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]cachedAnswer
	ttl     time.Duration
}

// NewResponseCache creates a response cache with the given entry lifetime.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cachedAnswer),
		ttl:     ttl,
	}
}

func cacheKey(utterance string) string {
	return strings.ToLower(strings.TrimSpace(utterance))
}

// Get returns the cached answer for the utterance, or ok=false on miss or
// expiry.
func (c *ResponseCache) Get(utterance string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(utterance)]
	if !ok {
		return "", false
	}
	if time.Since(entry.createdAt) >= c.ttl {
		return "", false
	}
	return entry.text, true
}

// Put stores the answer for the utterance, overwriting any previous entry.
func (c *ResponseCache) Put(utterance, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(utterance)] = cachedAnswer{text: text, createdAt: time.Now()}
}

// Clear drops all entries.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cachedAnswer)
}

// Len returns the number of stored entries, expired ones included.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
