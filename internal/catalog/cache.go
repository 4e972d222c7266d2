package catalog

import (
	"context"
	"sync"
	"time"
)

// Cache wraps a Client and keeps the last product list for a short window so
// repeated page loads do not hammer the upstream API. Fetch errors are never
// masked by stale data: when the upstream fails and nothing fresh is cached,
// callers see the error.
type Cache struct {
	client *Client

	mu      sync.RWMutex
	ttl     time.Duration
	entry   []Product
	expires time.Time
}

// NewCache builds a Cache over client with the given TTL.
func NewCache(client *Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// Fetch returns cached products when fresh, otherwise fetches upstream.
func (c *Cache) Fetch(ctx context.Context) ([]Product, error) {
	if products, ok := c.cached(); ok {
		return products, nil
	}

	products, err := c.client.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.store(products)
	return cloneProducts(products), nil
}

func (c *Cache) cached() ([]Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil || time.Now().After(c.expires) {
		return nil, false
	}
	return cloneProducts(c.entry), true
}

func (c *Cache) store(products []Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = cloneProducts(products)
	c.expires = time.Now().Add(c.ttl)
}

func cloneProducts(src []Product) []Product {
	out := make([]Product, len(src))
	copy(out, src)
	return out
}
