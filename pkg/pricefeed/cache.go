package pricefeed

import (
	"sync"
	"time"
)

// PriceCache holds recently fetched prices to avoid duplicate feed
// calls. It is an explicit object owned by its consumer; there is no
// package-level cache.
type PriceCache struct {
	mu       sync.RWMutex
	cache    map[string]*cachedPrice
	cacheTTL time.Duration
}

// cachedPrice represents a cached token price with timestamp
type cachedPrice struct {
	price     Price
	timestamp time.Time
}

// NewPriceCache creates a price cache with the given TTL
func NewPriceCache(cacheTTL time.Duration) *PriceCache {
	return &PriceCache{
		cache:    make(map[string]*cachedPrice),
		cacheTTL: cacheTTL,
	}
}

// Get retrieves a cached price if it's still valid
func (c *PriceCache) Get(symbol string) (Price, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, exists := c.cache[symbol]
	if !exists {
		return Price{}, false
	}

	if time.Since(cached.timestamp) > c.cacheTTL {
		return Price{}, false
	}

	return cached.price, true
}

// Set stores a price in the cache with the current timestamp
func (c *PriceCache) Set(symbol string, price Price) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[symbol] = &cachedPrice{
		price:     price,
		timestamp: time.Now(),
	}
}

// LastUpdatedAt returns when the symbol was last written, if ever
func (c *PriceCache) LastUpdatedAt(symbol string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, exists := c.cache[symbol]
	if !exists {
		return time.Time{}, false
	}
	return cached.timestamp, true
}

// Clear removes all cached entries
func (c *PriceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*cachedPrice)
}
