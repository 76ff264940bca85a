package pricefeed

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPriceCache tests the PriceCache functionality
func TestPriceCache(t *testing.T) {
	t.Run("NewPriceCache", func(t *testing.T) {
		ttl := 60 * time.Second
		cache := NewPriceCache(ttl)

		require.NotNil(t, cache)
		assert.Equal(t, ttl, cache.cacheTTL)
		assert.NotNil(t, cache.cache)
	})

	t.Run("Set and Get", func(t *testing.T) {
		cache := NewPriceCache(1 * time.Second)

		// Set a price
		cache.Set("NEAR", Price{USD: 5.20})

		// Get the price immediately
		price, found := cache.Get("NEAR")
		assert.True(t, found)
		assert.Equal(t, 5.20, price.USD)

		// Get non-existent price
		_, found = cache.Get("NOPE")
		assert.False(t, found)
	})

	t.Run("TTL expiration", func(t *testing.T) {
		cache := NewPriceCache(10 * time.Millisecond)

		cache.Set("ETH", Price{USD: 2500.0})

		// Get immediately - should work
		price, found := cache.Get("ETH")
		assert.True(t, found)
		assert.Equal(t, 2500.0, price.USD)

		// Wait for TTL to expire
		time.Sleep(20 * time.Millisecond)

		// Get after expiration - should not work
		_, found = cache.Get("ETH")
		assert.False(t, found)
	})

	t.Run("LastUpdatedAt", func(t *testing.T) {
		cache := NewPriceCache(1 * time.Second)

		_, found := cache.LastUpdatedAt("NEAR")
		assert.False(t, found)

		before := time.Now()
		cache.Set("NEAR", Price{USD: 5.20})

		ts, found := cache.LastUpdatedAt("NEAR")
		assert.True(t, found)
		assert.False(t, ts.Before(before))
	})

	t.Run("Clear", func(t *testing.T) {
		cache := NewPriceCache(1 * time.Second)

		cache.Set("ETH", Price{USD: 2500.0})
		cache.Set("NEAR", Price{USD: 5.20})

		cache.Clear()

		_, found := cache.Get("ETH")
		assert.False(t, found)
		_, found = cache.Get("NEAR")
		assert.False(t, found)
	})

	t.Run("Concurrent access", func(t *testing.T) {
		cache := NewPriceCache(1 * time.Second)
		done := make(chan bool, 10)

		// Start multiple goroutines reading and writing
		for i := 0; i < 5; i++ {
			go func(id int) {
				symbol := fmt.Sprintf("TOKEN-%d", id)
				cache.Set(symbol, Price{USD: float64(id * 1000)})
				time.Sleep(1 * time.Millisecond)
				_, _ = cache.Get(symbol)
				done <- true
			}(i)
		}

		for i := 0; i < 5; i++ {
			<-done
		}

		for i := 0; i < 5; i++ {
			symbol := fmt.Sprintf("TOKEN-%d", i)
			price, found := cache.Get(symbol)
			assert.True(t, found)
			assert.Equal(t, float64(i*1000), price.USD)
		}
	})
}
