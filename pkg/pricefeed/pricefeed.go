// Package pricefeed fetches USD prices for tokens, tolerating partial
// feed failure by backfilling missing entries from a static last-known
// price table.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tachyon-hq/intent-engine/pkg/logger"
	"github.com/tachyon-hq/intent-engine/pkg/metrics"
)

// Price is the USD quote for one token
type Price struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change,omitempty"`
}

// Source produces prices for a set of token symbols. Implementations
// may return a partial map; callers backfill what is missing.
type Source interface {
	GetPrices(ctx context.Context, symbols []string) (map[string]Price, error)
}

// fallbackPrices is the static last-known price table used when the
// live feed has no answer for a symbol. Values are deliberately coarse;
// they keep quoting alive through feed outages, nothing more.
var fallbackPrices = map[string]Price{
	"USDC": {USD: 1.00},
	"USDT": {USD: 1.00},
	"DAI":  {USD: 1.00},
	"NEAR": {USD: 5.20},
	"ETH":  {USD: 2500.00},
	"SOL":  {USD: 150.00},
	"ZEC":  {USD: 25.00},
	"BTC":  {USD: 60000.00},
}

// FallbackPrice returns the static last-known price for a symbol
func FallbackPrice(symbol string) (Price, bool) {
	p, ok := fallbackPrices[strings.ToUpper(symbol)]
	return p, ok
}

// Feed combines a live source with a cache and the static fallback
// table. A feed failure for one symbol never fails the whole request.
type Feed struct {
	source Source
	cache  *PriceCache
	logger logger.Logger
}

// NewFeed creates a price feed over the given source
func NewFeed(source Source, cache *PriceCache, log logger.Logger) *Feed {
	if cache == nil {
		cache = NewPriceCache(5 * time.Minute)
	}
	return &Feed{source: source, cache: cache, logger: log}
}

// GetPrices returns a price for every requested symbol. Resolution
// order per symbol: cache, live source, static fallback. Symbols with
// no answer from any source are omitted from the result.
func (f *Feed) GetPrices(ctx context.Context, symbols []string) map[string]Price {
	result := make(map[string]Price, len(symbols))
	var missing []string
	for _, sym := range symbols {
		sym = strings.ToUpper(sym)
		if p, ok := f.cache.Get(sym); ok {
			result[sym] = p
			continue
		}
		missing = append(missing, sym)
	}
	if len(missing) == 0 {
		return result
	}

	live, err := f.source.GetPrices(ctx, missing)
	if err != nil {
		f.logger.Error("Price feed request failed, falling back to static prices: %v", err)
		live = nil
	}

	for _, sym := range missing {
		if p, ok := live[sym]; ok {
			f.cache.Set(sym, p)
			result[sym] = p
			continue
		}
		if p, ok := FallbackPrice(sym); ok {
			f.logger.Debug("No live price for %s, using static fallback %.2f", sym, p.USD)
			metrics.PriceFeedFallbacks.WithLabelValues(sym).Inc()
			result[sym] = p
		}
	}
	return result
}

// HTTPSource fetches prices from a REST price API
type HTTPSource struct {
	endpoint   string
	httpClient *http.Client
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates a price source with a bounded request timeout
func NewHTTPSource(endpoint string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetPrices queries the price API for the given symbols
func (s *HTTPSource) GetPrices(ctx context.Context, symbols []string) (map[string]Price, error) {
	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/prices?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %v", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var prices map[string]Price
	if err := json.Unmarshal(bodyBytes, &prices); err != nil {
		return nil, fmt.Errorf("failed to decode prices: %v", err)
	}

	normalized := make(map[string]Price, len(prices))
	for sym, p := range prices {
		normalized[strings.ToUpper(sym)] = p
	}
	return normalized, nil
}
