// Package quotes computes ranked candidate executions for a token pair
// across the known solver registry.
//
// The selector is a best-effort estimator: real solver competition
// happens off-box, so neither the winning solver nor the exact output
// is guaranteed, and callers must not present a Quote as a binding
// commitment.
package quotes

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tachyon-hq/intent-engine/pkg/logger"
	"github.com/tachyon-hq/intent-engine/pkg/metrics"
	"github.com/tachyon-hq/intent-engine/pkg/models"
	"github.com/tachyon-hq/intent-engine/pkg/pricefeed"
)

const (
	// maxPriceImpact caps the simulated price impact at 0.5%
	maxPriceImpact = 0.005

	// impactPerUsd grows impact linearly with trade notional
	impactPerUsd = 1e-8
)

// Request describes the pair and size to quote
type Request struct {
	SourceSymbol   string
	SourceDecimals int
	TargetSymbol   string
	TargetDecimals int
	Amount         string // human-readable decimal
}

// Selector computes ranked quotes using live prices with static
// fallback. It owns its price cache explicitly; there is no ambient
// shared state.
type Selector struct {
	feed    *pricefeed.Feed
	solvers []Solver
	logger  logger.Logger
}

// NewSelector creates a quote selector over the given price feed and
// solver registry. A nil registry uses DefaultSolvers.
func NewSelector(feed *pricefeed.Feed, solvers []Solver, log logger.Logger) *Selector {
	if solvers == nil {
		solvers = DefaultSolvers
	}
	return &Selector{feed: feed, solvers: solvers, logger: log}
}

// GetQuotes computes one candidate execution per registered solver,
// ranked by expected output descending with ties broken by solver
// reputation. Quotes are recomputed on every call and never reused.
func (s *Selector) GetQuotes(ctx context.Context, req Request) ([]models.Quote, error) {
	start := time.Now()
	defer func() {
		metrics.QuoteComputeTime.Observe(time.Since(start).Seconds())
	}()
	metrics.QuoteRequests.Inc()

	amount, err := strconv.ParseFloat(req.Amount, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, fmt.Errorf("invalid quote amount: %q", req.Amount)
	}

	prices := s.feed.GetPrices(ctx, []string{req.SourceSymbol, req.TargetSymbol})
	sourcePrice, ok := prices[strings.ToUpper(req.SourceSymbol)]
	if !ok {
		return nil, fmt.Errorf("no price available for %s", req.SourceSymbol)
	}
	targetPrice, ok := prices[strings.ToUpper(req.TargetSymbol)]
	if !ok {
		return nil, fmt.Errorf("no price available for %s", req.TargetSymbol)
	}
	if targetPrice.USD <= 0 {
		return nil, fmt.Errorf("non-positive price for %s", req.TargetSymbol)
	}

	inputUsd := amount * sourcePrice.USD
	impact := priceImpact(inputUsd)
	baseOutput := amount * sourcePrice.USD / targetPrice.USD

	result := make([]models.Quote, 0, len(s.solvers))
	for _, solver := range s.solvers {
		feeFraction := solver.FeePercent / 100
		expected := baseOutput * (1 - feeFraction) * (1 - impact)
		// Fee reports only the solver's declared cut; impact is
		// surfaced separately as PriceImpactPercent
		feeAmount := baseOutput * feeFraction

		result = append(result, models.Quote{
			Solver:               solver.ID,
			ExpectedAmount:       toSmallestUnit(expected, req.TargetDecimals),
			Fee:                  toSmallestUnit(feeAmount, req.TargetDecimals),
			FeeUsd:               feeAmount * targetPrice.USD,
			EstimatedTimeSeconds: solver.EstimatedTimeSeconds,
			Route:                fmt.Sprintf("%s>%s via %s", req.SourceSymbol, req.TargetSymbol, solver.ID),
			PriceImpactPercent:   impact * 100,
			InputUsd:             inputUsd,
			OutputUsd:            expected * targetPrice.USD,
		})
	}

	reputation := make(map[string]int, len(s.solvers))
	for _, solver := range s.solvers {
		reputation[solver.ID] = solver.Reputation
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := parseAmount(result[i].ExpectedAmount), parseAmount(result[j].ExpectedAmount)
		if c := a.Cmp(b); c != 0 {
			return c > 0
		}
		return reputation[result[i].Solver] > reputation[result[j].Solver]
	})
	return result, nil
}

// priceImpact grows linearly with trade notional, capped at
// maxPriceImpact.
func priceImpact(inputUsd float64) float64 {
	impact := inputUsd * impactPerUsd
	if impact > maxPriceImpact {
		return maxPriceImpact
	}
	return impact
}

// toSmallestUnit converts a human-unit float into a smallest-unit
// integer string without float round-off at scale.
func toSmallestUnit(v float64, decimals int) string {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	scaled := new(big.Float).Mul(big.NewFloat(v), pow10(decimals))
	out, _ := scaled.Int(nil)
	return out.String()
}

func pow10(n int) *big.Float {
	out := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil))
	return out
}

func parseAmount(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}
