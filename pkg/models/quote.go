package models

// Quote is an ephemeral candidate execution computed by the quote selector.
// Quotes are recomputed on every request and never reused; the eventual
// settlement solver and output are decided off-box by real solver
// competition, so a Quote is an estimate, not a commitment.
type Quote struct {
	Solver               string  `json:"solver"`
	ExpectedAmount       string  `json:"expected_amount"`
	Fee                  string  `json:"fee"`
	FeeUsd               float64 `json:"fee_usd"`
	EstimatedTimeSeconds int     `json:"estimated_time_seconds"`
	Route                string  `json:"route"`
	PriceImpactPercent   float64 `json:"price_impact_percent"`
	InputUsd             float64 `json:"input_usd"`
	OutputUsd            float64 `json:"output_usd"`
}
