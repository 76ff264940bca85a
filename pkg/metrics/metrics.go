package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	IntentsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intent_engine_intents_submitted_total",
		Help: "The total number of submitted intents",
	}, []string{"intent_type"})

	IntentsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intent_engine_intents_settled_total",
		Help: "The total number of tracked intents that reached a terminal state",
	}, []string{"state"})

	SettlementTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "intent_engine_settlement_seconds",
		Help:    "Time from submission to terminal state",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	TrackedIntents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intent_engine_tracked_intents",
		Help: "The number of intents currently tracked in a non-terminal state",
	})

	StatusPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intent_engine_status_polls_total",
		Help: "Status polls by source and outcome",
	}, []string{"source", "outcome"})

	StatusFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intent_engine_status_fallbacks_total",
		Help: "Polls answered by the indexer because the verifier was unavailable",
	})

	SigningErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intent_engine_signing_errors_total",
		Help: "Signing failures by kind",
	}, []string{"kind"})

	QuoteRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intent_engine_quote_requests_total",
		Help: "The total number of quote requests served",
	})

	QuoteComputeTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "intent_engine_quote_compute_seconds",
		Help:    "Time taken to compute a ranked quote set",
		Buckets: prometheus.DefBuckets,
	})

	PriceFeedFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intent_engine_pricefeed_fallbacks_total",
		Help: "Symbols answered from the static price table",
	}, []string{"symbol"})

	FeeEstimationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intent_engine_fee_estimation_errors_total",
		Help: "Fee estimation failures by kind",
	}, []string{"kind"})
)
