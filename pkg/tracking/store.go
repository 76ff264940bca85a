// Package tracking maintains a locally visible, continuously refreshed
// view of in-flight intents. The verifier is the authoritative status
// source; the indexer is a fallback when the verifier is unreachable,
// and terminal states are monotonic once observed.
package tracking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tachyon-hq/intent-engine/pkg/circuitbreaker"
	"github.com/tachyon-hq/intent-engine/pkg/indexer"
	"github.com/tachyon-hq/intent-engine/pkg/logger"
	"github.com/tachyon-hq/intent-engine/pkg/metrics"
	"github.com/tachyon-hq/intent-engine/pkg/models"
	"github.com/tachyon-hq/intent-engine/pkg/verifier"
)

// tracked is one intent's record plus its polling controls
type tracked struct {
	status   models.IntentStatus
	deadline int64
	cancel   context.CancelFunc
	started  time.Time
}

// Store tracks in-flight intents and polls their status until each one
// reaches a terminal state. The store is the only writer to its
// records; readers get copies.
type Store struct {
	verifier     verifier.Client
	indexer      indexer.Client
	breaker      *circuitbreaker.CircuitBreaker
	pollInterval time.Duration
	logger       logger.Logger

	mu      sync.Mutex
	intents map[string]*tracked
}

// NewStore creates a tracking store. The indexer client may be nil, in
// which case there is no fallback status source.
func NewStore(vc verifier.Client, ic indexer.Client, breaker *circuitbreaker.CircuitBreaker,
	pollInterval time.Duration, log logger.Logger,
) *Store {
	return &Store{
		verifier:     vc,
		indexer:      ic,
		breaker:      breaker,
		pollInterval: pollInterval,
		logger:       log,
		intents:      make(map[string]*tracked),
	}
}

// Track registers an intent just submitted under the given hash and
// starts polling it. Tracking an already-tracked intent is a no-op.
func (s *Store) Track(ctx context.Context, msg *models.IntentMessage, intentHash string) {
	s.mu.Lock()
	if _, exists := s.intents[msg.IntentID]; exists {
		s.mu.Unlock()
		return
	}

	pollCtx, cancel := context.WithCancel(ctx)
	rec := &tracked{
		status: models.IntentStatus{
			IntentID:   msg.IntentID,
			IntentHash: intentHash,
			State:      models.IntentStatePending,
			UpdatedAt:  time.Now(),
		},
		deadline: msg.Deadline,
		cancel:   cancel,
		started:  time.Now(),
	}
	s.intents[msg.IntentID] = rec
	s.mu.Unlock()

	metrics.TrackedIntents.Inc()
	s.logger.InfoWithChain(msg.Source.ChainID, "Tracking intent %s (hash %s)", msg.IntentID, intentHash)
	go s.pollLoop(pollCtx, msg.IntentID, intentHash)
}

// StopTracking cancels polling for an intent without removing its last
// observed status.
func (s *Store) StopTracking(intentID string) {
	s.mu.Lock()
	rec, exists := s.intents[intentID]
	s.mu.Unlock()
	if exists {
		rec.cancel()
	}
}

// StopAll cancels polling for every tracked intent
func (s *Store) StopAll() {
	s.mu.Lock()
	recs := make([]*tracked, 0, len(s.intents))
	for _, rec := range s.intents {
		recs = append(recs, rec)
	}
	s.mu.Unlock()
	for _, rec := range recs {
		rec.cancel()
	}
}

// GetTrackedIntents returns a snapshot of every tracked intent's last
// observed status, newest first.
func (s *Store) GetTrackedIntents() []models.IntentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.IntentStatus, 0, len(s.intents))
	for _, rec := range s.intents {
		out = append(out, cloneStatus(rec.status))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// GetIntent returns the last observed status for one intent
func (s *Store) GetIntent(intentID string) (models.IntentStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.intents[intentID]
	if !exists {
		return models.IntentStatus{}, false
	}
	return cloneStatus(rec.status), true
}

// cloneStatus copies a status record so readers never share the
// transaction-leg array that later polls upgrade in place.
func cloneStatus(st models.IntentStatus) models.IntentStatus {
	if len(st.Transactions) > 0 {
		st.Transactions = append([]models.TransactionLeg(nil), st.Transactions...)
	}
	return st
}

// pollLoop serially polls one intent until it reaches a terminal state
// or the context is cancelled. The timer is cleared on exit; there is
// never more than one in-flight poll per intent.
func (s *Store) pollLoop(ctx context.Context, intentID, intentHash string) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		terminal := s.pollOnce(ctx, intentID, intentHash)
		if terminal {
			metrics.TrackedIntents.Dec()
			return
		}

		select {
		case <-ctx.Done():
			s.logger.Debug("Stopped tracking intent %s", intentID)
			metrics.TrackedIntents.Dec()
			return
		case <-ticker.C:
		}
	}
}

// pollOnce fetches the current status from the authoritative source
// and applies it. Returns whether the intent is now terminal.
func (s *Store) pollOnce(ctx context.Context, intentID, intentHash string) bool {
	obs, ok := s.fetchStatus(ctx, intentID, intentHash)
	if !ok {
		// Transient failure: absorbed, retried on the next tick
		return false
	}
	return s.apply(intentID, obs)
}

// fetchStatus queries the verifier, falling back to the indexer when
// the verifier is unavailable or its breaker is open. The verifier's
// answer is preferred whenever it is available.
func (s *Store) fetchStatus(ctx context.Context, intentID, intentHash string) (models.IntentStatus, bool) {
	if s.breaker == nil || !s.breaker.IsOpen() {
		res, err := s.verifier.GetStatus(ctx, intentHash)
		if err == nil {
			metrics.StatusPolls.WithLabelValues("verifier", "ok").Inc()
			if s.breaker != nil {
				s.breaker.RecordSuccess()
			}
			return s.fromVerifier(intentID, intentHash, res), true
		}
		if errors.Is(err, verifier.ErrNotFound) {
			// The verifier answered; it just lags its own submission
			// endpoint. Retry on the next tick without consulting the
			// indexer or counting this against the breaker.
			metrics.StatusPolls.WithLabelValues("verifier", "not_found").Inc()
			s.logger.Debug("Intent %s not yet visible to verifier", intentID)
			return models.IntentStatus{}, false
		}
		metrics.StatusPolls.WithLabelValues("verifier", "error").Inc()
		s.logger.Error("Verifier poll for %s failed: %v", intentID, err)
		if s.breaker != nil {
			s.breaker.RecordFailure()
		}
	}

	if s.indexer == nil {
		return models.IntentStatus{}, false
	}

	status, err := s.indexer.GetIntentStatus(ctx, intentID)
	if err != nil {
		metrics.StatusPolls.WithLabelValues("indexer", "error").Inc()
		s.logger.Error("Indexer poll for %s failed: %v", intentID, err)
		return models.IntentStatus{}, false
	}
	metrics.StatusPolls.WithLabelValues("indexer", "ok").Inc()
	metrics.StatusFallbacks.Inc()
	return *status, true
}

// fromVerifier projects the verifier's per-transaction status onto the
// intent lifecycle.
func (s *Store) fromVerifier(intentID, intentHash string, res *verifier.TxStatusResult) models.IntentStatus {
	status := models.IntentStatus{
		IntentID:   intentID,
		IntentHash: intentHash,
		UpdatedAt:  time.Now(),
		Error:      res.Error,
	}

	switch res.Status {
	case models.TxStatusPending:
		status.State = models.IntentStatePending
	case models.TxStatusBroadcasted:
		status.State = models.IntentStateExecuting
	case models.TxStatusSettled:
		status.State = models.IntentStateCompleted
	case models.TxStatusNotFoundOrInvalid:
		status.State = models.IntentStateFailed
		if status.Error == "" {
			// Reason unknown, never defaulted to success
			status.Error = "rejected by verifier: reason unknown"
		}
	default:
		status.State = models.IntentStatePending
	}

	if res.AccountID != "" {
		status.ResolverID = res.AccountID
	}
	if res.TxHash != "" {
		status.Transactions = []models.TransactionLeg{{
			TxHash: res.TxHash,
			Status: res.Status,
		}}
	}
	return status
}

// apply merges an observation into the stored record. The store never
// un-terminalizes an intent: a conflicting observation after a
// terminal state is logged and ignored. Transaction legs are
// append-only. Returns whether the record is terminal after applying.
func (s *Store) apply(intentID string, obs models.IntentStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.intents[intentID]
	if !exists {
		return true
	}

	if rec.status.State.IsTerminal() {
		if obs.State != rec.status.State {
			s.logger.Notice("Ignoring stale status %s for terminal intent %s (kept %s)",
				obs.State, intentID, rec.status.State)
		}
		return true
	}

	// No local mutation invents a transition: a deadline passed with no
	// settlement is only recorded as expired when the poll answer still
	// shows the intent unsettled.
	if !obs.State.IsTerminal() && rec.deadline > 0 && time.Now().Unix() > rec.deadline {
		obs.State = models.IntentStateExpired
		obs.Error = "deadline passed with no settlement"
	}

	prev := rec.status
	rec.status.State = obs.State
	rec.status.UpdatedAt = obs.UpdatedAt
	if rec.status.UpdatedAt.IsZero() {
		rec.status.UpdatedAt = time.Now()
	}
	if obs.ResolverID != "" && rec.status.ResolverID == "" {
		rec.status.ResolverID = obs.ResolverID
		if prev.State == models.IntentStatePending || prev.State == models.IntentStateMatching {
			s.logger.Info("Intent %s accepted by resolver %s", intentID, obs.ResolverID)
		}
	}
	rec.status.Transactions = mergeLegs(rec.status.Transactions, obs.Transactions)

	switch obs.State {
	case models.IntentStateCompleted:
		now := time.Now()
		rec.status.CompletedAt = &now
		rec.status.Error = ""
		metrics.IntentsSettled.WithLabelValues(string(obs.State)).Inc()
		metrics.SettlementTime.Observe(time.Since(rec.started).Seconds())
		s.logger.Notice("Intent %s completed", intentID)
	case models.IntentStateFailed, models.IntentStateExpired:
		rec.status.CompletedAt = nil
		rec.status.Error = obs.Error
		if rec.status.Error == "" {
			rec.status.Error = "reason unknown"
		}
		metrics.IntentsSettled.WithLabelValues(string(obs.State)).Inc()
		metrics.SettlementTime.Observe(time.Since(rec.started).Seconds())
		s.logger.Notice("Intent %s reached %s: %s", intentID, obs.State, rec.status.Error)
	}

	return rec.status.State.IsTerminal()
}

// mergeLegs appends legs not yet recorded and upgrades the status of
// known legs. Legs are never removed.
func mergeLegs(have, incoming []models.TransactionLeg) []models.TransactionLeg {
	for _, leg := range incoming {
		found := false
		for i := range have {
			if have[i].TxHash == leg.TxHash && have[i].Chain == leg.Chain {
				have[i].Status = leg.Status
				if leg.BlockNumber != 0 {
					have[i].BlockNumber = leg.BlockNumber
				}
				found = true
				break
			}
		}
		if !found {
			have = append(have, leg)
		}
	}
	return have
}
