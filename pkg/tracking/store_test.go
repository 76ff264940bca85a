package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-hq/intent-engine/pkg/circuitbreaker"
	"github.com/tachyon-hq/intent-engine/pkg/logger"
	"github.com/tachyon-hq/intent-engine/pkg/models"
	"github.com/tachyon-hq/intent-engine/pkg/verifier"
)

// scriptedVerifier returns a scripted sequence of statuses, repeating
// the last one once exhausted.
type scriptedVerifier struct {
	mu       sync.Mutex
	statuses []*verifier.TxStatusResult
	err      error
	calls    int
}

func (m *scriptedVerifier) Submit(ctx context.Context, intents []models.SignedIntent) (string, error) {
	return "", nil
}

func (m *scriptedVerifier) GetStatus(ctx context.Context, intentHash string) (*verifier.TxStatusResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	idx := m.calls - 1
	if idx >= len(m.statuses) {
		idx = len(m.statuses) - 1
	}
	return m.statuses[idx], nil
}

func (m *scriptedVerifier) Simulate(ctx context.Context, intents []models.IntentMessage) (*verifier.SimulationResult, error) {
	return nil, nil
}

func (m *scriptedVerifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// staticIndexer always answers with the same status
type staticIndexer struct {
	mu     sync.Mutex
	status *models.IntentStatus
	err    error
	calls  int
}

func (m *staticIndexer) GetIntentStatus(ctx context.Context, intentID string) (*models.IntentStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}

func (m *staticIndexer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestStore(vc verifier.Client, ic *staticIndexer, breaker *circuitbreaker.CircuitBreaker) *Store {
	if ic == nil {
		// A nil typed pointer must not reach the interface field
		return NewStore(vc, nil, breaker, 5*time.Millisecond, &logger.EmptyLogger{})
	}
	return NewStore(vc, ic, breaker, 5*time.Millisecond, &logger.EmptyLogger{})
}

func trackedMsg(deadline int64) *models.IntentMessage {
	return &models.IntentMessage{
		IntentID: "intent-1",
		Source:   models.AssetSpec{ChainID: "near:mainnet"},
		Deadline: deadline,
	}
}

func waitForState(t *testing.T, store *Store, intentID string, state models.IntentState) models.IntentStatus {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		st, ok := store.GetIntent(intentID)
		if ok && st.State == state {
			return st
		}
		time.Sleep(2 * time.Millisecond)
	}
	st, _ := store.GetIntent(intentID)
	t.Fatalf("intent %s never reached %s, last state %s", intentID, state, st.State)
	return models.IntentStatus{}
}

// TestTrackLifecycle tests tracking from submission to completion
func TestTrackLifecycle(t *testing.T) {
	t.Run("Pending to settled", func(t *testing.T) {
		vc := &scriptedVerifier{statuses: []*verifier.TxStatusResult{
			{Status: models.TxStatusPending},
			{Status: models.TxStatusBroadcasted, AccountID: "solver.near", TxHash: "0xtx"},
			{Status: models.TxStatusSettled, AccountID: "solver.near", TxHash: "0xtx"},
		}}
		store := newTestStore(vc, nil, nil)

		store.Track(context.Background(), trackedMsg(time.Now().Add(time.Hour).Unix()), "0xhash")

		st := waitForState(t, store, "intent-1", models.IntentStateCompleted)
		assert.Equal(t, "solver.near", st.ResolverID)
		require.NotNil(t, st.CompletedAt)
		assert.Empty(t, st.Error)
		require.NotEmpty(t, st.Transactions)
		assert.Equal(t, "0xtx", st.Transactions[0].TxHash)

		// Polling must stop once terminal
		calls := vc.callCount()
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, calls, vc.callCount())
	})

	t.Run("Rejection maps to failed with reason", func(t *testing.T) {
		vc := &scriptedVerifier{statuses: []*verifier.TxStatusResult{
			{Status: models.TxStatusNotFoundOrInvalid},
		}}
		store := newTestStore(vc, nil, nil)

		store.Track(context.Background(), trackedMsg(time.Now().Add(time.Hour).Unix()), "0xhash")

		st := waitForState(t, store, "intent-1", models.IntentStateFailed)
		assert.Equal(t, "rejected by verifier: reason unknown", st.Error)
		assert.Nil(t, st.CompletedAt)
	})

	t.Run("Double track is a no-op", func(t *testing.T) {
		vc := &scriptedVerifier{statuses: []*verifier.TxStatusResult{
			{Status: models.TxStatusPending},
		}}
		store := newTestStore(vc, nil, nil)
		defer store.StopAll()

		msg := trackedMsg(time.Now().Add(time.Hour).Unix())
		store.Track(context.Background(), msg, "0xhash")
		store.Track(context.Background(), msg, "0xother")

		assert.Len(t, store.GetTrackedIntents(), 1)
	})

	t.Run("Deadline expiry while unsettled", func(t *testing.T) {
		vc := &scriptedVerifier{statuses: []*verifier.TxStatusResult{
			{Status: models.TxStatusPending},
		}}
		store := newTestStore(vc, nil, nil)

		store.Track(context.Background(), trackedMsg(time.Now().Unix()+1), "0xhash")

		st := waitForState(t, store, "intent-1", models.IntentStateExpired)
		assert.Equal(t, "deadline passed with no settlement", st.Error)
	})
}

// TestTerminalMonotonicity verifies a terminal state is never left
func TestTerminalMonotonicity(t *testing.T) {
	vc := &scriptedVerifier{statuses: []*verifier.TxStatusResult{
		{Status: models.TxStatusSettled, TxHash: "0xtx"},
		{Status: models.TxStatusPending}, // stale conflicting answer
	}}
	store := newTestStore(vc, nil, nil)

	store.Track(context.Background(), trackedMsg(time.Now().Add(time.Hour).Unix()), "0xhash")
	waitForState(t, store, "intent-1", models.IntentStateCompleted)

	// Apply a stale non-terminal observation directly; it must be ignored
	terminal := store.apply("intent-1", models.IntentStatus{
		IntentID:  "intent-1",
		State:     models.IntentStatePending,
		UpdatedAt: time.Now(),
	})
	assert.True(t, terminal)

	st, ok := store.GetIntent("intent-1")
	require.True(t, ok)
	assert.Equal(t, models.IntentStateCompleted, st.State)
	assert.NotNil(t, st.CompletedAt)
}

// TestIndexerFallback tests the secondary status source
func TestIndexerFallback(t *testing.T) {
	t.Run("Verifier failure falls back to indexer", func(t *testing.T) {
		vc := &scriptedVerifier{err: verifier.ErrUnreachable}
		ic := &staticIndexer{status: &models.IntentStatus{
			IntentID: "intent-1",
			State:    models.IntentStateExecuting,
		}}
		store := newTestStore(vc, ic, nil)
		defer store.StopAll()

		store.Track(context.Background(), trackedMsg(time.Now().Add(time.Hour).Unix()), "0xhash")

		waitForState(t, store, "intent-1", models.IntentStateExecuting)
		assert.Greater(t, ic.callCount(), 0)
	})

	t.Run("Open breaker skips the verifier entirely", func(t *testing.T) {
		vc := &scriptedVerifier{err: verifier.ErrUnreachable}
		ic := &staticIndexer{status: &models.IntentStatus{
			IntentID: "intent-1",
			State:    models.IntentStateCompleted,
		}}
		breaker := circuitbreaker.New(true, 1, time.Minute, time.Minute, &logger.EmptyLogger{})
		breaker.RecordFailure() // trip it

		store := newTestStore(vc, ic, breaker)

		store.Track(context.Background(), trackedMsg(time.Now().Add(time.Hour).Unix()), "0xhash")
		waitForState(t, store, "intent-1", models.IntentStateCompleted)

		assert.Equal(t, 0, vc.callCount())
	})

	t.Run("Verifier 404 is absorbed without fallback or breaker damage", func(t *testing.T) {
		vc := &scriptedVerifier{err: verifier.ErrNotFound}
		ic := &staticIndexer{status: &models.IntentStatus{
			IntentID: "intent-1",
			State:    models.IntentStateCompleted,
		}}
		breaker := circuitbreaker.New(true, 2, time.Minute, time.Minute, &logger.EmptyLogger{})
		store := newTestStore(vc, ic, breaker)
		defer store.StopAll()

		store.Track(context.Background(), trackedMsg(time.Now().Add(time.Hour).Unix()), "0xhash")
		time.Sleep(40 * time.Millisecond)

		// A 404 is the available verifier answering "not yet", so the
		// indexer must never be consulted and the breaker stays closed
		st, ok := store.GetIntent("intent-1")
		require.True(t, ok)
		assert.Equal(t, models.IntentStatePending, st.State)
		assert.Equal(t, 0, ic.callCount())
		assert.False(t, breaker.IsOpen())
		assert.Greater(t, vc.callCount(), 1)
	})

	t.Run("No indexer means transient failures are absorbed", func(t *testing.T) {
		vc := &scriptedVerifier{err: verifier.ErrUnreachable}
		store := newTestStore(vc, nil, nil)
		defer store.StopAll()

		store.Track(context.Background(), trackedMsg(time.Now().Add(time.Hour).Unix()), "0xhash")
		time.Sleep(30 * time.Millisecond)

		st, ok := store.GetIntent("intent-1")
		require.True(t, ok)
		assert.Equal(t, models.IntentStatePending, st.State)
	})
}

// TestStoreSnapshots tests GetTrackedIntents ordering and copies
func TestStoreSnapshots(t *testing.T) {
	vc := &scriptedVerifier{statuses: []*verifier.TxStatusResult{
		{Status: models.TxStatusPending},
	}}
	store := newTestStore(vc, nil, nil)
	defer store.StopAll()

	for _, id := range []string{"a", "b", "c"} {
		msg := trackedMsg(time.Now().Add(time.Hour).Unix())
		msg.IntentID = id
		store.Track(context.Background(), msg, "0x"+id)
		time.Sleep(2 * time.Millisecond)
	}

	intents := store.GetTrackedIntents()
	require.Len(t, intents, 3)

	// Mutating the snapshot must not affect the store
	intents[0].State = models.IntentStateFailed
	st, ok := store.GetIntent(intents[0].IntentID)
	require.True(t, ok)
	assert.NotEqual(t, models.IntentStateFailed, st.State)
}

// TestSnapshotLegIsolation verifies a returned snapshot's transaction
// legs do not alias the store's record, which later polls upgrade in
// place.
func TestSnapshotLegIsolation(t *testing.T) {
	vc := &scriptedVerifier{statuses: []*verifier.TxStatusResult{
		{Status: models.TxStatusBroadcasted, TxHash: "0xtx"},
		{Status: models.TxStatusSettled, TxHash: "0xtx"},
	}}
	store := newTestStore(vc, nil, nil)

	store.Track(context.Background(), trackedMsg(time.Now().Add(time.Hour).Unix()), "0xhash")

	snap := waitForState(t, store, "intent-1", models.IntentStateExecuting)
	require.NotEmpty(t, snap.Transactions)
	assert.Equal(t, models.TxStatusBroadcasted, snap.Transactions[0].Status)

	waitForState(t, store, "intent-1", models.IntentStateCompleted)

	// The store's leg advanced; the earlier snapshot's must not have
	cur, ok := store.GetIntent("intent-1")
	require.True(t, ok)
	require.NotEmpty(t, cur.Transactions)
	assert.Equal(t, models.TxStatusSettled, cur.Transactions[0].Status)
	assert.Equal(t, models.TxStatusBroadcasted, snap.Transactions[0].Status)

	// Writes through a snapshot must not reach the store either
	cur.Transactions[0].TxHash = "0xcorrupt"
	again, ok := store.GetIntent("intent-1")
	require.True(t, ok)
	assert.Equal(t, "0xtx", again.Transactions[0].TxHash)
}

// TestSnapshotPersistence tests save and load round-trips
func TestSnapshotPersistence(t *testing.T) {
	vc := &scriptedVerifier{statuses: []*verifier.TxStatusResult{
		{Status: models.TxStatusSettled, TxHash: "0xtx"},
	}}
	store := newTestStore(vc, nil, nil)

	store.Track(context.Background(), trackedMsg(time.Now().Add(time.Hour).Unix()), "0xhash")
	waitForState(t, store, "intent-1", models.IntentStateCompleted)

	path := t.TempDir() + "/intents.json"
	require.NoError(t, store.SaveSnapshot(path, "alice.near"))

	t.Run("Load for same account", func(t *testing.T) {
		entries, err := LoadSnapshot(path, "alice.near")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "intent-1", entries[0].Status.IntentID)
		assert.Equal(t, models.IntentStateCompleted, entries[0].Status.State)
		assert.Greater(t, entries[0].Deadline, int64(0))
	})

	t.Run("Load for different account", func(t *testing.T) {
		entries, err := LoadSnapshot(path, "bob.near")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Missing file", func(t *testing.T) {
		entries, err := LoadSnapshot(t.TempDir()+"/nope.json", "alice.near")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Resume terminal entry without polling", func(t *testing.T) {
		entries, err := LoadSnapshot(path, "alice.near")
		require.NoError(t, err)
		require.Len(t, entries, 1)

		fresh := newTestStore(&scriptedVerifier{err: verifier.ErrUnreachable}, nil, nil)
		fresh.Resume(context.Background(), entries[0])

		st, ok := fresh.GetIntent("intent-1")
		require.True(t, ok)
		assert.Equal(t, models.IntentStateCompleted, st.State)
	})
}
