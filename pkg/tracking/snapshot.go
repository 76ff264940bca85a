package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tachyon-hq/intent-engine/pkg/models"
)

const (
	// DefaultSnapshotFileName is the per-user cache of observed intents
	DefaultSnapshotFileName = ".intent-engine-intents.json"
)

// snapshotFile is the JSON structure persisted to disk. The snapshot is
// a UI convenience, not a source of truth: entries are reconciled
// against the verifier on load, never trusted blindly.
type snapshotFile struct {
	AccountID string                         `json:"account_id"`
	SavedAt   time.Time                      `json:"saved_at"`
	Intents   map[string]models.IntentStatus `json:"intents"`
	Deadlines map[string]int64               `json:"deadlines,omitempty"`
}

// SnapshotEntry is one restored intent observation with the deadline it
// was originally tracked under.
type SnapshotEntry struct {
	Status   models.IntentStatus
	Deadline int64
}

// SnapshotPath resolves the default snapshot location in the user's
// home directory.
func SnapshotPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultSnapshotFileName), nil
}

// SaveSnapshot writes the current tracked view to disk, keyed by
// account.
func (s *Store) SaveSnapshot(path, accountID string) error {
	s.mu.Lock()
	snap := snapshotFile{
		AccountID: accountID,
		SavedAt:   time.Now(),
		Intents:   make(map[string]models.IntentStatus, len(s.intents)),
		Deadlines: make(map[string]int64, len(s.intents)),
	}
	for id, rec := range s.intents {
		snap.Intents[id] = cloneStatus(rec.status)
		if rec.deadline > 0 {
			snap.Deadlines[id] = rec.deadline
		}
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a previously saved view for the given account and
// returns its entries. A missing file yields an empty slice. The
// returned statuses are stale observations; callers must re-track any
// non-terminal entry so it is reconciled against the verifier.
func LoadSnapshot(path, accountID string) ([]SnapshotEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.AccountID != accountID {
		return nil, nil
	}

	out := make([]SnapshotEntry, 0, len(snap.Intents))
	for id, st := range snap.Intents {
		out = append(out, SnapshotEntry{Status: st, Deadline: snap.Deadlines[id]})
	}
	return out, nil
}

// Resume re-registers a previously observed non-terminal intent so its
// polling restarts. Terminal entries are recorded as-is and not polled.
func (s *Store) Resume(ctx context.Context, entry SnapshotEntry) {
	st := entry.Status
	if st.State.IsTerminal() {
		s.mu.Lock()
		if _, exists := s.intents[st.IntentID]; !exists {
			s.intents[st.IntentID] = &tracked{
				status:   st,
				deadline: entry.Deadline,
				cancel:   func() {},
				started:  time.Now(),
			}
		}
		s.mu.Unlock()
		return
	}
	s.Track(ctx, &models.IntentMessage{IntentID: st.IntentID, Deadline: entry.Deadline}, st.IntentHash)
}
