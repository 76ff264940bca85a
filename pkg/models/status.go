package models

import "time"

// IntentState represents the lifecycle state of a tracked intent
type IntentState string

const (
	// IntentStatePending indicates the intent was submitted but no solver has picked it up
	IntentStatePending IntentState = "pending"

	// IntentStateMatching indicates solvers are competing for the intent
	IntentStateMatching IntentState = "matching"

	// IntentStateExecuting indicates a solver accepted the intent and is executing legs
	IntentStateExecuting IntentState = "executing"

	// IntentStateCompleted indicates the destination-side transfer settled
	IntentStateCompleted IntentState = "completed"

	// IntentStateFailed indicates the verifier reported a terminal failure
	IntentStateFailed IntentState = "failed"

	// IntentStateExpired indicates the deadline passed with no settlement
	IntentStateExpired IntentState = "expired"
)

// IsTerminal reports whether the state admits no further transitions
func (s IntentState) IsTerminal() bool {
	return s == IntentStateCompleted || s == IntentStateFailed || s == IntentStateExpired
}

// TxStatus is the lower-level per-transaction status reported by the
// verifier for the on-chain leg of an intent.
type TxStatus string

const (
	TxStatusPending           TxStatus = "PENDING"
	TxStatusBroadcasted       TxStatus = "TX_BROADCASTED"
	TxStatusSettled           TxStatus = "SETTLED"
	TxStatusNotFoundOrInvalid TxStatus = "NOT_FOUND_OR_NOT_VALID"
)

// Settled reports whether the per-transaction status left the in-flight set
func (s TxStatus) Settled() bool {
	return s != TxStatusPending && s != TxStatusBroadcasted
}

// TransactionLeg records one confirmed on-chain leg of an intent.
// Legs are appended as they confirm and never removed.
type TransactionLeg struct {
	Chain       string   `json:"chain"`
	TxHash      string   `json:"tx_hash"`
	Status      TxStatus `json:"status"`
	BlockNumber uint64   `json:"block_number,omitempty"`
}

// IntentStatus is the locally observed lifecycle record for one intent,
// keyed by intent ID. CompletedAt and Error are mutually exclusive
// terminal fields.
type IntentStatus struct {
	IntentID     string           `json:"intent_id"`
	IntentHash   string           `json:"intent_hash,omitempty"`
	State        IntentState      `json:"state"`
	Transactions []TransactionLeg `json:"transactions,omitempty"`
	ResolverID   string           `json:"resolver_id,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	Error        string           `json:"error,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
