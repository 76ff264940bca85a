// Package settlement orchestrates the intent lifecycle after a quote
// has been chosen: sign, submit, and observe settlement.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/tachyon-hq/intent-engine/pkg/caip2"
	"github.com/tachyon-hq/intent-engine/pkg/intent"
	"github.com/tachyon-hq/intent-engine/pkg/logger"
	"github.com/tachyon-hq/intent-engine/pkg/metrics"
	"github.com/tachyon-hq/intent-engine/pkg/models"
	"github.com/tachyon-hq/intent-engine/pkg/signer"
	"github.com/tachyon-hq/intent-engine/pkg/verifier"
)

// minWithdrawalAmounts holds per-chain protocol minimums in the asset's
// smallest unit. Chains absent from the table have no minimum.
var minWithdrawalAmounts = map[string]*big.Int{
	caip2.Ethereum: big.NewInt(1000000),
	caip2.Bitcoin:  big.NewInt(10000),
	caip2.Zcash:    big.NewInt(10000),
}

// Facade is the single entry point for signing, submitting, and
// waiting on intents.
type Facade struct {
	signer            *signer.Adapter
	verifier          verifier.Client
	recipient         string
	pollInterval      time.Duration
	settlementTimeout time.Duration
	logger            logger.Logger
}

// Option configures a Facade
type Option func(*Facade)

// WithPollInterval overrides the settlement polling interval
func WithPollInterval(d time.Duration) Option {
	return func(f *Facade) { f.pollInterval = d }
}

// WithSettlementTimeout overrides the blocking-wait timeout
func WithSettlementTimeout(d time.Duration) Option {
	return func(f *Facade) { f.settlementTimeout = d }
}

// New creates a settlement facade. The recipient identifies the
// verifier contract every signature is bound to.
func New(sig *signer.Adapter, vc verifier.Client, recipient string, log logger.Logger, opts ...Option) *Facade {
	f := &Facade{
		signer:            sig,
		verifier:          vc,
		recipient:         recipient,
		pollInterval:      2 * time.Second,
		settlementTimeout: 5 * time.Minute,
		logger:            log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SubmitResult identifies an accepted submission
type SubmitResult struct {
	IntentHash string
}

// SignAndSubmit signs the given intents and submits them to the
// verifier, returning the stable hash identifying the submission.
// Expired or malformed intents fail locally before any network call.
func (f *Facade) SignAndSubmit(ctx context.Context, intents []models.IntentMessage) (*SubmitResult, error) {
	if len(intents) == 0 {
		return nil, fmt.Errorf("no intents to submit")
	}
	now := time.Now().Unix()
	for i := range intents {
		if err := validateIntent(&intents[i], now); err != nil {
			return nil, err
		}
	}

	signed := make([]models.SignedIntent, 0, len(intents))
	for i := range intents {
		raw, err := intent.Canonical(intents[i : i+1])
		if err != nil {
			return nil, err
		}
		sig, err := f.signer.Sign(ctx, signer.Payload{
			Message:   string(raw),
			Recipient: f.recipient,
		})
		if err != nil {
			metrics.SigningErrors.WithLabelValues(signingErrorKind(err)).Inc()
			return nil, fmt.Errorf("failed to sign intent %s: %w", intents[i].IntentID, err)
		}
		signed = append(signed, models.SignedIntent{
			Intent:    intents[i],
			Signature: sig.Signature,
			PublicKey: sig.PublicKey,
		})
	}

	hash, err := f.verifier.Submit(ctx, signed)
	if err != nil {
		return nil, fmt.Errorf("failed to submit signed intents: %w", err)
	}

	for i := range intents {
		metrics.IntentsSubmitted.WithLabelValues(string(intents[i].IntentType)).Inc()
		f.logger.InfoWithChain(intents[i].Source.ChainID,
			"Submitted intent %s (hash %s)", intents[i].IntentID, hash)
	}
	return &SubmitResult{IntentHash: hash}, nil
}

// validateIntent enforces local preconditions: a future deadline and
// non-negative integer amounts in smallest units.
func validateIntent(msg *models.IntentMessage, now int64) error {
	if msg.Deadline <= now {
		return fmt.Errorf("%w: intent %s expired at %d", ErrIntentExpired, msg.IntentID, msg.Deadline)
	}
	for _, amount := range []string{msg.Source.Amount, msg.Source.MinAmount, msg.Destination.MinAmount} {
		if amount == "" {
			continue
		}
		v, ok := new(big.Int).SetString(amount, 10)
		if !ok || v.Sign() < 0 {
			return fmt.Errorf("%w: %q", ErrMalformedAmount, amount)
		}
	}
	if msg.Creator == "" {
		return fmt.Errorf("%w: intent %s has no creator", ErrMalformedAmount, msg.IntentID)
	}
	return nil
}

// WithdrawalParams describe a single withdrawal to estimate or execute
type WithdrawalParams struct {
	AssetID          string
	Symbol           string
	Decimals         int
	Amount           string // human-readable decimal
	SourceChain      string
	DestinationChain string
	Recipient        string
	Creator          string
}

// FeeEstimation is the pure fee query result; nothing is submitted
type FeeEstimation struct {
	Amount         string
	Fee            string
	ReceivedAmount string
	Symbol         string
	Decimals       int
}

// EstimateFee computes the fee for a withdrawal without submitting
// anything. The economic error kinds it returns are terminal for the
// given inputs.
func (f *Facade) EstimateFee(ctx context.Context, params WithdrawalParams) (*FeeEstimation, error) {
	amount, err := intent.ParseAmount(params.Amount, params.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAmount, err)
	}

	destChain := caip2.Resolve(params.DestinationChain)
	if min, ok := minWithdrawalAmounts[destChain]; ok && amount.Cmp(min) < 0 {
		metrics.FeeEstimationErrors.WithLabelValues("min_withdrawal").Inc()
		return nil, fmt.Errorf("%w: %s < %s on %s",
			ErrMinWithdrawalAmount, amount.String(), min.String(), destChain)
	}

	msg, err := f.buildWithdrawalIntent(params, amount)
	if err != nil {
		return nil, err
	}

	sim, err := f.verifier.Simulate(ctx, []models.IntentMessage{*msg})
	if err != nil {
		return nil, fmt.Errorf("fee simulation failed: %w", err)
	}
	if !sim.Success {
		return nil, classifySimulationError(sim.Error)
	}

	fee, ok := new(big.Int).SetString(sim.EstimatedFee, 10)
	if !ok {
		return nil, fmt.Errorf("verifier returned malformed fee %q", sim.EstimatedFee)
	}
	if fee.Cmp(amount) >= 0 {
		metrics.FeeEstimationErrors.WithLabelValues("fee_exceeds_amount").Inc()
		return nil, fmt.Errorf("%w: fee %s, amount %s",
			ErrFeeExceedsAmount, intent.FormatAmount(fee, params.Decimals), params.Amount)
	}

	received := new(big.Int).Sub(amount, fee)
	return &FeeEstimation{
		Amount:         amount.String(),
		Fee:            fee.String(),
		ReceivedAmount: received.String(),
		Symbol:         params.Symbol,
		Decimals:       params.Decimals,
	}, nil
}

// classifySimulationError maps verifier simulation failures onto the
// economic error taxonomy.
func classifySimulationError(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "trustline"):
		metrics.FeeEstimationErrors.WithLabelValues("trustline_not_found").Inc()
		return fmt.Errorf("%w: %s", ErrTrustlineNotFound, msg)
	case strings.Contains(lower, "no route"), strings.Contains(lower, "token not found"),
		strings.Contains(lower, "unsupported token"):
		metrics.FeeEstimationErrors.WithLabelValues("token_not_found").Inc()
		return fmt.Errorf("%w: %s", ErrTokenNotFoundInDestinationChain, msg)
	case strings.Contains(lower, "minimum"):
		metrics.FeeEstimationErrors.WithLabelValues("min_withdrawal").Inc()
		return fmt.Errorf("%w: %s", ErrMinWithdrawalAmount, msg)
	default:
		return fmt.Errorf("withdrawal simulation rejected: %s", msg)
	}
}

func (f *Facade) buildWithdrawalIntent(params WithdrawalParams, amount *big.Int) (*models.IntentMessage, error) {
	msg, err := intent.Build(intent.BuildParams{
		Source: intent.TokenDescriptor{
			Chain:    params.SourceChain,
			AssetID:  params.AssetID,
			Decimals: params.Decimals,
		},
		Destination: intent.TokenDescriptor{
			Chain:    params.DestinationChain,
			AssetID:  params.AssetID,
			Decimals: params.Decimals,
		},
		Amount:     intent.FormatAmount(amount, params.Decimals),
		Recipient:  params.Recipient,
		Creator:    params.Creator,
		IntentType: models.IntentTypeTransfer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build withdrawal intent: %w", err)
	}
	return msg, nil
}

// DestinationTxStatus describes the destination-chain leg of a
// completed withdrawal.
type DestinationTxStatus string

const (
	// DestinationTxConfirmed means the destination leg was observed
	DestinationTxConfirmed DestinationTxStatus = "confirmed"

	// DestinationTxNotTrackable means the destination chain has no
	// independently observable finality signal. Not a failure.
	DestinationTxNotTrackable DestinationTxStatus = "notTrackable"
)

// DestinationTx is the destination-leg result of a withdrawal
type DestinationTx struct {
	Status DestinationTxStatus
	TxHash string
}

// WithdrawalResult is the outcome of an end-to-end withdrawal
type WithdrawalResult struct {
	IntentHash    string
	IntentTx      *SettlementResult
	DestinationTx *DestinationTx
}

// ProcessWithdrawal runs a single withdrawal end to end: build, sign,
// submit, then block until the intent settles or the wait times out.
func (f *Facade) ProcessWithdrawal(ctx context.Context, params WithdrawalParams) (*WithdrawalResult, error) {
	estimation, err := f.EstimateFee(ctx, params)
	if err != nil {
		return nil, err
	}

	amount, _ := new(big.Int).SetString(estimation.Amount, 10)
	msg, err := f.buildWithdrawalIntent(params, amount)
	if err != nil {
		return nil, err
	}

	submitted, err := f.SignAndSubmit(ctx, []models.IntentMessage{*msg})
	if err != nil {
		return nil, err
	}

	settled, err := f.WaitForIntentSettlement(ctx, submitted.IntentHash)
	if err != nil {
		return nil, err
	}

	result := &WithdrawalResult{
		IntentHash: submitted.IntentHash,
		IntentTx:   settled,
	}

	destChain := caip2.Resolve(params.DestinationChain)
	if !caip2.HasTrackableFinality(destChain) {
		result.DestinationTx = &DestinationTx{Status: DestinationTxNotTrackable}
		return result, nil
	}
	if settled.Status == models.TxStatusSettled {
		result.DestinationTx = &DestinationTx{
			Status: DestinationTxConfirmed,
			TxHash: settled.TxHash,
		}
	}
	return result, nil
}

// SettlementResult is the terminal observation of a submission
type SettlementResult struct {
	Hash      string
	Status    models.TxStatus
	TxHash    string
	AccountID string
}

// WaitForIntentSettlement polls the verifier until the per-transaction
// status leaves PENDING/TX_BROADCASTED, or the settlement timeout
// elapses, in which case it returns NOT_FOUND_OR_NOT_VALID rather than
// an error so callers can distinguish "not yet settled" from
// "rejected". Polls are strictly sequential; transient poll failures
// are logged and absorbed.
func (f *Facade) WaitForIntentSettlement(ctx context.Context, intentHash string) (*SettlementResult, error) {
	deadline := time.Now().Add(f.settlementTimeout)
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		status, err := f.verifier.GetStatus(ctx, intentHash)
		switch {
		case err == nil:
			metrics.StatusPolls.WithLabelValues("verifier", "ok").Inc()
			if status.Status.Settled() {
				return &SettlementResult{
					Hash:      intentHash,
					Status:    status.Status,
					TxHash:    status.TxHash,
					AccountID: status.AccountID,
				}, nil
			}
		case errors.Is(err, verifier.ErrNotFound):
			// The verifier may briefly lag its own submission endpoint
			metrics.StatusPolls.WithLabelValues("verifier", "not_found").Inc()
			f.logger.Debug("Intent %s not yet visible to verifier", intentHash)
		default:
			metrics.StatusPolls.WithLabelValues("verifier", "error").Inc()
			f.logger.Error("Settlement poll for %s failed: %v", intentHash, err)
		}

		if time.Now().After(deadline) {
			return &SettlementResult{Hash: intentHash, Status: models.TxStatusNotFoundOrInvalid}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func signingErrorKind(err error) string {
	switch {
	case errors.Is(err, signer.ErrWalletNotConnected):
		return "wallet_not_connected"
	case errors.Is(err, signer.ErrUnsupportedSigningMethod):
		return "unsupported_method"
	case errors.Is(err, signer.ErrSignatureRejected):
		return "rejected"
	case errors.Is(err, signer.ErrSigningKeyUnavailable):
		return "key_unavailable"
	default:
		return "unknown"
	}
}
