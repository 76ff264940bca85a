// Package intent builds canonical intent messages from swap and
// withdrawal parameters.
package intent

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/tachyon-hq/intent-engine/pkg/caip2"
	"github.com/tachyon-hq/intent-engine/pkg/models"
)

// DefaultDeadlineWindow is how far in the future an intent expires when
// the caller does not supply a deadline.
const DefaultDeadlineWindow = 30 * time.Minute

// TokenDescriptor describes one side of an intent in caller terms:
// a chain name (mapped to CAIP-2), an asset identifier, and the token's
// declared decimals for amount conversion.
type TokenDescriptor struct {
	Chain    string
	AssetID  string
	Decimals int
}

// BuildParams are the inputs to Build. Amount and MinAmount are
// human-readable decimal strings; MinDestAmount bounds the acceptable
// destination output.
type BuildParams struct {
	Source        TokenDescriptor
	Destination   TokenDescriptor
	Amount        string
	MinAmount     string
	MinDestAmount string
	Recipient     string
	Creator       string
	IntentType    models.IntentType
	Deadline      time.Time
	Metadata      map[string]string
}

// Build constructs a canonical IntentMessage from the given parameters.
// It converts human amounts to smallest-unit integers, resolves chain
// names to CAIP-2 identifiers, and applies the default deadline window
// when none is supplied. Build performs no I/O.
func Build(params BuildParams) (*models.IntentMessage, error) {
	if params.Creator == "" {
		return nil, fmt.Errorf("creator account is required")
	}
	if params.Recipient == "" {
		return nil, fmt.Errorf("recipient address is required")
	}

	amount, err := ParseAmount(params.Amount, params.Source.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid source amount: %w", err)
	}

	minAmount := amount
	if params.MinAmount != "" {
		minAmount, err = ParseAmount(params.MinAmount, params.Source.Decimals)
		if err != nil {
			return nil, fmt.Errorf("invalid source min amount: %w", err)
		}
	}

	minDest := "0"
	if params.MinDestAmount != "" {
		v, err := ParseAmount(params.MinDestAmount, params.Destination.Decimals)
		if err != nil {
			return nil, fmt.Errorf("invalid destination min amount: %w", err)
		}
		minDest = v.String()
	}

	sourceChain := caip2.Resolve(params.Source.Chain)
	destChain := caip2.Resolve(params.Destination.Chain)

	if caip2.IsEVM(destChain) && !common.IsHexAddress(params.Recipient) {
		return nil, fmt.Errorf("recipient %q is not a valid address for chain %s", params.Recipient, destChain)
	}

	intentType := params.IntentType
	if intentType == "" {
		intentType = models.IntentTypeSwap
	}

	deadline := params.Deadline
	if deadline.IsZero() {
		deadline = time.Now().Add(DefaultDeadlineWindow)
	}
	if !deadline.After(time.Now()) {
		return nil, fmt.Errorf("deadline %s is not in the future", deadline.UTC().Format(time.RFC3339))
	}

	return &models.IntentMessage{
		IntentID:   uuid.NewString(),
		IntentType: intentType,
		Source: models.AssetSpec{
			ChainID:   sourceChain,
			AssetID:   params.Source.AssetID,
			Amount:    amount.String(),
			MinAmount: minAmount.String(),
		},
		Destination: models.AssetSpec{
			ChainID:          destChain,
			AssetID:          params.Destination.AssetID,
			MinAmount:        minDest,
			RecipientAddress: params.Recipient,
		},
		Creator:  params.Creator,
		Deadline: deadline.Unix(),
		Metadata: params.Metadata,
	}, nil
}
