package settlement

import "errors"

// Economic errors from fee estimation. None of these are retryable
// without changing the input parameters, so callers must not loop on
// them; each carries a human-readable reason distinct from transient
// transport messages.
var (
	// ErrFeeExceedsAmount indicates the computed fee is larger than the
	// requested withdrawal amount
	ErrFeeExceedsAmount = errors.New("fee exceeds withdrawal amount")

	// ErrMinWithdrawalAmount indicates the amount is below the protocol
	// minimum for the destination chain
	ErrMinWithdrawalAmount = errors.New("amount below minimum withdrawal")

	// ErrTrustlineNotFound indicates no settlement path exists because
	// the recipient lacks a trustline for the asset
	ErrTrustlineNotFound = errors.New("trustline not found for destination account")

	// ErrTokenNotFoundInDestinationChain indicates the asset has no
	// route on the destination chain
	ErrTokenNotFoundInDestinationChain = errors.New("token has no route on destination chain")
)

// Precondition errors, raised locally before any network call
var (
	// ErrIntentExpired indicates the intent deadline already passed at
	// submit time
	ErrIntentExpired = errors.New("intent deadline has passed")

	// ErrMalformedAmount indicates an amount field is not a
	// non-negative integer in smallest units
	ErrMalformedAmount = errors.New("malformed intent amount")
)
