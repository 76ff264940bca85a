package signer

import "errors"

// Signing failures are distinguished so callers can offer the right
// recovery: reconnect, switch wallets, or retry the prompt. None of
// these are retried automatically.
var (
	// ErrWalletNotConnected indicates no wallet session is active
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrUnsupportedSigningMethod indicates the wallet lacks a raw
	// message-signing capability
	ErrUnsupportedSigningMethod = errors.New("wallet does not support message signing")

	// ErrSignatureRejected indicates the user declined the signing
	// prompt; surfaced verbatim, never retried silently
	ErrSignatureRejected = errors.New("signature rejected by user")

	// ErrSigningKeyUnavailable indicates neither the sign result nor the
	// wallet's account list yielded a public key
	ErrSigningKeyUnavailable = errors.New("signing public key unavailable")
)
