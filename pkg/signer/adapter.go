// Package signer binds a wallet's raw message-signing capability to the
// canonical NEP-413-style signing protocol: message + recipient + nonce
// produce a signature and the public key that made it.
package signer

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/near/borsh-go"
)

// NonceSize is the required nonce length in bytes
const NonceSize = 32

// nep413Tag is the NEP-413 domain separation prefix (2^31 + 413)
const nep413Tag = uint32(1<<31 + 413)

// SignRequest is the payload handed to a wallet's signing primitive
type SignRequest struct {
	Message   string
	Recipient string
	Nonce     [NonceSize]byte
}

// SignResult is what a wallet returns from a signing prompt. PublicKey
// may be empty; the adapter falls back to the wallet's account list.
type SignResult struct {
	Signature []byte
	PublicKey string
}

// Account is one entry of a wallet's active-account list
type Account struct {
	AccountID string
	PublicKey string
}

// Wallet is the fixed capability interface every wallet implementation
// must be adapted to before reaching the engine. Heterogeneous wallet
// shapes are normalized here; the core never branches on wallet identity.
type Wallet interface {
	SignMessage(ctx context.Context, req SignRequest) (*SignResult, error)
	SignIn(ctx context.Context) ([]Account, error)
}

// Payload is a request to sign a message bound to a recipient. A zero or
// absent nonce is replaced with fresh cryptographically random bytes;
// callers may pin a nonce, but reusing one across two different intents
// from the same signer is a protocol violation.
type Payload struct {
	Message   string
	Recipient string
	Nonce     *[NonceSize]byte
}

// Signature is the adapter's output: the signature bytes and the public
// key the wallet actually signed with.
type Signature struct {
	PublicKey string
	Signature []byte
	Nonce     [NonceSize]byte
}

// Adapter bridges a Wallet to the canonical signing protocol. It holds
// no state; every call is independent.
type Adapter struct {
	wallet Wallet
}

// NewAdapter creates an adapter over the given wallet
func NewAdapter(wallet Wallet) *Adapter {
	return &Adapter{wallet: wallet}
}

// Sign produces a signature over the payload's message bound to the
// recipient and a nonce. The public key is taken from the sign result
// when present, then from the wallet's account list, and failing both
// the call errors with ErrSigningKeyUnavailable. That order must not
// change: downstream verification depends on using the key the wallet
// actually signed with.
func (a *Adapter) Sign(ctx context.Context, payload Payload) (*Signature, error) {
	if a.wallet == nil {
		return nil, ErrWalletNotConnected
	}

	nonce, err := resolveNonce(payload.Nonce)
	if err != nil {
		return nil, err
	}

	result, err := a.wallet.SignMessage(ctx, SignRequest{
		Message:   payload.Message,
		Recipient: payload.Recipient,
		Nonce:     nonce,
	})
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Signature) == 0 {
		return nil, ErrSignatureRejected
	}

	publicKey := result.PublicKey
	if publicKey == "" {
		publicKey, err = a.fallbackPublicKey(ctx)
		if err != nil {
			return nil, err
		}
	}

	return &Signature{
		PublicKey: publicKey,
		Signature: result.Signature,
		Nonce:     nonce,
	}, nil
}

// fallbackPublicKey queries the wallet's active-account list and uses
// the first account's public key.
func (a *Adapter) fallbackPublicKey(ctx context.Context) (string, error) {
	accounts, err := a.wallet.SignIn(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningKeyUnavailable, err)
	}
	for _, acct := range accounts {
		if acct.PublicKey != "" {
			return acct.PublicKey, nil
		}
	}
	return "", ErrSigningKeyUnavailable
}

// resolveNonce returns the pinned nonce, or fresh random bytes when the
// nonce is absent or all-zero.
func resolveNonce(pinned *[NonceSize]byte) ([NonceSize]byte, error) {
	var zero [NonceSize]byte
	if pinned != nil && *pinned != zero {
		return *pinned, nil
	}
	var nonce [NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return zero, fmt.Errorf("failed to generate nonce: %v", err)
	}
	return nonce, nil
}

// nep413Payload is the borsh schema of the signed envelope
type nep413Payload struct {
	Message     string
	Nonce       [NonceSize]byte
	Recipient   string
	CallbackURL *string
}

// Digest computes the canonical signing digest for a request: the
// borsh-serialized payload prefixed with the protocol tag, hashed with
// SHA-256. Wallet implementations sign this digest.
func Digest(req SignRequest) ([32]byte, error) {
	var digest [32]byte
	body, err := borsh.Serialize(nep413Payload{
		Message:   req.Message,
		Nonce:     req.Nonce,
		Recipient: req.Recipient,
	})
	if err != nil {
		return digest, fmt.Errorf("failed to serialize signing payload: %v", err)
	}

	buf := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(buf, nep413Tag)
	buf = append(buf, body...)
	return sha256.Sum256(buf), nil
}
