package signer

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// KeyWallet is an in-process wallet backed by a raw ed25519 key. It is
// used by the CLI (key loaded from configuration) and by tests; browser
// and hardware wallets reach the engine through the same Wallet
// interface.
type KeyWallet struct {
	accountID string
	key       ed25519.PrivateKey
}

// NewKeyWallet creates a wallet from a base58-encoded ed25519 private
// key, accepting the conventional "ed25519:" prefix.
func NewKeyWallet(accountID, encodedKey string) (*KeyWallet, error) {
	if encodedKey == "" {
		return nil, ErrWalletNotConnected
	}
	if len(encodedKey) > 8 && encodedKey[:8] == "ed25519:" {
		encodedKey = encodedKey[8:]
	}
	raw, err := base58.Decode(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key encoding: %v", err)
	}

	var key ed25519.PrivateKey
	switch len(raw) {
	case ed25519.PrivateKeySize:
		key = ed25519.PrivateKey(raw)
	case ed25519.SeedSize:
		key = ed25519.NewKeyFromSeed(raw)
	default:
		return nil, fmt.Errorf("invalid private key length: %d", len(raw))
	}

	return &KeyWallet{accountID: accountID, key: key}, nil
}

// NewKeyWalletFromSeed creates a wallet directly from a 32-byte seed
func NewKeyWalletFromSeed(accountID string, seed []byte) (*KeyWallet, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid seed length: %d", len(seed))
	}
	return &KeyWallet{accountID: accountID, key: ed25519.NewKeyFromSeed(seed)}, nil
}

// PublicKey returns the wallet's public key in ed25519:<base58> form
func (w *KeyWallet) PublicKey() string {
	pub := w.key.Public().(ed25519.PublicKey)
	return "ed25519:" + base58.Encode(pub)
}

// SignMessage signs the canonical digest of the request
func (w *KeyWallet) SignMessage(ctx context.Context, req SignRequest) (*SignResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrSignatureRejected
	}
	digest, err := Digest(req)
	if err != nil {
		return nil, err
	}
	return &SignResult{
		Signature: ed25519.Sign(w.key, digest[:]),
		PublicKey: w.PublicKey(),
	}, nil
}

// SignIn returns the wallet's single account
func (w *KeyWallet) SignIn(ctx context.Context) ([]Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []Account{{AccountID: w.accountID, PublicKey: w.PublicKey()}}, nil
}
