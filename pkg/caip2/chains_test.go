package caip2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestResolve tests chain name to CAIP-2 mapping
func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"near", "near", Near},
		{"ethereum full name", "ethereum", Ethereum},
		{"ethereum short name", "eth", Ethereum},
		{"solana short name", "sol", Solana},
		{"case insensitive", "NEAR", Near},
		{"whitespace trimmed", " base ", Base},
		{"already caip2", "eip155:1", Ethereum},
		{"unknown caip2 passthrough", "cosmos:cosmoshub-4", "cosmos:cosmoshub-4"},
		{"unknown name passthrough", "newchain", "newchain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.input))
		})
	}
}

func TestIsEVM(t *testing.T) {
	assert.True(t, IsEVM(Ethereum))
	assert.True(t, IsEVM(Base))
	assert.True(t, IsEVM(Arbitrum))
	assert.False(t, IsEVM(Near))
	assert.False(t, IsEVM(Solana))
	assert.False(t, IsEVM(Bitcoin))
}

func TestHasTrackableFinality(t *testing.T) {
	assert.True(t, HasTrackableFinality(Near))
	assert.True(t, HasTrackableFinality(Ethereum))

	// UTXO chains have no queryable finality signal
	assert.False(t, HasTrackableFinality(Zcash))
	assert.False(t, HasTrackableFinality(Bitcoin))
}

func TestRequiresTrustline(t *testing.T) {
	assert.True(t, RequiresTrustline(Stellar))
	assert.False(t, RequiresTrustline(Near))
	assert.False(t, RequiresTrustline(Ethereum))
}
