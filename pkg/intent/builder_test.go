package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-hq/intent-engine/pkg/caip2"
	"github.com/tachyon-hq/intent-engine/pkg/models"
)

func validParams() BuildParams {
	return BuildParams{
		Source: TokenDescriptor{
			Chain:    "near",
			AssetID:  "usdc.tkn.near",
			Decimals: 6,
		},
		Destination: TokenDescriptor{
			Chain:    "ethereum",
			AssetID:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			Decimals: 6,
		},
		Amount:    "100",
		Recipient: "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		Creator:   "alice.near",
	}
}

// TestBuild tests intent construction from caller parameters
func TestBuild(t *testing.T) {
	t.Run("Valid swap intent", func(t *testing.T) {
		msg, err := Build(validParams())
		require.NoError(t, err)

		assert.NotEmpty(t, msg.IntentID)
		assert.Equal(t, models.IntentTypeSwap, msg.IntentType)
		assert.Equal(t, caip2.Near, msg.Source.ChainID)
		assert.Equal(t, caip2.Ethereum, msg.Destination.ChainID)
		assert.Equal(t, "100000000", msg.Source.Amount)
		assert.Equal(t, "100000000", msg.Source.MinAmount)
		assert.Equal(t, "0", msg.Destination.MinAmount)
		assert.Equal(t, "alice.near", msg.Creator)
	})

	t.Run("Unique intent IDs", func(t *testing.T) {
		a, err := Build(validParams())
		require.NoError(t, err)
		b, err := Build(validParams())
		require.NoError(t, err)
		assert.NotEqual(t, a.IntentID, b.IntentID)
	})

	t.Run("Default deadline window", func(t *testing.T) {
		before := time.Now().Add(DefaultDeadlineWindow).Unix()
		msg, err := Build(validParams())
		require.NoError(t, err)
		after := time.Now().Add(DefaultDeadlineWindow).Unix()

		assert.GreaterOrEqual(t, msg.Deadline, before)
		assert.LessOrEqual(t, msg.Deadline, after)
	})

	t.Run("Explicit deadline", func(t *testing.T) {
		params := validParams()
		deadline := time.Now().Add(5 * time.Minute)
		params.Deadline = deadline

		msg, err := Build(params)
		require.NoError(t, err)
		assert.Equal(t, deadline.Unix(), msg.Deadline)
	})

	t.Run("Past deadline rejected", func(t *testing.T) {
		params := validParams()
		params.Deadline = time.Now().Add(-time.Minute)

		_, err := Build(params)
		assert.Error(t, err)
	})

	t.Run("Min destination amount", func(t *testing.T) {
		params := validParams()
		params.MinDestAmount = "99.5"

		msg, err := Build(params)
		require.NoError(t, err)
		assert.Equal(t, "99500000", msg.Destination.MinAmount)
	})

	t.Run("Missing creator rejected", func(t *testing.T) {
		params := validParams()
		params.Creator = ""

		_, err := Build(params)
		assert.Error(t, err)
	})

	t.Run("Missing recipient rejected", func(t *testing.T) {
		params := validParams()
		params.Recipient = ""

		_, err := Build(params)
		assert.Error(t, err)
	})

	t.Run("Invalid EVM recipient rejected", func(t *testing.T) {
		params := validParams()
		params.Recipient = "alice.near"

		_, err := Build(params)
		assert.Error(t, err)
	})

	t.Run("Non-EVM destination skips address check", func(t *testing.T) {
		params := validParams()
		params.Destination.Chain = "near"
		params.Destination.AssetID = "wrap.near"
		params.Recipient = "bob.near"

		_, err := Build(params)
		assert.NoError(t, err)
	})

	t.Run("CAIP-2 passthrough", func(t *testing.T) {
		params := validParams()
		params.Source.Chain = "eip155:42161"
		params.Destination.Chain = "near"
		params.Destination.AssetID = "wrap.near"
		params.Recipient = "bob.near"

		msg, err := Build(params)
		require.NoError(t, err)
		assert.Equal(t, "eip155:42161", msg.Source.ChainID)
	})

	t.Run("Invalid amount rejected", func(t *testing.T) {
		params := validParams()
		params.Amount = "-5"

		_, err := Build(params)
		assert.Error(t, err)
	})
}

// TestCanonical tests the signed byte string and its hash
func TestCanonical(t *testing.T) {
	t.Run("Deterministic serialization", func(t *testing.T) {
		msg, err := Build(validParams())
		require.NoError(t, err)

		a, err := Canonical([]models.IntentMessage{*msg})
		require.NoError(t, err)
		b, err := Canonical([]models.IntentMessage{*msg})
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Contains(t, string(a), `"intents":[`)
	})

	t.Run("Empty batch rejected", func(t *testing.T) {
		_, err := Canonical(nil)
		assert.Error(t, err)
	})

	t.Run("Hash is stable and prefixed", func(t *testing.T) {
		msg, err := Build(validParams())
		require.NoError(t, err)

		h1, err := Hash([]models.IntentMessage{*msg})
		require.NoError(t, err)
		h2, err := Hash([]models.IntentMessage{*msg})
		require.NoError(t, err)

		assert.Equal(t, h1, h2)
		assert.Len(t, h1, 66) // 0x + 32 bytes hex
	})

	t.Run("Hash changes with content", func(t *testing.T) {
		a, err := Build(validParams())
		require.NoError(t, err)
		b, err := Build(validParams())
		require.NoError(t, err)

		ha, err := Hash([]models.IntentMessage{*a})
		require.NoError(t, err)
		hb, err := Hash([]models.IntentMessage{*b})
		require.NoError(t, err)

		// IDs differ, so hashes must differ
		assert.NotEqual(t, ha, hb)
	})
}
