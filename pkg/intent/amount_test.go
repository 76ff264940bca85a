package intent

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseAmount tests human-to-smallest-unit conversion
func TestParseAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		tests := []struct {
			name     string
			amount   string
			decimals int
			expected string
		}{
			{"whole USDC", "100", 6, "100000000"},
			{"fractional USDC", "0.5", 6, "500000"},
			{"full precision", "1.234567", 6, "1234567"},
			{"zero", "0", 6, "0"},
			{"zero decimals", "42", 0, "42"},
			{"leading dot", ".25", 2, "25"},
			{"trailing dot", "3.", 6, "3000000"},
			{"near yocto", "1.5", 24, "1500000000000000000000000"},
			{"whitespace tolerated", " 12.5 ", 6, "12500000"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				v, err := ParseAmount(tt.amount, tt.decimals)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, v.String())
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		tests := []struct {
			name     string
			amount   string
			decimals int
		}{
			{"empty", "", 6},
			{"negative", "-1", 6},
			{"explicit plus", "+1", 6},
			{"not a number", "abc", 6},
			{"two dots", "1.2.3", 6},
			{"bare dot", ".", 6},
			{"excess precision", "0.1234567", 6},
			{"scientific notation", "1e6", 6},
			{"hex digits", "0x10", 6},
			{"negative decimals", "1", -1},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParseAmount(tt.amount, tt.decimals)
				assert.Error(t, err)
			})
		}
	})
}

// TestFormatAmount tests smallest-unit-to-human rendering
func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		decimals int
		expected string
	}{
		{"whole units", "100000000", 6, "100"},
		{"trailing zeros trimmed", "500000", 6, "0.5"},
		{"full precision kept", "1234567", 6, "1.234567"},
		{"sub-unit", "1", 6, "0.000001"},
		{"zero", "0", 6, "0"},
		{"zero decimals", "42", 0, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := new(big.Int).SetString(tt.value, 10)
			require.True(t, ok)
			assert.Equal(t, tt.expected, FormatAmount(v, tt.decimals))
		})
	}

	t.Run("Nil value", func(t *testing.T) {
		assert.Equal(t, "0", FormatAmount(nil, 6))
	})
}

// TestAmountRoundTrip verifies parse then format returns the input for
// normalized decimals
func TestAmountRoundTrip(t *testing.T) {
	inputs := []struct {
		amount   string
		decimals int
	}{
		{"100", 6},
		{"0.5", 6},
		{"1.234567", 6},
		{"0.00000001", 8},
		{"1.5", 24},
	}

	for _, tt := range inputs {
		v, err := ParseAmount(tt.amount, tt.decimals)
		require.NoError(t, err)
		assert.Equal(t, tt.amount, FormatAmount(v, tt.decimals))
	}
}
