package intent

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseAmount converts a human-readable decimal amount into the asset's
// smallest indivisible unit using the token's declared decimals. Inputs
// must be finite non-negative decimals with at most `decimals` fractional
// digits; anything else is rejected.
func ParseAmount(amount string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("invalid decimals: %d", decimals)
	}
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(amount, "-") || strings.HasPrefix(amount, "+") {
		return nil, fmt.Errorf("amount must be an unsigned decimal: %q", amount)
	}

	intPart, fracPart, hasFrac := strings.Cut(amount, ".")
	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("invalid amount: %q", amount)
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (hasFrac && fracPart != "" && !isDigits(fracPart)) {
		return nil, fmt.Errorf("invalid amount: %q", amount)
	}
	if len(fracPart) > decimals {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}

	// Pad the fractional part out to the full precision and concatenate
	digits := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", amount)
	}
	return v, nil
}

// FormatAmount renders a smallest-unit integer as a human-readable
// decimal, trimming trailing zeros. It is the inverse of ParseAmount for
// normalized inputs.
func FormatAmount(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	s := v.String()
	if decimals == 0 {
		return s
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
