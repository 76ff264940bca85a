// Package caip2 maps human chain names to CAIP-2 chain identifiers and
// records per-chain capabilities needed by the engine.
package caip2

import "strings"

// Well-known CAIP-2 chain identifiers
const (
	Near     = "near:mainnet"
	Ethereum = "eip155:1"
	Base     = "eip155:8453"
	Arbitrum = "eip155:42161"
	Polygon  = "eip155:137"
	Solana   = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	Zcash    = "zcash:mainnet"
	Bitcoin  = "bip122:000000000019d6689c085ae165831e93"
	Stellar  = "stellar:pubnet"
)

// chainIDs maps lowercase chain names to CAIP-2 identifiers
var chainIDs = map[string]string{
	"near":     Near,
	"ethereum": Ethereum,
	"eth":      Ethereum,
	"base":     Base,
	"arbitrum": Arbitrum,
	"polygon":  Polygon,
	"solana":   Solana,
	"sol":      Solana,
	"zcash":    Zcash,
	"bitcoin":  Bitcoin,
	"btc":      Bitcoin,
	"stellar":  Stellar,
}

// Resolve maps a chain name to its CAIP-2 identifier. Inputs already in
// namespace:reference form, and unknown names, pass through unchanged so
// new chains can be used before this table learns about them. Callers
// must validate chain support before signing.
func Resolve(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if strings.Contains(name, ":") {
		return name
	}
	if id, ok := chainIDs[name]; ok {
		return id
	}
	return name
}

// IsEVM reports whether the chain uses eip155 addressing
func IsEVM(chainID string) bool {
	return strings.HasPrefix(chainID, "eip155:")
}

// trackableFinality lists chains whose destination leg can be observed
// independently of the verifier. UTXO chains without a queryable finality
// signal are deliberately absent.
var trackableFinality = map[string]bool{
	Near:     true,
	Ethereum: true,
	Base:     true,
	Arbitrum: true,
	Polygon:  true,
	Solana:   true,
	Stellar:  true,
}

// HasTrackableFinality reports whether the destination leg on the given
// chain can be independently confirmed. When false, withdrawal results
// carry a notTrackable destination status rather than a failure.
func HasTrackableFinality(chainID string) bool {
	return trackableFinality[chainID]
}

// requiresTrustline lists chains where a transfer cannot land unless the
// recipient holds a trustline for the asset.
var requiresTrustline = map[string]bool{
	Stellar: true,
}

// RequiresTrustline reports whether transfers to the chain need a
// pre-existing trustline on the recipient account.
func RequiresTrustline(chainID string) bool {
	return requiresTrustline[chainID]
}
