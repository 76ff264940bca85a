package models

// IntentType classifies what an intent asks the solver network to do
type IntentType string

const (
	// IntentTypeSwap exchanges one asset for another across chains
	IntentTypeSwap IntentType = "swap"

	// IntentTypeBridge moves the same asset to another chain
	IntentTypeBridge IntentType = "bridge"

	// IntentTypeTransfer moves an asset to another account, possibly cross-chain
	IntentTypeTransfer IntentType = "transfer"
)

// AssetSpec identifies an asset and amount bounds on a specific chain.
// ChainID is in CAIP-2 form (e.g. "eip155:1", "near:mainnet").
// Amounts are decimal strings in the asset's smallest indivisible unit.
type AssetSpec struct {
	ChainID          string `json:"chain_id"`
	AssetID          string `json:"asset_id"`
	Amount           string `json:"amount,omitempty"`
	MinAmount        string `json:"min_amount,omitempty"`
	RecipientAddress string `json:"recipient_address,omitempty"`
}

// IntentMessage is the unit of work submitted to the verifier network.
// It is immutable once signed; the IntentID is generated at build time.
type IntentMessage struct {
	IntentID    string            `json:"intent_id"`
	IntentType  IntentType        `json:"intent_type"`
	Source      AssetSpec         `json:"source"`
	Destination AssetSpec         `json:"destination"`
	Creator     string            `json:"creator"`
	Deadline    int64             `json:"deadline"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// SignedIntent pairs an intent with the signature produced over its
// canonical serialization and the public key that produced it.
type SignedIntent struct {
	Intent    IntentMessage `json:"intent"`
	Signature []byte        `json:"signature"`
	PublicKey string        `json:"public_key"`
}
