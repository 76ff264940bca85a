package intent

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tachyon-hq/intent-engine/pkg/models"
)

// Canonical returns the canonical serialization of a batch of intents.
// This is the exact byte string covered by the signature: JSON with
// fields in declared order and map keys sorted, no insignificant
// whitespace. Signers and the verifier must agree on it byte for byte.
func Canonical(intents []models.IntentMessage) ([]byte, error) {
	if len(intents) == 0 {
		return nil, fmt.Errorf("no intents to serialize")
	}
	payload := struct {
		Intents []models.IntentMessage `json:"intents"`
	}{Intents: intents}
	return json.Marshal(payload)
}

// Hash computes the stable identifying hash of a batch of intents,
// the same value the verifier derives for a submission.
func Hash(intents []models.IntentMessage) (string, error) {
	raw, err := Canonical(intents)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(crypto.Keccak256(raw)), nil
}
