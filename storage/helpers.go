package storage

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/schoof/types"
)

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

func hashKey(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:maxKeySize]
}

// CurveKey derives the storage key of a curve from its parameters alone, so
// queue entries and results can be located without extra bookkeeping. The
// strategy is deliberately left out: it does not change the curve.
func CurveKey(req *types.CurveRequest) []byte {
	payload := fmt.Sprintf("%s|%s|%s", req.P, req.A, req.B)
	return hashKey([]byte(payload))
}