package verification

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/zkens/go-ens-claim/internal/models"
	"github.com/zkens/go-ens-claim/types"
)

var (
	// ErrMalformedKey declares that a verification key can not be used.
	ErrMalformedKey = errors.New("malformed verification key")
	// ErrMalformedProof declares that a proof can not be used.
	ErrMalformedProof = errors.New("malformed proof")
)

// malformedError reports kind while keeping the decoding error as cause.
type malformedError struct {
	kind  error
	cause error
}

func (e *malformedError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *malformedError) Is(target error) bool {
	return e.kind == target
}

func (e *malformedError) Unwrap() error {
	return e.cause
}

// VerifyingKey is a groth16 verification key decoded into curve points.
type VerifyingKey struct {
	vk *models.Vk
}

// NewVerifyingKey casts a snarkjs verification key to curve points.
func NewVerifyingKey(vkStr types.VkString) (*VerifyingKey, error) {
	vk, err := vkStr.ToInternalVk()
	if err != nil {
		return nil, &malformedError{kind: ErrMalformedKey, cause: err}
	}
	return &VerifyingKey{vk: vk}, nil
}

// ParseVerifyingKey decodes a snarkjs verification key in JSON format.
func ParseVerifyingKey(b []byte) (*VerifyingKey, error) {
	var vkStr types.VkString
	if err := json.Unmarshal(b, &vkStr); err != nil {
		return nil, &malformedError{kind: ErrMalformedKey, cause: err}
	}
	return NewVerifyingKey(vkStr)
}

// NumPublic returns the number of public inputs the key accepts.
func (k *VerifyingKey) NumPublic() int {
	return len(k.vk.IC) - 1
}

// Proof is a groth16 proof decoded into curve points.
type Proof struct {
	p models.ProofPairingData
}

// NewProof casts a snarkjs proof to curve points.
func NewProof(pd types.ProofData) (*Proof, error) {
	p, err := types.ToInternalProofData(pd)
	if err != nil {
		return nil, &malformedError{kind: ErrMalformedProof, cause: err}
	}
	return &Proof{p: p}, nil
}

// ParseProof decodes a snarkjs proof in JSON format.
func ParseProof(b []byte) (*Proof, error) {
	var pd types.ProofData
	if err := json.Unmarshal(b, &pd); err != nil {
		return nil, &malformedError{kind: ErrMalformedProof, cause: err}
	}
	return NewProof(pd)
}
