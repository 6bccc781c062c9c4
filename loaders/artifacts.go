// Package loaders reads snarkjs artifacts (verification key, proof and
// public signals) and decodes them for verification.
package loaders

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/zkens/go-ens-claim/inputs"
	"github.com/zkens/go-ens-claim/verification"
)

// LoadProof reads a snarkjs proof.json file.
func LoadProof(path string) (*verification.Proof, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading proof json file: %s", path)
	}
	p, err := verification.ParseProof(b)
	if err != nil {
		return nil, errors.WithMessagef(err, "reading proof json file: %s", path)
	}
	return p, nil
}

// LoadPublicInputs reads a snarkjs public.json file and checks it against layout.
func LoadPublicInputs(path string, layout inputs.Layout, opts ...inputs.Option) (*inputs.View, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading pub inputs file: %s", path)
	}
	var signals []string
	if err := json.Unmarshal(b, &signals); err != nil {
		return nil, errors.Wrapf(inputs.ErrMalformedInput, "reading pub inputs file: %s: %v", path, err)
	}
	v, err := inputs.ParseView(signals, layout, opts...)
	if err != nil {
		return nil, errors.WithMessagef(err, "reading pub inputs file: %s", path)
	}
	return v, nil
}

// VerificationData is a verification key, a proof and its public inputs.
type VerificationData struct {
	Key    *verification.VerifyingKey
	Proof  *verification.Proof
	Inputs *inputs.View
}

// LoadVerificationData loads the key through keys and reads the proof and
// public inputs from disk.
func LoadVerificationData(keys *CachedKeyLoader, keyID, proofPath, inputsPath string,
	layout inputs.Layout, opts ...inputs.Option) (*VerificationData, error) {

	vk, err := keys.Load(keyID)
	if err != nil {
		return nil, err
	}
	proof, err := LoadProof(proofPath)
	if err != nil {
		return nil, err
	}
	view, err := LoadPublicInputs(inputsPath, layout, opts...)
	if err != nil {
		return nil, err
	}
	return &VerificationData{Key: vk, Proof: proof, Inputs: view}, nil
}
