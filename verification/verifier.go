// Package verification checks groth16 proofs over the BN254 curve.
package verification

import (
	"context"
	"math/big"

	bn256 "github.com/ethereum/go-ethereum/crypto/bn256/cloudflare"
	"github.com/pkg/errors"
	"github.com/zkens/go-ens-claim/internal/models"
)

// Verifier checks a proof against a verification key and public inputs.
// A proof that fails the pairing check yields (false, nil); an error means
// the check could not be performed.
//
//go:generate mockgen -destination=mock/VerifierMock.go . Verifier
type Verifier interface {
	Verify(ctx context.Context, vk *VerifyingKey, inputs []*big.Int, proof *Proof) (bool, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, vk *VerifyingKey, inputs []*big.Int, proof *Proof) (bool, error)

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, vk *VerifyingKey, inputs []*big.Int, proof *Proof) (bool, error) {
	return f(ctx, vk, inputs, proof)
}

// Groth16Verifier verifies circom groth16 proofs with the bn256 pairing.
type Groth16Verifier struct{}

// Verify performs a verification of zkp based on verification key and public inputs.
func (Groth16Verifier) Verify(ctx context.Context, vk *VerifyingKey, inputs []*big.Int, proof *Proof) (bool, error) {
	if vk == nil || vk.vk == nil {
		return false, errors.Wrap(ErrMalformedKey, "verification key is nil")
	}
	if proof == nil {
		return false, errors.Wrap(ErrMalformedProof, "proof is nil")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return verifyGroth16(vk.vk, proof.p, inputs)
}

// verifyGroth16 performs the verification the Groth16 zkSNARK proofs
func verifyGroth16(vk *models.Vk, proof models.ProofPairingData, inputs []*big.Int) (bool, error) {
	if len(inputs)+1 != len(vk.IC) {
		return false, errors.Wrapf(ErrMalformedKey, "len(inputs)+1 != len(vk.IC): %d+1 != %d", len(inputs), len(vk.IC))
	}
	vkX := new(bn256.G1).ScalarBaseMult(big.NewInt(0))
	for i := 0; i < len(inputs); i++ {
		// check input inside field
		if inputs[i] == nil || inputs[i].Sign() < 0 || inputs[i].Cmp(models.R) != -1 {
			return false, errors.Errorf("input value %d is not in the field", i)
		}
		vkX = new(bn256.G1).Add(vkX, new(bn256.G1).ScalarMult(vk.IC[i+1], inputs[i]))
	}
	vkX = new(bn256.G1).Add(vkX, vk.IC[0])

	g1 := []*bn256.G1{proof.A, new(bn256.G1).Neg(vk.Alpha), vkX.Neg(vkX), new(bn256.G1).Neg(proof.C)}
	g2 := []*bn256.G2{proof.B, vk.Beta, vk.Gamma, vk.Delta}

	return bn256.PairingCheck(g1, g2), nil
}
