// Package types describes snarkjs groth16 artifacts and converts them into
// bn256 curve points.
package types

import (
	"math/big"

	rstypes "github.com/iden3/go-rapidsnark/types"
	"github.com/pkg/errors"
	"github.com/zkens/go-ens-claim/field"
	"github.com/zkens/go-ens-claim/internal/models"
)

// Groth16 is the only proving protocol supported.
const Groth16 = "groth16"

// ProofData describes three components of zkp proof (pi_a, pi_b, pi_c).
type ProofData = rstypes.ProofData

// VkString is the Verification Key data structure in string format (from json).
type VkString struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	Alpha    []string   `json:"vk_alpha_1"`
	Beta     [][]string `json:"vk_beta_2"`
	Gamma    [][]string `json:"vk_gamma_2"`
	Delta    [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

// ToInternalVk casts the verification key to bn256 points.
func (vk VkString) ToInternalVk() (*models.Vk, error) {
	var (
		v   models.Vk
		err error
	)
	if vk.Protocol != "" && vk.Protocol != Groth16 {
		return nil, errors.Errorf("%s protocol is not supported", vk.Protocol)
	}

	v.Alpha, err = stringToG1(vk.Alpha)
	if err != nil {
		return nil, errors.WithMessage(err, "vk_alpha_1")
	}

	v.Beta, err = stringToG2(vk.Beta)
	if err != nil {
		return nil, errors.WithMessage(err, "vk_beta_2")
	}

	v.Gamma, err = stringToG2(vk.Gamma)
	if err != nil {
		return nil, errors.WithMessage(err, "vk_gamma_2")
	}

	v.Delta, err = stringToG2(vk.Delta)
	if err != nil {
		return nil, errors.WithMessage(err, "vk_delta_2")
	}

	if len(vk.IC) == 0 {
		return nil, errors.Wrap(ErrMalformedPoint, "IC is empty")
	}
	for i := 0; i < len(vk.IC); i++ {
		p, err := stringToG1(vk.IC[i])
		if err != nil {
			return nil, errors.WithMessagef(err, "IC[%d]", i)
		}
		v.IC = append(v.IC, p)
	}

	return &v, nil
}

// ToInternalProofData casts the proof to bn256 points.
func ToInternalProofData(pr ProofData) (models.ProofPairingData, error) {
	var (
		p   models.ProofPairingData
		err error
	)
	if pr.Protocol != "" && pr.Protocol != Groth16 {
		return p, errors.Errorf("%s protocol is not supported", pr.Protocol)
	}

	p.A, err = stringToG1(pr.A)
	if err != nil {
		return p, errors.WithMessage(err, "pi_a")
	}

	p.B, err = stringToG2(pr.B)
	if err != nil {
		return p, errors.WithMessage(err, "pi_b")
	}

	p.C, err = stringToG1(pr.C)
	if err != nil {
		return p, errors.WithMessage(err, "pi_c")
	}

	return p, nil
}

// PublicInputs is the public signal array of a proof in decimal form.
type PublicInputs []string

// ToBigInt parses every signal as a field element.
func (pi PublicInputs) ToBigInt() ([]*big.Int, error) {
	return field.ParseElements(pi)
}
