// The models package defines internal structs that uses for validate proof.

package models

import (
	"math/big"

	bn256 "github.com/ethereum/go-ethereum/crypto/bn256/cloudflare"
	"github.com/zkens/go-ens-claim/field"
)

// R is the mod of the finite field
var R = new(big.Int).Set(field.Modulus)

// ProofPairingData describes three components of zkp proof in bn256 format.
type ProofPairingData struct {
	A *bn256.G1
	B *bn256.G2
	C *bn256.G1
}

// Vk is the Verification Key data structure in bn256 format.
type Vk struct {
	Alpha *bn256.G1
	Beta  *bn256.G2
	Gamma *bn256.G2
	Delta *bn256.G2
	IC    []*bn256.G1
}
