package types

import (
	"math/big"
	"strings"

	bn256 "github.com/ethereum/go-ethereum/crypto/bn256/cloudflare"
	"github.com/pkg/errors"
)

// ErrMalformedPoint is returned when curve point coordinates can not be decoded.
var ErrMalformedPoint = errors.New("malformed curve point")

const coordinateSize = 32

// stringToG1 decodes snarkjs projective coordinates [x, y, z] of a G1 point.
func stringToG1(h []string) (*bn256.G1, error) {
	if len(h) < 2 {
		return nil, errors.Wrap(ErrMalformedPoint, "not enough data for G1")
	}

	b := make([]byte, 0, 2*coordinateSize)
	if len(h) < 3 || h[2] != "0" {
		for _, s := range h[:2] {
			c, err := coordinateBytes(s)
			if err != nil {
				return nil, err
			}
			b = append(b, c...)
		}
	} else {
		// z == 0 is the point at infinity, encoded as (0, 0)
		b = append(b, make([]byte, 2*coordinateSize)...)
	}

	p := new(bn256.G1)
	if _, err := p.Unmarshal(b); err != nil {
		return nil, errors.Wrap(ErrMalformedPoint, err.Error())
	}
	return p, nil
}

// stringToG2 decodes snarkjs coordinates [[x0, x1], [y0, y1], [z0, z1]] of a
// G2 point. bn256 expects the imaginary part of each coordinate first.
func stringToG2(h [][]string) (*bn256.G2, error) {
	if len(h) < 2 || len(h[0]) != 2 || len(h[1]) != 2 {
		return nil, errors.Wrap(ErrMalformedPoint, "not enough data for G2")
	}

	b := make([]byte, 0, 4*coordinateSize)
	if len(h) < 3 || !isZero2(h[2]) {
		for _, s := range []string{h[0][1], h[0][0], h[1][1], h[1][0]} {
			c, err := coordinateBytes(s)
			if err != nil {
				return nil, err
			}
			b = append(b, c...)
		}
	} else {
		b = append(b, make([]byte, 4*coordinateSize)...)
	}

	p := new(bn256.G2)
	if _, err := p.Unmarshal(b); err != nil {
		return nil, errors.Wrap(ErrMalformedPoint, err.Error())
	}
	return p, nil
}

func isZero2(z []string) bool {
	return len(z) == 2 && z[0] == "0" && z[1] == "0"
}

// coordinateBytes renders a decimal or 0x-prefixed hex coordinate as 32
// big-endian bytes.
func coordinateBytes(s string) ([]byte, error) {
	base := 10
	if strings.HasPrefix(s, "0x") {
		base = 16
		s = strings.TrimPrefix(s, "0x")
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedPoint, "can not parse coordinate %q", s)
	}
	if n.Sign() < 0 || n.BitLen() > 8*coordinateSize {
		return nil, errors.Wrapf(ErrMalformedPoint, "coordinate %s is out of range", s)
	}
	return n.FillBytes(make([]byte, coordinateSize)), nil
}
