// Package field packs byte strings into BN254 scalar field elements and
// recovers them again. Text is packed 31 bytes per element, little-endian;
// binary digests are packed big-endian with a producer-agreed width.
package field

import (
	"bytes"
	"math/big"
	"unicode/utf8"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	// TextChunkSize is the number of text bytes carried by one element.
	TextChunkSize = 31
	// ElementSize is the canonical byte width of a field element.
	ElementSize = 32
)

// Modulus is the order of the BN254 scalar field.
var Modulus = fr.Modulus()

var (
	// ErrEncoding is returned when an element can not be rendered into the
	// expected byte width or the decoded text is not valid UTF-8.
	ErrEncoding = errors.New("field encoding error")
	// ErrNotInField is returned for values that are not below the field modulus.
	ErrNotInField = errors.New("value is not in the field")
)

// NulPolicy selects how padding bytes are removed from decoded text.
type NulPolicy int

const (
	// TrimTrailingNul removes only the trailing run of 0x00 bytes.
	TrimTrailingNul NulPolicy = iota
	// StripAllNul removes every 0x00 byte, wherever it appears.
	StripAllNul
)

func (p NulPolicy) String() string {
	switch p {
	case TrimTrailingNul:
		return "trim-trailing"
	case StripAllNul:
		return "strip-all"
	default:
		return "unknown"
	}
}

// ParseNulPolicy resolves the textual name of a policy.
func ParseNulPolicy(s string) (NulPolicy, error) {
	switch s {
	case "", "trim-trailing":
		return TrimTrailingNul, nil
	case "strip-all":
		return StripAllNul, nil
	}
	return 0, errors.Errorf("unknown nul policy %q", s)
}

// ParseElement parses a decimal integer literal and checks that it is a
// member of the scalar field.
func ParseElement(s string) (*big.Int, error) {
	u, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(ErrEncoding, "can not parse %q as field element: %v", s, err)
	}
	v := u.ToBig()
	if v.Cmp(Modulus) != -1 {
		return nil, errors.Wrapf(ErrNotInField, "%s", s)
	}
	return v, nil
}

// ParseElements converts string array to array of field elements.
func ParseElements(s []string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(s))
	for i := range s {
		v, err := ParseElement(s[i])
		if err != nil {
			return nil, errors.WithMessagef(err, "element %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

// EncodeText splits b into 31-byte little-endian chunks, one per element.
// The last chunk is zero padded on its high end.
func EncodeText(b []byte) []*big.Int {
	out := make([]*big.Int, 0, (len(b)+TextChunkSize-1)/TextChunkSize)
	for start := 0; start < len(b); start += TextChunkSize {
		end := start + TextChunkSize
		if end > len(b) {
			end = len(b)
		}
		out = append(out, new(big.Int).SetBytes(reversed(b[start:end])))
	}
	return out
}

// EncodeTextFields packs b into exactly count elements, appending zero
// elements after the text.
func EncodeTextFields(b []byte, count int) ([]*big.Int, error) {
	if len(b) > count*TextChunkSize {
		return nil, errors.Wrapf(ErrEncoding, "%d bytes do not fit into %d elements", len(b), count)
	}
	out := EncodeText(b)
	for len(out) < count {
		out = append(out, new(big.Int))
	}
	return out, nil
}

// DecodeText renders every element as a 31-byte little-endian buffer,
// concatenates them in order, removes padding according to policy and
// returns the result as UTF-8 text.
func DecodeText(elements []*big.Int, policy NulPolicy) (string, error) {
	buf := make([]byte, 0, len(elements)*TextChunkSize)
	for i, e := range elements {
		be, err := fixedBytes(e, TextChunkSize)
		if err != nil {
			return "", errors.WithMessagef(err, "element %d", i)
		}
		buf = append(buf, reversed(be)...)
	}

	switch policy {
	case StripAllNul:
		buf = bytes.ReplaceAll(buf, []byte{0}, nil)
	default:
		buf = bytes.TrimRight(buf, "\x00")
	}

	if !utf8.Valid(buf) {
		return "", errors.Wrap(ErrEncoding, "decoded text is not valid utf-8")
	}
	return string(buf), nil
}

// EncodeBytes splits b into width-sized big-endian chunks, one per element.
func EncodeBytes(b []byte, width int) ([]*big.Int, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	if len(b)%width != 0 {
		return nil, errors.Wrapf(ErrEncoding, "%d bytes are not a multiple of width %d", len(b), width)
	}
	out := make([]*big.Int, 0, len(b)/width)
	for start := 0; start < len(b); start += width {
		v := new(big.Int).SetBytes(b[start : start+width])
		if v.Cmp(Modulus) != -1 {
			return nil, errors.Wrapf(ErrNotInField, "chunk %d", start/width)
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeBytes renders every element as a width-byte big-endian buffer and
// concatenates them in order. No byte is treated as padding.
func DecodeBytes(elements []*big.Int, width int) ([]byte, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(elements)*width)
	for i, e := range elements {
		be, err := fixedBytes(e, width)
		if err != nil {
			return nil, errors.WithMessagef(err, "element %d", i)
		}
		out = append(out, be...)
	}
	return out, nil
}

// fixedBytes renders v big-endian into exactly width bytes.
func fixedBytes(v *big.Int, width int) ([]byte, error) {
	if v == nil || v.Sign() < 0 {
		return nil, errors.Wrap(ErrEncoding, "element is not a non-negative integer")
	}
	u, overflow := uint256.FromBig(v)
	if overflow || u.BitLen() > width*8 {
		return nil, errors.Wrapf(ErrEncoding, "element %s exceeds %d bytes", v.String(), width)
	}
	b32 := u.Bytes32()
	return b32[ElementSize-width:], nil
}

func checkWidth(width int) error {
	if width < 1 || width > ElementSize {
		return errors.Wrapf(ErrEncoding, "unsupported element width %d", width)
	}
	return nil
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
