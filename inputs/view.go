// Package inputs gives typed, offset addressed access to the public input
// vector of a proof.
package inputs

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/zkens/go-ens-claim/field"
)

var (
	// ErrMalformedInput declares that the vector does not match the layout length.
	ErrMalformedInput = errors.New("malformed public inputs")
	// ErrRange declares that a range reaches past the end of the vector.
	ErrRange = errors.New("range exceeds public inputs")
	// ErrFieldKind declares that a field is read with the wrong decoder.
	ErrFieldKind = errors.New("field kind mismatch")
)

// View is a read-only view over a fixed-length public input vector.
type View struct {
	signals []*big.Int
	layout  Layout
	policy  field.NulPolicy
}

// Option configures a View.
type Option func(v *View)

// WithNulPolicy sets how padding is removed from text fields.
func WithNulPolicy(p field.NulPolicy) Option {
	return func(v *View) {
		v.policy = p
	}
}

// NewView copies signals and checks them against the layout length.
func NewView(signals []*big.Int, layout Layout, opts ...Option) (*View, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if len(signals) != layout.Length {
		return nil, errors.Wrapf(ErrMalformedInput, "expected %d public inputs for layout %s, got %d",
			layout.Length, layout.Version, len(signals))
	}

	v := &View{
		signals: make([]*big.Int, len(signals)),
		layout:  layout.clone(),
		policy:  field.TrimTrailingNul,
	}
	for i, s := range signals {
		if s == nil {
			return nil, errors.Wrapf(ErrMalformedInput, "public input %d is empty", i)
		}
		v.signals[i] = new(big.Int).Set(s)
	}
	for _, o := range opts {
		o(v)
	}
	return v, nil
}

// ParseView parses decimal signals and builds a view over them.
func ParseView(signals []string, layout Layout, opts ...Option) (*View, error) {
	if len(signals) != layout.Length {
		return nil, errors.Wrapf(ErrMalformedInput, "expected %d public inputs for layout %s, got %d",
			layout.Length, layout.Version, len(signals))
	}
	elements, err := field.ParseElements(signals)
	if err != nil {
		return nil, err
	}
	return NewView(elements, layout, opts...)
}

// Len returns the number of public inputs.
func (v *View) Len() int {
	return len(v.signals)
}

// Layout returns the layout the view was built with.
func (v *View) Layout() Layout {
	return v.layout.clone()
}

// NulPolicy returns the padding policy used for text fields.
func (v *View) NulPolicy() field.NulPolicy {
	return v.policy
}

// Slice returns count elements starting at offset.
func (v *View) Slice(offset, count int) ([]*big.Int, error) {
	if offset < 0 || count < 0 || offset > len(v.signals) || count > len(v.signals)-offset {
		return nil, errors.Wrapf(ErrRange, "range (%d, %d) over %d public inputs", offset, count, len(v.signals))
	}
	return copyElements(v.signals[offset : offset+count]), nil
}

// Signals returns a copy of the whole vector.
func (v *View) Signals() []*big.Int {
	return copyElements(v.signals)
}

// Strings returns the vector as decimal strings.
func (v *View) Strings() []string {
	out := make([]string, len(v.signals))
	for i, s := range v.signals {
		out[i] = s.String()
	}
	return out
}

// Text decodes a named text field.
func (v *View) Text(name string) (string, error) {
	spec, err := v.spec(name, KindText)
	if err != nil {
		return "", err
	}
	elements, err := v.Slice(spec.Offset, spec.Count)
	if err != nil {
		return "", err
	}
	text, err := field.DecodeText(elements, v.policy)
	if err != nil {
		return "", errors.WithMessagef(err, "field %s", name)
	}
	return text, nil
}

// Bytes decodes a named binary field.
func (v *View) Bytes(name string) ([]byte, error) {
	spec, err := v.spec(name, KindBytes)
	if err != nil {
		return nil, err
	}
	elements, err := v.Slice(spec.Offset, spec.Count)
	if err != nil {
		return nil, err
	}
	b, err := field.DecodeBytes(elements, spec.Width)
	if err != nil {
		return nil, errors.WithMessagef(err, "field %s", name)
	}
	return b, nil
}

// Email returns the sender address committed by the proof.
func (v *View) Email() (string, error) {
	return v.Text(FieldEmail)
}

// Command returns the command text committed by the proof.
func (v *View) Command() (string, error) {
	return v.Text(FieldCommand)
}

// PubkeyHash returns the DKIM public key fingerprint.
func (v *View) PubkeyHash() ([]byte, error) {
	return v.Bytes(FieldPubkeyHash)
}

func (v *View) spec(name string, kind Kind) (FieldSpec, error) {
	spec, err := v.layout.Field(name)
	if err != nil {
		return FieldSpec{}, err
	}
	if spec.Kind != kind {
		return FieldSpec{}, errors.Wrapf(ErrFieldKind, "field %s is %s, not %s", name, spec.Kind, kind)
	}
	return spec, nil
}

func copyElements(in []*big.Int) []*big.Int {
	out := make([]*big.Int, len(in))
	for i, s := range in {
		out[i] = new(big.Int).Set(s)
	}
	return out
}
