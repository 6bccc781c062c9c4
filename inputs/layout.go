package inputs

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/zkens/go-ens-claim/constants"
	"github.com/zkens/go-ens-claim/field"
)

// Kind tells how the elements of a named range are packed.
type Kind int

const (
	// KindText is 31 bytes per element, little-endian, NUL padded.
	KindText Kind = iota
	// KindBytes is a big-endian byte string without padding.
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Names of the fields exposed by the ENS claim circuit.
const (
	FieldEmail      = "email"
	FieldCommand    = "command"
	FieldPubkeyHash = "pubkey_hash"
)

// ENSClaimV1 is the layout of the first ENS claim circuit release.
const ENSClaimV1 = "ens-claim-v1"

// FieldSpec locates a named range inside the public input vector.
type FieldSpec struct {
	Offset int
	Count  int
	Kind   Kind
	// Width is the per-element byte width of a KindBytes field.
	Width int
}

// Layout is the contract between a circuit and its verifier: the total
// number of public signals and where each named field lives.
type Layout struct {
	Version string
	Length  int
	Fields  map[string]FieldSpec
}

// ErrUnknownLayout is returned when no layout is registered for a version.
var ErrUnknownLayout = errors.New("layout is not registered")

// ErrUnknownField is returned when a layout has no field with the given name.
var ErrUnknownField = errors.New("field is not defined by layout")

var layoutRegistry = map[string]Layout{}
var layoutsLock = new(sync.RWMutex)

// RegisterLayout adds a layout to the process wide registry.
// This is done during init() for the layouts shipped with the library.
func RegisterLayout(l Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}

	layoutsLock.Lock()
	defer layoutsLock.Unlock()

	layoutRegistry[l.Version] = l.clone()
	return nil
}

// GetLayout returns the layout registered for version.
func GetLayout(version string) (Layout, error) {
	layoutsLock.RLock()
	defer layoutsLock.RUnlock()

	l, ok := layoutRegistry[version]
	if !ok {
		return Layout{}, errors.Wrapf(ErrUnknownLayout, "%s", version)
	}
	return l.clone(), nil
}

// DefaultLayout returns the ENS claim layout.
func DefaultLayout() Layout {
	l, err := GetLayout(ENSClaimV1)
	if err != nil {
		panic(err)
	}
	return l
}

// nolint // register supported layouts
func init() {
	err := RegisterLayout(Layout{
		Version: ENSClaimV1,
		Length:  constants.PublicInputsCount,
		Fields: map[string]FieldSpec{
			// ceil(256 bytes / 31 bytes per field) = 9 fields, idx 51-59
			FieldEmail:      {Offset: 51, Count: 9, Kind: KindText},
			FieldCommand:    {Offset: 12, Count: 20, Kind: KindText},
			FieldPubkeyHash: {Offset: 9, Count: 1, Kind: KindBytes, Width: field.ElementSize},
		},
	})
	if err != nil {
		panic(err)
	}
}

// Field returns the spec of a named field.
func (l Layout) Field(name string) (FieldSpec, error) {
	spec, ok := l.Fields[name]
	if !ok {
		return FieldSpec{}, errors.Wrapf(ErrUnknownField, "%s in layout %s", name, l.Version)
	}
	return spec, nil
}

// Validate checks that every field fits inside the vector.
func (l Layout) Validate() error {
	if l.Version == "" {
		return errors.New("layout version is empty")
	}
	if l.Length <= 0 {
		return errors.Errorf("layout %s: length must be positive", l.Version)
	}
	for name, spec := range l.Fields {
		if spec.Offset < 0 || spec.Count <= 0 {
			return errors.Wrapf(ErrRange, "layout %s: field %s has invalid range (%d, %d)", l.Version, name, spec.Offset, spec.Count)
		}
		if spec.Offset > l.Length || spec.Count > l.Length-spec.Offset {
			return errors.Wrapf(ErrRange, "layout %s: field %s range (%d, %d) exceeds vector length %d",
				l.Version, name, spec.Offset, spec.Count, l.Length)
		}
		if spec.Kind == KindBytes && (spec.Width < 1 || spec.Width > field.ElementSize) {
			return errors.Errorf("layout %s: field %s has invalid width %d", l.Version, name, spec.Width)
		}
	}
	return nil
}

func (l Layout) clone() Layout {
	fields := make(map[string]FieldSpec, len(l.Fields))
	for k, v := range l.Fields {
		fields[k] = v
	}
	l.Fields = fields
	return l
}
