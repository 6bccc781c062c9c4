package loaders

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrKeyNotFound is returned when key is not found
var ErrKeyNotFound = errors.New("key not found")

// VerificationKeyLoader load verification key bytes by identifier
type VerificationKeyLoader interface {
	Load(id string) ([]byte, error)
}

// FSKeyLoader read keys from filesystem. With Dir set the id is a key name
// inside Dir and a missing .json extension is appended. With an empty Dir the
// id is a file path and is read as given.
type FSKeyLoader struct {
	Dir string
}

// Load keys from filesystem
func (m FSKeyLoader) Load(id string) ([]byte, error) {
	path := id
	if m.Dir != "" {
		path = filepath.Join(m.Dir, id)
		if filepath.Ext(path) == "" {
			path += ".json"
		}
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrKeyNotFound, "%s", path)
	}
	return b, err
}
