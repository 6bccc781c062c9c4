package constants

import "time"

const (
	// DefaultKeyCacheMaxSize bounds the number of verification keys kept in memory.
	DefaultKeyCacheMaxSize int64 = 64
	// DefaultKeyCacheTTL is how long a loaded verification key stays cached.
	DefaultKeyCacheTTL = time.Hour
	// PublicInputsCount is the number of public signals of the ENS claim circuit.
	PublicInputsCount = 60
)
