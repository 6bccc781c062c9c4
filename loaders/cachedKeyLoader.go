package loaders

import (
	"github.com/pkg/errors"
	"github.com/zkens/go-ens-claim/cache"
	"github.com/zkens/go-ens-claim/constants"
	"github.com/zkens/go-ens-claim/verification"
)

// CachedKeyLoader loads verification keys through a VerificationKeyLoader
// and keeps the decoded keys in memory.
type CachedKeyLoader struct {
	keyLoader VerificationKeyLoader
	cache     cache.ICache[*verification.VerifyingKey]
	useCache  bool
}

// NewCachedKeyLoader creates a new loader.
// By default, it reads keys from the filesystem with caching enabled.
// Use options to customize behavior:
//   - WithKeyLoader to set custom loader
//   - WithCache to set custom cache
//   - WithCacheDisabled to disable caching
func NewCachedKeyLoader(opts ...Option) *CachedKeyLoader {
	loader := &CachedKeyLoader{
		keyLoader: FSKeyLoader{},
		useCache:  true, // enabled by default
	}

	for _, opt := range opts {
		opt(loader)
	}

	if loader.useCache && loader.cache == nil {
		loader.cache = cache.NewInMemoryCache[*verification.VerifyingKey](
			constants.DefaultKeyCacheMaxSize, constants.DefaultKeyCacheTTL)
	}
	return loader
}

// Option defines functional option for configuring CachedKeyLoader
type Option func(*CachedKeyLoader)

// WithKeyLoader sets the loader used for cache misses
func WithKeyLoader(loader VerificationKeyLoader) Option {
	return func(c *CachedKeyLoader) {
		c.keyLoader = loader
	}
}

// WithCache sets a custom cache implementation
func WithCache(kc cache.ICache[*verification.VerifyingKey]) Option {
	return func(c *CachedKeyLoader) {
		c.cache = kc
		c.useCache = true
	}
}

// WithCacheDisabled disables caching of loaded keys
func WithCacheDisabled() Option {
	return func(c *CachedKeyLoader) {
		c.useCache = false
		c.cache = nil
	}
}

// Load returns the decoded verification key for id.
func (c *CachedKeyLoader) Load(id string) (*verification.VerifyingKey, error) {
	if !c.useCache {
		return c.load(id)
	}
	return c.cache.GetOrLoad(id, func() (*verification.VerifyingKey, error) {
		return c.load(id)
	})
}

func (c *CachedKeyLoader) load(id string) (*verification.VerifyingKey, error) {
	b, err := c.keyLoader.Load(id)
	if err != nil {
		return nil, errors.WithMessagef(err, "reading vkey file: %s", id)
	}
	vk, err := verification.ParseVerifyingKey(b)
	if err != nil {
		return nil, errors.WithMessagef(err, "reading vkey file: %s", id)
	}
	return vk, nil
}
