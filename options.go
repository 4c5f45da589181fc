package toyrsa

import (
	"io"
	"math/big"

	"github.com/vaultsandbox/toyrsa/internal/numtheory"
)

const (
	defaultMinPrime    = 100
	defaultMaxPrime    = 1000
	defaultMaxAttempts = 100000
)

// keyConfig holds configuration for key generation.
type keyConfig struct {
	minPrime    *big.Int
	maxPrime    *big.Int
	bases       []int64
	random      io.Reader
	seed        []byte
	maxAttempts int
	parallel    bool
	observer    Observer
}

// Option configures key generation.
type Option func(*keyConfig)

func defaultKeyConfig() keyConfig {
	return keyConfig{
		minPrime:    big.NewInt(defaultMinPrime),
		maxPrime:    big.NewInt(defaultMaxPrime),
		bases:       numtheory.DefaultBases(),
		maxAttempts: defaultMaxAttempts,
	}
}

// WithMinPrime sets the exclusive lower bound for p and q.
// Default: 100
func WithMinPrime(v *big.Int) Option {
	return func(c *keyConfig) {
		c.minPrime = cloneInt(v)
	}
}

// WithMaxPrime sets the upper bound of the prime candidate range [3, max].
// Even samples are bumped to the next odd number, so a prime of max+1 is
// possible when max is even.
// Default: 1000
func WithMaxPrime(v *big.Int) Option {
	return func(c *keyConfig) {
		c.maxPrime = cloneInt(v)
	}
}

// WithWitnessBases sets the Miller-Rabin witness bases, tried in order.
// Default: [2, 3, 5, 7, 11, 13, 17]
func WithWitnessBases(bases []int64) Option {
	return func(c *keyConfig) {
		c.bases = append([]int64(nil), bases...)
	}
}

// WithRandom sets the byte source for sampling. It is ignored when a seed is
// configured with WithSeed.
// Default: crypto/rand
func WithRandom(r io.Reader) Option {
	return func(c *keyConfig) {
		c.random = r
	}
}

// WithSeed makes generation deterministic: the same seed and options always
// produce the same key pair.
func WithSeed(seed []byte) Option {
	return func(c *keyConfig) {
		c.seed = append([]byte(nil), seed...)
	}
}

// WithMaxAttempts bounds every sampling loop: prime candidates per prime,
// (p, q) pairs per key and exponent candidates per key.
// Default: 100000
func WithMaxAttempts(n int) Option {
	return func(c *keyConfig) {
		c.maxAttempts = n
	}
}

// WithParallelSearch searches for p and q concurrently, each on its own
// random stream split from the generator's source.
func WithParallelSearch(enabled bool) Option {
	return func(c *keyConfig) {
		c.parallel = enabled
	}
}

// WithObserver registers a callback receiving generation events. It is
// called synchronously from the generating goroutine.
func WithObserver(fn Observer) Option {
	return func(c *keyConfig) {
		c.observer = fn
	}
}

// validate checks the assembled configuration.
func (c *keyConfig) validate() error {
	var errs []string

	if c.minPrime == nil || c.minPrime.Sign() < 0 {
		errs = append(errs, "min prime must be non-negative")
	}
	if c.maxPrime == nil || c.maxPrime.Cmp(big.NewInt(3)) < 0 {
		errs = append(errs, "max prime must be at least 3")
	}
	if c.minPrime != nil && c.maxPrime != nil && c.minPrime.Cmp(c.maxPrime) >= 0 {
		errs = append(errs, "min prime must be less than max prime")
	}
	if len(c.bases) == 0 {
		errs = append(errs, "at least one witness base is required")
	}
	for _, b := range c.bases {
		if b < 2 {
			errs = append(errs, "witness bases must be at least 2")
			break
		}
	}
	if c.maxAttempts <= 0 {
		errs = append(errs, "max attempts must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
