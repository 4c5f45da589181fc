package random

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cloudflare/circl/xof"
)

// maxRejections bounds the draws spent on a single sample. Each draw is
// accepted with probability above one half.
const maxRejections = 128

var (
	// ErrEmptyRange is returned when the requested range contains no integers.
	ErrEmptyRange = errors.New("empty sampling range")

	// ErrEmptySeed is returned when a seeded source is created without a seed.
	ErrEmptySeed = errors.New("seed must not be empty")

	// ErrSamplingFailed is returned when rejection sampling does not produce
	// a value within maxRejections draws.
	ErrSamplingFailed = errors.New("rejection sampling did not converge")
)

// defaultReader is the reader used by New(nil).
// It can be overridden for testing.
var defaultReader io.Reader = rand.Reader

// Source samples integers from a byte stream.
type Source struct {
	r io.Reader
}

// New returns a Source reading from r. A nil r selects crypto/rand.
func New(r io.Reader) *Source {
	if r == nil {
		r = defaultReader
	}
	return &Source{r: r}
}

// NewSeeded returns a deterministic Source for seed. The label separates
// streams derived from the same seed.
func NewSeeded(seed []byte, label string) (*Source, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}

	key, err := DeriveKey(seed, nil, []byte(label), seedSize)
	if err != nil {
		return nil, err
	}

	stream := xof.SHAKE256.New()
	if _, err := stream.Write(key); err != nil {
		return nil, fmt.Errorf("failed to seed stream: %w", err)
	}

	return &Source{r: stream}, nil
}

// Split draws seed material from s and returns an independent seeded child
// stream. Children created with different labels, or by successive calls,
// do not share state with s or with each other.
func (s *Source) Split(label string) (*Source, error) {
	seed := make([]byte, seedSize)
	if _, err := io.ReadFull(s.r, seed); err != nil {
		return nil, fmt.Errorf("failed to read split seed: %w", err)
	}
	return NewSeeded(seed, label)
}

// Int returns a uniformly distributed integer in [lo, hi].
func (s *Source) Int(lo, hi *big.Int) (*big.Int, error) {
	span := new(big.Int).Sub(hi, lo)
	if span.Sign() < 0 {
		return nil, fmt.Errorf("%w: [%s, %s]", ErrEmptyRange, lo, hi)
	}
	if span.Sign() == 0 {
		return new(big.Int).Set(lo), nil
	}

	// Sample from [0, span] using the smallest bit width covering span.
	bits := span.BitLen()
	buf := make([]byte, (bits+7)/8)
	mask := byte(0xff) >> uint(len(buf)*8-bits)

	v := new(big.Int)
	for i := 0; i < maxRejections; i++ {
		if _, err := io.ReadFull(s.r, buf); err != nil {
			return nil, fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[0] &= mask
		v.SetBytes(buf)
		if v.Cmp(span) <= 0 {
			return v.Add(v, lo), nil
		}
	}

	return nil, ErrSamplingFailed
}

// Int64 is Int for int64 bounds.
func (s *Source) Int64(lo, hi int64) (*big.Int, error) {
	return s.Int(big.NewInt(lo), big.NewInt(hi))
}
