package toyrsa

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/vaultsandbox/toyrsa/internal/numtheory"
	"github.com/vaultsandbox/toyrsa/internal/random"
)

// Labels separating the deterministic streams derived from one seed.
const (
	seedLabel   = "toyrsa:keygen:v1"
	pStreamName = "toyrsa:prime:p"
	qStreamName = "toyrsa:prime:q"
)

var three = big.NewInt(3)

// EventKind identifies a key generation step.
type EventKind string

const (
	// EventPrimeP is emitted when a prime p is accepted.
	EventPrimeP EventKind = "prime_p"
	// EventPrimeQ is emitted when a prime q is accepted.
	EventPrimeQ EventKind = "prime_q"
	// EventModulus is emitted once n = p*q is computed.
	EventModulus EventKind = "modulus"
	// EventTotient is emitted once phi = (p-1)(q-1) is computed.
	EventTotient EventKind = "totient"
	// EventPublicExponent is emitted when e is chosen.
	EventPublicExponent EventKind = "public_exponent"
	// EventPrivateExponent is emitted when d is derived.
	EventPrivateExponent EventKind = "private_exponent"
)

// Event describes one key generation step. Value is a copy; changing it
// does not affect the generated key.
type Event struct {
	Kind  EventKind
	Value *big.Int
	// Attempts is the number of samples drawn for this step, when applicable.
	Attempts int
}

// Observer receives key generation events.
type Observer func(Event)

// Generator produces key pairs. A Generator holds a random stream and is
// not safe for concurrent use.
type Generator struct {
	cfg keyConfig
	src *random.Source
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg := defaultKeyConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	src := random.New(cfg.random)
	if len(cfg.seed) > 0 {
		seeded, err := random.NewSeeded(cfg.seed, seedLabel)
		if err != nil {
			return nil, err
		}
		src = seeded
	}

	return &Generator{cfg: cfg, src: src}, nil
}

// GenerateKey creates a Generator and generates one key pair.
func GenerateKey(ctx context.Context, opts ...Option) (*KeyPair, error) {
	g, err := NewGenerator(opts...)
	if err != nil {
		return nil, err
	}
	return g.GenerateKey(ctx)
}

// GenerateKey samples p and q until they are distinct and both exceed the
// minimum, then chooses e and derives d.
func (g *Generator) GenerateKey(ctx context.Context) (*KeyPair, error) {
	p, q, rounds, err := g.generatePrimePair(ctx)
	if err != nil {
		return nil, err
	}
	g.emit(Event{Kind: EventPrimeP, Value: cloneInt(p), Attempts: rounds})
	g.emit(Event{Kind: EventPrimeQ, Value: cloneInt(q), Attempts: rounds})

	n := new(big.Int).Mul(p, q)
	g.emit(Event{Kind: EventModulus, Value: cloneInt(n)})

	phi := totient(p, q)
	g.emit(Event{Kind: EventTotient, Value: cloneInt(phi)})

	e, err := g.PublicExponent(ctx, phi)
	if err != nil {
		return nil, err
	}

	d, err := PrivateExponent(e, phi)
	if err != nil {
		return nil, err
	}
	g.emit(Event{Kind: EventPrivateExponent, Value: cloneInt(d)})

	return &KeyPair{N: n, E: e, D: d, P: p, Q: q}, nil
}

// GeneratePrime returns a probable prime from the configured candidate range.
func (g *Generator) GeneratePrime(ctx context.Context) (*big.Int, error) {
	return generatePrime(ctx, g.src, g.cfg.maxPrime, g.cfg.bases, g.cfg.maxAttempts)
}

// PublicExponent samples e uniformly from [2, phi-1] until gcd(e, phi) = 1.
func (g *Generator) PublicExponent(ctx context.Context, phi *big.Int) (*big.Int, error) {
	if phi.Cmp(three) < 0 {
		return nil, &KeyError{Reason: "phi must be at least 3"}
	}

	hi := new(big.Int).Sub(phi, one)
	for attempt := 1; attempt <= g.cfg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e, err := g.src.Int(big.NewInt(2), hi)
		if err != nil {
			return nil, err
		}
		if numtheory.GCD(e, phi).Cmp(one) == 0 {
			g.emit(Event{Kind: EventPublicExponent, Value: cloneInt(e), Attempts: attempt})
			return e, nil
		}
	}

	return nil, &ExhaustedError{Operation: "public exponent search", Attempts: g.cfg.maxAttempts}
}

// PrivateExponent returns d = e^-1 mod phi. It fails with a KeyError
// wrapping ErrNoModularInverse when e and phi are not coprime.
func PrivateExponent(e, phi *big.Int) (*big.Int, error) {
	if phi.Cmp(one) <= 0 {
		return nil, &KeyError{Reason: "phi must be greater than 1", Err: ErrInvalidModulus}
	}

	d, err := numtheory.ModInverse(e, phi)
	if errors.Is(err, numtheory.ErrNoModularInverse) {
		return nil, &KeyError{Reason: "e and phi must be coprime", Err: ErrNoModularInverse}
	}
	if err != nil {
		return nil, &KeyError{Reason: "cannot invert e", Err: err}
	}

	return d, nil
}

// generatePrimePair samples (p, q) until p != q and both exceed the minimum.
// It also returns the number of pairs drawn.
func (g *Generator) generatePrimePair(ctx context.Context) (*big.Int, *big.Int, int, error) {
	pSrc, qSrc := g.src, g.src
	if g.cfg.parallel {
		var err error
		if pSrc, err = g.src.Split(pStreamName); err != nil {
			return nil, nil, 0, err
		}
		if qSrc, err = g.src.Split(qStreamName); err != nil {
			return nil, nil, 0, err
		}
	}

	for attempt := 1; attempt <= g.cfg.maxAttempts; attempt++ {
		var p, q *big.Int
		var err error
		if g.cfg.parallel {
			p, q, err = g.searchConcurrently(ctx, pSrc, qSrc)
		} else {
			p, q, err = g.searchSequentially(ctx)
		}
		if err != nil {
			return nil, nil, attempt, err
		}

		if p.Cmp(q) != 0 && p.Cmp(g.cfg.minPrime) > 0 && q.Cmp(g.cfg.minPrime) > 0 {
			return p, q, attempt, nil
		}
	}

	return nil, nil, g.cfg.maxAttempts, &ExhaustedError{Operation: "prime pair search", Attempts: g.cfg.maxAttempts}
}

func (g *Generator) searchSequentially(ctx context.Context) (*big.Int, *big.Int, error) {
	p, err := generatePrime(ctx, g.src, g.cfg.maxPrime, g.cfg.bases, g.cfg.maxAttempts)
	if err != nil {
		return nil, nil, err
	}
	q, err := generatePrime(ctx, g.src, g.cfg.maxPrime, g.cfg.bases, g.cfg.maxAttempts)
	if err != nil {
		return nil, nil, err
	}
	return p, q, nil
}

func (g *Generator) searchConcurrently(ctx context.Context, pSrc, qSrc *random.Source) (*big.Int, *big.Int, error) {
	var (
		wg         sync.WaitGroup
		p, q       *big.Int
		pErr, qErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		p, pErr = generatePrime(ctx, pSrc, g.cfg.maxPrime, g.cfg.bases, g.cfg.maxAttempts)
	}()
	go func() {
		defer wg.Done()
		q, qErr = generatePrime(ctx, qSrc, g.cfg.maxPrime, g.cfg.bases, g.cfg.maxAttempts)
	}()
	wg.Wait()

	if pErr != nil {
		return nil, nil, pErr
	}
	if qErr != nil {
		return nil, nil, qErr
	}
	return p, q, nil
}

func (g *Generator) emit(ev Event) {
	if g.cfg.observer != nil {
		g.cfg.observer(ev)
	}
}

// generatePrime samples candidates from [3, maxValue], bumping even samples
// by one, until one passes the Miller-Rabin test. The bump favours the odd
// number just above each even one and can yield maxValue+1 when maxValue is
// even; both skews are kept.
func generatePrime(ctx context.Context, src *random.Source, maxValue *big.Int, bases []int64, maxAttempts int) (*big.Int, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate, err := src.Int(three, maxValue)
		if err != nil {
			return nil, err
		}
		if candidate.Bit(0) == 0 {
			candidate.Add(candidate, one)
		}

		if numtheory.IsProbablePrime(candidate, bases) {
			return candidate, nil
		}
	}

	return nil, &ExhaustedError{Operation: "prime search", Attempts: maxAttempts}
}
