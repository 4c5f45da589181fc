package toyrsa

import (
	"fmt"
	"math/big"

	"github.com/vaultsandbox/toyrsa/internal/numtheory"
)

var one = big.NewInt(1)

// PublicKey is the shareable half of a key pair.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// KeyPair holds RSA key material.
//
// (N, E) is the public half; (N, D, P, Q) is the private half used for CRT
// decryption and signing. A KeyPair returned by this package satisfies
// N = P*Q, P != Q both prime, gcd(E, phi) = 1 and D*E = 1 mod phi, where
// phi = (P-1)(Q-1). It is never modified after construction except by Zero.
type KeyPair struct {
	N *big.Int
	E *big.Int
	D *big.Int
	P *big.Int
	Q *big.Int
}

// NewKeyPair assembles a key pair from two primes and a public exponent,
// deriving N and D.
func NewKeyPair(p, q, e *big.Int) (*KeyPair, error) {
	if p == nil || q == nil || e == nil {
		return nil, &KeyError{Reason: "missing component"}
	}

	phi := totient(p, q)
	d, err := PrivateExponent(e, phi)
	if err != nil {
		return nil, err
	}

	kp := &KeyPair{
		N: new(big.Int).Mul(p, q),
		E: cloneInt(e),
		D: d,
		P: cloneInt(p),
		Q: cloneInt(q),
	}
	if err := kp.Validate(); err != nil {
		return nil, err
	}
	return kp, nil
}

// KeyPairFromComponents reconstructs a key pair from all five components
// and validates it.
func KeyPairFromComponents(n, e, d, p, q *big.Int) (*KeyPair, error) {
	if n == nil || e == nil || d == nil || p == nil || q == nil {
		return nil, &KeyError{Reason: "missing component"}
	}

	kp := &KeyPair{
		N: cloneInt(n),
		E: cloneInt(e),
		D: cloneInt(d),
		P: cloneInt(p),
		Q: cloneInt(q),
	}
	if err := kp.Validate(); err != nil {
		return nil, err
	}
	return kp, nil
}

// Public returns a copy of the public half.
func (k *KeyPair) Public() *PublicKey {
	return &PublicKey{N: cloneInt(k.N), E: cloneInt(k.E)}
}

// Phi returns (P-1)(Q-1).
func (k *KeyPair) Phi() *big.Int {
	return totient(k.P, k.Q)
}

// Validate checks every key pair invariant.
func (k *KeyPair) Validate() error {
	if k.N == nil || k.E == nil || k.D == nil || k.P == nil || k.Q == nil {
		return &KeyError{Reason: "missing component"}
	}

	bases := numtheory.DefaultBases()
	if !numtheory.IsProbablePrime(k.P, bases) {
		return &KeyError{Reason: fmt.Sprintf("p = %s is not prime", k.P)}
	}
	if !numtheory.IsProbablePrime(k.Q, bases) {
		return &KeyError{Reason: fmt.Sprintf("q = %s is not prime", k.Q)}
	}
	if k.P.Cmp(k.Q) == 0 {
		return &KeyError{Reason: "p and q must be distinct"}
	}
	if new(big.Int).Mul(k.P, k.Q).Cmp(k.N) != 0 {
		return &KeyError{Reason: "n != p*q"}
	}

	phi := k.Phi()
	if k.E.Sign() <= 0 || k.E.Cmp(phi) >= 0 {
		return &KeyError{Reason: "e must be in (0, phi)"}
	}
	if numtheory.GCD(k.E, phi).Cmp(one) != 0 {
		return &KeyError{Reason: "e and phi must be coprime", Err: ErrNoModularInverse}
	}

	de := new(big.Int).Mul(k.D, k.E)
	if de.Mod(de, phi).Cmp(one) != 0 {
		return &KeyError{Reason: "d*e != 1 mod phi"}
	}

	return nil
}

// Zero resets the private components to zero. The key pair is
// unusable for decryption and signing afterwards.
func (k *KeyPair) Zero() {
	for _, v := range []*big.Int{k.D, k.P, k.Q} {
		if v != nil {
			v.SetInt64(0)
		}
	}
}

// String returns the public half only.
func (k *KeyPair) String() string {
	return fmt.Sprintf("KeyPair{N: %s, E: %s}", k.N, k.E)
}

func totient(p, q *big.Int) *big.Int {
	p1 := new(big.Int).Sub(p, one)
	q1 := new(big.Int).Sub(q, one)
	return p1.Mul(p1, q1)
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
