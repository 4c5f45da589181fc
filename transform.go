package toyrsa

import (
	"math/big"

	"github.com/vaultsandbox/toyrsa/internal/numtheory"
)

// Encrypt returns message^e mod n. The message must be in [0, n).
func Encrypt(message, e, n *big.Int) (*big.Int, error) {
	if err := checkRange("message", message, n); err != nil {
		return nil, err
	}
	return numtheory.ModPow(message, e, n)
}

// Verify recovers the message from a signature: signature^e mod n.
// The signature must be in [0, n).
func Verify(signature, e, n *big.Int) (*big.Int, error) {
	if err := checkRange("signature", signature, n); err != nil {
		return nil, err
	}
	return numtheory.ModPow(signature, e, n)
}

// Decrypt returns ciphertext^d mod n without the CRT shortcut.
func Decrypt(ciphertext, d, n *big.Int) (*big.Int, error) {
	if err := checkRange("ciphertext", ciphertext, n); err != nil {
		return nil, err
	}
	return numtheory.ModPow(ciphertext, d, n)
}

// DecryptCRT returns ciphertext^d mod p*q, computed as one exponentiation
// modulo each prime and recombined with the Chinese Remainder Theorem.
func DecryptCRT(ciphertext, d, p, q *big.Int) (*big.Int, error) {
	return decryptCRT("ciphertext", ciphertext, d, p, q)
}

// Sign returns message^d mod p*q. It is the CRT decryption routine applied
// to the message.
func Sign(message, d, p, q *big.Int) (*big.Int, error) {
	return decryptCRT("message", message, d, p, q)
}

func decryptCRT(role string, c, d, p, q *big.Int) (*big.Int, error) {
	if p.Cmp(one) <= 0 || q.Cmp(one) <= 0 {
		return nil, ErrInvalidModulus
	}

	n := new(big.Int).Mul(p, q)
	if err := checkRange(role, c, n); err != nil {
		return nil, err
	}

	p1 := new(big.Int).Sub(p, one)
	q1 := new(big.Int).Sub(q, one)

	c1, err := numtheory.ModPow(c, new(big.Int).Mod(d, p1), p)
	if err != nil {
		return nil, err
	}
	c2, err := numtheory.ModPow(c, new(big.Int).Mod(d, q1), q)
	if err != nil {
		return nil, err
	}

	// q*x + p*y = 1, so x = q^-1 mod p and y = p^-1 mod q from a single call.
	g, invQModP, invPModQ := numtheory.ExtendedGCD(q, p)
	if g.Cmp(one) != 0 {
		return nil, &KeyError{Reason: "p and q must be coprime", Err: ErrNoModularInverse}
	}

	// m = c1*q*invQModP + c2*p*invPModQ mod n. The coefficients may be
	// negative; Mod is Euclidean and leaves m in [0, n).
	m := new(big.Int).Mul(c1, q)
	m.Mul(m, invQModP)
	t := new(big.Int).Mul(c2, p)
	t.Mul(t, invPModQ)
	m.Add(m, t)

	return m.Mod(m, n), nil
}

func checkRange(role string, v, n *big.Int) error {
	if n.Cmp(one) <= 0 {
		return ErrInvalidModulus
	}
	if v.Sign() < 0 || v.Cmp(n) >= 0 {
		return &RangeError{Role: role, Value: cloneInt(v), Modulus: cloneInt(n)}
	}
	return nil
}

// Encrypt encrypts message with the public key.
func (pub *PublicKey) Encrypt(message *big.Int) (*big.Int, error) {
	return Encrypt(message, pub.E, pub.N)
}

// Verify recovers the signed message from signature.
func (pub *PublicKey) Verify(signature *big.Int) (*big.Int, error) {
	return Verify(signature, pub.E, pub.N)
}

// VerifySignature checks that signature recovers message.
func (pub *PublicKey) VerifySignature(message, signature *big.Int) error {
	recovered, err := pub.Verify(signature)
	if err != nil {
		return err
	}
	if recovered.Cmp(message) != 0 {
		return &SignatureVerificationError{Message: "recovered value does not match message"}
	}
	return nil
}

// Encrypt encrypts message with the public half of the key pair.
func (k *KeyPair) Encrypt(message *big.Int) (*big.Int, error) {
	return Encrypt(message, k.E, k.N)
}

// Decrypt decrypts ciphertext using CRT.
func (k *KeyPair) Decrypt(ciphertext *big.Int) (*big.Int, error) {
	return DecryptCRT(ciphertext, k.D, k.P, k.Q)
}

// Sign signs message using CRT.
func (k *KeyPair) Sign(message *big.Int) (*big.Int, error) {
	return Sign(message, k.D, k.P, k.Q)
}
