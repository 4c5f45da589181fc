package numtheory

import (
	"fmt"
	"math/big"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// GCD returns the non-negative greatest common divisor of a and b.
// GCD(a, 0) is |a|.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)

	for y.Sign() != 0 {
		x, y = y, x.Rem(x, y)
	}
	return x
}

// ExtendedGCD returns (g, x, y) such that a*x + b*y = g = GCD(a, b).
//
// The coefficient pairs (oldX, x) and (oldY, y) are advanced by the running
// quotient on every step, so the computation runs in constant stack space.
// When g is 1, x mod b is the inverse of a modulo b and y mod a is the
// inverse of b modulo a.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldX, curX := big.NewInt(1), big.NewInt(0)
	oldY, curY := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Div(oldR, r)

		// (oldR, r) = (r, oldR - q*r)
		tmp.Mul(q, r)
		oldR, r = r, oldR.Sub(oldR, tmp)

		tmp.Mul(q, curX)
		oldX, curX = curX, oldX.Sub(oldX, tmp)

		tmp.Mul(q, curY)
		oldY, curY = curY, oldY.Sub(oldY, tmp)
	}

	// Div leaves non-negative remainders, so a negative oldR can only be one of
	// the original operands.
	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldX.Neg(oldX)
		oldY.Neg(oldY)
	}

	return oldR, oldX, oldY
}

// ModInverse returns the inverse of a modulo m in [0, m).
// It returns ErrNoModularInverse when GCD(a, m) != 1.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Cmp(one) <= 0 {
		return nil, ErrInvalidModulus
	}

	g, x, _ := ExtendedGCD(a, m)
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("%w: gcd(%s, %s) = %s", ErrNoModularInverse, a, m, g)
	}

	return x.Mod(x, m), nil
}

// ModPow returns base^exponent mod modulus in [0, modulus).
// The modulus must be greater than one and the exponent non-negative.
func ModPow(base, exponent, modulus *big.Int) (*big.Int, error) {
	if modulus.Cmp(one) <= 0 {
		return nil, ErrInvalidModulus
	}
	if exponent.Sign() < 0 {
		return nil, ErrNegativeExponent
	}
	return modPow(base, exponent, modulus), nil
}

// modPow is ModPow without argument validation.
func modPow(base, exponent, modulus *big.Int) *big.Int {
	result := big.NewInt(1)
	b := new(big.Int).Mod(base, modulus)
	e := new(big.Int).Set(exponent)

	for e.Sign() > 0 {
		if e.Bit(0) == 1 {
			result.Mul(result, b)
			result.Mod(result, modulus)
		}
		b.Mul(b, b)
		b.Mod(b, modulus)
		e.Rsh(e, 1)
	}

	return result
}
