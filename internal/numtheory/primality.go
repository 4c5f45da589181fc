package numtheory

import "math/big"

var defaultBases = []int64{2, 3, 5, 7, 11, 13, 17}

// DefaultBases returns the witness bases used when none are configured.
// The returned slice is a copy and may be modified by the caller.
func DefaultBases() []int64 {
	bases := make([]int64, len(defaultBases))
	copy(bases, defaultBases)
	return bases
}

// IsProbablePrime reports whether n passes the Miller-Rabin test for every
// base in bases, tried in order. Bases outside [2, n) are skipped. The test
// stops at the first base that proves n composite.
func IsProbablePrime(n *big.Int, bases []int64) bool {
	if n.Cmp(two) < 0 {
		return false
	}
	if n.Cmp(big.NewInt(3)) <= 0 {
		return true
	}
	if n.Bit(0) == 0 {
		return false
	}

	nMinusOne := new(big.Int).Sub(n, one)
	d, s := splitPowerOfTwo(nMinusOne)

	a := new(big.Int)
	for _, base := range bases {
		a.SetInt64(base)
		if a.Cmp(two) < 0 || a.Cmp(n) >= 0 {
			continue
		}
		if !passesWitness(a, d, s, n, nMinusOne) {
			return false
		}
	}

	return true
}

// splitPowerOfTwo returns (d, s) with m = 2^s * d and d odd. m must be positive.
func splitPowerOfTwo(m *big.Int) (*big.Int, int) {
	d := new(big.Int).Set(m)
	s := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		s++
	}
	return d, s
}

// passesWitness runs one Miller-Rabin round for base a, where n-1 = 2^s * d.
func passesWitness(a, d *big.Int, s int, n, nMinusOne *big.Int) bool {
	x := modPow(a, d, n)
	if x.Cmp(one) == 0 || x.Cmp(nMinusOne) == 0 {
		return true
	}

	for i := 0; i < s-1; i++ {
		x = modPow(x, two, n)
		if x.Cmp(nMinusOne) == 0 {
			return true
		}
	}

	return false
}
