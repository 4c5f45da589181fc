// Package numtheory implements the integer arithmetic behind textbook RSA.
//
// # Modular Arithmetic Kernel
//
//   - [GCD]: iterative Euclidean algorithm.
//   - [ExtendedGCD]: iterative extended Euclidean algorithm returning the
//     Bézout coefficients (x, y) with a*x + b*y = gcd(a, b).
//   - [ModPow]: binary (square-and-multiply) modular exponentiation.
//   - [ModInverse]: modular inverse derived from [ExtendedGCD].
//
// # Primality
//
// [IsProbablePrime] runs the Miller-Rabin test against a fixed, ordered set
// of witness bases. A composite passing every base is possible, but a prime
// is never rejected. With [DefaultBases] the answer is exact for every
// n < 341,550,071,728,321; larger candidates need randomized or larger
// witness sets.
//
// All functions operate on *big.Int and never modify their arguments.
package numtheory
