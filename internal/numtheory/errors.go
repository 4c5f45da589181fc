package numtheory

import "errors"

var (
	// ErrInvalidModulus is returned when a modulus is less than or equal to one.
	ErrInvalidModulus = errors.New("invalid modulus: must be greater than 1")

	// ErrNegativeExponent is returned when modular exponentiation is called
	// with a negative exponent.
	ErrNegativeExponent = errors.New("invalid exponent: must not be negative")

	// ErrNoModularInverse is returned when the operands of an inverse
	// computation are not coprime.
	ErrNoModularInverse = errors.New("no modular inverse: operands are not coprime")
)
