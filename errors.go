package toyrsa

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/vaultsandbox/toyrsa/internal/numtheory"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrInvalidModulus is returned when a modulus is less than or equal to one.
	ErrInvalidModulus = numtheory.ErrInvalidModulus

	// ErrNoModularInverse is returned when an inverse is required but the
	// operands are not coprime, e.g. e and phi share a factor.
	ErrNoModularInverse = numtheory.ErrNoModularInverse

	// ErrMessageOutOfRange is returned when a message, ciphertext or
	// signature is not in [0, n).
	ErrMessageOutOfRange = errors.New("value out of range")

	// ErrResourceExhausted is returned when a generation loop exceeds its
	// attempt budget.
	ErrResourceExhausted = errors.New("attempt budget exhausted")

	// ErrInvalidKey is returned when key material violates an RSA invariant.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidConfig is returned when generator options are inconsistent.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidImportData is returned when exported key data is invalid.
	ErrInvalidImportData = errors.New("invalid import data")

	// ErrSignatureInvalid is returned when signature verification fails.
	ErrSignatureInvalid = errors.New("signature verification failed")
)

// ToyRSAError is implemented by all typed errors in this package.
type ToyRSAError interface {
	error
	ToyRSAError() // marker method
}

// RangeError reports a value outside [0, Modulus).
type RangeError struct {
	Role    string // "message", "ciphertext", "signature"
	Value   *big.Int
	Modulus *big.Int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %s out of range [0, %s)", e.Role, e.Value, e.Modulus)
}

// Is implements errors.Is for sentinel error matching.
func (e *RangeError) Is(target error) bool {
	return target == ErrMessageOutOfRange
}

// ToyRSAError implements the ToyRSAError interface.
func (e *RangeError) ToyRSAError() {}

// ExhaustedError reports a generation loop that hit its attempt budget.
type ExhaustedError struct {
	Operation string
	Attempts  int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s gave up after %d attempts", e.Operation, e.Attempts)
}

// Is implements errors.Is for sentinel error matching.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrResourceExhausted
}

// ToyRSAError implements the ToyRSAError interface.
func (e *ExhaustedError) ToyRSAError() {}

// KeyError reports key material that violates an RSA invariant.
type KeyError struct {
	Reason string
	Err    error
}

func (e *KeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid key: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid key: %s", e.Reason)
}

// Unwrap returns the underlying error.
func (e *KeyError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// ToyRSAError implements the ToyRSAError interface.
func (e *KeyError) ToyRSAError() {}

// ValidationError contains multiple configuration failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Errors)
}

// Is implements errors.Is for sentinel error matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// ToyRSAError implements the ToyRSAError interface.
func (e *ValidationError) ToyRSAError() {}

// SignatureVerificationError reports a signature that does not recover the
// expected message.
type SignatureVerificationError struct {
	Message string
}

func (e *SignatureVerificationError) Error() string {
	return fmt.Sprintf("signature verification failed: %s", e.Message)
}

// Is implements errors.Is for sentinel error matching.
func (e *SignatureVerificationError) Is(target error) bool {
	return target == ErrSignatureInvalid
}

// ToyRSAError implements the ToyRSAError interface.
func (e *SignatureVerificationError) ToyRSAError() {}
