// Package codec converts big integers to and from their text encodings.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
)

// ErrNegative is returned when a negative integer is passed to an encoder
// that only represents magnitudes.
var ErrNegative = errors.New("negative integer")

// ToBase64URL encodes bytes to URL-safe base64 without padding.
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// FromBase64URL decodes unpadded URL-safe base64. Padded input is rejected.
func FromBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// IntToBase64URL encodes the big-endian magnitude of a non-negative integer.
// Zero encodes as the empty string.
func IntToBase64URL(n *big.Int) (string, error) {
	if n.Sign() < 0 {
		return "", ErrNegative
	}
	return ToBase64URL(n.Bytes()), nil
}

// IntFromBase64URL decodes a value produced by IntToBase64URL.
func IntFromBase64URL(s string) (*big.Int, error) {
	data, err := FromBase64URL(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}

// FormatDecimal returns the base-10 representation of n.
func FormatDecimal(n *big.Int) string {
	return n.Text(10)
}

// ParseDecimal parses a base-10 integer.
func ParseDecimal(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal integer %q", s)
	}
	return n, nil
}
