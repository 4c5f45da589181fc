package toyrsa

import (
	"fmt"
	"math/big"
	"time"

	"github.com/vaultsandbox/toyrsa/internal/codec"
)

// ExportVersion is the current export format version.
const ExportVersion = 1

// ExportedKey is the JSON form of a key. Integers are big-endian magnitudes
// encoded as URL-safe base64 without padding.
// WARNING: When Private is true this contains private key material - handle securely.
type ExportedKey struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// N is the modulus.
	N string `json:"n"`
	// E is the public exponent.
	E string `json:"e"`
	// D is the private exponent. Only set for private exports.
	D string `json:"d,omitempty"`
	// P is the first prime factor. Only set for private exports.
	P string `json:"p,omitempty"`
	// Q is the second prime factor. Only set for private exports.
	Q string `json:"q,omitempty"`
	// Private indicates whether D, P and Q are present.
	Private bool `json:"private"`
	// ExportedAt is the export timestamp (ISO 8601). Informational only.
	ExportedAt time.Time `json:"exportedAt"`
}

// Export returns exportable key data including the private components.
func (k *KeyPair) Export() (*ExportedKey, error) {
	exported, err := exportPublic(k.N, k.E)
	if err != nil {
		return nil, err
	}

	fields := []struct {
		dst *string
		v   *big.Int
	}{
		{&exported.D, k.D},
		{&exported.P, k.P},
		{&exported.Q, k.Q},
	}
	for _, f := range fields {
		if *f.dst, err = codec.IntToBase64URL(f.v); err != nil {
			return nil, &KeyError{Reason: "cannot encode private component", Err: err}
		}
	}
	exported.Private = true

	return exported, nil
}

// Export returns exportable public key data.
func (pub *PublicKey) Export() (*ExportedKey, error) {
	return exportPublic(pub.N, pub.E)
}

func exportPublic(n, e *big.Int) (*ExportedKey, error) {
	nStr, err := codec.IntToBase64URL(n)
	if err != nil {
		return nil, &KeyError{Reason: "cannot encode modulus", Err: err}
	}
	eStr, err := codec.IntToBase64URL(e)
	if err != nil {
		return nil, &KeyError{Reason: "cannot encode public exponent", Err: err}
	}

	return &ExportedKey{
		Version:    ExportVersion,
		N:          nStr,
		E:          eStr,
		ExportedAt: time.Now().UTC(),
	}, nil
}

// Validate checks the structure of the exported data. Key invariants are
// checked on import.
func (x *ExportedKey) Validate() error {
	if x.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidImportData, x.Version, ExportVersion)
	}

	required := []struct {
		name  string
		value string
	}{
		{"n", x.N},
		{"e", x.E},
	}
	if x.Private {
		required = append(required,
			struct{ name, value string }{"d", x.D},
			struct{ name, value string }{"p", x.P},
			struct{ name, value string }{"q", x.Q},
		)
	}

	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidImportData, r.name)
		}
		if _, err := codec.FromBase64URL(r.value); err != nil {
			return fmt.Errorf("%w: invalid %s encoding", ErrInvalidImportData, r.name)
		}
	}

	return nil
}

// ImportKey reconstructs a key pair from a private export.
func ImportKey(data *ExportedKey) (*KeyPair, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if !data.Private {
		return nil, fmt.Errorf("%w: export does not contain private components", ErrInvalidImportData)
	}

	// Validate() already verified every field decodes.
	n, _ := codec.IntFromBase64URL(data.N)
	e, _ := codec.IntFromBase64URL(data.E)
	d, _ := codec.IntFromBase64URL(data.D)
	p, _ := codec.IntFromBase64URL(data.P)
	q, _ := codec.IntFromBase64URL(data.Q)

	kp, err := KeyPairFromComponents(n, e, d, p, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportData, err)
	}
	return kp, nil
}

// ImportPublicKey reconstructs the public key from any export.
func ImportPublicKey(data *ExportedKey) (*PublicKey, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	n, _ := codec.IntFromBase64URL(data.N)
	e, _ := codec.IntFromBase64URL(data.E)
	if n.Cmp(one) <= 0 {
		return nil, fmt.Errorf("%w: modulus must be greater than 1", ErrInvalidImportData)
	}
	if e.Sign() <= 0 {
		return nil, fmt.Errorf("%w: public exponent must be positive", ErrInvalidImportData)
	}

	return &PublicKey{N: n, E: e}, nil
}
