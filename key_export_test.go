package toyrsa

import (
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"
)

func TestKeyPair_Export(t *testing.T) {
	kp := textbookKey(t)

	exported, err := kp.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if exported.Version != ExportVersion {
		t.Errorf("Version = %d, want %d", exported.Version, ExportVersion)
	}
	if !exported.Private {
		t.Error("Private = false, want true")
	}
	if exported.N != "KKM" {
		t.Errorf("N = %q, want %q", exported.N, "KKM")
	}
	if exported.D == "" || exported.P == "" || exported.Q == "" {
		t.Errorf("private components missing: %+v", exported)
	}
	if time.Since(exported.ExportedAt) > time.Minute {
		t.Errorf("ExportedAt = %v, want recent", exported.ExportedAt)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	kp := textbookKey(t)

	exported, err := kp.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	data, err := json.Marshal(exported)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var parsed ExportedKey
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	imported, err := ImportKey(&parsed)
	if err != nil {
		t.Fatalf("ImportKey() error = %v", err)
	}

	for _, pair := range [][2]*big.Int{{kp.N, imported.N}, {kp.E, imported.E}, {kp.D, imported.D}, {kp.P, imported.P}, {kp.Q, imported.Q}} {
		if pair[0].Cmp(pair[1]) != 0 {
			t.Errorf("component mismatch: %s != %s", pair[0], pair[1])
		}
	}
}

func TestPublicKey_Export(t *testing.T) {
	kp := textbookKey(t)

	exported, err := kp.Public().Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if exported.Private {
		t.Error("Private = true, want false")
	}

	data, err := json.Marshal(exported)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	for _, field := range []string{`"d"`, `"p"`, `"q"`} {
		if strings.Contains(string(data), field) {
			t.Errorf("public export contains %s: %s", field, data)
		}
	}

	pub, err := ImportPublicKey(exported)
	if err != nil {
		t.Fatalf("ImportPublicKey() error = %v", err)
	}
	if pub.N.Cmp(kp.N) != 0 || pub.E.Cmp(kp.E) != 0 {
		t.Errorf("ImportPublicKey() = (%s, %s), want (%s, %s)", pub.N, pub.E, kp.N, kp.E)
	}

	if _, err := ImportKey(exported); !errors.Is(err, ErrInvalidImportData) {
		t.Errorf("ImportKey(public) error = %v, want %v", err, ErrInvalidImportData)
	}
}

func TestImportPublicKey_FromPrivateExport(t *testing.T) {
	kp := textbookKey(t)
	exported, _ := kp.Export()

	pub, err := ImportPublicKey(exported)
	if err != nil {
		t.Fatalf("ImportPublicKey() error = %v", err)
	}
	if pub.N.Cmp(kp.N) != 0 {
		t.Errorf("N = %s, want %s", pub.N, kp.N)
	}
}

func TestExportedKey_Validate(t *testing.T) {
	valid := func(t *testing.T) *ExportedKey {
		t.Helper()
		exported, err := textbookKey(t).Export()
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		return exported
	}

	tests := []struct {
		name   string
		mutate func(x *ExportedKey)
		want   string
	}{
		{"wrong version", func(x *ExportedKey) { x.Version = 2 }, "unsupported version 2"},
		{"missing n", func(x *ExportedKey) { x.N = "" }, "n is required"},
		{"missing e", func(x *ExportedKey) { x.E = "" }, "e is required"},
		{"missing d", func(x *ExportedKey) { x.D = "" }, "d is required"},
		{"bad p encoding", func(x *ExportedKey) { x.P = "!!" }, "invalid p encoding"},
		{"bad q encoding", func(x *ExportedKey) { x.Q = "a+b/" }, "invalid q encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := valid(t)
			tt.mutate(x)

			err := x.Validate()
			if !errors.Is(err, ErrInvalidImportData) {
				t.Fatalf("Validate() error = %v, want %v", err, ErrInvalidImportData)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestImportKey_InvariantViolation(t *testing.T) {
	exported, err := textbookKey(t).Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	// Swap in a different, still well-formed private exponent.
	other, err := NewKeyPair(big.NewInt(101), big.NewInt(103), big.NewInt(13))
	if err != nil {
		t.Fatalf("NewKeyPair() error = %v", err)
	}
	otherExport, _ := other.Export()
	exported.D = otherExport.D

	_, err = ImportKey(exported)
	if !errors.Is(err, ErrInvalidImportData) {
		t.Errorf("ImportKey() error = %v, want %v", err, ErrInvalidImportData)
	}
}

func TestImportPublicKey_InvalidValues(t *testing.T) {
	x := &ExportedKey{Version: ExportVersion, N: "AQ", E: "Bw"} // n = 1
	if _, err := ImportPublicKey(x); !errors.Is(err, ErrInvalidImportData) {
		t.Errorf("ImportPublicKey(n=1) error = %v, want %v", err, ErrInvalidImportData)
	}

	x = &ExportedKey{Version: ExportVersion, N: "KKM", E: "AA"} // e = 0
	if _, err := ImportPublicKey(x); !errors.Is(err, ErrInvalidImportData) {
		t.Errorf("ImportPublicKey(e=0) error = %v, want %v", err, ErrInvalidImportData)
	}
}
