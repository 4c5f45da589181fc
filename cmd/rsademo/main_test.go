package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vaultsandbox/toyrsa"
	"github.com/vaultsandbox/toyrsa/keystore"
)

// testConfig returns a Config with captured output and the given environment.
func testConfig(t *testing.T, env map[string]string) (Config, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	if _, ok := env["TOYRSA_ENV_FILE"]; !ok {
		env["TOYRSA_ENV_FILE"] = filepath.Join(t.TempDir(), "missing.env")
	}

	var stdout, stderr bytes.Buffer
	cfg := Config{
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(key string) string { return env[key] },
	}
	return cfg, &stdout, &stderr
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Stdout != os.Stdout {
		t.Error("DefaultConfig().Stdout should be os.Stdout")
	}
	if cfg.Stderr != os.Stderr {
		t.Error("DefaultConfig().Stderr should be os.Stderr")
	}
	if cfg.Getenv == nil {
		t.Error("DefaultConfig().Getenv should be set")
	}
}

func TestRun_Demo(t *testing.T) {
	cfg, stdout, _ := testConfig(t, map[string]string{})

	if err := run([]string{"rsademo", "-seed", "demo"}, cfg); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"--- RSA encryption and digital signature demo ---",
		"Prime p: ",
		"Modulus n (p * q): ",
		"Private key (n, d, p, q): ",
		"Original message (m): 23",
		"Decrypted message: 23",
		"Verified message (m'): 23",
		"Decryption round trip: OK",
		"Signature round trip: OK",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg1, out1, _ := testConfig(t, map[string]string{})
	cfg2, out2, _ := testConfig(t, map[string]string{})

	if err := run([]string{"rsademo", "-seed", "same"}, cfg1); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if err := run([]string{"rsademo", "-seed", "same"}, cfg2); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if out1.String() != out2.String() {
		t.Error("same seed produced different output")
	}
}

func TestRun_Parallel(t *testing.T) {
	cfg, stdout, _ := testConfig(t, map[string]string{"TOYRSA_PARALLEL": "true"})

	if err := run([]string{"rsademo", "-seed", "parallel"}, cfg); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "Signature round trip: OK") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
}

func TestRun_Verbose(t *testing.T) {
	cfg, stdout, _ := testConfig(t, map[string]string{})

	if err := run([]string{"rsademo", "-seed", "verbose", "-v"}, cfg); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := stdout.String()
	for _, kind := range []toyrsa.EventKind{toyrsa.EventPrimeP, toyrsa.EventPublicExponent, toyrsa.EventPrivateExponent} {
		if !strings.Contains(out, "["+string(kind)+"]") {
			t.Errorf("output missing event %s:\n%s", kind, out)
		}
	}
}

func TestRun_EnvironmentOverridesFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "TOYRSA_MESSAGE=77\nTOYRSA_SEED=from-file\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Run("file", func(t *testing.T) {
		cfg, stdout, _ := testConfig(t, map[string]string{"TOYRSA_ENV_FILE": envFile})
		if err := run([]string{"rsademo"}, cfg); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if !strings.Contains(stdout.String(), "Original message (m): 77") {
			t.Errorf("message from .env not used:\n%s", stdout.String())
		}
	})

	t.Run("environment", func(t *testing.T) {
		cfg, stdout, _ := testConfig(t, map[string]string{
			"TOYRSA_ENV_FILE": envFile,
			"TOYRSA_MESSAGE":  "42",
		})
		if err := run([]string{"rsademo"}, cfg); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if !strings.Contains(stdout.String(), "Original message (m): 42") {
			t.Errorf("message from environment not used:\n%s", stdout.String())
		}
	})

	t.Run("flag", func(t *testing.T) {
		cfg, stdout, _ := testConfig(t, map[string]string{
			"TOYRSA_ENV_FILE": envFile,
			"TOYRSA_MESSAGE":  "42",
		})
		if err := run([]string{"rsademo", "-message", "5"}, cfg); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if !strings.Contains(stdout.String(), "Original message (m): 5\n") {
			t.Errorf("message from flag not used:\n%s", stdout.String())
		}
	})
}

func TestRun_MessageTooLarge(t *testing.T) {
	cfg, _, _ := testConfig(t, map[string]string{})

	err := run([]string{"rsademo", "-seed", "large", "-message", "99999999"}, cfg)
	if !errors.Is(err, toyrsa.ErrMessageOutOfRange) {
		t.Errorf("run() error = %v, want %v", err, toyrsa.ErrMessageOutOfRange)
	}
}

func TestRun_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"rsademo", "-nope"}},
		{"bad min", []string{"rsademo", "-min", "ten"}},
		{"bad max", []string{"rsademo", "-max", "1e3"}},
		{"bad message", []string{"rsademo", "-message", "hello"}},
		{"min above max", []string{"rsademo", "-min", "500", "-max", "400"}},
		{"positional", []string{"rsademo", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _, _ := testConfig(t, map[string]string{})
			if err := run(tt.args, cfg); err == nil {
				t.Error("run() error = nil, want error")
			}
		})
	}
}

func TestRun_SavesToKeyStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keys.db")
	cfg, stdout, _ := testConfig(t, map[string]string{})

	if err := run([]string{"rsademo", "-seed", "store", "-db", dbPath, "-name", "lab"}, cfg); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stdout.String(), `Saved key "lab"`) {
		t.Errorf("output missing save confirmation:\n%s", stdout.String())
	}

	ctx := context.Background()
	store, err := keystore.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("keystore.Open() error = %v", err)
	}
	defer store.Close()

	if _, err := store.Load(ctx, "lab"); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

func TestRun_Export(t *testing.T) {
	exportPath := filepath.Join(t.TempDir(), "key.json")
	cfg, _, _ := testConfig(t, map[string]string{})

	if err := run([]string{"rsademo", "-seed", "export", "-export", exportPath}, cfg); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var exported toyrsa.ExportedKey
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if _, err := toyrsa.ImportKey(&exported); err != nil {
		t.Errorf("ImportKey() error = %v", err)
	}
}

func TestParseBig(t *testing.T) {
	v, err := parseBig("min", "340282366920938463463374607431768211456")
	if err != nil {
		t.Fatalf("parseBig() error = %v", err)
	}
	if v.BitLen() != 129 {
		t.Errorf("BitLen() = %d, want 129", v.BitLen())
	}

	if _, err := parseBig("min", ""); err == nil {
		t.Error("parseBig(\"\") error = nil, want error")
	}
}

func TestParseBool(t *testing.T) {
	tests := map[string]bool{"true": true, "1": true, "false": false, "0": false}
	for in, want := range tests {
		got, err := parseBool("TOYRSA_PARALLEL", in)
		if err != nil {
			t.Fatalf("parseBool(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("parseBool(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "yes", "on"} {
		if _, err := parseBool("TOYRSA_PARALLEL", in); err == nil {
			t.Errorf("parseBool(%q) error = nil, want error", in)
		}
	}
}

func TestRun_InvalidParallelSetting(t *testing.T) {
	cfg, _, _ := testConfig(t, map[string]string{"TOYRSA_PARALLEL": "yes"})

	err := run([]string{"rsademo", "-seed", "demo"}, cfg)
	if err == nil || !strings.Contains(err.Error(), "TOYRSA_PARALLEL") {
		t.Errorf("run() error = %v, want TOYRSA_PARALLEL error", err)
	}
}
