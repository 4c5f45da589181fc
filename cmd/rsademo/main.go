// Command rsademo generates a toy RSA key pair, then encrypts, decrypts,
// signs and verifies a fixed message, printing every intermediate value.
//
// Settings are read from flags, then TOYRSA_* environment variables, then a
// .env file (path from TOYRSA_ENV_FILE, default ".env").
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/vaultsandbox/toyrsa"
	"github.com/vaultsandbox/toyrsa/keystore"
)

const runTimeout = 60 * time.Second

// Config holds the process resources used by run.
type Config struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
}

// DefaultConfig returns a Config bound to the process.
func DefaultConfig() Config {
	return Config{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
}

type settings struct {
	minPrime string
	maxPrime string
	message  string
	seed     string
	dbPath   string
	keyName  string
	export   string
	parallel bool
	verbose  bool
}

func run(args []string, cfg Config) error {
	s, err := parseSettings(args, cfg)
	if err != nil {
		return err
	}

	minPrime, err := parseBig("min", s.minPrime)
	if err != nil {
		return err
	}
	maxPrime, err := parseBig("max", s.maxPrime)
	if err != nil {
		return err
	}
	message, err := parseBig("message", s.message)
	if err != nil {
		return err
	}

	opts := []toyrsa.Option{
		toyrsa.WithMinPrime(minPrime),
		toyrsa.WithMaxPrime(maxPrime),
		toyrsa.WithParallelSearch(s.parallel),
	}
	if s.seed != "" {
		opts = append(opts, toyrsa.WithSeed([]byte(s.seed)))
	}
	if s.verbose {
		opts = append(opts, toyrsa.WithObserver(func(ev toyrsa.Event) {
			fmt.Fprintf(cfg.Stdout, "[%s] %s (attempts: %d)\n", ev.Kind, ev.Value, ev.Attempts)
		}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	out := cfg.Stdout
	fmt.Fprintln(out, "--- RSA encryption and digital signature demo ---")

	kp, err := toyrsa.GenerateKey(ctx, opts...)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	printKey(out, kp)

	if err := roundTrip(out, kp, message); err != nil {
		return err
	}

	if s.dbPath != "" {
		if err := saveKey(ctx, s.dbPath, s.keyName, kp); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved key %q to %s\n", s.keyName, s.dbPath)
	}

	if s.export != "" {
		if err := exportKey(s.export, kp); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported key to %s\n", s.export)
	}

	return nil
}

func parseSettings(args []string, cfg Config) (*settings, error) {
	lookup, err := envLookup(cfg.Getenv)
	if err != nil {
		return nil, err
	}

	name := "rsademo"
	if len(args) > 0 {
		name = filepath.Base(args[0])
		args = args[1:]
	}

	s := &settings{}
	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.SetOutput(cfg.Stderr)
	fset.StringVar(&s.minPrime, "min", lookup("TOYRSA_MIN_PRIME", "100"), "primes must exceed this value")
	fset.StringVar(&s.maxPrime, "max", lookup("TOYRSA_MAX_PRIME", "1000"), "upper bound of the prime candidate range")
	fset.StringVar(&s.message, "message", lookup("TOYRSA_MESSAGE", "23"), "message to encrypt and sign")
	fset.StringVar(&s.seed, "seed", lookup("TOYRSA_SEED", ""), "seed for deterministic generation")
	fset.StringVar(&s.dbPath, "db", lookup("TOYRSA_DB", ""), "SQLite key store to save the key in")
	fset.StringVar(&s.keyName, "name", lookup("TOYRSA_KEY_NAME", "demo"), "name of the saved key")
	fset.StringVar(&s.export, "export", lookup("TOYRSA_EXPORT", ""), "write the key pair as JSON to this file")
	parallel, err := parseBool("TOYRSA_PARALLEL", lookup("TOYRSA_PARALLEL", "false"))
	if err != nil {
		return nil, err
	}
	fset.BoolVar(&s.parallel, "parallel", parallel, "search for p and q concurrently")
	fset.BoolVar(&s.verbose, "v", false, "print key generation events")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fset.Args())
	}

	return s, nil
}

// envLookup returns a lookup preferring the environment over the .env file.
func envLookup(getenv func(string) string) (func(key, def string) string, error) {
	path := getenv("TOYRSA_ENV_FILE")
	if path == "" {
		path = ".env"
	}

	fileVars, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		if v, ok := fileVars[key]; ok && v != "" {
			return v
		}
		return def
	}, nil
}

func parseBool(name, s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q", name, s)
	}
	return b, nil
}

func parseBig(name, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid -%s value %q", name, s)
	}
	return v, nil
}

func printKey(out io.Writer, kp *toyrsa.KeyPair) {
	fmt.Fprintf(out, "\nPrime p: %s\n", kp.P)
	fmt.Fprintf(out, "Prime q: %s\n", kp.Q)
	fmt.Fprintf(out, "Modulus n (p * q): %s\n", kp.N)
	fmt.Fprintf(out, "Phi(n) ((p-1)*(q-1)): %s\n", kp.Phi())
	fmt.Fprintf(out, "Public exponent e: %s\n", kp.E)
	fmt.Fprintf(out, "Private exponent d: %s\n", kp.D)

	fmt.Fprintf(out, "\nPublic key (n, e): (%s, %s)\n", kp.N, kp.E)
	fmt.Fprintf(out, "Private key (n, d, p, q): (%s, %s, %s, %s)\n", kp.N, kp.D, kp.P, kp.Q)
}

func roundTrip(out io.Writer, kp *toyrsa.KeyPair, message *big.Int) error {
	fmt.Fprintln(out, "\n--- Encryption and decryption ---")
	fmt.Fprintf(out, "Original message (m): %s\n", message)

	ciphertext, err := kp.Encrypt(message)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	fmt.Fprintf(out, "Ciphertext (c): %s\n", ciphertext)

	decrypted, err := kp.Decrypt(ciphertext)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	fmt.Fprintf(out, "Decrypted message: %s\n", decrypted)

	fmt.Fprintln(out, "\n--- Signing and verification ---")
	fmt.Fprintf(out, "Message to sign (m): %s\n", message)

	signature, err := kp.Sign(message)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	fmt.Fprintf(out, "Signature (s): %s\n", signature)

	verified, err := kp.Public().Verify(signature)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	fmt.Fprintf(out, "Verified message (m'): %s\n", verified)

	if decrypted.Cmp(message) != 0 {
		return fmt.Errorf("decryption mismatch: got %s, want %s", decrypted, message)
	}
	if verified.Cmp(message) != 0 {
		return fmt.Errorf("verification mismatch: got %s, want %s", verified, message)
	}

	fmt.Fprintln(out, "\nDecryption round trip: OK")
	fmt.Fprintln(out, "Signature round trip: OK")
	return nil
}

func saveKey(ctx context.Context, path, name string, kp *toyrsa.KeyPair) error {
	store, err := keystore.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Save(ctx, name, kp)
}

func exportKey(path string, kp *toyrsa.KeyPair) error {
	exported, err := kp.Export()
	if err != nil {
		return fmt.Errorf("export key: %w", err)
	}

	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
