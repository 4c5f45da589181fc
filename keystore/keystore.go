// Package keystore persists toyrsa key pairs in a SQLite database.
//
// Components are stored as decimal TEXT columns so the table stays readable
// with the sqlite3 shell.
package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vaultsandbox/toyrsa"
	"github.com/vaultsandbox/toyrsa/internal/codec"
)

var (
	// ErrKeyNotFound is returned when no key is stored under a name.
	ErrKeyNotFound = errors.New("key not found")

	// ErrEmptyName is returned when a key name is empty.
	ErrEmptyName = errors.New("key name is required")
)

const createKeys = `
CREATE TABLE IF NOT EXISTS keys (
	name       TEXT PRIMARY KEY,
	rsa_n      TEXT NOT NULL,
	rsa_e      TEXT NOT NULL,
	rsa_d      TEXT NOT NULL,
	rsa_p      TEXT NOT NULL,
	rsa_q      TEXT NOT NULL,
	created_at DATETIME NOT NULL
);`

// Store is a SQLite-backed key store.
type Store struct {
	db *sql.DB
}

// Entry describes a stored key without its private components.
type Entry struct {
	Name      string
	Public    *toyrsa.PublicKey
	CreatedAt time.Time
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open key store: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createKeys); err != nil {
		db.Close()
		return nil, fmt.Errorf("create keys table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores kp under name, replacing any existing key with that name.
func (s *Store) Save(ctx context.Context, name string, kp *toyrsa.KeyPair) error {
	if name == "" {
		return ErrEmptyName
	}
	if err := kp.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO keys (name, rsa_n, rsa_e, rsa_d, rsa_p, rsa_q, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			rsa_n = excluded.rsa_n,
			rsa_e = excluded.rsa_e,
			rsa_d = excluded.rsa_d,
			rsa_p = excluded.rsa_p,
			rsa_q = excluded.rsa_q,
			created_at = excluded.created_at`,
		name,
		codec.FormatDecimal(kp.N),
		codec.FormatDecimal(kp.E),
		codec.FormatDecimal(kp.D),
		codec.FormatDecimal(kp.P),
		codec.FormatDecimal(kp.Q),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save key %q: %w", name, err)
	}
	return nil
}

// Load returns the key pair stored under name.
func (s *Store) Load(ctx context.Context, name string) (*toyrsa.KeyPair, error) {
	var n, e, d, p, q string
	err := s.db.QueryRowContext(ctx,
		"SELECT rsa_n, rsa_e, rsa_d, rsa_p, rsa_q FROM keys WHERE name = ?", name).
		Scan(&n, &e, &d, &p, &q)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load key %q: %w", name, err)
	}

	values, err := parseDecimals(n, e, d, p, q)
	if err != nil {
		return nil, fmt.Errorf("load key %q: %w", name, err)
	}

	kp, err := toyrsa.KeyPairFromComponents(values[0], values[1], values[2], values[3], values[4])
	if err != nil {
		return nil, fmt.Errorf("load key %q: %w", name, err)
	}
	return kp, nil
}

// List returns the stored keys ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, rsa_n, rsa_e, created_at FROM keys ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var name, n, e string
		var createdAt time.Time
		if err := rows.Scan(&name, &n, &e, &createdAt); err != nil {
			return nil, fmt.Errorf("list keys: %w", err)
		}

		values, err := parseDecimals(n, e)
		if err != nil {
			return nil, fmt.Errorf("list keys: %s: %w", name, err)
		}
		entries = append(entries, Entry{
			Name:      name,
			Public:    &toyrsa.PublicKey{N: values[0], E: values[1]},
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	return entries, nil
}

// Delete removes the key stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM keys WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete key %q: %w", name, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete key %q: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	return nil
}
