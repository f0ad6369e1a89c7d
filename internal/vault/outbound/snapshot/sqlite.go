// Package snapshot persists the signed-in account and its credential list to
// a local SQLite file so the store survives restarts and works offline.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shandysiswandi/otpvault/internal/vault/entity"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_state (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	account_number TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS credentials (
	id             INTEGER PRIMARY KEY,
	account_number TEXT NOT NULL,
	position       INTEGER NOT NULL,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL DEFAULT '',
	username       TEXT NOT NULL DEFAULT '',
	secret         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_credentials_account ON credentials (account_number, position);
`

// SQLite is the snapshot store implementation.
type SQLite struct {
	db *sql.DB
}

// Open opens (or creates) the snapshot database at path.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open database: %w", err)
	}

	// The driver serializes access through a single connection; SQLite does
	// not tolerate concurrent writers on one file.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Account returns the persisted account number, empty when none is stored.
func (s *SQLite) Account(ctx context.Context) (string, error) {
	var number string
	err := s.db.QueryRowContext(ctx, `SELECT account_number FROM session_state WHERE id = 1`).Scan(&number)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("snapshot: read account: %w", err)
	}

	return number, nil
}

// SaveAccount stores the signed-in account number.
func (s *SQLite) SaveAccount(ctx context.Context, number string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_state (id, account_number) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET account_number = excluded.account_number`, number)
	if err != nil {
		return fmt.Errorf("snapshot: save account: %w", err)
	}

	return nil
}

// Credentials returns the stored list for the account in insertion order.
func (s *SQLite) Credentials(ctx context.Context, number string) ([]entity.Credential, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, username, secret
		 FROM credentials WHERE account_number = ? ORDER BY position`, number)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read credentials: %w", err)
	}
	defer rows.Close()

	var creds []entity.Credential
	for rows.Next() {
		var c entity.Credential
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Username, &c.Secret); err != nil {
			return nil, fmt.Errorf("snapshot: scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot: read credentials: %w", err)
	}

	return creds, nil
}

// SaveCredentials replaces the stored list for the account in one
// transaction, so readers never observe a half-written snapshot.
func (s *SQLite) SaveCredentials(ctx context.Context, number string, creds []entity.Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot: begin write: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE account_number = ?`, number); err != nil {
		return fmt.Errorf("snapshot: clear credentials: %w", err)
	}

	for i, c := range creds {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO credentials (id, account_number, position, name, email, username, secret)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, number, i, c.Name, c.Email, c.Username, c.Secret)
		if err != nil {
			return fmt.Errorf("snapshot: insert credential: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot: commit write: %w", err)
	}

	return nil
}

// Clear wipes all snapshot state, used on sign-out.
func (s *SQLite) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot: begin clear: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("snapshot: clear credentials: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_state`); err != nil {
		return fmt.Errorf("snapshot: clear session state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot: commit clear: %w", err)
	}

	return nil
}
