package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresIdentitySet persists verified identities in PostgreSQL so every
// replica shares one allow-list.
type PostgresIdentitySet struct {
	db *sql.DB
}

func NewPostgresIdentitySet(db *sql.DB) *PostgresIdentitySet {
	return &PostgresIdentitySet{db: db}
}

// EnsureSchema creates the table when it does not exist.
func (s *PostgresIdentitySet) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS verified_identities (
			identity    TEXT PRIMARY KEY,
			verified_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create verified_identities: %w", err)
	}
	return nil
}

func (s *PostgresIdentitySet) Contains(ctx context.Context, identity string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM verified_identities WHERE identity = $1)`, identity,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check verified identity: %w", err)
	}
	return exists, nil
}

// Add keeps the first verification time when the identity is already present.
func (s *PostgresIdentitySet) Add(ctx context.Context, identity string, at time.Time) error {
	query := `
		INSERT INTO verified_identities (identity, verified_at)
		VALUES ($1, $2)
		ON CONFLICT (identity) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, identity, at); err != nil {
		return fmt.Errorf("insert verified identity: %w", err)
	}
	return nil
}

func (s *PostgresIdentitySet) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identity FROM verified_identities ORDER BY identity`)
	if err != nil {
		return nil, fmt.Errorf("list verified identities: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan verified identity: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verified identities: %w", err)
	}
	return out, nil
}
