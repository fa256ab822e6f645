package runs

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ledgerVersion is stored in PRAGMA user_version. A ledger written by a
// different version is refused rather than migrated.
const ledgerVersion = 1

// ErrSchemaMismatch reports a ledger created with another ledgerVersion.
var ErrSchemaMismatch = errors.New("run ledger version mismatch")

// migrate creates the schema in a fresh database and checks the version of
// an existing one. A database with user_version 0 but a runs table was not
// written by reelsmith and is refused too.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read ledger version: %w", err)
	}
	switch version {
	case ledgerVersion:
		return nil
	case 0:
		var tables int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'runs'").Scan(&tables); err != nil {
			return fmt.Errorf("inspect ledger: %w", err)
		}
		if tables == 0 {
			return s.create(ctx)
		}
	}
	return fmt.Errorf("%w: %s has version %d, expected %d (delete the database to start over)",
		ErrSchemaMismatch, s.path, version, ledgerVersion)
}

func (s *Store) create(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", ledgerVersion)); err != nil {
		return fmt.Errorf("record ledger version: %w", err)
	}
	return tx.Commit()
}
