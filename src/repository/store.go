package repository

import (
	"context"
	"database/sql"
	"fmt"

	"breaktime-service/src/db"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so lifecycle
// operations can run their statements inside one transaction while
// everything else uses the pool directly.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store handles all database operations for the breaktime service.
type Store struct {
	db *db.DB
}

// NewStore creates a new store over an open database.
func NewStore(database *db.DB) *Store {
	return &Store{
		db: database,
	}
}

// Begin opens a transaction. Callers must commit or roll back.
func (s *Store) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.GetConnection().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.GetConnection().PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

func (s *Store) pool() *sql.DB {
	return s.db.GetConnection()
}
