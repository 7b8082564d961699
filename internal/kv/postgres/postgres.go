package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/utafrali/storefront/pkg/database"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the kv_entries schema files, rooted for
// database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// DBTX is the subset of pgxpool.Pool used by the store. pgxmock pools satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements kv.Store on top of a PostgreSQL table.
type Store struct {
	db     DBTX
	tracer *database.QueryTracer
}

// NewStore creates a new PostgreSQL-backed key/value store. A nil tracer
// still records spans but never reports slow statements.
func NewStore(db DBTX, tracer *database.QueryTracer) *Store {
	if tracer == nil {
		tracer = database.NewQueryTracer(0, nil)
	}
	return &Store{db: db, tracer: tracer}
}

// Get retrieves the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_entries WHERE key = $1`

	ctx, q := s.tracer.Start(ctx, "kv.get", query)
	var value string
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		q.Finish(nil)
		return "", false, nil
	}
	q.Finish(err)
	if err != nil {
		return "", false, fmt.Errorf("get kv entry %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	ctx, q := s.tracer.Start(ctx, "kv.set", query)
	_, err := s.db.Exec(ctx, query, key, value)
	q.Finish(err)
	if err != nil {
		return fmt.Errorf("set kv entry %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE key = $1`

	ctx, q := s.tracer.Start(ctx, "kv.delete", query)
	_, err := s.db.Exec(ctx, query, key)
	q.Finish(err)
	if err != nil {
		return fmt.Errorf("delete kv entry %s: %w", key, err)
	}
	return nil
}
