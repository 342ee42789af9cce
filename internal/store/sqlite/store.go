// Package sqlite implements the recipe entity store on SQLite.
//
// All writes go through a Tx. A Tx becomes visible to readers only when Save
// commits it; a failed Save rolls everything back.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/lieblingsgerichte/rezepte/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// queryer is satisfied by both *sql.DB and *sql.Tx, so read helpers serve
// the store and open transactions alike.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides SQLite-backed persistence for recipes, ingredients and tags.
type Store struct {
	db       *sql.DB
	logger   *slog.Logger
	emitter  store.EventEmitter
	inMemory bool
}

var _ store.Reader = (*Store)(nil)

// Open creates a durable store at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	// Per-connection pragmas go in the DSN so every pooled connection gets them.
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec pragma journal_mode: %w", err)
	}

	return newStore(db, logger, false)
}

// OpenInMemory creates a non-durable store with the same contract as Open.
// It runs on a single connection, so reads issued through the Store wait for
// an open Tx to finish. Inside a Tx, use the Tx read methods.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec pragma foreign_keys: %w", err)
	}

	return newStore(db, logger, true)
}

func newStore(db *sql.DB, logger *slog.Logger, inMemory bool) (*Store, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		db:       db,
		logger:   logger,
		emitter:  store.NewNoopEmitter(),
		inMemory: inMemory,
	}, nil
}

// SetEmitter replaces the change emitter. Nil restores the no-op emitter.
func (s *Store) SetEmitter(e store.EventEmitter) {
	if e == nil {
		e = store.NewNoopEmitter()
	}
	s.emitter = e
}

// InMemory reports whether the store is the non-durable variant.
func (s *Store) InMemory() bool {
	return s.inMemory
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// timeLayout is RFC3339 with a fixed nine digit fraction so stored
// timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime converts a time.Time to a fixed-width string in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp back to time.Time. Rows written with
// a trimmed fraction parse as well.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString converts an empty string to a NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
