// Package sqlstore implements store.Store on database/sql for SQLite and
// PostgreSQL. Both dialects share the queries; schemas are applied with goose.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/store"
	"github.com/NiGhtKinG17/LeafNote/internal/store/sqlstore/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store is the SQL Store backend.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn, applies pending migrations and returns the store.
// For SQLite, dsn may be a plain file path.
func Open(ctx context.Context, dialect Dialect, dsn string, logger *slog.Logger) (*Store, error) {
	if dialect == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, store.Unavailable("ping", err)
	}

	s := New(db, dialect, logger)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("SQL database opened successfully", "dialect", string(dialect))
	return s, nil
}

// New wraps an open handle without running migrations.
func New(db *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, dialect: dialect, logger: logger}
}

// Migrate applies every pending migration for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations.FS, string(s.dialect))
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", s.dialect, err)
	}

	provider, err := goose.NewProvider(s.dialect.gooseDialect(), s.db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Debug("migration applied", "source", r.Source.Path, "duration", r.Duration)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.translate("ping", err)
	}
	return nil
}

// DB exposes the underlying handle for maintenance tools.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

// translate maps driver failures onto the store error classes.
func (s *Store) translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	}
	if mapped := s.dialect.classify(err); mapped != nil {
		return mapped
	}
	return store.Unavailable(op, err)
}

// sqliteDSN turns a file path into a DSN that enables the pragmas every
// connection needs.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, "?") {
		return path
	}
	return "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"
}

// timestamp scans TEXT (SQLite) and TIMESTAMPTZ (postgres) columns.
type timestamp struct {
	time.Time
}

// Scan implements sql.Scanner.
func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case time.Time:
		t.Time = v
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
	return nil
}

func (t *timestamp) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// nullString returns a NULL for the empty string so unique columns
// tolerate many absent values.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
