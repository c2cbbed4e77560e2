package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
)

// Dialect selects the SQL flavour, driver and migration set.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// timeLayout is fixed width so that TEXT timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Postgres SQLSTATE codes.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// errOwnerMissing reports a note whose owner row does not exist.
var errOwnerMissing = fmt.Errorf("note owner: %w", store.ErrUserNotFound)

// ParseDialect accepts the names used by configuration.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	}
	return "", fmt.Errorf("unsupported sql dialect %q", name)
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) gooseDialect() goose.Dialect {
	if d == DialectPostgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

// rebind rewrites ? placeholders to $n for postgres.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeArg converts t to the driver argument for a timestamp column.
func (d Dialect) timeArg(t time.Time) any {
	if d == DialectPostgres {
		return t.UTC()
	}
	return t.UTC().Format(timeLayout)
}

// classify maps constraint and contention failures to store errors.
// It returns nil for anything it does not recognise.
func (d Dialect) classify(err error) error {
	if d == DialectPostgres {
		return classifyPostgres(err)
	}
	return classifySQLite(err)
}

func classifyPostgres(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case "users_username_key_uniq":
			return &store.IndexConflictError{Index: store.IndexUsername}
		case "users_federated_id_uniq":
			return &store.IndexConflictError{Index: store.IndexFederatedID}
		}
		return store.ErrAlreadyExists
	case pgForeignKeyViolation:
		return errOwnerMissing
	case pgSerializationFailure, pgDeadlockDetected:
		return store.ErrConflict
	}
	return nil
}

func classifySQLite(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		switch {
		case strings.Contains(msg, "users.username_key"):
			return &store.IndexConflictError{Index: store.IndexUsername}
		case strings.Contains(msg, "users.federated_id"):
			return &store.IndexConflictError{Index: store.IndexFederatedID}
		}
		return store.ErrAlreadyExists
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return errOwnerMissing
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "SQLITE_BUSY"):
		return store.ErrConflict
	}
	return nil
}
