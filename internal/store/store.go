package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	"github.com/NiGhtKinG17/LeafNote/internal/normalize"
	"github.com/dgraph-io/badger/v4"
)

const (
	userPrefix    = "user:"
	notePrefix    = "note:"
	sessionPrefix = "session:"

	indexOwner = "owner"
	indexUser  = "user"
)

// Unique user index names. Every backend reports conflicts on them through
// *IndexConflictError so MapUserConflict can name the field.
const (
	IndexUsername    = "username"
	IndexFederatedID = "federated_id"
)

// Badger is the embedded Store backend.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Users    *Entity[domain.User]
	Notes    *Entity[domain.Note]
	Sessions *Entity[domain.Session]
}

var _ Store = (*Badger)(nil)

// Options tune the Badger backend.
type Options struct {
	// InMemory keeps all data in memory; path is ignored. Used by tests and tools.
	InMemory bool
	// ReadOnly opens an existing database without write access.
	ReadOnly bool
}

// New opens (or creates) a Badger database at path.
func New(path string, logger *slog.Logger) (*Badger, error) {
	return NewWithOptions(path, logger, Options{})
}

// NewWithOptions opens a Badger database with explicit options.
func NewWithOptions(path string, logger *slog.Logger, o Options) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	if o.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	if o.ReadOnly {
		opts.ReadOnly = true
		opts.CompactL0OnClose = false
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Badger{db: db, logger: logger}
	s.initUsers()
	s.initNotes()
	s.initSessions()

	logger.Info("Badger database opened successfully", "path", path, "in_memory", o.InMemory)

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Badger) Close() error {
	s.logger.Info("Closing database connection")
	return s.db.Close()
}

// Ping reports whether the database accepts reads.
func (s *Badger) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("ping: %w", ErrUnavailable)
	}
	return s.translate("ping", s.db.View(func(*badger.Txn) error { return nil }))
}

// DB exposes the underlying handle for maintenance tools.
func (s *Badger) DB() *badger.DB {
	return s.db
}

// translate maps Badger failures onto the package error classes.
func (s *Badger) translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrConflict),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, badger.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return Unavailable(op, err)
	}
}

// initUsers indexes users by normalized username and by federated id.
// Both indexes are unique and skip users without the field.
func (s *Badger) initUsers() {
	s.Users = NewEntity[domain.User](s, userPrefix).
		WithIndexTransform(IndexUsername,
			func(u *domain.User) []string {
				if u.UsernameKey == "" {
					return nil
				}
				return []string{u.UsernameKey}
			},
			normalize.Username,
		).
		WithIndex(IndexFederatedID, func(u *domain.User) []string {
			if u.FederatedID == "" {
				return nil
			}
			return []string{u.FederatedID}
		})
}

// initNotes indexes notes by owner with a sortable creation time so that
// ListByIndex yields each owner's notes oldest first.
func (s *Badger) initNotes() {
	s.Notes = NewEntity[domain.Note](s, notePrefix).
		WithMultiIndex(indexOwner, func(n *domain.Note) []string {
			return []string{n.OwnerID + ":" + sortableTime(n.CreatedAt)}
		})
}

func (s *Badger) initSessions() {
	s.Sessions = NewEntity[domain.Session](s, sessionPrefix).
		WithMultiIndex(indexUser, func(sess *domain.Session) []string {
			return []string{sess.UserID}
		})
}
