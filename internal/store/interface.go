// Package store defines LeafNote persistence and provides the default
// embedded backend on Badger.
package store

import (
	"context"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Implementations enforce uniqueness of User.UsernameKey and
// User.FederatedID, returning ErrUsernameTaken or ErrFederatedIDTaken.
// Owner-scoped note operations never return a note whose OwnerID differs
// from the given owner.
type Store interface {
	// Lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByFederatedID(ctx context.Context, federatedID string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// Notes
	CreateNote(ctx context.Context, note *domain.Note) error
	GetNote(ctx context.Context, id string) (*domain.Note, error)
	GetOwnedNote(ctx context.Context, id, ownerID string) (*domain.Note, error)
	ListNotesByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error)
	DeleteOwnedNote(ctx context.Context, id, ownerID string) error

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) (int, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}
