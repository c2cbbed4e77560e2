package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	"github.com/NiGhtKinG17/LeafNote/internal/normalize"
)

// CreateUser creates a new user account.
// The username key is derived here so that every writer normalizes the same way.
func (s *Badger) CreateUser(ctx context.Context, user *domain.User) error {
	if err := PrepareUser(user); err != nil {
		return err
	}
	return MapUserConflict(s.Users.Create(ctx, user.ID, user))
}

// GetUser retrieves a user by ID.
func (s *Badger) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.Users.Get(ctx, id)
	return u, mapNotFound(err, ErrUserNotFound)
}

// GetUserByUsername retrieves a user by username, ignoring case and compatibility forms.
func (s *Badger) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.Users.GetByIndex(ctx, IndexUsername, username)
	return u, mapNotFound(err, ErrUserNotFound)
}

// GetUserByFederatedID retrieves a user by provider-qualified federated id.
func (s *Badger) GetUserByFederatedID(ctx context.Context, federatedID string) (*domain.User, error) {
	u, err := s.Users.GetByIndex(ctx, IndexFederatedID, federatedID)
	return u, mapNotFound(err, ErrUserNotFound)
}

// UpdateUser replaces a user record. Used for account linking.
func (s *Badger) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	user.UsernameKey = normalize.Username(user.Username)
	user.Touch()
	err := s.Users.Update(ctx, user.ID, user)
	return MapUserConflict(mapNotFound(err, ErrUserNotFound))
}

// ListUsers returns every user.
func (s *Badger) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for u, err := range s.Users.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// PrepareUser validates a new user and fills derived fields. Backends call it
// before inserting.
func PrepareUser(user *domain.User) error {
	if user.ID == "" {
		return errors.New("user id is required")
	}
	if err := user.Validate(); err != nil {
		return err
	}
	user.UsernameKey = normalize.Username(user.Username)
	if user.CreatedAt.IsZero() {
		user.InitTimestamps()
	}
	return nil
}

// MapUserConflict turns a unique index conflict into ErrUsernameTaken or
// ErrFederatedIDTaken.
func MapUserConflict(err error) error {
	var conflict *IndexConflictError
	if errors.As(err, &conflict) {
		switch conflict.Index {
		case IndexUsername:
			return ErrUsernameTaken
		case IndexFederatedID:
			return ErrFederatedIDTaken
		}
	}
	return err
}

// mapNotFound replaces a generic ErrNotFound with a specific one.
func mapNotFound(err, specific error) error {
	if errors.Is(err, ErrNotFound) {
		return specific
	}
	return err
}
