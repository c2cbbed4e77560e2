package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	"github.com/NiGhtKinG17/LeafNote/internal/normalize"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, username, username_key, password_hash, federated_id, display_name`

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u                     domain.User
		createdAt, updatedAt  timestamp
		username, usernameKey sql.NullString
		passwordHash, fedID   sql.NullString
	)
	if err := row.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&username,
		&usernameKey,
		&passwordHash,
		&fedID,
		&u.DisplayName,
	); err != nil {
		return nil, err
	}

	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	u.Username = username.String
	u.UsernameKey = usernameKey.String
	u.PasswordHash = passwordHash.String
	u.FederatedID = fedID.String
	return &u, nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := store.PrepareUser(user); err != nil {
		return err
	}

	_, err := s.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		s.dialect.timeArg(user.CreatedAt),
		s.dialect.timeArg(user.UpdatedAt),
		nullString(user.Username),
		nullString(user.UsernameKey),
		nullString(user.PasswordHash),
		nullString(user.FederatedID),
		user.DisplayName,
	)
	return store.MapUserConflict(s.translate("create user", err))
}

func (s *Store) getUserWhere(ctx context.Context, op, column, value string) (*domain.User, error) {
	if value == "" {
		return nil, store.ErrUserNotFound
	}
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value))
	if err != nil {
		err = s.translate(op, err)
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserWhere(ctx, "get user", "id", id)
}

// GetUserByUsername retrieves a user by normalized username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUserWhere(ctx, "get user by username", "username_key", normalize.Username(username))
}

// GetUserByFederatedID retrieves a user by provider-qualified federated id.
func (s *Store) GetUserByFederatedID(ctx context.Context, federatedID string) (*domain.User, error) {
	return s.getUserWhere(ctx, "get user by federated id", "federated_id", federatedID)
}

// UpdateUser replaces a user's mutable fields.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	user.UsernameKey = normalize.Username(user.Username)
	user.Touch()

	res, err := s.exec(ctx,
		`UPDATE users
		 SET updated_at = ?, username = ?, username_key = ?, password_hash = ?, federated_id = ?, display_name = ?
		 WHERE id = ?`,
		s.dialect.timeArg(user.UpdatedAt),
		nullString(user.Username),
		nullString(user.UsernameKey),
		nullString(user.PasswordHash),
		nullString(user.FederatedID),
		user.DisplayName,
		user.ID,
	)
	if err != nil {
		return store.MapUserConflict(s.translate("update user", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return s.translate("update user", err)
	}
	if n == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// ListUsers returns every user ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, s.translate("list users", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, s.translate("list users", err)
	}
	return users, nil
}
