package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
)

const sessionColumns = `id, user_id, expires_at, created_at, ip_address, user_agent`

// CreateSession inserts a new session.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	if session.ID == "" || session.UserID == "" {
		return errors.New("session id and user id are required")
	}

	_, err := s.exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		s.dialect.timeArg(session.ExpiresAt),
		s.dialect.timeArg(session.CreatedAt),
		session.IPAddress,
		session.UserAgent,
	)
	if err = s.translate("create session", err); errors.Is(err, store.ErrAlreadyExists) {
		return fmt.Errorf("session %w", store.ErrAlreadyExists)
	}
	return err
}

// GetSession retrieves a session by ID.
// Expired sessions are reported as ErrSessionExpired until pruned.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var (
		session              domain.Session
		expiresAt, createdAt timestamp
	)
	err := s.queryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id).Scan(
		&session.ID,
		&session.UserID,
		&expiresAt,
		&createdAt,
		&session.IPAddress,
		&session.UserAgent,
	)
	if err != nil {
		err = s.translate("get session", err)
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrSessionNotFound
		}
		return nil, err
	}

	session.ExpiresAt = expiresAt.Time
	session.CreatedAt = createdAt.Time
	if session.IsExpired() {
		return nil, store.ErrSessionExpired
	}
	return &session, nil
}

// DeleteSession deletes a session. Deleting a missing session is not an error.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.exec(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return s.translate("delete session", err)
}

// DeleteUserSessions removes all sessions for a user.
func (s *Store) DeleteUserSessions(ctx context.Context, userID string) (int, error) {
	return s.deleteCount(ctx, "delete user sessions", `DELETE FROM sessions WHERE user_id = ?`, userID)
}

// DeleteExpiredSessions removes every session expired at now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	return s.deleteCount(ctx, "delete expired sessions",
		`DELETE FROM sessions WHERE expires_at <= ?`, s.dialect.timeArg(now))
}

func (s *Store) deleteCount(ctx context.Context, op, query string, args ...any) (int, error) {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, s.translate(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.translate(op, err)
	}
	return int(n), nil
}
