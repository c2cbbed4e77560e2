package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
)

// CreateSession creates a new user session.
func (s *Badger) CreateSession(ctx context.Context, session *domain.Session) error {
	if session.ID == "" || session.UserID == "" {
		return errors.New("session id and user id are required")
	}
	if err := s.Sessions.Create(ctx, session.ID, session); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("session %w", ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// GetSession retrieves a session by ID.
// Expired sessions are reported as ErrSessionExpired until pruned.
func (s *Badger) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrSessionNotFound)
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// DeleteSession deletes a session (logout). Deleting a missing session is not an error.
func (s *Badger) DeleteSession(ctx context.Context, id string) error {
	return s.Sessions.Delete(ctx, id)
}

// DeleteUserSessions removes all sessions for a user and returns how many were removed.
func (s *Badger) DeleteUserSessions(ctx context.Context, userID string) (int, error) {
	var ids []string
	for session, err := range s.Sessions.ListByIndex(ctx, indexUser, userID+":") {
		if err != nil {
			return 0, fmt.Errorf("list sessions for deletion: %w", err)
		}
		ids = append(ids, session.ID)
	}

	for _, id := range ids {
		if err := s.DeleteSession(ctx, id); err != nil {
			return 0, fmt.Errorf("delete session %s: %w", id, err)
		}
	}
	return len(ids), nil
}

// DeleteExpiredSessions removes all sessions expired at now (cleanup job).
func (s *Badger) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	var expiredIDs []string

	// First pass: find expired sessions
	for session, err := range s.Sessions.List(ctx) {
		if err != nil {
			return 0, fmt.Errorf("find expired sessions: %w", err)
		}
		if session.IsExpiredAt(now) {
			expiredIDs = append(expiredIDs, session.ID)
		}
	}

	// Second pass: delete expired sessions
	deleted := 0
	for _, id := range expiredIDs {
		if err := s.DeleteSession(ctx, id); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", id, "error", err)
			continue
		}
		deleted++
	}

	return deleted, nil
}
