package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/auth"
	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/NiGhtKinG17/LeafNote/internal/id"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
)

// Identity is an authenticated caller. It travels in the request context;
// a nil *Identity is an unauthenticated caller.
type Identity struct {
	UserID    string
	SessionID string
	User      *domain.User
}

// SessionMeta is recorded with a new session.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

// BoundSession is the result of Bind.
type BoundSession struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// SessionBinder binds user ids to session tokens and resolves tokens back
// to identities. Tokens are PASETO v4.local; each names a server-side
// session record so it can be revoked before it expires.
type SessionBinder struct {
	store    store.Store
	tokens   *auth.TokenService
	duration time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionBinder creates a session binder issuing sessions valid for duration.
func NewSessionBinder(s store.Store, tokens *auth.TokenService, duration time.Duration, logger *slog.Logger) *SessionBinder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SessionBinder{
		store:    s,
		tokens:   tokens,
		duration: duration,
		logger:   logger,
		now:      time.Now,
	}
}

// Bind creates a session for userID and returns its token.
func (b *SessionBinder) Bind(ctx context.Context, userID string, meta SessionMeta) (*BoundSession, error) {
	if userID == "" {
		return nil, domainerrors.Validation("user id is required")
	}

	sessionID, err := id.Generate(id.SessionPrefix)
	if err != nil {
		return nil, domainerrors.Internal("generate session id").WithCause(err)
	}

	now := b.now()
	session := &domain.Session{
		ID:        sessionID,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(b.duration),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	token, err := b.tokens.Issue(session.ID, userID, session.ExpiresAt)
	if err != nil {
		return nil, domainerrors.Internal("issue session token").WithCause(err)
	}

	if err := b.store.CreateSession(ctx, session); err != nil {
		return nil, storeError(err, "save session")
	}

	b.logger.Info("session created", "user_id", userID, "session_id", sessionID)

	return &BoundSession{Token: token, SessionID: sessionID, ExpiresAt: session.ExpiresAt}, nil
}

// Resolve returns the identity behind token. Every failure is reported as
// Unauthenticated, or Expired for an authentic token past its lifetime;
// Resolve never returns a nil error without an identity.
func (b *SessionBinder) Resolve(ctx context.Context, token string) (*Identity, error) {
	claims, err := b.tokens.Verify(token)
	if errors.Is(err, auth.ErrTokenExpired) {
		b.forget(ctx, claims.SessionID)
		return nil, domainerrors.Expired("session expired")
	}
	if err != nil {
		return nil, domainerrors.Unauthenticated("invalid session").WithCause(err)
	}

	session, err := b.store.GetSession(ctx, claims.SessionID)
	switch {
	case errors.Is(err, store.ErrSessionExpired):
		b.forget(ctx, claims.SessionID)
		return nil, domainerrors.Expired("session expired")
	case errors.Is(err, store.ErrSessionNotFound):
		return nil, domainerrors.Unauthenticated("session revoked")
	case err != nil:
		b.logger.Warn("session lookup failed", "session_id", claims.SessionID, "error", err)
		return nil, domainerrors.Unauthenticated("session unavailable").WithCause(err)
	}

	if session.UserID != claims.UserID() {
		b.logger.Warn("session token subject mismatch", "session_id", session.ID)
		return nil, domainerrors.Unauthenticated("invalid session")
	}

	user, err := b.store.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			b.forget(ctx, session.ID)
		}
		return nil, domainerrors.Unauthenticated("session user unavailable").WithCause(err)
	}

	return &Identity{UserID: user.ID, SessionID: session.ID, User: user}, nil
}

// Revoke invalidates token. Tokens that are malformed, expired or already
// revoked are not an error.
func (b *SessionBinder) Revoke(ctx context.Context, token string) error {
	claims, err := b.tokens.Decode(token)
	if err != nil {
		return nil //nolint:nilerr // nothing to revoke
	}
	if err := b.store.DeleteSession(ctx, claims.SessionID); err != nil {
		return storeError(err, "delete session")
	}
	b.logger.Info("session revoked", "session_id", claims.SessionID)
	return nil
}

// RevokeAll invalidates every session of userID.
func (b *SessionBinder) RevokeAll(ctx context.Context, userID string) (int, error) {
	n, err := b.store.DeleteUserSessions(ctx, userID)
	if err != nil {
		return 0, storeError(err, "delete user sessions")
	}
	return n, nil
}

// DeleteExpired removes expired session records. Run periodically.
func (b *SessionBinder) DeleteExpired(ctx context.Context) (int, error) {
	n, err := b.store.DeleteExpiredSessions(ctx, b.now())
	if err != nil {
		return 0, storeError(err, "delete expired sessions")
	}
	if n > 0 {
		b.logger.Info("deleted expired sessions", "count", n)
	}
	return n, nil
}

// forget deletes a session that can no longer be used. Failures are logged;
// the caller is already rejected.
func (b *SessionBinder) forget(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := b.store.DeleteSession(ctx, sessionID); err != nil {
		b.logger.Warn("failed to delete dead session", "session_id", sessionID, "error", err)
	}
}
