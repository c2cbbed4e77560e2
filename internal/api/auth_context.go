package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	identityKey ctxKey = "identity"
	tokenKey    ctxKey = "session_token"
)

// IdentityFrom returns the caller attached by the session middleware, or
// nil for an anonymous request.
func IdentityFrom(ctx context.Context) *service.Identity {
	caller, _ := ctx.Value(identityKey).(*service.Identity)
	return caller
}

func withIdentity(ctx context.Context, caller *service.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, identityKey, caller)
	return context.WithValue(ctx, tokenKey, token)
}

// tokenFrom returns the session token the caller authenticated with.
func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// authenticate resolves the session token from a Bearer header or the
// session cookie. Requests without a valid session continue anonymously;
// handlers and the guard reject them where required. A dead session
// cookie is cleared; one that failed on a backend outage is kept.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, fromCookie := s.sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		caller, err := s.services.Sessions.Resolve(r.Context(), token)
		if err != nil {
			if fromCookie && sessionIsDead(err) {
				s.clearSessionCookie(w)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), caller, token)))
	})
}

// sessionIsDead reports whether a Resolve failure means the token can never
// succeed again.
func sessionIsDead(err error) bool {
	if errors.Is(err, store.ErrUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeUnauthenticated, domainerrors.CodeExpired:
		return true
	default:
		return false
	}
}

// requireLogin redirects anonymous callers of HTML pages to /login.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFrom(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionToken extracts the token, preferring the Authorization header.
func (s *Server) sessionToken(r *http.Request) (token string, fromCookie bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		scheme, value, ok := strings.Cut(authHeader, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value), false
		}
		return "", false
	}

	cookie, err := r.Cookie(s.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
