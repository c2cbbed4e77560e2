package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "signup",
		Method:        http.MethodPost,
		Path:          "/api/v1/auth/signup",
		Summary:       "Register a local account",
		Description:   "Creates a username/password account and starts a session",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAPISignup)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Description: "Verifies a username and password and starts a session",
		Tags:        []string{"Authentication"},
	}, s.handleAPILogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Log out",
		Description: "Revokes the current session",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleAPILogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/api/v1/me",
		Summary:     "Current user",
		Description: "Returns the authenticated user",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleAPIMe)
}

// === DTOs ===

// CredentialsRequest is the body of signup and login.
type CredentialsRequest struct {
	Username string `json:"username" maxLength:"64" doc:"Username"`
	Password string `json:"password" maxLength:"1024" doc:"Password"`
}

// CredentialsInput wraps the credentials for Huma.
type CredentialsInput struct {
	Body          CredentialsRequest
	UserAgent     string `header:"User-Agent"`
	XForwardedFor string `header:"X-Forwarded-For"`
}

// SessionResponse describes a new session.
type SessionResponse struct {
	UserID    string    `json:"user_id" doc:"Authenticated user ID"`
	SessionID string    `json:"session_id" doc:"Session identifier"`
	Token     string    `json:"token" doc:"PASETO session token"`
	TokenType string    `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresAt time.Time `json:"expires_at" doc:"Session expiry"`
}

// SessionOutput returns the session and sets the session cookie.
type SessionOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      SessionResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// LogoutOutput clears the session cookie.
type LogoutOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      MessageResponse
}

// UserResponse contains the public user fields.
type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Username    string    `json:"username,omitempty" doc:"Username, absent for federated-only accounts"`
	DisplayName string    `json:"display_name" doc:"Display name"`
	Federated   bool      `json:"federated" doc:"Whether the account has a federated identity"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// === Handlers ===

func (s *Server) handleAPISignup(ctx context.Context, input *CredentialsInput) (*SessionOutput, error) {
	userID, err := s.services.Identity.RegisterLocal(ctx, service.RegisterRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return s.bindAPISession(ctx, userID, input)
}

func (s *Server) handleAPILogin(ctx context.Context, input *CredentialsInput) (*SessionOutput, error) {
	userID, err := s.services.Identity.ResolveLocal(ctx, input.Body.Username, input.Body.Password)
	if err != nil {
		return nil, credentialError(err)
	}
	return s.bindAPISession(ctx, userID, input)
}

func (s *Server) bindAPISession(ctx context.Context, userID string, input *CredentialsInput) (*SessionOutput, error) {
	bound, err := s.services.Sessions.Bind(ctx, userID, service.SessionMeta{
		IPAddress: input.XForwardedFor,
		UserAgent: input.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	return &SessionOutput{
		SetCookie: *s.sessionCookie(bound),
		Body: SessionResponse{
			UserID:    userID,
			SessionID: bound.SessionID,
			Token:     bound.Token,
			TokenType: "Bearer",
			ExpiresAt: bound.ExpiresAt,
		},
	}, nil
}

func (s *Server) handleAPILogout(ctx context.Context, _ *struct{}) (*LogoutOutput, error) {
	if IdentityFrom(ctx) == nil {
		return nil, domainerrors.Unauthenticated("authentication required")
	}
	if err := s.services.Sessions.Revoke(ctx, tokenFrom(ctx)); err != nil {
		return nil, err
	}
	return &LogoutOutput{
		SetCookie: *s.expiredCookie(s.opts.CookieName, "/"),
		Body:      MessageResponse{Message: "Logged out"},
	}, nil
}

func (s *Server) handleAPIMe(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	caller := IdentityFrom(ctx)
	if caller == nil {
		return nil, domainerrors.Unauthenticated("authentication required")
	}

	user := caller.User
	return &UserOutput{Body: UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.Name(),
		Federated:   user.IsFederated(),
		CreatedAt:   user.CreatedAt,
	}}, nil
}
