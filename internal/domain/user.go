// Package domain holds the LeafNote entities: users, notes and sessions.
package domain

import (
	"errors"
	"strings"
	"time"
)

// ProviderGoogle qualifies federated ids issued by Google.
const ProviderGoogle = "google"

// ErrNoCredential is returned when a user has neither a password hash nor a federated id.
var ErrNoCredential = errors.New("user must have a password or a federated identity")

// User is an account that can own notes.
//
// Local accounts carry Username and PasswordHash. Federated accounts carry
// FederatedID and may lack both. An account holding both is a linked account.
type User struct {
	Record
	Username     string `json:"username,omitempty"`
	UsernameKey  string `json:"username_key,omitempty"` // normalized, unique
	PasswordHash string `json:"password_hash,omitempty"`
	FederatedID  string `json:"federated_id,omitempty"` // provider:subject, unique
	DisplayName  string `json:"display_name,omitempty"`
}

// Validate checks the credential invariant.
func (u *User) Validate() error {
	if u.PasswordHash == "" && u.FederatedID == "" {
		return ErrNoCredential
	}
	return nil
}

// HasLocalCredential reports whether the user can log in with a password.
func (u *User) HasLocalCredential() bool {
	return u.PasswordHash != ""
}

// IsFederated reports whether the user has a federated identity.
func (u *User) IsFederated() bool {
	return u.FederatedID != ""
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Anonymous"
}

// FederatedID qualifies a provider subject, e.g. FederatedID("google", "1234") is "google:1234".
func FederatedID(provider, subject string) string {
	return provider + ":" + subject
}

// SplitFederatedID is the inverse of FederatedID.
func SplitFederatedID(fid string) (provider, subject string, ok bool) {
	provider, subject, ok = strings.Cut(fid, ":")
	if !ok || provider == "" || subject == "" {
		return "", "", false
	}
	return provider, subject, true
}

// Session is the server-side record behind a session token.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt checks expiry against a given instant.
func (s *Session) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
