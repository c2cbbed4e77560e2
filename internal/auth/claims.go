package auth

import "time"

// SessionClaims are the claims carried in an encrypted session token.
type SessionClaims struct {
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"` // user id
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	SessionID  string    `json:"jti"`
}

// UserID returns the subject of the token.
func (c *SessionClaims) UserID() string {
	return c.Subject
}
