package auth

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	tokenIssuer   = "leafnote"
	tokenAudience = "leafnote-web"

	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32 // 256 bits
	keyHexSize   = 64 // 32 bytes as hex string
)

// Token verification errors.
var (
	ErrTokenInvalid = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
)

// TokenService issues and verifies PASETO v4.local session tokens.
// The token is encrypted, so neither the user id nor the session id is
// readable by the client.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	now          func() time.Time
}

// NewTokenService creates a token service from a hex-encoded 32 byte key.
func NewTokenService(keyHex string) (*TokenService, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(keyHex))
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for PASETO key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{symmetricKey: key, now: time.Now}, nil
}

// Issue creates a token binding sessionID to userID until expiresAt.
func (s *TokenService) Issue(sessionID, userID string, expiresAt time.Time) (string, error) {
	if sessionID == "" || userID == "" {
		return "", errors.New("session id and user id are required")
	}
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(userID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expiresAt)
	token.SetJti(sessionID)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify decrypts and validates a token. It returns ErrTokenExpired for an
// authentic token past its expiry and ErrTokenInvalid for anything else.
func (s *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	claims, err := s.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if now.Before(claims.NotBefore) {
		return nil, fmt.Errorf("%w: not yet valid", ErrTokenInvalid)
	}
	if !now.Before(claims.Expiration) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

// Decode authenticates a token and returns its claims without checking
// time bounds. Used by revocation, where an expired token must still be
// mapped to its session.
func (s *TokenService) Decode(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %w", ErrTokenInvalid, err)
	}
	if claims.SessionID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject or jti", ErrTokenInvalid)
	}

	return &claims, nil
}
