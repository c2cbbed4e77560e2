package providers

import (
	"encoding/hex"

	"github.com/samber/do/v2"

	"github.com/NiGhtKinG17/LeafNote/internal/auth"
	"github.com/NiGhtKinG17/LeafNote/internal/config"
	"github.com/NiGhtKinG17/LeafNote/internal/logger"
	"github.com/NiGhtKinG17/LeafNote/internal/oauth"
)

// AuthKey wraps the session token key bytes.
type AuthKey []byte

// Hex returns the key in the form TokenService expects.
func (k AuthKey) Hex() string {
	return hex.EncodeToString(k)
}

// ProvideAuthKey derives the key from SESSION_SECRET, or loads or generates the key file.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.ResolveKey(cfg.Auth.SessionSecret, cfg.Auth.KeyPath)
	if err != nil {
		return nil, err
	}

	source := "key_file"
	if cfg.Auth.SessionSecret != "" {
		source = "session_secret"
	}
	log.Info("Session key loaded",
		"source", source,
		"session_duration", cfg.Auth.SessionDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	authKey := do.MustInvoke[AuthKey](i)
	return auth.NewTokenService(authKey.Hex())
}

// ProvideHasher provides the password hasher.
func ProvideHasher(i do.Injector) (*auth.Hasher, error) {
	return auth.NewHasher(auth.DefaultArgon2Params), nil
}

// GoogleProviderHandle holds the Google login provider, nil when not configured.
type GoogleProviderHandle struct {
	Provider oauth.Provider
}

// ProvideGoogleProvider provides the Google OAuth2 provider when credentials are set.
func ProvideGoogleProvider(i do.Injector) (*GoogleProviderHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Google.Enabled() {
		log.Info("Google login disabled")
		return &GoogleProviderHandle{}, nil
	}

	provider := oauth.NewGoogle(oauth.GoogleOptions{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		CallbackURL:  cfg.Google.CallbackURL,
	})
	log.Info("Google login enabled", "callback_url", cfg.Google.CallbackURL)

	return &GoogleProviderHandle{Provider: provider}, nil
}
