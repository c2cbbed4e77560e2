// Package oauth implements the federated login providers.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUserInfoURL is the OpenID Connect userinfo endpoint.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// maxUserInfoSize bounds the userinfo response body.
const maxUserInfoSize = 1 << 20

// ErrNoSubject is returned when the provider profile lacks a subject.
var ErrNoSubject = errors.New("provider profile has no subject")

// Profile is the identity a provider vouches for.
type Profile struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// Provider runs the authorization code flow against one identity provider.
type Provider interface {
	// Name is the provider qualifier used in federated ids.
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// GoogleOptions configures a Google provider.
type GoogleOptions struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string

	// Endpoint and UserInfoURL default to Google's. Tests point them at a
	// local server.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// Google authenticates users with their Google account.
type Google struct {
	config      *oauth2.Config
	userInfoURL string
}

var _ Provider = (*Google)(nil)

// NewGoogle creates a Google provider requesting the openid and profile scopes.
func NewGoogle(opts GoogleOptions) *Google {
	endpoint := opts.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := opts.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = GoogleUserInfoURL
	}

	return &Google{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.CallbackURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: userInfoURL,
	}
}

// Name implements Provider.
func (g *Google) Name() string {
	return "google"
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades an authorization code for the user's profile.
func (g *Google) Exchange(ctx context.Context, code string) (*Profile, error) {
	if code == "" {
		return nil, errors.New("authorization code is required")
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoSize)).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.Subject == "" {
		return nil, ErrNoSubject
	}

	return &profile, nil
}
