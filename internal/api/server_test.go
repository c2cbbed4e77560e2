package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/NiGhtKinG17/LeafNote/internal/auth"
	"github.com/NiGhtKinG17/LeafNote/internal/oauth"
	"github.com/NiGhtKinG17/LeafNote/internal/search"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
)

const testKeyHex = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

// testServer wraps the server with direct store access.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store *store.Badger
}

// testEnvelope mirrors the response envelope for decoding.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	return setupTestServerWithLogger(t, opts, nil)
}

func setupTestServerWithLogger(t *testing.T, opts Options, logger *slog.Logger) *testServer {
	t.Helper()

	st, err := store.NewWithOptions("", nil, store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewTokenService(testKeyHex)
	require.NoError(t, err)

	services := &Services{
		Identity: service.NewIdentityService(st, auth.NewHasher(auth.FastArgon2Params), nil),
		Sessions: service.NewSessionBinder(st, tokens, time.Hour, nil),
		Notes:    service.NewNoteService(st, index, nil),
	}

	opts.SearchEnabled = true
	if opts.CSRFKey == "" {
		opts.CSRFKey = "test-csrf-key"
	}
	srv := NewServer(st, services, opts, logger)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.api),
		store:  st,
	}
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

// signupAPI registers a user over the JSON API and returns its token.
func (ts *testServer) signupAPI(t *testing.T, username, password string) SessionResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "signup failed: %s", resp.Body.String())
	return decodeEnvelope[SessionResponse](t, resp.Body.Bytes()).Data
}

// fakeProvider stands in for Google.
type fakeProvider struct {
	subject string
	name    string
}

var _ oauth.Provider = fakeProvider{}

func (fakeProvider) Name() string { return "google" }

func (fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.test/auth?state=" + url.QueryEscape(state)
}

func (f fakeProvider) Exchange(_ context.Context, code string) (*oauth.Profile, error) {
	if code != "good-code" {
		return nil, errors.New("invalid_grant")
	}
	return &oauth.Profile{Subject: f.subject, Name: f.name}, nil
}

// browser drives the HTML pages with a cookie jar and no redirect following.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, ts *testServer) *browser {
	t.Helper()

	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{
		t:    t,
		base: srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// csrfFrom extracts the form token from a rendered page.
func csrfFrom(t *testing.T, body string) string {
	t.Helper()
	m := csrfPattern.FindStringSubmatch(body)
	require.Len(t, m, 2, "no csrf token in page")
	return m[1]
}
