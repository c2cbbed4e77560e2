package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
)

func TestAPI_NotesFlow(t *testing.T) {
	ts := setupTestServer(t, Options{})
	alice := ts.signupAPI(t, "alice", "pw1")
	auth := "Authorization: Bearer " + alice.Token

	resp := ts.api.Post("/api/v1/notes", auth, map[string]any{"title": "T", "content": "C"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decodeEnvelope[NoteResponse](t, resp.Body.Bytes())
	assert.True(t, created.Success)
	assert.Equal(t, EnvelopeVersion, created.V)
	assert.Equal(t, alice.UserID, created.Data.OwnerID)

	resp = ts.api.Get("/api/v1/notes", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeEnvelope[ListNotesResponse](t, resp.Body.Bytes())
	require.Len(t, list.Data.Notes, 1)
	assert.Equal(t, "T", list.Data.Notes[0].Title)
	assert.Equal(t, "C", list.Data.Notes[0].Content)

	resp = ts.api.Get("/api/v1/notes/"+created.Data.ID, auth)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/notes/search?q=T", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	found := decodeEnvelope[SearchNotesResponse](t, resp.Body.Bytes())
	assert.Len(t, found.Data.Notes, 1)

	resp = ts.api.Delete("/api/v1/notes/"+created.Data.ID, auth)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/notes/"+created.Data.ID, auth)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAPI_ForeignNoteMatchesMissing(t *testing.T) {
	ts := setupTestServer(t, Options{})
	alice := ts.signupAPI(t, "alice", "pw1")
	bob := ts.signupAPI(t, "bob", "pw2")

	resp := ts.api.Post("/api/v1/notes", "Authorization: Bearer "+alice.Token,
		map[string]any{"title": "Private", "content": "alice only"})
	require.Equal(t, http.StatusCreated, resp.Code)
	note := decodeEnvelope[NoteResponse](t, resp.Body.Bytes()).Data

	bobAuth := "Authorization: Bearer " + bob.Token
	foreign := ts.api.Get("/api/v1/notes/"+note.ID, bobAuth)
	missing := ts.api.Get("/api/v1/notes/note-missing", bobAuth)

	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, missing.Code, foreign.Code)
	assert.JSONEq(t, missing.Body.String(), foreign.Body.String())
	assert.NotContains(t, foreign.Body.String(), "alice only")

	resp = ts.api.Delete("/api/v1/notes/"+note.ID, bobAuth)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/notes", bobAuth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[ListNotesResponse](t, resp.Body.Bytes()).Data.Notes)
}

func TestAPI_LoginFailuresAreIdentical(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.signupAPI(t, "alice", "pw1")

	wrong := ts.api.Post("/api/v1/auth/login", map[string]any{"username": "alice", "password": "bad"})
	unknown := ts.api.Post("/api/v1/auth/login", map[string]any{"username": "nobody", "password": "bad"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())

	env := decodeEnvelope[any](t, wrong.Body.Bytes())
	assert.Equal(t, string(domainerrors.CodeBadCredential), env.Code)

	ok := ts.api.Post("/api/v1/auth/login", map[string]any{"username": "ALICE", "password": "pw1"})
	require.Equal(t, http.StatusOK, ok.Code, ok.Body.String())
	session := decodeEnvelope[SessionResponse](t, ok.Body.Bytes()).Data
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Contains(t, ok.Header().Get("Set-Cookie"), DefaultCookieName+"=")
}

func TestAPI_DuplicateSignup(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.signupAPI(t, "alice", "pw1")

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{"username": "alice", "password": "pw2"})
	assert.Equal(t, http.StatusConflict, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, string(domainerrors.CodeDuplicateUsername), env.Code)
}

func TestAPI_SignupValidation(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{"username": "", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"me", http.MethodGet, "/api/v1/me"},
		{"list", http.MethodGet, "/api/v1/notes"},
		{"get", http.MethodGet, "/api/v1/notes/note-1"},
		{"delete", http.MethodDelete, "/api/v1/notes/note-1"},
		{"search", http.MethodGet, "/api/v1/notes/search?q=x"},
		{"logout", http.MethodPost, "/api/v1/auth/logout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Do(tt.method, tt.path, "Authorization: Bearer not-a-token")
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
		})
	}
}

func TestAPI_MeAndLogout(t *testing.T) {
	ts := setupTestServer(t, Options{})
	alice := ts.signupAPI(t, "alice", "pw1")
	auth := "Authorization: Bearer " + alice.Token

	resp := ts.api.Get("/api/v1/me", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	me := decodeEnvelope[UserResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, alice.UserID, me.ID)
	assert.Equal(t, "alice", me.Username)
	assert.False(t, me.Federated)

	resp = ts.api.Post("/api/v1/auth/logout", auth)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/me", auth)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAPI_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/nothing-here")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, string(domainerrors.CodeNotFound), env.Code)
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	health := decodeEnvelope[HealthResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["store"].Status)

	require.NoError(t, ts.store.Close())
	resp = ts.api.Get("/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
