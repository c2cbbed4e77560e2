package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessLog_OmitsQueryString(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	ts := setupTestServerWithLogger(t, Options{Google: fakeProvider{subject: "1234", name: "Alice G"}}, log)

	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google", http.NoBody))
	require.Equal(t, http.StatusFound, rec.Code)
	redirect, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := redirect.Query().Get("state")

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=good-code&state="+url.QueryEscape(state), http.NoBody)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	out := buf.String()
	assert.Contains(t, out, `"path":"/auth/google/callback"`)
	assert.Contains(t, out, `"status":303`)
	assert.NotContains(t, out, "good-code")
	assert.NotContains(t, out, state)
}

func TestAccessLog_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ts := setupTestServerWithLogger(t, Options{}, log)

	ts.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/login", http.NoBody))
	assert.NotContains(t, buf.String(), `"path":"/login"`)

	ts.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no-such-page", http.NoBody))
	assert.Contains(t, buf.String(), `"path":"/no-such-page"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}
