package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
)

func (ts *testServer) getWithCookie(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_ClearsDeadCookie(t *testing.T) {
	ts := setupTestServer(t, Options{})

	rec := ts.getWithCookie("/notehome", "not-a-token")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), DefaultCookieName+"=;")
}

func TestAuthenticate_KeepsCookieDuringOutage(t *testing.T) {
	ts := setupTestServer(t, Options{})
	session := ts.signupAPI(t, "alice", "pw1")

	rec := ts.getWithCookie("/notehome", session.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, ts.store.Close())

	rec = ts.getWithCookie("/notehome", session.Token)
	assert.Equal(t, http.StatusFound, rec.Code, "an unresolved session is anonymous")
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}

func TestSessionIsDead(t *testing.T) {
	outage := store.Unavailable("get", fmt.Errorf("disk gone"))

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "invalid token", err: domainerrors.Unauthenticated("invalid session"), want: true},
		{name: "expired", err: domainerrors.Expired("session expired"), want: true},
		{name: "store outage", err: domainerrors.Unauthenticated("session unavailable").WithCause(outage), want: false},
		{name: "cancelled", err: domainerrors.Unauthenticated("session unavailable").WithCause(context.Canceled), want: false},
		{name: "other code", err: domainerrors.Unavailable("store"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sessionIsDead(tt.err))
		})
	}
}
