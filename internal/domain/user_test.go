package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr error
	}{
		{"local", User{Username: "alice", PasswordHash: "$argon2id$..."}, nil},
		{"federated", User{FederatedID: "google:123"}, nil},
		{"linked", User{Username: "alice", PasswordHash: "h", FederatedID: "google:123"}, nil},
		{"neither", User{Username: "alice"}, ErrNoCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.user.Validate())
		})
	}
}

func TestUser_Name(t *testing.T) {
	assert.Equal(t, "Alice A.", (&User{DisplayName: "Alice A.", Username: "alice"}).Name())
	assert.Equal(t, "alice", (&User{Username: "alice"}).Name())
	assert.Equal(t, "Anonymous", (&User{FederatedID: "google:1"}).Name())
}

func TestFederatedID_RoundTrip(t *testing.T) {
	fid := FederatedID(ProviderGoogle, "10769150350006150715113082367")
	assert.Equal(t, "google:10769150350006150715113082367", fid)

	provider, subject, ok := SplitFederatedID(fid)
	assert.True(t, ok)
	assert.Equal(t, ProviderGoogle, provider)
	assert.Equal(t, "10769150350006150715113082367", subject)

	_, _, ok = SplitFederatedID("google:")
	assert.False(t, ok)
	_, _, ok = SplitFederatedID("nocolon")
	assert.False(t, ok)
}

func TestSession_IsExpiredAt(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, s.IsExpiredAt(now))
	assert.True(t, s.IsExpiredAt(now.Add(time.Minute)))
	assert.True(t, s.IsExpiredAt(now.Add(time.Hour)))
}

func TestNote_Validate(t *testing.T) {
	assert.NoError(t, (&Note{OwnerID: "usr-1", Title: "T", Content: "C"}).Validate())
	assert.Equal(t, ErrNoteOwnerRequired, (&Note{Title: "T", Content: "C"}).Validate())
	assert.Equal(t, ErrNoteTitleRequired, (&Note{OwnerID: "usr-1", Content: "C"}).Validate())
	assert.Equal(t, ErrNoteContentRequired, (&Note{OwnerID: "usr-1", Title: "T"}).Validate())
}

func TestNote_OwnedBy(t *testing.T) {
	n := &Note{OwnerID: "usr-a"}
	assert.True(t, n.OwnedBy("usr-a"))
	assert.False(t, n.OwnedBy("usr-b"))
	assert.False(t, n.OwnedBy(""))
}

func TestNote_Excerpt(t *testing.T) {
	n := &Note{Content: "héllo world"}
	assert.Equal(t, "héllo world", n.Excerpt(50))
	assert.Equal(t, "héllo…", n.Excerpt(5))
}
