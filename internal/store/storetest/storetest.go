// Package storetest holds a behavioural test suite every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	"github.com/NiGhtKinG17/LeafNote/internal/id"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"CreateAndGetUser", testCreateAndGetUser},
		{"UsernameIsCaseInsensitive", testUsernameIsCaseInsensitive},
		{"DuplicateUsername", testDuplicateUsername},
		{"DuplicateFederatedID", testDuplicateFederatedID},
		{"ConcurrentFederatedCreate", testConcurrentFederatedCreate},
		{"UserWithoutCredential", testUserWithoutCredential},
		{"UpdateUserLinksFederatedID", testUpdateUserLinksFederatedID},
		{"NoteRequiresOwner", testNoteRequiresOwner},
		{"OwnerScopedNotes", testOwnerScopedNotes},
		{"DeleteOwnedNote", testDeleteOwnedNote},
		{"Sessions", testSessions},
		{"DeleteExpiredSessions", testDeleteExpiredSessions},
		{"DeleteUserSessions", testDeleteUserSessions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			require.NoError(t, s.Ping(context.Background()))
			tt.fn(t, s)
		})
	}
}

func newLocalUser(username string) *domain.User {
	return &domain.User{
		Record:       domain.Record{ID: id.MustGenerate(id.UserPrefix)},
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
	}
}

func newFederatedUser(fid string) *domain.User {
	return &domain.User{
		Record:      domain.Record{ID: id.MustGenerate(id.UserPrefix)},
		FederatedID: fid,
		DisplayName: "Fed User",
	}
}

func newNote(ownerID, title string) *domain.Note {
	return &domain.Note{
		Record:  domain.Record{ID: id.MustGenerate(id.NotePrefix)},
		OwnerID: ownerID,
		Title:   title,
		Content: "content of " + title,
	}
}

func testCreateAndGetUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newLocalUser("Alice")
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, "alice", u.UsernameKey)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Alice", got.Username)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)

	_, err = s.GetUser(ctx, "usr-missing")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUsernameIsCaseInsensitive(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newLocalUser("Alice")
	require.NoError(t, s.CreateUser(ctx, u))

	for _, name := range []string{"alice", "ALICE", " Alice "} {
		got, err := s.GetUserByUsername(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, u.ID, got.ID)
	}

	_, err := s.GetUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	_, err = s.GetUserByUsername(ctx, "")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func testDuplicateUsername(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newLocalUser("alice")))

	err := s.CreateUser(ctx, newLocalUser("ALICE"))
	assert.ErrorIs(t, err, store.ErrUsernameTaken)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func testDuplicateFederatedID(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newFederatedUser("google:1")))

	err := s.CreateUser(ctx, newFederatedUser("google:1"))
	assert.ErrorIs(t, err, store.ErrFederatedIDTaken)

	// Two federated users without usernames must not collide on the username index.
	require.NoError(t, s.CreateUser(ctx, newFederatedUser("google:2")))

	got, err := s.GetUserByFederatedID(ctx, "google:2")
	require.NoError(t, err)
	assert.Equal(t, "google:2", got.FederatedID)
}

func testConcurrentFederatedCreate(t *testing.T, s store.Store) {
	ctx := context.Background()
	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateUser(ctx, newFederatedUser("google:race"))
			switch {
			case err == nil:
				mu.Lock()
				successes++
				mu.Unlock()
			case errors.Is(err, store.ErrAlreadyExists), errors.Is(err, store.ErrConflict):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func testUserWithoutCredential(t *testing.T, s store.Store) {
	u := &domain.User{Record: domain.Record{ID: id.MustGenerate(id.UserPrefix)}, Username: "nobody"}
	assert.ErrorIs(t, s.CreateUser(context.Background(), u), domain.ErrNoCredential)
}

func testUpdateUserLinksFederatedID(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newLocalUser("alice")
	require.NoError(t, s.CreateUser(ctx, u))

	u.FederatedID = "google:alice"
	u.UpdatedAt = time.Time{}
	require.NoError(t, s.UpdateUser(ctx, u))
	assert.WithinDuration(t, time.Now(), u.UpdatedAt, time.Minute)

	got, err := s.GetUserByFederatedID(ctx, "google:alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.WithinDuration(t, time.Now(), got.UpdatedAt, time.Minute)

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	missing := newLocalUser("ghost")
	assert.ErrorIs(t, s.UpdateUser(ctx, missing), store.ErrUserNotFound)
}

func testNoteRequiresOwner(t *testing.T, s store.Store) {
	ctx := context.Background()
	assert.ErrorIs(t, s.CreateNote(ctx, newNote("usr-ghost", "T")), store.ErrUserNotFound)
	assert.ErrorIs(t, s.CreateNote(ctx, &domain.Note{Record: domain.Record{ID: "note-x"}, OwnerID: "usr-x"}), domain.ErrNoteTitleRequired)
}

func testOwnerScopedNotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := newLocalUser("alice")
	bob := newLocalUser("bob")
	require.NoError(t, s.CreateUser(ctx, alice))
	require.NoError(t, s.CreateUser(ctx, bob))

	base := time.Now().Add(-time.Hour)
	var aliceNotes []*domain.Note
	for i := range 3 {
		n := newNote(alice.ID, fmt.Sprintf("alice-%d", i))
		n.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		n.UpdatedAt = n.CreatedAt
		require.NoError(t, s.CreateNote(ctx, n))
		aliceNotes = append(aliceNotes, n)
	}
	for i := range 5 {
		require.NoError(t, s.CreateNote(ctx, newNote(bob.ID, fmt.Sprintf("bob-%d", i))))
	}

	listed, err := s.ListNotesByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, n := range listed {
		assert.Equal(t, alice.ID, n.OwnerID)
		assert.Equal(t, aliceNotes[i].ID, n.ID, "notes are listed oldest first")
	}

	empty, err := s.ListNotesByOwner(ctx, "usr-nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)

	got, err := s.GetOwnedNote(ctx, aliceNotes[0].ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice-0", got.Title)

	_, err = s.GetOwnedNote(ctx, aliceNotes[0].ID, bob.ID)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)

	raw, err := s.GetNote(ctx, aliceNotes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, raw.OwnerID)
}

func testDeleteOwnedNote(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := newLocalUser("alice")
	bob := newLocalUser("bob")
	require.NoError(t, s.CreateUser(ctx, alice))
	require.NoError(t, s.CreateUser(ctx, bob))

	n := newNote(alice.ID, "T")
	require.NoError(t, s.CreateNote(ctx, n))

	assert.ErrorIs(t, s.DeleteOwnedNote(ctx, n.ID, bob.ID), store.ErrNoteNotFound)
	_, err := s.GetNote(ctx, n.ID)
	require.NoError(t, err, "bob must not be able to delete alice's note")

	require.NoError(t, s.DeleteOwnedNote(ctx, n.ID, alice.ID))
	_, err = s.GetNote(ctx, n.ID)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)

	assert.ErrorIs(t, s.DeleteOwnedNote(ctx, n.ID, alice.ID), store.ErrNoteNotFound)

	listed, err := s.ListNotesByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func testSessions(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now()
	session := &domain.Session{
		ID:        id.MustGenerate(id.SessionPrefix),
		UserID:    "usr-1",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
		IPAddress: "127.0.0.1",
		UserAgent: "test",
	}
	require.NoError(t, s.CreateSession(ctx, session))
	assert.ErrorIs(t, s.CreateSession(ctx, session), store.ErrAlreadyExists)

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", got.UserID)
	assert.Equal(t, "127.0.0.1", got.IPAddress)

	require.NoError(t, s.DeleteSession(ctx, session.ID))
	_, err = s.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	require.NoError(t, s.DeleteSession(ctx, session.ID), "delete is idempotent")

	expired := &domain.Session{
		ID:        id.MustGenerate(id.SessionPrefix),
		UserID:    "usr-1",
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	require.NoError(t, s.CreateSession(ctx, expired))
	_, err = s.GetSession(ctx, expired.ID)
	assert.ErrorIs(t, err, store.ErrSessionExpired)
}

func testDeleteExpiredSessions(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now()
	for i := range 4 {
		expires := now.Add(time.Hour)
		if i%2 == 0 {
			expires = now.Add(-time.Minute)
		}
		require.NoError(t, s.CreateSession(ctx, &domain.Session{
			ID:        fmt.Sprintf("sess-%d", i),
			UserID:    "usr-1",
			CreatedAt: now.Add(-time.Hour),
			ExpiresAt: expires,
		}))
	}

	n, err := s.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.GetSession(ctx, "sess-1")
	assert.NoError(t, err)
	_, err = s.GetSession(ctx, "sess-0")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func testDeleteUserSessions(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now()
	for i, uid := range []string{"usr-1", "usr-1", "usr-10"} {
		require.NoError(t, s.CreateSession(ctx, &domain.Session{
			ID:        fmt.Sprintf("sess-%d", i),
			UserID:    uid,
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		}))
	}

	n, err := s.DeleteUserSessions(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.GetSession(ctx, "sess-2")
	assert.NoError(t, err, "sessions of usr-10 survive")
}
