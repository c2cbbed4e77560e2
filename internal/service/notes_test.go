package service

import (
	"context"
	"fmt"
	"testing"

	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNoteService_ComposeViewDelete(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.registerAndBind(t, "alice")

	note, err := env.notes.Compose(ctx, alice, ComposeRequest{Title: "  Groceries ", Content: "apples\n"})
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, note.OwnerID)
	assert.Equal(t, "Groceries", note.Title)
	assert.Equal(t, "apples", note.Content)

	got, err := env.notes.View(ctx, alice, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)

	require.NoError(t, env.notes.Delete(ctx, alice, note.ID))

	_, err = env.notes.View(ctx, alice, note.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, env.notes.Delete(ctx, alice, note.ID), domainerrors.ErrNotFound)
}

func TestNoteService_ComposeValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.registerAndBind(t, "alice")

	_, err := env.notes.Compose(ctx, alice, ComposeRequest{Title: "   ", Content: "C"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	_, err = env.notes.Compose(ctx, alice, ComposeRequest{Title: "T"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	notes, err := env.notes.ListOwn(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNoteService_Unauthenticated(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.notes.Compose(ctx, nil, ComposeRequest{Title: "T", Content: "C"})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	_, err = env.notes.ListOwn(ctx, nil)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	_, err = env.notes.View(ctx, nil, "note-1")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	assert.ErrorIs(t, env.notes.Delete(ctx, nil, "note-1"), domainerrors.ErrUnauthenticated)
	_, err = env.notes.Search(ctx, nil, "x", 0)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestNoteService_ForeignNoteIsNotOwner(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.registerAndBind(t, "alice")
	bob := env.registerAndBind(t, "bob")

	bobNote, err := env.notes.Compose(ctx, bob, ComposeRequest{Title: "Secret", Content: "bob's content"})
	require.NoError(t, err)

	got, err := env.notes.View(ctx, alice, bobNote.ID)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domainerrors.ErrNotOwner)
	assert.NotContains(t, err.Error(), "bob's content")

	assert.ErrorIs(t, env.notes.Delete(ctx, alice, bobNote.ID), domainerrors.ErrNotOwner)

	still, err := env.notes.View(ctx, bob, bobNote.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob's content", still.Content)
}

func TestNoteService_ListIsOwnerScoped(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.registerAndBind(t, "alice")
	bob := env.registerAndBind(t, "bob")

	rapid.Check(t, func(rt *rapid.T) {
		mine := rapid.IntRange(0, 3).Draw(rt, "mine")
		theirs := rapid.IntRange(0, 5).Draw(rt, "theirs")

		before, err := env.notes.ListOwn(ctx, alice)
		require.NoError(rt, err)

		for i := range mine {
			_, err := env.notes.Compose(ctx, alice, ComposeRequest{Title: fmt.Sprintf("a%d", i), Content: "x"})
			require.NoError(rt, err)
		}
		for i := range theirs {
			_, err := env.notes.Compose(ctx, bob, ComposeRequest{Title: fmt.Sprintf("b%d", i), Content: "y"})
			require.NoError(rt, err)
		}

		notes, err := env.notes.ListOwn(ctx, alice)
		require.NoError(rt, err)
		assert.Len(rt, notes, len(before)+mine)
		for _, n := range notes {
			assert.Equal(rt, alice.UserID, n.OwnerID)
		}
	})
}

func TestNoteService_Search(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.registerAndBind(t, "alice")
	bob := env.registerAndBind(t, "bob")

	mine, err := env.notes.Compose(ctx, alice, ComposeRequest{Title: "Holiday plans", Content: "visit the mountains"})
	require.NoError(t, err)
	_, err = env.notes.Compose(ctx, bob, ComposeRequest{Title: "Holiday", Content: "mountains too"})
	require.NoError(t, err)

	found, err := env.notes.Search(ctx, alice, "mountains", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, mine.ID, found[0].ID)

	require.NoError(t, env.notes.Delete(ctx, alice, mine.ID))
	found, err = env.notes.Search(ctx, alice, "mountains", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestNoteService_SyncIndex(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.registerAndBind(t, "alice")

	kept, err := env.notes.Compose(ctx, alice, ComposeRequest{Title: "Kept", Content: "haystack"})
	require.NoError(t, err)

	// Writes that bypass the index, as leafctl seed does.
	plain := NewNoteService(env.store, nil, nil)
	_, err = plain.Compose(ctx, alice, ComposeRequest{Title: "Backfilled", Content: "needle"})
	require.NoError(t, err)

	found, err := env.notes.Search(ctx, alice, "needle", 10)
	require.NoError(t, err)
	assert.Empty(t, found)

	n, err := env.notes.SyncIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	found, err = env.notes.Search(ctx, alice, "needle", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	n, err = env.notes.SyncIndex(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "index already in sync")

	// A note deleted offline leaves a stale document behind.
	require.NoError(t, plain.Delete(ctx, alice, kept.ID))

	n, err = env.notes.SyncIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found, err = env.notes.Search(ctx, alice, "haystack", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}
