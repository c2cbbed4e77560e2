package search

import (
	"context"
	"testing"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestIndex creates an in-memory search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func makeNote(id, owner, title, content string, created time.Time) *domain.Note {
	return &domain.Note{
		Record:  domain.Record{ID: id, CreatedAt: created, UpdatedAt: created},
		OwnerID: owner,
		Title:   title,
		Content: content,
	}
}

func hitIDs(r *Result) []string {
	ids := make([]string, 0, len(r.Hits))
	for _, h := range r.Hits {
		ids = append(ids, h.ID)
	}
	return ids
}

func TestNewSearchIndex_Empty(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_ScopedToOwner(t *testing.T) {
	index := setupTestIndex(t)
	now := time.Now()

	require.NoError(t, index.IndexNote(makeNote("note-1", "usr-alice", "Groceries", "buy apples and pears", now)))
	require.NoError(t, index.IndexNote(makeNote("note-2", "usr-bob", "Groceries", "buy apples", now)))

	res, err := index.Search(context.Background(), "usr-alice", Params{Query: "apples"})
	require.NoError(t, err)
	assert.Equal(t, []string{"note-1"}, hitIDs(res))

	res, err = index.Search(context.Background(), "usr-carol", Params{Query: "apples"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)

	res, err = index.Search(context.Background(), "", Params{Query: "apples"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestSearch_Stemming(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexNote(makeNote("note-1", "usr-1", "Running log", "ran five kilometres", time.Now())))

	res, err := index.Search(context.Background(), "usr-1", Params{Query: "run"})
	require.NoError(t, err)
	assert.Equal(t, []string{"note-1"}, hitIDs(res))
}

func TestSearch_TitleRanksAboveContent(t *testing.T) {
	index := setupTestIndex(t)
	now := time.Now()
	require.NoError(t, index.IndexNote(makeNote("note-body", "usr-1", "Misc", "a note about budget planning", now)))
	require.NoError(t, index.IndexNote(makeNote("note-title", "usr-1", "Budget", "numbers", now)))

	res, err := index.Search(context.Background(), "usr-1", Params{Query: "budget"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "note-title", res.Hits[0].ID)
	assert.Equal(t, "Budget", res.Hits[0].Title)
}

func TestSearch_EmptyQueryListsNewestFirst(t *testing.T) {
	index := setupTestIndex(t)
	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"note-a", "note-b", "note-c"} {
		require.NoError(t, index.IndexNote(makeNote(id, "usr-1", "T", "C", base.Add(time.Duration(i)*time.Minute))))
	}

	res, err := index.Search(context.Background(), "usr-1", Params{})
	require.NoError(t, err)
	assert.Equal(t, []string{"note-c", "note-b", "note-a"}, hitIDs(res))
	assert.Equal(t, uint64(3), res.Total)
}

func TestSearch_Pagination(t *testing.T) {
	index := setupTestIndex(t)
	base := time.Now()
	for i, id := range []string{"note-a", "note-b", "note-c"} {
		require.NoError(t, index.IndexNote(makeNote(id, "usr-1", "T", "C", base.Add(time.Duration(i)*time.Second))))
	}

	res, err := index.Search(context.Background(), "usr-1", Params{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"note-b", "note-a"}, hitIDs(res))
}

func TestDeleteNote(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexNote(makeNote("note-1", "usr-1", "Hello", "world", time.Now())))
	require.NoError(t, index.DeleteNote("note-1"))
	require.NoError(t, index.DeleteNote("note-missing"))

	res, err := index.Search(context.Background(), "usr-1", Params{Query: "hello"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestReindexAndRebuild(t *testing.T) {
	index := setupTestIndex(t)
	now := time.Now()
	notes := []*domain.Note{
		makeNote("note-1", "usr-1", "One", "x", now),
		makeNote("note-2", "usr-1", "Two", "y", now),
	}
	require.NoError(t, index.Reindex(notes))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	require.NoError(t, index.Rebuild())
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewSearchIndex_OnDiskReopen(t *testing.T) {
	dir := t.TempDir()

	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexNote(makeNote("note-1", "usr-1", "Persisted", "text", time.Now())))
	require.NoError(t, index.Close())

	index, err = NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer index.Close()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestNoop(t *testing.T) {
	var idx Indexer = Noop{}
	require.NoError(t, idx.IndexNote(&domain.Note{}))
	res, err := idx.Search(context.Background(), "usr-1", Params{Query: "q"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}
