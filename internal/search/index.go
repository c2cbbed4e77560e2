package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	"github.com/blevesearch/bleve/v2"
)

// Indexer is implemented by SearchIndex and Noop.
type Indexer interface {
	IndexNote(n *domain.Note) error
	DeleteNote(id string) error
	Search(ctx context.Context, ownerID string, params Params) (*Result, error)
	Reindex(notes []*domain.Note) error
	DocumentCount() (uint64, error)
	Rebuild() error
	Close() error
}

// SearchIndex wraps a Bleve index of notes.
//
// All methods are safe for concurrent use. The mutex keeps Rebuild from
// racing other operations.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

var _ Indexer = (*SearchIndex)(nil)

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage; empty keeps the index in memory
	Logger   *slog.Logger // Uses discard if nil
}

// mappingVersion is bumped whenever the mapping changes, forcing a rebuild on startup.
const mappingVersion = "1"

// NewSearchIndex creates or opens the note index.
// An index that fails to open or carries an old mapping version is recreated;
// callers repopulate it with Reindex.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.DataPath == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &SearchIndex{index: index, logger: logger}, nil
	}

	indexPath := filepath.Join(opts.DataPath, "notes.bleve")
	versionPath := filepath.Join(opts.DataPath, "notes.bleve.version")

	var index bleve.Index
	needsRebuild := false

	if _, statErr := os.Stat(indexPath); statErr == nil {
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, will rebuild", "new_version", mappingVersion)
			needsRebuild = true
		case string(existing) != mappingVersion:
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		default:
			var err error
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
				needsRebuild = true
			}
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
	}

	if index == nil {
		if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
		var err error
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &SearchIndex{index: index, path: indexPath, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexNote adds or replaces a note in the index.
func (s *SearchIndex) IndexNote(n *domain.Note) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := FromNote(n)
	return s.index.Index(doc.ID, doc.ToMap())
}

// DeleteNote removes a note from the index. Missing ids are ignored.
func (s *SearchIndex) DeleteNote(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// Reindex indexes notes in batches.
func (s *SearchIndex) Reindex(notes []*domain.Note) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(notes); i += batchSize {
		end := min(i+batchSize, len(notes))

		batch := s.index.NewBatch()
		for _, n := range notes[i:end] {
			doc := FromNote(n)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DocumentCount returns the number of indexed notes.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document and starts from an empty index.
// It takes the exclusive lock and blocks all other operations.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
