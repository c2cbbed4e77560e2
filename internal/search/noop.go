package search

import (
	"context"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
)

// Noop is used when search is disabled. Every search returns no hits.
type Noop struct{}

var _ Indexer = Noop{}

// IndexNote does nothing.
func (Noop) IndexNote(*domain.Note) error { return nil }

// DeleteNote does nothing.
func (Noop) DeleteNote(string) error { return nil }

// Search returns an empty result.
func (Noop) Search(_ context.Context, _ string, params Params) (*Result, error) {
	return &Result{Query: params.Query, Hits: []Hit{}}, nil
}

// Reindex does nothing.
func (Noop) Reindex([]*domain.Note) error { return nil }

// DocumentCount always reports an empty index.
func (Noop) DocumentCount() (uint64, error) { return 0, nil }

// Rebuild does nothing.
func (Noop) Rebuild() error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }
