package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/NiGhtKinG17/LeafNote/internal/config"
	"github.com/NiGhtKinG17/LeafNote/internal/logger"
	"github.com/NiGhtKinG17/LeafNote/internal/search"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

// SearchIndexHandle wraps the note index with shutdown capability.
// When search is disabled Index is a search.Noop.
type SearchIndexHandle struct {
	search.Indexer
	Enabled bool
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// DocumentCount returns the number of indexed notes, or zero when disabled.
func (h *SearchIndexHandle) DocumentCount() uint64 {
	count, _ := h.Indexer.DocumentCount()
	return count
}

// ProvideSearchIndex provides the Bleve note index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Search disabled")
		return &SearchIndexHandle{Indexer: search.Noop{}}, nil
	}

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(cfg.Store.DataPath, "search"),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	handle := &SearchIndexHandle{Indexer: index, Enabled: true}
	log.Info("Search index initialized", "documents", handle.DocumentCount())

	return handle, nil
}

// TriggerSearchReindexIfNeeded brings the index in line with the store in
// the background. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	notes := do.MustInvoke[*service.NoteService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !indexHandle.Enabled {
		return
	}

	go func() {
		count, err := notes.SyncIndex(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		if count > 0 {
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
