package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/NiGhtKinG17/LeafNote/internal/config"
	"github.com/NiGhtKinG17/LeafNote/internal/logger"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
	"github.com/NiGhtKinG17/LeafNote/internal/store/backend"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the backend selected by the store driver.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s, location, err := backend.Open(ctx, cfg.Store, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "driver", cfg.Store.Driver, "location", location)

	return &StoreHandle{Store: s}, nil
}
