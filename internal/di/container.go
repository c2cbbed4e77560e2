// Package di provides dependency injection configuration for the LeafNote server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/NiGhtKinG17/LeafNote/internal/api"
	"github.com/NiGhtKinG17/LeafNote/internal/auth"
	"github.com/NiGhtKinG17/LeafNote/internal/config"
	"github.com/NiGhtKinG17/LeafNote/internal/di/providers"
	"github.com/NiGhtKinG17/LeafNote/internal/logger"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideHasher)
	do.Provide(injector, providers.ProvideGoogleProvider)

	// Business services
	do.Provide(injector, providers.ProvideIdentityService)
	do.Provide(injector, providers.ProvideSessionBinder)
	do.Provide(injector, providers.ProvideNoteService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the server and workers.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.IdentityService](injector)
	_ = do.MustInvoke[*service.SessionBinder](injector)
	_ = do.MustInvoke[*service.NoteService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*api.Server](injector)
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
