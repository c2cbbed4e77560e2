package providers

import (
	"github.com/samber/do/v2"

	"github.com/NiGhtKinG17/LeafNote/internal/auth"
	"github.com/NiGhtKinG17/LeafNote/internal/config"
	"github.com/NiGhtKinG17/LeafNote/internal/logger"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

// ProvideIdentityService provides the identity resolver.
func ProvideIdentityService(i do.Injector) (*service.IdentityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	hasher := do.MustInvoke[*auth.Hasher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIdentityService(storeHandle.Store, hasher, log.Logger), nil
}

// ProvideSessionBinder provides the session binder.
func ProvideSessionBinder(i do.Injector) (*service.SessionBinder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionBinder(storeHandle.Store, tokens, cfg.Auth.SessionDuration, log.Logger), nil
}

// ProvideNoteService provides the note service.
func ProvideNoteService(i do.Injector) (*service.NoteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNoteService(storeHandle.Store, indexHandle.Indexer, log.Logger), nil
}
