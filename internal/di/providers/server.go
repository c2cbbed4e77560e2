package providers

import (
	"context"
	"encoding/hex"
	"errors"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/NiGhtKinG17/LeafNote/internal/api"
	"github.com/NiGhtKinG17/LeafNote/internal/auth"
	"github.com/NiGhtKinG17/LeafNote/internal/config"
	"github.com/NiGhtKinG17/LeafNote/internal/logger"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	Handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAPIServer provides the router with every route mounted.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	authKey := do.MustInvoke[AuthKey](i)
	google := do.MustInvoke[*GoogleProviderHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Identity: do.MustInvoke[*service.IdentityService](i),
		Sessions: do.MustInvoke[*service.SessionBinder](i),
		Notes:    do.MustInvoke[*service.NoteService](i),
	}

	csrfKey, err := auth.SubKey(authKey, auth.CSRFKeyPurpose)
	if err != nil {
		return nil, err
	}

	return api.NewServer(storeHandle, services, api.Options{
		CookieName:    cfg.Auth.CookieName,
		CookieSecure:  cfg.Auth.CookieSecure,
		CSRFKey:       hex.EncodeToString(csrfKey),
		CORSOrigins:   cfg.Server.CORSOrigins,
		MaxUpload:     cfg.Server.MaxUpload,
		Google:        google.Provider,
		SearchEnabled: indexHandle.Enabled,
	}, log.Logger), nil
}

// ProvideHTTPServer binds the listener and starts serving in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	handler := do.MustInvoke[*api.Server](i)
	log := do.MustInvoke[*logger.Logger](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", ln.Addr().String())

	return &HTTPServerHandle{Server: srv, Handler: handler}, nil
}
