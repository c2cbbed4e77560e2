package di

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiGhtKinG17/LeafNote/internal/config"
	"github.com/NiGhtKinG17/LeafNote/internal/di/providers"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Logger: config.LoggerConfig{Level: "error"},
		Server: config.ServerConfig{
			Port:         "0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
			MaxUpload:    1 << 20,
		},
		Store: config.StoreConfig{Driver: driver, DataPath: dir},
		Auth: config.AuthConfig{
			KeyPath:         filepath.Join(dir, "auth.key"),
			SessionDuration: time.Hour,
			CookieName:      "leafnote_session",
		},
		Search: config.SearchConfig{Enabled: true},
	}
}

func TestBootstrap(t *testing.T) {
	for _, driver := range []string{config.DriverBadger, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			injector := NewContainer()
			do.OverrideValue(injector, testConfig(t, driver))

			require.NoError(t, Bootstrap(injector))

			httpHandle := do.MustInvoke[*providers.HTTPServerHandle](injector)
			w := httptest.NewRecorder()
			httpHandle.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

			google := do.MustInvoke[*providers.GoogleProviderHandle](injector)
			assert.Nil(t, google.Provider)

			_ = injector.Shutdown()
		})
	}
}

func TestBootstrap_KeyFileReused(t *testing.T) {
	cfg := testConfig(t, config.DriverBadger)

	first := NewContainer()
	do.OverrideValue(first, cfg)
	key1 := do.MustInvoke[providers.AuthKey](first)
	_ = first.Shutdown()

	second := NewContainer()
	do.OverrideValue(second, cfg)
	key2 := do.MustInvoke[providers.AuthKey](second)
	_ = second.Shutdown()

	assert.Equal(t, key1, key2)
	assert.FileExists(t, cfg.Auth.KeyPath)
}

func TestBootstrap_SearchDisabled(t *testing.T) {
	cfg := testConfig(t, config.DriverBadger)
	cfg.Search.Enabled = false

	injector := NewContainer()
	do.OverrideValue(injector, cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	handle := do.MustInvoke[*providers.SearchIndexHandle](injector)
	assert.False(t, handle.Enabled)
	assert.Zero(t, handle.DocumentCount())
}

func TestBootstrap_GoogleEnabled(t *testing.T) {
	cfg := testConfig(t, config.DriverBadger)
	cfg.Google = config.GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		CallbackURL:  "http://localhost:3000/auth/google/callback",
	}

	injector := NewContainer()
	do.OverrideValue(injector, cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	google := do.MustInvoke[*providers.GoogleProviderHandle](injector)
	require.NotNil(t, google.Provider)
	assert.Equal(t, "google", google.Provider.Name())
}
