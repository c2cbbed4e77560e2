// Package backend opens the configured Store implementation.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/NiGhtKinG17/LeafNote/internal/config"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
	"github.com/NiGhtKinG17/LeafNote/internal/store/sqlstore"
)

// File names under the data path.
const (
	BadgerDir  = "db"
	SQLiteFile = "leafnote.sqlite"
)

// Open opens the backend selected by cfg.Driver and returns it with a
// human-readable location for logs.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.Store, string, error) {
	switch cfg.Driver {
	case config.DriverBadger, "":
		location := BadgerPath(cfg.DataPath)
		s, err := store.New(location, logger)
		if err != nil {
			return nil, "", err
		}
		return s, location, nil
	case config.DriverSQLite:
		location := filepath.Join(cfg.DataPath, SQLiteFile)
		s, err := sqlstore.Open(ctx, sqlstore.DialectSQLite, location, logger)
		if err != nil {
			return nil, "", err
		}
		return s, location, nil
	case config.DriverPostgres:
		s, err := sqlstore.Open(ctx, sqlstore.DialectPostgres, cfg.DSN, logger)
		if err != nil {
			return nil, "", err
		}
		return s, "postgres", nil
	default:
		return nil, "", fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// BadgerPath is the badger directory under dataPath.
func BadgerPath(dataPath string) string {
	return filepath.Join(dataPath, BadgerDir)
}
