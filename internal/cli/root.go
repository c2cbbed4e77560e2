// Package cli implements leafctl, the LeafNote maintenance tool.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/NiGhtKinG17/LeafNote/internal/config"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
	"github.com/NiGhtKinG17/LeafNote/internal/store/backend"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Driver   string
	DataPath string
	DSN      string
	Format   string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for leafctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "leafctl",
		Short: "leafctl - LeafNote maintenance",
		Long:  "Inspect and maintain a LeafNote store: users, sessions and demo data.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Driver, "store", envOr("STORE_DRIVER", config.DriverBadger), "store driver (badger|sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&opts.DataPath, "data", envOr("DATA_PATH", defaultDataPath()), "data directory")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", os.Getenv("DATABASE_URL"), "postgres connection string")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewUsersCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// openStore opens the store the global flags point at.
func openStore(ctx context.Context, opts *RootOptions) (store.Store, error) {
	s, _, err := backend.Open(ctx, config.StoreConfig{
		Driver:   opts.Driver,
		DataPath: opts.DataPath,
		DSN:      opts.DSN,
	}, nil)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}
	return s, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".leafnote"
	}
	return filepath.Join(home, ".leafnote")
}
