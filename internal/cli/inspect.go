package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"

	"github.com/NiGhtKinG17/LeafNote/internal/config"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
	"github.com/NiGhtKinG17/LeafNote/internal/store/backend"
)

// KeyInfo describes one badger key. Values are never printed.
type KeyInfo struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// InspectResult summarizes a badger store.
type InspectResult struct {
	Path   string         `json:"path"`
	Counts map[string]int `json:"counts"`
	Keys   []KeyInfo      `json:"keys,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		prefix string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the keys of a badger store",
		Long: `Open the badger store read-only and list its keys with value sizes.

Counts are grouped by the key family (user, note, session, and their
index entries). Values are not shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.Driver != config.DriverBadger {
				return WrapExitError(ExitCommandError, "inspect", fmt.Errorf("requires the badger driver, got %q", rootOpts.Driver))
			}
			result, err := inspectBadger(backend.BadgerPath(rootOpts.DataPath), prefix, limit)
			if err != nil {
				return err
			}
			return newPrinter(rootOpts, cmd.OutOrStdout()).result(result, func(w io.Writer) {
				fmt.Fprintf(w, "Store: %s\n", result.Path)
				for _, k := range result.Keys {
					fmt.Fprintf(w, "  %-60s %6d bytes\n", k.Key, k.Size)
				}
				for _, family := range sortedKeys(result.Counts) {
					fmt.Fprintf(w, "%s: %d\n", family, result.Counts[family])
				}
			})
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only keys with this prefix")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum keys to list (0 lists none)")

	return cmd
}

func inspectBadger(path, prefix string, limit int) (*InspectResult, error) {
	db, err := store.NewWithOptions(path, nil, store.Options{ReadOnly: true})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}
	defer db.Close()

	result := &InspectResult{Path: path, Counts: make(map[string]int)}

	err = db.DB().View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefix)})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			result.Counts[keyFamily(key)]++
			if len(result.Keys) < limit {
				result.Keys = append(result.Keys, KeyInfo{Key: key, Size: item.ValueSize()})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return result, nil
}

// keyFamily maps "note:idx:owner:usr-1:note-2" to "note:idx:owner" and
// "note:note-2" to "note".
func keyFamily(key string) string {
	parts := strings.SplitN(key, ":", 4)
	if len(parts) >= 3 && parts[1] == "idx" {
		return strings.Join(parts[:3], ":")
	}
	return parts[0]
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}
