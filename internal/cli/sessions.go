package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// NewSessionsCommand creates the sessions command group.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage login sessions",
	}
	cmd.AddCommand(newSessionsPruneCommand(rootOpts))
	cmd.AddCommand(newSessionsRevokeCommand(rootOpts))
	return cmd
}

func newSessionsPruneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openStore(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.DeleteExpiredSessions(ctx, time.Now())
			if err != nil {
				return fmt.Errorf("prune sessions: %w", err)
			}
			return newPrinter(rootOpts, cmd.OutOrStdout()).result(map[string]int{"deleted": n}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %d expired session(s)\n", n)
			})
		},
	}
}

func newSessionsRevokeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <username>",
		Short: "Revoke every session of a local user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openStore(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			user, err := s.GetUserByUsername(ctx, args[0])
			if err != nil {
				return fmt.Errorf("find user %q: %w", args[0], err)
			}
			n, err := s.DeleteUserSessions(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("revoke sessions: %w", err)
			}
			return newPrinter(rootOpts, cmd.OutOrStdout()).result(map[string]any{"user_id": user.ID, "revoked": n}, func(w io.Writer) {
				fmt.Fprintf(w, "Revoked %d session(s) for %s\n", n, user.Username)
			})
		},
	}
}
