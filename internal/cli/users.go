package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/NiGhtKinG17/LeafNote/internal/auth"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

// Test seams for terminal input.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// UserInfo is the listed view of a user.
type UserInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FederatedID string `json:"federated_id,omitempty"`
}

// NewUsersCommand creates the users command group.
func NewUsersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUsersAddCommand(rootOpts))
	cmd.AddCommand(newUsersListCommand(rootOpts))
	return cmd
}

func newUsersAddCommand(rootOpts *RootOptions) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a local account",
		Long: `Create a local account. The password is prompted for on a terminal,
or read from the first line of stdin with --password-stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd, passwordStdin)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openStore(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			identity := service.NewIdentityService(s, auth.NewHasher(auth.DefaultArgon2Params), nil)
			userID, err := identity.RegisterLocal(ctx, service.RegisterRequest{Username: args[0], Password: password})
			if err != nil {
				return fmt.Errorf("add user: %w", err)
			}

			return newPrinter(rootOpts, cmd.OutOrStdout()).result(map[string]string{"id": userID}, func(w io.Writer) {
				fmt.Fprintf(w, "Created %s (%s)\n", args[0], userID)
			})
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	return cmd
}

func newUsersListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openStore(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			users, err := s.ListUsers(ctx)
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}

			infos := make([]UserInfo, 0, len(users))
			for _, u := range users {
				infos = append(infos, UserInfo{ID: u.ID, Name: u.Name(), FederatedID: u.FederatedID})
			}

			return newPrinter(rootOpts, cmd.OutOrStdout()).result(infos, func(w io.Writer) {
				for _, u := range infos {
					kind := "local"
					if u.FederatedID != "" {
						kind = u.FederatedID
					}
					fmt.Fprintf(w, "%-24s %-24s %s\n", u.ID, u.Name, kind)
				}
				fmt.Fprintf(w, "%d user(s)\n", len(infos))
			})
		},
	}
}

// promptPassword reads a password from the terminal, or from stdin when fromStdin is set.
func promptPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return "", WrapExitError(ExitCommandError, "read password", errors.New("empty password"))
		}
		return password, nil
	}

	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", WrapExitError(ExitCommandError, "read password", errors.New("stdin is not a terminal; use --password-stdin"))
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Confirm: ")
	second, err := readPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", WrapExitError(ExitCommandError, "read password", errors.New("passwords do not match"))
	}
	return string(first), nil
}
