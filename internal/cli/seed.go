package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/NiGhtKinG17/LeafNote/internal/auth"
	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

// SeedResult reports what seed created.
type SeedResult struct {
	Users int `json:"users"`
	Notes int `json:"notes"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		users    int
		notes    int
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo users and notes",
		Long: `Create demo1..demoN with the given password and a few notes each.
Existing demo users are reused. Passwords are hashed with cheap parameters;
demo accounts are for local development only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openStore(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			identity := service.NewIdentityService(s, auth.NewHasher(auth.FastArgon2Params), nil)
			noteService := service.NewNoteService(s, nil, nil)

			var result SeedResult
			for i := 1; i <= users; i++ {
				username := fmt.Sprintf("demo%d", i)
				userID, err := identity.RegisterLocal(ctx, service.RegisterRequest{Username: username, Password: password})
				switch {
				case domainerrors.CodeOf(err) == domainerrors.CodeDuplicateUsername:
					userID, err = identity.ResolveLocal(ctx, username, password)
					if err != nil {
						return fmt.Errorf("reuse %s: %w", username, err)
					}
				case err != nil:
					return fmt.Errorf("create %s: %w", username, err)
				default:
					result.Users++
				}

				caller := &service.Identity{UserID: userID}
				for j := 1; j <= notes; j++ {
					_, err := noteService.Compose(ctx, caller, service.ComposeRequest{
						Title:   fmt.Sprintf("Note %d of %s", j, username),
						Content: fmt.Sprintf("Demo content %d for %s.", j, username),
					})
					if err != nil {
						return fmt.Errorf("compose for %s: %w", username, err)
					}
					result.Notes++
				}
			}

			return newPrinter(rootOpts, cmd.OutOrStdout()).result(result, func(w io.Writer) {
				fmt.Fprintf(w, "Created %d user(s) and %d note(s)\n", result.Users, result.Notes)
			})
		},
	}

	cmd.Flags().IntVar(&users, "users", 3, "number of demo users")
	cmd.Flags().IntVar(&notes, "notes", 3, "notes per user")
	cmd.Flags().StringVar(&password, "password", "demo", "password for every demo user")

	return cmd
}
