package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"solvectl/internal/domain"
)

func newWhoamiCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current account profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := ensureSession(cmd.Context(), app, domain.RoleUser)
			if err != nil {
				return err
			}

			user := snap.User
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Email:    %s\n", user.Email)
			_, _ = fmt.Fprintf(out, "Role:     %s\n", user.Role)
			_, _ = fmt.Fprintf(out, "Balance:  $%.4f\n", user.Balance)
			if user.APIKeyPrefix != "" {
				_, _ = fmt.Fprintf(out, "API key:  %s\n", user.APIKeyPrefix)
			}
			_, _ = fmt.Fprintf(out, "Verified: %t\n", user.Verified)
			return nil
		},
	}
}
