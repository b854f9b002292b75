package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"solvectl/internal/domain"
)

func newAPIKeyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage the solver API key",
	}

	cmd.AddCommand(newAPIKeyRotateCmd(app))

	return cmd
}

func newAPIKeyRotateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Generate a new API key, invalidating the previous one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ensureSession(cmd.Context(), app, domain.RoleUser); err != nil {
				return err
			}

			var key string
			rotate := func(ctx context.Context) error {
				var err error
				key, err = app.session.RotateAPIKey(ctx)
				return err
			}
			if err := runWithProgress(cmd.Context(), app, cmd.ErrOrStderr(), "Rotating API key...", rotate); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "New API key: %s\n", key)
			_, _ = fmt.Fprintln(out, "Store it now; it is shown only once and the previous key no longer works.")
			return nil
		},
	}
}
