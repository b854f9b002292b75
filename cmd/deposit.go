package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"solvectl/internal/domain"
)

func newDepositCmd(app *app) *cobra.Command {
	var amount float64

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Create a balance deposit and print the checkout link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateInput(depositInput{Amount: amount}); err != nil {
				return err
			}

			if _, err := ensureSession(cmd.Context(), app, domain.RoleUser); err != nil {
				return err
			}

			var checkoutURL string
			create := func(ctx context.Context) error {
				var err error
				checkoutURL, err = app.gateway.CreateDeposit(ctx, app.session.Credential(), amount)
				return err
			}

			if err := runWithProgress(cmd.Context(), app, cmd.ErrOrStderr(), "Creating deposit...", create); err != nil {
				return fmt.Errorf("create deposit: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Complete the deposit at:\n%s\n", checkoutURL)
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "Deposit amount in USD (1.00 minimum)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
