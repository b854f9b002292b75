package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"solvectl/internal/domain"
)

func newTransactionsCmd(app *app) *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List billing ledger entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ensureSession(cmd.Context(), app, domain.RoleUser); err != nil {
				return err
			}

			transactions, err := app.gateway.ListTransactions(cmd.Context(), app.session.Credential(), limit, offset)
			if err != nil {
				return fmt.Errorf("list transactions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(transactions) == 0 {
				_, _ = fmt.Fprintln(out, "No transactions.")
				return nil
			}

			for _, tx := range transactions {
				line := fmt.Sprintf("%s  %-8s %+10.4f  balance %10.4f", tx.CreatedAt.Format("2006-01-02 15:04:05"), tx.Type, tx.Amount, tx.BalanceAfter)
				if tx.Description != "" {
					line += "  " + tx.Description
				}
				_, _ = fmt.Fprintln(out, line)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Listing offset")

	return cmd
}
