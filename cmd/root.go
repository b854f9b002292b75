package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "solvectl",
		Short:         "solvectl: console for the captcha solving service",
		Long:          "solvectl manages your session against the captcha solving service, watches task progress from the terminal, and exposes the administrative views to privileged accounts.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newAPIKeyCmd(app),
		newDepositCmd(app),
		newTransactionsCmd(app),
		newTasksCmd(app),
		newAdminCmd(app),
	)

	return rootCmd
}
