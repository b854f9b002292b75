package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateInput(loginInput{Email: email, Password: password}); err != nil {
				return err
			}

			if err := app.session.Login(cmd.Context(), email, password); err != nil {
				return err
			}

			snap := app.session.Snapshot()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", snap.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newRegisterCmd(app *app) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateInput(registerInput{Email: email, Password: password}); err != nil {
				return err
			}

			if err := app.session.Register(cmd.Context(), email, password); err != nil {
				return err
			}

			snap := app.session.Snapshot()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", snap.User.Email)
			if snap.User.APIKeyPrefix != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API key: %s\n", snap.User.APIKeyPrefix)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (8 characters minimum)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.session.Logout()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
