package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	tasksrender "solvectl/internal/adapters/render/tasks"
	"solvectl/internal/domain"
	"solvectl/internal/ports"
)

func newAdminCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative views and user management",
	}

	cmd.AddCommand(
		newAdminUsersCmd(app),
		newAdminUserToggleCmd(app, "activate", true),
		newAdminUserToggleCmd(app, "suspend", false),
		newAdminTasksCmd(app),
		newAdminStatsCmd(app),
	)

	return cmd
}

func newAdminUsersCmd(app *app) *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ensureSession(cmd.Context(), app, domain.RoleAdmin); err != nil {
				return err
			}

			users, err := app.gateway.AdminListUsers(cmd.Context(), app.session.Credential(), limit, offset)
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, user := range users {
				state := "active"
				if !user.Active {
					state = "suspended"
				}
				_, _ = fmt.Fprintf(out, "%s  %-32s %-5s %-9s $%10.4f\n", user.ID, user.Email, user.Role, state, user.Balance)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum users to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Listing offset")

	return cmd
}

// newAdminUserToggleCmd builds the activate and suspend subcommands, which
// differ only in the flag they set.
func newAdminUserToggleCmd(app *app, verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <user-id>",
		Short: capitalize(verb) + " a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(args[0]); err != nil {
				return fmt.Errorf("%w: malformed user id %q", domain.ErrInvalidInput, args[0])
			}

			if _, err := ensureSession(cmd.Context(), app, domain.RoleAdmin); err != nil {
				return err
			}

			id := domain.UserID(args[0])
			target, err := findUser(cmd.Context(), app, id)
			if err != nil {
				return err
			}
			// Administrator accounts are never toggled from here; the
			// service would reject it anyway, so refuse before the request.
			if target.IsAdmin() {
				return fmt.Errorf("%s %s: %w: cannot modify an administrator account", verb, id, domain.ErrForbidden)
			}

			update := ports.UserUpdate{Active: &active}
			updated, err := app.gateway.AdminUpdateUser(cmd.Context(), app.session.Credential(), id, update)
			if err != nil {
				return fmt.Errorf("%s user: %w", verb, err)
			}

			state := "suspended"
			if updated.Active {
				state = "active"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.Email, state)
			return nil
		},
	}
}

func findUser(ctx context.Context, app *app, id domain.UserID) (domain.User, error) {
	const pageSize = 100

	for offset := 0; ; offset += pageSize {
		users, err := app.gateway.AdminListUsers(ctx, app.session.Credential(), pageSize, offset)
		if err != nil {
			return domain.User{}, fmt.Errorf("look up user: %w", err)
		}

		for _, user := range users {
			if user.ID == id {
				return user, nil
			}
		}

		if len(users) < pageSize {
			return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
	}
}

func newAdminTasksCmd(app *app) *cobra.Command {
	var statusFlag string
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List every user's tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ensureSession(cmd.Context(), app, domain.RoleAdmin); err != nil {
				return err
			}

			query, err := buildTaskQuery(statusFlag, limit, offset)
			if err != nil {
				return err
			}

			items, err := app.gateway.AdminListTasks(cmd.Context(), app.session.Credential(), query)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}

			output := tasksrender.Render(items, tasksrender.RenderOptions{
				Now:       app.clock.Now(),
				Title:     "All tasks",
				ShowOwner: true,
			})
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Server-side status filter (pending|processing|ready|failed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum tasks to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Listing offset")

	return cmd
}

func newAdminStatsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate financial metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ensureSession(cmd.Context(), app, domain.RoleAdmin); err != nil {
				return err
			}

			stats, err := app.gateway.AdminFinanceStats(cmd.Context(), app.session.Credential())
			if err != nil {
				return fmt.Errorf("fetch finance stats: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Revenue:   $%.4f total, $%.4f today, $%.4f this week, $%.4f this month\n",
				stats.TotalRevenue, stats.TodayRevenue, stats.WeekRevenue, stats.MonthRevenue)
			_, _ = fmt.Fprintf(out, "Deposits:  $%.4f over %d deposits\n", stats.TotalDeposits, stats.DepositCount)
			_, _ = fmt.Fprintf(out, "Refunds:   $%.4f over %d refunds\n", stats.TotalRefunds, stats.RefundCount)
			_, _ = fmt.Fprintf(out, "Net:       $%.4f\n", stats.NetBalance)
			_, _ = fmt.Fprintf(out, "Tasks:     %d today (%.1f%% success), %d this week, %d this month\n",
				stats.TodayTasks, stats.TodaySuccessRate*100, stats.WeekTasks, stats.MonthTasks)
			_, _ = fmt.Fprintf(out, "Users:     %d new this week, %d active this month\n",
				stats.WeekNewUsers, stats.MonthActiveUsers)
			return nil
		},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
