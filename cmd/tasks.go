package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	tasksrender "solvectl/internal/adapters/render/tasks"
	"solvectl/internal/application"
	"solvectl/internal/domain"
	"solvectl/internal/ports"
)

func newTasksCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and watch solving tasks",
	}

	cmd.AddCommand(newTasksListCmd(app), newTasksGetCmd(app), newTasksWatchCmd(app))

	return cmd
}

func newTasksListCmd(app *app) *cobra.Command {
	var statusFlag string
	var search string
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your tasks once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ensureSession(cmd.Context(), app, domain.RoleUser); err != nil {
				return err
			}

			query, err := buildTaskQuery(statusFlag, limit, offset)
			if err != nil {
				return err
			}

			items, err := app.gateway.ListTasks(cmd.Context(), app.session.Credential(), query)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}

			if search != "" {
				filtered := make([]domain.Task, 0, len(items))
				for _, task := range items {
					if task.Matches(search) {
						filtered = append(filtered, task)
					}
				}
				items = filtered
			}

			output := tasksrender.Render(items, tasksrender.RenderOptions{
				Now:   app.clock.Now(),
				Title: "Tasks",
			})
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Server-side status filter (pending|processing|ready|failed)")
	cmd.Flags().StringVar(&search, "search", "", "Client-side free-text filter over id, kind, owner email")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum tasks to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Listing offset")

	return cmd
}

func newTasksGetCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(args[0]); err != nil {
				return fmt.Errorf("%w: malformed task id %q", domain.ErrInvalidInput, args[0])
			}

			if _, err := ensureSession(cmd.Context(), app, domain.RoleUser); err != nil {
				return err
			}

			task, err := app.gateway.GetTask(cmd.Context(), app.session.Credential(), domain.TaskID(args[0]))
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}

			printTaskDetail(cmd, task)
			return nil
		},
	}

	return cmd
}

func printTaskDetail(cmd *cobra.Command, task domain.Task) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "ID:      %s\n", task.ID)
	_, _ = fmt.Fprintf(out, "Kind:    %s\n", task.Kind)
	_, _ = fmt.Fprintf(out, "Status:  %s\n", task.Status)
	_, _ = fmt.Fprintf(out, "Cost:    $%.4f\n", task.Cost)
	if task.WebsiteURL != "" {
		_, _ = fmt.Fprintf(out, "Site:    %s\n", task.WebsiteURL)
	}
	_, _ = fmt.Fprintf(out, "Created: %s\n", task.CreatedAt.Format(time.RFC3339))
	if task.CompletedAt != nil {
		_, _ = fmt.Fprintf(out, "Done:    %s\n", task.CompletedAt.Format(time.RFC3339))
	}
	if task.Status == domain.TaskReady && task.Token != "" {
		_, _ = fmt.Fprintf(out, "Token:   %s\n", task.Token)
	}
	if task.Status == domain.TaskFailed {
		_, _ = fmt.Fprintf(out, "Error:   %s\n", task.ErrorSummary())
	}
}

func newTasksWatchCmd(app *app) *cobra.Command {
	var statusFlag string
	var search string
	var limit int
	var admin bool
	var summary bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the task list and live-render it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role := domain.RoleUser
			if admin {
				role = domain.RoleAdmin
			}
			if _, err := ensureSession(cmd.Context(), app, role); err != nil {
				return err
			}

			query, err := buildTaskQuery(statusFlag, limit, 0)
			if err != nil {
				return err
			}

			opts := application.FeedOptions{
				Status:   query.Status,
				Limit:    query.Limit,
				Interval: watchInterval(app, interval, admin, summary),
				Admin:    admin,
			}

			return runTasksWatch(cmd, app, opts, watchView{
				admin:   admin,
				summary: summary,
				search:  search,
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Server-side status filter (pending|processing|ready|failed)")
	cmd.Flags().StringVar(&search, "search", "", "Client-side free-text filter over id, kind, owner email")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum tasks per fetch")
	cmd.Flags().BoolVar(&admin, "admin", false, "Watch every user's tasks (admin role required)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Render a dashboard summary instead of the full listing")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Polling interval override")

	return cmd
}

// watchInterval picks the configured cadence of the view: 10s task list,
// 15s admin audit, 30s dashboard summary.
func watchInterval(app *app, override time.Duration, admin, summary bool) time.Duration {
	if override > 0 {
		return override
	}
	if summary {
		return app.cfg.SummaryInterval
	}
	if admin {
		return app.cfg.AdminInterval
	}

	return app.cfg.TaskInterval
}

func buildTaskQuery(statusFlag string, limit, offset int) (ports.TaskQuery, error) {
	query := ports.TaskQuery{Limit: limit, Offset: offset}
	if statusFlag == "" {
		return query, nil
	}

	status, err := domain.ParseTaskStatus(statusFlag)
	if err != nil {
		return ports.TaskQuery{}, err
	}
	query.Status = &status

	return query, nil
}
