package tasks

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"solvectl/internal/domain"
)

type RenderOptions struct {
	Now       time.Time
	Title     string
	ShowOwner bool
	// Stale marks the listing as showing previously fetched data after a
	// failed refresh.
	Stale bool
}

// Render formats a task listing for the terminal. Order is the server's.
func Render(items []domain.Task, opts RenderOptions) string {
	s := newStyles()

	title := opts.Title
	if title == "" {
		title = "Tasks"
	}
	header := fmt.Sprintf("tasks: %d", len(items))
	if opts.Stale {
		header += " " + s.stale.Render("[stale]")
	}

	lines := []string{
		s.title.Render(title),
		s.header.Render(header),
	}

	if len(items) == 0 {
		lines = append(lines, s.empty.Render("No tasks."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, task := range items {
		lines = append(lines, renderTask(task, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTask(task domain.Task, opts RenderOptions, s styles) string {
	status := s.statusStyle(string(task.Status)).Render(fmt.Sprintf("%-10s", task.Status))

	parts := []string{
		status,
		s.id.Render(shortID(string(task.ID))),
		s.kind.Render(fmt.Sprintf("%-24s", task.Kind)),
	}

	if opts.ShowOwner && task.OwnerEmail != "" {
		parts = append(parts, s.meta.Render(task.OwnerEmail))
	}

	parts = append(parts, s.meta.Render(fmt.Sprintf("$%.4f", task.Cost)))

	if !opts.Now.IsZero() && !task.CreatedAt.IsZero() {
		parts = append(parts, s.meta.Render(formatAge(opts.Now.Sub(task.CreatedAt))))
	}

	if task.Status == domain.TaskFailed {
		if summary := task.ErrorSummary(); summary != "" {
			parts = append(parts, s.errorText.Render(summary))
		}
	}

	joined := parts[0]
	for _, part := range parts[1:] {
		joined = lipgloss.JoinHorizontal(lipgloss.Top, joined, " ", part)
	}

	return joined
}

func shortID(id string) string {
	if len(id) <= 8 {
		return fmt.Sprintf("%-8s", id)
	}

	return id[:8]
}

func formatAge(age time.Duration) string {
	switch {
	case age < 0:
		return "now"
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
