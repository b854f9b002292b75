package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	tasksrender "solvectl/internal/adapters/render/tasks"
	"solvectl/internal/application"
	"solvectl/internal/domain"
	"solvectl/internal/ports"
)

type watchView struct {
	admin   bool
	summary bool
	search  string
}

type feedUpdateMsg application.TaskSnapshot

type notificationsMsg []domain.Notification

type watchModel struct {
	feed     *application.Feed
	clock    ports.Clock
	view     watchView
	spinner  spinner.Model
	snapshot application.TaskSnapshot
	notes    []domain.Notification
}

func newDotSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)
}

func newWatchModel(feed *application.Feed, clock ports.Clock, view watchView) watchModel {
	return watchModel{
		feed:     feed,
		clock:    clock,
		view:     view,
		spinner:  newDotSpinner(),
		snapshot: feed.Snapshot(),
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.feed.Updates()))
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.feed.Refresh()
			return m, nil
		default:
			return m, nil
		}
	case feedUpdateMsg:
		m.snapshot = application.TaskSnapshot(msg)
		return m, waitForUpdate(m.feed.Updates())
	case notificationsMsg:
		m.notes = msg
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m watchModel) View() string {
	if m.snapshot.IsLoading {
		return fmt.Sprintf("%s Loading tasks...\n", m.spinner.View())
	}

	var body string
	if m.view.summary {
		body = renderSummary(m.snapshot.Items)
	} else {
		items := m.snapshot.Items
		if m.view.search != "" {
			items = m.feed.Search(m.view.search)
		}

		title := "Tasks"
		if m.view.admin {
			title = "All tasks"
		}

		body = tasksrender.Render(items, tasksrender.RenderOptions{
			Now:       m.clock.Now(),
			Title:     title,
			ShowOwner: m.view.admin,
			Stale:     m.snapshot.IsRefreshing,
		})
	}

	sections := []string{body}
	if footer := renderNotifications(m.notes); footer != "" {
		sections = append(sections, footer)
	}
	sections = append(sections, helpStyle.Render("r refresh · q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// waitForUpdate re-arms after every delivery; the feed channel stays open
// for the lifetime of the program.
func waitForUpdate(updates <-chan application.TaskSnapshot) tea.Cmd {
	return func() tea.Msg {
		return feedUpdateMsg(<-updates)
	}
}

var (
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	summaryTitleStyle = lipgloss.NewStyle().Bold(true)

	severityStyles = map[domain.Severity]lipgloss.Style{
		domain.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		domain.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		domain.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		domain.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	}
)

func renderSummary(items []domain.Task) string {
	counts := map[domain.TaskStatus]int{}
	var cost float64
	for _, task := range items {
		counts[task.Status]++
		cost += task.Cost
	}

	lines := []string{summaryTitleStyle.Render("Task summary")}
	for _, status := range []domain.TaskStatus{domain.TaskPending, domain.TaskProcessing, domain.TaskReady, domain.TaskFailed} {
		lines = append(lines, fmt.Sprintf("  %-12s %d", status, counts[status]))
	}
	lines = append(lines, fmt.Sprintf("  %-12s %d", "total", len(items)))
	lines = append(lines, fmt.Sprintf("  %-12s $%.4f", "spent", cost))

	return strings.Join(lines, "\n")
}

func renderNotifications(notes []domain.Notification) string {
	if len(notes) == 0 {
		return ""
	}

	lines := make([]string, 0, len(notes))
	for _, note := range notes {
		style, ok := severityStyles[note.Severity]
		if !ok {
			style = severityStyles[domain.SeverityInfo]
		}
		lines = append(lines, style.Render("• "+note.Message))
	}

	return strings.Join(lines, "\n")
}

func runTasksWatch(cmd *cobra.Command, app *app, opts application.FeedOptions, view watchView) error {
	feed := application.NewFeed(app.gateway, app.session, app.clock, app.notifier, opts)
	feed.Start(cmd.Context())
	defer feed.Stop()

	p := tea.NewProgram(
		newWatchModel(feed, app.clock, view),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithContext(cmd.Context()),
	)

	cancel := app.notifier.Subscribe(func(items []domain.Notification) {
		p.Send(notificationsMsg(items))
	})
	defer cancel()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run task watch: %w", err)
	}

	return nil
}
