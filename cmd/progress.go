package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"solvectl/internal/domain"
)

type progressDoneMsg struct {
	err error
}

// progressModel runs one blocking gateway action behind a spinner. It shares
// the watch view's spinner and severity styling, and any notifications
// enqueued while the action runs (by the session or the gateway error paths)
// surface under the label instead of waiting for the next watch render.
type progressModel struct {
	spinner spinner.Model
	label   string
	notes   []domain.Notification
	failed  bool
	err     error
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case notificationsMsg:
		m.notes = msg
		return m, nil
	case progressDoneMsg:
		m.failed = msg.err != nil
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m progressModel) View() string {
	if m.failed {
		return severityStyles[domain.SeverityError].Render("✗ "+m.label) + "\n"
	}

	head := fmt.Sprintf("%s %s", m.spinner.View(), helpStyle.Render(m.label))
	if footer := renderNotifications(m.notes); footer != "" {
		return lipgloss.JoinVertical(lipgloss.Left, head, footer)
	}

	return head
}

// runWithProgress executes action while rendering the spinner, wiring the
// notifier into the live view the same way the watch command does.
func runWithProgress(ctx context.Context, app *app, output io.Writer, label string, action func(context.Context) error) error {
	model := progressModel{
		spinner: newDotSpinner(),
		label:   label,
	}

	p := tea.NewProgram(
		model,
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	cancel := app.notifier.Subscribe(func(items []domain.Notification) {
		p.Send(notificationsMsg(items))
	})
	defer cancel()

	go func() {
		p.Send(progressDoneMsg{err: action(ctx)})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := final.(progressModel)
	if !ok {
		return fmt.Errorf("unexpected final progress model type %T", final)
	}

	return result.err
}
