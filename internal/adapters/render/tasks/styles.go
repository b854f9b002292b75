package tasks

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	empty      lipgloss.Style
	id         lipgloss.Style
	kind       lipgloss.Style
	meta       lipgloss.Style
	errorText  lipgloss.Style
	stale      lipgloss.Style
	pending    lipgloss.Style
	processing lipgloss.Style
	ready      lipgloss.Style
	failed     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		empty:      lipgloss.NewStyle().Faint(true),
		id:         lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		kind:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		meta:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		errorText:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		stale:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		pending:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		processing: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		ready:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failed:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}

func (s styles) statusStyle(status string) lipgloss.Style {
	switch status {
	case "pending":
		return s.pending
	case "processing":
		return s.processing
	case "ready":
		return s.ready
	case "failed":
		return s.failed
	default:
		return s.meta
	}
}
