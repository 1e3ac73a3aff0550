package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwantia/modexport/data"
)

// styles renders report lines. Colors are dropped when w is not a terminal.
type styles struct {
	completed lipgloss.Style
	aborted   lipgloss.Style
	failed    lipgloss.Style
	notice    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)

	return styles{
		completed: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		aborted:   r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		failed:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		notice:    r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (s styles) outcome(outcome *data.Outcome) string {
	switch outcome.Status {
	case data.StatusCompleted:
		return s.completed.Render(outcome.String())
	case data.StatusAborted:
		return s.aborted.Render(outcome.String())
	default:
		return s.failed.Render(outcome.String())
	}
}
