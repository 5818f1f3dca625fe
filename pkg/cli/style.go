package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles renders for one writer. Colors are dropped when the writer is not
// a terminal.
type styles struct {
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	id      lipgloss.Style
	label   lipgloss.Style
	title   lipgloss.Style
	created lipgloss.Style
	header  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
		id:      r.NewStyle().Foreground(lipgloss.Color("6")),
		label:   r.NewStyle().Bold(true),
		title:   r.NewStyle().Foreground(lipgloss.Color("5")),
		created: r.NewStyle().Foreground(lipgloss.Color("4")),
		header:  r.NewStyle().Bold(true).Underline(true),
	}
}

func (s styles) completed(done bool) string {
	if done {
		return s.success.Render("✔")
	}
	return s.failure.Render("✘")
}

func (s styles) yesNo(done bool) string {
	if done {
		return s.success.Render("Yes")
	}
	return s.failure.Render("No")
}
