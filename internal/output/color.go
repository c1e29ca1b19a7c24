package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ColorEnabled reports whether stdout is a real terminal, so piped or
// redirected output stays plain text.
var ColorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

var statusColors = map[string]lipgloss.Color{
	"permission": lipgloss.Color("5"),
	"error":      lipgloss.Color("1"),
	"working":    lipgloss.Color("3"),
	"idle":       lipgloss.Color("6"),
	"done":       lipgloss.Color("2"),
}

// ColorizeStatus renders a MemberStatus/rollup value in its status color
// when stdout is a terminal, otherwise returns it unchanged so piped output
// stays free of escape codes.
func ColorizeStatus(status string) string {
	if !ColorEnabled {
		return status
	}
	c, ok := statusColors[status]
	if !ok {
		return status
	}
	return lipgloss.NewStyle().Foreground(c).Render(status)
}

// ColorizeAs renders text in the color associated with statusKey (e.g.
// "error", "permission") regardless of text's own content, for counters and
// labels that aren't themselves the status string.
func ColorizeAs(statusKey, text string) string {
	if !ColorEnabled {
		return text
	}
	c, ok := statusColors[statusKey]
	if !ok {
		return text
	}
	return lipgloss.NewStyle().Foreground(c).Render(text)
}
