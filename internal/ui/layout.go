package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ComposeLayout joins the left and right panels horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, leftPanel, rightPanel, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}

// fitPanel renders lines inside a bordered panel of exactly height lines.
// lipgloss Height() only sets a minimum; it won't truncate overflow.
func fitPanel(style lipgloss.Style, lines []string, width, height int) string {
	innerH := height - 2
	if innerH < 1 {
		innerH = 1
	}
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for len(lines) < innerH {
		lines = append(lines, "")
	}

	rendered := style.Width(width - 2).Height(innerH).Render(strings.Join(lines, "\n"))
	out := strings.Split(rendered, "\n")
	if len(out) > height {
		out = out[:height]
	}
	for len(out) < height {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}
