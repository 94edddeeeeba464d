package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ble-watch.klederson.com/internal/lifecycle"
)

// StatusCounts are the figures shown in the bottom bar.
type StatusCounts struct {
	Tracked int
	Filters int
	Alerts  int
	Ignored int64
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, mode lifecycle.Mode, c StatusCounts) string {
	status := StyleModeConfiguring.Render("[CONFIG]")
	if mode == lifecycle.Scanning {
		status = StyleModeScanning.Render("[SCANNING]")
	}

	info := fmt.Sprintf(" Tracked: %d  Filters: %d  Alerts: %d", c.Tracked, c.Filters, c.Alerts)
	if c.Ignored > 0 {
		info += fmt.Sprintf("  Ignored: %d", c.Ignored)
	}

	content := status + StyleStatusBar.Foreground(ColorGreen).Render(info)

	gap := width - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}

	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
