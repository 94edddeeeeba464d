package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"ble-watch.klederson.com/internal/presence"
)

// Flash is the visible state of a pulsing alert.
type Flash struct {
	Text  string
	Pulse int // index into FlashColors, -1 when dark
}

// RenderAlertPanel shows the flash banner and the most recent alerts,
// newest first.
func RenderAlertPanel(alerts []presence.Alert, flash Flash, width, height int, now time.Time) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}

	banner := StyleHelp.Render(truncRaw("", innerW))
	if flash.Text != "" && flash.Pulse >= 0 {
		c := FlashColors[flash.Pulse%len(FlashColors)]
		banner = lipgloss.NewStyle().Background(c).Foreground(lipgloss.Color("#FFFFFF")).Bold(true).
			Render(truncRaw(" "+flash.Text, innerW))
	}

	lines := []string{
		StylePanelTitle.Render("ALERTS"),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
		banner,
		"",
	}

	for i := len(alerts) - 1; i >= 0; i-- {
		a := alerts[i]
		row := truncRaw(fmt.Sprintf(" %-7s %s %s", a.Kind, a.Label, a.Identifier), innerW-9)
		lines = append(lines, alertStyle(a.Kind).Render(row)+StyleHelp.Render(fmt.Sprintf(" %8s", formatAgo(now.Sub(a.At)))))
	}

	return fitPanel(StylePanelBorder, lines, width, height)
}

func alertStyle(kind presence.Kind) lipgloss.Style {
	switch kind {
	case presence.New:
		return StyleAlertNew
	case presence.ReseenLong:
		return StyleAlertLong
	default:
		return StyleAlertShort
	}
}
