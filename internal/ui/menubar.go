package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/lifecycle"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, source string, mode lifecycle.Mode) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"↑↓", " select"},
		{"Q", "uit"},
	}

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	left := StyleMenuKey.Render(title) + menu
	right := renderMode(mode) + "  " + StyleMenuLabel.Render("Source: "+source) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderMode(mode lifecycle.Mode) string {
	if mode == lifecycle.Scanning {
		return StyleModeScanning.Render("SCANNING")
	}
	return StyleModeConfiguring.Render("CONFIGURING")
}
