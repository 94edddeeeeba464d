package ui

import (
	"fmt"
	"strings"
	"time"

	"ble-watch.klederson.com/internal/lifecycle"
	"ble-watch.klederson.com/internal/watchlist"
)

// RenderConfigPanel shows the watchlist and what the lifecycle is waiting for.
func RenderConfigPanel(st lifecycle.Status, portalAddr string, width, height int, now time.Time) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	lines := []string{
		StylePanelTitle.Render("CONFIGURATION"),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
		"",
		StyleLabel.Render("  Portal    ") + StyleValue.Render("http://"+portalAddr+"/"),
	}

	switch {
	case st.Interacted:
		lines = append(lines, StyleLabel.Render("  Timeout   ")+StyleHelp.Render("disabled, waiting for submission"))
	case st.TimeoutIn > 0:
		lines = append(lines, StyleLabel.Render("  Timeout   ")+StyleValue.Render(fmt.Sprintf("%ds", int(st.TimeoutIn.Seconds()+0.5))))
	case len(st.Entries) == 0:
		lines = append(lines, StyleLabel.Render("  Timeout   ")+StyleModeConfiguring.Render("no filters, staying in configuration"))
	}

	for _, a := range st.Pending {
		lines = append(lines, StyleLabel.Render("  Pending   ")+
			StyleModeConfiguring.Render(fmt.Sprintf("%s in %.1fs", a.Kind, a.FireAt.Sub(now).Seconds())))
	}

	lines = append(lines, "", StylePanelTitle.Render(fmt.Sprintf("WATCHLIST [%d]", len(st.Entries))))
	lines = append(lines, renderEntries(st.Entries, innerW)...)

	return fitPanel(StylePanelActive, lines, width, height)
}

// RenderWatchlistPanel lists the active filters while scanning.
func RenderWatchlistPanel(entries []watchlist.Entry, width, height int) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}
	lines := []string{
		StylePanelTitle.Render(fmt.Sprintf("WATCHLIST [%d]", len(entries))),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
	}
	lines = append(lines, renderEntries(entries, innerW)...)
	return fitPanel(StylePanelBorder, lines, width, height)
}

func renderEntries(entries []watchlist.Entry, maxW int) []string {
	if len(entries) == 0 {
		return []string{StyleHelp.Render("  (empty)")}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		tag := fmt.Sprintf("[%s]", e.Kind())
		row := truncRaw(fmt.Sprintf("  %-6s %-17s %s", tag, e.Pattern, e.Label), maxW)
		out = append(out, StyleDeviceMAC.Render(row))
	}
	return out
}
