package ui

import (
	"fmt"
	"strings"
	"time"

	"ble-watch.klederson.com/internal/bluetooth"
	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/presence"
)

// RenderDeviceList renders the tracked watchlist devices, strongest first.
// The header stays fixed at the top; only the entries scroll.
func RenderDeviceList(records []presence.Record, width, height, cursorIndex int, now time.Time) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}
	innerH := height - 2

	headerLines := []string{
		StylePanelTitle.Render(fmt.Sprintf("NEARBY [%d]", len(records))),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
	}

	devSpace := innerH - len(headerLines)
	if devSpace < 1 {
		devSpace = 1
	}

	var devLines []string
	if len(records) == 0 {
		devLines = append(devLines, "", StyleHelp.Render(" No watchlist devices..."), StyleHelp.Render(" Waiting for sightings"))
	} else {
		linesPerDevice := 4 // 3 content + 1 blank
		maxVisible := devSpace / linesPerDevice
		if maxVisible < 1 {
			maxVisible = 1
		}

		// Compute viewport start so cursor is always visible
		viewStart := 0
		if cursorIndex >= maxVisible {
			viewStart = cursorIndex - maxVisible + 1
		}

		for i := viewStart; i < len(records) && len(devLines) < devSpace; i++ {
			devLines = append(devLines, renderDeviceEntry(records[i], innerW, i == cursorIndex, now)...)
		}
	}

	return fitPanel(StylePanelBorder, append(headerLines, devLines...), width, height)
}

func renderDeviceEntry(r presence.Record, maxW int, isCursor bool, now time.Time) []string {
	cursor := "  "
	if isCursor {
		cursor = ">>"
	}

	cooldown := ""
	if r.CooldownActive && now.Before(r.CooldownUntil) {
		cooldown = fmt.Sprintf(" cooldown %ds", int(r.CooldownUntil.Sub(now).Seconds()+0.5))
	}

	dist := bluetooth.RSSIToDistance(float64(r.RSSI), config.MeasuredPower, config.PathLossExp)
	raw1 := truncRaw(fmt.Sprintf("%s %s", cursor, r.Label), maxW)
	raw2 := truncRaw(fmt.Sprintf("     %s", r.Identifier), maxW)
	raw3 := truncRaw(fmt.Sprintf("     %ddBm  ~%.1fm  %s%s", r.RSSI, dist, formatAgo(now.Sub(r.LastSeen)), cooldown), maxW)

	if isCursor {
		return []string{StyleCursorRow.Render(raw1), StyleCursorRow.Render(raw2), StyleCursorRow.Render(raw3), ""}
	}

	line3 := fmt.Sprintf("     %s  %s  %s",
		StyleDeviceRSSI.Render(fmt.Sprintf("%ddBm", r.RSSI)),
		StyleDeviceRSSI.Render(fmt.Sprintf("~%.1fm", dist)),
		StyleHelp.Render(formatAgo(now.Sub(r.LastSeen))))
	if cooldown != "" {
		line3 += StyleCooldown.Render(cooldown)
	}

	return []string{
		"   " + StyleDeviceName.Render(truncRaw(r.Label, maxW-3)),
		"     " + StyleDeviceMAC.Render(r.Identifier),
		line3,
		"",
	}
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if w < 0 {
		w = 0
	}
	if len(s) > w {
		return s[:w]
	}
	if len(s) < w {
		return s + strings.Repeat(" ", w-len(s))
	}
	return s
}

func formatAgo(d time.Duration) string {
	if d < time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm ago", int(d.Minutes()))
}
