package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"ble-watch.klederson.com/internal/bluetooth"
	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/presence"
)

// RenderDetailPanel renders the selected device with its signal history.
func RenderDetailPanel(r presence.Record, rssiHistory []float64, width, height int, now time.Time) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	lines := []string{
		StylePanelTitle.Render("DEVICE DETAIL"),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
		"",
	}

	dist := bluetooth.RSSIToDistance(float64(r.RSSI), config.MeasuredPower, config.PathLossExp)
	cooldown := "-"
	if r.CooldownActive && now.Before(r.CooldownUntil) {
		cooldown = fmt.Sprintf("%.1fs left", r.CooldownUntil.Sub(now).Seconds())
	}

	fields := []struct{ label, value string }{
		{"Label", r.Label},
		{"MAC", r.Identifier},
		{"RSSI", fmt.Sprintf("%d dBm", r.RSSI)},
		{"Distance", fmt.Sprintf("~%.1fm (%s)", dist, bluetooth.Proximity(dist))},
		{"First", formatAgo(now.Sub(r.FirstSeen))},
		{"Last", formatAgo(now.Sub(r.LastSeen))},
		{"Cooldown", cooldown},
	}
	for _, f := range fields {
		lines = append(lines, StyleLabel.Render(fmt.Sprintf("  %-10s", f.label))+StyleValue.Render(f.value))
	}
	lines = append(lines, "")

	barWidth := innerW - 22
	if barWidth < 10 {
		barWidth = 10
	}
	lines = append(lines, StyleLabel.Render("  Signal ")+renderSignalBar(float64(r.RSSI), barWidth)+
		StyleValue.Render(fmt.Sprintf(" %ddBm", r.RSSI)))

	if len(rssiHistory) > 0 {
		lines = append(lines, "", StyleLabel.Render("  RSSI History:"))
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(renderSparkline(rssiHistory, innerW-4)))
	}

	return fitPanel(StylePanelActive, lines, width, height)
}

func renderSignalBar(rssi float64, width int) string {
	// Map RSSI -100..-30 to 0..width filled bars
	ratio := (rssi + 100.0) / 70.0
	ratio = math.Max(0, math.Min(1, ratio))
	filled := int(math.Round(ratio * float64(width)))

	filledPart := lipgloss.NewStyle().Foreground(proximityColor(rssi)).Render(strings.Repeat("|", filled))
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(strings.Repeat("-", width-filled))
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	// Take last `width` values
	if len(values) > width {
		values = values[len(values)-width:]
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}
