package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ble-watch.klederson.com/internal/lifecycle"
	"ble-watch.klederson.com/internal/presence"
	"ble-watch.klederson.com/internal/schedule"
	"ble-watch.klederson.com/internal/watchlist"
)

var now = time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)

func TestRenderDeviceList_ExactHeight(t *testing.T) {
	records := []presence.Record{
		{Identifier: "aa:bb:cc:11:22:33", Label: "Vendor X", RSSI: -55, LastSeen: now.Add(-2 * time.Second)},
		{Identifier: "dd:ee:ff:00:11:22", Label: "Acme", RSSI: -80, LastSeen: now, CooldownActive: true, CooldownUntil: now.Add(4 * time.Second)},
	}

	for _, h := range []int{5, 12, 30} {
		out := RenderDeviceList(records, 40, h, 1, now)
		assert.Len(t, strings.Split(out, "\n"), h, "height %d", h)
	}

	out := RenderDeviceList(records, 60, 20, 0, now)
	assert.Contains(t, out, "NEARBY [2]")
	assert.Contains(t, out, "aa:bb:cc:11:22:33")
	assert.Contains(t, out, "cooldown 4s")
}

func TestRenderDeviceList_Empty(t *testing.T) {
	out := RenderDeviceList(nil, 40, 10, 0, now)
	assert.Contains(t, out, "Waiting for sightings")
}

func TestRenderConfigPanel(t *testing.T) {
	st := lifecycle.Status{
		Mode:      lifecycle.Configuring,
		TimeoutIn: 12 * time.Second,
		Entries:   watchlist.Defaults(),
		Pending:   []schedule.Action{{Kind: schedule.SwitchToScanning, FireAt: now.Add(3 * time.Second)}},
	}

	out := RenderConfigPanel(st, "127.0.0.1:8080", 70, 20, now)
	assert.Contains(t, out, "http://127.0.0.1:8080/")
	assert.Contains(t, out, "12s")
	assert.Contains(t, out, "switch-to-scanning in 3.0s")
	assert.Contains(t, out, "WATCHLIST [3]")
	assert.Contains(t, out, "Specific Device")
	assert.Len(t, strings.Split(out, "\n"), 20)
}

func TestRenderAlertPanel_NewestFirst(t *testing.T) {
	alerts := []presence.Alert{
		{Kind: presence.New, Identifier: "aa:bb:cc:00:00:01", Label: "First", At: now.Add(-10 * time.Second)},
		{Kind: presence.ReseenShort, Identifier: "aa:bb:cc:00:00:02", Label: "Second", At: now},
	}

	out := RenderAlertPanel(alerts, Flash{Text: "NEW First", Pulse: 1}, 60, 12, now)
	assert.Less(t, strings.Index(out, "Second"), strings.Index(out, "First aa:bb"))
	assert.Contains(t, out, "NEW First")
}

func TestRenderSparkline(t *testing.T) {
	assert.Equal(t, "_^", renderSparkline([]float64{-90, -40}, 10))
	assert.Equal(t, "_", renderSparkline([]float64{-90, -40}, 1))
	assert.Empty(t, renderSparkline(nil, 10))
}

func TestTruncRaw(t *testing.T) {
	assert.Equal(t, "abc  ", truncRaw("abc", 5))
	assert.Equal(t, "ab", truncRaw("abc", 2))
	assert.Equal(t, "", truncRaw("abc", -1))
}

func TestRenderBars(t *testing.T) {
	assert.Contains(t, RenderMenuBar(80, "demo", lifecycle.Scanning), "SCANNING")
	assert.Contains(t, RenderMenuBar(80, "hci0", lifecycle.Configuring), "CONFIGURING")

	bar := RenderStatusBar(80, lifecycle.Scanning, StatusCounts{Tracked: 2, Filters: 3, Alerts: 5, Ignored: 4})
	assert.Contains(t, bar, "Tracked: 2")
	assert.Contains(t, bar, "Ignored: 4")
}
