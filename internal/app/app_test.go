package app

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/detector"
	"ble-watch.klederson.com/internal/feedback"
	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/presence"
	"ble-watch.klederson.com/internal/watchlist"
)

var t0 = time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu     sync.Mutex
	alerts []presence.Alert
	ready  int
}

func (r *recordingSink) Alert(a presence.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

func (r *recordingSink) Ready() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready++
}

func newEngine(t *testing.T, start time.Time) *detector.Engine {
	t.Helper()
	logging.SetTestLoggerNop()
	return detector.New(detector.Options{
		Watchlist: watchlist.NewStore([]watchlist.Entry{{Pattern: "aa:bb:cc", Label: "Vendor X"}}),
		Timeout:   20 * time.Second,
		Now:       start,
	})
}

func TestPump_DeliversReadyThenAlerts(t *testing.T) {
	e := newEngine(t, t0)
	sink := &recordingSink{}

	res, events := Pump(e, sink, t0.Add(21*time.Second))
	assert.True(t, res.TimedOut)
	require.Len(t, events, 1)
	assert.Equal(t, 1, sink.ready)

	e.OnSighting("aa:bb:cc:01:02:03", -50, t0.Add(22*time.Second))
	_, events = Pump(e, sink, t0.Add(22*time.Second))
	require.Len(t, events, 1)
	require.Len(t, sink.alerts, 1)
	assert.Equal(t, presence.New, sink.alerts[0].Kind)
}

func TestFlashState(t *testing.T) {
	var f flashState
	assert.Equal(t, "", f.view().Text)

	f.start("NEW X", feedback.Pattern{Pulses: 2}, t0)
	assert.Equal(t, 0, f.view().Pulse)

	f.advance(t0.Add(config.PulseOn))
	assert.Equal(t, -1, f.view().Pulse)

	f.advance(t0.Add(config.PulseOn + config.PulseOff))
	assert.Equal(t, 1, f.view().Pulse)

	f.advance(t0.Add(time.Minute))
	assert.Equal(t, "", f.view().Text)
}

func TestRSSIHistory(t *testing.T) {
	h := newRSSIHistory()

	h.Update([]presence.Record{{Identifier: "a", RSSI: -50, LastSeen: t0}})
	h.Update([]presence.Record{{Identifier: "a", RSSI: -50, LastSeen: t0}})
	h.Update([]presence.Record{{Identifier: "a", RSSI: -60, LastSeen: t0.Add(time.Second)}})
	assert.Equal(t, []float64{-50, -60}, h.Values("a"))

	h.Update(nil)
	assert.Nil(t, h.Values("a"))
}

func TestRSSIRing_Wraps(t *testing.T) {
	r := NewRSSIRing(3)
	for _, v := range []float64{1, 2, 3, 4} {
		r.Push(v)
	}
	assert.Equal(t, []float64{2, 3, 4}, r.Values())
	assert.Equal(t, 3, r.Len())
}

func TestModel_TickAndView(t *testing.T) {
	e := newEngine(t, t0)
	sink := &recordingSink{}
	m := New(Options{Engine: e, Sink: sink, Source: "demo", PortalAddr: "127.0.0.1:8080"})

	assert.NotNil(t, m.Init())

	var model tea.Model = m
	model, _ = model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model, _ = model.Update(TickMsg(t0.Add(time.Second)))
	assert.Contains(t, model.View(), "CONFIGURATION")

	model, cmd := model.Update(TickMsg(t0.Add(21 * time.Second)))
	assert.NotNil(t, cmd)
	e.OnSighting("AA:BB:CC:10:20:30", -45, t0.Add(22*time.Second))
	model, _ = model.Update(TickMsg(t0.Add(22 * time.Second)))

	view := model.View()
	assert.Contains(t, view, "NEARBY [1]")
	assert.Contains(t, view, "aa:bb:cc:10:20:30")
	assert.Equal(t, 1, sink.ready)
	assert.Len(t, model.(AppModel).alerts, 1)
}

func TestModel_QuitKey(t *testing.T) {
	m := New(Options{Engine: newEngine(t, t0)})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_RestartQuits(t *testing.T) {
	e := newEngine(t, t0)
	m := New(Options{Engine: e})

	e.Machine().RequestReset(t0)
	model, cmd := m.Update(TickMsg(t0.Add(3 * time.Second)))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, model.(AppModel).RestartRequested())
}

func TestRunHeadless(t *testing.T) {
	t.Run("stops on cancel", func(t *testing.T) {
		e := newEngine(t, time.Now())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		assert.False(t, runHeadless(ctx, e, nil, 5*time.Millisecond))
	})

	t.Run("returns on restart", func(t *testing.T) {
		e := newEngine(t, time.Now())
		e.Machine().RequestReset(time.Now().Add(-time.Minute))
		assert.True(t, runHeadless(context.Background(), e, nil, 5*time.Millisecond))
		assert.True(t, e.RestartRequested())
	})
}
