package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ble-watch.klederson.com/internal/lifecycle"
	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/presence"
	"ble-watch.klederson.com/internal/watchlist"
)

var t0 = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type memPersister struct {
	saved        [][]watchlist.Entry
	resetPending bool
}

func (m *memPersister) SaveWatchlist(entries []watchlist.Entry) error {
	m.saved = append(m.saved, entries)
	return nil
}

func (m *memPersister) SetFactoryResetPending(pending bool) error {
	m.resetPending = pending
	return nil
}

func newScanningEngine(t *testing.T, entries []watchlist.Entry, queueSize int) (*Engine, time.Time) {
	t.Helper()
	logging.SetTestLoggerNop()

	e := New(Options{
		Watchlist: watchlist.NewStore(entries),
		Persister: &memPersister{},
		Timeout:   20 * time.Second,
		QueueSize: queueSize,
		Now:       t0,
	})
	start := t0.Add(21 * time.Second)
	res := e.Tick(start)
	require.True(t, res.TimedOut)
	require.True(t, e.Scanning())

	got := collect(e)
	require.Len(t, got, 1)
	require.Equal(t, EventReady, got[0].Kind)
	return e, start
}

func collect(e *Engine) []Event {
	var out []Event
	e.Drain(func(ev Event) { out = append(out, ev) })
	return out
}

func TestEngine_IgnoresSightingsWhileConfiguring(t *testing.T) {
	logging.SetTestLoggerNop()
	e := New(Options{Watchlist: watchlist.NewStore(watchlist.Defaults()), Now: t0})

	e.OnSighting("aa:bb:cc:00:00:01", -50, t0.Add(time.Second))

	assert.False(t, e.Scanning())
	assert.Equal(t, int64(1), e.Ignored())
	assert.Zero(t, e.Tracker().Count())
	assert.Empty(t, collect(e))
}

func TestEngine_EndToEnd(t *testing.T) {
	e, ts := newScanningEngine(t, []watchlist.Entry{
		{Pattern: "aa:bb:cc", Label: "Vendor X"},
	}, 0)

	steps := []struct {
		offset time.Duration
		want   presence.Kind
	}{
		{0, presence.New},
		{3 * time.Second, presence.Suppressed},
		{6 * time.Second, presence.ReseenShort},
		{40 * time.Second, presence.ReseenLong},
	}

	for _, s := range steps {
		e.OnSighting("AA:BB:CC:11:22:33", -60, ts.Add(s.offset))
		got := collect(e)
		if s.want == presence.Suppressed {
			assert.Empty(t, got, "offset %s", s.offset)
			continue
		}
		require.Len(t, got, 1, "offset %s", s.offset)
		assert.Equal(t, EventAlert, got[0].Kind)
		assert.Equal(t, s.want, got[0].Alert.Kind)
		assert.Equal(t, "aa:bb:cc:11:22:33", got[0].Alert.Identifier)
		assert.Equal(t, "Vendor X", got[0].Alert.Label)
		assert.Equal(t, -60, got[0].Alert.RSSI)
	}

	assert.Equal(t, 1, e.Tracker().Count())
	e.Tick(ts.Add(120 * time.Second))
	assert.Zero(t, e.Tracker().Count())
}

func TestEngine_NonMatchingSightingIsDropped(t *testing.T) {
	e, ts := newScanningEngine(t, watchlist.Defaults(), 0)

	e.OnSighting("11:22:33:44:55:66", -40, ts)
	e.OnSighting("garbage", -40, ts)

	assert.Zero(t, e.Tracker().Count())
	assert.Empty(t, collect(e))
}

func TestEngine_QueueDropsOldest(t *testing.T) {
	e, ts := newScanningEngine(t, []watchlist.Entry{{Pattern: "aa:bb:cc", Label: "X"}}, 2)

	e.OnSighting("aa:bb:cc:00:00:01", -50, ts)
	e.OnSighting("aa:bb:cc:00:00:02", -50, ts)
	e.OnSighting("aa:bb:cc:00:00:03", -50, ts)

	got := collect(e)
	require.Len(t, got, 2)
	assert.Equal(t, "aa:bb:cc:00:00:02", got[0].Alert.Identifier)
	assert.Equal(t, "aa:bb:cc:00:00:03", got[1].Alert.Identifier)
	assert.Equal(t, int64(1), e.dropped.Load())
}

func TestEngine_SweepRunsOnInterval(t *testing.T) {
	e, ts := newScanningEngine(t, watchlist.Defaults(), 0)

	e.OnSighting("dd:ee:ff:01:02:03", -70, ts)
	collect(e)

	// 61s of silence, first tick after the sweep interval.
	e.Tick(ts.Add(61 * time.Second))
	assert.Zero(t, e.Tracker().Count())
}

func TestEngine_SubmitThenSwitchCallsHook(t *testing.T) {
	logging.SetTestLoggerNop()

	var scanningCalls int
	p := &memPersister{}
	e := New(Options{
		Persister:  p,
		Now:        t0,
		OnScanning: func() { scanningCalls++ },
	})

	_, err := e.Machine().SubmitWatchlist([]watchlist.RawEntry{{Identifier: "aa:bb:cc"}}, t0.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, p.saved, 1)

	e.Tick(t0.Add(5 * time.Second))
	assert.False(t, e.Scanning())

	e.Tick(t0.Add(6 * time.Second))
	assert.True(t, e.Scanning())
	assert.Equal(t, 1, scanningCalls)
	assert.Equal(t, lifecycle.Scanning, e.Machine().Mode())
}

func TestEngine_ResetRequestsRestart(t *testing.T) {
	e, ts := newScanningEngine(t, watchlist.Defaults(), 0)

	e.Machine().RequestReset(ts)
	e.Tick(ts.Add(2 * time.Second))
	assert.False(t, e.RestartRequested())

	res := e.Tick(ts.Add(3 * time.Second))
	assert.True(t, res.Restart)
	assert.True(t, e.RestartRequested())
	assert.False(t, e.Scanning())
}
