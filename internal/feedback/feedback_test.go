package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/presence"
)

var sampleAt = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func sample(kind presence.Kind) presence.Alert {
	return presence.NewAlert(kind, "aa:bb:cc:11:22:33", -61, "Vendor X", sampleAt)
}

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

func TestPatternFor(t *testing.T) {
	assert.Equal(t, 3, PatternFor(presence.New).Pulses)
	assert.Equal(t, 3, PatternFor(presence.ReseenLong).Pulses)
	assert.Equal(t, 2, PatternFor(presence.ReseenShort).Pulses)
	assert.Zero(t, PatternFor(presence.Suppressed).Pulses)
	assert.Equal(t, 2, ReadyPattern.Pulses)
	assert.True(t, ReadyPattern.Ascending)
}

func TestFormatAlert(t *testing.T) {
	assert.Equal(t, "RE-30s Vendor X aa:bb:cc:11:22:33 (-61 dBm)", FormatAlert(sample(presence.ReseenLong)))
}

func TestMulti(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := Multi{a, b}

	m.Alert(sample(presence.New))
	m.Ready()

	for _, s := range []*recordingSink{a, b} {
		assert.Len(t, s.alerts, 1)
		assert.Equal(t, 1, s.ready)
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logging.SetTestCaptureLogger(&buf, zapcore.InfoLevel)
	t.Cleanup(logging.SetTestLoggerNop)

	NewLogSink().Alert(sample(presence.New))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "Match found", entry["msg"])
	assert.Equal(t, "NEW", entry[logging.FieldKind])
	assert.Equal(t, "Vendor X", entry[logging.FieldLabel])
	assert.Equal(t, float64(-61), entry["rssi"])
}

func TestBellSink(t *testing.T) {
	var out bytes.Buffer
	var slept []time.Duration

	s := NewBellSink(&out)
	s.sleep = func(d time.Duration) { slept = append(slept, d) }

	s.Alert(sample(presence.ReseenShort))
	assert.Equal(t, "\a\a", out.String())
	assert.Equal(t, []time.Duration{s.on, s.off, s.on}, slept)

	out.Reset()
	slept = nil
	s.Ready()
	assert.Equal(t, "\a\a", out.String())
	require.Len(t, slept, 3)
	assert.Greater(t, slept[2], slept[0])

	out.Reset()
	s.Alert(sample(presence.New))
	assert.Equal(t, "\a\a\a", out.String())
}

func TestAsync_DeliversInOrder(t *testing.T) {
	rec := &recordingSink{}
	a := NewAsync(rec, 8)

	a.Ready()
	a.Alert(sample(presence.New))
	a.Alert(sample(presence.ReseenShort))
	a.Close()

	assert.Equal(t, 1, rec.ready)
	require.Len(t, rec.alerts, 2)
	assert.Equal(t, presence.New, rec.alerts[0].Kind)
	assert.Equal(t, presence.ReseenShort, rec.alerts[1].Kind)
	assert.Zero(t, a.Dropped())
}

type blockingSink struct {
	recordingSink
	release chan struct{}
}

func (b *blockingSink) Alert(a presence.Alert) {
	<-b.release
	b.recordingSink.Alert(a)
}

func TestAsync_DropsWhenFull(t *testing.T) {
	b := &blockingSink{release: make(chan struct{})}
	a := NewAsync(b, 1)

	// The worker may or may not have picked up the first item yet, so
	// either one or two of these fit.
	for range 5 {
		a.Alert(sample(presence.New))
	}
	assert.GreaterOrEqual(t, a.Dropped(), int64(3))

	close(b.release)
	a.Close()
	assert.Equal(t, int64(5), a.Dropped()+int64(len(b.alerts)))
}

type fakePublisher struct {
	subject string
	data    [][]byte
	err     error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = append(f.data, data)
	return f.err
}

func TestNATSPublisher_Alert(t *testing.T) {
	logging.SetTestLoggerNop()
	pub := &fakePublisher{}
	p := NewNATSPublisher(pub, "blewatch.alerts")

	al := sample(presence.ReseenLong)
	p.Alert(al)

	require.Len(t, pub.data, 1)
	assert.Equal(t, "blewatch.alerts", pub.subject)

	var ev struct {
		CloudEvent
		Data AlertData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(pub.data[0], &ev))
	assert.Equal(t, "1.0", ev.SpecVersion)
	assert.Equal(t, al.ID, ev.ID)
	assert.Equal(t, eventTypeAlert, ev.Type)
	assert.Equal(t, "RE-30s", ev.Data.Kind)
	assert.Equal(t, "aa:bb:cc:11:22:33", ev.Data.Identifier)
	assert.Equal(t, -61, ev.Data.RSSI)
}

func TestNATSPublisher_ReadyAndErrors(t *testing.T) {
	logging.SetTestLoggerNop()
	pub := &fakePublisher{err: errors.New("no responders")}
	p := NewNATSPublisher(pub, "blewatch.alerts")

	p.Ready()

	require.Len(t, pub.data, 1)
	var ev CloudEvent
	require.NoError(t, json.Unmarshal(pub.data[0], &ev))
	assert.Equal(t, eventTypeReady, ev.Type)
	assert.NotEmpty(t, ev.ID)
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifier(t *testing.T) {
	logging.SetTestLoggerNop()
	bot := &fakeSender{}
	n := NewTelegramNotifier(bot, 42)

	n.Alert(sample(presence.New))
	n.Alert(sample(presence.ReseenShort))
	n.Alert(sample(presence.ReseenLong))
	n.Ready()

	require.Len(t, bot.sent, 3)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, bot.sent[0].ParseMode)
	assert.Contains(t, bot.sent[0].Text, "*NEW*")
	assert.Contains(t, bot.sent[0].Text, `\-61 dBm`)
	assert.Contains(t, bot.sent[1].Text, `*RE\-30s*`)
	assert.Equal(t, "Scanning started", bot.sent[2].Text)
}

func TestTelegramNotifier_EscapesLabels(t *testing.T) {
	logging.SetTestLoggerNop()
	bot := &fakeSender{}
	n := NewTelegramNotifier(bot, 42)

	a := sample(presence.New)
	a.Label = "Vendor_X a*b [lab] (v1.2)"
	n.Alert(a)

	require.Len(t, bot.sent, 1)
	assert.Equal(t, "*NEW* Vendor\\_X a\\*b \\[lab\\] \\(v1\\.2\\)\n`aa:bb:cc:11:22:33` \\-61 dBm", bot.sent[0].Text)
}

func TestTelegramNotifier_NoChatIsSilent(t *testing.T) {
	logging.SetTestLoggerNop()
	bot := &fakeSender{}
	NewTelegramNotifier(bot, 0).Alert(sample(presence.New))
	assert.Empty(t, bot.sent)
}
