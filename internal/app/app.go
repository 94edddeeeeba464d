package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/detector"
	"ble-watch.klederson.com/internal/feedback"
	"ble-watch.klederson.com/internal/lifecycle"
	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/presence"
	"ble-watch.klederson.com/internal/ui"
)

const maxRecentAlerts = 50

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	engine  *detector.Engine
	sink    feedback.Sink
	history *rssiHistory
	flash   flashState
	logger  *zap.Logger
}

// Options configures the TUI model.
type Options struct {
	Engine     *detector.Engine
	Sink       feedback.Sink
	Source     string
	PortalAddr string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	width  int
	height int

	source       string
	portalAddr   string
	scrollOffset int
	restart      bool
	now          time.Time

	shared *shared

	// Cached snapshots
	status  lifecycle.Status
	devices []presence.Record
	alerts  []presence.Alert
}

// New creates a new AppModel.
func New(opts Options) AppModel {
	return AppModel{
		source:     opts.Source,
		portalAddr: opts.PortalAddr,
		shared: &shared{
			engine:  opts.Engine,
			sink:    opts.Sink,
			history: newRSSIHistory(),
			logger:  logging.GetLoggerWith(logging.NameApp),
		},
	}
}

// RestartRequested reports whether the model quit because a factory
// reset fired.
func (m AppModel) RestartRequested() bool { return m.restart }

func (m AppModel) Init() tea.Cmd {
	return tickCmd()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		return m.tick(time.Time(msg))

	case ScanErrorMsg:
		m.shared.logger.Error("Scanner error", zap.Error(msg.Err))
		return m, nil
	}

	return m, nil
}

func (m AppModel) tick(now time.Time) (tea.Model, tea.Cmd) {
	m.now = now
	res, events := Pump(m.shared.engine, m.shared.sink, now)

	for _, ev := range events {
		switch ev.Kind {
		case detector.EventReady:
			m.shared.flash.start("READY TO SCAN", feedback.ReadyPattern, now)
		case detector.EventAlert:
			m.alerts = append(m.alerts, ev.Alert)
			m.shared.flash.start(feedback.FormatAlert(ev.Alert), feedback.PatternFor(ev.Alert.Kind), now)
		}
	}
	if len(m.alerts) > maxRecentAlerts {
		m.alerts = m.alerts[len(m.alerts)-maxRecentAlerts:]
	}
	m.shared.flash.advance(now)

	if res.Restart {
		m.restart = true
		return m, tea.Quit
	}

	m.status = m.shared.engine.Machine().Status(now)
	m.devices = m.shared.engine.Tracker().Snapshot()
	m.shared.history.Update(m.devices)
	if m.scrollOffset >= len(m.devices) {
		m.scrollOffset = max(0, len(m.devices)-1)
	}
	return m, tickCmd()
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.scrollOffset > 0 {
			m.scrollOffset--
		}

	case "down", "j":
		if m.scrollOffset < len(m.devices)-1 {
			m.scrollOffset++
		}

	case "home":
		m.scrollOffset = 0

	case "end":
		if len(m.devices) > 0 {
			m.scrollOffset = len(m.devices) - 1
		}
	}

	return m, nil
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing BLE Watch..."
	}

	bodyH := m.height - 2 // menu + status
	if bodyH < 8 {
		bodyH = 8
	}
	leftW := m.width / 2
	if leftW < 30 {
		leftW = 30
	}
	rightW := m.width - leftW
	if rightW < 20 {
		rightW = 20
	}

	menuBar := ui.RenderMenuBar(m.width, m.source, m.status.Mode)
	statusBar := ui.RenderStatusBar(m.width, m.status.Mode, ui.StatusCounts{
		Tracked: len(m.devices),
		Filters: len(m.status.Entries),
		Alerts:  len(m.alerts),
		Ignored: m.shared.engine.Ignored(),
	})

	alertH := bodyH / 2
	alertPanel := ui.RenderAlertPanel(m.alerts, m.shared.flash.view(), rightW, alertH, m.now)

	var left, topRight string
	if m.status.Mode == lifecycle.Configuring {
		left = ui.RenderConfigPanel(m.status, m.portalAddr, leftW, bodyH, m.now)
		topRight = ui.RenderWatchlistPanel(m.status.Entries, rightW, bodyH-alertH)
	} else {
		left = ui.RenderDeviceList(m.devices, leftW, bodyH, m.scrollOffset, m.now)
		if len(m.devices) > 0 {
			d := m.devices[m.scrollOffset]
			topRight = ui.RenderDetailPanel(d, m.shared.history.Values(d.Identifier), rightW, bodyH-alertH, m.now)
		} else {
			topRight = ui.RenderWatchlistPanel(m.status.Entries, rightW, bodyH-alertH)
		}
	}

	right := lipgloss.JoinVertical(lipgloss.Left, topRight, alertPanel)
	return ui.ComposeLayout(menuBar, left, right, statusBar)
}

func tickCmd() tea.Cmd {
	return tea.Tick(config.TickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
