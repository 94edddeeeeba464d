// Package lifecycle owns the operating mode: configuration first, then
// scanning, with a one-way exit through a scheduled factory reset.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/schedule"
	"ble-watch.klederson.com/internal/watchlist"
)

//go:generate mockgen -source=machine.go -destination=mocks/mock_lifecycle.go -package=mocks

var (
	ErrEmptySubmission = errors.New("no valid watchlist entries submitted")
	ErrPersistence     = errors.New("persistence failure")
	ErrUnexpectedMode  = errors.New("unexpected mode")
)

// Mode is the operating mode.
type Mode int

const (
	Configuring Mode = iota
	Scanning
)

func (m Mode) String() string {
	if m == Scanning {
		return "scanning"
	}
	return "configuring"
}

// Persister stores the watchlist and the wipe-on-boot flag.
type Persister interface {
	SaveWatchlist(entries []watchlist.Entry) error
	SetFactoryResetPending(pending bool) error
}

// Hooks are invoked outside the machine lock when a transition happens.
type Hooks interface {
	// EnterScanning tears down the configuration channel and starts scanning.
	EnterScanning(now time.Time)
	// Restart discards all in-memory state and boots again.
	Restart()
}

// Options configures a Machine. Zero durations take the package defaults.
type Options struct {
	Watchlist   *watchlist.Store
	Queue       *schedule.Queue
	Persister   Persister
	Hooks       Hooks
	Timeout     time.Duration
	SwitchGrace time.Duration
	ResetGrace  time.Duration
	Now         time.Time
}

// Submission describes an accepted watchlist replacement.
type Submission struct {
	Accepted  []watchlist.Entry
	Dropped   int
	Persisted bool
	SwitchAt  time.Time
}

// Result reports what a Tick did.
type Result struct {
	Fired           []schedule.ActionKind
	EnteredScanning bool
	TimedOut        bool
	Restart         bool
}

// Status is a read-only view for the configuration portal and the TUI.
type Status struct {
	Mode           Mode
	ModeEnteredAt  time.Time
	LastActivityAt time.Time
	Interacted     bool
	TimeoutIn      time.Duration // zero once elapsed or after an interaction
	Entries        []watchlist.Entry
	Pending        []schedule.Action
}

// Machine is the lifecycle state machine. It is safe for concurrent use:
// the tick loop and portal handlers both call into it.
type Machine struct {
	mu     sync.Mutex
	saveMu sync.Mutex

	mode           Mode
	modeEnteredAt  time.Time
	lastActivityAt time.Time
	terminated     bool
	lastNotice     time.Time

	timeout     time.Duration
	switchGrace time.Duration
	resetGrace  time.Duration

	watchlist *watchlist.Store
	queue     *schedule.Queue
	persister Persister
	hooks     Hooks
	logger    *zap.Logger
}

// New creates a machine in Configuring mode entered at opts.Now.
func New(opts Options) *Machine {
	m := &Machine{
		mode:           Configuring,
		modeEnteredAt:  opts.Now,
		lastActivityAt: opts.Now,
		timeout:        opts.Timeout,
		switchGrace:    opts.SwitchGrace,
		resetGrace:     opts.ResetGrace,
		watchlist:      opts.Watchlist,
		queue:          opts.Queue,
		persister:      opts.Persister,
		hooks:          opts.Hooks,
		logger:         logging.GetLoggerWith(logging.NameLifecycle),
	}
	if m.timeout <= 0 {
		m.timeout = config.ConfigTimeout
	}
	if m.switchGrace <= 0 {
		m.switchGrace = config.SwitchGrace
	}
	if m.resetGrace <= 0 {
		m.resetGrace = config.ResetGrace
	}
	if m.watchlist == nil {
		m.watchlist = watchlist.NewStore(nil)
	}
	if m.queue == nil {
		m.queue = schedule.NewQueue()
	}
	return m
}

func (m *Machine) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Activity records an interaction on the configuration channel.
func (m *Machine) Activity(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Configuring || m.terminated {
		return
	}
	m.lastActivityAt = now
}

// SubmitWatchlist validates raw entries and replaces the watchlist with
// the valid ones. The switch to scanning is deferred by the grace window.
// The save happens after the machine lock is released; a failed save is
// logged and the in-memory list stays authoritative.
func (m *Machine) SubmitWatchlist(raw []watchlist.RawEntry, now time.Time) (Submission, error) {
	sub, err := m.submit(raw, now)
	if err != nil {
		return sub, err
	}

	sub.Persisted = m.persist()
	m.logger.Info("Watchlist accepted",
		zap.Int("entries", len(sub.Accepted)),
		zap.Bool("persisted", sub.Persisted),
		zap.Duration("switch_in", sub.SwitchAt.Sub(now)))
	for _, e := range sub.Accepted {
		m.logger.Debug("Watchlist entry",
			zap.String(logging.FieldIdentifier, e.Pattern),
			zap.String(logging.FieldKind, e.Kind().String()),
			zap.String(logging.FieldLabel, e.Label))
	}
	return sub, nil
}

func (m *Machine) submit(raw []watchlist.RawEntry, now time.Time) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode != Configuring || m.terminated {
		return Submission{}, fmt.Errorf("%w: watchlist submitted while %s", ErrUnexpectedMode, m.mode)
	}
	m.lastActivityAt = now

	accepted, dropped := watchlist.Build(raw)
	if dropped > 0 {
		m.logger.Info("Dropped invalid watchlist entries", zap.Int("dropped", dropped))
	}
	if len(accepted) == 0 {
		return Submission{Dropped: dropped}, ErrEmptySubmission
	}

	m.watchlist.Replace(accepted)
	switchAt := now.Add(m.switchGrace)
	m.queue.Schedule(schedule.SwitchToScanning, switchAt)

	return Submission{Accepted: accepted, Dropped: dropped, SwitchAt: switchAt}, nil
}

// Clear empties the watchlist and persists the empty list. The mode does
// not change.
func (m *Machine) Clear(now time.Time) (persisted bool, err error) {
	m.mu.Lock()
	if m.mode != Configuring || m.terminated {
		mode := m.mode
		m.mu.Unlock()
		return false, fmt.Errorf("%w: clear requested while %s", ErrUnexpectedMode, mode)
	}
	m.lastActivityAt = now
	m.watchlist.Replace(nil)
	m.mu.Unlock()

	persisted = m.persist()
	m.logger.Info("All filters cleared", zap.Bool("persisted", persisted))
	return persisted, nil
}

// RequestReset schedules a factory reset and restart, whatever the mode.
func (m *Machine) RequestReset(now time.Time) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == Configuring {
		m.lastActivityAt = now
	}
	fireAt := now.Add(m.resetGrace)
	m.queue.Schedule(schedule.FactoryResetAndRestart, fireAt)
	m.logger.Info("Device reset scheduled", zap.Duration("reset_in", m.resetGrace))
	return fireAt
}

// Tick fires due actions and applies the configuration timeout. The wipe
// flag write and the hooks run after the lock is released.
func (m *Machine) Tick(now time.Time) Result {
	res := m.tick(now)

	if res.Restart && m.persister != nil {
		if err := m.persister.SetFactoryResetPending(true); err != nil {
			m.logger.Error("Failed to persist factory reset flag",
				zap.Error(fmt.Errorf("%w: %w", ErrPersistence, err)))
		}
	}

	if m.hooks != nil {
		if res.EnteredScanning {
			m.hooks.EnterScanning(now)
		}
		if res.Restart {
			m.hooks.Restart()
		}
	}
	return res
}

func (m *Machine) tick(now time.Time) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res Result
	if m.terminated {
		return res
	}

	for _, kind := range m.queue.Poll(now) {
		res.Fired = append(res.Fired, kind)

		switch kind {
		case schedule.FactoryResetAndRestart:
			m.logger.Info("Scheduled device reset - setting factory reset flag and restarting")
			m.terminated = true
			res.Restart = true
			return res

		case schedule.SwitchToScanning:
			if m.mode != Configuring {
				m.logger.Debug("Ignoring mode switch", zap.String(logging.FieldMode, m.mode.String()))
				continue
			}
			m.logger.Info("Scheduled mode switch - switching to scanning mode")
			m.enterScanning(now)
			res.EnteredScanning = true
		}
	}

	if m.mode == Configuring {
		res.TimedOut = m.checkTimeout(now)
		if res.TimedOut {
			m.enterScanning(now)
			res.EnteredScanning = true
		}
	}
	return res
}

func (m *Machine) checkTimeout(now time.Time) bool {
	elapsed := now.Sub(m.modeEnteredAt)
	if elapsed <= m.timeout {
		return false
	}

	interacted := !m.lastActivityAt.Equal(m.modeEnteredAt)
	empty := m.watchlist.Len() == 0

	switch {
	case !interacted && !empty:
		m.logger.Info("Nobody connected - using saved filters, switching to scanning mode",
			zap.Duration("timeout", m.timeout))
		return true
	case !interacted && empty:
		m.notice(now, "Nobody connected and no saved filters - staying in configuration mode")
	case interacted:
		m.notice(now, "Configuration portal in use - waiting for configuration submission")
	}
	return false
}

func (m *Machine) notice(now time.Time, msg string) {
	if !m.lastNotice.IsZero() && now.Sub(m.lastNotice) < config.StatusInterval {
		return
	}
	m.lastNotice = now
	m.logger.Info(msg)
}

func (m *Machine) enterScanning(now time.Time) {
	m.mode = Scanning
	m.modeEnteredAt = now
	m.logger.Info("Entering scanning mode",
		zap.Int("entries", m.watchlist.Len()),
		zap.String(logging.FieldMode, m.mode.String()))
}

// persist writes the current watchlist. Saves are serialized on their own
// mutex and always write the latest list, so concurrent submissions cannot
// land out of order.
func (m *Machine) persist() bool {
	if m.persister == nil {
		return false
	}
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	if err := m.persister.SaveWatchlist(m.watchlist.Snapshot()); err != nil {
		m.logger.Error("Failed to save watchlist", zap.Error(fmt.Errorf("%w: %w", ErrPersistence, err)))
		return false
	}
	return true
}

// Status returns a snapshot of the machine for display.
func (m *Machine) Status(now time.Time) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Status{
		Mode:           m.mode,
		ModeEnteredAt:  m.modeEnteredAt,
		LastActivityAt: m.lastActivityAt,
		Interacted:     !m.lastActivityAt.Equal(m.modeEnteredAt),
		Entries:        m.watchlist.Snapshot(),
		Pending:        m.queue.Pending(),
	}
	if m.mode == Configuring && !s.Interacted {
		if left := m.timeout - now.Sub(m.modeEnteredAt); left > 0 {
			s.TimeoutIn = left
		}
	}
	return s
}
