// Package detector wires the watchlist, the presence tracker and the
// lifecycle machine into the sighting path and the tick loop.
package detector

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/lifecycle"
	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/presence"
	"ble-watch.klederson.com/internal/schedule"
	"ble-watch.klederson.com/internal/watchlist"
)

// EventKind distinguishes the two outbound signals.
type EventKind int

const (
	EventAlert EventKind = iota
	EventReady
)

// Event is handed from the sighting context to the tick loop.
type Event struct {
	Kind  EventKind
	Alert presence.Alert
}

type Options struct {
	Watchlist *watchlist.Store
	Persister lifecycle.Persister
	Windows   presence.Windows
	Timeout   time.Duration
	QueueSize int
	Now       time.Time

	// OnScanning runs once when scanning starts, from the tick goroutine.
	OnScanning func()
	// OnRestart runs when a scheduled factory reset fires.
	OnRestart func()
}

// Engine is the detection core. OnSighting may be called from any
// goroutine; Tick and Drain belong to the single tick loop.
type Engine struct {
	store   *watchlist.Store
	tracker *presence.Tracker
	queue   *schedule.Queue
	machine *lifecycle.Machine
	events  chan Event

	scanning atomic.Bool
	restart  atomic.Bool
	ignored  atomic.Int64
	dropped  atomic.Int64

	lastSweep  time.Time
	lastStatus time.Time

	onScanning func()
	onRestart  func()
	logger     *zap.Logger
}

func New(opts Options) *Engine {
	if opts.Watchlist == nil {
		opts.Watchlist = watchlist.NewStore(nil)
	}
	if opts.Windows == (presence.Windows{}) {
		opts.Windows = presence.DefaultWindows()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = config.AlertQueueSize
	}

	e := &Engine{
		store:      opts.Watchlist,
		tracker:    presence.NewTracker(opts.Windows),
		queue:      schedule.NewQueue(),
		events:     make(chan Event, opts.QueueSize),
		onScanning: opts.OnScanning,
		onRestart:  opts.OnRestart,
		logger:     logging.GetLoggerWith(logging.NameDetector),
	}
	e.machine = lifecycle.New(lifecycle.Options{
		Watchlist: e.store,
		Queue:     e.queue,
		Persister: opts.Persister,
		Hooks:     e,
		Timeout:   opts.Timeout,
		Now:       opts.Now,
	})
	return e
}

// Machine exposes the lifecycle machine to the configuration channel.
func (e *Engine) Machine() *lifecycle.Machine { return e.machine }

func (e *Engine) Tracker() *presence.Tracker { return e.tracker }

func (e *Engine) Watchlist() *watchlist.Store { return e.store }

func (e *Engine) Events() <-chan Event { return e.events }

func (e *Engine) Scanning() bool { return e.scanning.Load() }

func (e *Engine) RestartRequested() bool { return e.restart.Load() }

// Ignored returns how many sightings arrived outside scanning mode.
func (e *Engine) Ignored() int64 { return e.ignored.Load() }

// OnSighting runs the match and debounce path for one advertisement.
func (e *Engine) OnSighting(identifier string, rssi int, at time.Time) {
	if !e.scanning.Load() {
		e.ignored.Add(1)
		return
	}

	id, label, ok := e.store.Match(identifier)
	if !ok {
		return
	}

	kind := e.tracker.Observe(id, rssi, label, at)
	if kind == presence.Suppressed {
		return
	}
	e.push(Event{Kind: EventAlert, Alert: presence.NewAlert(kind, id, rssi, label, at)})
}

// push never blocks: when the queue is full the oldest event is dropped.
func (e *Engine) push(ev Event) {
	for {
		select {
		case e.events <- ev:
			return
		default:
		}
		select {
		case <-e.events:
			e.dropped.Add(1)
		default:
		}
	}
}

// Drain hands every queued event to fn without blocking.
func (e *Engine) Drain(fn func(Event)) int {
	n := 0
	for {
		select {
		case ev := <-e.events:
			fn(ev)
			n++
		default:
			return n
		}
	}
}

// Tick advances the lifecycle and runs the periodic sweep and status log.
func (e *Engine) Tick(now time.Time) lifecycle.Result {
	res := e.machine.Tick(now)
	if res.Restart || !e.scanning.Load() {
		return res
	}

	if now.Sub(e.lastSweep) >= config.SweepInterval {
		e.lastSweep = now
		if removed := e.tracker.Sweep(now); len(removed) > 0 {
			for _, id := range removed {
				e.logger.Info("Removed stale device", zap.String(logging.FieldIdentifier, id))
			}
			e.logger.Info("Cleaned up stale devices", zap.Int("removed", len(removed)))
		}
	}

	if now.Sub(e.lastStatus) >= config.StatusInterval {
		e.lastStatus = now
		e.logger.Info("Scanning status",
			zap.Int("tracked", e.tracker.Count()),
			zap.Int("filters", e.store.Len()))
	}

	if d := e.dropped.Swap(0); d > 0 {
		e.logger.Warn("Alert queue full, dropped oldest alerts", zap.Int64("dropped", d))
	}
	return res
}

// EnterScanning implements lifecycle.Hooks.
func (e *Engine) EnterScanning(now time.Time) {
	e.lastSweep = now
	e.lastStatus = now
	e.scanning.Store(true)

	if n := e.ignored.Load(); n > 0 {
		e.logger.Debug("Sightings ignored while configuring", zap.Int64("ignored", n))
	}
	e.logger.Info("Ready to scan", zap.Int("filters", e.store.Len()))
	e.push(Event{Kind: EventReady})

	if e.onScanning != nil {
		e.onScanning()
	}
}

// Restart implements lifecycle.Hooks.
func (e *Engine) Restart() {
	e.scanning.Store(false)
	e.restart.Store(true)
	e.logger.Info("Restart requested")
	if e.onRestart != nil {
		e.onRestart()
	}
}
