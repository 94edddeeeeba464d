package app

import (
	"time"

	"ble-watch.klederson.com/internal/detector"
	"ble-watch.klederson.com/internal/feedback"
	"ble-watch.klederson.com/internal/lifecycle"
)

// Pump runs one tick of the engine and hands queued events to sink.
// The drained events are returned for display.
func Pump(e *detector.Engine, sink feedback.Sink, now time.Time) (lifecycle.Result, []detector.Event) {
	res := e.Tick(now)

	var events []detector.Event
	e.Drain(func(ev detector.Event) {
		events = append(events, ev)
		if sink == nil {
			return
		}
		switch ev.Kind {
		case detector.EventReady:
			sink.Ready()
		case detector.EventAlert:
			sink.Alert(ev.Alert)
		}
	})
	return res, events
}
