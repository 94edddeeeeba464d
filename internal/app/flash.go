package app

import (
	"time"

	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/feedback"
	"ble-watch.klederson.com/internal/ui"
)

// flashState animates an alert pattern as alternating on and off steps.
type flashState struct {
	text  string
	steps int
	step  int
	next  time.Time
}

func (f *flashState) start(text string, p feedback.Pattern, now time.Time) {
	f.text = text
	f.steps = p.Pulses * 2
	f.step = 0
	f.next = now.Add(config.PulseOn)
}

func (f *flashState) advance(now time.Time) {
	for f.step < f.steps && !now.Before(f.next) {
		f.step++
		if f.step%2 == 0 {
			f.next = f.next.Add(config.PulseOn)
		} else {
			f.next = f.next.Add(config.PulseOff)
		}
	}
}

func (f *flashState) view() ui.Flash {
	if f.step >= f.steps {
		return ui.Flash{}
	}
	if f.step%2 == 1 {
		return ui.Flash{Text: f.text, Pulse: -1}
	}
	return ui.Flash{Text: f.text, Pulse: f.step / 2}
}
