// Package feedback renders alerts: logs, terminal bells, NATS events and
// Telegram messages.
package feedback

import (
	"fmt"

	"ble-watch.klederson.com/internal/presence"
)

// Sink receives alerts and the one-time ready signal.
type Sink interface {
	Alert(a presence.Alert)
	Ready()
}

// Pattern is how many pulses an alert gets.
type Pattern struct {
	Pulses    int
	Ascending bool
}

var ReadyPattern = Pattern{Pulses: 2, Ascending: true}

// PatternFor maps an alert kind to its pulse pattern.
func PatternFor(kind presence.Kind) Pattern {
	switch kind {
	case presence.New, presence.ReseenLong:
		return Pattern{Pulses: 3}
	case presence.ReseenShort:
		return Pattern{Pulses: 2}
	default:
		return Pattern{}
	}
}

// FormatAlert renders a one-line human description.
func FormatAlert(a presence.Alert) string {
	return fmt.Sprintf("%s %s %s (%d dBm)", a.Kind, a.Label, a.Identifier, a.RSSI)
}

// Multi fans out to every sink in order.
type Multi []Sink

func (m Multi) Alert(a presence.Alert) {
	for _, s := range m {
		s.Alert(a)
	}
}

func (m Multi) Ready() {
	for _, s := range m {
		s.Ready()
	}
}
