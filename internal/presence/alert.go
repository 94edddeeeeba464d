package presence

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the debounce classification of a sighting.
type Kind int

const (
	Suppressed Kind = iota
	New
	ReseenShort
	ReseenLong
)

func (k Kind) String() string {
	switch k {
	case New:
		return "NEW"
	case ReseenShort:
		return "RE-5s"
	case ReseenLong:
		return "RE-30s"
	default:
		return "SUPPRESSED"
	}
}

// Alert is a non-suppressed classification ready for feedback.
type Alert struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"-"`
	Identifier string    `json:"identifier"`
	RSSI       int       `json:"rssi"`
	Label      string    `json:"label"`
	At         time.Time `json:"at"`
}

// NewAlert stamps an alert with a fresh ID.
func NewAlert(kind Kind, identifier string, rssi int, label string, at time.Time) Alert {
	return Alert{
		ID:         uuid.NewString(),
		Kind:       kind,
		Identifier: identifier,
		RSSI:       rssi,
		Label:      label,
		At:         at,
	}
}
