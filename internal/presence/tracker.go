// Package presence tracks watchlist devices that are nearby and decides
// which sightings deserve an alert.
package presence

import (
	"sort"
	"sync"
	"time"

	"ble-watch.klederson.com/internal/config"
)

// Record is the state kept for one matching device.
type Record struct {
	Identifier     string
	RSSI           int
	FirstSeen      time.Time
	LastSeen       time.Time
	CooldownActive bool
	CooldownUntil  time.Time
	Label          string
}

// Windows holds the debounce thresholds.
type Windows struct {
	NewCooldown   time.Duration
	ShortCooldown time.Duration
	LongCooldown  time.Duration
	ShortGap      time.Duration
	LongGap       time.Duration
	Expiry        time.Duration
}

// DefaultWindows returns the standard thresholds.
func DefaultWindows() Windows {
	return Windows{
		NewCooldown:   config.NewCooldown,
		ShortCooldown: config.ShortCooldown,
		LongCooldown:  config.LongCooldown,
		ShortGap:      config.ShortGap,
		LongGap:       config.LongGap,
		Expiry:        config.DeviceExpiry,
	}
}

// Tracker is a thread-safe set of records keyed by canonical identifier.
type Tracker struct {
	mu      sync.Mutex
	windows Windows
	records map[string]*Record
}

// NewTracker creates an empty tracker.
func NewTracker(w Windows) *Tracker {
	return &Tracker{
		windows: w,
		records: make(map[string]*Record),
	}
}

// Observe classifies a sighting of an already matched, canonical identifier.
func (t *Tracker) Observe(identifier string, rssi int, label string, now time.Time) Kind {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[identifier]
	if !ok {
		t.records[identifier] = &Record{
			Identifier:     identifier,
			RSSI:           rssi,
			FirstSeen:      now,
			LastSeen:       now,
			CooldownActive: true,
			CooldownUntil:  now.Add(t.windows.NewCooldown),
			Label:          label,
		}
		return New
	}

	if rec.CooldownActive {
		if now.Before(rec.CooldownUntil) {
			return Suppressed
		}
		rec.CooldownActive = false
	}

	gap := now.Sub(rec.LastSeen)
	kind := Suppressed
	switch {
	case gap >= t.windows.LongGap:
		kind = ReseenLong
		rec.CooldownActive = true
		rec.CooldownUntil = now.Add(t.windows.LongCooldown)
	case gap >= t.windows.ShortGap:
		kind = ReseenShort
		rec.CooldownActive = true
		rec.CooldownUntil = now.Add(t.windows.ShortCooldown)
	}

	rec.LastSeen = now
	rec.RSSI = rssi
	return kind
}

// Sweep drops records silent for at least the expiry window and returns
// their identifiers.
func (t *Tracker) Sweep(now time.Time) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []string
	for id, rec := range t.records {
		if now.Sub(rec.LastSeen) >= t.windows.Expiry {
			delete(t.records, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}

// Get returns a copy of the record for identifier.
func (t *Tracker) Get(identifier string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[identifier]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Snapshot returns copies of all records (strongest RSSI first).
func (t *Tracker) Snapshot() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		result = append(result, *r)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].RSSI != result[j].RSSI {
			return result[i].RSSI > result[j].RSSI
		}
		return result[i].Identifier < result[j].Identifier
	})
	return result
}

// Count returns the number of tracked devices.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
