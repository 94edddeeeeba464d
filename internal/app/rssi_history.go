package app

import "ble-watch.klederson.com/internal/presence"

const historyCapacity = 120

// RSSIRing is a circular buffer for RSSI history values.
type RSSIRing struct {
	buf   []float64
	pos   int
	count int
}

// NewRSSIRing creates a new circular buffer with the given capacity.
func NewRSSIRing(capacity int) *RSSIRing {
	return &RSSIRing{buf: make([]float64, capacity)}
}

func (r *RSSIRing) Push(val float64) {
	r.buf[r.pos] = val
	r.pos = (r.pos + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Values returns all stored values in chronological order.
func (r *RSSIRing) Values() []float64 {
	if r.count == 0 {
		return nil
	}
	result := make([]float64, r.count)
	if r.count < len(r.buf) {
		copy(result, r.buf[:r.count])
	} else {
		n := copy(result, r.buf[r.pos:])
		copy(result[n:], r.buf[:r.pos])
	}
	return result
}

func (r *RSSIRing) Len() int { return r.count }

// rssiHistory samples each tracked device once per observed sighting and
// forgets devices the tracker no longer holds.
type rssiHistory struct {
	rings    map[string]*RSSIRing
	lastSeen map[string]int64
}

func newRSSIHistory() *rssiHistory {
	return &rssiHistory{
		rings:    make(map[string]*RSSIRing),
		lastSeen: make(map[string]int64),
	}
}

func (h *rssiHistory) Update(records []presence.Record) {
	live := make(map[string]struct{}, len(records))
	for _, r := range records {
		live[r.Identifier] = struct{}{}

		stamp := r.LastSeen.UnixNano()
		if h.lastSeen[r.Identifier] == stamp {
			continue
		}
		h.lastSeen[r.Identifier] = stamp

		ring, ok := h.rings[r.Identifier]
		if !ok {
			ring = NewRSSIRing(historyCapacity)
			h.rings[r.Identifier] = ring
		}
		ring.Push(float64(r.RSSI))
	}

	for id := range h.rings {
		if _, ok := live[id]; !ok {
			delete(h.rings, id)
			delete(h.lastSeen, id)
		}
	}
}

func (h *rssiHistory) Values(identifier string) []float64 {
	if ring, ok := h.rings[identifier]; ok {
		return ring.Values()
	}
	return nil
}
