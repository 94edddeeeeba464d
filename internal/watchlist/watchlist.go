package watchlist

import (
	"strings"
	"sync/atomic"
)

// Entry is one watchlist pattern. Pattern is always stored normalized.
type Entry struct {
	Pattern string `json:"identifier"`
	Exact   bool   `json:"is_exact"`
	Label   string `json:"label"`
}

// Kind reports whether the entry is a prefix or an exact pattern.
func (e Entry) Kind() Kind {
	if e.Exact {
		return Exact
	}
	return Prefix
}

// RawEntry is an operator submission before validation.
type RawEntry struct {
	Identifier string
	Label      string
}

// NewEntry validates raw and builds an entry. An empty label becomes
// "OUI: <pattern>" or "MAC: <pattern>".
func NewEntry(raw, label string) (Entry, error) {
	pattern, err := Normalize(raw)
	if err != nil {
		return Entry{}, err
	}
	kind := Classify(pattern)
	label = strings.TrimSpace(label)
	if label == "" {
		label = kind.String() + ": " + pattern
	}
	return Entry{Pattern: pattern, Exact: kind == Exact, Label: label}, nil
}

// Build validates every raw entry, keeping submission order. Invalid
// entries are dropped and counted.
func Build(raw []RawEntry) (entries []Entry, dropped int) {
	entries = make([]Entry, 0, len(raw))
	for _, r := range raw {
		e, err := NewEntry(r.Identifier, r.Label)
		if err != nil {
			dropped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, dropped
}

// Match returns the label of the first entry matching identifier.
// Order matters: the earliest entry wins even if a later one is more specific.
func Match(identifier string, entries []Entry) (string, bool) {
	id, err := Normalize(identifier)
	if err != nil {
		return "", false
	}
	return matchNormalized(id, entries)
}

func matchNormalized(id string, entries []Entry) (string, bool) {
	for _, e := range entries {
		if e.Exact {
			if id == e.Pattern {
				return e.Label, true
			}
			continue
		}
		if strings.HasPrefix(id, e.Pattern) {
			return e.Label, true
		}
	}
	return "", false
}

// Store publishes the current watchlist as an immutable snapshot.
// Readers never observe a partially replaced list.
type Store struct {
	current atomic.Pointer[[]Entry]
}

// NewStore creates a store holding a copy of entries.
func NewStore(entries []Entry) *Store {
	s := &Store{}
	s.Replace(entries)
	return s
}

// Replace swaps in a copy of entries.
func (s *Store) Replace(entries []Entry) {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	s.current.Store(&cp)
}

// Snapshot returns the current entries. Callers must not modify the slice.
func (s *Store) Snapshot() []Entry {
	return *s.current.Load()
}

func (s *Store) Len() int {
	return len(s.Snapshot())
}

// Match normalizes identifier once and matches it against the current
// snapshot. It returns the canonical identifier with the label.
func (s *Store) Match(identifier string) (id, label string, ok bool) {
	id, err := Normalize(identifier)
	if err != nil {
		return "", "", false
	}
	label, ok = matchNormalized(id, s.Snapshot())
	return id, label, ok
}
