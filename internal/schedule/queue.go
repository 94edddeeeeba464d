// Package schedule holds deferred lifecycle actions until they are due.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// ActionKind identifies a deferred action. At most one of each is pending.
type ActionKind int

const (
	SwitchToScanning ActionKind = iota
	FactoryResetAndRestart
)

func (k ActionKind) String() string {
	switch k {
	case SwitchToScanning:
		return "switch-to-scanning"
	case FactoryResetAndRestart:
		return "factory-reset-and-restart"
	default:
		return "unknown"
	}
}

// Action is a pending deferred action.
type Action struct {
	Kind   ActionKind
	FireAt time.Time
}

// Queue keeps the latest deadline per kind. Actions leave only by firing.
type Queue struct {
	mu      sync.Mutex
	pending map[ActionKind]time.Time
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{pending: make(map[ActionKind]time.Time)}
}

// Schedule registers kind to fire at fireAt, replacing any pending deadline.
func (q *Queue) Schedule(kind ActionKind, fireAt time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[kind] = fireAt
}

// Poll removes and returns every action due at now, earliest first.
func (q *Queue) Poll(now time.Time) []ActionKind {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []Action
	for kind, at := range q.pending {
		if !at.After(now) {
			due = append(due, Action{Kind: kind, FireAt: at})
			delete(q.pending, kind)
		}
	}
	sortActions(due)

	kinds := make([]ActionKind, len(due))
	for i, a := range due {
		kinds[i] = a.Kind
	}
	return kinds
}

// Deadline reports the pending deadline for kind.
func (q *Queue) Deadline(kind ActionKind) (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	at, ok := q.pending[kind]
	return at, ok
}

// Pending returns the pending actions, earliest first.
func (q *Queue) Pending() []Action {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Action, 0, len(q.pending))
	for kind, at := range q.pending {
		out = append(out, Action{Kind: kind, FireAt: at})
	}
	sortActions(out)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func sortActions(actions []Action) {
	sort.Slice(actions, func(i, j int) bool {
		if !actions[i].FireAt.Equal(actions[j].FireAt) {
			return actions[i].FireAt.Before(actions[j].FireAt)
		}
		return actions[i].Kind < actions[j].Kind
	})
}
