package feedback

import (
	"sync"
	"sync/atomic"

	"ble-watch.klederson.com/internal/presence"
)

type asyncItem struct {
	alert presence.Alert
	ready bool
}

// Async runs a slow sink on its own goroutine. When the buffer is full
// new items are dropped so the caller never blocks.
type Async struct {
	sink    Sink
	items   chan asyncItem
	dropped atomic.Int64
	wg      sync.WaitGroup
	once    sync.Once
}

func NewAsync(sink Sink, size int) *Async {
	if size <= 0 {
		size = 16
	}
	a := &Async{sink: sink, items: make(chan asyncItem, size)}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *Async) run() {
	defer a.wg.Done()
	for it := range a.items {
		if it.ready {
			a.sink.Ready()
			continue
		}
		a.sink.Alert(it.alert)
	}
}

func (a *Async) Alert(al presence.Alert) { a.offer(asyncItem{alert: al}) }

func (a *Async) Ready() { a.offer(asyncItem{ready: true}) }

func (a *Async) offer(it asyncItem) {
	select {
	case a.items <- it:
	default:
		a.dropped.Add(1)
	}
}

// Dropped returns how many items were discarded.
func (a *Async) Dropped() int64 { return a.dropped.Load() }

// Close flushes queued items and stops the worker. Sending after Close panics.
func (a *Async) Close() {
	a.once.Do(func() { close(a.items) })
	a.wg.Wait()
}
