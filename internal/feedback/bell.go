package feedback

import (
	"io"
	"sync"
	"time"

	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/presence"
)

// BellSink rings the terminal bell once per pulse. It blocks for the
// length of the pattern, so wrap it in Async on the tick path.
type BellSink struct {
	mu    sync.Mutex
	w     io.Writer
	on    time.Duration
	off   time.Duration
	sleep func(time.Duration)
}

func NewBellSink(w io.Writer) *BellSink {
	return &BellSink{
		w:     w,
		on:    config.PulseOn,
		off:   config.PulseOff,
		sleep: time.Sleep,
	}
}

func (s *BellSink) Alert(a presence.Alert) {
	s.play(PatternFor(a.Kind))
}

func (s *BellSink) Ready() {
	s.play(ReadyPattern)
}

func (s *BellSink) play(p Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < p.Pulses; i++ {
		if i > 0 {
			s.sleep(s.off)
		}
		_, _ = io.WriteString(s.w, "\a")
		on := s.on
		if p.Ascending {
			on += time.Duration(i) * s.on / 2
		}
		s.sleep(on)
	}
}
