package bluetooth

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"ble-watch.klederson.com/internal/watchlist"
)

const (
	demoInterval   = 200 * time.Millisecond
	demoBystanders = 6
)

type demoDevice struct {
	mac       string
	baseRSSI  float64
	phase     float64
	amplitude float64
	awayUntil time.Time
}

// DemoScanner generates fake advertisements for demo mode. Some of its
// devices match the watchlist it was given; they wander in and out of
// range so every alert kind shows up.
type DemoScanner struct {
	rng      *rand.Rand
	watch    *watchlist.Store
	interval time.Duration

	mu      sync.Mutex
	devices []demoDevice
	cancel  context.CancelFunc
}

// NewDemoScanner builds devices from the store contents at Start time.
func NewDemoScanner(watch *watchlist.Store) *DemoScanner {
	return &DemoScanner{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		watch:    watch,
		interval: demoInterval,
	}
}

func (s *DemoScanner) Start(ctx context.Context, handler SightingHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	s.devices = buildDemoDevices(s.rng, s.watch.Snapshot())
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx, handler)
	return nil
}

func (s *DemoScanner) loop(ctx context.Context, handler SightingHandler) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.emit(handler, now)
		}
	}
}

func (s *DemoScanner) emit(handler SightingHandler, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := float64(now.UnixMilli()) / 1000
	for i := range s.devices {
		d := &s.devices[i]
		if now.Before(d.awayUntil) {
			continue
		}

		// Occasionally walk out of range, sometimes briefly, sometimes for long.
		if s.rng.Float64() < 0.004 {
			away := time.Duration(3+s.rng.Intn(45)) * time.Second
			d.awayUntil = now.Add(away)
			continue
		}

		rssi := d.baseRSSI + d.amplitude*math.Sin(t*0.5+d.phase) + (s.rng.Float64()-0.5)*4
		handler.OnSighting(d.mac, int(rssi), now)
	}
}

// Stop halts the demo scanner.
func (s *DemoScanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// buildDemoDevices creates one device per watchlist entry plus a few
// bystanders that match nothing.
func buildDemoDevices(rng *rand.Rand, entries []watchlist.Entry) []demoDevice {
	devices := make([]demoDevice, 0, len(entries)+demoBystanders)

	for _, e := range entries {
		mac := e.Pattern
		if !e.Exact {
			mac = e.Pattern + ":" + randomSuffix(rng, 3)
		}
		devices = append(devices, newDemoDevice(rng, strings.ToUpper(mac)))
	}
	for range demoBystanders {
		devices = append(devices, newDemoDevice(rng, randomMAC(rng)))
	}
	return devices
}

func newDemoDevice(rng *rand.Rand, mac string) demoDevice {
	return demoDevice{
		mac:       mac,
		baseRSSI:  -40 - rng.Float64()*50, // -40 to -90 dBm
		phase:     rng.Float64() * 2 * math.Pi,
		amplitude: 3 + rng.Float64()*8,
	}
}

func randomSuffix(rng *rand.Rand, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%02X", rng.Intn(256))
	}
	return strings.Join(parts, ":")
}

// randomMAC returns a locally administered unicast address, which never
// collides with a real vendor prefix.
func randomMAC(rng *rand.Rand) string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = byte(rng.Intn(256))
	}
	b[0] = (b[0] | 0x02) & 0xfe
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}
