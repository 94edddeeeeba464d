package bluetooth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/logging"
)

// BLEScanner handles Bluetooth Low Energy scanning.
type BLEScanner struct {
	adapter *bluetooth.Adapter
	restart time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	enabled bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewBLEScanner creates a scanner on the named adapter (hci0, hci1, ...).
// Only Linux can choose; other platforms always use their default adapter.
func NewBLEScanner(adapterID string) *BLEScanner {
	return &BLEScanner{
		adapter: adapterFor(adapterID),
		restart: config.ScanRestartInterval,
		logger:  logging.GetLoggerWith(logging.NameScanner),
	}
}

// Enable powers up the adapter. Start calls it when needed; calling it
// early surfaces permission problems before the portal comes up.
func (s *BLEScanner) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		return nil
	}
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}
	s.enabled = true
	return nil
}

// Start scans in a goroutine until ctx is done or Stop is called. The
// scan is stopped and started again every restart interval so stale
// adapter state never accumulates.
func (s *BLEScanner) Start(ctx context.Context, handler SightingHandler) error {
	if err := s.Enable(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go s.loop(ctx, handler, done)
	s.logger.Info("BLE scanning started", zap.Duration("restart", s.restart))
	return nil
}

func (s *BLEScanner) loop(ctx context.Context, handler SightingHandler, done chan struct{}) {
	defer close(done)

	for {
		scanDone := make(chan error, 1)
		go func() {
			scanDone <- s.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
				handler.OnSighting(result.Address.String(), int(result.RSSI), time.Now())
			})
		}()

		timer := time.NewTimer(s.restart)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = s.adapter.StopScan()
			<-scanDone
			return
		case err := <-scanDone:
			timer.Stop()
			if err != nil {
				s.logger.Warn("BLE scan ended", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restart):
			}
		case <-timer.C:
			_ = s.adapter.StopScan()
			if err := <-scanDone; err != nil {
				s.logger.Debug("BLE scan restart", zap.Error(err))
			}
		}
	}
}

// Stop halts the BLE scanner and waits for the scan goroutine.
func (s *BLEScanner) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("BLE scanning stopped")
}
