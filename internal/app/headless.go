package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/detector"
	"ble-watch.klederson.com/internal/feedback"
	"ble-watch.klederson.com/internal/logging"
)

// RunHeadless drives the tick loop without a terminal UI until ctx is
// done or a factory reset fires. It reports whether a restart is due.
func RunHeadless(ctx context.Context, e *detector.Engine, sink feedback.Sink) bool {
	return runHeadless(ctx, e, sink, config.TickInterval)
}

func runHeadless(ctx context.Context, e *detector.Engine, sink feedback.Sink, interval time.Duration) bool {
	logger := logging.GetLoggerWith(logging.NameApp, zap.Bool("headless", true))
	logger.Info("Tick loop started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Tick loop stopped")
			return false
		case now := <-ticker.C:
			if res, _ := Pump(e, sink, now); res.Restart {
				logger.Info("Tick loop ending for restart")
				return true
			}
		}
	}
}
