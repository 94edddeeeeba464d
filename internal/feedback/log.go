package feedback

import (
	"go.uber.org/zap"

	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/presence"
)

// LogSink writes every alert to the structured log.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{logger: logging.GetLoggerWith(logging.NameFeedback)}
}

func (s *LogSink) Alert(a presence.Alert) {
	s.logger.Info("Match found",
		zap.String(logging.FieldKind, a.Kind.String()),
		zap.String(logging.FieldIdentifier, a.Identifier),
		zap.String(logging.FieldLabel, a.Label),
		zap.Int("rssi", a.RSSI),
		zap.String("alert_id", a.ID))
}

func (s *LogSink) Ready() {
	s.logger.Info("Ready to scan")
}
