package feedback

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/presence"
)

const (
	eventSource    = "ble-watch/detector"
	eventTypeAlert = "com.klederson.blewatch.alert"
	eventTypeReady = "com.klederson.blewatch.ready"
)

// CloudEvent is the envelope published for every alert.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// AlertData is the CloudEvent payload of an alert.
type AlertData struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier"`
	RSSI       int    `json:"rssi"`
	Label      string `json:"label"`
}

// Publisher is the subset of *nats.Conn used here.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes alerts as CloudEvents on a subject.
type NATSPublisher struct {
	pub     Publisher
	subject string
	logger  *zap.Logger
}

func NewNATSPublisher(pub Publisher, subject string) *NATSPublisher {
	return &NATSPublisher{
		pub:     pub,
		subject: subject,
		logger:  logging.GetLoggerWith(logging.NameFeedback, zap.String("sink", "nats")),
	}
}

// ConnectNATS dials url and returns a publisher with its connection.
func ConnectNATS(url, subject string, opts ...nats.Option) (*NATSPublisher, *nats.Conn, error) {
	opts = append([]nats.Option{nats.Name("ble-watch")}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewNATSPublisher(nc, subject), nc, nil
}

func (p *NATSPublisher) Alert(a presence.Alert) {
	at := a.At
	p.publish(CloudEvent{
		SpecVersion:     "1.0",
		ID:              a.ID,
		Source:          eventSource,
		Type:            eventTypeAlert,
		DataContentType: "application/json",
		Subject:         p.subject,
		Time:            &at,
		Data: AlertData{
			Kind:       a.Kind.String(),
			Identifier: a.Identifier,
			RSSI:       a.RSSI,
			Label:      a.Label,
		},
	})
}

func (p *NATSPublisher) Ready() {
	now := time.Now()
	p.publish(CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventTypeReady,
		DataContentType: "application/json",
		Subject:         p.subject,
		Time:            &now,
	})
}

func (p *NATSPublisher) publish(event CloudEvent) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}
	if err := p.pub.Publish(p.subject, eventBytes); err != nil {
		p.logger.Warn("Failed to publish event", zap.String("id", event.ID), zap.Error(err))
	}
}
