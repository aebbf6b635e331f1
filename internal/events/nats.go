package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes check-in events to "<subject>.<class id>".
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher creates a publisher on an established connection.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	if strings.TrimSpace(subject) == "" {
		subject = "ledger.checkins"
	}
	return &NATSPublisher{conn: conn, subject: subject}
}

// Connect dials NATS with the client name used by the service.
func Connect(url, name string) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}
	conn, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}
	return conn, nil
}

func (p *NATSPublisher) Publish(_ context.Context, event CheckInEvent) error {
	if p.conn == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(p.subject + "." + event.ClassID)
	msg.Data = payload
	if event.CorrelationID != "" {
		msg.Header.Set("X-Correlation-ID", event.CorrelationID)
	}
	return p.conn.PublishMsg(msg)
}
