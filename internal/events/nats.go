package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/artificial-intelligence-first/docstage/internal/logfields"
)

// publishTimeout bounds how long a single publish may hold up its caller.
const publishTimeout = 5 * time.Second

// NATSPublisher publishes run events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS. A connection failure here is returned
// to the caller; commands that enable events treat it as fatal at startup.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("NATS URL is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("event subject is required")
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher connected",
		logfields.URL(url),
		logfields.Subject(subject))

	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishRun publishes one run event and flushes it to the server.
func (p *NATSPublisher) PublishRun(ctx context.Context, event RunEvent) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}

	slog.Debug("Published run event",
		logfields.RunID(event.RunID),
		logfields.Subject(p.subject),
		logfields.Outcome(event.Outcome))
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
