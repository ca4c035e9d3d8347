package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/sitebundler/internal/errors"
)

// NATSNotifier submits telemetry events over NATS JetStream.
type NATSNotifier struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSNotifier connects to NATS and prepares a JetStream publisher.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if url == "" {
		return nil, errors.TelemetryError("telemetry NATS URL is required")
	}
	if subject == "" {
		return nil, errors.TelemetryError("telemetry subject is required")
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	slog.Debug("Telemetry notifier initialized", slog.String("url", url), slog.String("subject", subject))
	return &NATSNotifier{conn: conn, js: js, subject: subject}, nil
}

// Notify publishes one event. The publish is bounded so telemetry can never
// stall build finalization.
func (n *NATSNotifier) Notify(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal telemetry event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := n.js.Publish(pubCtx, n.subject, data); err != nil {
		return fmt.Errorf("publish telemetry event: %w", err)
	}
	return nil
}

// Close closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
