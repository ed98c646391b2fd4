// Package relay forwards compilation lifecycle events to NATS so external
// tooling (build dashboards, CI collectors) can observe runs. The relay is
// an ordinary bus subscriber; publish failures are logged and never fail
// the compilation.
package relay

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/eventbus"
	"git.home.luguber.info/inful/sitegen/internal/retry"
	"github.com/nats-io/nats.go"
)

// NATSRelay publishes lifecycle events to a NATS subject.
type NATSRelay struct {
	conn    *nats.Conn
	subject string
	runID   string
}

// Connect dials the NATS server and returns a relay publishing to subject.
// Transient connection failures are retried with backoff before giving up.
func Connect(ctx context.Context, url, subject, runID string) (*NATSRelay, error) {
	var conn *nats.Conn
	err := retry.DefaultPolicy().Do(ctx, func() error {
		var derr error
		conn, derr = nats.Connect(url, nats.Name("sitegen"))
		return derr
	})
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	slog.Info("Event relay connected", "url", url, "subject", subject)
	return &NATSRelay{conn: conn, subject: subject, runID: runID}, nil
}

// Attach subscribes the relay to all four lifecycle events on the bus.
func (r *NATSRelay) Attach(bus *eventbus.Bus) {
	for _, name := range []string{
		eventbus.EventCompilationStarted,
		eventbus.EventCompilationEnded,
		eventbus.EventFilteringStarted,
		eventbus.EventFilteringEnded,
	} {
		bus.Subscribe(name, r.forward)
	}
}

func (r *NATSRelay) forward(e eventbus.Event) error {
	subject := fmt.Sprintf("%s.%s", r.subject, e.Name())
	if err := r.conn.Publish(subject, e.Payload()); err != nil {
		slog.Warn("Failed to relay event", "event", e.Name(), "error", err)
	}
	return nil
}

// Close flushes pending messages and drops the connection.
func (r *NATSRelay) Close() {
	if err := r.conn.Flush(); err != nil {
		slog.Warn("Failed to flush event relay", "error", err)
	}
	r.conn.Close()
}
