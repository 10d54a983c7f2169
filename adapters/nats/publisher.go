// Package nats publishes arena domain events to a NATS server.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lborres/arena/core"
)

// SubjectPrefix namespaces every published subject
const SubjectPrefix = "arena."

var _ core.EventPublisher = (*Publisher)(nil)

type Config struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name shown by the server
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // -1 for infinite
	Logger        *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "arena",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// Publisher sends JSON encoded events. Publishing is fire and forget;
// the connection buffers messages while reconnecting.
type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func Connect(config Config) (*Publisher, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "nats")

	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	logger.Info("connected", "url", nc.ConnectedUrl())

	return &Publisher{conn: nc, logger: logger}, nil
}

// Subject maps an event name to its wire subject
func Subject(event string) string {
	return SubjectPrefix + event
}

func (p *Publisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if err := p.conn.Publish(Subject(subject), data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("drain failed", "error", err)
	}
}
