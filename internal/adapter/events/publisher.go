// Package events publishes payment lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"multichain-settlement/config"
	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/metrics"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Conn is the publishing side of *nats.Conn.
type Conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

// NATSPublisher implements ports.EventPublisher. Subjects are
// "<prefix>.<status>", e.g. "payments.confirmed".
type NATSPublisher struct {
	conn   Conn
	prefix string
	log    zerolog.Logger
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(conn Conn, prefix string, log zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{
		conn:   conn,
		prefix: strings.TrimSuffix(prefix, "."),
		log:    log.With().Str("component", "events").Logger(),
	}
}

// Connect dials NATS with reconnects left to the client library.
func Connect(cfg config.NATSConfig, log zerolog.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("multichain-settlement"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	log.Info().Str("url", conn.ConnectedUrl()).Msg("NATS connection established")
	return conn, nil
}

// Subject returns the subject an event is published on.
func (p *NATSPublisher) Subject(status domain.PaymentStatus) string {
	return p.prefix + "." + strings.ToLower(string(status))
}

// Publish sends the event. The payment id doubles as the message id so
// JetStream streams can drop duplicates.
func (p *NATSPublisher) Publish(ctx context.Context, event domain.PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payment event: %w", err)
	}

	msg := nats.NewMsg(p.Subject(event.Status))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, event.PaymentID.String()+":"+string(event.Status))
	msg.Header.Set("Content-Type", "application/json")

	if err := p.conn.PublishMsg(msg); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("flush %s: %w", msg.Subject, err)
	}

	metrics.EventsPublished.WithLabelValues("ok").Inc()
	p.log.Debug().Str("subject", msg.Subject).Str("payment_id", event.PaymentID.String()).Msg("Payment event published")
	return nil
}

// LogPublisher implements ports.EventPublisher by logging only. Used when
// no NATS URL is configured.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "events").Logger()}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event domain.PaymentEvent) error {
	p.log.Info().
		Str("payment_id", event.PaymentID.String()).
		Str("status", string(event.Status)).
		Msg("Payment event")
	metrics.EventsPublished.WithLabelValues("logged").Inc()
	return nil
}
