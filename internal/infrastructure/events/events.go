// Package events publishes domain events (booking and order lifecycle) to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const subjectRoot = "buffr"

// Subject builds "buffr.<tenant>.<entity>.<action>".
func Subject(tenantID, entity, action string) string {
	return fmt.Sprintf("%s.%s.%s.%s", subjectRoot, tenantID, entity, action)
}

// Envelope wraps every published payload.
type Envelope struct {
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher sends domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Noop drops every event. Used when NATS_URL is not set.
type Noop struct{}

func (Noop) Publish(ctx context.Context, subject string, payload any) error {
	return ctx.Err()
}

// NATSPublisher publishes JSON envelopes on a core NATS connection.
type NATSPublisher struct {
	nc *nats.Conn
}

// Connect dials NATS with reconnects enabled.
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("buffr-host"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("events: NATS disconnected")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

// Publish checks ctx before publishing because nats.Conn.Publish does not take one.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(Envelope{Subject: subject, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.nc.Publish(subject, data)
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

// New returns a NATS publisher for url, or Noop when url is empty.
func New(url string) (Publisher, func() error, error) {
	if url == "" {
		return Noop{}, func() error { return nil }, nil
	}
	p, err := Connect(url)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

// Emit publishes and logs a failure instead of returning it. Event delivery
// never fails the request that produced it.
func Emit(ctx context.Context, p Publisher, subject string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, payload); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("events: publish failed")
	}
}
