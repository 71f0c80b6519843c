// Package eventstest records published domain events for tests.
package eventstest

import (
	"context"
	"sync"
	"time"

	"buffr-host/internal/infrastructure/events"
)

// Recorder keeps published events in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (r *Recorder) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events.Envelope{Subject: subject, OccurredAt: time.Now().UTC(), Data: payload})
	return nil
}

// Subjects returns the subjects published so far, in order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Subject
	}
	return out
}
