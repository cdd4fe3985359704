// Package events fans order and contact notifications out to the message broker and the admin dashboard.
package events

import (
	"context"
	"errors"
	"log"
	"time"
)

const (
	OrderCreated       = "order.created"
	OrderPaid          = "order.paid"
	OrderStatusChanged = "order.status_changed"
	OrderCancelled     = "order.cancelled"
	ContactReceived    = "contact.received"

	envelopeVersion = 1
)

type Envelope struct {
	Event      string `json:"event"`
	Version    int    `json:"version"`
	OccurredAt string `json:"occurred_at"`
	Data       any    `json:"data"`
}

func NewEnvelope(event string, data any) Envelope {
	return Envelope{
		Event:      event,
		Version:    envelopeVersion,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event string, data any) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// Multi publishes to every sink and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event string, data any) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes and only logs failures; a lost notification never fails the request that caused it.
func Emit(ctx context.Context, p Publisher, event string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event, data); err != nil {
		log.Printf("⚠️ Failed to publish %s: %v", event, err)
	}
}
