// Package events carries domain events between the API and the notifier.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types, also used as RabbitMQ routing keys
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	ContactSubmitted = "contact.submitted"
)

// Exchange is the topic exchange all events are published to
const Exchange = "hideaway.events"

// Event is the envelope written to the wire
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v
func (e Event) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// New wraps payload in an envelope
func New(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Publisher emits domain events
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Handler processes one event
type Handler func(ctx context.Context, ev Event) error

// BookingPayload is the payload of booking.* events
type BookingPayload struct {
	BookingID  string  `json:"booking_id"`
	VillaID    string  `json:"villa_id"`
	VillaName  string  `json:"villa_name"`
	GuestName  string  `json:"guest_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone,omitempty"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Guests     int     `json:"guests"`
	Nights     int     `json:"nights"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason,omitempty"`
}

// ContactPayload is the payload of contact.submitted
type ContactPayload struct {
	SubmissionID string `json:"submission_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Message      string `json:"message"`
}
