// Package notify turns domain events into emails.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/email"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/events"
)

// Mailer sends a rendered template
type Mailer interface {
	SendSync(ctx context.Context, to, toName, replyTo, templateName, subject string, data interface{}) error
}

// Notifier sends guest and resort emails for domain events
type Notifier struct {
	mailer    Mailer
	recipient string
}

// New creates a notifier. recipient is the resort inbox for contact messages.
func New(mailer Mailer, recipient string) *Notifier {
	return &Notifier{mailer: mailer, recipient: recipient}
}

// Register binds the notifier's handlers on router
func (n *Notifier) Register(router *events.Router) {
	router.Handle(events.ContactSubmitted, n.contactSubmitted)
	router.Handle(events.BookingCreated, n.bookingCreated)
	router.Handle(events.BookingConfirmed, n.bookingConfirmed)
	router.Handle(events.BookingCancelled, n.bookingCancelled)
}

func (n *Notifier) contactSubmitted(ctx context.Context, ev events.Event) error {
	var p events.ContactPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	if n.recipient == "" {
		log.Warn().Str("submission_id", p.SubmissionID).Msg("No contact recipient configured, skipping email")
		return nil
	}

	subject := fmt.Sprintf("New message from %s", p.Name)
	return n.mailer.SendSync(ctx, n.recipient, "", p.Email, email.TemplateContactNotification, subject, p)
}

func (n *Notifier) bookingCreated(ctx context.Context, ev events.Event) error {
	var p events.BookingPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	subject := fmt.Sprintf("Your reservation at %s", p.VillaName)
	return n.mailer.SendSync(ctx, p.Email, p.GuestName, "", email.TemplateBookingReceived, subject, p)
}

func (n *Notifier) bookingConfirmed(ctx context.Context, ev events.Event) error {
	var p events.BookingPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	subject := fmt.Sprintf("Booking confirmed: %s, %s to %s", p.VillaName, p.CheckIn, p.CheckOut)
	return n.mailer.SendSync(ctx, p.Email, p.GuestName, "", email.TemplateBookingConfirmed, subject, p)
}

func (n *Notifier) bookingCancelled(ctx context.Context, ev events.Event) error {
	var p events.BookingPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	subject := fmt.Sprintf("Reservation released: %s", p.VillaName)
	return n.mailer.SendSync(ctx, p.Email, p.GuestName, "", email.TemplateBookingCancelled, subject, p)
}
