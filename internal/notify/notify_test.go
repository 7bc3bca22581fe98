package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/email"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/events"
)

type sent struct {
	to, toName, replyTo, template, subject string
}

type fakeMailer struct {
	sent []sent
	err  error
}

func (m *fakeMailer) SendSync(_ context.Context, to, toName, replyTo, templateName, subject string, _ interface{}) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sent{to, toName, replyTo, templateName, subject})
	return nil
}

func dispatch(t *testing.T, router *events.Router, eventType string, payload interface{}) error {
	t.Helper()
	ev, err := events.New(eventType, payload)
	require.NoError(t, err)
	return router.Dispatch(testContext(t), ev)
}

func TestContactSubmittedGoesToResortInbox(t *testing.T) {
	mailer := &fakeMailer{}
	router := events.NewRouter()
	New(mailer, "info@apolloshideaway.com").Register(router)

	err := dispatch(t, router, events.ContactSubmitted, events.ContactPayload{
		SubmissionID: "s-1",
		Name:         "Ana",
		Email:        "ana@example.com",
		Message:      "Do you allow pets?",
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	got := mailer.sent[0]
	assert.Equal(t, "info@apolloshideaway.com", got.to)
	assert.Equal(t, "ana@example.com", got.replyTo)
	assert.Equal(t, email.TemplateContactNotification, got.template)
	assert.Equal(t, "New message from Ana", got.subject)
}

func TestContactSubmittedWithoutRecipient(t *testing.T) {
	mailer := &fakeMailer{}
	router := events.NewRouter()
	New(mailer, "").Register(router)

	require.NoError(t, dispatch(t, router, events.ContactSubmitted, events.ContactPayload{Name: "Ana"}))
	assert.Empty(t, mailer.sent)
}

func TestBookingEventsGoToGuest(t *testing.T) {
	mailer := &fakeMailer{}
	router := events.NewRouter()
	New(mailer, "info@apolloshideaway.com").Register(router)

	payload := events.BookingPayload{
		BookingID: "b-1",
		VillaName: "Villa Helios",
		GuestName: "Jo Smith",
		Email:     "jo@example.com",
		CheckIn:   "2026-07-01",
		CheckOut:  "2026-07-05",
	}
	for _, typ := range []string{events.BookingCreated, events.BookingConfirmed, events.BookingCancelled} {
		require.NoError(t, dispatch(t, router, typ, payload))
	}

	require.Len(t, mailer.sent, 3)
	assert.Equal(t, email.TemplateBookingReceived, mailer.sent[0].template)
	assert.Equal(t, email.TemplateBookingConfirmed, mailer.sent[1].template)
	assert.Equal(t, "Booking confirmed: Villa Helios, 2026-07-01 to 2026-07-05", mailer.sent[1].subject)
	assert.Equal(t, email.TemplateBookingCancelled, mailer.sent[2].template)
	for _, s := range mailer.sent {
		assert.Equal(t, "jo@example.com", s.to)
		assert.Equal(t, "Jo Smith", s.toName)
	}
}

func TestMailerErrorPropagates(t *testing.T) {
	router := events.NewRouter()
	New(&fakeMailer{err: errors.New("sendgrid down")}, "info@apolloshideaway.com").Register(router)

	err := dispatch(t, router, events.BookingConfirmed, events.BookingPayload{Email: "jo@example.com"})
	assert.Error(t, err)
}

func TestTemplatesRenderPayloads(t *testing.T) {
	svc := email.NewService(email.LogTransport{})
	defer svc.Close()

	_, err := svc.Render(email.TemplateBookingConfirmed, events.BookingPayload{VillaName: "Villa Helios", TotalPrice: 1250})
	require.NoError(t, err)
	_, err = svc.Render(email.TemplateContactNotification, events.ContactPayload{Name: "Ana", Message: "hi"})
	require.NoError(t, err)
	_, err = svc.Render(email.TemplateBookingCancelled, events.BookingPayload{Reason: "hold expired"})
	require.NoError(t, err)
}
