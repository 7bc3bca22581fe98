package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type captureTransport struct {
	mu   sync.Mutex
	sent []*Message
}

func (c *captureTransport) Send(_ context.Context, msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func TestSendSyncRendersTemplateInLayout(t *testing.T) {
	tr := &captureTransport{}
	svc := NewService(tr)
	defer svc.Close()

	err := svc.SendSync(context.Background(), "info@apolloshideaway.com", "", "ana@example.com", TemplateContactNotification, "New contact", map[string]string{
		"Name":    "Ana",
		"Email":   "ana@example.com",
		"Message": "Do you allow <pets>?",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(tr.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(tr.sent))
	}
	msg := tr.sent[0]
	if msg.ReplyTo != "ana@example.com" {
		t.Fatalf("unexpected reply-to %q", msg.ReplyTo)
	}
	if !strings.Contains(msg.HTMLContent, "APOLLO&#39;S HIDEAWAY") && !strings.Contains(msg.HTMLContent, "APOLLO'S HIDEAWAY") {
		t.Fatalf("expected base layout in body")
	}
	if !strings.Contains(msg.HTMLContent, "Do you allow &lt;pets&gt;?") {
		t.Fatalf("expected escaped message in body: %s", msg.HTMLContent)
	}
}

func TestSendSyncUnknownTemplate(t *testing.T) {
	svc := NewService(&captureTransport{})
	defer svc.Close()

	if err := svc.SendSync(context.Background(), "a@b.c", "", "", "missing", "x", nil); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestQueueDrainsOnClose(t *testing.T) {
	tr := &captureTransport{}
	svc := NewService(tr)

	svc.Queue("guest@example.com", "Guest", TemplateBookingCancelled, "Released", map[string]interface{}{
		"GuestName": "Guest", "VillaName": "Villa Athena", "CheckIn": "2026-07-01", "CheckOut": "2026-07-04", "BookingID": "b-1",
	})
	svc.Close()

	if len(tr.sent) != 1 {
		t.Fatalf("expected queued email to be sent on close, got %d", len(tr.sent))
	}
}

func TestSendGridClientRequest(t *testing.T) {
	var got sendGridRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer SG.key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	client := NewSendGridClient(SendGridConfig{APIKey: "SG.key", FromEmail: "reservations@apolloshideaway.com", FromName: "Apollo's Hideaway", Endpoint: server.URL})
	err := client.Send(context.Background(), &Message{To: "guest@example.com", Subject: "Hi", HTMLContent: "<p>x</p>", TextContent: "x"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if got.From.Email != "reservations@apolloshideaway.com" || got.Personalizations[0].To[0].Email != "guest@example.com" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(got.Content) != 2 || got.Content[0].Type != "text/plain" {
		t.Fatalf("expected text/plain first, got %+v", got.Content)
	}
}

func TestSendGridClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"message":"forbidden"}]}`))
	}))
	t.Cleanup(server.Close)

	client := NewSendGridClient(SendGridConfig{APIKey: "bad", Endpoint: server.URL})
	err := client.Send(context.Background(), &Message{To: "a@b.c", Subject: "x", HTMLContent: "x"})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
