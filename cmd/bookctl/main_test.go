package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/password"
)

func TestHashPassword(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"hash-password", "-password", "olive-grove"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !password.Verify("olive-grove", strings.TrimSpace(stdout.String())) {
		t.Fatalf("printed hash does not verify: %q", stdout.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"frobnicate"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "usage") {
		t.Fatalf("expected usage, got %q", stderr.String())
	}
}

func TestWaitPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"session_id":"cs_1","status":"paid","payment_status":"paid","booking_id":"b-1"}`))
	}))
	t.Cleanup(server.Close)

	var stdout, stderr bytes.Buffer
	code := run([]string{"wait-payment", "-api", server.URL, "-session", "cs_1", "-interval", "1ms"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "paid: booking b-1") {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestWaitPaymentExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"session_id":"cs_1","status":"expired","payment_status":"unpaid","booking_id":"b-1"}`))
	}))
	t.Cleanup(server.Close)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"wait-payment", "-api", server.URL, "-session", "cs_1"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "expired") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}
