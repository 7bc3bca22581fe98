package config

import (
	"testing"
	"time"
)

func TestParseStringSlice(t *testing.T) {
	got := parseStringSlice(" http://localhost:3000, https://apolloshideaway.com ,,")
	if len(got) != 2 {
		t.Fatalf("expected 2 origins, got %d (%v)", len(got), got)
	}
	if got[0] != "http://localhost:3000" || got[1] != "https://apolloshideaway.com" {
		t.Fatalf("unexpected origins: %v", got)
	}
	if len(parseStringSlice("")) != 0 {
		t.Fatalf("expected empty slice for empty input")
	}
}

func TestParseDurationFallsBack(t *testing.T) {
	if d := parseDuration("nope", 3*time.Minute); d != 3*time.Minute {
		t.Fatalf("expected fallback, got %s", d)
	}
	if d := parseDuration("90s", time.Minute); d != 90*time.Second {
		t.Fatalf("expected 90s, got %s", d)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STRIPE_API_KEY", "")
	t.Setenv("ENV", "development")
	t.Setenv("PAYMENT_CURRENCY", "USD")

	cfg := Load()
	if cfg.PaymentCurrency != "usd" {
		t.Fatalf("expected lower-cased currency, got %q", cfg.PaymentCurrency)
	}
	if !cfg.UseSandboxPayments() {
		t.Fatalf("expected sandbox payments without a Stripe key in development")
	}

	t.Setenv("ENV", "production")
	if Load().UseSandboxPayments() {
		t.Fatalf("sandbox payments must never be used in production")
	}
}
