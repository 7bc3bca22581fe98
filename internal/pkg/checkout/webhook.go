package checkout

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureTolerance bounds the age of a signed webhook
const SignatureTolerance = 5 * time.Minute

// ParseWebhook verifies the Stripe-Signature header and decodes the event
func (c *StripeClient) ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	if err := VerifySignature(payload, signatureHeader, c.config.WebhookSecret, c.now()); err != nil {
		return nil, err
	}
	return decodeEvent(payload)
}

// VerifySignature validates a Stripe-Signature header of the form
// "t=<unix>,v1=<hex hmac>[,v1=...]" against payload.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	if secret == "" || header == "" {
		return ErrInvalidSignature
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signatures = append(signatures, v)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > SignatureTolerance || age < -SignatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := computeSignature(payload, timestamp, secret)
	for _, sig := range signatures {
		given, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(given, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignatureHeader builds a Stripe-Signature header, used by tests and the
// sandbox gateway
func SignatureHeader(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return "t=" + ts + ",v1=" + hex.EncodeToString(computeSignature(payload, ts, secret))
}

func computeSignature(payload []byte, timestamp, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(timestamp))
	h.Write([]byte("."))
	h.Write(payload)
	return h.Sum(nil)
}

type rawEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object Session `json:"object"`
	} `json:"data"`
}

func decodeEvent(payload []byte) (*WebhookEvent, error) {
	var ev rawEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("failed to parse webhook payload: missing event type")
	}
	return &WebhookEvent{ID: ev.ID, Type: ev.Type, Session: ev.Data.Object}, nil
}
