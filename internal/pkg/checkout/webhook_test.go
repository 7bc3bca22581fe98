package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEvent = `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","status":"complete","payment_status":"paid","metadata":{"booking_id":"b-1"}}}}`

func TestParseWebhookVerifiesSignature(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	client := NewStripeClient(StripeConfig{APIKey: "sk", WebhookSecret: "whsec_test"})
	client.now = func() time.Time { return now }

	header := SignatureHeader([]byte(testEvent), "whsec_test", now)
	ev, err := client.ParseWebhook([]byte(testEvent), header)
	require.NoError(t, err)
	assert.Equal(t, EventSessionCompleted, ev.Type)
	assert.Equal(t, "cs_1", ev.Session.ID)
	assert.True(t, ev.Session.IsPaid())
	assert.Equal(t, "b-1", ev.Session.Metadata["booking_id"])
}

func TestVerifySignatureRejects(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	payload := []byte(testEvent)

	cases := map[string]string{
		"empty header":  "",
		"wrong secret":  SignatureHeader(payload, "other", now),
		"stale":         SignatureHeader(payload, "whsec_test", now.Add(-10*time.Minute)),
		"no signatures": "t=1760000000",
		"garbage":       "v1=zz,t=abc",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, VerifySignature(payload, header, "whsec_test", now), ErrInvalidSignature)
		})
	}

	tampered := []byte(testEvent + " ")
	assert.ErrorIs(t, VerifySignature(tampered, SignatureHeader(payload, "whsec_test", now), "whsec_test", now), ErrInvalidSignature)
}

func TestVerifySignatureAcceptsAnyV1(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	payload := []byte(testEvent)
	header := SignatureHeader(payload, "whsec_test", now) + ",v1=deadbeef"
	assert.NoError(t, VerifySignature(payload, header, "whsec_test", now))
}
