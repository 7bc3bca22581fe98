package payment

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle of a payment transaction
type Status string

const (
	StatusInitiated Status = "initiated"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
	StatusFailed    Status = "failed"
)

// PaymentStatus mirrors the provider's view of collected funds
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnpaid  PaymentStatus = "unpaid"
)

// Session states reported to clients
const (
	StatePending = "pending"
	StatePaid    = "paid"
	StateExpired = "expired"
)

// Metadata handles the JSONB metadata column
type Metadata map[string]string

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", src)
	}
	return json.Unmarshal(raw, m)
}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Transaction records one hosted checkout session for a booking
type Transaction struct {
	ID            uuid.UUID     `db:"id"`
	SessionID     string        `db:"session_id"`
	BookingID     uuid.UUID     `db:"booking_id"`
	Amount        float64       `db:"amount"`
	Currency      string        `db:"currency"`
	Status        Status        `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	CheckoutURL   string        `db:"checkout_url"`
	Metadata      Metadata      `db:"metadata"`
	ExpiresAt     sql.NullTime  `db:"expires_at"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// State derives the client-facing session state
func (t *Transaction) State() string {
	switch t.Status {
	case StatusCompleted:
		return StatePaid
	case StatusExpired, StatusFailed:
		return StateExpired
	}
	return StatePending
}

// IsTerminal reports whether the session can no longer change
func (t *Transaction) IsTerminal() bool {
	return t.Status != StatusInitiated
}
