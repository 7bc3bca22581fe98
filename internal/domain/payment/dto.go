package payment

// CheckoutRequest for POST /payments/checkout
type CheckoutRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
	OriginURL string `json:"origin_url" validate:"required,http_url"`
}

// CheckoutResponse carries the hosted checkout redirect
type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// StatusResponse for GET /payments/status/{session_id} and stream frames
type StatusResponse struct {
	SessionID     string        `json:"session_id"`
	Status        string        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	BookingID     string        `json:"booking_id"`
}

// IsTerminal reports whether no further updates will follow
func (s *StatusResponse) IsTerminal() bool {
	return s.Status == StatePaid || s.Status == StateExpired
}

// ToStatusResponse converts entity to response
func ToStatusResponse(t *Transaction) *StatusResponse {
	return &StatusResponse{
		SessionID:     t.SessionID,
		Status:        t.State(),
		PaymentStatus: t.PaymentStatus,
		BookingID:     t.BookingID.String(),
	}
}
