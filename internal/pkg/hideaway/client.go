// Package hideaway is an HTTP client for the reservation API, used by the
// bookctl tool and by integration checks.
package hideaway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the API
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("hideaway api error: status=%d code=%s detail=%s", e.StatusCode, e.Code, e.Detail)
	}
	return fmt.Sprintf("hideaway api error: status=%d", e.StatusCode)
}

// Villa as returned by GET /api/villas
type Villa struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	MaxGuests     int      `json:"max_guests"`
	PricePerNight float64  `json:"price_per_night"`
	Amenities     []string `json:"amenities"`
	ImageURL      string   `json:"image_url"`
}

// Availability as returned by GET /api/bookings/availability
type Availability struct {
	Available bool   `json:"available"`
	VillaID   string `json:"villa_id"`
}

// BookingRequest is the body of POST /api/bookings
type BookingRequest struct {
	VillaID   string `json:"villa_id"`
	GuestName string `json:"guest_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Guests    int    `json:"guests"`
}

// Booking as returned by the bookings endpoints
type Booking struct {
	ID               string  `json:"id"`
	VillaID          string  `json:"villa_id"`
	VillaName        string  `json:"villa_name"`
	GuestName        string  `json:"guest_name"`
	Email            string  `json:"email"`
	CheckIn          string  `json:"check_in"`
	CheckOut         string  `json:"check_out"`
	Guests           int     `json:"guests"`
	Nights           int     `json:"nights"`
	TotalPrice       float64 `json:"total_price"`
	Status           string  `json:"status"`
	PaymentSessionID *string `json:"payment_session_id"`
}

// Checkout is the hosted checkout redirect
type Checkout struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// PaymentStatus as returned by GET /api/payments/status/{session_id}
type PaymentStatus struct {
	SessionID     string `json:"session_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	BookingID     string `json:"booking_id"`
}

// Paid reports whether the gateway captured the payment
func (s *PaymentStatus) Paid() bool { return s.PaymentStatus == "paid" }

// Expired reports whether the checkout session can no longer be paid
func (s *PaymentStatus) Expired() bool { return s.Status == "expired" }

// Client calls the reservation API
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the API rooted at baseURL (e.g. http://localhost:8001)
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Villas lists the catalog
func (c *Client) Villas(ctx context.Context) ([]Villa, error) {
	var out []Villa
	err := c.do(ctx, http.MethodGet, "/api/villas", nil, &out)
	return out, err
}

// Availability checks [checkIn, checkOut) for a villa
func (c *Client) Availability(ctx context.Context, villaID, checkIn, checkOut string) (*Availability, error) {
	q := url.Values{}
	q.Set("villa_id", villaID)
	q.Set("check_in", checkIn)
	q.Set("check_out", checkOut)

	var out Availability
	if err := c.do(ctx, http.MethodGet, "/api/bookings/availability?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBooking reserves a villa
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	var out Booking
	if err := c.do(ctx, http.MethodPost, "/api/bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBooking fetches a booking by id
func (c *Client) GetBooking(ctx context.Context, id string) (*Booking, error) {
	var out Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCheckout opens a checkout session for a booking
func (c *Client) CreateCheckout(ctx context.Context, bookingID, originURL string) (*Checkout, error) {
	body := map[string]string{"booking_id": bookingID, "origin_url": originURL}
	var out Checkout
	if err := c.do(ctx, http.MethodPost, "/api/payments/checkout", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PaymentStatus fetches the state of a checkout session
func (c *Client) PaymentStatus(ctx context.Context, sessionID string) (*PaymentStatus, error) {
	var out PaymentStatus
	if err := c.do(ctx, http.MethodGet, "/api/payments/status/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("hideaway request error: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("hideaway request error: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyRequestError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("hideaway read error: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("hideaway decode error: %w", err)
	}
	return nil
}

func classifyRequestError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("hideaway timeout: %w", err)
	}
	return fmt.Errorf("hideaway network error: %w", err)
}
