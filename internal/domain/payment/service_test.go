package payment

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollos-hideaway/hideaway-api/internal/domain/booking"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/checkout"
)

const webhookSecret = "whsec_test"

type memRepo struct {
	mu  sync.Mutex
	txs map[string]*Transaction
}

func newMemRepo() *memRepo { return &memRepo{txs: map[string]*Transaction{}} }

func (r *memRepo) Create(_ context.Context, t *Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.txs[t.SessionID] = &cp
	return nil
}

func (r *memRepo) GetBySessionID(_ context.Context, sessionID string) (*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *memRepo) GetOpenByBooking(_ context.Context, bookingID uuid.UUID, now time.Time) (*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs {
		if t.BookingID == bookingID && t.Status == StatusInitiated && t.ExpiresAt.Time.After(now) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) MarkCompleted(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[sessionID]
	if !ok || t.Status != StatusInitiated {
		return false, nil
	}
	t.Status, t.PaymentStatus = StatusCompleted, PaymentPaid
	return true, nil
}

func (r *memRepo) MarkClosed(_ context.Context, sessionID string, status Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[sessionID]
	if !ok || t.Status != StatusInitiated {
		return false, nil
	}
	t.Status, t.PaymentStatus = status, PaymentUnpaid
	return true, nil
}

func (r *memRepo) UpdatePaymentStatus(_ context.Context, sessionID string, ps PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.txs[sessionID]; ok && t.Status == StatusInitiated {
		t.PaymentStatus = ps
	}
	return nil
}

func (r *memRepo) ListStale(_ context.Context, now time.Time, _ int) ([]*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Transaction
	for _, t := range r.txs {
		if t.Status == StatusInitiated && t.ExpiresAt.Valid && t.ExpiresAt.Time.Before(now) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeBookings struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]*booking.Booking
	confirms   int
	confirmErr error
}

func (f *fakeBookings) add(status booking.Status) *booking.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &booking.Booking{
		ID:         uuid.New(),
		VillaID:    "villa-1",
		VillaName:  "Apollo's Sanctuary",
		Email:      "ana@example.com",
		CheckIn:    time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC),
		Nights:     2,
		TotalPrice: 1700,
		Status:     status,
	}
	f.bookings[b.ID] = b
	return b
}

func (f *fakeBookings) status(id uuid.UUID) booking.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookings[id].Status
}

func (f *fakeBookings) Get(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) AttachSession(_ context.Context, id uuid.UUID, sessionID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.bookings[id]
	if b.Status != booking.StatusPending {
		return booking.ErrInvalidTransition
	}
	b.PaymentSessionID.String, b.PaymentSessionID.Valid = sessionID, true
	return nil
}

func (f *fakeBookings) Confirm(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	b := f.bookings[id]
	if b.Status != booking.StatusConfirmed {
		f.confirms++
	}
	b.Status = booking.StatusConfirmed
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) CancelPending(_ context.Context, id uuid.UUID, _ string) (*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.bookings[id]
	if b.Status == booking.StatusPending {
		b.Status = booking.StatusCancelled
	}
	cp := *b
	return &cp, nil
}

type fixture struct {
	svc      *Service
	repo     *memRepo
	bookings *fakeBookings
	gateway  *checkout.SandboxGateway
}

func newFixture() *fixture {
	repo := newMemRepo()
	bookings := &fakeBookings{bookings: map[uuid.UUID]*booking.Booking{}}
	gateway := checkout.NewSandboxGateway("http://localhost:8001", webhookSecret)
	return &fixture{
		svc:      NewService(repo, bookings, gateway, "USD"),
		repo:     repo,
		bookings: bookings,
		gateway:  gateway,
	}
}

func (f *fixture) checkout(t *testing.T, b *booking.Booking) *CheckoutResponse {
	t.Helper()
	out, err := f.svc.CreateCheckout(context.Background(), &CheckoutRequest{
		BookingID: b.ID.String(),
		OriginURL: "https://apolloshideaway.com/",
	})
	require.NoError(t, err)
	return out
}

func TestCreateCheckout(t *testing.T) {
	f := newFixture()
	b := f.bookings.add(booking.StatusPending)

	out := f.checkout(t, b)
	assert.Contains(t, out.URL, "/sandbox/checkout/"+out.SessionID)

	tx, _ := f.repo.GetBySessionID(context.Background(), out.SessionID)
	require.NotNil(t, tx)
	assert.Equal(t, StatusInitiated, tx.Status)
	assert.Equal(t, PaymentPending, tx.PaymentStatus)
	assert.Equal(t, "usd", tx.Currency)
	assert.Equal(t, 1700.0, tx.Amount)
	assert.Equal(t, b.ID.String(), tx.Metadata["booking_id"])
	assert.Equal(t, "Apollo's Sanctuary", tx.Metadata["villa_name"])
	assert.Equal(t, "ana@example.com", tx.Metadata["guest_email"])

	sess, err := f.gateway.GetSession(context.Background(), out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(170000), sess.AmountTotal)

	again := f.checkout(t, b)
	assert.Equal(t, out.SessionID, again.SessionID, "open session is reused")
}

func TestCreateCheckoutRejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	confirmed := f.bookings.add(booking.StatusConfirmed)
	_, err := f.svc.CreateCheckout(ctx, &CheckoutRequest{BookingID: confirmed.ID.String(), OriginURL: "https://x.test"})
	assert.ErrorIs(t, err, booking.ErrAlreadyConfirmed)

	cancelled := f.bookings.add(booking.StatusCancelled)
	_, err = f.svc.CreateCheckout(ctx, &CheckoutRequest{BookingID: cancelled.ID.String(), OriginURL: "https://x.test"})
	assert.ErrorIs(t, err, booking.ErrBookingCancelled)

	_, err = f.svc.CreateCheckout(ctx, &CheckoutRequest{BookingID: "nope", OriginURL: "https://x.test"})
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)

	_, err = f.svc.CreateCheckout(ctx, &CheckoutRequest{BookingID: uuid.NewString(), OriginURL: "https://x.test"})
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestGetStatusPaidConfirmsOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.bookings.add(booking.StatusPending)
	out := f.checkout(t, b)

	status, err := f.svc.GetStatus(ctx, out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatePending, status.Status)
	assert.Equal(t, PaymentUnpaid, status.PaymentStatus)

	require.NoError(t, f.gateway.Complete(out.SessionID))
	for i := 0; i < 3; i++ {
		status, err = f.svc.GetStatus(ctx, out.SessionID)
		require.NoError(t, err)
		assert.Equal(t, StatePaid, status.Status)
		assert.Equal(t, PaymentPaid, status.PaymentStatus)
		assert.Equal(t, b.ID.String(), status.BookingID)
	}
	assert.Equal(t, 1, f.bookings.confirms)
	assert.Equal(t, booking.StatusConfirmed, f.bookings.status(b.ID))
}

func TestGetStatusExpiredReleasesHold(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.bookings.add(booking.StatusPending)
	out := f.checkout(t, b)

	require.NoError(t, f.gateway.Expire(out.SessionID))
	status, err := f.svc.GetStatus(ctx, out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StateExpired, status.Status)
	assert.Equal(t, booking.StatusCancelled, f.bookings.status(b.ID))

	_, err = f.svc.GetStatus(ctx, "cs_unknown")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestLatePaymentThatCannotBeConfirmedStillRecordsPayment(t *testing.T) {
	f := newFixture()
	b := f.bookings.add(booking.StatusPending)
	out := f.checkout(t, b)
	f.bookings.confirmErr = booking.ErrNotAvailable

	require.NoError(t, f.gateway.Complete(out.SessionID))
	status, err := f.svc.GetStatus(context.Background(), out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, status.PaymentStatus)
}

func webhookPayload(t *testing.T, eventType, sessionID, paymentStatus string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":   "evt_" + uuid.NewString(),
		"type": eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             sessionID,
				"status":         "complete",
				"payment_status": paymentStatus,
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func TestHandleWebhook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.bookings.add(booking.StatusPending)
	out := f.checkout(t, b)

	payload := webhookPayload(t, checkout.EventSessionCompleted, out.SessionID, checkout.PaymentPaid)

	err := f.svc.HandleWebhook(ctx, payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, checkout.ErrInvalidSignature)
	assert.Equal(t, booking.StatusPending, f.bookings.status(b.ID))

	sig := checkout.SignatureHeader(payload, webhookSecret, time.Now())
	require.NoError(t, f.svc.HandleWebhook(ctx, payload, sig))
	require.NoError(t, f.svc.HandleWebhook(ctx, payload, sig), "redelivery is a no-op")
	assert.Equal(t, booking.StatusConfirmed, f.bookings.status(b.ID))
	assert.Equal(t, 1, f.bookings.confirms)

	// The cached result is served without asking the gateway again.
	status, err := f.svc.GetStatus(ctx, out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatePaid, status.Status)

	unknown := webhookPayload(t, checkout.EventSessionCompleted, "cs_other", checkout.PaymentPaid)
	assert.NoError(t, f.svc.HandleWebhook(ctx, unknown, checkout.SignatureHeader(unknown, webhookSecret, time.Now())))
}

func TestReconcileSettlesStaleSessions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	paid := f.bookings.add(booking.StatusPending)
	paidOut := f.checkout(t, paid)
	require.NoError(t, f.gateway.Complete(paidOut.SessionID))

	abandoned := f.bookings.add(booking.StatusPending)
	abandonedOut := f.checkout(t, abandoned)
	require.NoError(t, f.gateway.Expire(abandonedOut.SessionID))

	f.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, booking.StatusConfirmed, f.bookings.status(paid.ID))
	assert.Equal(t, booking.StatusCancelled, f.bookings.status(abandoned.ID))
}

func TestExpiredSessionKeepsHoldForNewerSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.bookings.add(booking.StatusPending)

	start := time.Now()
	first := f.checkout(t, b)

	// The guest returns after the first session lapsed and opens another.
	f.svc.now = func() time.Time { return start.Add(31 * time.Minute) }
	second := f.checkout(t, b)
	require.NotEqual(t, first.SessionID, second.SessionID)

	require.NoError(t, f.gateway.Expire(first.SessionID))
	n, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stale, _ := f.repo.GetBySessionID(ctx, first.SessionID)
	assert.Equal(t, StatusExpired, stale.Status)
	assert.Equal(t, booking.StatusPending, f.bookings.status(b.ID), "hold kept while the newer session is open")

	require.NoError(t, f.gateway.Complete(second.SessionID))
	status, err := f.svc.GetStatus(ctx, second.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatePaid, status.Status)
	assert.Equal(t, booking.StatusConfirmed, f.bookings.status(b.ID))
}

func TestStatusUpdatesArePublished(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.bookings.add(booking.StatusPending)
	out := f.checkout(t, b)

	updates, cancel, err := f.svc.Broker().Subscribe(ctx, out.SessionID)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, f.gateway.Complete(out.SessionID))
	_, err = f.svc.GetStatus(ctx, out.SessionID)
	require.NoError(t, err)

	select {
	case update := <-updates:
		assert.Equal(t, StatePaid, update.Status)
		assert.True(t, update.IsTerminal())
	case <-time.After(time.Second):
		t.Fatal("expected a published status update")
	}
}
