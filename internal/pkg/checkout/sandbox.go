package checkout

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SandboxGateway is an in-memory checkout provider for development and
// tests. Sessions are paid or cancelled through the pages served by
// Routes instead of a real card form.
type SandboxGateway struct {
	baseURL       string
	webhookSecret string
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*sandboxSession
}

type sandboxSession struct {
	session    Session
	successURL string
	cancelURL  string
}

// NewSandboxGateway creates a sandbox gateway whose checkout pages live
// under baseURL + "/sandbox/checkout"
func NewSandboxGateway(baseURL, webhookSecret string) *SandboxGateway {
	return &SandboxGateway{
		baseURL:       strings.TrimRight(baseURL, "/"),
		webhookSecret: webhookSecret,
		now:           time.Now,
		sessions:      make(map[string]*sandboxSession),
	}
}

func (g *SandboxGateway) Name() string { return "sandbox" }

func (g *SandboxGateway) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	id := "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	expiresAt := req.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = g.now().Add(24 * time.Hour)
	}

	metadata := make(map[string]string, len(req.Metadata))
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	s := &sandboxSession{
		session: Session{
			ID:            id,
			URL:           g.baseURL + "/sandbox/checkout/" + id,
			Status:        SessionOpen,
			PaymentStatus: PaymentUnpaid,
			AmountTotal:   ToMinorUnits(req.Amount),
			Currency:      strings.ToLower(req.Currency),
			Metadata:      metadata,
			ExpiresAt:     expiresAt.Unix(),
		},
		successURL: req.SuccessURL,
		cancelURL:  req.CancelURL,
	}

	g.mu.Lock()
	g.sessions[id] = s
	g.mu.Unlock()

	out := s.session
	return &out, nil
}

func (g *SandboxGateway) GetSession(_ context.Context, sessionID string) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.session.Status == SessionOpen && g.now().Unix() >= s.session.ExpiresAt {
		s.session.Status = SessionExpired
	}
	out := s.session
	return &out, nil
}

func (g *SandboxGateway) ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	if err := VerifySignature(payload, signatureHeader, g.webhookSecret, g.now()); err != nil {
		return nil, err
	}
	return decodeEvent(payload)
}

// Complete marks a session as paid
func (g *SandboxGateway) Complete(sessionID string) error {
	return g.transition(sessionID, SessionComplete, PaymentPaid)
}

// Expire marks an unpaid session as expired
func (g *SandboxGateway) Expire(sessionID string) error {
	return g.transition(sessionID, SessionExpired, PaymentUnpaid)
}

func (g *SandboxGateway) transition(sessionID, status, paymentStatus string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if s.session.Status != SessionOpen {
		return fmt.Errorf("sandbox session %s is already %s", sessionID, s.session.Status)
	}
	s.session.Status = status
	s.session.PaymentStatus = paymentStatus
	return nil
}

func (g *SandboxGateway) redirectURLs(sessionID string) (success, cancel string, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, found := g.sessions[sessionID]
	if !found {
		return "", "", false
	}
	return strings.ReplaceAll(s.successURL, "{CHECKOUT_SESSION_ID}", sessionID), s.cancelURL, true
}

var sandboxPage = template.Must(template.New("checkout").Parse(`<!doctype html>
<html><head><title>Sandbox checkout</title></head>
<body style="font-family: sans-serif; max-width: 480px; margin: 48px auto;">
<h2>Sandbox checkout</h2>
<p>Session <code>{{.ID}}</code></p>
<p>Amount: {{.Amount}} {{.Currency}}</p>
<form method="post" action="{{.ID}}/pay"><button type="submit">Pay</button></form>
<form method="post" action="{{.ID}}/cancel"><button type="submit">Cancel</button></form>
</body></html>`))

// Routes serves the sandbox checkout pages
func (g *SandboxGateway) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		s, err := g.GetSession(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = sandboxPage.Execute(w, map[string]string{
			"ID":       s.ID,
			"Amount":   fmt.Sprintf("%.2f", FromMinorUnits(s.AmountTotal)),
			"Currency": strings.ToUpper(s.Currency),
		})
	})

	r.Post("/{id}/pay", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		success, _, ok := g.redirectURLs(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := g.Complete(id); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Redirect(w, r, success, http.StatusSeeOther)
	})

	r.Post("/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		_, cancel, ok := g.redirectURLs(chi.URLParam(r, "id"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, cancel, http.StatusSeeOther)
	})

	return r
}
