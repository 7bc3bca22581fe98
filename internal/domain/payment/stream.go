package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/logger"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/response"
)

// WebSocket constants
const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	refreshInterval = 5 * time.Second
	maxStreamTime   = sessionTTL + 5*time.Minute
)

// Stream handles GET /payments/stream/{session_id}. It sends the current
// status, then every change until the session is paid or expired.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	l := logger.FromContext(r.Context()).With().Str("session_id", sessionID).Logger()

	if _, err := h.service.Lookup(r.Context(), sessionID); err != nil {
		h.writeError(w, r, err)
		return
	}

	// Subscribe before the first refresh so a transition in between is not lost.
	updates, unsubscribe, err := h.service.Broker().Subscribe(r.Context(), sessionID)
	if err != nil {
		l.Error().Err(err).Msg("Failed to subscribe to payment status")
		response.InternalError(w)
		return
	}
	defer unsubscribe()

	current, err := h.service.GetStatus(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), maxStreamTime)
	defer cancel()

	// Reader: handles pongs and notices the client going away.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(status *StatusResponse) bool {
		payload, err := json.Marshal(status)
		if err != nil {
			return false
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, payload) == nil
	}
	finish := func() {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	}

	if !send(current) {
		return
	}
	if current.IsTerminal() {
		finish()
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	refresh := time.NewTicker(refreshInterval)
	defer refresh.Stop()

	last := *current
	for {
		var next *StatusResponse
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				finish()
			}
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case update, ok := <-updates:
			if !ok {
				return
			}
			next = update
		case <-refresh.C:
			// Covers deployments without webhooks: the gateway is asked directly.
			status, err := h.service.GetStatus(ctx, sessionID)
			if err != nil {
				l.Debug().Err(err).Msg("Payment status refresh failed")
				continue
			}
			next = status
		}

		if next.Status == last.Status && next.PaymentStatus == last.PaymentStatus {
			continue
		}
		if !send(next) {
			return
		}
		last = *next
		if next.IsTerminal() {
			finish()
			return
		}
	}
}
