package events

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrBusClosed is returned when publishing to a closed LocalBus
var ErrBusClosed = errors.New("event bus closed")

// LocalBus delivers events in-process through a buffered queue drained by
// one worker. It is used when no broker is configured.
type LocalBus struct {
	router *Router
	queue  chan Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewLocalBus starts the delivery worker
func NewLocalBus(router *Router, buffer int) *LocalBus {
	if buffer <= 0 {
		buffer = 100
	}
	b := &LocalBus{router: router, queue: make(chan Event, buffer)}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *LocalBus) run() {
	defer b.wg.Done()
	for ev := range b.queue {
		if err := b.router.Dispatch(context.Background(), ev); err != nil {
			log.Error().Err(err).Str("event_type", ev.Type).Str("event_id", ev.ID).Msg("Event handler failed")
		}
	}
}

func (b *LocalBus) Publish(ctx context.Context, eventType string, payload interface{}) error {
	ev, err := New(eventType, payload)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.queue <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for queued ones to be handled
func (b *LocalBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	b.wg.Wait()
}
