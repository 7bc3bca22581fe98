package events

import (
	"context"
	"errors"
	"sync"
)

// Router dispatches events to the handlers registered for their type
type Router struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string][]Handler)}
}

// Handle registers h for eventType
func (r *Router) Handle(eventType string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[eventType] = append(r.handlers[eventType], h)
}

// Types returns the registered event types
func (r *Router) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// Dispatch runs every handler for ev and joins their errors. Events
// without handlers are ignored.
func (r *Router) Dispatch(ctx context.Context, ev Event) error {
	r.mu.RLock()
	hs := r.handlers[ev.Type]
	r.mu.RUnlock()

	var errs []error
	for _, h := range hs {
		if err := h(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
