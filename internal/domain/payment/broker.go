package payment

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const statusChannelPrefix = "payment:status:"

// StatusBroker fans session status changes out to stream subscribers,
// across API instances when backed by Redis.
type StatusBroker interface {
	Publish(ctx context.Context, update *StatusResponse) error
	// Subscribe returns a channel of updates for sessionID and a func that
	// releases the subscription.
	Subscribe(ctx context.Context, sessionID string) (<-chan *StatusResponse, func(), error)
}

// NewStatusBroker returns a Redis broker, or an in-process one when client is nil
func NewStatusBroker(client *redis.Client) StatusBroker {
	if client == nil {
		return NewMemoryBroker()
	}
	return &redisBroker{client: client}
}

type redisBroker struct {
	client *redis.Client
}

func (b *redisBroker) Publish(ctx context.Context, update *StatusResponse) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, statusChannelPrefix+update.SessionID, payload).Err()
}

func (b *redisBroker) Subscribe(ctx context.Context, sessionID string) (<-chan *StatusResponse, func(), error) {
	pubsub := b.client.Subscribe(ctx, statusChannelPrefix+sessionID)
	// Wait for confirmation so no publish is missed between subscribe and read.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	out := make(chan *StatusResponse, 4)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var update StatusResponse
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				log.Warn().Err(err).Str("session_id", sessionID).Msg("Invalid payment status message")
				continue
			}
			select {
			case out <- &update:
			default:
			}
		}
	}()

	return out, func() { pubsub.Close() }, nil
}

// MemoryBroker delivers updates to subscribers in this process only
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[string]map[chan *StatusResponse]struct{}
}

// NewMemoryBroker creates in-process broker
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[chan *StatusResponse]struct{})}
}

func (b *MemoryBroker) Publish(_ context.Context, update *StatusResponse) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[update.SessionID] {
		select {
		case ch <- update:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, sessionID string) (<-chan *StatusResponse, func(), error) {
	ch := make(chan *StatusResponse, 4)

	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan *StatusResponse]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[sessionID], ch)
			if len(b.subs[sessionID]) == 0 {
				delete(b.subs, sessionID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
