package notify

import (
	"context"
	"sync"

	"auction-dashboard/utils"
)

const subscriberBuffer = 16

// Hub fans payloads out to subscribers by recipient email. A single upstream
// consumer feeds it, so sources that allow one reader per stream can still
// serve many sessions.
type Hub struct {
	mu   sync.Mutex
	subs map[uint64]*subscriber
	next uint64
}

type subscriber struct {
	email string
	ch    chan []byte
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers email until ctx is done
func (h *Hub) Subscribe(ctx context.Context, email string) (<-chan []byte, error) {
	h.mu.Lock()
	h.next++
	id := h.next
	s := &subscriber{email: email, ch: make(chan []byte, subscriberBuffer)}
	h.subs[id] = s
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(s.ch)
		h.mu.Unlock()
	}()
	return s.ch, nil
}

// Dispatch delivers payload to recipient, or to every subscriber when
// recipient is empty. A subscriber whose buffer is full misses the message.
func (h *Hub) Dispatch(recipient string, payload []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for _, s := range h.subs {
		if recipient != "" && s.email != recipient {
			continue
		}
		select {
		case s.ch <- payload:
			delivered++
		default:
			utils.Warn("notify: subscriber buffer full, dropping event", map[string]any{"email": s.email})
		}
	}
	return delivered
}

// Publish makes the hub a Publisher for in-process deployments
func (h *Hub) Publish(_ context.Context, recipient string, payload []byte) error {
	h.Dispatch(recipient, payload)
	return nil
}

// Subscribers returns the number of live subscriptions
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
