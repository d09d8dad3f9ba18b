package notify

import (
	"context"
	"time"

	"auction-dashboard/utils"
)

// Source delivers raw notification payloads addressed to email, including
// broadcasts. The channel is closed when ctx ends or the source stops.
type Source interface {
	Subscribe(ctx context.Context, email string) (<-chan []byte, error)
}

// Publisher sends a notification to one recipient, or to everyone when
// recipient is empty.
type Publisher interface {
	Publish(ctx context.Context, recipient string, payload []byte) error
}

// Listener decodes, routes and stores notifications for one session
type Listener struct {
	inbox *Inbox
	now   func() time.Time
}

// NewListener creates a listener writing into inbox
func NewListener(inbox *Inbox, now func() time.Time) *Listener {
	if now == nil {
		now = time.Now
	}
	return &Listener{inbox: inbox, now: now}
}

// Run consumes msgs until the channel closes or ctx is done
func (l *Listener) Run(ctx context.Context, msgs <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-msgs:
			if !ok {
				return
			}
			l.Handle(raw)
		}
	}
}

// Handle processes one payload. Malformed payloads are logged and dropped.
func (l *Listener) Handle(raw []byte) (Notification, bool) {
	ev, err := Decode(raw)
	if err != nil {
		utils.Warn("notify: dropping malformed event", map[string]any{"error": err.Error(), "size": len(raw)})
		return Notification{}, false
	}

	h := ev.Meta()
	n := Notification{
		ID:         utils.GenerateID(),
		Kind:       KindName(ev),
		Title:      h.Title,
		Message:    h.Message,
		Target:     Route(ev),
		ReceivedAt: l.now(),
	}
	l.inbox.Push(n)
	utils.Debug("notify: event routed", map[string]any{"kind": n.Kind, "target": n.Target.Path})
	return n, true
}
