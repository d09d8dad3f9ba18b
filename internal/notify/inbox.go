package notify

import (
	"sync"
	"time"
)

// Notification is a routed event as stored in a session inbox
type Notification struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Target     Target    `json:"target"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Inbox keeps the most recent notifications of one session, newest first.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

// NewInbox creates an inbox holding at most limit notifications
func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = 1
	}
	return &Inbox{limit: limit}
}

// Push adds n at the front, evicting the oldest entry when full
func (in *Inbox) Push(n Notification) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.items = append([]Notification{n}, in.items...)
	if len(in.items) > in.limit {
		in.items = in.items[:in.limit]
	}
}

// List returns a copy of the inbox, newest first
func (in *Inbox) List() []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]Notification, len(in.items))
	copy(out, in.items)
	return out
}

// Drain returns the stored notifications, newest first, and empties the inbox
func (in *Inbox) Drain() []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := in.items
	in.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Len returns the number of stored notifications
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.items)
}
