package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"auction-dashboard/internal/dashboard"
	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/notify"
	"auction-dashboard/internal/viewer"
	"auction-dashboard/utils"
)

// UserLookup resolves a signed-in email to the persisted user record
type UserLookup interface {
	FindUser(ctx context.Context, email string) (model.User, error)
}

// Session is the dashboard state of one signed-in viewer
type Session struct {
	ID        string
	Viewer    viewer.Viewer
	Dashboard *dashboard.Dashboard
	Inbox     *notify.Inbox
	StartedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// Config holds the session manager's collaborators and limits
type Config struct {
	// Source is optional; without it sessions have an empty inbox
	Source    notify.Source
	Dashboard dashboard.Options
	InboxSize int
	Now       func() time.Time
}

// Manager owns every live session
type Manager struct {
	users UserLookup
	api   dashboard.API
	cfg   Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager
func NewManager(users UserLookup, api dashboard.API, cfg Config) *Manager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 50
	}
	return &Manager{
		users:    users,
		api:      api,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Start looks up the user, builds their dashboard and subscribes them to
// notifications. The role always comes from the backend record.
func (m *Manager) Start(ctx context.Context, email string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("session: %w: email is required", marketerrors.ErrValidation)
	}

	user, err := m.users.FindUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("session: find user %s: %w", email, err)
	}
	v, err := viewer.FromUser(user)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	d, err := dashboard.New(v, m.api, m.cfg.Dashboard)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	// the subscription lives as long as the session, not the request
	sctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        utils.GenerateID(),
		Viewer:    v,
		Dashboard: d,
		Inbox:     notify.NewInbox(m.cfg.InboxSize),
		StartedAt: m.cfg.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	if m.cfg.Source != nil {
		msgs, err := m.cfg.Source.Subscribe(sctx, user.Email)
		if err != nil {
			utils.Warn("session: notifications unavailable", map[string]any{"email": user.Email, "error": err.Error()})
			close(s.done)
		} else {
			l := notify.NewListener(s.Inbox, m.cfg.Now)
			go func() {
				defer close(s.done)
				l.Run(sctx, msgs)
			}()
		}
	} else {
		close(s.done)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	utils.Info("session started", map[string]any{"session_id": s.ID, "email": user.Email, "role": string(v.Role())})
	return s, nil
}

// Get returns a live session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, marketerrors.ErrSessionNotFound)
	}
	return s, nil
}

// End tears a session down: the notification subscription is cancelled
// and every in-flight fetch is aborted
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, marketerrors.ErrSessionNotFound)
	}

	s.close()
	utils.Info("session ended", map[string]any{"session_id": id})
	return nil
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close ends every session
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.close()
	}
}

func (s *Session) close() {
	s.cancel()
	s.Dashboard.Close()
	<-s.done
}
