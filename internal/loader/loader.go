package loader

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"auction-dashboard/internal/marketerrors"
	"auction-dashboard/utils"
)

// Fetcher loads the remote collection for key ("" means unfiltered)
type Fetcher[T any] func(ctx context.Context, key string) ([]T, error)

// Snapshots persists the last successful collection per key
type Snapshots[T any] interface {
	Save(ctx context.Context, key string, items []T) error
	Load(ctx context.Context, key string) ([]T, bool, error)
}

// State is a point-in-time copy of a loader
type State[T any] struct {
	Data         []T
	Key          string
	IsLoading    bool
	IsRefreshing bool
	Err          error
	UpdatedAt    time.Time
	FromSnapshot bool
}

// Loader fetches a remote collection once per key and keeps the last good copy.
// Every fetch carries a generation number; a response that arrives after a
// newer fetch started is discarded. Reconciliation steps applied while a fetch
// is in flight are replayed over its result.
type Loader[T any] struct {
	name      string
	fetch     Fetcher[T]
	snapshots Snapshots[T]
	now       func() time.Time

	mu           sync.Mutex
	key          string
	attempted    bool
	data         []T
	loading      bool
	refreshing   bool
	err          error
	updatedAt    time.Time
	fromSnapshot bool
	gen          uint64
	cancel       context.CancelFunc
	pending      []func([]T) ([]T, error)
	closed       bool
}

// Option configures a Loader
type Option[T any] func(*Loader[T])

// WithSnapshots enables last-good persistence
func WithSnapshots[T any](s Snapshots[T]) Option[T] {
	return func(l *Loader[T]) { l.snapshots = s }
}

// WithClock overrides the clock used for UpdatedAt
func WithClock[T any](now func() time.Time) Option[T] {
	return func(l *Loader[T]) { l.now = now }
}

// New creates a Loader; name is used in errors and logs
func New[T any](name string, fetch Fetcher[T], opts ...Option[T]) *Loader[T] {
	l := &Loader[T]{
		name:  name,
		fetch: fetch,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the collection for key unless that key was already fetched
// or is being fetched. Switching keys drops data that belonged to the old key.
func (l *Loader[T]) Load(ctx context.Context, key string) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return fmt.Errorf("loader %s: %w", l.name, marketerrors.ErrClosed)
	}
	if l.key == key && (l.attempted || l.loading) {
		l.mu.Unlock()
		return nil
	}
	if l.key != key {
		l.data = nil
		l.err = nil
		l.attempted = false
		l.fromSnapshot = false
	}
	l.loading = true
	gen, fctx := l.begin(ctx, key)
	l.mu.Unlock()

	return l.complete(ctx, fctx, gen, key)
}

// Refresh re-fetches the current key. Data stays readable while it runs.
func (l *Loader[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return fmt.Errorf("loader %s: %w", l.name, marketerrors.ErrClosed)
	}
	key := l.key
	l.refreshing = true
	gen, fctx := l.begin(ctx, key)
	l.mu.Unlock()

	return l.complete(ctx, fctx, gen, key)
}

// begin cancels the in-flight fetch and starts a new generation. Caller holds mu.
func (l *Loader[T]) begin(ctx context.Context, key string) (uint64, context.Context) {
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	l.pending = nil
	fctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.key = key
	return l.gen, fctx
}

func (l *Loader[T]) complete(ctx, fctx context.Context, gen uint64, key string) error {
	items, fetchErr := l.fetch(fctx, key)

	var fallback []T
	var haveFallback bool
	if fetchErr != nil && l.snapshots != nil && fctx.Err() == nil {
		var err error
		fallback, haveFallback, err = l.snapshots.Load(ctx, key)
		if err != nil {
			utils.Warn("loader: snapshot read failed", map[string]any{"loader": l.name, "key": key, "error": err.Error()})
			haveFallback = false
		}
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return fmt.Errorf("loader %s: %w", l.name, marketerrors.ErrClosed)
	}
	if gen != l.gen {
		l.mu.Unlock()
		return fmt.Errorf("loader %s: key %q: %w", l.name, key, marketerrors.ErrSuperseded)
	}
	l.cancel()
	l.cancel = nil
	pending := l.pending
	l.pending = nil
	l.loading = false
	l.refreshing = false
	l.attempted = true

	if fetchErr != nil {
		l.err = fetchErr
		if l.data == nil && haveFallback {
			l.data = fallback
			l.fromSnapshot = true
		}
		l.mu.Unlock()
		return fmt.Errorf("loader %s: fetch %q: %w", l.name, key, fetchErr)
	}

	if items == nil {
		items = []T{}
	}
	items = l.replay(key, items, pending)
	l.data = items
	l.err = nil
	l.fromSnapshot = false
	l.updatedAt = l.now()
	l.mu.Unlock()

	if l.snapshots != nil {
		if err := l.snapshots.Save(ctx, key, items); err != nil {
			utils.Warn("loader: snapshot write failed", map[string]any{"loader": l.name, "key": key, "error": err.Error()})
		}
	}
	return nil
}

// Update applies a reconciliation step to the loaded data
func (l *Loader[T]) Update(fn func([]T) ([]T, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("loader %s: %w", l.name, marketerrors.ErrClosed)
	}
	next, err := fn(l.data)
	if err != nil {
		return err
	}
	l.data = next
	if l.cancel != nil {
		l.pending = append(l.pending, fn)
	}
	return nil
}

// replay applies steps recorded during the fetch to its response, which
// predates them. A step that no longer applies is skipped. Caller holds mu.
func (l *Loader[T]) replay(key string, items []T, steps []func([]T) ([]T, error)) []T {
	for _, fn := range steps {
		next, err := fn(items)
		if err != nil {
			utils.Warn("loader: replay skipped", map[string]any{"loader": l.name, "key": key, "error": err.Error()})
			continue
		}
		items = next
	}
	return items
}

// State returns a copy of the loader state
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State[T]{
		Data:         slices.Clone(l.data),
		Key:          l.key,
		IsLoading:    l.loading,
		IsRefreshing: l.refreshing,
		Err:          l.err,
		UpdatedAt:    l.updatedAt,
		FromSnapshot: l.fromSnapshot,
	}
}

// Close cancels any in-flight fetch; the loader cannot be reused
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
