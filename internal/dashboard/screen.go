package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-dashboard/internal/loader"
	"auction-dashboard/internal/marketerrors"
	"auction-dashboard/internal/reconcile"
	"auction-dashboard/internal/view"
)

// EditFunc sends a patch to the marketplace and returns the server's object
type EditFunc[T, P any] func(ctx context.Context, id string, patch P) (T, error)

// DeleteFunc deletes an object on the marketplace
type DeleteFunc func(ctx context.Context, id string) error

// CheckFunc validates a patch against the loaded row before any network call
type CheckFunc[T, P any] func(current T, patch P) error

// Capabilities are the mutations a role may perform on a screen.
// A nil function means the action is not allowed.
type Capabilities[T, P any] struct {
	Edit   EditFunc[T, P]
	Check  CheckFunc[T, P]
	Delete DeleteFunc
	Insert bool
}

// View is one rendered page of a screen together with its load state
type View[T any] struct {
	Page         view.Page[T]
	IsLoading    bool
	IsRefreshing bool
	Err          error
	FromSnapshot bool
	UpdatedAt    time.Time
}

// Screen is one dashboard list: a loader, its view spec, the detail
// modal and the mutations the viewer's role allows.
type Screen[T, P any] struct {
	name   string
	key    string
	loader *loader.Loader[T]
	spec   view.Spec[T]
	idOf   func(T) string
	caps   Capabilities[T, P]

	mu    sync.Mutex
	modal *reconcile.Modal[T]
}

// NewScreen wires a screen; key is the loader key the screen always loads
func NewScreen[T, P any](name, key string, l *loader.Loader[T], spec view.Spec[T], idOf func(T) string, caps Capabilities[T, P]) *Screen[T, P] {
	return &Screen[T, P]{
		name:   name,
		key:    key,
		loader: l,
		spec:   spec,
		idOf:   idOf,
		caps:   caps,
		modal:  reconcile.NewModal(idOf),
	}
}

func (s *Screen[T, P]) Name() string { return s.name }
func (s *Screen[T, P]) Key() string  { return s.key }

func (s *Screen[T, P]) CanEdit() bool   { return s.caps.Edit != nil }
func (s *Screen[T, P]) CanDelete() bool { return s.caps.Delete != nil }
func (s *Screen[T, P]) CanInsert() bool { return s.caps.Insert }

// Open loads the screen's collection the first time it is shown
func (s *Screen[T, P]) Open(ctx context.Context) error {
	return s.loader.Load(ctx, s.key)
}

// Refresh re-fetches the collection; the current rows stay visible meanwhile
func (s *Screen[T, P]) Refresh(ctx context.Context) error {
	st := s.loader.State()
	if st.Key != s.key || (st.Data == nil && st.Err == nil && !st.IsLoading) {
		// never opened
		return s.loader.Load(ctx, s.key)
	}
	return s.loader.Refresh(ctx)
}

// View applies q to the loaded rows. The error is a query validation
// error; fetch failures are reported in View.Err.
func (s *Screen[T, P]) View(q view.Query) (View[T], error) {
	st := s.loader.State()
	page, err := view.Apply(st.Data, s.spec, q)
	return View[T]{
		Page:         page,
		IsLoading:    st.IsLoading,
		IsRefreshing: st.IsRefreshing,
		Err:          st.Err,
		FromSnapshot: st.FromSnapshot,
		UpdatedAt:    st.UpdatedAt,
	}, err
}

func (s *Screen[T, P]) find(id string) (T, error) {
	for _, item := range s.loader.State().Data {
		if s.idOf(item) == id {
			return item, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %s: %w", s.name, id, marketerrors.ErrRowNotFound)
}

// Select opens the detail modal on a loaded row
func (s *Screen[T, P]) Select(id string) (T, error) {
	item, err := s.find(id)
	if err != nil {
		return item, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal.Open(item)
	return item, nil
}

// Deselect closes the detail modal
func (s *Screen[T, P]) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal.Close()
}

// Selected returns the row shown in the detail modal, re-read from the
// loaded list so a refresh that changed or dropped the row is reflected.
func (s *Screen[T, P]) Selected() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.modal.SelectedID()
	if id == "" {
		var zero T
		return zero, false
	}
	item, err := s.find(id)
	if err != nil {
		s.modal.OnDeleted(id)
		return item, false
	}
	s.modal.Open(item)
	return item, true
}

// Edit patches a row on the marketplace and swaps the server's object into
// the list and the modal. On failure nothing local changes.
func (s *Screen[T, P]) Edit(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	if s.caps.Edit == nil {
		return zero, fmt.Errorf("%s: edit: %w", s.name, marketerrors.ErrForbidden)
	}
	current, err := s.find(id)
	if err != nil {
		return zero, err
	}
	if s.caps.Check != nil {
		if err := s.caps.Check(current, patch); err != nil {
			return zero, fmt.Errorf("%s %s: %w", s.name, id, err)
		}
	}

	updated, err := s.caps.Edit(ctx, id, patch)
	result := reconcile.From(updated, err)
	if err := s.loader.Update(func(items []T) ([]T, error) {
		return reconcile.ApplyEdit(items, id, s.idOf, result)
	}); err != nil {
		return zero, fmt.Errorf("%s %s: edit: %w", s.name, id, err)
	}

	s.mu.Lock()
	s.modal.OnEdited(updated)
	s.mu.Unlock()
	return updated, nil
}

// Delete removes a row on the marketplace, then locally, closing the modal
// if it showed that row
func (s *Screen[T, P]) Delete(ctx context.Context, id string) error {
	if s.caps.Delete == nil {
		return fmt.Errorf("%s: delete: %w", s.name, marketerrors.ErrForbidden)
	}
	if _, err := s.find(id); err != nil {
		return err
	}

	result := reconcile.From(struct{}{}, s.caps.Delete(ctx, id))
	if err := s.loader.Update(func(items []T) ([]T, error) {
		return reconcile.ApplyDelete(items, id, s.idOf, result)
	}); err != nil {
		return fmt.Errorf("%s %s: delete: %w", s.name, id, err)
	}

	s.mu.Lock()
	s.modal.OnDeleted(id)
	s.mu.Unlock()
	return nil
}

// Insert prepends an object the marketplace has just created
func (s *Screen[T, P]) Insert(item T) error {
	if !s.caps.Insert {
		return fmt.Errorf("%s: insert: %w", s.name, marketerrors.ErrForbidden)
	}
	id := s.idOf(item)
	return s.loader.Update(func(items []T) ([]T, error) {
		// a refresh may already carry the new row
		next, err := reconcile.ApplyDelete(items, id, s.idOf, reconcile.Ok(struct{}{}))
		if err != nil {
			return items, err
		}
		return reconcile.ApplyInsert(next, reconcile.Ok(item))
	})
}

// Close cancels in-flight fetches and drops the selection
func (s *Screen[T, P]) Close() {
	s.loader.Close()
	s.Deselect()
}
