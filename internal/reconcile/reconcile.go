package reconcile

import (
	"auction-dashboard/internal/marketerrors"
)

// Result is the outcome of one mutation REST call: either the server's
// representation of the mutated object or the error that stopped it.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful server response
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failed mutation. A nil err is recorded as an unknown failure.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = marketerrors.ErrTransport
	}
	return Result[T]{err: err}
}

// From builds a Result from a conventional (value, error) return
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

// IsOk reports whether the mutation succeeded
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Failure returns the mutation error, nil on success
func (r Result[T]) Failure() error {
	return r.err
}

// Match dispatches on the result variant
func Match[T, R any](r Result[T], onOk func(T) R, onErr func(marketerrors.Kind, error) R) R {
	if r.err != nil {
		return onErr(marketerrors.KindOf(r.err), r.err)
	}
	return onOk(r.value)
}

type outcome[T any] struct {
	items []T
	err   error
}

// ApplyEdit replaces the row with the given id by the server's object.
// The row is replaced wholesale; other rows are untouched. On failure the
// original slice is returned unchanged together with the error.
func ApplyEdit[T any](items []T, id string, idOf func(T) string, r Result[T]) ([]T, error) {
	o := Match(r,
		func(server T) outcome[T] {
			next := make([]T, len(items))
			for i, item := range items {
				if idOf(item) == id {
					next[i] = server
					continue
				}
				next[i] = item
			}
			return outcome[T]{items: next}
		},
		func(_ marketerrors.Kind, err error) outcome[T] {
			return outcome[T]{items: items, err: err}
		},
	)
	return o.items, o.err
}

// ApplyDelete removes the row with the given id after a successful delete
func ApplyDelete[T any](items []T, id string, idOf func(T) string, r Result[struct{}]) ([]T, error) {
	o := Match(r,
		func(struct{}) outcome[T] {
			next := make([]T, 0, len(items))
			for _, item := range items {
				if idOf(item) != id {
					next = append(next, item)
				}
			}
			return outcome[T]{items: next}
		},
		func(_ marketerrors.Kind, err error) outcome[T] {
			return outcome[T]{items: items, err: err}
		},
	)
	return o.items, o.err
}

// ApplyInsert puts a newly created server object at the head of the list
func ApplyInsert[T any](items []T, r Result[T]) ([]T, error) {
	o := Match(r,
		func(created T) outcome[T] {
			next := make([]T, 0, len(items)+1)
			next = append(next, created)
			next = append(next, items...)
			return outcome[T]{items: next}
		},
		func(_ marketerrors.Kind, err error) outcome[T] {
			return outcome[T]{items: items, err: err}
		},
	)
	return o.items, o.err
}
