package view

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"auction-dashboard/internal/marketerrors"
)

// DefaultPageSize is used when a query leaves the page size unset
const DefaultPageSize = 10

// MaxPageSize is the largest page a client may ask for
const MaxPageSize = 100

// Direction of a sort
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Query holds the view parameters of one screen render
type Query struct {
	SearchTerm    string
	Status        string
	DateFrom      *time.Time
	DateTo        *time.Time
	MinAmount     *float64
	MaxAmount     *float64
	SortKey       string
	SortDirection Direction
	Page          int
	PageSize      int
}

// Page is one page of a transformed collection
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalCount int `json:"total_count"`
}

// Spec describes how a collection of T is searched, filtered and sorted.
// Nil accessors disable the matching filter; a query that uses a disabled
// filter is rejected.
type Spec[T any] struct {
	SearchFields []func(T) string
	Status       func(item T, now time.Time) string
	Date         func(T) time.Time
	Amount       func(T) float64
	SortKeys     map[string]func(a, b T) int
	// Now is read once per Apply pass. Defaults to time.Now.
	Now func() time.Time
}

// Apply filters, sorts and paginates items without modifying them
func Apply[T any](items []T, spec Spec[T], q Query) (Page[T], error) {
	size := q.PageSize
	if size == 0 {
		size = DefaultPageSize
	}

	from, to, err := validate(spec, q)
	if err != nil {
		return Page[T]{Items: []T{}, Page: 1, PageSize: size}, err
	}

	now := time.Now()
	if spec.Now != nil {
		now = spec.Now()
	}

	term := strings.ToLower(strings.TrimSpace(q.SearchTerm))
	status := q.Status
	if strings.EqualFold(status, "all") {
		status = ""
	}

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if term != "" && !matchesSearch(spec.SearchFields, item, term) {
			continue
		}
		if status != "" && spec.Status(item, now) != status {
			continue
		}
		if from != nil || to != nil {
			d := spec.Date(item)
			if from != nil && d.Before(*from) {
				continue
			}
			if to != nil && d.After(*to) {
				continue
			}
		}
		if q.MinAmount != nil || q.MaxAmount != nil {
			amt := spec.Amount(item)
			if q.MinAmount != nil && amt < *q.MinAmount {
				continue
			}
			if q.MaxAmount != nil && amt > *q.MaxAmount {
				continue
			}
		}
		filtered = append(filtered, item)
	}

	if q.SortKey != "" {
		less := spec.SortKeys[q.SortKey]
		if q.SortDirection == Desc {
			asc := less
			less = func(a, b T) int { return asc(b, a) }
		}
		slices.SortStableFunc(filtered, less)
	}

	return paginate(filtered, q.Page, size), nil
}

// validate checks the query against the collection fields and returns the normalised date bounds
func validate[T any](spec Spec[T], q Query) (*time.Time, *time.Time, error) {
	if q.PageSize < 0 {
		return nil, nil, fmt.Errorf("view: %w - negative page size %d", marketerrors.ErrInvalidQuery, q.PageSize)
	}
	if q.SortDirection != "" && q.SortDirection != Asc && q.SortDirection != Desc {
		return nil, nil, fmt.Errorf("view: %w - sort direction %q", marketerrors.ErrInvalidQuery, q.SortDirection)
	}
	if q.SortKey != "" {
		if _, ok := spec.SortKeys[q.SortKey]; !ok {
			return nil, nil, fmt.Errorf("view: %w - unknown sort key %q", marketerrors.ErrInvalidQuery, q.SortKey)
		}
	}
	if q.Status != "" && spec.Status == nil {
		return nil, nil, fmt.Errorf("view: %w - status filter not supported", marketerrors.ErrInvalidQuery)
	}
	if (q.DateFrom != nil || q.DateTo != nil) && spec.Date == nil {
		return nil, nil, fmt.Errorf("view: %w - date filter not supported", marketerrors.ErrInvalidQuery)
	}
	if (q.MinAmount != nil || q.MaxAmount != nil) && spec.Amount == nil {
		return nil, nil, fmt.Errorf("view: %w - amount filter not supported", marketerrors.ErrInvalidQuery)
	}

	var from, to *time.Time
	if q.DateFrom != nil {
		f := StartOfDay(*q.DateFrom)
		from = &f
	}
	if q.DateTo != nil {
		t := EndOfDay(*q.DateTo)
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("view: %w - from %s, to %s", marketerrors.ErrInvalidDateRange,
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	if q.MinAmount != nil && q.MaxAmount != nil && *q.MinAmount > *q.MaxAmount {
		return nil, nil, fmt.Errorf("view: %w - min %.2f, max %.2f", marketerrors.ErrInvalidAmountRange, *q.MinAmount, *q.MaxAmount)
	}
	return from, to, nil
}

func matchesSearch[T any](fields []func(T) string, item T, term string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(item)), term) {
			return true
		}
	}
	return false
}

// paginate returns the 1-indexed page of items, clamping page into [1, totalPages]
func paginate[T any](items []T, page, size int) Page[T] {
	total := len(items)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}

	switch {
	case page < 1, totalPages == 0:
		page = 1
	case page > totalPages:
		page = totalPages
	}

	// page <= totalPages keeps start within total
	start := (page - 1) * size
	end := start + min(size, total-start)
	pageItems := make([]T, 0, end-start)
	pageItems = append(pageItems, items[start:end]...)

	return Page[T]{
		Items:      pageItems,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalCount: total,
	}
}

// StartOfDay returns 00:00:00 of t's day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day in t's location
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Millisecond)
}
