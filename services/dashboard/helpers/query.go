package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"auction-dashboard/internal/marketerrors"
	"auction-dashboard/internal/view"

	"github.com/gin-gonic/gin"
)

// ParseQuery reads the view parameters of a screen request:
// search, status, from, to (YYYY-MM-DD), min, max, sort, dir, page, page_size
func ParseQuery(c *gin.Context, defaultPageSize int) (view.Query, error) {
	q := view.Query{
		SearchTerm:    c.Query("search"),
		Status:        strings.TrimSpace(c.Query("status")),
		SortKey:       strings.TrimSpace(c.Query("sort")),
		SortDirection: view.Direction(strings.ToLower(strings.TrimSpace(c.Query("dir")))),
		Page:          1,
		PageSize:      defaultPageSize,
	}

	var err error
	if q.DateFrom, err = parseDate(c, "from"); err != nil {
		return view.Query{}, err
	}
	if q.DateTo, err = parseDate(c, "to"); err != nil {
		return view.Query{}, err
	}
	if q.MinAmount, err = parseAmount(c, "min"); err != nil {
		return view.Query{}, err
	}
	if q.MaxAmount, err = parseAmount(c, "max"); err != nil {
		return view.Query{}, err
	}
	if q.Page, err = parseInt(c, "page", 1); err != nil {
		return view.Query{}, err
	}
	if q.PageSize, err = parseInt(c, "page_size", defaultPageSize); err != nil {
		return view.Query{}, err
	}
	if q.PageSize <= 0 || q.PageSize > view.MaxPageSize {
		return view.Query{}, fmt.Errorf("%w - page_size must be between 1 and %d, got %d", marketerrors.ErrInvalidQuery, view.MaxPageSize, q.PageSize)
	}
	return q, nil
}

func parseDate(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w - %s must be YYYY-MM-DD, got %q", marketerrors.ErrInvalidQuery, name, raw)
	}
	return &t, nil
}

func parseAmount(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w - %s must be a number, got %q", marketerrors.ErrInvalidQuery, name, raw)
	}
	return &v, nil
}

func parseInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w - %s must be an integer, got %q", marketerrors.ErrInvalidQuery, name, raw)
	}
	return v, nil
}
