package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-dashboard/internal/marketerrors"
	"auction-dashboard/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToHTTP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   marketerrors.Kind
		wantMsg    string
	}{
		{
			name:       "date_range",
			err:        fmt.Errorf("view: %w", marketerrors.ErrInvalidDateRange),
			wantStatus: http.StatusBadRequest,
			wantKind:   marketerrors.KindValidation,
			wantMsg:    "start date must be on or before the end date",
		},
		{
			name:       "delivery",
			err:        fmt.Errorf("%w: %w: shipped to pending", marketerrors.ErrValidation, marketerrors.ErrInvalidDelivery),
			wantStatus: http.StatusBadRequest,
			wantKind:   marketerrors.KindValidation,
			wantMsg:    "delivery status can only move forward on paid orders",
		},
		{
			name:       "forbidden",
			err:        marketerrors.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantKind:   marketerrors.KindForbidden,
			wantMsg:    "action not allowed for your role",
		},
		{
			name:       "session",
			err:        fmt.Errorf("session x: %w", marketerrors.ErrSessionNotFound),
			wantStatus: http.StatusNotFound,
			wantKind:   marketerrors.KindNotFound,
			wantMsg:    "session not found",
		},
		{
			name:       "server_verbatim",
			err:        fmt.Errorf("edit: %w", &marketerrors.ServerError{Status: http.StatusConflict, Message: "Auction already has bids"}),
			wantStatus: http.StatusConflict,
			wantKind:   marketerrors.KindServer,
			wantMsg:    "Auction already has bids",
		},
		{
			name:       "server_without_message",
			err:        &marketerrors.ServerError{Status: http.StatusInternalServerError},
			wantStatus: http.StatusInternalServerError,
			wantKind:   marketerrors.KindServer,
			wantMsg:    "the marketplace rejected the request",
		},
		{
			name:       "transport",
			err:        fmt.Errorf("loader auctions: %w", marketerrors.ErrTransport),
			wantStatus: http.StatusBadGateway,
			wantKind:   marketerrors.KindTransport,
			wantMsg:    "marketplace unreachable, please retry",
		},
		{
			name:       "superseded",
			err:        marketerrors.ErrSuperseded,
			wantStatus: http.StatusConflict,
			wantKind:   marketerrors.KindUnknown,
		},
		{
			name:       "closed",
			err:        marketerrors.ErrClosed,
			wantStatus: http.StatusGone,
			wantKind:   marketerrors.KindNotFound,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantKind:   marketerrors.KindUnknown,
			wantMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			status, kind, msg := MapErrorToHTTP(tc.err)
			require.Equal(t, tc.wantStatus, status)
			require.Equal(t, tc.wantKind, kind)
			if tc.wantMsg != "" {
				require.Equal(t, tc.wantMsg, msg)
			}
		})
	}

	require.Nil(t, ErrorInfoFor(nil))
	require.Equal(t, &ErrorInfo{Kind: "transport", Message: "marketplace unreachable, please retry"}, ErrorInfoFor(marketerrors.ErrTransport))
}

func queryContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/screens/auctions?"+rawQuery, nil)
	return c
}

func TestParseQuery(t *testing.T) {
	t.Parallel()

	t.Run("Defaults", func(t *testing.T) {
		t.Parallel()
		q, err := ParseQuery(queryContext(""), 15)
		require.NoError(t, err)
		require.Equal(t, view.Query{Page: 1, PageSize: 15}, q)
	})

	t.Run("All_Fields", func(t *testing.T) {
		t.Parallel()
		q, err := ParseQuery(queryContext("search=vase&status=Accepted&sort=name&dir=DESC&from=2026-03-01&to=2026-03-31&min=10&max=99.5&page=3&page_size=5"), 10)
		require.NoError(t, err)
		require.Equal(t, "vase", q.SearchTerm)
		require.Equal(t, "Accepted", q.Status)
		require.Equal(t, "name", q.SortKey)
		require.Equal(t, view.Desc, q.SortDirection)
		require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *q.DateFrom)
		require.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *q.DateTo)
		require.Equal(t, 10.0, *q.MinAmount)
		require.Equal(t, 99.5, *q.MaxAmount)
		require.Equal(t, 3, q.Page)
		require.Equal(t, 5, q.PageSize)
	})

	for _, raw := range []string{"from=01-03-2026", "min=ten", "page=x", "page_size=0", "page_size=-5", "page_size=101", "page_size=9223372036854775807"} {
		raw := raw
		t.Run("Invalid_"+raw, func(t *testing.T) {
			t.Parallel()
			_, err := ParseQuery(queryContext(raw), 10)
			require.ErrorIs(t, err, marketerrors.ErrInvalidQuery)
			require.Equal(t, marketerrors.KindValidation, marketerrors.KindOf(err))
		})
	}
}
