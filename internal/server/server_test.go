package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-dashboard/internal/marketerrors"
	"auction-dashboard/internal/marketplace"
	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/repository"
	dashhandler "auction-dashboard/services/dashboard/handler"
	mphandler "auction-dashboard/services/marketplace/handler"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Limit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	router := gin.New()
	router.POST("/sessions/:sid/refresh", rl.Limit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	require.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/sessions/a/refresh").Code)
	require.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/sessions/a/refresh").Code)

	w := serve(router, http.MethodPost, "/sessions/a/refresh")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, float64(http.StatusTooManyRequests), body["status"])
	require.Equal(t, "transport", body["kind"])
	require.Equal(t, "rate limit exceeded", body["error"])
	require.Equal(t, "too many refresh requests, try again shortly", body["message"])

	// another session from the same address has its own bucket
	require.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/sessions/b/refresh").Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.get("10.0.0.1|a")
	now = now.Add(20 * time.Minute)
	rl.get("10.0.0.1|b")
	now = now.Add(15 * time.Minute)

	require.Equal(t, 1, rl.Cleanup())
	require.Len(t, rl.clients, 1)
	require.Contains(t, rl.clients, "10.0.0.1|b")
}

func TestSetupRouter(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions := dashhandler.NewMockSessionManager(ctrl)
	sessions.EXPECT().Get("s1").Return(nil, marketerrors.ErrSessionNotFound).AnyTimes()
	router := SetupRouter(dashhandler.NewDashboardHandler(sessions, nil, 10), NewRateLimiter(1, 1))

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "screen", method: http.MethodGet, path: "/sessions/s1/screens/auctions", expectedStatus: http.StatusNotFound},
		{name: "selection", method: http.MethodGet, path: "/sessions/s1/screens/auctions/selection", expectedStatus: http.StatusNotFound},
		{name: "select", method: http.MethodPut, path: "/sessions/s1/screens/auctions/selection/a1", expectedStatus: http.StatusNotFound},
		{name: "delete_item", method: http.MethodDelete, path: "/sessions/s1/screens/blogs/items/b1", expectedStatus: http.StatusNotFound},
		{name: "notifications", method: http.MethodGet, path: "/sessions/s1/notifications", expectedStatus: http.StatusNotFound},
		{name: "refresh", method: http.MethodPost, path: "/sessions/s1/screens/auctions/refresh", expectedStatus: http.StatusNotFound},
		{name: "refresh_limited", method: http.MethodPost, path: "/sessions/s1/screens/auctions/refresh", expectedStatus: http.StatusTooManyRequests},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			w := serve(router, tc.method, tc.path)
			require.Equal(t, tc.expectedStatus, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, float64(tc.expectedStatus), body["status"])
		})
	}
}

func TestSetupMarketplaceRouter(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	repo.AddUser(model.User{ID: "u1", Email: "buyer@example.com", Role: model.RoleBuyer})
	repo.AddBlog(model.BlogPost{ID: "b1", Title: "Hello", AuthorEmail: "admin@example.com"})
	router := SetupMarketplaceRouter(mphandler.NewMarketplaceHandler(marketplace.NewService(repo)))

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "list_auctions", method: http.MethodGet, path: "/auctions", expectedStatus: http.StatusOK},
		{name: "missing_auction", method: http.MethodDelete, path: "/auctions/nope", expectedStatus: http.StatusNotFound},
		{name: "payments", method: http.MethodGet, path: "/payments?buyerId=u1", expectedStatus: http.StatusOK},
		{name: "users", method: http.MethodGet, path: "/users?email=buyer@example.com", expectedStatus: http.StatusOK},
		{name: "blogs", method: http.MethodGet, path: "/blogs/admin@example.com", expectedStatus: http.StatusOK},
		{name: "delete_blog", method: http.MethodDelete, path: "/delete/b1", expectedStatus: http.StatusOK},
		{name: "unknown_route", method: http.MethodGet, path: "/bids", expectedStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			w := serve(router, tc.method, tc.path)
			require.Equal(t, tc.expectedStatus, w.Code, w.Body.String())
		})
	}
}
