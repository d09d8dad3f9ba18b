package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
	"auction-dashboard/services/marketplace/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func newRouter(h *MarketplaceHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/auctions", h.ListAuctionsHandler)
	router.POST("/auctions", h.CreateAuctionHandler)
	router.PATCH("/auctions/:id", h.UpdateAuctionHandler)
	router.DELETE("/auctions/:id", h.DeleteAuctionHandler)
	router.POST("/auctions/:id/bids", h.PlaceBidHandler)
	router.GET("/payments", h.ListPaymentsHandler)
	router.PATCH("/payments/:id", h.UpdatePaymentHandler)
	router.GET("/users", h.FindUsersHandler)
	router.GET("/blogs/:email", h.ListBlogsHandler)
	router.DELETE("/delete/:id", h.DeleteBlogHandler)
	return router
}

func encodeBody(t *testing.T, body any) []byte {
	t.Helper()
	switch v := body.(type) {
	case nil:
		return nil
	case string:
		return []byte(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		return raw
	}
}

// Test PlaceBidHandler
func TestPlaceBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockMarketplaceServiceInterface(ctrl)
	router := newRouter(NewMarketplaceHandler(mockService))

	tests := []struct {
		name           string
		auctionID      string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "success_valid_bid",
			auctionID:   "a1",
			requestBody: helpers.PlaceBidRequest{Email: "buyer@example.com", Name: "Bea", Amount: 120},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("a1", "buyer@example.com", "Bea", 120.0).
					Return(model.Auction{ID: "a1", CurrentBid: 120}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid_json",
			auctionID:      "a1",
			requestBody:    `{invalid json}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "missing_email",
			auctionID:      "a1",
			requestBody:    helpers.PlaceBidRequest{Amount: 50},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "negative_amount",
			auctionID:      "a1",
			requestBody:    helpers.PlaceBidRequest{Email: "buyer@example.com", Amount: -10},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "service_bid_too_low",
			auctionID:   "a1",
			requestBody: helpers.PlaceBidRequest{Email: "buyer@example.com", Amount: 50},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("a1", "buyer@example.com", "", 50.0).
					Return(model.Auction{}, marketerrors.ErrBidTooLow)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "bid amount too low",
		},
		{
			name:        "service_auction_closed",
			auctionID:   "a2",
			requestBody: helpers.PlaceBidRequest{Email: "buyer@example.com", Amount: 50},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("a2", "buyer@example.com", "", 50.0).
					Return(model.Auction{}, fmt.Errorf("service: %w", marketerrors.ErrAuctionClosed))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "auction is not open for bidding",
		},
		{
			name:        "service_auction_not_found",
			auctionID:   "missing",
			requestBody: helpers.PlaceBidRequest{Email: "buyer@example.com", Amount: 50},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("missing", "buyer@example.com", "", 50.0).
					Return(model.Auction{}, marketerrors.ErrAuctionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "auction not found",
		},
		{
			name:        "service_generic_error",
			auctionID:   "a3",
			requestBody: helpers.PlaceBidRequest{Email: "buyer@example.com", Amount: 100},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("a3", "buyer@example.com", "", 100.0).
					Return(model.Auction{}, errors.New("database failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/auctions/"+tc.auctionID+"/bids", bytes.NewReader(encodeBody(t, tc.requestBody)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusCreated {
				var got model.Auction
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				require.Equal(t, 120.0, got.CurrentBid)
				return
			}
			var resp helpers.MessageResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, tc.expectedMsg, resp.Message)
		})
	}
}

// Test list endpoints return bare arrays, never null
func TestListHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockMarketplaceServiceInterface(ctrl)
	router := newRouter(NewMarketplaceHandler(mockService))
	now := time.Now().UTC()

	tests := []struct {
		name           string
		path           string
		mockSetup      func()
		expectedStatus int
		expectedLen    int
	}{
		{
			name: "auctions_by_seller",
			path: "/auctions?email=s@example.com",
			mockSetup: func() {
				mockService.EXPECT().ListAuctions("s@example.com").
					Return([]model.Auction{{ID: "a1", EndTime: now}, {ID: "a2", EndTime: now}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    2,
		},
		{
			name: "auctions_nil_slice",
			path: "/auctions",
			mockSetup: func() {
				mockService.EXPECT().ListAuctions("").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    0,
		},
		{
			name: "payments_by_buyer",
			path: "/payments?buyerId=b1",
			mockSetup: func() {
				mockService.EXPECT().ListPayments("b1", "").Return([]model.Payment{{ID: "p1"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    1,
		},
		{
			name: "users_wrapped_in_array",
			path: "/users?email=u@example.com",
			mockSetup: func() {
				mockService.EXPECT().FindUsers("u@example.com").
					Return([]model.User{{ID: "u1", Email: "u@example.com", Role: model.RoleBuyer}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    1,
		},
		{
			name: "unknown_user_is_empty_array",
			path: "/users?email=ghost@example.com",
			mockSetup: func() {
				mockService.EXPECT().FindUsers("ghost@example.com").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    0,
		},
		{
			name: "blogs_by_author",
			path: "/blogs/a@example.com",
			mockSetup: func() {
				mockService.EXPECT().ListBlogs("a@example.com").Return([]model.BlogPost{{ID: "b1"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    1,
		},
		{
			name: "service_generic_error",
			path: "/payments?sellerEmail=s@example.com",
			mockSetup: func() {
				mockService.EXPECT().ListPayments("", "s@example.com").Return(nil, errors.New("database failure"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus != http.StatusOK {
				return
			}
			var items []map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
			require.NotNil(t, items)
			require.Len(t, items, tc.expectedLen)
		})
	}
}

// Test mutation endpoints
func TestMutationHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockMarketplaceServiceInterface(ctrl)
	router := newRouter(NewMarketplaceHandler(mockService))
	accepted := model.AuctionAccepted

	tests := []struct {
		name           string
		method         string
		path           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "patch_auction_status",
			method:      http.MethodPatch,
			path:        "/auctions/a1",
			requestBody: model.AuctionPatch{Status: &accepted},
			mockSetup: func() {
				mockService.EXPECT().UpdateAuction(gomock.Any(), "a1", model.AuctionPatch{Status: &accepted}).
					Return(model.Auction{ID: "a1", Status: accepted}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "patch_auction_invalid",
			method:      http.MethodPatch,
			path:        "/auctions/a1",
			requestBody: `{"status":"Live"}`,
			mockSetup: func() {
				mockService.EXPECT().UpdateAuction(gomock.Any(), "a1", gomock.Any()).
					Return(model.Auction{}, marketerrors.ErrInvalidAuction)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid auction details",
		},
		{
			name:   "delete_auction",
			method: http.MethodDelete,
			path:   "/auctions/a1",
			mockSetup: func() {
				mockService.EXPECT().DeleteAuction("a1").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "auction deleted",
		},
		{
			name:   "delete_missing_blog",
			method: http.MethodDelete,
			path:   "/delete/b9",
			mockSetup: func() {
				mockService.EXPECT().DeleteBlog("b9").Return(marketerrors.ErrBlogNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "blog post not found",
		},
		{
			name:        "patch_payment_backwards",
			method:      http.MethodPatch,
			path:        "/payments/p1",
			requestBody: helpers.UpdatePaymentRequest{DeliveryStatus: "pending"},
			mockSetup: func() {
				mockService.EXPECT().UpdatePayment("p1", model.PaymentPatch{DeliveryStatus: model.DeliveryPending}).
					Return(model.Payment{}, marketerrors.ErrInvalidDelivery)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid delivery status change",
		},
		{
			name:           "patch_payment_missing_status",
			method:         http.MethodPatch,
			path:           "/payments/p1",
			requestBody:    `{}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "create_auction",
			method:      http.MethodPost,
			path:        "/auctions",
			requestBody: model.NewAuction{Name: "Clock", SellerEmail: "s@example.com"},
			mockSetup: func() {
				mockService.EXPECT().CreateAuction(gomock.Any()).
					Return(model.Auction{ID: "new", Name: "Clock", Status: model.AuctionPending}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			req := httptest.NewRequest(tc.method, tc.path, bytes.NewReader(encodeBody(t, tc.requestBody)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedMsg != "" {
				var resp helpers.MessageResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				require.Equal(t, tc.expectedMsg, resp.Message)
			}
		})
	}
}
