package integrationtests

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-dashboard/internal/apiclient"
	"auction-dashboard/internal/dashboard"
	"auction-dashboard/internal/marketplace"
	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/notify"
	"auction-dashboard/internal/repository"
	"auction-dashboard/internal/server"
	"auction-dashboard/internal/session"
	"auction-dashboard/internal/storage"
	"auction-dashboard/internal/submission"
	dashhandler "auction-dashboard/services/dashboard/handler"
	mphandler "auction-dashboard/services/marketplace/handler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail  = "admin@example.com"
	sellerEmail = "seller@example.com"
	buyerEmail  = "buyer@example.com"
)

// TestEnv is a marketplace stub behind a real HTTP server and the dashboard
// router talking to it through the API client
type TestEnv struct {
	Repo      *repository.MemoryRepo
	Service   *marketplace.Service
	Hub       *notify.Hub
	Images    *storage.MemoryHost
	Sessions  *session.Manager
	Dashboard *gin.Engine
	Stub      *httptest.Server
}

// SetupTestEnv starts the stub with seeded data and wires the dashboard to it
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Now()
	repo := repository.NewMemoryRepo()
	seed(t, repo, now)

	hub := notify.NewHub()
	svc := marketplace.NewService(repo, marketplace.WithPublisher(hub))
	stub := httptest.NewServer(server.SetupMarketplaceRouter(mphandler.NewMarketplaceHandler(svc)))
	t.Cleanup(stub.Close)

	api := apiclient.New(stub.URL, 5*time.Second)
	images := storage.NewMemoryHost("https://images.test")
	manager := session.NewManager(api, api, session.Config{
		Source:    hub,
		Dashboard: dashboard.Options{},
		InboxSize: 20,
	})
	t.Cleanup(manager.Close)

	h := dashhandler.NewDashboardHandler(manager, submission.NewService(api, images, 4, 64), 10)
	router := server.SetupRouter(h, server.NewRateLimiter(10, 10))

	return &TestEnv{
		Repo:      repo,
		Service:   svc,
		Hub:       hub,
		Images:    images,
		Sessions:  manager,
		Dashboard: router,
		Stub:      stub,
	}
}

func seed(t *testing.T, repo *repository.MemoryRepo, now time.Time) {
	t.Helper()
	repo.AddUser(model.User{ID: "u-admin", Email: adminEmail, Role: model.RoleAdmin, DisplayName: "Admin"})
	repo.AddUser(model.User{ID: "u-seller", Email: sellerEmail, Role: model.RoleSeller, DisplayName: "Sally"})
	repo.AddUser(model.User{ID: "u-buyer", Email: buyerEmail, Role: model.RoleBuyer, DisplayName: "Bob"})
	repo.AddUser(model.User{ID: "u-odd", Email: "odd@example.com", Role: "moderator"})

	auctions := []model.Auction{
		{
			ID: "open1", Name: "Camera", Category: "Electronics", StartingPrice: 100,
			StartTime: now.Add(-time.Hour), EndTime: now.Add(48 * time.Hour), Status: model.AuctionAccepted,
			SellerEmail: sellerEmail,
		},
		{
			ID: "pending1", Name: "Bookshelf", Category: "Furniture", StartingPrice: 80,
			StartTime: now.Add(time.Hour), EndTime: now.Add(72 * time.Hour), Status: model.AuctionPending,
			SellerEmail: sellerEmail,
		},
		{
			ID: "ended1", Name: "Vinyl", Category: "Music", StartingPrice: 60, CurrentBid: 95,
			StartTime: now.Add(-72 * time.Hour), EndTime: now.Add(-time.Minute), Status: model.AuctionAccepted,
			SellerEmail: sellerEmail,
			TopBidders:  []model.Bidder{{Email: buyerEmail, Name: "Bob", Amount: 95, BidAt: now.Add(-2 * time.Hour)}},
		},
		{
			ID: "other1", Name: "Lamp", Category: "Home", StartingPrice: 20,
			StartTime: now.Add(-time.Hour), EndTime: now.Add(24 * time.Hour), Status: model.AuctionAccepted,
			SellerEmail: "someone@example.com",
		},
	}
	for _, a := range auctions {
		require.NoError(t, repo.InsertAuction(a))
	}

	repo.AddPayment(model.Payment{
		ID:             "pay1",
		BuyerInfo:      model.PartyInfo{ID: "u-buyer", Name: "Bob", Email: buyerEmail},
		SellerInfo:     model.PartyInfo{Name: "Sally", Email: sellerEmail},
		ItemInfo:       model.ItemInfo{ID: "ended1", Name: "Vinyl"},
		Amount:         95,
		PaymentStatus:  model.PaymentSuccess,
		PaymentDate:    now.Add(-time.Hour),
		DeliveryStatus: model.DeliveryPending,
	})
	repo.AddPayment(model.Payment{
		ID:             "pay2",
		BuyerInfo:      model.PartyInfo{ID: "u-other", Name: "Eve", Email: "eve@example.com"},
		SellerInfo:     model.PartyInfo{Name: "Someone", Email: "someone@example.com"},
		ItemInfo:       model.ItemInfo{ID: "other1", Name: "Lamp"},
		Amount:         25,
		PaymentStatus:  model.PaymentPending,
		PaymentDate:    now.Add(-2 * time.Hour),
		DeliveryStatus: model.DeliveryPending,
	})

	repo.AddBlog(model.BlogPost{ID: "blog1", Title: "Welcome", Featured: true, CreatedAt: now.Add(-48 * time.Hour), AuthorEmail: adminEmail})
	repo.AddBlog(model.BlogPost{ID: "blog2", Title: "Photo tips", CreatedAt: now.Add(-24 * time.Hour), AuthorEmail: sellerEmail})
}

// Envelope is the dashboard response shape
type Envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

// ExecuteRequest runs a JSON request against router and decodes the envelope
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body any) (Envelope, *httptest.ResponseRecorder) {
	t.Helper()
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var env Envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return env, w
}

// StartSession signs email in and returns the session id
func StartSession(t *testing.T, env *TestEnv, email string) string {
	t.Helper()
	resp, w := ExecuteRequest(t, env.Dashboard, http.MethodPost, "/sessions", map[string]string{"email": email})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.SessionID)
	return data.SessionID
}

// ScreenItems decodes the items of a screen response
func ScreenItems[T any](t *testing.T, resp Envelope) []T {
	t.Helper()
	var page struct {
		Items []T `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	return page.Items
}

// SubmissionRequest builds a multipart auction submission with n square PNGs of side px
func SubmissionRequest(t *testing.T, url string, fields map[string]string, n, px int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for i := 0; i < n; i++ {
		var img bytes.Buffer
		require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, px, px))))
		fw, err := mw.CreateFormFile("images", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(img.Bytes())
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
