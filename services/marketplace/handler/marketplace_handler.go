package handler

import (
	"context"
	"net/http"

	model "auction-dashboard/internal/models"
	"auction-dashboard/services/marketplace/helpers"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -destination=mock_service.go -package=handler auction-dashboard/services/marketplace/handler MarketplaceServiceInterface

type MarketplaceServiceInterface interface {
	ListAuctions(sellerEmail string) ([]model.Auction, error)
	CreateAuction(na model.NewAuction) (model.Auction, error)
	UpdateAuction(ctx context.Context, id string, patch model.AuctionPatch) (model.Auction, error)
	DeleteAuction(id string) error
	PlaceBid(auctionID, email, name string, amount float64) (model.Auction, error)
	ListPayments(buyerID, sellerEmail string) ([]model.Payment, error)
	UpdatePayment(id string, patch model.PaymentPatch) (model.Payment, error)
	FindUsers(email string) ([]model.User, error)
	ListBlogs(authorEmail string) ([]model.BlogPost, error)
	DeleteBlog(id string) error
}

// MarketplaceHandler serves the marketplace REST contract: bare JSON
// bodies on success, {message} on failure
type MarketplaceHandler struct {
	service MarketplaceServiceInterface
}

func NewMarketplaceHandler(service MarketplaceServiceInterface) *MarketplaceHandler {
	return &MarketplaceHandler{service: service}
}

// ListAuctionsHandler handles GET /auctions[?email=]
func (h *MarketplaceHandler) ListAuctionsHandler(c *gin.Context) {
	email := c.Query("email")
	auctions, err := h.service.ListAuctions(email)
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", err, map[string]any{"email": email})
		return
	}
	if auctions == nil {
		auctions = []model.Auction{}
	}
	c.JSON(http.StatusOK, auctions)
	helpers.LogSuccess("ListAuctionsHandler", "auctions listed", map[string]any{"email": email, "count": len(auctions)})
}

// CreateAuctionHandler handles POST /auctions
func (h *MarketplaceHandler) CreateAuctionHandler(c *gin.Context) {
	var req model.NewAuction
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	created, err := h.service.CreateAuction(req)
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{"seller": req.SellerEmail})
		return
	}
	c.JSON(http.StatusCreated, created)
	helpers.LogSuccess("CreateAuctionHandler", "auction created", map[string]any{"auction_id": created.ID, "seller": created.SellerEmail})
}

// UpdateAuctionHandler handles PATCH /auctions/:id
func (h *MarketplaceHandler) UpdateAuctionHandler(c *gin.Context) {
	id := c.Param("id")
	var patch model.AuctionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		helpers.HandleBindError(c, "UpdateAuctionHandler", err)
		return
	}

	updated, err := h.service.UpdateAuction(c.Request.Context(), id, patch)
	if err != nil {
		helpers.HandleServiceError(c, "UpdateAuctionHandler", err, map[string]any{"auction_id": id})
		return
	}
	c.JSON(http.StatusOK, updated)
	helpers.LogSuccess("UpdateAuctionHandler", "auction updated", map[string]any{"auction_id": id, "status": updated.Status})
}

// DeleteAuctionHandler handles DELETE /auctions/:id
func (h *MarketplaceHandler) DeleteAuctionHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteAuction(id); err != nil {
		helpers.HandleServiceError(c, "DeleteAuctionHandler", err, map[string]any{"auction_id": id})
		return
	}
	helpers.RespondMessage(c, http.StatusOK, "auction deleted")
	helpers.LogSuccess("DeleteAuctionHandler", "auction deleted", map[string]any{"auction_id": id})
}

// PlaceBidHandler handles POST /auctions/:id/bids
func (h *MarketplaceHandler) PlaceBidHandler(c *gin.Context) {
	id := c.Param("id")
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	updated, err := h.service.PlaceBid(id, req.Email, req.Name, req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{"auction_id": id, "email": req.Email})
		return
	}
	c.JSON(http.StatusCreated, updated)
	helpers.LogSuccess("PlaceBidHandler", "bid recorded", map[string]any{
		"auction_id": id,
		"email":      req.Email,
		"amount":     req.Amount,
	})
}

// ListPaymentsHandler handles GET /payments[?buyerId=|?sellerEmail=]
func (h *MarketplaceHandler) ListPaymentsHandler(c *gin.Context) {
	buyerID, sellerEmail := c.Query("buyerId"), c.Query("sellerEmail")
	payments, err := h.service.ListPayments(buyerID, sellerEmail)
	if err != nil {
		helpers.HandleServiceError(c, "ListPaymentsHandler", err, map[string]any{"buyer_id": buyerID, "seller": sellerEmail})
		return
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	c.JSON(http.StatusOK, payments)
	helpers.LogSuccess("ListPaymentsHandler", "payments listed", map[string]any{"count": len(payments)})
}

// UpdatePaymentHandler handles PATCH /payments/:id
func (h *MarketplaceHandler) UpdatePaymentHandler(c *gin.Context) {
	id := c.Param("id")
	var req helpers.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdatePaymentHandler", err)
		return
	}

	updated, err := h.service.UpdatePayment(id, model.PaymentPatch{DeliveryStatus: model.DeliveryStatus(req.DeliveryStatus)})
	if err != nil {
		helpers.HandleServiceError(c, "UpdatePaymentHandler", err, map[string]any{"payment_id": id})
		return
	}
	c.JSON(http.StatusOK, updated)
	helpers.LogSuccess("UpdatePaymentHandler", "payment updated", map[string]any{"payment_id": id, "delivery": updated.DeliveryStatus})
}

// FindUsersHandler handles GET /users?email=. The result is always an array.
func (h *MarketplaceHandler) FindUsersHandler(c *gin.Context) {
	email := c.Query("email")
	users, err := h.service.FindUsers(email)
	if err != nil {
		helpers.HandleServiceError(c, "FindUsersHandler", err, map[string]any{"email": email})
		return
	}
	if users == nil {
		users = []model.User{}
	}
	c.JSON(http.StatusOK, users)
}

// ListBlogsHandler handles GET /blogs/:email
func (h *MarketplaceHandler) ListBlogsHandler(c *gin.Context) {
	email := c.Param("email")
	blogs, err := h.service.ListBlogs(email)
	if err != nil {
		helpers.HandleServiceError(c, "ListBlogsHandler", err, map[string]any{"email": email})
		return
	}
	if blogs == nil {
		blogs = []model.BlogPost{}
	}
	c.JSON(http.StatusOK, blogs)
}

// DeleteBlogHandler handles DELETE /delete/:id
func (h *MarketplaceHandler) DeleteBlogHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteBlog(id); err != nil {
		helpers.HandleServiceError(c, "DeleteBlogHandler", err, map[string]any{"blog_id": id})
		return
	}
	helpers.RespondMessage(c, http.StatusOK, "blog post deleted")
	helpers.LogSuccess("DeleteBlogHandler", "blog post deleted", map[string]any{"blog_id": id})
}
