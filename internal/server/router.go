package server

import (
	dashhandler "auction-dashboard/services/dashboard/handler"
	mphandler "auction-dashboard/services/marketplace/handler"

	"github.com/gin-gonic/gin"
)

func newEngine() *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	return router
}

// SetupRouter configures the dashboard routes. Refreshes go through the
// limiter since each one is a round trip to the marketplace.
func SetupRouter(h *dashhandler.DashboardHandler, limiter *RateLimiter) *gin.Engine {
	router := newEngine()

	sessions := router.Group("/sessions")
	{
		sessions.POST("", h.StartSessionHandler)
		sessions.DELETE("/:sid", h.EndSessionHandler)
		sessions.GET("/:sid/notifications", h.ListNotificationsHandler)
		sessions.POST("/:sid/submissions", h.SubmitAuctionHandler)
	}

	screens := sessions.Group("/:sid/screens/:screen")
	{
		screens.GET("", h.GetScreenHandler)
		screens.POST("/refresh", limiter.Limit(), h.RefreshScreenHandler)
		screens.PATCH("/items/:id", h.EditItemHandler)
		screens.DELETE("/items/:id", h.DeleteItemHandler)
		screens.GET("/selection", h.GetSelectionHandler)
		screens.PUT("/selection/:id", h.SelectItemHandler)
		screens.DELETE("/selection", h.ClearSelectionHandler)
	}

	return router
}

// SetupMarketplaceRouter configures the marketplace API the dashboard talks to
func SetupMarketplaceRouter(h *mphandler.MarketplaceHandler) *gin.Engine {
	router := newEngine()

	auctions := router.Group("/auctions")
	{
		auctions.GET("", h.ListAuctionsHandler)
		auctions.POST("", h.CreateAuctionHandler)
		auctions.PATCH("/:id", h.UpdateAuctionHandler)
		auctions.DELETE("/:id", h.DeleteAuctionHandler)
		auctions.POST("/:id/bids", h.PlaceBidHandler)
	}

	payments := router.Group("/payments")
	{
		payments.GET("", h.ListPaymentsHandler)
		payments.PATCH("/:id", h.UpdatePaymentHandler)
	}

	router.GET("/users", h.FindUsersHandler)
	router.GET("/blogs/:email", h.ListBlogsHandler)
	router.DELETE("/delete/:id", h.DeleteBlogHandler)

	return router
}
