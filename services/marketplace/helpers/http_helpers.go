package helpers

import (
	"errors"
	"net/http"

	"auction-dashboard/internal/marketerrors"
	"auction-dashboard/utils"

	"github.com/gin-gonic/gin"
)

// RespondMessage writes the marketplace's plain {message} body
func RespondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Message: message})
}

// HandleBindError sends a standardized error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	RespondMessage(c, http.StatusBadRequest, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, marketerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, marketerrors.ErrPaymentNotFound):
		return http.StatusNotFound, "payment not found"
	case errors.Is(err, marketerrors.ErrBlogNotFound):
		return http.StatusNotFound, "blog post not found"
	case errors.Is(err, marketerrors.ErrUserNotFound):
		return http.StatusBadRequest, "email is required"
	case errors.Is(err, marketerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, marketerrors.ErrInvalidAuction):
		return http.StatusBadRequest, "invalid auction details"
	case errors.Is(err, marketerrors.ErrInvalidDelivery):
		return http.StatusBadRequest, "invalid delivery status change"
	case errors.Is(err, marketerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, marketerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction is not open for bidding"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleServiceError answers with the mapped status and logs the cause
func HandleServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	RespondMessage(c, status, message)

	logFields := map[string]any{"handler": handlerName, "error": err.Error()}
	for k, v := range fields {
		logFields[k] = v
	}
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", logFields)
		return
	}
	utils.Warn(handlerName+": request rejected", logFields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
