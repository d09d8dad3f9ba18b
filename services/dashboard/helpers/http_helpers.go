package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-dashboard/internal/marketerrors"
	"auction-dashboard/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONFailure(c, http.StatusBadRequest, marketerrors.KindValidation.String(), wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps dashboard errors to an HTTP status, their kind and
// the message shown to the user. Marketplace rejections keep the server's
// status and message.
func MapErrorToHTTP(err error) (int, marketerrors.Kind, string) {
	switch {
	case errors.Is(err, marketerrors.ErrClosed):
		return http.StatusGone, marketerrors.KindNotFound, "session has ended"
	case errors.Is(err, marketerrors.ErrSuperseded):
		return http.StatusConflict, marketerrors.KindUnknown, "request superseded by a newer one"
	}

	kind := marketerrors.KindOf(err)
	switch kind {
	case marketerrors.KindValidation:
		return http.StatusBadRequest, kind, validationMessage(err)
	case marketerrors.KindForbidden:
		return http.StatusForbidden, kind, "action not allowed for your role"
	case marketerrors.KindNotFound:
		return http.StatusNotFound, kind, notFoundMessage(err)
	case marketerrors.KindServer:
		var se *marketerrors.ServerError
		errors.As(err, &se)
		msg, ok := marketerrors.ServerMessage(err)
		if !ok {
			msg = "the marketplace rejected the request"
		}
		return se.Status, kind, msg
	case marketerrors.KindTransport:
		return http.StatusBadGateway, kind, "marketplace unreachable, please retry"
	default:
		return http.StatusInternalServerError, kind, "internal server error"
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, marketerrors.ErrInvalidDateRange):
		return "start date must be on or before the end date"
	case errors.Is(err, marketerrors.ErrInvalidAmountRange):
		return "minimum amount must not exceed the maximum"
	case errors.Is(err, marketerrors.ErrTooFewImages):
		return "not enough images"
	case errors.Is(err, marketerrors.ErrInvalidDelivery):
		return "delivery status can only move forward on paid orders"
	case errors.Is(err, marketerrors.ErrInvalidQuery):
		return "invalid filter or sort parameters"
	default:
		return "invalid request"
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, marketerrors.ErrSessionNotFound):
		return "session not found"
	case errors.Is(err, marketerrors.ErrUnknownScreen):
		return "unknown screen"
	case errors.Is(err, marketerrors.ErrUserNotFound):
		return "no marketplace account for this email"
	default:
		return "item not found"
	}
}

// ErrorInfoFor summarises err for embedding in a successful response
func ErrorInfoFor(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	_, kind, msg := MapErrorToHTTP(err)
	return &ErrorInfo{Kind: kind.String(), Message: msg}
}

// RespondError writes the mapped failure and logs it
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, kind, message := MapErrorToHTTP(err)
	utils.JSONFailure(c, status, kind.String(), err, message)

	logFields := map[string]any{"handler": handlerName, "kind": kind.String(), "error": err.Error()}
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
