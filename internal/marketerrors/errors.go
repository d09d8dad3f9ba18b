package marketerrors

import (
	"errors"
	"fmt"
)

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrBlogNotFound    = errors.New("blog post not found")
	ErrUserNotFound    = errors.New("user not found")
)

// business logic errors
var (
	ErrInvalidBid      = errors.New("invalid bid")
	ErrBidTooLow       = errors.New("bid amount too low")
	ErrAuctionClosed   = errors.New("auction is not open for bidding")
	ErrInvalidAuction  = errors.New("invalid auction")
	ErrInvalidDelivery = errors.New("invalid delivery status transition")
)

// client-side validation errors, never sent to the network
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidDateRange   = fmt.Errorf("%w: date range start is after its end", ErrValidation)
	ErrInvalidAmountRange = fmt.Errorf("%w: minimum amount is above the maximum", ErrValidation)
	ErrInvalidQuery       = fmt.Errorf("%w: invalid query", ErrValidation)
	ErrTooFewImages       = fmt.Errorf("%w: not enough images", ErrValidation)
)

// dashboard state errors
var (
	ErrTransport       = errors.New("marketplace unreachable")
	ErrForbidden       = errors.New("action not allowed for this role")
	ErrUnknownRole     = errors.New("unknown user role")
	ErrSessionNotFound = errors.New("session not found")
	ErrSuperseded      = errors.New("request superseded by a newer one")
	ErrClosed          = errors.New("screen closed")
	ErrUnknownScreen   = errors.New("unknown screen")
	ErrRowNotFound     = errors.New("item is not in the loaded collection")
	ErrRateLimited     = errors.New("rate limit exceeded")
)

// ServerError is a business error reported by the marketplace API.
// Message is surfaced to the user verbatim.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("marketplace returned status %d", e.Status)
	}
	return e.Message
}

// Kind classifies an error for presentation
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindValidation
	KindServer
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// KindOf returns the presentation kind of err
func KindOf(err error) Kind {
	var se *ServerError
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnknownRole):
		return KindForbidden
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrUnknownScreen), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrRowNotFound):
		return KindNotFound
	case errors.As(err, &se):
		return KindServer
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}

// ServerMessage returns the verbatim server message carried by err, if any
func ServerMessage(err error) (string, bool) {
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message, true
	}
	return "", false
}
