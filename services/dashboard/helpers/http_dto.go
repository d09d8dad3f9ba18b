package helpers

import (
	"time"

	"auction-dashboard/internal/view"
)

// Request/Response DTOs
type StartSessionRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type SessionResponse struct {
	SessionID   string   `json:"session_id"`
	Role        string   `json:"role"`
	DisplayName string   `json:"display_name"`
	Screens     []string `json:"screens"`
}

// ErrorInfo tells the client how to present a failure. Kind is one of
// marketerrors.Kind's string forms.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Capabilities struct {
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
	Insert bool `json:"insert"`
}

// ScreenResponse is one rendered page of a dashboard screen. Error is set
// when the last fetch failed; Items then hold the last good data.
type ScreenResponse[T any] struct {
	Screen string `json:"screen"`
	view.Page[T]
	Loading      bool         `json:"loading"`
	Refreshing   bool         `json:"refreshing"`
	FromSnapshot bool         `json:"from_snapshot"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty"`
	Error        *ErrorInfo   `json:"error,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

type NotificationsResponse struct {
	Count int `json:"count"`
	Items any `json:"items"`
}
