package helpers

// Request DTOs
type PlaceBidRequest struct {
	Email  string  `json:"email" binding:"required,email"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type UpdatePaymentRequest struct {
	DeliveryStatus string `json:"deliveryStatus" binding:"required"`
}

// MessageResponse is the body of every error and of bodiless successes
type MessageResponse struct {
	Message string `json:"message"`
}
