package dashboard

import (
	"fmt"
	"strings"

	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
)

func validAuctionStatus(s model.AuctionStatus) bool {
	switch s {
	case model.AuctionPending, model.AuctionAccepted, model.AuctionRejected:
		return true
	}
	return false
}

// checkModeration allows admins to change the moderation status only
func checkModeration(_ model.Auction, p model.AuctionPatch) error {
	if p.Name != nil || p.Category != nil || p.EndTime != nil {
		return fmt.Errorf("admins may only change the status: %w", marketerrors.ErrForbidden)
	}
	if p.Status == nil {
		return fmt.Errorf("%w: status is required", marketerrors.ErrValidation)
	}
	if !validAuctionStatus(*p.Status) {
		return fmt.Errorf("%w: unknown auction status %q", marketerrors.ErrValidation, *p.Status)
	}
	return nil
}

// checkSellerEdit allows sellers to change listing details but not moderation
func checkSellerEdit(current model.Auction, p model.AuctionPatch) error {
	if p.Status != nil {
		return fmt.Errorf("sellers cannot change the status: %w", marketerrors.ErrForbidden)
	}
	if p.Name == nil && p.Category == nil && p.EndTime == nil {
		return fmt.Errorf("%w: nothing to update", marketerrors.ErrValidation)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", marketerrors.ErrValidation)
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return fmt.Errorf("%w: category must not be empty", marketerrors.ErrValidation)
	}
	if p.EndTime != nil && !p.EndTime.After(current.StartTime) {
		return fmt.Errorf("%w: end time must be after the start time", marketerrors.ErrValidation)
	}
	return nil
}

// checkDelivery enforces forward-only delivery on paid orders
func checkDelivery(current model.Payment, p model.PaymentPatch) error {
	if !p.DeliveryStatus.Valid() {
		return fmt.Errorf("%w: %w: unknown status %q", marketerrors.ErrValidation, marketerrors.ErrInvalidDelivery, p.DeliveryStatus)
	}
	if current.PaymentStatus != model.PaymentSuccess {
		return fmt.Errorf("%w: %w: payment is not settled", marketerrors.ErrValidation, marketerrors.ErrInvalidDelivery)
	}
	if !current.DeliveryStatus.CanTransitionTo(p.DeliveryStatus) {
		return fmt.Errorf("%w: %w: %s to %s", marketerrors.ErrValidation, marketerrors.ErrInvalidDelivery, current.DeliveryStatus, p.DeliveryStatus)
	}
	return nil
}
