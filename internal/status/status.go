package status

import (
	"time"

	model "auction-dashboard/internal/models"
)

// Clock returns the current time. Callers read it on every evaluation;
// derived status is never cached.
type Clock func() time.Time

// SystemClock is the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// IsAuctionEnded reports whether the auction's end time is strictly before now
func IsAuctionEnded(a model.Auction, now time.Time) bool {
	return a.EndTime.Before(now)
}

// Derived returns the status used for filtering and display.
// An ended auction is bucketed as "Ended" regardless of its stored status.
func Derived(a model.Auction, now time.Time) string {
	if IsAuctionEnded(a, now) {
		return model.StatusEnded
	}
	return string(a.Status)
}

// AcceptsBids reports whether bids may be placed at now
func AcceptsBids(a model.Auction, now time.Time) bool {
	return a.Status == model.AuctionAccepted && !now.Before(a.StartTime) && !IsAuctionEnded(a, now)
}
