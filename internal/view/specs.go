package view

import (
	"cmp"
	"strings"
	"time"

	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/status"
)

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// AuctionSpec filters auctions by their derived status, start time and current price
func AuctionSpec(clock status.Clock) Spec[model.Auction] {
	if clock == nil {
		clock = status.SystemClock
	}
	return Spec[model.Auction]{
		SearchFields: []func(model.Auction) string{
			func(a model.Auction) string { return a.Name },
			func(a model.Auction) string { return a.Category },
			func(a model.Auction) string { return a.SellerEmail },
			func(a model.Auction) string { return a.SellerDisplayName },
		},
		Status: func(a model.Auction, now time.Time) string { return status.Derived(a, now) },
		Date:   func(a model.Auction) time.Time { return a.StartTime },
		Amount: func(a model.Auction) float64 { return a.Price() },
		SortKeys: map[string]func(a, b model.Auction) int{
			"name":          func(a, b model.Auction) int { return compareFold(a.Name, b.Name) },
			"category":      func(a, b model.Auction) int { return compareFold(a.Category, b.Category) },
			"startingPrice": func(a, b model.Auction) int { return cmp.Compare(a.StartingPrice, b.StartingPrice) },
			"currentBid":    func(a, b model.Auction) int { return cmp.Compare(a.Price(), b.Price()) },
			"startTime":     func(a, b model.Auction) int { return a.StartTime.Compare(b.StartTime) },
			"endTime":       func(a, b model.Auction) int { return a.EndTime.Compare(b.EndTime) },
		},
		Now: clock,
	}
}

// PaymentSpec filters payments by settlement status, payment date and amount
func PaymentSpec() Spec[model.Payment] {
	return Spec[model.Payment]{
		SearchFields: []func(model.Payment) string{
			func(p model.Payment) string { return p.ID },
			func(p model.Payment) string { return p.ItemInfo.Name },
			func(p model.Payment) string { return p.BuyerInfo.Name },
			func(p model.Payment) string { return p.BuyerInfo.Email },
			func(p model.Payment) string { return p.SellerInfo.Name },
			func(p model.Payment) string { return p.SellerInfo.Email },
		},
		Status: func(p model.Payment, _ time.Time) string { return string(p.PaymentStatus) },
		Date:   func(p model.Payment) time.Time { return p.PaymentDate },
		Amount: func(p model.Payment) float64 { return p.Amount },
		SortKeys: map[string]func(a, b model.Payment) int{
			"amount":         func(a, b model.Payment) int { return cmp.Compare(a.Amount, b.Amount) },
			"paymentDate":    func(a, b model.Payment) int { return a.PaymentDate.Compare(b.PaymentDate) },
			"deliveryStatus": func(a, b model.Payment) int { return strings.Compare(string(a.DeliveryStatus), string(b.DeliveryStatus)) },
			"buyer":          func(a, b model.Payment) int { return compareFold(a.BuyerInfo.Name, b.BuyerInfo.Name) },
		},
	}
}

// Blog post status buckets
const (
	BlogFeatured = "featured"
	BlogStandard = "standard"
)

// BlogSpec filters blog posts by featured flag and creation date. Posts have no amount.
func BlogSpec() Spec[model.BlogPost] {
	return Spec[model.BlogPost]{
		SearchFields: []func(model.BlogPost) string{
			func(b model.BlogPost) string { return b.Title },
			func(b model.BlogPost) string { return b.Category },
		},
		Status: func(b model.BlogPost, _ time.Time) string {
			if b.Featured {
				return BlogFeatured
			}
			return BlogStandard
		},
		Date: func(b model.BlogPost) time.Time { return b.CreatedAt },
		SortKeys: map[string]func(a, b model.BlogPost) int{
			"title":     func(a, b model.BlogPost) int { return compareFold(a.Title, b.Title) },
			"createdAt": func(a, b model.BlogPost) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
	}
}
