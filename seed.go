package main

import (
	"time"

	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/repository"
	"auction-dashboard/utils"
)

// prepopulate adds sample users, auctions, payments and blog posts to the
// in-memory marketplace
func prepopulate(repo *repository.MemoryRepo, now time.Time) {
	admin := model.User{ID: "u-admin", Email: "admin@example.com", Role: model.RoleAdmin, DisplayName: "Admin"}
	seller := model.User{ID: "u-seller", Email: "seller@example.com", Role: model.RoleSeller, DisplayName: "Sally Seller"}
	buyer := model.User{ID: "u-buyer", Email: "buyer@example.com", Role: model.RoleBuyer, DisplayName: "Bob Buyer", AccountBalance: 1500}
	for _, u := range []model.User{admin, seller, buyer} {
		repo.AddUser(u)
	}

	auctions := []model.Auction{
		{
			ID: "auction1", Name: "Vintage camera", Category: "Electronics", StartingPrice: 120,
			StartTime: now.Add(-48 * time.Hour), EndTime: now.Add(72 * time.Hour), Status: model.AuctionAccepted,
			Images:      []string{"https://picsum.photos/seed/camera/800"},
			SellerEmail: seller.Email, SellerDisplayName: seller.DisplayName,
		},
		{
			ID: "auction2", Name: "Oak bookshelf", Category: "Furniture", StartingPrice: 80,
			StartTime: now.Add(24 * time.Hour), EndTime: now.Add(96 * time.Hour), Status: model.AuctionPending,
			Images:      []string{"https://picsum.photos/seed/shelf/800"},
			SellerEmail: seller.Email, SellerDisplayName: seller.DisplayName,
		},
		{
			ID: "auction3", Name: "Signed vinyl", Category: "Music", StartingPrice: 60, CurrentBid: 95,
			StartTime: now.Add(-96 * time.Hour), EndTime: now.Add(-time.Minute), Status: model.AuctionAccepted,
			Images:      []string{"https://picsum.photos/seed/vinyl/800"},
			SellerEmail: seller.Email, SellerDisplayName: seller.DisplayName,
			TopBidders: []model.Bidder{
				{Email: buyer.Email, Name: buyer.DisplayName, Amount: 95, BidAt: now.Add(-2 * time.Hour)},
			},
		},
		{
			ID: "auction4", Name: "Replica watch", Category: "Accessories", StartingPrice: 40,
			StartTime: now.Add(-24 * time.Hour), EndTime: now.Add(24 * time.Hour), Status: model.AuctionRejected,
			SellerEmail: seller.Email, SellerDisplayName: seller.DisplayName,
		},
	}
	for _, a := range auctions {
		if err := repo.InsertAuction(a); err != nil {
			utils.Warn("seed: auction skipped", map[string]any{"auction_id": a.ID, "error": err.Error()})
		}
	}

	repo.AddPayment(model.Payment{
		ID:             "payment1",
		BuyerInfo:      model.PartyInfo{ID: buyer.ID, Name: buyer.DisplayName, Email: buyer.Email},
		SellerInfo:     model.PartyInfo{Name: seller.DisplayName, Email: seller.Email},
		ItemInfo:       model.ItemInfo{ID: "auction3", Name: "Signed vinyl"},
		Amount:         95,
		PaymentStatus:  model.PaymentSuccess,
		PaymentMethod:  "card",
		PaymentDate:    now.Add(-time.Hour),
		DeliveryStatus: model.DeliveryPending,
	})
	repo.AddPayment(model.Payment{
		ID:             "payment2",
		BuyerInfo:      model.PartyInfo{ID: buyer.ID, Name: buyer.DisplayName, Email: buyer.Email},
		SellerInfo:     model.PartyInfo{Name: seller.DisplayName, Email: seller.Email},
		ItemInfo:       model.ItemInfo{ID: "auction1", Name: "Vintage camera"},
		Amount:         150,
		PaymentStatus:  model.PaymentPending,
		PaymentDate:    now.Add(-30 * time.Minute),
		DeliveryStatus: model.DeliveryPending,
	})

	repo.AddBlog(model.BlogPost{
		ID: "blog1", Title: "Welcome to the marketplace", Category: "News", Featured: true,
		FullContent: "How bidding, checkout and delivery work.", CreatedAt: now.Add(-240 * time.Hour), AuthorEmail: admin.Email,
	})
	repo.AddBlog(model.BlogPost{
		ID: "blog2", Title: "Photographing your listing", Category: "Guides",
		FullContent: "Four clear photos sell better than one.", CreatedAt: now.Add(-72 * time.Hour), AuthorEmail: seller.Email,
	})
}
