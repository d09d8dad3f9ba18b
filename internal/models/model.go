package models

import "time"

// Role gates which dashboard screens and actions a user can reach
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// AuctionStatus is the moderation status stored by the backend
type AuctionStatus string

const (
	AuctionPending  AuctionStatus = "pending"
	AuctionAccepted AuctionStatus = "Accepted"
	AuctionRejected AuctionStatus = "Rejected"
)

// StatusEnded is the derived bucket for auctions past their end time.
// It is never stored.
const StatusEnded = "Ended"

// PaymentStatus is the settlement state of a payment
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
)

// DeliveryStatus tracks shipment of a paid item
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryShipped   DeliveryStatus = "shipped"
	DeliveryDelivered DeliveryStatus = "delivered"
)

var deliveryOrder = map[DeliveryStatus]int{
	DeliveryPending:   0,
	DeliveryShipped:   1,
	DeliveryDelivered: 2,
}

// Valid reports whether s is a known delivery status
func (s DeliveryStatus) Valid() bool {
	_, ok := deliveryOrder[s]
	return ok
}

// CanTransitionTo reports whether an admin may move a payment from s to next.
// Delivery only moves forward.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	from, ok := deliveryOrder[s]
	if !ok {
		// unknown stored values are treated as pending
		from = 0
	}
	to, ok := deliveryOrder[next]
	return ok && to > from
}

// User is the persisted marketplace user record (dbUser)
type User struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	AccountBalance float64 `json:"accountBalance"`
	DisplayName    string  `json:"displayName"`
	PhotoURL       string  `json:"photoURL"`
}

// Bidder is one entry of an auction's top bidders
type Bidder struct {
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Amount float64   `json:"amount"`
	BidAt  time.Time `json:"bidAt"`
}

// Auction is a listing with a bidding window and a moderation status
type Auction struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Category          string        `json:"category"`
	StartingPrice     float64       `json:"startingPrice"`
	CurrentBid        float64       `json:"currentBid"`
	StartTime         time.Time     `json:"startTime"`
	EndTime           time.Time     `json:"endTime"`
	Status            AuctionStatus `json:"status"`
	Images            []string      `json:"images"`
	SellerEmail       string        `json:"sellerEmail"`
	SellerDisplayName string        `json:"sellerDisplayName"`
	TopBidders        []Bidder      `json:"topBidders"`
}

// Price returns the amount the auction currently stands at
func (a Auction) Price() float64 {
	if a.CurrentBid > 0 {
		return a.CurrentBid
	}
	return a.StartingPrice
}

// AuctionPatch carries the mutable auction fields of a PATCH /auctions/:id call
type AuctionPatch struct {
	Name     *string        `json:"name,omitempty"`
	Category *string        `json:"category,omitempty"`
	Status   *AuctionStatus `json:"status,omitempty"`
	EndTime  *time.Time     `json:"endTime,omitempty"`
}

// NewAuction is the body of a seller submission
type NewAuction struct {
	Name              string        `json:"name"`
	Category          string        `json:"category"`
	StartingPrice     float64       `json:"startingPrice"`
	StartTime         time.Time     `json:"startTime"`
	EndTime           time.Time     `json:"endTime"`
	Images            []string      `json:"images"`
	Status            AuctionStatus `json:"status"`
	SellerEmail       string        `json:"sellerEmail"`
	SellerDisplayName string        `json:"sellerDisplayName"`
}

// PartyInfo identifies the buyer or seller of a payment
type PartyInfo struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ItemInfo identifies the auction a payment settles
type ItemInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Payment is created when a buyer checks out a won auction.
// Financial fields are immutable once created.
type Payment struct {
	ID             string         `json:"id"`
	BuyerInfo      PartyInfo      `json:"buyerInfo"`
	SellerInfo     PartyInfo      `json:"sellerInfo"`
	ItemInfo       ItemInfo       `json:"itemInfo"`
	Amount         float64        `json:"amount"`
	PaymentStatus  PaymentStatus  `json:"PaymentStatus"`
	PaymentMethod  string         `json:"PaymentMethod"`
	PaymentDate    time.Time      `json:"paymentDate"`
	DeliveryStatus DeliveryStatus `json:"deliveryStatus"`
}

// PaymentPatch carries the only mutable payment field
type PaymentPatch struct {
	DeliveryStatus DeliveryStatus `json:"deliveryStatus"`
}

// BlogPost is an independent CRUD entity with no relation to auctions
type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	FullContent string    `json:"fullContent"`
	ImageURLs   []string  `json:"imageUrls"`
	Category    string    `json:"category"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
	AuthorEmail string    `json:"authorEmail"`
}

// Announcement is the payload of an announcement notification
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
