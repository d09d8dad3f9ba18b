package repository

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
)

//go:generate mockgen -destination=mock_repository.go -package=repository auction-dashboard/internal/repository MarketplaceDB

// MarketplaceDB defines the storage behind the marketplace stub
type MarketplaceDB interface {
	ListAuctions(sellerEmail string) ([]model.Auction, error)
	GetAuction(id string) (model.Auction, error)
	InsertAuction(a model.Auction) error
	UpdateAuction(id string, fn func(*model.Auction) error) (model.Auction, error)
	DeleteAuction(id string) error
	ListPayments(buyerID, sellerEmail string) ([]model.Payment, error)
	UpdatePayment(id string, fn func(*model.Payment) error) (model.Payment, error)
	FindUsers(email string) ([]model.User, error)
	ListBlogs(authorEmail string) ([]model.BlogPost, error)
	DeleteBlog(id string) error
}

// MemoryRepo is a concurrency-safe in-memory implementation of MarketplaceDB.
// Lists come back in insertion order.
type MemoryRepo struct {
	mu           sync.RWMutex
	auctions     map[string]model.Auction // key: auctionID
	auctionOrder []string
	payments     map[string]model.Payment // key: paymentID
	paymentOrder []string
	users        map[string]model.User // key: lowercased email
	blogs        map[string]model.BlogPost
	blogOrder    []string
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[string]model.Auction),
		payments: make(map[string]model.Payment),
		users:    make(map[string]model.User),
		blogs:    make(map[string]model.BlogPost),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ListAuctions returns every auction, or only the seller's when sellerEmail is set
func (r *MemoryRepo) ListAuctions(sellerEmail string) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Auction, 0, len(r.auctionOrder))
	for _, id := range r.auctionOrder {
		a := r.auctions[id]
		if sellerEmail != "" && !strings.EqualFold(a.SellerEmail, sellerEmail) {
			continue
		}
		out = append(out, cloneAuction(a))
	}
	return out, nil
}

// GetAuction returns one auction
func (r *MemoryRepo) GetAuction(id string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[id]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", id, marketerrors.ErrAuctionNotFound)
	}
	return cloneAuction(a), nil
}

// InsertAuction stores a new auction
func (r *MemoryRepo) InsertAuction(a model.Auction) error {
	if a.ID == "" {
		return fmt.Errorf("insert auction: %w - missing id", marketerrors.ErrInvalidAuction)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.auctions[a.ID]; exists {
		return fmt.Errorf("insert auction %s: %w - duplicate id", a.ID, marketerrors.ErrInvalidAuction)
	}
	r.auctions[a.ID] = cloneAuction(a)
	r.auctionOrder = append(r.auctionOrder, a.ID)
	return nil
}

// UpdateAuction applies fn to the stored auction under the write lock, so a
// read-check-write sequence such as a bid is atomic. Nothing is stored when
// fn fails.
func (r *MemoryRepo) UpdateAuction(id string, fn func(*model.Auction) error) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[id]
	if !ok {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", id, marketerrors.ErrAuctionNotFound)
	}
	next := cloneAuction(a)
	if err := fn(&next); err != nil {
		return model.Auction{}, err
	}
	next.ID = id
	r.auctions[id] = next
	return cloneAuction(next), nil
}

// DeleteAuction removes an auction
func (r *MemoryRepo) DeleteAuction(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[id]; !ok {
		return fmt.Errorf("delete auction %s: %w", id, marketerrors.ErrAuctionNotFound)
	}
	delete(r.auctions, id)
	r.auctionOrder = slices.DeleteFunc(r.auctionOrder, func(s string) bool { return s == id })
	return nil
}

// ListPayments filters by buyer id, then by seller email; both empty lists all
func (r *MemoryRepo) ListPayments(buyerID, sellerEmail string) ([]model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Payment, 0, len(r.paymentOrder))
	for _, id := range r.paymentOrder {
		p := r.payments[id]
		if buyerID != "" && p.BuyerInfo.ID != buyerID {
			continue
		}
		if sellerEmail != "" && !strings.EqualFold(p.SellerInfo.Email, sellerEmail) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// UpdatePayment applies fn to the stored payment under the write lock
func (r *MemoryRepo) UpdatePayment(id string, fn func(*model.Payment) error) (model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return model.Payment{}, fmt.Errorf("update payment %s: %w", id, marketerrors.ErrPaymentNotFound)
	}
	if err := fn(&p); err != nil {
		return model.Payment{}, err
	}
	p.ID = id
	r.payments[id] = p
	return p, nil
}

// FindUsers returns the users registered under email; at most one
func (r *MemoryRepo) FindUsers(email string) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[emailKey(email)]
	if !ok {
		return []model.User{}, nil
	}
	return []model.User{u}, nil
}

// ListBlogs returns the posts written by authorEmail
func (r *MemoryRepo) ListBlogs(authorEmail string) ([]model.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.BlogPost, 0)
	for _, id := range r.blogOrder {
		b := r.blogs[id]
		if strings.EqualFold(b.AuthorEmail, authorEmail) {
			out = append(out, b)
		}
	}
	return out, nil
}

// DeleteBlog removes a blog post
func (r *MemoryRepo) DeleteBlog(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blogs[id]; !ok {
		return fmt.Errorf("delete blog %s: %w", id, marketerrors.ErrBlogNotFound)
	}
	delete(r.blogs, id)
	r.blogOrder = slices.DeleteFunc(r.blogOrder, func(s string) bool { return s == id })
	return nil
}

// AddUser seeds a user. Intended for local runs and tests.
func (r *MemoryRepo) AddUser(u model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[emailKey(u.Email)] = u
}

// AddPayment seeds a payment. Intended for local runs and tests.
func (r *MemoryRepo) AddPayment(p model.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.payments[p.ID]; !exists {
		r.paymentOrder = append(r.paymentOrder, p.ID)
	}
	r.payments[p.ID] = p
}

// AddBlog seeds a blog post. Intended for local runs and tests.
func (r *MemoryRepo) AddBlog(b model.BlogPost) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.blogs[b.ID]; !exists {
		r.blogOrder = append(r.blogOrder, b.ID)
	}
	r.blogs[b.ID] = b
}

// cloneAuction copies the slices so callers never share backing arrays with the store
func cloneAuction(a model.Auction) model.Auction {
	a.Images = slices.Clone(a.Images)
	a.TopBidders = slices.Clone(a.TopBidders)
	return a
}
