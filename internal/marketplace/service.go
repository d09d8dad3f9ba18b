package marketplace

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/notify"
	"auction-dashboard/internal/repository"
	"auction-dashboard/internal/status"
	"auction-dashboard/utils"
)

// maxTopBidders is how many bidders an auction keeps, highest first
const maxTopBidders = 5

// Service implements the marketplace backend the dashboard talks to
type Service struct {
	repo      repository.MarketplaceDB
	publisher notify.Publisher
	now       func() time.Time

	mu       sync.Mutex
	notified map[string]bool // auctions whose winner was already told
}

// Option configures a Service
type Option func(*Service)

// WithPublisher sends announcement and auction-win notifications through p
func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new marketplace Service
func NewService(repo repository.MarketplaceDB, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		now:      time.Now,
		notified: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAuctions returns all auctions, or the seller's when sellerEmail is set
func (s *Service) ListAuctions(sellerEmail string) ([]model.Auction, error) {
	auctions, err := s.repo.ListAuctions(strings.TrimSpace(sellerEmail))
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// CreateAuction validates a submission and stores it
func (s *Service) CreateAuction(na model.NewAuction) (model.Auction, error) {
	if err := validateNewAuction(na); err != nil {
		return model.Auction{}, err
	}
	st := na.Status
	if st == "" {
		st = model.AuctionPending
	}

	a := model.Auction{
		ID:                utils.GenerateID(),
		Name:              strings.TrimSpace(na.Name),
		Category:          strings.TrimSpace(na.Category),
		StartingPrice:     na.StartingPrice,
		StartTime:         na.StartTime.UTC(),
		EndTime:           na.EndTime.UTC(),
		Status:            st,
		Images:            slices.Clone(na.Images),
		SellerEmail:       na.SellerEmail,
		SellerDisplayName: na.SellerDisplayName,
		TopBidders:        []model.Bidder{},
	}
	if err := s.repo.InsertAuction(a); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}
	return a, nil
}

func validateNewAuction(na model.NewAuction) error {
	switch {
	case strings.TrimSpace(na.Name) == "":
		return fmt.Errorf("service: %w - missing name", marketerrors.ErrInvalidAuction)
	case strings.TrimSpace(na.Category) == "":
		return fmt.Errorf("service: %w - missing category", marketerrors.ErrInvalidAuction)
	case strings.TrimSpace(na.SellerEmail) == "":
		return fmt.Errorf("service: %w - missing seller email", marketerrors.ErrInvalidAuction)
	case na.StartingPrice <= 0:
		return fmt.Errorf("service: %w - non-positive starting price", marketerrors.ErrInvalidAuction)
	case !na.EndTime.After(na.StartTime):
		return fmt.Errorf("service: %w - end time must be after start time", marketerrors.ErrInvalidAuction)
	case na.Status != "" && !validStatus(na.Status):
		return fmt.Errorf("service: %w - unknown status %q", marketerrors.ErrInvalidAuction, na.Status)
	}
	return nil
}

func validStatus(st model.AuctionStatus) bool {
	return st == model.AuctionPending || st == model.AuctionAccepted || st == model.AuctionRejected
}

// UpdateAuction applies a patch. Accepting an auction broadcasts an
// announcement when a publisher is configured.
func (s *Service) UpdateAuction(ctx context.Context, id string, patch model.AuctionPatch) (model.Auction, error) {
	if id == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", marketerrors.ErrInvalidAuction)
	}

	var accepted bool
	updated, err := s.repo.UpdateAuction(id, func(a *model.Auction) error {
		if patch.Name != nil {
			if strings.TrimSpace(*patch.Name) == "" {
				return fmt.Errorf("service: %w - empty name", marketerrors.ErrInvalidAuction)
			}
			a.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Category != nil {
			if strings.TrimSpace(*patch.Category) == "" {
				return fmt.Errorf("service: %w - empty category", marketerrors.ErrInvalidAuction)
			}
			a.Category = strings.TrimSpace(*patch.Category)
		}
		if patch.EndTime != nil {
			if !patch.EndTime.After(a.StartTime) {
				return fmt.Errorf("service: %w - end time must be after start time", marketerrors.ErrInvalidAuction)
			}
			a.EndTime = patch.EndTime.UTC()
		}
		if patch.Status != nil {
			if !validStatus(*patch.Status) {
				return fmt.Errorf("service: %w - unknown status %q", marketerrors.ErrInvalidAuction, *patch.Status)
			}
			accepted = a.Status != model.AuctionAccepted && *patch.Status == model.AuctionAccepted
			a.Status = *patch.Status
		}
		return nil
	})
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to update auction %s: %w", id, err)
	}

	if accepted {
		s.publish(ctx, "", notify.Announcement{
			Header: notify.Header{Title: "New auction", Message: updated.Name + " is open for bidding"},
			Announcement: model.Announcement{
				ID:        updated.ID,
				Title:     updated.Name,
				Content:   fmt.Sprintf("%s starts at %.2f", updated.Name, updated.StartingPrice),
				CreatedAt: s.now().UTC(),
			},
		})
	}
	return updated, nil
}

// DeleteAuction removes an auction
func (s *Service) DeleteAuction(id string) error {
	if id == "" {
		return fmt.Errorf("service: %w - empty auction ID", marketerrors.ErrInvalidAuction)
	}
	if err := s.repo.DeleteAuction(id); err != nil {
		return fmt.Errorf("service: failed to delete auction %s: %w", id, err)
	}
	return nil
}

// PlaceBid records a bid. The auction must be accepted and running, and the
// amount must beat the current bid (or at least meet the starting price).
func (s *Service) PlaceBid(auctionID, email, name string, amount float64) (model.Auction, error) {
	if auctionID == "" || strings.TrimSpace(email) == "" {
		return model.Auction{}, fmt.Errorf("service: %w - missing auctionID or email", marketerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return model.Auction{}, fmt.Errorf("service: %w - non-positive bid amount", marketerrors.ErrInvalidBid)
	}

	now := s.now()
	updated, err := s.repo.UpdateAuction(auctionID, func(a *model.Auction) error {
		if !status.AcceptsBids(*a, now) {
			return fmt.Errorf("service: %w - status %s", marketerrors.ErrAuctionClosed, status.Derived(*a, now))
		}
		if a.CurrentBid > 0 && amount <= a.CurrentBid {
			return fmt.Errorf("service: %w - current highest bid is %.2f", marketerrors.ErrBidTooLow, a.CurrentBid)
		}
		if a.CurrentBid == 0 && amount < a.StartingPrice {
			return fmt.Errorf("service: %w - starting price is %.2f", marketerrors.ErrBidTooLow, a.StartingPrice)
		}

		a.CurrentBid = amount
		a.TopBidders = append(a.TopBidders, model.Bidder{Email: email, Name: name, Amount: amount, BidAt: now.UTC()})
		slices.SortStableFunc(a.TopBidders, func(x, y model.Bidder) int {
			switch {
			case x.Amount > y.Amount:
				return -1
			case x.Amount < y.Amount:
				return 1
			}
			return 0
		})
		if len(a.TopBidders) > maxTopBidders {
			a.TopBidders = a.TopBidders[:maxTopBidders]
		}
		return nil
	})
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to place bid on auction %s by %s: %w", auctionID, email, err)
	}
	return updated, nil
}

// ListPayments filters by buyer id or seller email
func (s *Service) ListPayments(buyerID, sellerEmail string) ([]model.Payment, error) {
	payments, err := s.repo.ListPayments(strings.TrimSpace(buyerID), strings.TrimSpace(sellerEmail))
	if err != nil {
		return nil, fmt.Errorf("service: failed to list payments: %w", err)
	}
	return payments, nil
}

// UpdatePayment changes the delivery status. Delivery only moves forward and
// only on settled payments.
func (s *Service) UpdatePayment(id string, patch model.PaymentPatch) (model.Payment, error) {
	if !patch.DeliveryStatus.Valid() {
		return model.Payment{}, fmt.Errorf("service: %w - unknown status %q", marketerrors.ErrInvalidDelivery, patch.DeliveryStatus)
	}
	updated, err := s.repo.UpdatePayment(id, func(p *model.Payment) error {
		if p.PaymentStatus != model.PaymentSuccess {
			return fmt.Errorf("service: %w - payment is not settled", marketerrors.ErrInvalidDelivery)
		}
		if !p.DeliveryStatus.CanTransitionTo(patch.DeliveryStatus) {
			return fmt.Errorf("service: %w - %s to %s", marketerrors.ErrInvalidDelivery, p.DeliveryStatus, patch.DeliveryStatus)
		}
		p.DeliveryStatus = patch.DeliveryStatus
		return nil
	})
	if err != nil {
		return model.Payment{}, fmt.Errorf("service: failed to update payment %s: %w", id, err)
	}
	return updated, nil
}

// FindUsers returns the users registered under email, possibly none
func (s *Service) FindUsers(email string) ([]model.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("service: %w - empty email", marketerrors.ErrUserNotFound)
	}
	users, err := s.repo.FindUsers(email)
	if err != nil {
		return nil, fmt.Errorf("service: failed to find user %s: %w", email, err)
	}
	return users, nil
}

// ListBlogs returns an author's posts
func (s *Service) ListBlogs(authorEmail string) ([]model.BlogPost, error) {
	blogs, err := s.repo.ListBlogs(strings.TrimSpace(authorEmail))
	if err != nil {
		return nil, fmt.Errorf("service: failed to list blogs for %s: %w", authorEmail, err)
	}
	return blogs, nil
}

// DeleteBlog removes a post
func (s *Service) DeleteBlog(id string) error {
	if err := s.repo.DeleteBlog(id); err != nil {
		return fmt.Errorf("service: failed to delete blog %s: %w", id, err)
	}
	return nil
}

// NotifyWinners tells the top bidder of every ended, accepted auction that
// they won. Each auction is announced once. It returns how many were sent.
func (s *Service) NotifyWinners(ctx context.Context) (int, error) {
	if s.publisher == nil {
		return 0, nil
	}
	auctions, err := s.repo.ListAuctions("")
	if err != nil {
		return 0, fmt.Errorf("service: failed to list auctions: %w", err)
	}

	now := s.now()
	sent := 0
	for _, a := range auctions {
		if a.Status != model.AuctionAccepted || !status.IsAuctionEnded(a, now) || len(a.TopBidders) == 0 {
			continue
		}
		s.mu.Lock()
		done := s.notified[a.ID]
		s.notified[a.ID] = true
		s.mu.Unlock()
		if done {
			continue
		}

		winner := a.TopBidders[0]
		if s.publish(ctx, winner.Email, notify.AuctionWin{
			Header:      notify.Header{Title: "You won!", Message: "You won " + a.Name},
			AuctionID:   a.ID,
			AuctionName: a.Name,
			Amount:      winner.Amount,
		}) {
			sent++
		} else {
			// retry on the next pass
			s.mu.Lock()
			delete(s.notified, a.ID)
			s.mu.Unlock()
		}
	}
	return sent, nil
}

// RunWinnerNotifier calls NotifyWinners every interval until ctx ends
func (s *Service) RunWinnerNotifier(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.NotifyWinners(ctx); err != nil {
				utils.Warn("service: winner notification pass failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

// publish reports whether the event was handed to the publisher
func (s *Service) publish(ctx context.Context, recipient string, e notify.Event) bool {
	if s.publisher == nil {
		return false
	}
	payload, err := notify.Encode(e)
	if err != nil {
		utils.Error("service: encode notification", map[string]any{"error": err.Error()})
		return false
	}
	if err := s.publisher.Publish(ctx, recipient, payload); err != nil {
		utils.Warn("service: publish notification failed", map[string]any{
			"recipient": recipient,
			"type":      notify.KindName(e),
			"error":     err.Error(),
		})
		return false
	}
	return true
}
