package submission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/storage"
	"auction-dashboard/internal/viewer"
	"auction-dashboard/utils"
)

// Creator creates auctions on the marketplace
type Creator interface {
	CreateAuction(ctx context.Context, a model.NewAuction) (model.Auction, error)
}

// ImageHost stores an image and returns its public URL
type ImageHost interface {
	Upload(ctx context.Context, owner string, img storage.Image) (string, error)
}

// Form is what a seller fills in to list a new auction
type Form struct {
	Name          string
	Category      string
	StartingPrice float64
	StartTime     time.Time
	EndTime       time.Time
	Images        []storage.Image
}

// Service validates a seller's form, hosts the images and creates the auction
type Service struct {
	api       Creator
	host      ImageHost
	minImages int
	maxDim    int
	now       func() time.Time
}

// NewService creates a submission service
func NewService(api Creator, host ImageHost, minImages, maxDim int) *Service {
	return &Service{api: api, host: host, minImages: minImages, maxDim: maxDim, now: time.Now}
}

// Validate checks the form without touching the network
func (s *Service) Validate(f Form) error {
	var problems []string
	if strings.TrimSpace(f.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(f.Category) == "" {
		problems = append(problems, "category is required")
	}
	if f.StartingPrice <= 0 {
		problems = append(problems, "starting price must be positive")
	}
	if f.StartTime.IsZero() || f.EndTime.IsZero() {
		problems = append(problems, "start and end time are required")
	} else if !f.EndTime.After(f.StartTime) {
		problems = append(problems, "end time must be after the start time")
	} else if !f.EndTime.After(s.now()) {
		problems = append(problems, "end time must be in the future")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", marketerrors.ErrValidation, strings.Join(problems, "; "))
	}
	if len(f.Images) < s.minImages {
		return fmt.Errorf("%w: got %d, need at least %d", marketerrors.ErrTooFewImages, len(f.Images), s.minImages)
	}
	return nil
}

// Submit creates the auction with pending status for moderation
func (s *Service) Submit(ctx context.Context, seller viewer.Seller, f Form) (model.Auction, error) {
	if err := s.Validate(f); err != nil {
		return model.Auction{}, fmt.Errorf("submission: %w", err)
	}

	// every image is decoded before the first upload
	scaled := make([]storage.Image, 0, len(f.Images))
	for _, img := range f.Images {
		out, err := storage.Downscale(img, s.maxDim)
		if err != nil {
			return model.Auction{}, fmt.Errorf("submission: %w: %w", marketerrors.ErrValidation, err)
		}
		scaled = append(scaled, out)
	}

	urls := make([]string, 0, len(scaled))
	for _, img := range scaled {
		url, err := s.host.Upload(ctx, seller.Email(), img)
		if err != nil {
			return model.Auction{}, fmt.Errorf("submission: upload images: %w: %w", marketerrors.ErrTransport, err)
		}
		urls = append(urls, url)
	}

	created, err := s.api.CreateAuction(ctx, model.NewAuction{
		Name:              strings.TrimSpace(f.Name),
		Category:          strings.TrimSpace(f.Category),
		StartingPrice:     f.StartingPrice,
		StartTime:         f.StartTime.UTC(),
		EndTime:           f.EndTime.UTC(),
		Images:            urls,
		Status:            model.AuctionPending,
		SellerEmail:       seller.Email(),
		SellerDisplayName: viewer.DisplayName(seller),
	})
	if err != nil {
		return model.Auction{}, fmt.Errorf("submission: create auction: %w", err)
	}

	utils.Info("submission: auction created", map[string]any{
		"auction_id": created.ID,
		"seller":     seller.Email(),
		"images":     len(urls),
	})
	return created, nil
}
