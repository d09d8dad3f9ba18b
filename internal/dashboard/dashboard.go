package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auction-dashboard/internal/apiclient"
	"auction-dashboard/internal/cache"
	"auction-dashboard/internal/loader"
	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/status"
	"auction-dashboard/internal/view"
	"auction-dashboard/internal/viewer"
)

//go:generate mockgen -destination=mock_api.go -package=dashboard auction-dashboard/internal/dashboard API

// Screen names
const (
	ScreenAuctions = "auctions"
	ScreenPayments = "payments"
	ScreenBlogs    = "blogs"
)

// API is the part of the marketplace client the dashboards use
type API interface {
	ListAuctions(ctx context.Context, sellerEmail string) ([]model.Auction, error)
	UpdateAuction(ctx context.Context, id string, patch model.AuctionPatch) (model.Auction, error)
	DeleteAuction(ctx context.Context, id string) error
	ListPayments(ctx context.Context, f apiclient.PaymentFilter) ([]model.Payment, error)
	UpdatePayment(ctx context.Context, id string, patch model.PaymentPatch) (model.Payment, error)
	ListBlogs(ctx context.Context, email string) ([]model.BlogPost, error)
	DeleteBlog(ctx context.Context, id string) error
}

// Submitter creates a seller's auction on the marketplace
type Submitter[F any] interface {
	Submit(ctx context.Context, seller viewer.Seller, form F) (model.Auction, error)
}

// Options tune how screens are built
type Options struct {
	Clock status.Clock
	// KV enables last-good snapshots when set
	KV          cache.KV
	SnapshotTTL time.Duration
}

// Dashboard holds the screens of one viewer. Blogs is nil for buyers.
type Dashboard struct {
	Viewer   viewer.Viewer
	Auctions *Screen[model.Auction, model.AuctionPatch]
	Payments *Screen[model.Payment, model.PaymentPatch]
	Blogs    *Screen[model.BlogPost, struct{}]
}

func auctionID(a model.Auction) string { return a.ID }
func paymentID(p model.Payment) string { return p.ID }
func blogID(b model.BlogPost) string   { return b.ID }

// New builds the dashboard for v. The role decides which screens exist,
// which key each loads and which actions are allowed.
func New(v viewer.Viewer, api API, opts Options) (*Dashboard, error) {
	if opts.Clock == nil {
		opts.Clock = status.SystemClock
	}

	d := &Dashboard{Viewer: v}

	switch vv := v.(type) {
	case viewer.Admin:
		d.Auctions = newAuctions(api, opts, "", Capabilities[model.Auction, model.AuctionPatch]{
			Edit:   api.UpdateAuction,
			Check:  checkModeration,
			Delete: api.DeleteAuction,
		})
		d.Payments = newPayments(api, opts, apiclient.PaymentFilter{}, Capabilities[model.Payment, model.PaymentPatch]{
			Edit:  api.UpdatePayment,
			Check: checkDelivery,
		})
		d.Blogs = newBlogs(api, opts, vv.Email())

	case viewer.Seller:
		d.Auctions = newAuctions(api, opts, vv.Email(), Capabilities[model.Auction, model.AuctionPatch]{
			Edit:   api.UpdateAuction,
			Check:  checkSellerEdit,
			Delete: api.DeleteAuction,
			Insert: true,
		})
		d.Payments = newPayments(api, opts, apiclient.PaymentFilter{SellerEmail: vv.Email()}, Capabilities[model.Payment, model.PaymentPatch]{})
		d.Blogs = newBlogs(api, opts, vv.Email())

	case viewer.Buyer:
		d.Auctions = newAuctions(api, opts, "", Capabilities[model.Auction, model.AuctionPatch]{})
		d.Payments = newPayments(api, opts, apiclient.PaymentFilter{BuyerID: vv.ID()}, Capabilities[model.Payment, model.PaymentPatch]{})

	default:
		return nil, fmt.Errorf("dashboard: viewer %T: %w", v, marketerrors.ErrUnknownRole)
	}
	return d, nil
}

func newAuctions(api API, opts Options, sellerEmail string, caps Capabilities[model.Auction, model.AuctionPatch]) *Screen[model.Auction, model.AuctionPatch] {
	fetch := func(ctx context.Context, key string) ([]model.Auction, error) {
		return api.ListAuctions(ctx, key)
	}
	l := loader.New(ScreenAuctions, fetch, loaderOptions[model.Auction](opts, ScreenAuctions)...)
	return NewScreen(ScreenAuctions, sellerEmail, l, view.AuctionSpec(opts.Clock), auctionID, caps)
}

// paymentKey names the loader key of a payment filter
func paymentKey(f apiclient.PaymentFilter) string {
	switch {
	case f.BuyerID != "":
		return "buyer:" + f.BuyerID
	case f.SellerEmail != "":
		return "seller:" + f.SellerEmail
	default:
		return ""
	}
}

func paymentFilter(key string) apiclient.PaymentFilter {
	switch {
	case strings.HasPrefix(key, "buyer:"):
		return apiclient.PaymentFilter{BuyerID: strings.TrimPrefix(key, "buyer:")}
	case strings.HasPrefix(key, "seller:"):
		return apiclient.PaymentFilter{SellerEmail: strings.TrimPrefix(key, "seller:")}
	default:
		return apiclient.PaymentFilter{}
	}
}

func newPayments(api API, opts Options, f apiclient.PaymentFilter, caps Capabilities[model.Payment, model.PaymentPatch]) *Screen[model.Payment, model.PaymentPatch] {
	fetch := func(ctx context.Context, key string) ([]model.Payment, error) {
		return api.ListPayments(ctx, paymentFilter(key))
	}
	l := loader.New(ScreenPayments, fetch, loaderOptions[model.Payment](opts, ScreenPayments)...)
	return NewScreen(ScreenPayments, paymentKey(f), l, view.PaymentSpec(), paymentID, caps)
}

func newBlogs(api API, opts Options, author string) *Screen[model.BlogPost, struct{}] {
	fetch := func(ctx context.Context, key string) ([]model.BlogPost, error) {
		return api.ListBlogs(ctx, key)
	}
	l := loader.New(ScreenBlogs, fetch, loaderOptions[model.BlogPost](opts, ScreenBlogs)...)
	caps := Capabilities[model.BlogPost, struct{}]{Delete: api.DeleteBlog}
	return NewScreen(ScreenBlogs, author, l, view.BlogSpec(), blogID, caps)
}

func loaderOptions[T any](opts Options, screen string) []loader.Option[T] {
	out := []loader.Option[T]{loader.WithClock[T](opts.Clock)}
	if opts.KV != nil {
		out = append(out, loader.WithSnapshots[T](cache.NewSnapshots[T](opts.KV, screen, opts.SnapshotTTL)))
	}
	return out
}

// Screens lists the screen names available to the viewer
func (d *Dashboard) Screens() []string {
	names := []string{ScreenAuctions, ScreenPayments}
	if d.Blogs != nil {
		names = append(names, ScreenBlogs)
	}
	return names
}

// Open loads every screen. Screens load independently; the first error is
// returned after all have been attempted.
func (d *Dashboard) Open(ctx context.Context) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	keep(d.Auctions.Open(ctx))
	keep(d.Payments.Open(ctx))
	if d.Blogs != nil {
		keep(d.Blogs.Open(ctx))
	}
	return first
}

// SubmitAuction creates an auction for a seller and shows it at the top of
// their auctions screen
func SubmitAuction[F any](ctx context.Context, d *Dashboard, sub Submitter[F], form F) (model.Auction, error) {
	seller, ok := d.Viewer.(viewer.Seller)
	if !ok || !d.Auctions.CanInsert() {
		return model.Auction{}, fmt.Errorf("dashboard: submit auction: %w", marketerrors.ErrForbidden)
	}
	created, err := sub.Submit(ctx, seller, form)
	if err != nil {
		return model.Auction{}, err
	}
	if err := d.Auctions.Insert(created); err != nil {
		return created, fmt.Errorf("dashboard: show submitted auction: %w", err)
	}
	return created, nil
}

// Close tears down every screen
func (d *Dashboard) Close() {
	d.Auctions.Close()
	d.Payments.Close()
	if d.Blogs != nil {
		d.Blogs.Close()
	}
}
