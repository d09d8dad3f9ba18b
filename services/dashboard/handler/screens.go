package handler

import (
	"context"
	"fmt"

	"auction-dashboard/internal/dashboard"
	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/session"
	"auction-dashboard/internal/view"
	"auction-dashboard/services/dashboard/helpers"

	"github.com/gin-gonic/gin"
)

// screenOps erases the item and patch types of a dashboard screen so one
// set of handlers serves every screen
type screenOps interface {
	open(ctx context.Context) error
	refresh(ctx context.Context) error
	render(q view.Query) (any, error)
	edit(c *gin.Context, id string) (any, error)
	remove(ctx context.Context, id string) error
	selectRow(id string) (any, error)
	selected() (any, bool)
	deselect()
}

type screenAdapter[T, P any] struct {
	screen *dashboard.Screen[T, P]
}

func (a screenAdapter[T, P]) open(ctx context.Context) error    { return a.screen.Open(ctx) }
func (a screenAdapter[T, P]) refresh(ctx context.Context) error { return a.screen.Refresh(ctx) }
func (a screenAdapter[T, P]) deselect()                         { a.screen.Deselect() }

func (a screenAdapter[T, P]) render(q view.Query) (any, error) {
	v, err := a.screen.View(q)
	if err != nil {
		return nil, err
	}
	// nothing good to show yet
	if v.Err != nil && v.UpdatedAt.IsZero() && !v.FromSnapshot && !v.IsLoading {
		return nil, v.Err
	}

	resp := helpers.ScreenResponse[T]{
		Screen:       a.screen.Name(),
		Page:         v.Page,
		Loading:      v.IsLoading,
		Refreshing:   v.IsRefreshing,
		FromSnapshot: v.FromSnapshot,
		Error:        helpers.ErrorInfoFor(v.Err),
		Capabilities: helpers.Capabilities{
			Edit:   a.screen.CanEdit(),
			Delete: a.screen.CanDelete(),
			Insert: a.screen.CanInsert(),
		},
	}
	if !v.UpdatedAt.IsZero() {
		ts := v.UpdatedAt
		resp.UpdatedAt = &ts
	}
	return resp, nil
}

func (a screenAdapter[T, P]) edit(c *gin.Context, id string) (any, error) {
	if !a.screen.CanEdit() {
		return nil, fmt.Errorf("%s: edit: %w", a.screen.Name(), marketerrors.ErrForbidden)
	}
	var patch P
	if err := c.ShouldBindJSON(&patch); err != nil {
		return nil, fmt.Errorf("%w: %w", marketerrors.ErrValidation, err)
	}
	return a.screen.Edit(c.Request.Context(), id, patch)
}

func (a screenAdapter[T, P]) remove(ctx context.Context, id string) error {
	return a.screen.Delete(ctx, id)
}

func (a screenAdapter[T, P]) selectRow(id string) (any, error) {
	return a.screen.Select(id)
}

func (a screenAdapter[T, P]) selected() (any, bool) {
	return a.screen.Selected()
}

// screenFor resolves a screen name for the session's viewer
func screenFor(sess *session.Session, name string) (screenOps, error) {
	d := sess.Dashboard
	switch name {
	case dashboard.ScreenAuctions:
		return screenAdapter[model.Auction, model.AuctionPatch]{screen: d.Auctions}, nil
	case dashboard.ScreenPayments:
		return screenAdapter[model.Payment, model.PaymentPatch]{screen: d.Payments}, nil
	case dashboard.ScreenBlogs:
		if d.Blogs != nil {
			return screenAdapter[model.BlogPost, struct{}]{screen: d.Blogs}, nil
		}
	}
	return nil, fmt.Errorf("screen %q: %w", name, marketerrors.ErrUnknownScreen)
}
