package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// Client talks to the marketplace REST API. It never retries; timeouts come
// from the underlying http.Client.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL with the given request timeout
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a client that uses hc for transport
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// PaymentFilter selects payments by buyer id or seller email; both empty lists all
type PaymentFilter struct {
	BuyerID     string
	SellerEmail string
}

// BidRequest is the body of POST /auctions/:id/bids
type BidRequest struct {
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ListAuctions handles GET /auctions[?email=]
func (c *Client) ListAuctions(ctx context.Context, sellerEmail string) ([]model.Auction, error) {
	q := url.Values{}
	if sellerEmail != "" {
		q.Set("email", sellerEmail)
	}
	var out []model.Auction
	if err := c.do(ctx, http.MethodGet, "/auctions", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAuction handles POST /auctions
func (c *Client) CreateAuction(ctx context.Context, a model.NewAuction) (model.Auction, error) {
	var out model.Auction
	if err := c.do(ctx, http.MethodPost, "/auctions", nil, a, &out); err != nil {
		return model.Auction{}, err
	}
	return out, nil
}

// UpdateAuction handles PATCH /auctions/:id and returns the server's representation
func (c *Client) UpdateAuction(ctx context.Context, id string, patch model.AuctionPatch) (model.Auction, error) {
	var out model.Auction
	if err := c.do(ctx, http.MethodPatch, "/auctions/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return model.Auction{}, err
	}
	return out, nil
}

// DeleteAuction handles DELETE /auctions/:id
func (c *Client) DeleteAuction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/auctions/"+url.PathEscape(id), nil, nil, nil)
}

// PlaceBid handles POST /auctions/:id/bids
func (c *Client) PlaceBid(ctx context.Context, id string, bid BidRequest) (model.Auction, error) {
	var out model.Auction
	if err := c.do(ctx, http.MethodPost, "/auctions/"+url.PathEscape(id)+"/bids", nil, bid, &out); err != nil {
		return model.Auction{}, err
	}
	return out, nil
}

// ListPayments handles GET /payments[?buyerId=|?sellerEmail=]
func (c *Client) ListPayments(ctx context.Context, f PaymentFilter) ([]model.Payment, error) {
	q := url.Values{}
	switch {
	case f.BuyerID != "":
		q.Set("buyerId", f.BuyerID)
	case f.SellerEmail != "":
		q.Set("sellerEmail", f.SellerEmail)
	}
	var out []model.Payment
	if err := c.do(ctx, http.MethodGet, "/payments", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePayment handles PATCH /payments/:id
func (c *Client) UpdatePayment(ctx context.Context, id string, patch model.PaymentPatch) (model.Payment, error) {
	var out model.Payment
	if err := c.do(ctx, http.MethodPatch, "/payments/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return model.Payment{}, err
	}
	return out, nil
}

// FindUser handles GET /users?email=. The API wraps even a single user in an array.
func (c *Client) FindUser(ctx context.Context, email string) (model.User, error) {
	q := url.Values{}
	q.Set("email", email)
	var out []model.User
	if err := c.do(ctx, http.MethodGet, "/users", q, nil, &out); err != nil {
		return model.User{}, err
	}
	if len(out) == 0 {
		return model.User{}, fmt.Errorf("apiclient: user %s: %w", email, marketerrors.ErrUserNotFound)
	}
	return out[0], nil
}

// ListBlogs handles GET /blogs/:email
func (c *Client) ListBlogs(ctx context.Context, email string) ([]model.BlogPost, error) {
	var out []model.BlogPost
	if err := c.do(ctx, http.MethodGet, "/blogs/"+url.PathEscape(email), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteBlog handles DELETE /delete/:id
func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/delete/"+url.PathEscape(id), nil, nil, nil)
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: %s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: build request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w: %w", method, path, marketerrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("apiclient: %s %s: decode response: %w: %w", method, path, marketerrors.ErrTransport, err)
	}
	return nil
}

// decodeError turns an error response into a ServerError carrying the
// server's message verbatim. Gateway failures without a message are
// reported as transport errors.
func decodeError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var eb errorBody
	_ = json.Unmarshal(raw, &eb)

	if eb.Message == "" {
		switch resp.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return fmt.Errorf("apiclient: %s %s: status %d: %w", method, path, resp.StatusCode, marketerrors.ErrTransport)
		}
	}
	return fmt.Errorf("apiclient: %s %s: %w", method, path, &marketerrors.ServerError{
		Status:  resp.StatusCode,
		Message: eb.Message,
	})
}
