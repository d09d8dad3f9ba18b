package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	model "auction-dashboard/internal/models"
)

// ErrMalformedEvent is returned for payloads that cannot be routed at all
var ErrMalformedEvent = errors.New("malformed notification event")

// Header carries the fields every notification has
type Header struct {
	Type    string
	Title   string
	Message string
}

// Event is one of AuctionWin, Announcement or Generic
type Event interface {
	Meta() Header
	isEvent()
}

// AuctionWin tells a buyer they won an auction
type AuctionWin struct {
	Header
	AuctionID   string
	AuctionName string
	Amount      float64
}

// Announcement is a broadcast from the marketplace admins
type Announcement struct {
	Header
	Announcement model.Announcement
}

// Generic is any other notification type
type Generic struct {
	Header
}

func (e AuctionWin) Meta() Header   { return e.Header }
func (e Announcement) Meta() Header { return e.Header }
func (e Generic) Meta() Header      { return e.Header }
func (AuctionWin) isEvent()         {}
func (Announcement) isEvent()       {}
func (Generic) isEvent()            {}

// wire is the JSON shape published on the realtime channel
type wire struct {
	Type             string        `json:"type"`
	Title            string        `json:"title"`
	Message          string        `json:"message"`
	AuctionData      *auctionData  `json:"auctionData,omitempty"`
	AnnouncementData *announceData `json:"announcementData,omitempty"`
}

type auctionData struct {
	ID         string  `json:"id,omitempty"`
	LegacyID   string  `json:"_id,omitempty"`
	Name       string  `json:"name,omitempty"`
	CurrentBid float64 `json:"currentBid,omitempty"`
}

func (a *auctionData) id() string {
	if a == nil {
		return ""
	}
	if a.ID != "" {
		return a.ID
	}
	return a.LegacyID
}

type announceData struct {
	model.Announcement
	LegacyID string `json:"_id,omitempty"`
}

// normalizeType folds case and drops separators so "auction_win",
// "auction-win" and "AuctionWin" compare equal
func normalizeType(t string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(t)))
}

// Decode parses a raw notification into its variant. A typed event that is
// missing its payload id degrades to Generic.
func Decode(raw []byte) (Event, error) {
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("notify: decode: %w: %w", ErrMalformedEvent, err)
	}
	if strings.TrimSpace(w.Type) == "" {
		return nil, fmt.Errorf("notify: decode: %w: missing type", ErrMalformedEvent)
	}

	h := Header{Type: w.Type, Title: w.Title, Message: w.Message}

	switch normalizeType(w.Type) {
	case "auctionwin":
		if id := w.AuctionData.id(); id != "" {
			return AuctionWin{
				Header:      h,
				AuctionID:   id,
				AuctionName: w.AuctionData.Name,
				Amount:      w.AuctionData.CurrentBid,
			}, nil
		}
	case "announcement":
		if w.AnnouncementData != nil {
			a := w.AnnouncementData.Announcement
			if a.ID == "" {
				a.ID = w.AnnouncementData.LegacyID
			}
			if a.ID != "" {
				return Announcement{Header: h, Announcement: a}, nil
			}
		}
	}
	return Generic{Header: h}, nil
}

// Encode builds the wire form of an event, used by publishers
func Encode(e Event) ([]byte, error) {
	h := e.Meta()
	w := wire{Type: h.Type, Title: h.Title, Message: h.Message}
	switch ev := e.(type) {
	case AuctionWin:
		if w.Type == "" {
			w.Type = "auctionWin"
		}
		w.AuctionData = &auctionData{ID: ev.AuctionID, Name: ev.AuctionName, CurrentBid: ev.Amount}
	case Announcement:
		if w.Type == "" {
			w.Type = "announcement"
		}
		w.AnnouncementData = &announceData{Announcement: ev.Announcement}
	case Generic:
		if w.Type == "" {
			w.Type = "generic"
		}
	}
	return json.Marshal(w)
}

// Target is the navigation destination of a notification
type Target struct {
	Path string `json:"path"`
}

// Route maps an event to where the dashboard should navigate
func Route(e Event) Target {
	switch ev := e.(type) {
	case AuctionWin:
		return Target{Path: "/dashboard/checkout/" + ev.AuctionID}
	case Announcement:
		return Target{Path: "/announcements/" + ev.Announcement.ID}
	default:
		return Target{Path: "/dashboard/notifications"}
	}
}

// KindName names the event variant for API consumers
func KindName(e Event) string {
	switch e.(type) {
	case AuctionWin:
		return "auctionWin"
	case Announcement:
		return "announcement"
	default:
		return "generic"
	}
}
