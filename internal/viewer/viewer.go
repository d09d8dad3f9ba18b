package viewer

import (
	"fmt"

	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
)

// Viewer is the signed-in user as one of a closed set of role variants.
// Only this package can implement it.
type Viewer interface {
	User() model.User
	Role() model.Role
	viewer()
}

// Admin moderates auctions and payments
type Admin struct {
	user model.User
}

// Seller lists and manages their own auctions
type Seller struct {
	user model.User
}

// Buyer browses auctions and their own payments
type Buyer struct {
	user model.User
}

func (a Admin) User() model.User  { return a.user }
func (a Admin) Role() model.Role  { return model.RoleAdmin }
func (Admin) viewer()             {}
func (s Seller) User() model.User { return s.user }
func (s Seller) Role() model.Role { return model.RoleSeller }
func (Seller) viewer()            {}
func (b Buyer) User() model.User  { return b.user }
func (b Buyer) Role() model.Role  { return model.RoleBuyer }
func (Buyer) viewer()             {}

// Email is the key of the seller's own collections
func (s Seller) Email() string { return s.user.Email }

// Email is the key of the admin's own blog posts
func (a Admin) Email() string { return a.user.Email }

// ID is the key of the buyer's payments
func (b Buyer) ID() string { return b.user.ID }

// FromUser builds the viewer variant from the persisted role. The role is
// never taken from anywhere but the backend record.
func FromUser(u model.User) (Viewer, error) {
	switch u.Role {
	case model.RoleAdmin:
		return Admin{user: u}, nil
	case model.RoleSeller:
		return Seller{user: u}, nil
	case model.RoleBuyer:
		return Buyer{user: u}, nil
	default:
		return nil, fmt.Errorf("viewer: role %q of %s: %w", u.Role, u.Email, marketerrors.ErrUnknownRole)
	}
}

// DisplayName falls back to the email when the user has no display name
func DisplayName(v Viewer) string {
	u := v.User()
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
