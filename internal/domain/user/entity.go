// internal/domain/user/entity.go
package user

import (
	"time"

	"chronoshop/internal/domain/shop"
)

// User is the authenticated identity together with its server-synced
// collections. Cart and wishlist are always replaced wholesale, never
// mutated in place.
type User struct {
	ID        string               `json:"id"`
	Email     string               `json:"email"`
	FullName  string               `json:"full_name"`
	Role      string               `json:"role"` // user, admin
	Cart      []shop.CartLine      `json:"cart"`
	Wishlist  []shop.WishlistEntry `json:"wishlist"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
