// internal/domain/shop/entity.go
package shop

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Money is a price value tolerant of numeric-string JSON encodings
// ("129.99" and 129.99 both decode).
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*m = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*m = Money(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Money(v)
	return nil
}

// Product is a catalog item as served by the backend. Stock is authoritative
// only at the moment it was fetched.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Price       Money  `json:"price"`
	Stock       int    `json:"stock"`
}

// CartLine is one product-and-quantity pair in a user's cart. ProductID is
// unique within a cart; duplicate adds merge into the existing line.
type CartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url,omitempty"`
	UnitPrice Money  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// WishlistEntry is a saved product reference without quantity. The display
// fields are a denormalized snapshot taken when the entry was added.
type WishlistEntry struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url,omitempty"`
	Price     Money  `json:"price"`
	Stock     int    `json:"stock"`
}

// Order statuses as reported by the backend.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order is a placed order with a snapshot of the cart it was created from.
type Order struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	Total     Money      `json:"total"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Subtotal returns the sum of unit price times quantity across the cart.
func Subtotal(cart []CartLine) Money {
	var total Money
	for _, line := range cart {
		total += line.UnitPrice * Money(line.Quantity)
	}
	return total
}
