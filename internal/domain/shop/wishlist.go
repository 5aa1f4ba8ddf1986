// internal/domain/shop/wishlist.go
package shop

// Wishlist algebra. Set semantics keyed by product id: at most one entry per
// product, adds and removes are idempotent. Fresh slices, same as the cart.

// AddEntry appends a snapshot of p unless an entry for it already exists.
// The second return reports whether the wishlist changed.
func AddEntry(list []WishlistEntry, p Product) ([]WishlistEntry, bool) {
	if HasEntry(list, p.ID) {
		return append([]WishlistEntry(nil), list...), false
	}
	next := make([]WishlistEntry, 0, len(list)+1)
	next = append(next, list...)
	next = append(next, WishlistEntry{
		ProductID: p.ID,
		Name:      p.Name,
		ImageURL:  p.ImageURL,
		Price:     p.Price,
		Stock:     p.Stock,
	})
	return next, true
}

// RemoveEntry drops the entry for productID if present.
func RemoveEntry(list []WishlistEntry, productID string) ([]WishlistEntry, bool) {
	next := make([]WishlistEntry, 0, len(list))
	changed := false
	for _, e := range list {
		if e.ProductID == productID {
			changed = true
			continue
		}
		next = append(next, e)
	}
	return next, changed
}

// HasEntry reports whether an entry for productID exists.
func HasEntry(list []WishlistEntry, productID string) bool {
	for _, e := range list {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}
