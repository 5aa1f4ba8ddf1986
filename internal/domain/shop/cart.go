// internal/domain/shop/cart.go
package shop

import (
	xerrors "chronoshop/internal/pkg/errors"
)

// Cart algebra. Every function returns a freshly allocated slice so the
// caller can persist the whole collection and swap it in only after the
// backend acknowledges the write. The inputs are never mutated.

// AddLine merges product into cart: an existing line's quantity is
// incremented by one, otherwise a new line with quantity 1 is appended.
// Returns ErrStockExceeded if the resulting quantity would exceed
// product.Stock; the returned cart is nil in that case.
func AddLine(cart []CartLine, p Product) ([]CartLine, error) {
	next := make([]CartLine, 0, len(cart)+1)
	merged := false
	for _, line := range cart {
		if line.ProductID == p.ID {
			if line.Quantity+1 > p.Stock {
				return nil, xerrors.ErrStockExceeded
			}
			line.Quantity++
			merged = true
		}
		next = append(next, line)
	}
	if !merged {
		if p.Stock < 1 {
			return nil, xerrors.ErrStockExceeded
		}
		next = append(next, CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
			UnitPrice: p.Price,
			Quantity:  1,
		})
	}
	return next, nil
}

// DecreaseLine decrements the matching line's quantity. A line at quantity 1
// is removed entirely; a zero-quantity line never survives. The second
// return reports whether the cart changed.
func DecreaseLine(cart []CartLine, productID string) ([]CartLine, bool) {
	next := make([]CartLine, 0, len(cart))
	changed := false
	for _, line := range cart {
		if line.ProductID == productID {
			changed = true
			if line.Quantity <= 1 {
				continue
			}
			line.Quantity--
		}
		next = append(next, line)
	}
	return next, changed
}

// RemoveLine removes the matching line if present. Removing an absent
// product is a no-op; the second return reports whether the cart changed.
func RemoveLine(cart []CartLine, productID string) ([]CartLine, bool) {
	next := make([]CartLine, 0, len(cart))
	changed := false
	for _, line := range cart {
		if line.ProductID == productID {
			changed = true
			continue
		}
		next = append(next, line)
	}
	return next, changed
}
