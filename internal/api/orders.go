// internal/api/orders.go
package api

import (
	"context"
	"net/http"

	"chronoshop/internal/domain/shop"
)

// ========== Orders ==========

// PlaceOrder converts the server-side cart into an order. The backend clears
// the cart; call Me afterwards to resync the session's collections.
func (c *Client) PlaceOrder(ctx context.Context) (*shop.Order, error) {
	env := NewEnvelope(http.MethodPost, ordersPath)

	var o shop.Order
	if err := c.Do(ctx, env, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Orders lists the current user's orders, newest first.
func (c *Client) Orders(ctx context.Context) ([]shop.Order, error) {
	env := NewEnvelope(http.MethodGet, ordersPath)

	var orders []shop.Order
	if err := c.Do(ctx, env, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order fetches one order for tracking.
func (c *Client) Order(ctx context.Context, id string) (*shop.Order, error) {
	env := NewEnvelope(http.MethodGet, ordersPath+"/"+id)

	var o shop.Order
	if err := c.Do(ctx, env, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
