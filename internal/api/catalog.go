// internal/api/catalog.go
package api

import (
	"context"
	"net/http"

	"chronoshop/internal/domain/shop"
)

// ========== Product Catalog ==========

// Products lists the catalog. search filters by name or brand when non-empty.
// Stock values are authoritative only at fetch time.
func (c *Client) Products(ctx context.Context, search string) ([]shop.Product, error) {
	env := NewEnvelope(http.MethodGet, productsPath)
	if search != "" {
		env.WithQuery("q", search)
	}

	var products []shop.Product
	if err := c.Do(ctx, env, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single catalog item, typically right before a cart
// mutation so the stock check runs against a fresh value.
func (c *Client) Product(ctx context.Context, id string) (*shop.Product, error) {
	env := NewEnvelope(http.MethodGet, productsPath+"/"+id)

	var p shop.Product
	if err := c.Do(ctx, env, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
