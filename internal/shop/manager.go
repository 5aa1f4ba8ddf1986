// internal/shop/manager.go

// Package shop owns the authenticated user's cart and wishlist as
// server-backed collections. Every mutation follows the same discipline:
// compute the full next collection from the current session, persist it
// wholesale against the backend, and only on success swap it into the
// session. A failed write leaves the previously rendered state untouched.
package shop

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"chronoshop/internal/api"
	"chronoshop/internal/domain/shop"
	"chronoshop/internal/domain/user"
	xerrors "chronoshop/internal/pkg/errors"
	"chronoshop/internal/session"
)

type Manager struct {
	api     *api.Client
	session *session.Holder
	logger  *zap.Logger

	// Serializes mutations so two rapid clicks cannot race on the
	// read-modify-write of the whole collection (lost-update hazard).
	mu sync.Mutex
}

func NewManager(apiClient *api.Client, holder *session.Holder, logger *zap.Logger) *Manager {
	return &Manager{
		api:     apiClient,
		session: holder,
		logger:  logger,
	}
}

// ========== Cart ==========

// AddToCart merges the product into the cart: an existing line gains one
// quantity, otherwise a new line with quantity 1 is appended. Returns
// ErrStockExceeded (cart untouched, no network call) if the resulting
// quantity would exceed the product's stock as fetched by the caller.
func (m *Manager) AddToCart(ctx context.Context, p shop.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session.Get()
	if !ok {
		return xerrors.ErrNoSession
	}
	next, err := shop.AddLine(sess.User.Cart, p)
	if err != nil {
		return err
	}
	return m.commitCart(ctx, next)
}

// DecreaseFromCart decrements the line's quantity; a line at quantity 1 is
// removed entirely. An absent product id is a successful no-op with no
// network call.
func (m *Manager) DecreaseFromCart(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session.Get()
	if !ok {
		return xerrors.ErrNoSession
	}
	next, changed := shop.DecreaseLine(sess.User.Cart, productID)
	if !changed {
		return nil
	}
	return m.commitCart(ctx, next)
}

// RemoveFromCart removes the line if present. Idempotent: removing an
// absent id succeeds without a network call.
func (m *Manager) RemoveFromCart(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session.Get()
	if !ok {
		return xerrors.ErrNoSession
	}
	next, changed := shop.RemoveLine(sess.User.Cart, productID)
	if !changed {
		return nil
	}
	return m.commitCart(ctx, next)
}

// ClearCart replaces the cart with an empty collection.
func (m *Manager) ClearCart(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.session.Get(); !ok {
		return xerrors.ErrNoSession
	}
	return m.commitCart(ctx, []shop.CartLine{})
}

// ========== Wishlist ==========

// AddToWishlist saves the product for later. Idempotent: adding an already
// present product succeeds without a network call.
func (m *Manager) AddToWishlist(ctx context.Context, p shop.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session.Get()
	if !ok {
		return xerrors.ErrNoSession
	}
	next, changed := shop.AddEntry(sess.User.Wishlist, p)
	if !changed {
		return nil
	}
	return m.commitWishlist(ctx, next)
}

// RemoveFromWishlist drops the saved product. Idempotent like AddToWishlist.
func (m *Manager) RemoveFromWishlist(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session.Get()
	if !ok {
		return xerrors.ErrNoSession
	}
	next, changed := shop.RemoveEntry(sess.User.Wishlist, productID)
	if !changed {
		return nil
	}
	return m.commitWishlist(ctx, next)
}

// ToggleWishlist removes the product if present, adds it if absent. The
// returned bool reports which branch committed: true = added, false =
// removed, so callers can render the right confirmation without re-deriving
// membership.
func (m *Manager) ToggleWishlist(ctx context.Context, p shop.Product) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.session.Get()
	if !ok {
		return false, xerrors.ErrNoSession
	}

	var next []shop.WishlistEntry
	added := !shop.HasEntry(sess.User.Wishlist, p.ID)
	if added {
		next, _ = shop.AddEntry(sess.User.Wishlist, p)
	} else {
		next, _ = shop.RemoveEntry(sess.User.Wishlist, p.ID)
	}
	if err := m.commitWishlist(ctx, next); err != nil {
		return false, err
	}
	return added, nil
}

// ========== Accessors ==========

// Cart returns the current session's cart (nil when logged out).
func (m *Manager) Cart() []shop.CartLine {
	if sess, ok := m.session.Get(); ok {
		return sess.User.Cart
	}
	return nil
}

// Wishlist returns the current session's wishlist (nil when logged out).
func (m *Manager) Wishlist() []shop.WishlistEntry {
	if sess, ok := m.session.Get(); ok {
		return sess.User.Wishlist
	}
	return nil
}

// ========== Commit ==========

func (m *Manager) commitCart(ctx context.Context, next []shop.CartLine) error {
	updated, err := m.api.UpdateUser(ctx, user.UpdateUserRequest{Cart: &next})
	if err != nil {
		return err
	}
	m.session.SetUser(*updated)
	m.logger.Debug("cart committed", zap.Int("lines", len(updated.Cart)))
	return nil
}

func (m *Manager) commitWishlist(ctx context.Context, next []shop.WishlistEntry) error {
	updated, err := m.api.UpdateUser(ctx, user.UpdateUserRequest{Wishlist: &next})
	if err != nil {
		return err
	}
	m.session.SetUser(*updated)
	m.logger.Debug("wishlist committed", zap.Int("entries", len(updated.Wishlist)))
	return nil
}
