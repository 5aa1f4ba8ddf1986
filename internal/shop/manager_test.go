package shop_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chronoshop/internal/api"
	"chronoshop/internal/credstore"
	domain "chronoshop/internal/domain/shop"
	"chronoshop/internal/domain/user"
	xerrors "chronoshop/internal/pkg/errors"
	"chronoshop/internal/session"
	shopmgr "chronoshop/internal/shop"
)

var (
	fieldWatch = domain.Product{
		ID:    "p-khaki",
		Name:  "Khaki Field Mechanical",
		Brand: "Hamilton",
		Price: 545,
		Stock: 2,
	}
	dressWatch = domain.Product{
		ID:    "p-tangente",
		Name:  "Tangente 38",
		Brand: "NOMOS",
		Price: 1890,
		Stock: 1,
	}
)

// fakeBackend is a PATCH /users/me endpoint that applies partial updates to
// a stored user the way the real backend does, counting write calls so tests
// can assert which mutations reached the network.
type fakeBackend struct {
	srv     *httptest.Server
	writes  int32
	failAll atomic.Bool

	stored user.User
}

func newFakeBackend(t *testing.T, initial user.User) *fakeBackend {
	t.Helper()
	b := &fakeBackend{stored: initial}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/v1/users/me" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&b.writes, 1)
		if b.failAll.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false, "error": "storage unavailable",
			})
			return
		}
		var req user.UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Cart != nil {
			b.stored.Cart = *req.Cart
		}
		if req.Wishlist != nil {
			b.stored.Wishlist = *req.Wishlist
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true, "data": b.stored,
		})
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) writeCount() int32 { return atomic.LoadInt32(&b.writes) }

func newManager(t *testing.T, b *fakeBackend, loggedIn bool) (*shopmgr.Manager, *session.Holder) {
	t.Helper()
	holder := session.NewHolder()
	if loggedIn {
		holder.Set(session.Session{AccessToken: "tok", RefreshToken: "ref", User: b.stored})
	}
	client := api.NewClient(b.srv.URL, 2*time.Second, holder, credstore.NewMemoryStore(), zap.NewNop())
	return shopmgr.NewManager(client, holder, zap.NewNop()), holder
}

func TestAddToCartAppendsAndMerges(t *testing.T) {
	b := newFakeBackend(t, user.User{ID: "u1"})
	m, _ := newManager(t, b, true)
	ctx := context.Background()

	require.NoError(t, m.AddToCart(ctx, fieldWatch))
	require.NoError(t, m.AddToCart(ctx, dressWatch))
	require.NoError(t, m.AddToCart(ctx, fieldWatch)) // merges, no new line

	cart := m.Cart()
	require.Len(t, cart, 2)
	require.Equal(t, fieldWatch.ID, cart[0].ProductID)
	require.Equal(t, 2, cart[0].Quantity)
	require.Equal(t, 1, cart[1].Quantity)
	require.EqualValues(t, 3, b.writeCount())
}

func TestAddToCartStockBoundary(t *testing.T) {
	b := newFakeBackend(t, user.User{ID: "u1"})
	m, _ := newManager(t, b, true)
	ctx := context.Background()

	require.NoError(t, m.AddToCart(ctx, dressWatch)) // stock 1, quantity now 1
	err := m.AddToCart(ctx, dressWatch)
	require.ErrorIs(t, err, xerrors.ErrStockExceeded)

	// The rejected add never reached the network and the cart kept its
	// committed shape.
	require.EqualValues(t, 1, b.writeCount())
	cart := m.Cart()
	require.Len(t, cart, 1)
	require.Equal(t, 1, cart[0].Quantity)
}

func TestCartMutationsWithoutSession(t *testing.T) {
	b := newFakeBackend(t, user.User{ID: "u1"})
	m, _ := newManager(t, b, false)
	ctx := context.Background()

	require.ErrorIs(t, m.AddToCart(ctx, fieldWatch), xerrors.ErrNoSession)
	require.ErrorIs(t, m.DecreaseFromCart(ctx, fieldWatch.ID), xerrors.ErrNoSession)
	require.ErrorIs(t, m.ClearCart(ctx), xerrors.ErrNoSession)
	_, err := m.ToggleWishlist(ctx, fieldWatch)
	require.ErrorIs(t, err, xerrors.ErrNoSession)

	require.EqualValues(t, 0, b.writeCount())
}

func TestDecreaseFromCart(t *testing.T) {
	b := newFakeBackend(t, user.User{ID: "u1"})
	m, _ := newManager(t, b, true)
	ctx := context.Background()

	require.NoError(t, m.AddToCart(ctx, fieldWatch))
	require.NoError(t, m.AddToCart(ctx, fieldWatch)) // quantity 2

	require.NoError(t, m.DecreaseFromCart(ctx, fieldWatch.ID))
	require.Equal(t, 1, m.Cart()[0].Quantity)

	// Decrementing a quantity-1 line removes it.
	require.NoError(t, m.DecreaseFromCart(ctx, fieldWatch.ID))
	require.Empty(t, m.Cart())

	// Absent id is a successful no-op without a write.
	before := b.writeCount()
	require.NoError(t, m.DecreaseFromCart(ctx, "p-missing"))
	require.Equal(t, before, b.writeCount())
}

func TestRemoveFromCartIdempotent(t *testing.T) {
	b := newFakeBackend(t, user.User{ID: "u1"})
	m, _ := newManager(t, b, true)
	ctx := context.Background()

	require.NoError(t, m.AddToCart(ctx, fieldWatch))
	require.NoError(t, m.RemoveFromCart(ctx, fieldWatch.ID))
	require.Empty(t, m.Cart())

	before := b.writeCount()
	require.NoError(t, m.RemoveFromCart(ctx, fieldWatch.ID))
	require.Equal(t, before, b.writeCount())
}

func TestClearCart(t *testing.T) {
	b := newFakeBackend(t, user.User{ID: "u1"})
	m, _ := newManager(t, b, true)
	ctx := context.Background()

	require.NoError(t, m.AddToCart(ctx, fieldWatch))
	require.NoError(t, m.AddToCart(ctx, dressWatch))
	require.NoError(t, m.ClearCart(ctx))
	require.Empty(t, m.Cart())
	require.Empty(t, b.stored.Cart)
}

func TestFailedCommitLeavesStateUntouched(t *testing.T) {
	b := newFakeBackend(t, user.User{ID: "u1"})
	m, _ := newManager(t, b, true)
	ctx := context.Background()

	require.NoError(t, m.AddToCart(ctx, fieldWatch))
	b.failAll.Store(true)

	err := m.AddToCart(ctx, dressWatch)
	se, ok := xerrors.AsServerError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusInternalServerError, se.Status)

	// The session still shows the last committed cart, not the rejected one.
	cart := m.Cart()
	require.Len(t, cart, 1)
	require.Equal(t, fieldWatch.ID, cart[0].ProductID)
}

func TestWishlistAddIsIdempotent(t *testing.T) {
	b := newFakeBackend(t, user.User{ID: "u1"})
	m, _ := newManager(t, b, true)
	ctx := context.Background()

	require.NoError(t, m.AddToWishlist(ctx, fieldWatch))
	before := b.writeCount()
	require.NoError(t, m.AddToWishlist(ctx, fieldWatch))
	require.Equal(t, before, b.writeCount())

	wish := m.Wishlist()
	require.Len(t, wish, 1)
	require.Equal(t, fieldWatch.ID, wish[0].ProductID)
	require.Equal(t, fieldWatch.Name, wish[0].Name)
}

func TestToggleWishlistReportsBranch(t *testing.T) {
	b := newFakeBackend(t, user.User{ID: "u1"})
	m, _ := newManager(t, b, true)
	ctx := context.Background()

	added, err := m.ToggleWishlist(ctx, fieldWatch)
	require.NoError(t, err)
	require.True(t, added)
	require.Len(t, m.Wishlist(), 1)

	added, err = m.ToggleWishlist(ctx, fieldWatch)
	require.NoError(t, err)
	require.False(t, added)
	require.Empty(t, m.Wishlist())
}

func TestAccessorsWhenLoggedOut(t *testing.T) {
	b := newFakeBackend(t, user.User{ID: "u1"})
	m, _ := newManager(t, b, false)

	require.Nil(t, m.Cart())
	require.Nil(t, m.Wishlist())
}
