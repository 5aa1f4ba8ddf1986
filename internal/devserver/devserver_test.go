package devserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chronoshop/internal/api"
	"chronoshop/internal/config"
	"chronoshop/internal/credstore"
	"chronoshop/internal/devserver"
	"chronoshop/internal/domain/shop"
	"chronoshop/internal/domain/user"
	xerrors "chronoshop/internal/pkg/errors"
	"chronoshop/internal/session"
	shopmgr "chronoshop/internal/shop"
	"chronoshop/internal/ws"
)

type env struct {
	srv    *httptest.Server
	holder *session.Holder
	client *api.Client
	shop   *shopmgr.Manager
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.AppConfig{
		JWTSecret:  "test-secret",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	backend := devserver.New(cfg, zap.NewNop())
	srv := httptest.NewServer(backend.Engine())
	t.Cleanup(srv.Close)

	holder := session.NewHolder()
	client := api.NewClient(srv.URL, 5*time.Second, holder, credstore.NewMemoryStore(), zap.NewNop())
	return &env{
		srv:    srv,
		holder: holder,
		client: client,
		shop:   shopmgr.NewManager(client, holder, zap.NewNop()),
	}
}

func (e *env) register(t *testing.T, email string) *user.User {
	t.Helper()
	u, err := e.client.Register(context.Background(), user.RegisterRequest{
		Email:    email,
		Password: "hunter2hunter2",
		FullName: "Watch Fan",
	})
	require.NoError(t, err)
	return u
}

func findProduct(t *testing.T, products []shop.Product, nameFragment string) shop.Product {
	t.Helper()
	for _, p := range products {
		if strings.Contains(p.Name, nameFragment) {
			return p
		}
	}
	t.Fatalf("no seeded product matching %q", nameFragment)
	return shop.Product{}
}

func TestRegisterLoginAndMe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u := e.register(t, "first@chrono.test")
	require.NotEmpty(t, u.ID)
	require.True(t, e.holder.Authenticated())

	// Duplicate registration is rejected.
	_, err := e.client.Register(ctx, user.RegisterRequest{
		Email:    "first@chrono.test",
		Password: "hunter2hunter2",
		FullName: "Someone Else",
	})
	se, ok := xerrors.AsServerError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, se.Status)

	// Fresh login with the right password, then identity round-trip.
	require.NoError(t, e.client.Logout(ctx))
	_, err = e.client.Login(ctx, "first@chrono.test", "wrong-password")
	se, ok = xerrors.AsServerError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, se.Status)

	logged, err := e.client.Login(ctx, "first@chrono.test", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, u.ID, logged.ID)

	me, err := e.client.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "first@chrono.test", me.Email)
}

func TestCatalogSearch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	all, err := e.client.Products(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, all)

	hits, err := e.client.Products(ctx, "seiko")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "Seiko", hits[0].Brand)

	single, err := e.client.Product(ctx, hits[0].ID)
	require.NoError(t, err)
	require.Equal(t, hits[0].Name, single.Name)

	_, err = e.client.Product(ctx, "nope")
	se, ok := xerrors.AsServerError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, se.Status)
}

func TestCartRoundTripAndServerStockCheck(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "cart@chrono.test")

	all, err := e.client.Products(ctx, "")
	require.NoError(t, err)
	speedmaster := findProduct(t, all, "Speedmaster") // stock 1

	require.NoError(t, e.shop.AddToCart(ctx, speedmaster))
	require.Len(t, e.shop.Cart(), 1)

	// The client-side check rejects a second unit before any network call.
	require.ErrorIs(t, e.shop.AddToCart(ctx, speedmaster), xerrors.ErrStockExceeded)

	// The server runs the same check on a stale product snapshot.
	stale := speedmaster
	stale.Stock = 99
	err = e.shop.AddToCart(ctx, stale)
	se, ok := xerrors.AsServerError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, se.Status)

	// Resyncing via Me shows the committed single line survived.
	me, err := e.client.Me(ctx)
	require.NoError(t, err)
	require.Len(t, me.Cart, 1)
	require.Equal(t, 1, me.Cart[0].Quantity)
}

func TestWishlistToggleRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "wish@chrono.test")

	all, err := e.client.Products(ctx, "")
	require.NoError(t, err)
	nomos := findProduct(t, all, "Tangente")

	added, err := e.shop.ToggleWishlist(ctx, nomos)
	require.NoError(t, err)
	require.True(t, added)

	me, err := e.client.Me(ctx)
	require.NoError(t, err)
	require.Len(t, me.Wishlist, 1)
	require.Equal(t, nomos.ID, me.Wishlist[0].ProductID)

	added, err = e.shop.ToggleWishlist(ctx, nomos)
	require.NoError(t, err)
	require.False(t, added)
	require.Empty(t, e.shop.Wishlist())
}

func TestPlaceOrderClearsCartAndDecrementsStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "order@chrono.test")

	all, err := e.client.Products(ctx, "")
	require.NoError(t, err)
	gshock := findProduct(t, all, "G-SHOCK")
	stockBefore := gshock.Stock

	require.NoError(t, e.shop.AddToCart(ctx, gshock))
	require.NoError(t, e.shop.AddToCart(ctx, gshock))

	order, err := e.client.PlaceOrder(ctx)
	require.NoError(t, err)
	require.Equal(t, shop.OrderStatusPending, order.Status)
	require.Len(t, order.Lines, 1)
	require.Equal(t, 2, order.Lines[0].Quantity)
	require.Equal(t, gshock.Price*2, order.Total)

	// The backend cleared the cart; Me resyncs that into the session.
	me, err := e.client.Me(ctx)
	require.NoError(t, err)
	require.Empty(t, me.Cart)

	after, err := e.client.Product(ctx, gshock.ID)
	require.NoError(t, err)
	require.Equal(t, stockBefore-2, after.Stock)

	// An empty cart cannot order.
	_, err = e.client.PlaceOrder(ctx)
	se, ok := xerrors.AsServerError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, se.Status)

	orders, err := e.client.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, order.ID, orders[0].ID)

	got, err := e.client.Order(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)
}

func TestRejectedBearerRefreshesEndToEnd(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "refresh@chrono.test")

	// Corrupt the in-memory access token; the refresh token is still good,
	// so the 401 triggers one refresh and the retried call succeeds.
	e.holder.SetAccessToken("not-a-real-token")

	me, err := e.client.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "refresh@chrono.test", me.Email)

	sess, ok := e.holder.Get()
	require.True(t, ok)
	require.NotEqual(t, "not-a-real-token", sess.AccessToken)
}

func TestLogoutRevokesCredentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "logout@chrono.test")

	sess, ok := e.holder.Get()
	require.True(t, ok)
	refreshToken := sess.RefreshToken

	require.NoError(t, e.client.Logout(ctx))
	require.False(t, e.holder.Authenticated())

	// The dropped refresh token no longer mints access tokens: a session
	// restored from stale credentials ends in a forced logout.
	reasons := make(chan string, 1)
	e.holder.OnForcedLogout(func(reason string) { reasons <- reason })
	e.holder.Set(session.Session{AccessToken: "stale", RefreshToken: refreshToken})

	_, err := e.client.Me(ctx)
	require.ErrorIs(t, err, xerrors.ErrAuthExpired)
	select {
	case reason := <-reasons:
		require.NotEmpty(t, reason)
	default:
		t.Fatal("expected a forced logout signal")
	}
}

func TestWebsocketSessionRevokedForcesLogout(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	e.register(t, "stream@chrono.test")

	reasons := make(chan string, 1)
	e.holder.OnForcedLogout(func(reason string) { reasons <- reason })

	wsURL := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws"
	listener := ws.NewListener(wsURL, e.holder, zap.NewNop())
	require.NoError(t, listener.Dial(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		listener.Listen(ctx)
	}()

	// A second device logs into the same account and logs out, which
	// revokes the session server-side and pushes session:revoked.
	other := session.NewHolder()
	otherClient := api.NewClient(e.srv.URL, 5*time.Second, other, credstore.NewMemoryStore(), zap.NewNop())
	_, err := otherClient.Login(ctx, "stream@chrono.test", "hunter2hunter2")
	require.NoError(t, err)
	require.NoError(t, otherClient.Logout(ctx))

	select {
	case reason := <-reasons:
		require.NotEmpty(t, reason)
		require.False(t, e.holder.Authenticated())
	case <-ctx.Done():
		t.Fatal("timed out waiting for the revocation event")
	}
	listener.Close()
	<-done
}
