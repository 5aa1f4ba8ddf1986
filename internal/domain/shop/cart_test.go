package shop_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"chronoshop/internal/domain/shop"
	xerrors "chronoshop/internal/pkg/errors"
)

var diver = shop.Product{
	ID:    "w-100",
	Name:  "Prospex Diver",
	Brand: "Seiko",
	Price: 350,
	Stock: 5,
}

func TestAddLineAppendsNewLine(t *testing.T) {
	next, err := shop.AddLine(nil, diver)
	require.NoError(t, err)
	require.Len(t, next, 1)
	require.Equal(t, "w-100", next[0].ProductID)
	require.Equal(t, 1, next[0].Quantity)
	require.Equal(t, diver.Price, next[0].UnitPrice)
}

func TestAddLineMergesOnSecondAdd(t *testing.T) {
	cart, err := shop.AddLine(nil, diver)
	require.NoError(t, err)

	cart, err = shop.AddLine(cart, diver)
	require.NoError(t, err)

	require.Len(t, cart, 1)
	require.Equal(t, 2, cart[0].Quantity)
}

func TestAddLineStockBoundary(t *testing.T) {
	p := diver
	p.Stock = 2

	cart := []shop.CartLine{{ProductID: p.ID, UnitPrice: p.Price, Quantity: 2}}

	next, err := shop.AddLine(cart, p)
	require.ErrorIs(t, err, xerrors.ErrStockExceeded)
	require.Nil(t, next)

	// The input cart is untouched.
	require.Equal(t, 2, cart[0].Quantity)
}

func TestAddLineZeroStock(t *testing.T) {
	p := diver
	p.Stock = 0

	_, err := shop.AddLine(nil, p)
	require.ErrorIs(t, err, xerrors.ErrStockExceeded)
}

func TestAddLineDoesNotMutateInput(t *testing.T) {
	cart := []shop.CartLine{{ProductID: diver.ID, Quantity: 1}}

	next, err := shop.AddLine(cart, diver)
	require.NoError(t, err)
	require.Equal(t, 2, next[0].Quantity)
	require.Equal(t, 1, cart[0].Quantity)
}

func TestDecreaseLineDecrements(t *testing.T) {
	cart := []shop.CartLine{{ProductID: "w-100", Quantity: 3}}

	next, changed := shop.DecreaseLine(cart, "w-100")
	require.True(t, changed)
	require.Len(t, next, 1)
	require.Equal(t, 2, next[0].Quantity)
}

func TestDecreaseLineAtOneDeletes(t *testing.T) {
	cart := []shop.CartLine{{ProductID: "w-100", Quantity: 1}}

	next, changed := shop.DecreaseLine(cart, "w-100")
	require.True(t, changed)
	require.Empty(t, next)
}

func TestDecreaseLineAbsentIsNoop(t *testing.T) {
	cart := []shop.CartLine{{ProductID: "w-100", Quantity: 1}}

	next, changed := shop.DecreaseLine(cart, "w-999")
	require.False(t, changed)
	require.Equal(t, cart, next)
}

func TestRemoveLine(t *testing.T) {
	cart := []shop.CartLine{
		{ProductID: "w-100", Quantity: 2},
		{ProductID: "w-200", Quantity: 1},
	}

	next, changed := shop.RemoveLine(cart, "w-100")
	require.True(t, changed)
	require.Len(t, next, 1)
	require.Equal(t, "w-200", next[0].ProductID)

	// Removing an absent id succeeds without change.
	next, changed = shop.RemoveLine(next, "w-100")
	require.False(t, changed)
	require.Len(t, next, 1)
}

func TestSubtotal(t *testing.T) {
	cart := []shop.CartLine{
		{ProductID: "a", UnitPrice: 100, Quantity: 2},
		{ProductID: "b", UnitPrice: 49.5, Quantity: 1},
	}
	require.InDelta(t, 249.5, float64(shop.Subtotal(cart)), 0.001)
}

func TestMoneyDecodesNumericStrings(t *testing.T) {
	var p shop.Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","price":"129.99","stock":1}`), &p))
	require.InDelta(t, 129.99, float64(p.Price), 0.001)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","price":129.99,"stock":1}`), &p))
	require.InDelta(t, 129.99, float64(p.Price), 0.001)
}
