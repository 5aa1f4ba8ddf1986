package credstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chronoshop/internal/credstore"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := credstore.NewMemoryStore()

	access, err := s.Access(ctx)
	require.NoError(t, err)
	require.Empty(t, access)

	require.NoError(t, s.Save(ctx, "a-token", "r-token"))

	access, err = s.Access(ctx)
	require.NoError(t, err)
	require.Equal(t, "a-token", access)

	refresh, err := s.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "r-token", refresh)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	s := credstore.NewMemoryStore()

	require.NoError(t, s.Save(ctx, "a", "r"))
	require.NoError(t, s.Clear(ctx))

	access, _ := s.Access(ctx)
	refresh, _ := s.Refresh(ctx)
	require.Empty(t, access)
	require.Empty(t, refresh)
}
