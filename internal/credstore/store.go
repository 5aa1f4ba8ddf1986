// internal/credstore/store.go

// Package credstore persists the access/refresh token pair across process
// restarts. The request client reads it on every dispatch and clears it on
// forced logout.
package credstore

import "context"

type Store interface {
	// Save stores both credentials. An empty value clears that slot.
	Save(ctx context.Context, access, refresh string) error

	// Access returns the stored access token, or "" when none is stored.
	Access(ctx context.Context) (string, error)

	// Refresh returns the stored refresh token, or "" when none is stored.
	Refresh(ctx context.Context) (string, error)

	// Clear removes both credentials.
	Clear(ctx context.Context) error
}
