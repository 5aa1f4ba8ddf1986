package xerrors

import (
	"errors"
	"fmt"
)

// Failure classes surfaced by the request client and the shop manager.
var (
	// ErrNetwork covers transport failures and timeouts. Callers may retry.
	ErrNetwork = errors.New("network failure")

	// ErrAuthExpired means a token refresh failed or no refresh token was
	// available. It is always accompanied by a forced logout.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrStockExceeded means a cart mutation would exceed available stock.
	// Callers should re-fetch the product before retrying.
	ErrStockExceeded = errors.New("stock limit exceeded")

	// ErrNoSession means a mutation was attempted without an authenticated
	// session. Nothing was changed and no network call was made.
	ErrNoSession = errors.New("no active session")

	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ServerError is a non-401 failure response from the backend, carried
// verbatim so callers can build user-facing messaging from it.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.Status, e.Message)
}

// AsServerError unwraps err into a *ServerError if one is in the chain.
func AsServerError(err error) (*ServerError, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
