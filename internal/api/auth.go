// internal/api/auth.go
package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"chronoshop/internal/domain/user"
	"chronoshop/internal/session"
)

// ========== Authentication ==========

// Login exchanges credentials for a token pair, installs the session and
// persists the credentials. A 401 here is a credential failure surfaced as
// *ServerError; no refresh is attempted.
func (c *Client) Login(ctx context.Context, email, password string) (*user.User, error) {
	env := NewEnvelope(http.MethodPost, loginPath).
		WithBody(user.LoginRequest{Email: email, Password: password})

	var resp user.LoginResponse
	if err := c.Do(ctx, env, &resp); err != nil {
		return nil, err
	}
	c.installSession(ctx, resp)
	c.logger.Info("logged in", zap.String("user_id", resp.User.ID))
	return &resp.User, nil
}

// Register creates an account and logs in with the returned token pair.
func (c *Client) Register(ctx context.Context, req user.RegisterRequest) (*user.User, error) {
	env := NewEnvelope(http.MethodPost, registerPath).WithBody(req)

	var resp user.LoginResponse
	if err := c.Do(ctx, env, &resp); err != nil {
		return nil, err
	}
	c.installSession(ctx, resp)
	c.logger.Info("registered", zap.String("user_id", resp.User.ID))
	return &resp.User, nil
}

// Logout invalidates the session server-side (best effort) and clears all
// local session and credential state.
func (c *Client) Logout(ctx context.Context) error {
	if c.session.Authenticated() {
		env := NewEnvelope(http.MethodPost, logoutPath)
		if err := c.Do(ctx, env, nil); err != nil {
			c.logger.Warn("server-side logout failed", zap.Error(err))
		}
	}
	if err := c.creds.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear credential store", zap.Error(err))
	}
	c.session.Clear()
	return nil
}

// Me fetches the current user and replaces the session's user record,
// resyncing cart and wishlist with the backend.
func (c *Client) Me(ctx context.Context) (*user.User, error) {
	env := NewEnvelope(http.MethodGet, mePath)

	var u user.User
	if err := c.Do(ctx, env, &u); err != nil {
		return nil, err
	}
	c.session.SetUser(u)
	return &u, nil
}

// UpdateUser writes a partial user update (non-nil collections replace the
// stored value wholesale) and returns the updated record. Committing the
// result into the session is the caller's decision.
func (c *Client) UpdateUser(ctx context.Context, req user.UpdateUserRequest) (*user.User, error) {
	env := NewEnvelope(http.MethodPatch, userPath).WithBody(req)

	var u user.User
	if err := c.Do(ctx, env, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) installSession(ctx context.Context, resp user.LoginResponse) {
	c.session.Set(session.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	})
	if err := c.creds.Save(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		c.logger.Warn("failed to persist credentials", zap.Error(err))
	}
}
