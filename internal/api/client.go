// internal/api/client.go

// Package api is the authenticated request client: it attaches the bearer
// token to every outbound call and performs exactly-once recovery from
// access-token expiry via the refresh endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"chronoshop/internal/credstore"
	"chronoshop/internal/domain/user"
	xerrors "chronoshop/internal/pkg/errors"
	"chronoshop/internal/session"
)

// Backend endpoints.
const (
	loginPath    = "/api/v1/auth/login"
	registerPath = "/api/v1/auth/register"
	refreshPath  = "/api/v1/auth/refresh"
	logoutPath   = "/api/v1/auth/logout"
	mePath       = "/api/v1/auth/me"
	userPath     = "/api/v1/users/me"
	productsPath = "/api/v1/products"
	ordersPath   = "/api/v1/orders"
)

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Holder
	creds   credstore.Store
	logger  *zap.Logger

	// One in-flight refresh shared by every request that hit a 401
	// concurrently, so a burst of expired calls produces a single refresh.
	refreshGroup singleflight.Group
}

func NewClient(baseURL string, timeout time.Duration, holder *session.Holder, creds credstore.Store, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: holder,
		creds:   creds,
		logger:  logger,
	}
}

// apiResponse is the backend's standard JSON envelope.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Do dispatches the envelope and decodes the response payload into out
// (out may be nil to discard it). Error mapping:
//   - transport failure or timeout -> ErrNetwork
//   - non-401 failure status       -> *ServerError, surfaced verbatim
//   - 401 on login/register        -> *ServerError (bad credentials are not
//     a token-expiry condition, no refresh is attempted)
//   - 401 elsewhere                -> one refresh + one re-issue; a second
//     401, a 401 on the refresh path itself, or a failed refresh all end in
//     ErrAuthExpired and, for refresh failure, a forced logout.
func (c *Client) Do(ctx context.Context, env *Envelope, out interface{}) error {
	token := c.bearerToken(ctx)

	// Proactive refresh: a bearer that is already past its exp claim would
	// only bounce, so refresh before dispatching.
	if token != "" && !isAuthPath(env.Path) && tokenExpired(token) {
		if err := c.refreshAccessToken(ctx); err != nil {
			return err
		}
		token = c.bearerToken(ctx)
	}

	status, body, err := c.dispatch(ctx, env, token)
	if err != nil {
		return err
	}
	if status < http.StatusBadRequest {
		return decodeData(body, out)
	}
	if status != http.StatusUnauthorized {
		return &xerrors.ServerError{Status: status, Message: serverMessage(status, body)}
	}

	// 401 from here on.
	if env.Path == loginPath || env.Path == registerPath {
		return &xerrors.ServerError{Status: status, Message: serverMessage(status, body)}
	}
	if env.Path == refreshPath || !env.markRetried() {
		return xerrors.ErrAuthExpired
	}

	c.logger.Debug("access token rejected, refreshing",
		zap.String("request_id", env.ID),
		zap.String("path", env.Path),
	)
	if err := c.refreshAccessToken(ctx); err != nil {
		return err
	}

	// The session token was swapped in place before we got here, so the
	// single re-issue observes the new credential.
	status, body, err = c.dispatch(ctx, env, c.bearerToken(ctx))
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		// A freshly refreshed token was still rejected; the session is
		// unusable and there is no third attempt.
		c.forceLogout(ctx, "access token rejected after refresh")
		return xerrors.ErrAuthExpired
	}
	if status >= http.StatusBadRequest {
		return &xerrors.ServerError{Status: status, Message: serverMessage(status, body)}
	}
	return decodeData(body, out)
}

// dispatch performs one HTTP round trip. Transport failures come back as
// ErrNetwork; HTTP status handling is the caller's concern.
func (c *Client) dispatch(ctx context.Context, env *Envelope, token string) (int, []byte, error) {
	target := c.baseURL + env.Path
	if len(env.Query) > 0 {
		target += "?" + env.Query.Encode()
	}

	var reqBody io.Reader
	if env.Body != nil {
		encoded, err := json.Marshal(env.Body)
		if err != nil {
			return 0, nil, xerrors.Wrap(err, "failed to encode request body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, env.Method, target, reqBody)
	if err != nil {
		return 0, nil, xerrors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("transport failure",
			zap.String("request_id", env.ID),
			zap.String("method", env.Method),
			zap.String("path", env.Path),
			zap.Error(err),
		)
		return 0, nil, fmt.Errorf("%w: %v", xerrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", xerrors.ErrNetwork, err)
	}
	return resp.StatusCode, body, nil
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token. Concurrent callers share a single backend call.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, c.doRefresh(ctx)
	})
	return err
}

func (c *Client) doRefresh(ctx context.Context) error {
	var refresh string
	if s, ok := c.session.Get(); ok {
		refresh = s.RefreshToken
	}
	if refresh == "" {
		refresh, _ = c.creds.Refresh(ctx)
	}
	if refresh == "" {
		c.forceLogout(ctx, "no refresh token available")
		return xerrors.ErrAuthExpired
	}

	env := NewEnvelope(http.MethodPost, refreshPath).
		WithBody(user.RefreshRequest{RefreshToken: refresh})
	status, body, err := c.dispatch(ctx, env, "")
	if err != nil {
		// Transport failure is retryable by the caller; the refresh token
		// may still be good, so keep the session.
		return err
	}
	if status != http.StatusOK {
		c.forceLogout(ctx, "refresh token rejected")
		return xerrors.ErrAuthExpired
	}

	var rr user.RefreshResponse
	if err := decodeData(body, &rr); err != nil || rr.AccessToken == "" {
		c.forceLogout(ctx, "malformed refresh response")
		return xerrors.ErrAuthExpired
	}

	// Swap the token in place before any waiter re-issues its request.
	c.session.SetAccessToken(rr.AccessToken)
	if err := c.creds.Save(ctx, rr.AccessToken, refresh); err != nil {
		c.logger.Warn("failed to persist refreshed credentials", zap.Error(err))
	}
	return nil
}

// forceLogout destroys all session and credential state and fires the
// navigation signal. The surrounding application decides where to go.
func (c *Client) forceLogout(ctx context.Context, reason string) {
	if err := c.creds.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear credential store", zap.Error(err))
	}
	c.session.ForceLogout(reason)
	c.logger.Info("forced logout", zap.String("reason", reason))
}

// bearerToken returns the access token current at dispatch time, hydrating
// the session from the credential store after a process restart.
func (c *Client) bearerToken(ctx context.Context) string {
	if s, ok := c.session.Get(); ok {
		return s.AccessToken
	}
	access, _ := c.creds.Access(ctx)
	refresh, _ := c.creds.Refresh(ctx)
	if access == "" && refresh == "" {
		return ""
	}
	c.session.Set(session.Session{AccessToken: access, RefreshToken: refresh})
	return access
}

func isAuthPath(path string) bool {
	return path == loginPath || path == registerPath || path == refreshPath
}

// tokenExpired inspects the bearer's exp claim without verifying the
// signature (verification is the backend's job). Unparseable tokens are
// dispatched as-is and judged by the server.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < 10*time.Second
}

// decodeData unwraps the backend envelope into out. Raw (non-enveloped)
// payloads decode directly.
func decodeData(body []byte, out interface{}) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return json.Unmarshal(envelope.Data, out)
	}
	return json.Unmarshal(body, out)
}

// serverMessage extracts the user-facing message from a failure body.
func serverMessage(status int, body []byte) string {
	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) <= 256 {
		return msg
	}
	return http.StatusText(status)
}
