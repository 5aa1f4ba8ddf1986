// internal/session/session.go
package session

import (
	"sync"

	"chronoshop/internal/domain/user"
)

// Session is the in-memory representation of the authenticated user: the
// token pair plus the identity record carrying cart and wishlist. The access
// token is present exactly when the user counts as authenticated.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         user.User
}

// Holder is the single process-wide owner of the current session. It is
// injected wherever the session is needed instead of living as a package
// global, and fans out changes to registered observers.
type Holder struct {
	mu  sync.RWMutex
	cur *Session

	onChange       []func(Session)
	onForcedLogout []func(reason string)
}

func NewHolder() *Holder {
	return &Holder{}
}

// Set replaces the current session wholesale (login, registration).
func (h *Holder) Set(s Session) {
	h.mu.Lock()
	cp := s
	h.cur = &cp
	h.mu.Unlock()
	h.notifyChange(cp)
}

// Get returns a copy of the current session and whether one exists.
func (h *Holder) Get() (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.cur == nil {
		return Session{}, false
	}
	return *h.cur, true
}

// Authenticated reports whether a session with an access token is active.
func (h *Holder) Authenticated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur != nil && h.cur.AccessToken != ""
}

// SetAccessToken swaps the access token in place after a refresh. The update
// happens before any retried request reads the session, so the retry always
// observes the new token. No-op when no session is active.
func (h *Holder) SetAccessToken(token string) {
	h.mu.Lock()
	if h.cur == nil {
		h.mu.Unlock()
		return
	}
	h.cur.AccessToken = token
	cp := *h.cur
	h.mu.Unlock()
	h.notifyChange(cp)
}

// SetUser replaces the user record (and with it cart and wishlist), which is
// how a committed mutation becomes visible to the rest of the application.
// No-op when no session is active.
func (h *Holder) SetUser(u user.User) {
	h.mu.Lock()
	if h.cur == nil {
		h.mu.Unlock()
		return
	}
	h.cur.User = u
	cp := *h.cur
	h.mu.Unlock()
	h.notifyChange(cp)
}

// Clear destroys the session (logout).
func (h *Holder) Clear() {
	h.mu.Lock()
	h.cur = nil
	h.mu.Unlock()
	h.notifyChange(Session{})
}

// ForceLogout clears the session and signals observers that the application
// should return to its authentication entry point. Used on irrecoverable
// refresh failure and server-side session revocation.
func (h *Holder) ForceLogout(reason string) {
	h.mu.Lock()
	h.cur = nil
	fns := append([]func(string){}, h.onForcedLogout...)
	h.mu.Unlock()
	h.notifyChange(Session{})
	for _, fn := range fns {
		fn(reason)
	}
}

// OnChange registers an observer invoked with a copy of the session after
// every change. An empty session means logged out.
func (h *Holder) OnChange(fn func(Session)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// OnForcedLogout registers the navigation signal fired by ForceLogout.
func (h *Holder) OnForcedLogout(fn func(reason string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onForcedLogout = append(h.onForcedLogout, fn)
}

func (h *Holder) notifyChange(s Session) {
	h.mu.RLock()
	fns := append([]func(Session){}, h.onChange...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(s)
	}
}
