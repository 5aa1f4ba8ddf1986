// internal/ws/listener.go

// Package ws is the client side of the storefront's live event stream. It
// keeps one connection per session and dispatches typed events to registered
// handlers. Session revocation events clear the session and fire the forced
// logout signal, matching what the request client does on refresh failure.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chronoshop/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Handler func(Event)

type Listener struct {
	url     string
	session *session.Holder
	logger  *zap.Logger

	mu       sync.RWMutex
	conn     *websocket.Conn
	handlers map[EventType][]Handler
}

func NewListener(url string, holder *session.Holder, logger *zap.Logger) *Listener {
	l := &Listener{
		url:      url,
		session:  holder,
		logger:   logger,
		handlers: make(map[EventType][]Handler),
	}

	// Server-side revocation ends the session exactly like a failed refresh.
	l.On(EventTypeSessionRevoked, l.onSessionEnded)
	l.On(EventTypeForceLogout, l.onSessionEnded)
	return l
}

// On registers a handler for an event type. Handlers run on the read loop
// goroutine and must not block.
func (l *Listener) On(t EventType, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[t] = append(l.handlers[t], h)
}

// Dial connects using the current session's access token. Reconnection
// after Listen returns is the caller's policy.
func (l *Listener) Dial(ctx context.Context) error {
	sess, ok := l.session.Get()
	if !ok || sess.AccessToken == "" {
		return fmt.Errorf("no authenticated session to connect with")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url+"?token="+sess.AccessToken, nil)
	if err != nil {
		return fmt.Errorf("failed to dial event stream: %w", err)
	}

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
	return nil
}

// Listen runs the read loop until the connection drops or ctx is cancelled.
func (l *Listener) Listen(ctx context.Context) error {
	l.mu.RLock()
	conn := l.conn
	l.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go l.pingLoop(ctx, conn)

	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			l.logger.Warn("event stream closed", zap.Error(err))
			return err
		}

		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			l.logger.Warn("malformed event", zap.Error(err))
			continue
		}
		l.dispatch(evt)
	}
}

// Close tears down the connection.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		l.conn.Close()
		l.conn = nil
	}
}

func (l *Listener) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (l *Listener) dispatch(evt Event) {
	l.mu.RLock()
	handlers := append([]Handler(nil), l.handlers[evt.Type]...)
	l.mu.RUnlock()

	l.logger.Debug("event received", zap.String("type", string(evt.Type)))
	for _, h := range handlers {
		h(evt)
	}
}

func (l *Listener) onSessionEnded(evt Event) {
	var data SessionEventData
	_ = json.Unmarshal(evt.Data, &data)
	reason := data.Reason
	if reason == "" {
		reason = "session revoked by server"
	}
	l.session.ForceLogout(reason)
}
