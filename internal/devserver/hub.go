// internal/devserver/hub.go
package devserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"chronoshop/internal/pkg/response"
	"chronoshop/internal/ws"
)

// hub fans server events out to connected websocket clients, keyed by user.
type hub struct {
	mu     sync.RWMutex
	conns  map[string][]*websocket.Conn
	logger *zap.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true }, // dev server
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		conns:  make(map[string][]*websocket.Conn),
		logger: logger,
	}
}

// handleWS authenticates via the token query parameter and keeps the
// connection open, answering pings, until the client goes away.
func (s *Server) handleWS(c *gin.Context) {
	userID, _, err := s.tokens.Verify(c.Query("token"), "access")
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.hub.add(userID, conn)
	go s.hub.readLoop(userID, conn)
}

func (h *hub) add(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[userID] = append(h.conns[userID], conn)
}

func (h *hub) remove(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.conns[userID][:0]
	for _, c := range h.conns[userID] {
		if c != conn {
			kept = append(kept, c)
		}
	}
	h.conns[userID] = kept
	conn.Close()
}

// readLoop drains client frames so ping/pong keeps working, and unregisters
// the connection when it drops.
func (h *hub) readLoop(userID string, conn *websocket.Conn) {
	defer h.remove(userID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// push delivers an event to every connection of userID.
func (h *hub) push(userID string, evt ws.Event) {
	h.mu.RLock()
	conns := append([]*websocket.Conn(nil), h.conns[userID]...)
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(evt); err != nil {
			h.logger.Warn("event push failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// ---- event constructors ----

func EventSessionRevoked(reason string) ws.Event {
	data, _ := json.Marshal(ws.SessionEventData{Reason: reason})
	return ws.Event{
		Type:      ws.EventTypeSessionRevoked,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

func EventOrderPlaced(orderID, status string) ws.Event {
	data, _ := json.Marshal(ws.OrderEventData{OrderID: orderID, Status: status})
	return ws.Event{
		Type:      ws.EventTypeOrderPlaced,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}
