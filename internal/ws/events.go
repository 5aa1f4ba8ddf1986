// internal/ws/events.go
package ws

import (
	"encoding/json"
	"time"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing      EventType = "ping"
	EventTypePong      EventType = "pong"
	EventTypeConnected EventType = "connected"
	EventTypeError     EventType = "error"

	// Session events (server -> client)
	EventTypeSessionExpired EventType = "session:expired"
	EventTypeSessionRevoked EventType = "session:revoked"
	EventTypeForceLogout    EventType = "session:force_logout"

	// Order tracking events
	EventTypeOrderPlaced  EventType = "order:placed"
	EventTypeOrderUpdated EventType = "order:updated"

	// Catalog events
	EventTypeStockChanged EventType = "product:stock_changed"
)

// Event is the universal message format on the wire.
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	ID        string          `json:"id,omitempty"`
}

// SessionEventData accompanies session:* events.
type SessionEventData struct {
	Reason string `json:"reason,omitempty"`
}

// OrderEventData accompanies order:* events.
type OrderEventData struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}
