package websocket

import (
	"encoding/json"

	"github.com/nedu/taskhub/internal/domain"
)

// Client → server message types.
const (
	// MessageTypeRequestConnection is the handshake: the first frame a
	// client sends, carrying its auth token.
	MessageTypeRequestConnection = "request-connection"
)

// Server → client event names.
const (
	// EventSocketError is emitted to a single endpoint when its
	// handshake fails; it is never broadcast.
	EventSocketError = "socket-error"
)

// Message is the client → server envelope.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestConnectionPayload struct {
	Token string `json:"token"`
}

// Event is the server → client envelope. Data carries the task for
// workflow events and an ErrorPayload for socket-error.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type ErrorPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewTaskEvent wraps a workflow event for the wire.
func NewTaskEvent(eventType domain.EventType, task *domain.Task) *Event {
	return &Event{Event: string(eventType), Data: task}
}
