package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	gorillaWS "github.com/gorilla/websocket"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/websocket"
)

// ReceivedEvent is the decoded server → client envelope.
type ReceivedEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WSClient is a test WebSocket client
type WSClient struct {
	t      *testing.T
	conn   *gorillaWS.Conn
	events chan *ReceivedEvent
	errors chan error
	done   chan struct{}
	mu     sync.Mutex
}

// NewWSClient opens a WebSocket connection to the test server.
// The connection is unauthenticated until RequestConnection.
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:      t,
		conn:   conn,
		events: make(chan *ReceivedEvent, 100),
		errors: make(chan error, 10),
		done:   make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

// readPump reads events from the WebSocket connection
func (c *WSClient) readPump() {
	defer close(c.events)
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				select {
				case <-c.done:
					return
				case c.errors <- err:
				}
				return
			}

			var evt ReceivedEvent
			if err := json.Unmarshal(data, &evt); err != nil {
				c.errors <- err
				continue
			}

			select {
			case c.events <- &evt:
			case <-c.done:
				return
			}
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

// RequestConnection sends the handshake frame with the given token
func (c *WSClient) RequestConnection(token string) {
	c.t.Helper()

	payload, err := json.Marshal(websocket.RequestConnectionPayload{Token: token})
	if err != nil {
		c.t.Fatalf("failed to marshal handshake payload: %v", err)
	}

	msg := &websocket.Message{
		Type:    websocket.MessageTypeRequestConnection,
		Payload: payload,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("failed to marshal message: %v", err)
	}

	c.mu.Lock()
	err = c.conn.WriteMessage(gorillaWS.TextMessage, data)
	c.mu.Unlock()

	if err != nil {
		c.t.Fatalf("failed to send handshake: %v", err)
	}
}

// ExpectEvent waits for an event with the given name
func (c *WSClient) ExpectEvent(name string, timeout time.Duration) *ReceivedEvent {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case evt := <-c.events:
			if evt == nil {
				c.t.Fatalf("connection closed while waiting for %s", name)
			}
			if evt.Event == name {
				return evt
			}
			// Skip other events
		case err := <-c.errors:
			c.t.Fatalf("error while waiting for %s: %v", name, err)
		case <-deadline:
			c.t.Fatalf("timeout waiting for event %s", name)
		}
	}
}

// ExpectTaskEvent waits for a workflow event and decodes its task
func (c *WSClient) ExpectTaskEvent(eventType domain.EventType, timeout time.Duration) *domain.Task {
	c.t.Helper()

	evt := c.ExpectEvent(string(eventType), timeout)

	var task domain.Task
	if err := json.Unmarshal(evt.Data, &task); err != nil {
		c.t.Fatalf("failed to decode task payload: %v", err)
	}

	return &task
}

// ExpectSocketError waits for the handshake failure event
func (c *WSClient) ExpectSocketError(timeout time.Duration) *websocket.ErrorPayload {
	c.t.Helper()

	evt := c.ExpectEvent(websocket.EventSocketError, timeout)

	var payload websocket.ErrorPayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		c.t.Fatalf("failed to decode error payload: %v", err)
	}

	return &payload
}

// ExpectClosed waits for the server to drop the connection, draining
// any events still in flight.
func (c *WSClient) ExpectClosed(timeout time.Duration) {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case _, ok := <-c.events:
			if !ok {
				return
			}
		case <-c.errors:
			// Read error means the connection is down.
			return
		case <-deadline:
			c.t.Fatal("timeout waiting for connection to close")
		}
	}
}

// ExpectNoEvent verifies no events are received within timeout
func (c *WSClient) ExpectNoEvent(timeout time.Duration) {
	c.t.Helper()

	select {
	case evt := <-c.events:
		if evt != nil {
			c.t.Fatalf("unexpected event received: %s", evt.Event)
		}
	case <-time.After(timeout):
		// Expected - nothing arrived
	}
}
