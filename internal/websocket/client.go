package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

// Client is one live transport endpoint. Its endpoint id is minted at
// upgrade time and is what the connection registry stores; the client
// only counts as registered once its handshake token checks out.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	endpointID string
	registered bool
}

func NewClient(hub *Hub, conn *websocket.Conn, endpointID string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 64),
		endpointID: endpointID,
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("failed to unmarshal message: %v", err)
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeRequestConnection:
		var payload RequestConnectionPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.SendEvent(&Event{Event: EventSocketError, Data: ErrorPayload{Error: "Invalid handshake payload"}})
			return
		}
		c.hub.requestHandshake(&handshakeRequest{client: c, token: payload.Token})
	}
}

// SendEvent marshals and queues an event for this endpoint only.
// A full buffer means the connection is wedged; the event is dropped
// and the pumps will tear the connection down.
func (c *Client) SendEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal event: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("dropping event for endpoint %s: buffer full", c.endpointID)
	}
}

func (c *Client) Close() {
	close(c.send)
}
