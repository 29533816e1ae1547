package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/service"
)

// Hub holds the live endpoint connections and delivers workflow
// events to them. The durable user → endpoint mapping lives in the
// connection registry; the hub owns only the in-process side: which
// endpoint ids currently have a socket attached.
type Hub struct {
	registry *service.ConnectionService

	clients    map[string]*Client // endpoint id → live connection
	register   chan *Client
	unregister chan *Client
	handshake  chan *handshakeRequest
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

type handshakeRequest struct {
	client *Client
	token  string
}

func NewHub(registry *service.ConnectionService) *Hub {
	return &Hub{
		registry:   registry,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		handshake:  make(chan *handshakeRequest),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for _, client := range h.clients {
				client.Close()
			}
			h.clients = make(map[string]*Client)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.endpointID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.endpointID]; ok {
				delete(h.clients, client.endpointID)
				client.Close()
			}
			h.mu.Unlock()
			if client.registered {
				h.registry.Disconnect(context.Background(), client.endpointID)
			}

		case req := <-h.handshake:
			h.handleHandshake(req)
		}
	}
}

// Stop gracefully shuts down the hub and closes every connection.
// Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

// Register and Unregister select against done so a pump whose hub has
// already shut down never blocks on a loop that is no longer reading.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) requestHandshake(req *handshakeRequest) {
	select {
	case h.handshake <- req:
	case <-h.done:
	}
}

// handleHandshake authenticates the first frame of a connection and
// registers the endpoint with the connection registry. A failure is
// signaled to the connecting endpoint only; nothing is broadcast and
// the registry is left untouched.
func (h *Hub) handleHandshake(req *handshakeRequest) {
	_, err := h.registry.Connect(context.Background(), req.token, req.client.endpointID)
	if err != nil {
		log.Printf("websocket handshake failed for endpoint %s: %v", req.client.endpointID, err)
		req.client.SendEvent(&Event{Event: EventSocketError, Data: ErrorPayload{Error: "Socket Authentication failed"}})
		return
	}
	req.client.registered = true
}

// Notify implements service.Notifier: it resolves the user's endpoint
// set and pushes the event to every one that has a live connection
// here. Best-effort by contract — resolution and delivery problems
// are logged and swallowed, never returned to the mutation that
// triggered them.
func (h *Hub) Notify(ctx context.Context, userID uuid.UUID, event domain.EventType, task *domain.Task) {
	endpointIDs, err := h.registry.Resolve(ctx, userID)
	if err != nil {
		log.Printf("notifier: resolve endpoints for user %s: %v", userID, err)
		return
	}
	if len(endpointIDs) == 0 {
		return
	}

	evt := NewTaskEvent(event, task)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range endpointIDs {
		client, ok := h.clients[id]
		if !ok {
			continue
		}
		client.SendEvent(evt)
	}
}
