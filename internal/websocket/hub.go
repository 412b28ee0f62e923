package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/dom/hades-build-planner/internal/metrics"
)

// Hub tracks connected live editor clients and fans out broadcasts.
// Per-client state lives on the Client; the hub only owns membership.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done) // Signal that Run() has exited

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
				metrics.ClientDisconnected()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
				metrics.ClientConnected()
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
				metrics.ClientDisconnected()
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if !client.trySend(data) {
					log.Printf("Hub: dropping broadcast for slow client %s", client.userID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop gracefully shuts down the hub and closes every client.
// It blocks until the hub has fully shut down.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done // Wait for Run() to finish
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()

	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BuildPublished announces a newly public build to every client. It never
// blocks the caller; the broadcast is dropped if the hub is backed up.
func (h *Hub) BuildPublished(build *domain.Build) {
	msg, err := NewMessage(MessageTypeBuildPublished, BuildPublishedPayload{
		ID:        build.ID.String(),
		ShareCode: build.ShareCode,
		Name:      build.Name,
		UserID:    build.UserID.String(),
		WeaponID:  build.WeaponID,
		AspectID:  build.AspectID,
		Tier:      string(build.Tier),
	})
	if err != nil {
		log.Printf("Hub: failed to build publish message: %v", err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Hub: failed to marshal publish message: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		log.Printf("Hub: broadcast queue full, dropping BUILD_PUBLISHED for %s", build.ID)
	}
}
