package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// submissionPayload is the body of an entry.submitted event.
type submissionPayload struct {
	EntryID   uuid.UUID `json:"entry_id"`
	PosID     uuid.UUID `json:"pos_id"`
	EntryDate string    `json:"entry_date"`
}

// Hub maintains the set of connected tracker watchers and broadcasts
// submission events to all of them. There is a single feed; access is
// gated at the upgrade, not per message.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan Event

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and drop it
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event Event) {
	h.broadcast <- event
}

// NotifySubmission pushes an entry.submitted event to the feed. Called
// by the submit handler after the transaction commits.
func (h *Hub) NotifySubmission(entryID, posID uuid.UUID, entryDate string) {
	payload, err := json.Marshal(submissionPayload{
		EntryID:   entryID,
		PosID:     posID,
		EntryDate: entryDate,
	})
	if err != nil {
		log.Printf("ERROR: marshal submission event: %v", err)
		return
	}
	h.Broadcast(Event{Type: "entry.submitted", Payload: payload})
}
