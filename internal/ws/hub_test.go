package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if !hub.clients[client] {
		t.Fatal("client not registered")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.clients[client] {
		t.Fatal("client still registered after unregister")
	}
}

func TestNotifySubmissionReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub)
	client2 := mockClient(hub)
	client3 := mockClient(hub)

	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	entryID := uuid.New()
	posID := uuid.New()
	hub.NotifySubmission(entryID, posID, "2024-03-15")

	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != "entry.submitted" {
				t.Errorf("client%d: expected type 'entry.submitted', got '%s'", i+1, received.Type)
			}

			var payload submissionPayload
			if err := json.Unmarshal(received.Payload, &payload); err != nil {
				t.Fatalf("client%d: failed to unmarshal payload: %v", i+1, err)
			}
			if payload.EntryID != entryID {
				t.Errorf("client%d: entry id mismatch: %s", i+1, payload.EntryID)
			}
			if payload.PosID != posID {
				t.Errorf("client%d: pos id mismatch: %s", i+1, payload.PosID)
			}
			if payload.EntryDate != "2024-03-15" {
				t.Errorf("client%d: entry date mismatch: %s", i+1, payload.EntryDate)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestBroadcastWithNoClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Must not block or panic with nobody listening.
	hub.NotifySubmission(uuid.New(), uuid.New(), "2024-03-15")
	time.Sleep(10 * time.Millisecond)
}

func TestUnregisteredClientReceivesNothing(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.NotifySubmission(uuid.New(), uuid.New(), "2024-03-15")

	select {
	case msg, ok := <-client.send:
		// The channel is closed on unregister; only a close is fine.
		if ok {
			t.Fatalf("unregistered client received message: %s", msg)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventSerialization(t *testing.T) {
	event := Event{
		Type:    "entry.submitted",
		Payload: json.RawMessage(`{"entry_id":"abc","pos_id":"def","entry_date":"2024-03-15"}`),
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if decoded.Type != event.Type {
		t.Errorf("Type mismatch: got %s, want %s", decoded.Type, event.Type)
	}
	if string(decoded.Payload) != string(event.Payload) {
		t.Errorf("Payload mismatch: got %s, want %s", decoded.Payload, event.Payload)
	}
}
