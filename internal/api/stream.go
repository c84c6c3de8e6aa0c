package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types sent to websocket clients.
const (
	EventReading = "reading"
	EventReset   = "reset"
)

// TimerEvent describes websocket payloads emitted by the timer stream.
type TimerEvent struct {
	Type      string      `json:"type"`
	Reading   *ReadingDTO `json:"reading,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// TimerNotifier keeps track of active websocket clients and broadcasts timer events.
type TimerNotifier struct {
	mu        sync.Mutex
	clients   map[*wsClient]struct{}
	lastEvent *TimerEvent
}

// NewTimerNotifier constructs a notifier instance.
func NewTimerNotifier() *TimerNotifier {
	return &TimerNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and replays the last event to it.
func (n *TimerNotifier) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	last := n.lastEvent
	n.mu.Unlock()

	if last != nil {
		_ = client.writeJSON(*last)
	}
	return client
}

// Unregister removes the websocket client from the notifier and closes the socket.
func (n *TimerNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	_ = client.conn.Close()
}

// Clients returns the number of connected websocket clients.
func (n *TimerNotifier) Clients() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}

// Broadcast sends the supplied event to all registered websocket clients.
func (n *TimerNotifier) Broadcast(event TimerEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	snapshot := event
	n.lastEvent = &snapshot
	for client := range n.clients {
		if err := client.writeJSON(event); err != nil {
			delete(n.clients, client)
			_ = client.conn.Close()
		}
	}
	n.mu.Unlock()
}

// LastEvent returns a copy of the most recent broadcast, or nil.
func (n *TimerNotifier) LastEvent() *TimerEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lastEvent == nil {
		return nil
	}
	event := *n.lastEvent
	return &event
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}
