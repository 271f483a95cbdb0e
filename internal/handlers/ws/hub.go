package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
)

// ClientConnection wraps a subscriber WebSocket connection with metadata
type ClientConnection struct {
	Conn       *websocket.Conn
	ClientID   string
	RoomID     string
	LastPong   time.Time
	PingTicker *time.Ticker
	CloseChan  chan struct{}

	writeMu sync.Mutex
}

func (c *ClientConnection) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub manages the active UI subscriber connections per room and fans change
// batches out to them.
type Hub struct {
	rooms        map[string]map[string]*ClientConnection
	roomsMux     sync.RWMutex
	pingInterval time.Duration
	pongTimeout  time.Duration
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	hub := &Hub{
		rooms:        make(map[string]map[string]*ClientConnection),
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
	}

	go hub.connectionHealthChecker()

	return hub
}

// Register adds a subscriber connection with health monitoring
func (h *Hub) Register(roomID, clientID string, conn *websocket.Conn) *ClientConnection {
	client := &ClientConnection{
		Conn:       conn,
		ClientID:   clientID,
		RoomID:     roomID,
		LastPong:   time.Now(),
		PingTicker: time.NewTicker(h.pingInterval),
		CloseChan:  make(chan struct{}),
	}

	conn.SetPongHandler(func(appData string) error {
		h.roomsMux.Lock()
		if c, exists := h.rooms[roomID][clientID]; exists {
			c.LastPong = time.Now()
		}
		h.roomsMux.Unlock()
		return conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
	})

	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.roomsMux.Lock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*ClientConnection)
	}
	h.rooms[roomID][clientID] = client
	count := len(h.rooms[roomID])
	h.roomsMux.Unlock()

	go h.pingRoutine(client)

	log.Printf("Client %s subscribed to room %s (room subscribers: %d)", clientID, roomID, count)
	return client
}

// Unregister removes a subscriber connection
func (h *Hub) Unregister(roomID, clientID string) {
	h.roomsMux.Lock()
	if client, exists := h.rooms[roomID][clientID]; exists {
		if client.PingTicker != nil {
			client.PingTicker.Stop()
		}
		close(client.CloseChan)
		delete(h.rooms[roomID], clientID)
		if len(h.rooms[roomID]) == 0 {
			delete(h.rooms, roomID)
		}
	}
	count := len(h.rooms[roomID])
	h.roomsMux.Unlock()
	log.Printf("Client %s left room %s (room subscribers: %d)", clientID, roomID, count)
}

// BroadcastChanges sends one change batch to every subscriber of a room.
func (h *Hub) BroadcastChanges(roomID string, batch models.Batch) {
	h.roomsMux.RLock()
	clients := make([]*ClientConnection, 0, len(h.rooms[roomID]))
	for _, client := range h.rooms[roomID] {
		clients = append(clients, client)
	}
	h.roomsMux.RUnlock()

	if len(clients) == 0 {
		return
	}

	frame := ChangesFrame(roomID, batch)
	for _, client := range clients {
		if err := client.writeJSON(frame); err != nil {
			log.Printf("Failed to push changes to client %s in room %s: %v", client.ClientID, roomID, err)
		}
	}
}

func (h *Hub) pingRoutine(client *ClientConnection) {
	for {
		select {
		case <-client.PingTicker.C:
			client.writeMu.Lock()
			err := client.Conn.WriteMessage(websocket.PingMessage, nil)
			client.writeMu.Unlock()
			if err != nil {
				log.Printf("Ping failed for client %s: %v", client.ClientID, err)
				return
			}
		case <-client.CloseChan:
			return
		}
	}
}

func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(h.pongTimeout / 3)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-h.pongTimeout)

		h.roomsMux.RLock()
		var stale []*ClientConnection
		for _, clients := range h.rooms {
			for _, client := range clients {
				if client.LastPong.Before(cutoff) {
					stale = append(stale, client)
				}
			}
		}
		h.roomsMux.RUnlock()

		for _, client := range stale {
			log.Printf("Client %s in room %s timed out, closing", client.ClientID, client.RoomID)
			client.Conn.Close()
			h.Unregister(client.RoomID, client.ClientID)
		}
	}
}
