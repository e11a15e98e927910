package server

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
	"github.com/xainyuplus/Liar-s-Bar/internal/protocol"
)

// Hub tracks live connections and which room each is bound to
type Hub struct {
	logger *log.Logger

	mu    sync.RWMutex
	conns map[*Connection]struct{}
	rooms map[string]map[*Connection]struct{}
}

// NewHub creates an empty hub
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger.WithPrefix("hub"),
		conns:  make(map[*Connection]struct{}),
		rooms:  make(map[string]map[*Connection]struct{}),
	}
}

// Register adds a new connection
func (h *Hub) Register(c *Connection) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("Client connected", "total", total)
}

// Unregister removes a connection and returns the room and player it was
// bound to
func (h *Hub) Unregister(c *Connection) (roomID, playerID string) {
	h.mu.Lock()
	roomID, playerID = h.unbindLocked(c)
	delete(h.conns, c)
	total := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("Client disconnected", "total", total, "player", playerID)
	return roomID, playerID
}

// Bind attaches a connection to a player seat. Any other connection holding
// the same seat is detached and closed.
func (h *Hub) Bind(c *Connection, roomID, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unbindLocked(c)
	for other := range h.rooms[roomID] {
		if other != c && other.Player() == playerID {
			h.unbindLocked(other)
			h.logger.Info("Seat taken over by a new connection", "room", roomID, "player", playerID)
			_ = other.Close()
		}
	}

	c.setBinding(roomID, playerID)
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Connection]struct{})
		h.rooms[roomID] = members
	}
	members[c] = struct{}{}
}

// Unbind detaches a connection from its room
func (h *Hub) Unbind(c *Connection) {
	h.mu.Lock()
	h.unbindLocked(c)
	h.mu.Unlock()
}

func (h *Hub) unbindLocked(c *Connection) (roomID, playerID string) {
	roomID, playerID = c.binding()
	if roomID == "" {
		return "", ""
	}
	if members, ok := h.rooms[roomID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	c.setBinding("", "")
	return roomID, playerID
}

// IsBound reports whether some connection currently holds a seat
func (h *Hub) IsBound(roomID, playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		if c.Player() == playerID {
			return true
		}
	}
	return false
}

// Len returns the number of live connections
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll closes every connection
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		_ = c.Close()
	}
}

// BroadcastToRoom sends a message to every connection bound to a room
func (h *Hub) BroadcastToRoom(roomID string, msg *protocol.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for c := range h.rooms[roomID] {
		if err := c.SendMessage(msg); err == nil {
			count++
		}
	}
	h.logger.Debug("Broadcasted message to room", "room", roomID, "type", msg.Type, "recipients", count)
}

// SendToPlayer sends a message to the connection holding a seat. It returns
// false when the player has no live connection.
func (h *Hub) SendToPlayer(roomID, playerID string, msg *protocol.Message) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[roomID] {
		if c.Player() == playerID {
			return c.SendMessage(msg) == nil
		}
	}
	return false
}

// Gateway returns the outbound gateway of one room
func (h *Hub) Gateway(roomID string) game.Gateway {
	return roomGateway{hub: h, roomID: roomID}
}

type roomGateway struct {
	hub    *Hub
	roomID string
}

func (g roomGateway) Broadcast(e game.Event) {
	msg, err := protocol.FromEvent(e)
	if err != nil {
		g.hub.logger.Error("Failed to encode event", "type", e.EventType(), "error", err)
		return
	}
	g.hub.BroadcastToRoom(g.roomID, msg)
}

func (g roomGateway) Send(playerID string, e game.Event) {
	msg, err := protocol.FromEvent(e)
	if err != nil {
		g.hub.logger.Error("Failed to encode event", "type", e.EventType(), "error", err)
		return
	}
	if !g.hub.SendToPlayer(g.roomID, playerID, msg) {
		g.hub.logger.Debug("No connection for private event", "room", g.roomID, "player", playerID, "type", e.EventType())
	}
}
