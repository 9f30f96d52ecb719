package realtime

import (
	"encoding/json"
	"sync"
)

// Event is the envelope for every frame on the chat socket.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEvent marshals data into an envelope frame.
func NewEvent(name string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Event: name, Data: raw})
}

// Hub tracks live connections grouped into per-session rooms. Outbound
// events for a session fan out only to that session's room; connections
// never see another conversation's traffic.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Connection // sessionID -> connectionID -> conn
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]*Connection)}
}

// Register adds the connection to its session room and starts its write
// loop. Multiple tabs on the same session share a room.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	room := h.rooms[conn.SessionID]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[conn.SessionID] = room
	}
	room[conn.ID] = conn
	h.mu.Unlock()

	conn.Start()
}

// Unregister removes the connection and closes it.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	if room := h.rooms[conn.SessionID]; room != nil {
		delete(room, conn.ID)
		if len(room) == 0 {
			delete(h.rooms, conn.SessionID)
		}
	}
	h.mu.Unlock()

	conn.Close()
}

// Broadcast delivers payload to every connection in the session room and
// reports how many accepted it.
func (h *Hub) Broadcast(sessionID string, payload []byte) int {
	h.mu.RLock()
	room := h.rooms[sessionID]
	conns := make([]*Connection, 0, len(room))
	for _, conn := range room {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates every tracked connection.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0)
	for _, room := range h.rooms {
		for _, conn := range room {
			conns = append(conns, conn)
		}
	}
	h.rooms = make(map[string]map[string]*Connection)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
