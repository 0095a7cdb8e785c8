package ws

import (
	"encoding/json"
	"log"
	"sync"

	"livequiz/internal/model"
)

// DefaultSendBuffer is the outbound queue length of a connection
const DefaultSendBuffer = 256

// Connection is one live WebSocket session as seen by the hub
type Connection struct {
	SessionID string
	Send      chan []byte

	closeOnce sync.Once
}

// NewConnection creates a connection with a bounded outbound queue
func NewConnection(sessionID string, buffer int) *Connection {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Connection{
		SessionID: sessionID,
		Send:      make(chan []byte, buffer),
	}
}

func (c *Connection) close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// trySend never blocks; a full queue means the peer misses the message.
// Callers hold the hub lock, so Send is never closed underneath them.
func (c *Connection) trySend(data []byte) bool {
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Hub maps session ids to their live connection. It implements
// service.Broadcaster.
type Hub struct {
	conns  map[string]*Connection
	mu     sync.RWMutex
	closed bool
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*Connection),
	}
}

// Register makes conn the live connection for its session. An older
// connection for the same session is closed and returned.
func (h *Hub) Register(conn *Connection) *Connection {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		conn.close()
		return nil
	}

	old := h.conns[conn.SessionID]
	h.conns[conn.SessionID] = conn
	if old != nil && old != conn {
		old.close()
		return old
	}
	log.Printf("Session %s connected", conn.SessionID)
	return nil
}

// Unregister removes conn if it is still the live connection for its
// session, and reports whether it was.
func (h *Hub) Unregister(conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.conns[conn.SessionID]; ok && existing == conn {
		delete(h.conns, conn.SessionID)
		conn.close()
		log.Printf("Session %s disconnected", conn.SessionID)
		return true
	}
	return false
}

// Send queues data for one session
func (h *Hub) Send(sessionID string, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.conns[sessionID]
	if !ok {
		return false
	}
	return conn.trySend(data)
}

// Broadcast queues data for every live session and returns how many accepted it
func (h *Hub) Broadcast(data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, conn := range h.conns {
		if conn.trySend(data) {
			delivered++
		} else {
			log.Printf("Send buffer full for session %s, dropping message", id)
		}
	}
	return delivered
}

// SendTo encodes an envelope and sends it to one session
func (h *Hub) SendTo(sessionID string, msgType model.MessageType, payload interface{}) bool {
	data, err := encode(msgType, payload)
	if err != nil {
		log.Printf("Failed to encode %s: %v", msgType, err)
		return false
	}
	return h.Send(sessionID, data)
}

// BroadcastAll encodes an envelope once and sends it to every session
func (h *Hub) BroadcastAll(msgType model.MessageType, payload interface{}) int {
	data, err := encode(msgType, payload)
	if err != nil {
		log.Printf("Failed to encode %s: %v", msgType, err)
		return 0
	}
	return h.Broadcast(data)
}

// Count returns the number of live sessions
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll closes every connection and refuses new ones
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, conn := range h.conns {
		conn.close()
		delete(h.conns, id)
	}
	log.Println("All WebSocket connections closed")
}

func encode(msgType model.MessageType, payload interface{}) ([]byte, error) {
	return json.Marshal(model.OutboundEnvelope{Type: msgType, Data: payload})
}
