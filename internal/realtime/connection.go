package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gofiber/contrib/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Socket is the minimal write surface a Connection needs; *websocket.Conn
// satisfies it and tests substitute a recorder.
type Socket interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Connection wraps a websocket and serializes outbound writes through a
// buffered channel, so the pipeline and ping ticker never race on the socket.
type Connection struct {
	ID        string
	SessionID string

	ws     Socket
	send   chan []byte
	once   sync.Once
	closed chan struct{}
}

// NewConnection binds a socket to a chat session room.
func NewConnection(sessionID string, ws Socket) *Connection {
	return &Connection{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ws:        ws,
		send:      make(chan []byte, 64),
		closed:    make(chan struct{}),
	}
}

// Start launches the write loop. Call it exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery. A client too slow to drain its buffer
// is disconnected so backpressure stays bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close()
		return errors.New("connection buffer exceeded")
	}
}

// Close terminates the connection and stops the write loop.
func (c *Connection) Close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
