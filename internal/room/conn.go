// internal/room/conn.go
package room

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dongdong-game/dongdong/internal/game"
)

// Server message types.
const (
	MessageGameState = "game_state"
	MessageError     = "error"
	MessagePong      = "pong"
)

// Message is what the room sends to a connection.
type Message struct {
	Type    string         `json:"type"`
	Payload *game.Snapshot `json:"payload,omitempty"`
	Message string         `json:"message,omitempty"`
}

// outBuffer is the per-connection queue length. A client that falls this far
// behind is cut off and has to reconnect.
const outBuffer = 16

// Conn is one participant's attachment to a room. The transport drains
// OutChan; the room closes it on Disconnect or when the queue overflows.
type Conn struct {
	ID      uuid.UUID
	Name    string
	OutChan chan []byte

	closed bool
}

func newConn(name string) *Conn {
	return &Conn{
		ID:      uuid.New(),
		Name:    name,
		OutChan: make(chan []byte, outBuffer),
	}
}

// send queues data without blocking. Must be called with the room lock held.
func (c *Conn) send(data []byte, logger logrus.FieldLogger) {
	if c.closed {
		return
	}
	select {
	case c.OutChan <- data:
	default:
		// the seat stays until the transport reports the disconnect
		logger.WithFields(logrus.Fields{"conn": c.ID, "player": c.Name}).Warn("outbound queue full, closing connection")
		c.close()
	}
}

func (c *Conn) close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.OutChan)
}

func encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
