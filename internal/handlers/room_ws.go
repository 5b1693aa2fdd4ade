// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/dongdong-game/dongdong/internal/game"
	"github.com/dongdong-game/dongdong/internal/middleware"
	"github.com/dongdong-game/dongdong/internal/room"
)

const (
	maxPlayerNameLen = 32
	writeTimeout     = 5 * time.Second
	pingInterval     = 30 * time.Second
)

// ClientMessage is one message from the browser: an action name plus its payload.
type ClientMessage struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RoomWSHandler upgrades /ws/{room_id}/{player_name} and attaches the caller
// to the room. The socket stays open until the client leaves or the room closes.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("room_id")
		name := r.PathValue("player_name")

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns(rs.AllowedOrigins),
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for room %s: %v", code, err)
			return
		}
		defer c.CloseNow()
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		rm, ok := rs.Rooms.Get(code)
		if !ok {
			c.Close(RoomNotFoundError, "Room not found")
			return
		}
		if name == "" || len(name) > maxPlayerNameLen || !utf8.ValidString(name) {
			c.Close(InvalidPlayerNameError, "Invalid player name.")
			return
		}

		conn, err := rm.Connect(name)
		switch {
		case errors.Is(err, game.ErrNameTaken):
			c.Close(NameTakenError, "Name is already taken by an active player.")
			return
		case errors.Is(err, room.ErrClosed):
			c.Close(RoomNotFoundError, "Room not found")
			return
		case err != nil:
			logger.WithError(err).WithField("room", code).Error("failed to join room")
			c.Close(websocket.StatusInternalError, "Could not join room.")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go writePump(ctx, c, conn, logger)

		readErr := readPump(ctx, c, rm, conn, logger)
		rm.Disconnect(conn)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPump reads client messages until the socket fails. It returns the read
// error unless the close was a normal one.
func readPump(ctx context.Context, c *websocket.Conn, rm *room.Room, conn *room.Conn, logger *logrus.Logger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from %s in room %s. Ignoring.", msgType, conn.Name, rm.Code)
			continue
		}
		handleClientMessage(data, rm, conn, logger)
	}
}

// handleClientMessage decodes and applies one message. A panic while applying
// is reported to the room's connections and does not take down other rooms.
func handleClientMessage(data []byte, rm *room.Room, conn *room.Conn, logger *logrus.Logger) {
	defer func() {
		if p := recover(); p != nil {
			logger.WithFields(logrus.Fields{"room": rm.Code, "player": conn.Name}).Errorf("panic while handling message: %v", p)
			rm.BroadcastError(fmt.Sprintf("internal error: %v", p))
		}
	}()

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Warnf("Invalid JSON received from %s in room %s: %v", conn.Name, rm.Code, err)
		rm.SendError(conn, "Invalid JSON format.")
		return
	}

	if msg.Action == "ping" {
		rm.Pong(conn)
		return
	}
	logger.Debugf("Received action '%s' from %s in room %s.", msg.Action, conn.Name, rm.Code)
	rm.Apply(conn, game.Intent{Action: msg.Action, Payload: msg.Payload})
}

// writePump drains the connection's queue onto the socket and keeps it alive
// with periodic pings. It stops when the queue is closed or a write fails.
func writePump(ctx context.Context, c *websocket.Conn, conn *room.Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-conn.OutChan:
			if !ok {
				c.Close(websocket.StatusGoingAway, "Connection closed by server.")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write to websocket for %s: %v", conn.Name, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Failed to send ping to %s: %v. Assuming disconnect.", conn.Name, err)
				return
			}
		}
	}
}

// originPatterns turns allowed origins such as "http://localhost:3000" into
// the host patterns the websocket library matches against.
func originPatterns(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
