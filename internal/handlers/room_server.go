// internal/handlers/room_server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/dongdong-game/dongdong/internal/middleware"
	"github.com/dongdong-game/dongdong/internal/room"
)

// RoomServer holds the room registry and serves the HTTP and WebSocket routes.
type RoomServer struct {
	Rooms          *room.Store
	Logger         *logrus.Logger
	AllowedOrigins []string
}

// NewRoomServer returns a server over rooms. With no origins every origin is
// accepted.
func NewRoomServer(rooms *room.Store, logger *logrus.Logger, origins ...string) *RoomServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RoomServer{Rooms: rooms, Logger: logger, AllowedOrigins: origins}
}

// Routes registers every endpoint on a new mux.
func (rs *RoomServer) Routes() http.Handler {
	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(rs.Logger)

	mux.Handle("POST /room/new", logged(CreateRoomHandler(rs)))
	mux.Handle("GET /room/exists/{room_id}", logged(RoomExistsHandler(rs)))
	mux.Handle("GET /ws/{room_id}/{player_name}", RoomWSHandler(rs.Logger, rs))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rooms": rs.Rooms.Len()})
	})

	return middleware.CORS(rs.AllowedOrigins)(mux)
}
