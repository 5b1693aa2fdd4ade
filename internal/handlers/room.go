// internal/handlers/room.go
package handlers

import (
	"encoding/json"
	"net/http"
)

// CreateRoomHandler opens a room and returns its code.
func CreateRoomHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, err := rs.Rooms.Create()
		if err != nil {
			rs.Logger.WithError(err).Error("failed to create room")
			http.Error(w, "could not create room", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"room_id": rm.Code})
	}
}

// RoomExistsHandler answers 200 when the room is active, 404 otherwise.
func RoomExistsHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := rs.Rooms.Get(r.PathValue("room_id")); !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Room not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"exists": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
