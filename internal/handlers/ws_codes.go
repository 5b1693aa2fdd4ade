// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes sent when a room connection is refused.
const (
	RoomNotFoundError      websocket.StatusCode = 4000 // No active room with the code in the URL.
	NameTakenError         websocket.StatusCode = 4001 // A connected player already uses the requested name.
	InvalidPlayerNameError websocket.StatusCode = 4002 // Empty or oversized player name.
)
