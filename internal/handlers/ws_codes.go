// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the match handler. These provide more
// specific reasons for closure than standard codes.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client connected with an unsupported subprotocol.
	SeatReplacedError   websocket.StatusCode = 3001 // The seat was taken over by a newer connection.
	MatchOverError      websocket.StatusCode = 3002 // The match ended; no more events will follow.
)
