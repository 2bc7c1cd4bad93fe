package ws

import (
	"time"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/gorilla/websocket"
)

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventAttendance Event = "attendance"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// AttendanceMessage pushes one attendance change to dashboard subscribers.
type AttendanceMessage struct {
	Event Event                 `json:"event"`
	Data  model.AttendanceEvent `json:"data"`
}

type ErrorMessage struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongMessage struct {
	Event Event `json:"event"`
}

// ─── Actions (Client → Server) ──────────────────────────────────────

// The attendance stream is push-only; clients send pings to keep the
// connection alive through idle proxies.
type Action string

const ActionPing Action = "ping"

type RequestEnvelope struct {
	Action Action `json:"action"`
}

// WriteTyped sends a strongly-typed payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorMessage over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorMessage{Event: EventError, Error: errMsg})
}

// ReadJSON reads and decodes a message with a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	return conn.ReadJSON(v)
}
