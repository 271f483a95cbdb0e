package ws

import (
	"github.com/gofiber/websocket/v2"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
)

// Frame types pushed to UI subscribers.
const (
	FrameSnapshot = "snapshot"
	FrameChanges  = "changes"
	FrameError    = "error"
	FrameApplied  = "applied"
)

// ServerFrame is the wire format for everything the gateway pushes to a
// subscriber or ingest connection.
type ServerFrame struct {
	Type     string               `json:"type"`
	RoomID   string               `json:"room_id,omitempty"`
	Snapshot *models.RoomSnapshot `json:"snapshot,omitempty"`
	Changes  models.Batch         `json:"changes,omitempty"`
	Error    string               `json:"error,omitempty"`
	Code     string               `json:"code,omitempty"`
}

func SnapshotFrame(snap models.RoomSnapshot) ServerFrame {
	return ServerFrame{Type: FrameSnapshot, RoomID: snap.RoomID, Snapshot: &snap}
}

func ChangesFrame(roomID string, batch models.Batch) ServerFrame {
	return ServerFrame{Type: FrameChanges, RoomID: roomID, Changes: batch}
}

// SendError sends an error frame to the client
func SendError(conn *websocket.Conn, code, message string) error {
	return conn.WriteJSON(ServerFrame{Type: FrameError, Error: message, Code: code})
}
