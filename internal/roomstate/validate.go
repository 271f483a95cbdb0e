package roomstate

import (
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
)

func validateRoom(stream Stream, want, got string) error {
	if got == "" {
		return malformed(stream, "missing room id")
	}
	if got != want {
		return malformed(stream, "event for room %q routed to room %q", got, want)
	}
	return nil
}

func validateMessage(roomID string, m models.Message) error {
	if err := validateRoom(StreamMessages, roomID, m.RoomID); err != nil {
		return err
	}
	if m.ID == 0 {
		return malformed(StreamMessages, "message without id")
	}
	if m.SenderID == "" {
		return malformed(StreamMessages, "message %d without sender", m.ID)
	}
	return nil
}

func validateCursor(roomID string, c models.Cursor) error {
	if err := validateRoom(StreamCursors, roomID, c.RoomID); err != nil {
		return err
	}
	if c.UserID == "" {
		return malformed(StreamCursors, "cursor without user id")
	}
	if c.MessageID == 0 {
		return malformed(StreamCursors, "cursor for %q without message id", c.UserID)
	}
	return nil
}
