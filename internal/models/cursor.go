package models

// Cursor is a user's read position in a room. The backend keeps at most one
// cursor per user per room; updates carry no sequence number, so the newest
// arrival wins.
type Cursor struct {
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id"`
	MessageID uint64 `json:"message_id"`
}
