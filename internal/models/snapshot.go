package models

// RoomSnapshot is the visible model of one room at a point in time: every
// visible member, every known message in id order, and every visible cursor.
// A snapshot is always self-consistent: each cursor's user is in Members and
// its message id is present in Messages.
type RoomSnapshot struct {
	RoomID   string            `json:"room_id"`
	Members  []string          `json:"members"`
	Messages []Message         `json:"messages"`
	Cursors  map[string]uint64 `json:"cursors"`
}
