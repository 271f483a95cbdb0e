package models

// Message is a single chat message as delivered by the backend message
// stream. IDs are assigned by the backend in creation order and are unique
// within a room, but messages may arrive out of order and with gaps that are
// filled later.
type Message struct {
	ID       uint64 `json:"id"`
	RoomID   string `json:"room_id"`
	SenderID string `json:"sender_id"`
	Text     string `json:"text"`
}

// Equal reports whether two messages carry identical content.
func (m Message) Equal(other Message) bool {
	return m == other
}
