package roomstate

import (
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
)

// Stream identifies which backend stream an event belongs to.
type Stream string

const (
	StreamMessages    Stream = "messages"
	StreamMemberships Stream = "memberships"
	StreamCursors     Stream = "cursors"
)

// Event is one decoded backend event. The concrete variants below are the
// complete set; the marker method keeps the union closed so the ingest
// boundary can match exhaustively.
//
// Initial-state variants atomically replace all prior knowledge for their
// stream; the remaining variants are incremental deltas.
type Event interface {
	Stream() Stream
	isEvent()
}

// MessagesInitialState is the full message history snapshot. The backend may
// resend it at any time, not just at connection start.
type MessagesInitialState struct {
	Messages []models.Message `json:"messages"`
}

// NewMessage is a single message delta. Its id may be lower than ids already
// seen; it then fills a gap in the history.
type NewMessage struct {
	Message models.Message `json:"message"`
}

// MembershipInitialState is the full membership snapshot for a room.
type MembershipInitialState struct {
	RoomID  string   `json:"room_id"`
	UserIDs []string `json:"user_ids"`
}

// MemberAdded is a single membership join delta.
type MemberAdded struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

// MemberRemoved is a single membership leave delta.
type MemberRemoved struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

// CursorsInitialState is the full read-cursor snapshot for a room.
type CursorsInitialState struct {
	Cursors []models.Cursor `json:"cursors"`
}

// CursorUpdate is a single cursor delta; the newest arrival for a user wins.
type CursorUpdate struct {
	Cursor models.Cursor `json:"cursor"`
}

func (*MessagesInitialState) Stream() Stream   { return StreamMessages }
func (*NewMessage) Stream() Stream             { return StreamMessages }
func (*MembershipInitialState) Stream() Stream { return StreamMemberships }
func (*MemberAdded) Stream() Stream            { return StreamMemberships }
func (*MemberRemoved) Stream() Stream          { return StreamMemberships }
func (*CursorsInitialState) Stream() Stream    { return StreamCursors }
func (*CursorUpdate) Stream() Stream           { return StreamCursors }

func (*MessagesInitialState) isEvent()   {}
func (*NewMessage) isEvent()             {}
func (*MembershipInitialState) isEvent() {}
func (*MemberAdded) isEvent()            {}
func (*MemberRemoved) isEvent()          {}
func (*CursorsInitialState) isEvent()    {}
func (*CursorUpdate) isEvent()           {}
