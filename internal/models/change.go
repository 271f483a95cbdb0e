package models

// ChangeKind identifies one kind of visible-model change.
type ChangeKind string

const (
	MemberAppeared    ChangeKind = "member_appeared"
	MemberDisappeared ChangeKind = "member_disappeared"
	MessageAppeared   ChangeKind = "message_appeared"
	CursorAppeared    ChangeKind = "cursor_appeared"
	CursorChanged     ChangeKind = "cursor_changed"
	CursorDisappeared ChangeKind = "cursor_disappeared"
)

// Change is a single visible-model transition.
//
// UserID is set for member and cursor changes. MessageID is set for cursor
// changes and names the cursor's message after the change (for
// CursorDisappeared, the message it pointed at while visible). Message is
// set for MessageAppeared only.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	UserID    string     `json:"user_id,omitempty"`
	MessageID uint64     `json:"message_id,omitempty"`
	Message   *Message   `json:"message,omitempty"`
}

// Batch is the ordered set of changes produced by applying one backend
// event: membership changes first, then messages, then cursors, so a
// consumer never sees a cursor change before the member or message it
// depends on.
type Batch []Change
