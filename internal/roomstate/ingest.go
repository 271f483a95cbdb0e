package roomstate

import (
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/store"
)

// mutation describes what one applied event changed in the canonical store:
// the dirty keys the projector must re-evaluate, and the raw member/message
// transitions the diff layer reports directly.
type mutation struct {
	membersAdded    []string
	membersRemoved  []string
	messagesAdded   []uint64
	messagesRemoved []uint64
	// cursorUsers lists users whose raw cursor value was added, changed or
	// removed by this event.
	cursorUsers []string
}

func (m mutation) empty() bool {
	return len(m.membersAdded) == 0 && len(m.membersRemoved) == 0 &&
		len(m.messagesAdded) == 0 && len(m.messagesRemoved) == 0 &&
		len(m.cursorUsers) == 0
}

// ingestor translates the event variants of one stream into canonical store
// operations. Ingestors never filter for cross-stream validity; the
// projector does.
type ingestor interface {
	validate(ev Event) error
	apply(ev Event) (mutation, error)
}

type messageIngestor struct {
	roomID string
	store  *store.Store
}

func (in *messageIngestor) validate(ev Event) error {
	switch e := ev.(type) {
	case *MessagesInitialState:
		seen := make(map[uint64]struct{}, len(e.Messages))
		for _, m := range e.Messages {
			if err := validateMessage(in.roomID, m); err != nil {
				return err
			}
			if _, dup := seen[m.ID]; dup {
				return malformed(StreamMessages, "initial state repeats message id %d", m.ID)
			}
			seen[m.ID] = struct{}{}
		}
		return nil
	case *NewMessage:
		return validateMessage(in.roomID, e.Message)
	default:
		return malformed(StreamMessages, "unsupported event %T", ev)
	}
}

func (in *messageIngestor) apply(ev Event) (mutation, error) {
	switch e := ev.(type) {
	case *MessagesInitialState:
		added, removed := in.store.ReplaceMessages(e.Messages)
		return mutation{messagesAdded: added, messagesRemoved: removed}, nil
	case *NewMessage:
		added, err := in.store.AddMessage(e.Message)
		if err != nil {
			return mutation{}, err
		}
		if !added {
			return mutation{}, nil
		}
		return mutation{messagesAdded: []uint64{e.Message.ID}}, nil
	default:
		return mutation{}, malformed(StreamMessages, "unsupported event %T", ev)
	}
}

type membershipIngestor struct {
	roomID string
	store  *store.Store
}

func (in *membershipIngestor) validate(ev Event) error {
	switch e := ev.(type) {
	case *MembershipInitialState:
		if err := validateRoom(StreamMemberships, in.roomID, e.RoomID); err != nil {
			return err
		}
		for _, id := range e.UserIDs {
			if id == "" {
				return malformed(StreamMemberships, "initial state contains empty user id")
			}
		}
		return nil
	case *MemberAdded:
		if err := validateRoom(StreamMemberships, in.roomID, e.RoomID); err != nil {
			return err
		}
		if e.UserID == "" {
			return malformed(StreamMemberships, "member added without user id")
		}
		return nil
	case *MemberRemoved:
		if err := validateRoom(StreamMemberships, in.roomID, e.RoomID); err != nil {
			return err
		}
		if e.UserID == "" {
			return malformed(StreamMemberships, "member removed without user id")
		}
		return nil
	default:
		return malformed(StreamMemberships, "unsupported event %T", ev)
	}
}

func (in *membershipIngestor) apply(ev Event) (mutation, error) {
	switch e := ev.(type) {
	case *MembershipInitialState:
		added, removed := in.store.ReplaceMembership(e.UserIDs)
		return mutation{membersAdded: added, membersRemoved: removed}, nil
	case *MemberAdded:
		if !in.store.AddMember(e.UserID) {
			return mutation{}, nil
		}
		return mutation{membersAdded: []string{e.UserID}}, nil
	case *MemberRemoved:
		if !in.store.RemoveMember(e.UserID) {
			return mutation{}, nil
		}
		return mutation{membersRemoved: []string{e.UserID}}, nil
	default:
		return mutation{}, malformed(StreamMemberships, "unsupported event %T", ev)
	}
}

type cursorIngestor struct {
	roomID string
	store  *store.Store
}

func (in *cursorIngestor) validate(ev Event) error {
	switch e := ev.(type) {
	case *CursorsInitialState:
		seen := make(map[string]struct{}, len(e.Cursors))
		for _, c := range e.Cursors {
			if err := validateCursor(in.roomID, c); err != nil {
				return err
			}
			if _, dup := seen[c.UserID]; dup {
				return malformed(StreamCursors, "initial state repeats user %q", c.UserID)
			}
			seen[c.UserID] = struct{}{}
		}
		return nil
	case *CursorUpdate:
		return validateCursor(in.roomID, e.Cursor)
	default:
		return malformed(StreamCursors, "unsupported event %T", ev)
	}
}

func (in *cursorIngestor) apply(ev Event) (mutation, error) {
	switch e := ev.(type) {
	case *CursorsInitialState:
		affected := in.store.ReplaceCursors(e.Cursors)
		return mutation{cursorUsers: affected}, nil
	case *CursorUpdate:
		if !in.store.UpsertCursor(e.Cursor) {
			return mutation{}, nil
		}
		return mutation{cursorUsers: []string{e.Cursor.UserID}}, nil
	default:
		return mutation{}, malformed(StreamCursors, "unsupported event %T", ev)
	}
}
