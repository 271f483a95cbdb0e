package roomstate

import (
	"sort"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/store"
)

// projector maintains the visible cursor set incrementally. A cursor is
// visible exactly when its user is a current member and its message id is
// known; membership and messages need no projection of their own (membership
// is authoritative as received, messages are visible once received).
//
// Work scales with the dirty-key set of each event, not with room size: a
// membership change touches only the changed users' cursors, a message
// arrival touches only the cursors referencing that exact id, and a cursor
// update touches only that user.
type projector struct {
	store   *store.Store
	visible map[string]uint64
}

func newProjector(st *store.Store) *projector {
	return &projector{
		store:   st,
		visible: make(map[string]uint64),
	}
}

// project re-evaluates visibility for every cursor dirtied by mut and
// returns the resulting transitions sorted by user id.
func (p *projector) project(mut mutation) []models.Change {
	dirty := make(map[string]struct{})
	for _, userID := range mut.membersAdded {
		dirty[userID] = struct{}{}
	}
	for _, userID := range mut.membersRemoved {
		dirty[userID] = struct{}{}
	}
	for _, messageID := range mut.messagesAdded {
		for _, userID := range p.store.CursorsReferencing(messageID) {
			dirty[userID] = struct{}{}
		}
	}
	for _, messageID := range mut.messagesRemoved {
		for _, userID := range p.store.CursorsReferencing(messageID) {
			dirty[userID] = struct{}{}
		}
	}
	for _, userID := range mut.cursorUsers {
		dirty[userID] = struct{}{}
	}
	if len(dirty) == 0 {
		return nil
	}

	users := make([]string, 0, len(dirty))
	for userID := range dirty {
		users = append(users, userID)
	}
	sort.Strings(users)

	var changes []models.Change
	for _, userID := range users {
		if c, ok := p.reevaluate(userID); ok {
			changes = append(changes, c)
		}
	}
	return changes
}

func (p *projector) reevaluate(userID string) (models.Change, bool) {
	oldID, wasVisible := p.visible[userID]

	newID, hasCursor := p.store.CursorFor(userID)
	nowVisible := hasCursor && p.store.IsMember(userID) && p.store.HasMessage(newID)

	switch {
	case !wasVisible && nowVisible:
		p.visible[userID] = newID
		return models.Change{Kind: models.CursorAppeared, UserID: userID, MessageID: newID}, true
	case wasVisible && !nowVisible:
		delete(p.visible, userID)
		return models.Change{Kind: models.CursorDisappeared, UserID: userID, MessageID: oldID}, true
	case wasVisible && nowVisible && oldID != newID:
		p.visible[userID] = newID
		return models.Change{Kind: models.CursorChanged, UserID: userID, MessageID: newID}, true
	}
	return models.Change{}, false
}

// visibleCursors returns a copy of the visible cursor map.
func (p *projector) visibleCursors() map[string]uint64 {
	cursors := make(map[string]uint64, len(p.visible))
	for userID, messageID := range p.visible {
		cursors[userID] = messageID
	}
	return cursors
}
