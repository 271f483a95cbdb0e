package roomstate

import (
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/store"
)

// buildBatch assembles the change batch for one applied event: membership
// changes first, then messages, then cursor transitions, so consumers never
// see a cursor before the member or message it depends on. The store
// operations already return each group sorted, which keeps batches
// deterministic for a given state and event.
//
// Message removals from a full resync have no change kind of their own; the
// backend protocol defines none. Affected cursors still disappear through
// the projector, and snapshots simply stop listing the removed messages.
func buildBatch(st *store.Store, mut mutation, cursorChanges []models.Change) models.Batch {
	size := len(mut.membersAdded) + len(mut.membersRemoved) + len(mut.messagesAdded) + len(cursorChanges)
	if size == 0 {
		return nil
	}
	batch := make(models.Batch, 0, size)
	for _, userID := range mut.membersAdded {
		batch = append(batch, models.Change{Kind: models.MemberAppeared, UserID: userID})
	}
	for _, userID := range mut.membersRemoved {
		batch = append(batch, models.Change{Kind: models.MemberDisappeared, UserID: userID})
	}
	for _, messageID := range mut.messagesAdded {
		if m, ok := st.Message(messageID); ok {
			msg := m
			batch = append(batch, models.Change{Kind: models.MessageAppeared, Message: &msg})
		}
	}
	batch = append(batch, cursorChanges...)
	return batch
}
