package store

import (
	"fmt"
	"sort"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
)

// DuplicateMessageIDError reports a message delta whose id is already known
// with different content. The original message wins; the store is unchanged.
type DuplicateMessageIDError struct {
	ID uint64
}

func (e *DuplicateMessageIDError) Error() string {
	return fmt.Sprintf("message id %d already exists with different content", e.ID)
}

// Store holds the raw, per-stream knowledge for one room exactly as
// delivered by the backend: the message set, the membership set and the
// cursor map. It never cross-references streams; that is the projection
// layer's job. It also keeps a reverse index from message id to the users
// whose cursor references it, so a message arrival can find the cursors it
// affects without a scan.
//
// A Store is owned by a single engine instance and is not safe for
// concurrent use.
type Store struct {
	messages map[uint64]models.Message
	members  map[string]struct{}
	cursors  map[string]uint64
	// cursorRefs[messageID] = set of user ids whose cursor points at it.
	cursorRefs map[uint64]map[string]struct{}
}

func New() *Store {
	return &Store{
		messages:   make(map[uint64]models.Message),
		members:    make(map[string]struct{}),
		cursors:    make(map[string]uint64),
		cursorRefs: make(map[uint64]map[string]struct{}),
	}
}

// ReplaceMessages atomically swaps the full message set and returns the ids
// that became known and the ids that are no longer known.
func (s *Store) ReplaceMessages(messages []models.Message) (added, removed []uint64) {
	next := make(map[uint64]models.Message, len(messages))
	for _, m := range messages {
		next[m.ID] = m
	}
	for id := range next {
		if _, ok := s.messages[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range s.messages {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}
	s.messages = next
	sortIDs(added)
	sortIDs(removed)
	return added, removed
}

// AddMessage inserts one message. Redelivery of an identical message is a
// no-op; the same id with different content is rejected and the original
// message kept.
func (s *Store) AddMessage(m models.Message) (bool, error) {
	if existing, ok := s.messages[m.ID]; ok {
		if existing.Equal(m) {
			return false, nil
		}
		return false, &DuplicateMessageIDError{ID: m.ID}
	}
	s.messages[m.ID] = m
	return true, nil
}

// ReplaceMembership atomically swaps the membership set and returns the
// symmetric difference.
func (s *Store) ReplaceMembership(userIDs []string) (added, removed []string) {
	next := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		next[id] = struct{}{}
	}
	for id := range next {
		if _, ok := s.members[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range s.members {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}
	s.members = next
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// AddMember inserts a user into the membership set. Re-adding an existing
// member is a no-op (streams may redeliver).
func (s *Store) AddMember(userID string) bool {
	if _, ok := s.members[userID]; ok {
		return false
	}
	s.members[userID] = struct{}{}
	return true
}

// RemoveMember deletes a user from the membership set. Removing an absent
// member is a no-op.
func (s *Store) RemoveMember(userID string) bool {
	if _, ok := s.members[userID]; !ok {
		return false
	}
	delete(s.members, userID)
	return true
}

// ReplaceCursors atomically swaps the cursor map and returns the ids of
// every user whose cursor was added, changed or removed.
func (s *Store) ReplaceCursors(cursors []models.Cursor) (affected []string) {
	next := make(map[string]uint64, len(cursors))
	for _, c := range cursors {
		next[c.UserID] = c.MessageID
	}
	seen := make(map[string]struct{})
	for userID, messageID := range next {
		if old, ok := s.cursors[userID]; !ok || old != messageID {
			seen[userID] = struct{}{}
		}
	}
	for userID := range s.cursors {
		if _, ok := next[userID]; !ok {
			seen[userID] = struct{}{}
		}
	}
	s.cursors = next
	s.rebuildCursorRefs()
	for userID := range seen {
		affected = append(affected, userID)
	}
	sort.Strings(affected)
	return affected
}

// UpsertCursor replaces the user's cursor, last write wins. Returns false
// when the stored value is already identical.
func (s *Store) UpsertCursor(c models.Cursor) bool {
	if old, ok := s.cursors[c.UserID]; ok {
		if old == c.MessageID {
			return false
		}
		s.dropCursorRef(old, c.UserID)
	}
	s.cursors[c.UserID] = c.MessageID
	s.addCursorRef(c.MessageID, c.UserID)
	return true
}

func (s *Store) HasMessage(id uint64) bool {
	_, ok := s.messages[id]
	return ok
}

func (s *Store) Message(id uint64) (models.Message, bool) {
	m, ok := s.messages[id]
	return m, ok
}

func (s *Store) IsMember(userID string) bool {
	_, ok := s.members[userID]
	return ok
}

func (s *Store) CursorFor(userID string) (uint64, bool) {
	id, ok := s.cursors[userID]
	return id, ok
}

// CursorsReferencing returns, sorted, the users whose cursor points at the
// given message id.
func (s *Store) CursorsReferencing(messageID uint64) []string {
	refs := s.cursorRefs[messageID]
	if len(refs) == 0 {
		return nil
	}
	users := make([]string, 0, len(refs))
	for userID := range refs {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// Members returns the raw membership set, sorted.
func (s *Store) Members() []string {
	members := make([]string, 0, len(s.members))
	for id := range s.members {
		members = append(members, id)
	}
	sort.Strings(members)
	return members
}

// MessagesOrdered returns every known message in ascending id order.
func (s *Store) MessagesOrdered() []models.Message {
	messages := make([]models.Message, 0, len(s.messages))
	for _, m := range s.messages {
		messages = append(messages, m)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages
}

func (s *Store) addCursorRef(messageID uint64, userID string) {
	refs, ok := s.cursorRefs[messageID]
	if !ok {
		refs = make(map[string]struct{})
		s.cursorRefs[messageID] = refs
	}
	refs[userID] = struct{}{}
}

func (s *Store) dropCursorRef(messageID uint64, userID string) {
	if refs, ok := s.cursorRefs[messageID]; ok {
		delete(refs, userID)
		if len(refs) == 0 {
			delete(s.cursorRefs, messageID)
		}
	}
}

func (s *Store) rebuildCursorRefs() {
	s.cursorRefs = make(map[uint64]map[string]struct{}, len(s.cursors))
	for userID, messageID := range s.cursors {
		s.addCursorRef(messageID, userID)
	}
}

func sortIDs(ids []uint64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
