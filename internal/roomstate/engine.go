// Package roomstate reconciles the three backend streams of a chat room
// (messages, memberships, read cursors) into one always-consistent visible
// model. Each stream delivers full initial-state snapshots at any time,
// interleaved with deltas, with no ordering between streams; a cursor may
// arrive before its user is a member or before its message exists. The
// engine stores everything as received, projects only the referentially
// valid subset, and notifies subscribers with one minimal change batch per
// applied event.
package roomstate

import (
	"github.com/google/uuid"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/store"
)

// Listener receives the change batch produced by one applied event.
// Delivery is synchronous with Apply; listeners observe batches strictly in
// ingestion order.
type Listener interface {
	OnChanges(roomID string, batch models.Batch)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(roomID string, batch models.Batch)

func (f ListenerFunc) OnChanges(roomID string, batch models.Batch) {
	f(roomID, batch)
}

type subscription struct {
	id       string
	listener Listener
}

// Engine is the per-room reconciliation engine. It is single-threaded by
// design: all mutation happens through sequential Apply calls, nothing
// blocks, and callers with concurrent event sources must funnel them into
// one sequence before calling Apply. One engine owns its store exclusively.
type Engine struct {
	roomID    string
	store     *store.Store
	projector *projector

	messages    ingestor
	memberships ingestor
	cursors     ingestor

	subscribers []subscription
}

func NewEngine(roomID string) *Engine {
	st := store.New()
	return &Engine{
		roomID:      roomID,
		store:       st,
		projector:   newProjector(st),
		messages:    &messageIngestor{roomID: roomID, store: st},
		memberships: &membershipIngestor{roomID: roomID, store: st},
		cursors:     &cursorIngestor{roomID: roomID, store: st},
	}
}

// Apply ingests one backend event and returns the resulting change batch,
// already delivered to subscribers. A *MalformedEventError means the event
// was rejected before any mutation. A *store.DuplicateMessageIDError is a
// data-integrity warning: the original message wins and state is unchanged.
// An event producing no visible change returns an empty batch and no
// notification.
func (e *Engine) Apply(ev Event) (models.Batch, error) {
	if ev == nil {
		return nil, malformed("", "nil event")
	}
	in, err := e.ingestorFor(ev)
	if err != nil {
		return nil, err
	}
	if err := in.validate(ev); err != nil {
		return nil, err
	}
	mut, err := in.apply(ev)
	if err != nil {
		return nil, err
	}
	if mut.empty() {
		return nil, nil
	}
	cursorChanges := e.projector.project(mut)
	batch := buildBatch(e.store, mut, cursorChanges)
	if len(batch) > 0 {
		for _, sub := range e.subscribers {
			sub.listener.OnChanges(e.roomID, batch)
		}
	}
	return batch, nil
}

// Snapshot returns the full visible model: all members, all known messages
// in id order, and every cursor whose user is a member and whose message is
// known. Intended for initial UI population before subscribing.
func (e *Engine) Snapshot() models.RoomSnapshot {
	return models.RoomSnapshot{
		RoomID:   e.roomID,
		Members:  e.store.Members(),
		Messages: e.store.MessagesOrdered(),
		Cursors:  e.projector.visibleCursors(),
	}
}

// Subscribe registers a listener for future change batches and returns its
// subscription id. There is no backfill; call Snapshot first.
func (e *Engine) Subscribe(l Listener) string {
	id := uuid.NewString()
	e.subscribers = append(e.subscribers, subscription{id: id, listener: l})
	return id
}

// Unsubscribe removes a listener by subscription id. Unknown ids are a
// no-op.
func (e *Engine) Unsubscribe(id string) bool {
	for i, sub := range e.subscribers {
		if sub.id == id {
			e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Engine) ingestorFor(ev Event) (ingestor, error) {
	switch ev.Stream() {
	case StreamMessages:
		return e.messages, nil
	case StreamMemberships:
		return e.memberships, nil
	case StreamCursors:
		return e.cursors, nil
	default:
		return nil, malformed(ev.Stream(), "unknown stream")
	}
}
