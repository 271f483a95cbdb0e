package handlers

import (
	"log"
	"sort"
	"sync"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/cache"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/handlers/ws"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/roomstate"
)

// RoomRegistry owns one reconciliation engine per room and serializes all
// access to it. The engines themselves are single-threaded; the registry is
// the funnel that turns the gateway's concurrent event sources (websocket
// ingest, NATS ingress) into one sequential Apply stream per room.
type RoomRegistry struct {
	mu    sync.Mutex
	rooms map[string]*roomEntry

	hub       *ws.Hub
	snapCache *cache.SnapshotCache
}

type roomEntry struct {
	mu     sync.Mutex
	engine *roomstate.Engine
}

func NewRoomRegistry(hub *ws.Hub, snapCache *cache.SnapshotCache) *RoomRegistry {
	return &RoomRegistry{
		rooms:     make(map[string]*roomEntry),
		hub:       hub,
		snapCache: snapCache,
	}
}

func (r *RoomRegistry) entry(roomID string) *roomEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.rooms[roomID]; ok {
		return e
	}
	engine := roomstate.NewEngine(roomID)
	if r.hub != nil {
		engine.Subscribe(roomstate.ListenerFunc(func(roomID string, batch models.Batch) {
			r.hub.BroadcastChanges(roomID, batch)
		}))
	}
	e := &roomEntry{engine: engine}
	r.rooms[roomID] = e
	return e
}

// Apply routes one decoded event to its room's engine, creating the room on
// first contact. The entry lock makes the apply-and-notify step atomic with
// respect to snapshot reads of the same room.
func (r *RoomRegistry) Apply(roomID string, ev roomstate.Event) (models.Batch, error) {
	e := r.entry(roomID)
	e.mu.Lock()
	defer e.mu.Unlock()
	batch, err := e.engine.Apply(ev)
	if err != nil {
		return nil, err
	}
	if len(batch) > 0 {
		if cerr := r.snapCache.Set(roomID, e.engine.Snapshot()); cerr != nil {
			log.Printf("Failed to cache snapshot for room %s: %v", roomID, cerr)
		}
	}
	return batch, nil
}

// Known reports whether a room has been seen by the registry.
func (r *RoomRegistry) Known(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[roomID]
	return ok
}

// Snapshot returns the visible model of a known room.
func (r *RoomRegistry) Snapshot(roomID string) (models.RoomSnapshot, bool) {
	r.mu.Lock()
	e, ok := r.rooms[roomID]
	r.mu.Unlock()
	if !ok {
		return models.RoomSnapshot{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Snapshot(), true
}

// SnapshotOrCreate returns the visible model of a room, creating it empty if
// it has not been seen yet (a subscriber may connect before the first event).
func (r *RoomRegistry) SnapshotOrCreate(roomID string) models.RoomSnapshot {
	e := r.entry(roomID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Snapshot()
}

// Remove tears down a room's engine. The engine owns no resources beyond
// its in-memory state; the next event for the room id starts a fresh one.
func (r *RoomRegistry) Remove(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[roomID]; !ok {
		return false
	}
	delete(r.rooms, roomID)
	return true
}

// RoomIDs returns every known room id, sorted.
func (r *RoomRegistry) RoomIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
