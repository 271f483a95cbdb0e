package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
)

// DefaultSnapshotTTL bounds how long a stale snapshot may serve after the
// gateway stops refreshing it.
const DefaultSnapshotTTL = 10 * time.Minute

// SnapshotCache keeps the last visible-model snapshot per room so a freshly
// restarted gateway can serve a warm (possibly stale) view while the backend
// streams resync. The engine itself is purely in-memory; this cache is a
// best-effort collaborator and every method is nil-safe.
type SnapshotCache struct {
	redis *RedisCache
	ttl   time.Duration
}

func NewSnapshotCache(redis *RedisCache, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{redis: redis, ttl: ttl}
}

func snapshotKey(roomID string) string {
	return fmt.Sprintf("roomsnap:%s", roomID)
}

// Get retrieves the cached snapshot for a room.
func (sc *SnapshotCache) Get(roomID string) (models.RoomSnapshot, bool) {
	if sc == nil || sc.redis == nil {
		return models.RoomSnapshot{}, false
	}
	data, err := sc.redis.Get(snapshotKey(roomID))
	if err != nil || data == nil {
		return models.RoomSnapshot{}, false
	}
	var snap models.RoomSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return models.RoomSnapshot{}, false
	}
	return snap, true
}

// Set caches the snapshot for a room.
func (sc *SnapshotCache) Set(roomID string, snap models.RoomSnapshot) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return err
	}
	return sc.redis.Set(snapshotKey(roomID), data, sc.ttl)
}

// Invalidate drops the cached snapshot for a room.
func (sc *SnapshotCache) Invalidate(roomID string) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	return sc.redis.Delete(snapshotKey(roomID))
}
