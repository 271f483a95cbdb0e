package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/cache"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/httpx"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/validation"
)

type RoomHandler struct {
	registry  *RoomRegistry
	snapCache *cache.SnapshotCache
}

func NewRoomHandler(registry *RoomRegistry, snapCache *cache.SnapshotCache) *RoomHandler {
	return &RoomHandler{registry: registry, snapCache: snapCache}
}

// ListRooms returns every room id the gateway has seen
func (h *RoomHandler) ListRooms(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"rooms": h.registry.RoomIDs()})
}

// GetSnapshot returns the current visible model of a room. With ?cached=1 an
// unknown room falls back to the last cached snapshot, so a freshly
// restarted gateway can serve a stale view while the streams resync.
func (h *RoomHandler) GetSnapshot(c *fiber.Ctx) error {
	roomID := validation.NormalizeRoomID(c.Params("roomID"))
	if !validation.ValidateRoomID(roomID) {
		return httpx.BadRequest(c, "invalid_room_id", "Invalid room id")
	}

	if snap, ok := h.registry.Snapshot(roomID); ok {
		return c.JSON(fiber.Map{"snapshot": snap})
	}

	if c.Query("cached") == "1" {
		if snap, ok := h.snapCache.Get(roomID); ok {
			return c.JSON(fiber.Map{"snapshot": snap, "stale": true})
		}
	}

	return httpx.NotFound(c, "room_not_found", "Room not found")
}

// RemoveRoom tears down a room's engine and drops its cached snapshot. The
// owning session decides when a room ends; the engine is rebuilt from the
// next initial-state events if the room comes back.
func (h *RoomHandler) RemoveRoom(c *fiber.Ctx) error {
	roomID := validation.NormalizeRoomID(c.Params("roomID"))
	if !validation.ValidateRoomID(roomID) {
		return httpx.BadRequest(c, "invalid_room_id", "Invalid room id")
	}

	if !h.registry.Remove(roomID) {
		return httpx.NotFound(c, "room_not_found", "Room not found")
	}
	if err := h.snapCache.Invalidate(roomID); err != nil {
		log.Printf("Failed to invalidate cached snapshot for room %s: %v", roomID, err)
		return httpx.Internal(c, "snapshot_invalidate_failed")
	}
	return c.JSON(fiber.Map{"removed": roomID})
}
