package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/handlers/ws"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/roomstate"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/store"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/validation"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/wire"
)

type WebSocketHandler struct {
	registry *RoomRegistry
	hub      *ws.Hub
}

func NewWebSocketHandler(registry *RoomRegistry, hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{registry: registry, hub: hub}
}

// HandleSubscribe serves a UI subscriber: one snapshot frame on connect,
// then a changes frame per applied batch until the client disconnects.
func (h *WebSocketHandler) HandleSubscribe(c *websocket.Conn) {
	roomID := validation.NormalizeRoomID(c.Params("roomID"))
	if !validation.ValidateRoomID(roomID) {
		ws.SendError(c, "invalid_room_id", "Invalid room id")
		c.Close()
		return
	}

	snap := h.registry.SnapshotOrCreate(roomID)
	if err := c.WriteJSON(ws.SnapshotFrame(snap)); err != nil {
		log.Printf("Failed to send snapshot for room %s: %v", roomID, err)
		c.Close()
		return
	}

	clientID := uuid.NewString()
	h.hub.Register(roomID, clientID, c)
	defer h.hub.Unregister(roomID, clientID)

	// Keep reading so control frames (pong, close) are processed.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

// HandleIngest serves a backend stream connection: every frame is decoded
// and applied to its room, and the resulting batch (or error) is echoed
// back. Malformed frames and duplicate-id warnings never close the
// connection; the backend may keep streaming.
func (h *WebSocketHandler) HandleIngest(c *websocket.Conn) {
	maxFrame := validation.MaxIngestFrameBytes()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if len(data) > maxFrame {
			ws.SendError(c, "frame_too_large", "Frame exceeds size limit")
			continue
		}

		var frame wire.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			ws.SendError(c, "invalid_frame", err.Error())
			continue
		}
		roomID := validation.NormalizeRoomID(frame.RoomID)
		if !validation.ValidateRoomID(roomID) {
			ws.SendError(c, "invalid_room_id", "Frame missing a valid room_id")
			continue
		}

		ev, err := wire.DeserializeFrame(&frame)
		if err != nil {
			ws.SendError(c, "invalid_frame", err.Error())
			continue
		}

		batch, err := h.registry.Apply(roomID, ev)
		if err != nil {
			var malformed *roomstate.MalformedEventError
			var duplicate *store.DuplicateMessageIDError
			switch {
			case errors.As(err, &malformed):
				ws.SendError(c, "malformed_event", err.Error())
			case errors.As(err, &duplicate):
				ws.SendError(c, "duplicate_message_id", err.Error())
			default:
				log.Printf("Failed to apply %s frame for room %s: %v", frame.Type, roomID, err)
				ws.SendError(c, "apply_failed", "Failed to apply event")
			}
			continue
		}

		if err := c.WriteJSON(ws.ServerFrame{Type: ws.FrameApplied, RoomID: roomID, Changes: batch}); err != nil {
			return
		}
	}
}
