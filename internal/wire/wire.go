// Package wire decodes the JSON frames the backend streams deliver into
// typed roomstate events. Frames carry a type tag and a raw payload; the
// registry maps tags to event types so the websocket ingest and the NATS
// ingress share one codec.
package wire

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/roomstate"
)

// Frame is the wire envelope for one backend event. RoomID routes the frame
// to the right engine instance; it is required at the envelope because an
// empty initial-state payload carries no room of its own.
type Frame struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id"`
	Payload json.RawMessage `json:"payload"`
}

const (
	TypeMessagesInitialState   = "messages.initial_state"
	TypeNewMessage             = "messages.new_message"
	TypeMembershipInitialState = "memberships.initial_state"
	TypeMemberAdded            = "memberships.member_added"
	TypeMemberRemoved          = "memberships.member_removed"
	TypeCursorsInitialState    = "cursors.initial_state"
	TypeCursorUpdate           = "cursors.update"
)

var (
	typeRegistry = map[string]reflect.Type{}
	nameRegistry = map[reflect.Type]string{}
)

func init() {
	registerType(TypeMessagesInitialState, &roomstate.MessagesInitialState{})
	registerType(TypeNewMessage, &roomstate.NewMessage{})
	registerType(TypeMembershipInitialState, &roomstate.MembershipInitialState{})
	registerType(TypeMemberAdded, &roomstate.MemberAdded{})
	registerType(TypeMemberRemoved, &roomstate.MemberRemoved{})
	registerType(TypeCursorsInitialState, &roomstate.CursorsInitialState{})
	registerType(TypeCursorUpdate, &roomstate.CursorUpdate{})
}

func registerType(name string, ev roomstate.Event) {
	t := reflect.TypeOf(ev).Elem()
	typeRegistry[name] = t
	nameRegistry[t] = name
}

// TypeName returns the wire tag for an event.
func TypeName(ev roomstate.Event) (string, error) {
	name, ok := nameRegistry[reflect.TypeOf(ev).Elem()]
	if !ok {
		return "", fmt.Errorf("unregistered event type %T", ev)
	}
	return name, nil
}

// Serialize wraps an event in its frame envelope.
func Serialize(roomID string, ev roomstate.Event) ([]byte, error) {
	name, err := TypeName(ev)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: name, RoomID: roomID, Payload: payload})
}

// Deserialize decodes one frame into its typed event.
func Deserialize(data []byte) (roomstate.Event, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}
	return DeserializeFrame(&frame)
}

// DeserializeFrame decodes an already-parsed envelope.
func DeserializeFrame(frame *Frame) (roomstate.Event, error) {
	t, ok := typeRegistry[frame.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", frame.Type)
	}
	ev := reflect.New(t).Interface().(roomstate.Event)
	if err := json.Unmarshal(frame.Payload, ev); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", frame.Type, err)
	}
	return ev, nil
}
