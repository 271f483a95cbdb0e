package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/models"
)

func testMessage(id uint64, sender, text string) models.Message {
	return models.Message{ID: id, RoomID: "lobby", SenderID: sender, Text: text}
}

func TestAddMessage(t *testing.T) {
	s := New()

	added, err := s.AddMessage(testMessage(1, "alice", "hello"))
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}
	if !added {
		t.Error("AddMessage() = false, want true for a new message")
	}

	// Identical redelivery is a no-op
	added, err = s.AddMessage(testMessage(1, "alice", "hello"))
	if err != nil {
		t.Fatalf("AddMessage() redelivery error = %v", err)
	}
	if added {
		t.Error("AddMessage() = true, want false for an identical redelivery")
	}

	// Same id with different content is rejected, original wins
	_, err = s.AddMessage(testMessage(1, "alice", "goodbye"))
	var dup *DuplicateMessageIDError
	if !errors.As(err, &dup) {
		t.Fatalf("AddMessage() error = %v, want DuplicateMessageIDError", err)
	}
	if dup.ID != 1 {
		t.Errorf("DuplicateMessageIDError.ID = %d, want 1", dup.ID)
	}
	if m, _ := s.Message(1); m.Text != "hello" {
		t.Errorf("message 1 text = %q, want the original %q", m.Text, "hello")
	}
}

func TestReplaceMessages(t *testing.T) {
	s := New()
	s.AddMessage(testMessage(1, "alice", "one"))
	s.AddMessage(testMessage(2, "bob", "two"))

	added, removed := s.ReplaceMessages([]models.Message{
		testMessage(2, "bob", "two"),
		testMessage(3, "carol", "three"),
		testMessage(4, "carol", "four"),
	})

	if want := []uint64{3, 4}; !reflect.DeepEqual(added, want) {
		t.Errorf("added = %v, want %v", added, want)
	}
	if want := []uint64{1}; !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
	if s.HasMessage(1) {
		t.Error("message 1 still present after replace")
	}

	ordered := s.MessagesOrdered()
	if len(ordered) != 3 || ordered[0].ID != 2 || ordered[2].ID != 4 {
		t.Errorf("MessagesOrdered() = %v, want ids 2,3,4", ordered)
	}
}

func TestReplaceMembershipSymmetricDifference(t *testing.T) {
	s := New()
	s.ReplaceMembership([]string{"alice", "bob"})

	added, removed := s.ReplaceMembership([]string{"bob", "carol"})
	if want := []string{"carol"}; !reflect.DeepEqual(added, want) {
		t.Errorf("added = %v, want %v", added, want)
	}
	if want := []string{"alice"}; !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
	if want := []string{"bob", "carol"}; !reflect.DeepEqual(s.Members(), want) {
		t.Errorf("Members() = %v, want %v", s.Members(), want)
	}
}

func TestAddRemoveMemberRedelivery(t *testing.T) {
	s := New()

	if !s.AddMember("alice") {
		t.Error("AddMember() = false for a new member")
	}
	if s.AddMember("alice") {
		t.Error("AddMember() = true for an existing member, want no-op")
	}
	if !s.RemoveMember("alice") {
		t.Error("RemoveMember() = false for a present member")
	}
	if s.RemoveMember("alice") {
		t.Error("RemoveMember() = true for an absent member, want no-op")
	}
}

func TestReplaceCursorsAffectedUsers(t *testing.T) {
	s := New()
	s.UpsertCursor(models.Cursor{RoomID: "lobby", UserID: "alice", MessageID: 1})
	s.UpsertCursor(models.Cursor{RoomID: "lobby", UserID: "bob", MessageID: 2})

	affected := s.ReplaceCursors([]models.Cursor{
		{RoomID: "lobby", UserID: "bob", MessageID: 2},  // unchanged
		{RoomID: "lobby", UserID: "carol", MessageID: 3}, // added
	})

	// alice removed, carol added, bob untouched
	if want := []string{"alice", "carol"}; !reflect.DeepEqual(affected, want) {
		t.Errorf("affected = %v, want %v", affected, want)
	}
	if _, ok := s.CursorFor("alice"); ok {
		t.Error("alice still has a cursor after replace")
	}
	if id, ok := s.CursorFor("carol"); !ok || id != 3 {
		t.Errorf("carol cursor = %d,%v, want 3,true", id, ok)
	}
}

func TestUpsertCursorLastWriteWins(t *testing.T) {
	s := New()

	if !s.UpsertCursor(models.Cursor{RoomID: "lobby", UserID: "alice", MessageID: 1}) {
		t.Error("UpsertCursor() = false for a new cursor")
	}
	if s.UpsertCursor(models.Cursor{RoomID: "lobby", UserID: "alice", MessageID: 1}) {
		t.Error("UpsertCursor() = true for an identical value, want no-op")
	}
	if !s.UpsertCursor(models.Cursor{RoomID: "lobby", UserID: "alice", MessageID: 5}) {
		t.Error("UpsertCursor() = false for a changed value")
	}
	if id, _ := s.CursorFor("alice"); id != 5 {
		t.Errorf("alice cursor = %d, want 5", id)
	}
}

func TestCursorsReferencing(t *testing.T) {
	s := New()
	s.UpsertCursor(models.Cursor{RoomID: "lobby", UserID: "alice", MessageID: 5})
	s.UpsertCursor(models.Cursor{RoomID: "lobby", UserID: "bob", MessageID: 5})
	s.UpsertCursor(models.Cursor{RoomID: "lobby", UserID: "carol", MessageID: 7})

	if want := []string{"alice", "bob"}; !reflect.DeepEqual(s.CursorsReferencing(5), want) {
		t.Errorf("CursorsReferencing(5) = %v, want %v", s.CursorsReferencing(5), want)
	}

	// Moving alice off message 5 drops her reference
	s.UpsertCursor(models.Cursor{RoomID: "lobby", UserID: "alice", MessageID: 7})
	if want := []string{"bob"}; !reflect.DeepEqual(s.CursorsReferencing(5), want) {
		t.Errorf("CursorsReferencing(5) after move = %v, want %v", s.CursorsReferencing(5), want)
	}
	if want := []string{"alice", "carol"}; !reflect.DeepEqual(s.CursorsReferencing(7), want) {
		t.Errorf("CursorsReferencing(7) = %v, want %v", s.CursorsReferencing(7), want)
	}

	// A full replace rebuilds the index
	s.ReplaceCursors([]models.Cursor{{RoomID: "lobby", UserID: "derek", MessageID: 9}})
	if s.CursorsReferencing(5) != nil {
		t.Errorf("CursorsReferencing(5) after replace = %v, want none", s.CursorsReferencing(5))
	}
	if want := []string{"derek"}; !reflect.DeepEqual(s.CursorsReferencing(9), want) {
		t.Errorf("CursorsReferencing(9) = %v, want %v", s.CursorsReferencing(9), want)
	}
}
