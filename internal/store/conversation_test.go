package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"ai-chat-client/internal/domain/model"
	"ai-chat-client/internal/infra/kv"
)

func newTestConversation(t *testing.T) *Conversation {
	t.Helper()
	return NewConversation(context.Background(), nil, NopSaver, nopLogger())
}

func TestCreateChatroomRapidCallsUniqueIDsAndOrder(t *testing.T) {
	c := newTestConversation(t)
	const n = 100
	ids := make(map[string]bool, n)
	var created []string
	for i := 0; i < n; i++ {
		room := c.CreateChatroom(fmt.Sprintf("room %d", i))
		if ids[room.ID] {
			t.Fatalf("duplicate room ID %q on iteration %d", room.ID, i)
		}
		ids[room.ID] = true
		created = append(created, room.ID)
	}

	rooms := c.Chatrooms()
	if len(rooms) != n {
		t.Fatalf("len(Chatrooms()) = %d, want %d", len(rooms), n)
	}
	// Most-recently-created first.
	for i, room := range rooms {
		if room.ID != created[n-1-i] {
			t.Fatalf("room at %d is %q, want %q", i, room.ID, created[n-1-i])
		}
	}
}

func TestDeleteChatroom(t *testing.T) {
	c := newTestConversation(t)
	a := c.CreateChatroom("a")
	b := c.CreateChatroom("b")

	c.SelectChatroom(a.ID)
	c.DeleteChatroom(a.ID)

	if _, ok := c.Chatroom(a.ID); ok {
		t.Fatal("deleted room still present")
	}
	if c.CurrentChatroom() != "" {
		t.Fatal("deleting the selected room must clear the selection")
	}

	c.SelectChatroom(b.ID)
	c.DeleteChatroom("no-such-room")
	if _, ok := c.Chatroom(b.ID); !ok {
		t.Fatal("deleting an unknown ID must not touch other rooms")
	}
	if c.CurrentChatroom() != b.ID {
		t.Fatal("deleting an unknown ID must not touch the selection")
	}
}

func TestSelectChatroomPermitsDanglingSelection(t *testing.T) {
	c := newTestConversation(t)
	c.SelectChatroom("ghost")
	if c.CurrentChatroom() != "ghost" {
		t.Fatal("selection is unconditional, even for unknown IDs")
	}
	c.SelectChatroom("")
	if c.CurrentChatroom() != "" {
		t.Fatal("empty ID must clear the selection")
	}
}

func TestAppendMessage(t *testing.T) {
	c := newTestConversation(t)
	room := c.CreateChatroom("t")

	c.AppendMessage(room.ID, "hello", true, "")
	c.AppendMessage(room.ID, "hi back", false, "")
	c.AppendMessage("no-such-room", "lost", true, "")

	got, ok := c.Chatroom(room.ID)
	if !ok {
		t.Fatal("room vanished")
	}
	if len(got.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(got.Messages))
	}
	if got.Messages[0].ID == got.Messages[1].ID {
		t.Fatal("messages share an ID")
	}
	if !got.Messages[0].IsUser || got.Messages[1].IsUser {
		t.Fatal("sender flags not carried")
	}
	if got.LastMessage != "hi back" {
		t.Fatalf("LastMessage = %q, want %q", got.LastMessage, "hi back")
	}
}

func TestLoadOlderMessagesProperties(t *testing.T) {
	c := newTestConversation(t)
	room := c.CreateChatroom("t")
	c.AppendMessage(room.ID, "live message", true, "")

	live, _ := c.Chatroom(room.ID)
	liveEarliest, _ := live.EarliestTimestamp()

	for page := 0; page < 3; page++ {
		batch := c.LoadOlderMessages(room.ID)
		if len(batch) != HistoryPageSize {
			t.Fatalf("page %d: len = %d, want %d", page, len(batch), HistoryPageSize)
		}
		for i, m := range batch {
			if !m.Timestamp.Before(liveEarliest) {
				t.Fatalf("page %d msg %d: %v not before prior earliest %v", page, i, m.Timestamp, liveEarliest)
			}
			if wantUser := i%2 == 0; m.IsUser != wantUser {
				t.Fatalf("page %d msg %d: IsUser = %v, want %v", page, i, m.IsUser, wantUser)
			}
			if i > 0 && !batch[i-1].Timestamp.Before(m.Timestamp) {
				t.Fatalf("page %d: batch not in ascending time order at %d", page, i)
			}
			want := fmt.Sprintf("This is a dummy message #%d from the past.", i+1)
			if m.Content != want {
				t.Fatalf("page %d msg %d: content %q, want %q", page, i, m.Content, want)
			}
		}
		got, _ := c.Chatroom(room.ID)
		// Batch sits at the head of the sequence.
		for i := range batch {
			if got.Messages[i].ID != batch[i].ID {
				t.Fatalf("page %d: prepended batch not at head", page)
			}
		}
		if got.LastMessage != "live message" {
			t.Fatal("loading history must not change LastMessage")
		}
		liveEarliest, _ = got.EarliestTimestamp()
	}
}

func TestLoadOlderMessagesEmptyRoomAndUnknownRoom(t *testing.T) {
	c := newTestConversation(t)
	room := c.CreateChatroom("empty")

	if batch := c.LoadOlderMessages("ghost"); batch != nil {
		t.Fatalf("unknown room returned %d messages, want nil", len(batch))
	}

	before := time.Now()
	batch := c.LoadOlderMessages(room.ID)
	if len(batch) != HistoryPageSize {
		t.Fatalf("len = %d, want %d", len(batch), HistoryPageSize)
	}
	// With no messages the anchor is "now": everything lands in the past.
	for i, m := range batch {
		if !m.Timestamp.Before(before.Add(time.Second)) {
			t.Fatalf("msg %d timestamp %v not in the past", i, m.Timestamp)
		}
	}
}

func TestUIFlags(t *testing.T) {
	c := newTestConversation(t)
	c.SetTyping(true)
	if !c.IsTyping() {
		t.Fatal("typing flag not set")
	}
	c.SetSearchQuery("trip")
	if c.SearchQuery() != "trip" {
		t.Fatal("search query not stored")
	}
	c.ToggleDarkMode()
	c.ToggleDarkMode()
	c.ToggleDarkMode()
	if !c.DarkMode() {
		t.Fatal("three toggles from false should land on true")
	}
}

func TestConversationSnapshotShape(t *testing.T) {
	saver := newRecordingSaver()
	c := NewConversation(context.Background(), nil, saver, nopLogger())

	var st map[string]json.RawMessage
	c.SetTyping(false) // force a commit of zero state
	if err := json.Unmarshal(saver.last(ConversationNamespace), &st); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
	if string(st["chatrooms"]) != "[]" {
		t.Fatalf("empty collection serializes as %s, want []", st["chatrooms"])
	}
	if string(st["currentChatroom"]) != "null" {
		t.Fatalf("no selection serializes as %s, want null", st["currentChatroom"])
	}

	room := c.CreateChatroom("t")
	c.SelectChatroom(room.ID)
	if err := json.Unmarshal(saver.last(ConversationNamespace), &st); err != nil {
		t.Fatal(err)
	}
	var sel string
	if err := json.Unmarshal(st["currentChatroom"], &sel); err != nil || sel != room.ID {
		t.Fatalf("currentChatroom = %s, want %q", st["currentChatroom"], room.ID)
	}
}

func TestConversationRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	saver := SaverFunc(func(ns string, payload []byte) {
		_ = mem.Set(ctx, ns, string(payload))
	})

	c := NewConversation(ctx, mem, saver, nopLogger())
	trip := c.CreateChatroom("Trip Planning")
	c.AppendMessage(trip.ID, "Where should we go in October?", true, "")
	c.AppendMessage(trip.ID, "Somewhere warm.", false, "")
	c.SelectChatroom(trip.ID)
	c.SetSearchQuery("trip")
	c.ToggleDarkMode()

	restored := NewConversation(ctx, mem, NopSaver, nopLogger())
	rooms := restored.Chatrooms()
	if len(rooms) != 1 || rooms[0].ID != trip.ID || rooms[0].Title != "Trip Planning" {
		t.Fatalf("restored rooms = %+v", rooms)
	}
	if len(rooms[0].Messages) != 2 || rooms[0].LastMessage != "Somewhere warm." {
		t.Fatalf("restored messages = %+v", rooms[0].Messages)
	}
	if restored.CurrentChatroom() != trip.ID {
		t.Fatal("selection did not survive the round trip")
	}
	if restored.SearchQuery() != "trip" || !restored.DarkMode() {
		t.Fatal("UI flags did not survive the round trip")
	}
}

func TestConversationCorruptSnapshotFallsBackClean(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	if err := mem.Set(ctx, ConversationNamespace, `{"chatrooms": 42}`); err != nil {
		t.Fatal(err)
	}
	c := NewConversation(ctx, mem, NopSaver, nopLogger())
	if len(c.Chatrooms()) != 0 || c.CurrentChatroom() != "" {
		t.Fatal("corrupt snapshot must yield zero state")
	}
	// The store stays usable afterwards.
	room := c.CreateChatroom("fresh")
	if _, ok := c.Chatroom(room.ID); !ok {
		t.Fatal("store unusable after fallback")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := newTestConversation(t)
	room := c.CreateChatroom("t", model.Message{ID: "m1", Content: "x", IsUser: true, Timestamp: time.Now()})

	got, _ := c.Chatroom(room.ID)
	got.Messages[0].Content = "tampered"
	got.Title = "tampered"

	again, _ := c.Chatroom(room.ID)
	if again.Messages[0].Content != "x" || again.Title != "t" {
		t.Fatal("mutating an accessor result leaked into the store")
	}
}
