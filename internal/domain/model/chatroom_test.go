package model

import (
	"testing"
	"time"
)

func msg(id, content string, isUser bool, ts time.Time) Message {
	return Message{ID: id, Content: content, IsUser: isUser, Timestamp: ts}
}

func TestNewChatroomSetsLastMessageFromInitial(t *testing.T) {
	now := time.Now()
	c := NewChatroom("r1", "Trip Planning", []Message{
		msg("m1", "hello", true, now),
		msg("m2", "hi there", false, now.Add(time.Second)),
	})
	if c.LastMessage != "hi there" {
		t.Fatalf("LastMessage = %q, want %q", c.LastMessage, "hi there")
	}

	empty := NewChatroom("r2", "Empty", nil)
	if empty.LastMessage != "" {
		t.Fatalf("empty room LastMessage = %q, want empty", empty.LastMessage)
	}
	if empty.Messages == nil || len(empty.Messages) != 0 {
		t.Fatalf("empty room Messages = %v, want empty non-nil slice", empty.Messages)
	}
}

func TestAppendUpdatesLastMessage(t *testing.T) {
	c := NewChatroom("r1", "t", nil)
	c.Append(msg("m1", "first", true, time.Now()))
	c.Append(msg("m2", "second", false, time.Now()))
	if len(c.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(c.Messages))
	}
	if c.LastMessage != "second" {
		t.Fatalf("LastMessage = %q, want %q", c.LastMessage, "second")
	}
}

func TestPrependKeepsLastMessageAndOrder(t *testing.T) {
	now := time.Now()
	c := NewChatroom("r1", "t", []Message{msg("m1", "newest", true, now)})
	c.Prepend([]Message{
		msg("h1", "old-1", true, now.Add(-2*time.Minute)),
		msg("h2", "old-2", false, now.Add(-time.Minute)),
	})
	if c.LastMessage != "newest" {
		t.Fatalf("LastMessage = %q, want %q after prepend", c.LastMessage, "newest")
	}
	got := []string{c.Messages[0].ID, c.Messages[1].ID, c.Messages[2].ID}
	want := []string{"h1", "h2", "m1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message order = %v, want %v", got, want)
		}
	}
}

func TestEarliestTimestampScansWholeSequence(t *testing.T) {
	now := time.Now()
	c := NewChatroom("r1", "t", nil)
	if _, ok := c.EarliestTimestamp(); ok {
		t.Fatal("empty room should report no earliest timestamp")
	}
	// Deliberately unordered: the minimum is in the middle.
	c.Messages = []Message{
		msg("a", "", true, now),
		msg("b", "", false, now.Add(-time.Hour)),
		msg("c", "", true, now.Add(-time.Minute)),
	}
	earliest, ok := c.EarliestTimestamp()
	if !ok || !earliest.Equal(now.Add(-time.Hour)) {
		t.Fatalf("EarliestTimestamp = %v ok=%v, want %v", earliest, ok, now.Add(-time.Hour))
	}
}

func TestMatches(t *testing.T) {
	c := NewChatroom("r1", "Trip Planning", []Message{msg("m1", "Pack the SUNSCREEN", true, time.Now())})
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"trip", true},
		{"PLAN", true},
		{"sunscreen", true},
		{"budget", false},
	}
	for _, tc := range tests {
		if got := c.Matches(tc.query); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := NewChatroom("r1", "t", []Message{msg("m1", "original", true, time.Now())})
	cp := c.Clone()
	cp.Messages[0].Content = "mutated"
	if c.Messages[0].Content != "original" {
		t.Fatal("mutating a clone leaked into the source room")
	}
}
