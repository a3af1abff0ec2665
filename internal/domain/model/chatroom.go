package model

import (
	"strings"
	"time"
)

// Message is a single utterance in a chatroom, authored by the human user
// (IsUser true) or the assistant. Messages are appended or prepended and
// never mutated or removed afterwards.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
	Image     string    `json:"image,omitempty"` // data URI
}

// Chatroom is a named conversation thread. The message slice is ordered:
// prepended history precedes everything, appended messages follow.
type Chatroom struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"createdAt"`
	LastMessage string    `json:"lastMessage,omitempty"`
}

func NewChatroom(id, title string, initial []Message) *Chatroom {
	c := &Chatroom{
		ID:        id,
		Title:     title,
		Messages:  make([]Message, 0, max(len(initial), 8)),
		CreatedAt: time.Now(),
	}
	c.Messages = append(c.Messages, initial...)
	if n := len(c.Messages); n > 0 {
		c.LastMessage = c.Messages[n-1].Content
	}
	return c
}

// Append adds a message at the tail and refreshes the cached last-message
// text.
func (c *Chatroom) Append(m Message) {
	c.Messages = append(c.Messages, m)
	c.LastMessage = m.Content
}

// Prepend inserts an older batch before all existing content. The cached
// last-message text is untouched: history never changes the newest message.
func (c *Chatroom) Prepend(batch []Message) {
	if len(batch) == 0 {
		return
	}
	merged := make([]Message, 0, len(batch)+len(c.Messages))
	merged = append(merged, batch...)
	merged = append(merged, c.Messages...)
	c.Messages = merged
}

// EarliestTimestamp returns the oldest message timestamp, scanning the whole
// sequence rather than trusting position zero.
func (c *Chatroom) EarliestTimestamp() (time.Time, bool) {
	if len(c.Messages) == 0 {
		return time.Time{}, false
	}
	earliest := c.Messages[0].Timestamp
	for _, m := range c.Messages[1:] {
		if m.Timestamp.Before(earliest) {
			earliest = m.Timestamp
		}
	}
	return earliest, true
}

// Matches reports whether the room matches a case-insensitive substring
// query against its title or cached last-message text. An empty query
// matches everything.
func (c *Chatroom) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), q) ||
		strings.Contains(strings.ToLower(c.LastMessage), q)
}

// Clone returns a deep copy so callers cannot reach into store-owned state.
func (c *Chatroom) Clone() Chatroom {
	cp := *c
	cp.Messages = append([]Message(nil), c.Messages...)
	return cp
}
