package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"ai-chat-client/internal/domain/model"
	"ai-chat-client/internal/domain/ports/storage"
	"ai-chat-client/internal/infra/metrics"
)

// HistoryPageSize is the fixed batch size for simulated history retrieval.
// The caller contract is the real one: a batch shorter than this means no
// more history. The simulated source never runs dry, so every call returns
// a full page; a genuine backend can slot in without caller changes.
const HistoryPageSize = 10

// Conversation owns the chatroom collection and, transitively, every
// message in it. Nothing outside this store holds a writable reference.
//
// All operations are synchronous whole-state transitions under one mutex
// and never return errors: referencing an unknown chatroom is a silent
// no-op by design, so the store is total over its input types. Each
// committed mutation hands a snapshot to the Saver.
type Conversation struct {
	mu          sync.Mutex
	chatrooms   []*model.Chatroom // most-recently-created first
	current     string            // selected room ID, "" when none
	typing      bool
	searchQuery string
	darkMode    bool

	entropy *ulid.MonotonicEntropy // guarded by mu
	now     func() time.Time

	saver Saver
	log   *zerolog.Logger
}

// conversationState is the persisted layout under ConversationNamespace.
// The selection round-trips as string|null.
type conversationState struct {
	Chatrooms       []*model.Chatroom `json:"chatrooms"`
	CurrentChatroom *string           `json:"currentChatroom"`
	IsTyping        bool              `json:"isTyping"`
	SearchQuery     string            `json:"searchQuery"`
	DarkMode        bool              `json:"darkMode"`
}

// NewConversation builds the store and rehydrates it from kv. A corrupt
// snapshot falls back to zero state with a warning, never a panic.
func NewConversation(ctx context.Context, kv storage.KeyValue, saver Saver, log *zerolog.Logger) *Conversation {
	c := &Conversation{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
		saver:   saver,
		log:     log,
	}
	var st conversationState
	if err := loadNamespace(ctx, kv, ConversationNamespace, &st); err != nil {
		log.Warn().Err(err).Msg("conversation rehydration failed, starting clean")
		st = conversationState{}
	}
	c.chatrooms = st.Chatrooms
	if st.CurrentChatroom != nil {
		c.current = *st.CurrentChatroom
	}
	c.typing = st.IsTyping
	c.searchQuery = st.SearchQuery
	c.darkMode = st.DarkMode
	return c
}

// CreateChatroom inserts a new room at the head of the collection
// (most-recent-first ordering) and returns a copy of it. Room IDs are
// ULIDs with monotonic entropy: still time-sortable, but collision-free
// under arbitrarily rapid calls.
func (c *Conversation) CreateChatroom(title string, initial ...model.Message) model.Chatroom {
	c.mu.Lock()
	room := model.NewChatroom(c.newRoomIDLocked(), title, initial)
	room.CreatedAt = c.now()
	rooms := make([]*model.Chatroom, 0, len(c.chatrooms)+1)
	rooms = append(rooms, room)
	rooms = append(rooms, c.chatrooms...)
	c.chatrooms = rooms
	out := room.Clone()
	payload := c.snapshotLocked()
	c.mu.Unlock()
	metrics.IncStoreMutation("conversation", "create_chatroom")
	c.commit(payload)
	return out
}

// DeleteChatroom removes the room if present; deleting an unknown ID
// changes nothing. Deleting the selected room clears the selection.
func (c *Conversation) DeleteChatroom(id string) {
	c.mu.Lock()
	idx := -1
	for i, room := range c.chatrooms {
		if room.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.chatrooms = append(c.chatrooms[:idx], c.chatrooms[idx+1:]...)
	if c.current == id {
		c.current = ""
	}
	payload := c.snapshotLocked()
	c.mu.Unlock()
	metrics.IncStoreMutation("conversation", "delete_chatroom")
	c.commit(payload)
}

// SelectChatroom sets the selection unconditionally; "" clears it. The
// store does not check that the ID exists — a dangling selection is
// permitted, matching the client this core replaces. Callers that want
// stricter behavior check Chatroom(id) first.
func (c *Conversation) SelectChatroom(id string) {
	c.mu.Lock()
	c.current = id
	payload := c.snapshotLocked()
	c.mu.Unlock()
	metrics.IncStoreMutation("conversation", "select_chatroom")
	c.commit(payload)
}

// AppendMessage adds a message to the tail of the room's sequence and
// refreshes the cached last-message text. Unknown room IDs are a silent
// no-op. The image, when present, is a data URI carried verbatim.
func (c *Conversation) AppendMessage(roomID, content string, isUser bool, image string) {
	c.mu.Lock()
	room := c.roomLocked(roomID)
	if room == nil {
		c.mu.Unlock()
		return
	}
	room.Append(model.Message{
		ID:        uuid.NewString(),
		Content:   content,
		IsUser:    isUser,
		Timestamp: c.now(),
		Image:     image,
	})
	payload := c.snapshotLocked()
	c.mu.Unlock()
	metrics.IncStoreMutation("conversation", "append_message")
	c.commit(payload)
}

// SetTyping flips the global typing indicator. It is not tied to a room.
func (c *Conversation) SetTyping(v bool) {
	c.mu.Lock()
	c.typing = v
	payload := c.snapshotLocked()
	c.mu.Unlock()
	metrics.IncStoreMutation("conversation", "set_typing")
	c.commit(payload)
}

// SetSearchQuery stores the free-text filter. Filtering itself is a
// derived computation done by the caller via Chatroom.Matches.
func (c *Conversation) SetSearchQuery(q string) {
	c.mu.Lock()
	c.searchQuery = q
	payload := c.snapshotLocked()
	c.mu.Unlock()
	metrics.IncStoreMutation("conversation", "set_search_query")
	c.commit(payload)
}

func (c *Conversation) ToggleDarkMode() {
	c.mu.Lock()
	c.darkMode = !c.darkMode
	payload := c.snapshotLocked()
	c.mu.Unlock()
	metrics.IncStoreMutation("conversation", "toggle_dark_mode")
	c.commit(payload)
}

// LoadOlderMessages synthesizes one page of historical messages, prepends
// it to the room's sequence and returns it. Timestamps sit strictly before
// the room's earliest existing message, one minute apart, oldest first;
// senders alternate starting with the human. Unknown room IDs return nil
// and change nothing.
func (c *Conversation) LoadOlderMessages(roomID string) []model.Message {
	c.mu.Lock()
	room := c.roomLocked(roomID)
	if room == nil {
		c.mu.Unlock()
		return nil
	}
	anchor, ok := room.EarliestTimestamp()
	if !ok {
		anchor = c.now()
	}
	batch := make([]model.Message, 0, HistoryPageSize)
	for i := 0; i < HistoryPageSize; i++ {
		batch = append(batch, model.Message{
			ID:        uuid.NewString(),
			Content:   fmt.Sprintf("This is a dummy message #%d from the past.", i+1),
			IsUser:    i%2 == 0,
			Timestamp: anchor.Add(-time.Duration(HistoryPageSize-i) * time.Minute),
		})
	}
	room.Prepend(batch)
	out := append([]model.Message(nil), batch...)
	payload := c.snapshotLocked()
	c.mu.Unlock()
	metrics.IncStoreMutation("conversation", "load_older_messages")
	c.commit(payload)
	return out
}

// ---- read accessors (copies only) ----

// Chatrooms returns deep copies in collection order.
func (c *Conversation) Chatrooms() []model.Chatroom {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Chatroom, 0, len(c.chatrooms))
	for _, room := range c.chatrooms {
		out = append(out, room.Clone())
	}
	return out
}

// Chatroom returns a deep copy of one room.
func (c *Conversation) Chatroom(id string) (model.Chatroom, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if room := c.roomLocked(id); room != nil {
		return room.Clone(), true
	}
	return model.Chatroom{}, false
}

func (c *Conversation) CurrentChatroom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Conversation) IsTyping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

func (c *Conversation) SearchQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchQuery
}

func (c *Conversation) DarkMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.darkMode
}

// ---- internals ----

func (c *Conversation) roomLocked(id string) *model.Chatroom {
	for _, room := range c.chatrooms {
		if room.ID == id {
			return room
		}
	}
	return nil
}

func (c *Conversation) newRoomIDLocked() string {
	id, err := ulid.New(ulid.Timestamp(c.now()), c.entropy)
	if err != nil {
		// Monotonic entropy can overflow within a millisecond; a UUID is
		// still unique.
		return uuid.NewString()
	}
	return id.String()
}

func (c *Conversation) snapshotLocked() []byte {
	st := conversationState{
		Chatrooms:   c.chatrooms,
		IsTyping:    c.typing,
		SearchQuery: c.searchQuery,
		DarkMode:    c.darkMode,
	}
	if st.Chatrooms == nil {
		st.Chatrooms = []*model.Chatroom{}
	}
	if c.current != "" {
		cur := c.current
		st.CurrentChatroom = &cur
	}
	b, err := json.Marshal(st)
	if err != nil {
		c.log.Error().Err(err).Msg("conversation snapshot marshal failed")
		return nil
	}
	return b
}

func (c *Conversation) commit(payload []byte) {
	if payload != nil {
		c.saver.Save(ConversationNamespace, payload)
	}
}
