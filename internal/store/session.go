package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"ai-chat-client/internal/domain/model"
	"ai-chat-client/internal/domain/ports/storage"
	"ai-chat-client/internal/infra/metrics"
)

// Session holds the single authenticated user record plus the transient
// loading flag that gates the UI during in-flight auth calls.
//
// Every mutation is a synchronous whole-state transition under one mutex
// and commits a snapshot to the Saver afterwards. No operation returns an
// error; validation happens before the store is called.
type Session struct {
	mu      sync.Mutex
	user    *model.User
	loading bool

	saver Saver
	log   *zerolog.Logger
}

// sessionState is the persisted layout under SessionNamespace.
type sessionState struct {
	User      *model.User `json:"user"`
	IsLoading bool        `json:"isLoading"`
}

// NewSession builds the store and rehydrates it from kv. The persisted
// loading flag is deliberately dropped: it marks an in-flight call, and
// after a restart no call is in flight.
func NewSession(ctx context.Context, kv storage.KeyValue, saver Saver, log *zerolog.Logger) *Session {
	s := &Session{saver: saver, log: log}
	var st sessionState
	if err := loadNamespace(ctx, kv, SessionNamespace, &st); err != nil {
		log.Warn().Err(err).Msg("session rehydration failed, starting clean")
		st = sessionState{}
	}
	s.user = st.User
	s.loading = false
	return s
}

// Authenticate replaces the user record wholesale and clears the loading
// flag. Re-authentication overwrites; there are no partial updates.
func (s *Session) Authenticate(u *model.User) {
	s.mu.Lock()
	s.user = u
	s.loading = false
	payload := s.snapshotLocked()
	s.mu.Unlock()
	metrics.IncStoreMutation("session", "authenticate")
	s.commit(payload)
}

// Logout clears the record. Idempotent: logging out while logged out is a
// no-op in observable state.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	payload := s.snapshotLocked()
	s.mu.Unlock()
	metrics.IncStoreMutation("session", "logout")
	s.commit(payload)
}

// SetLoading flips the in-flight marker. It never touches the user record.
func (s *Session) SetLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	payload := s.snapshotLocked()
	s.mu.Unlock()
	metrics.IncStoreMutation("session", "set_loading")
	s.commit(payload)
}

// User returns a copy of the current record, or nil when logged out.
func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.IsAuthenticated
}

func (s *Session) snapshotLocked() []byte {
	b, err := json.Marshal(sessionState{User: s.user, IsLoading: s.loading})
	if err != nil {
		s.log.Error().Err(err).Msg("session snapshot marshal failed")
		return nil
	}
	return b
}

func (s *Session) commit(payload []byte) {
	if payload != nil {
		s.saver.Save(SessionNamespace, payload)
	}
}
