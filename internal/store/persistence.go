package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-client/internal/domain"
	"ai-chat-client/internal/domain/ports/storage"
	"ai-chat-client/internal/infra/metrics"
	"ai-chat-client/internal/infra/worker"
)

// Namespace keys for persisted snapshots. Layouts under these keys match
// the web client this core backs: JSON payloads, RFC3339 timestamps.
const (
	SessionNamespace      = "auth-storage"
	ConversationNamespace = "chat-storage"
)

// Saver receives a whole-state snapshot after every committed mutation.
// Implementations must return quickly and must never fail the mutation:
// persistence is fire-and-forget with respect to in-memory state.
type Saver interface {
	Save(namespace string, payload []byte)
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(namespace string, payload []byte)

func (f SaverFunc) Save(namespace string, payload []byte) { f(namespace, payload) }

// NopSaver discards snapshots. Useful for tests exercising pure
// transitions without a storage dependency.
var NopSaver Saver = SaverFunc(func(string, []byte) {})

// KVSaver writes snapshots to a KeyValue backend on a worker pool so the
// mutation path never blocks on storage. A saturated pool drops the
// snapshot; the next mutation re-commits the full state anyway.
type KVSaver struct {
	kv   storage.KeyValue
	pool *worker.Pool
	log  *zerolog.Logger
}

func NewKVSaver(kv storage.KeyValue, pool *worker.Pool, log *zerolog.Logger) *KVSaver {
	return &KVSaver{kv: kv, pool: pool, log: log}
}

func (s *KVSaver) Save(namespace string, payload []byte) {
	err := s.pool.Submit(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.kv.Set(ctx, namespace, string(payload)); err != nil {
			metrics.IncPersistence(namespace, "error")
			s.log.Warn().Err(err).Str("namespace", namespace).Msg("snapshot write failed")
			return nil
		}
		metrics.IncPersistence(namespace, "ok")
		return nil
	})
	if err != nil {
		metrics.IncPersistence(namespace, "dropped")
		s.log.Warn().Err(err).Str("namespace", namespace).Msg("snapshot dropped")
	}
}

// loadNamespace rehydrates a snapshot into dst. A missing key leaves dst
// zero and returns nil; a read failure or corrupt payload returns an error
// so the caller can fall back to zero state with a warning.
func loadNamespace(ctx context.Context, kv storage.KeyValue, namespace string, dst any) error {
	if kv == nil {
		return nil
	}
	raw, err := kv.Get(ctx, namespace)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dst)
}
