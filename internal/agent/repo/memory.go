package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/feedback-insight-poc/server/internal/agent/model"
)

// MemoryCheckpointStore keeps checkpoints in process memory. Used in tests
// and when no Redis address is configured. Checkpoints are stored as JSON so
// callers get the same copy semantics as the Redis store.
type MemoryCheckpointStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{data: make(map[string][]byte)}
}

func (m *MemoryCheckpointStore) Save(_ context.Context, cp *model.Checkpoint) error {
	if cp == nil || cp.ThreadID == "" {
		return fmt.Errorf("checkpoint has no thread id")
	}
	cp.UpdatedAt = time.Now().UTC()

	b, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[cp.ThreadID] = b
	return nil
}

func (m *MemoryCheckpointStore) Load(_ context.Context, threadID string) (*model.Checkpoint, error) {
	m.mu.RLock()
	b, ok := m.data[threadID]
	m.mu.RUnlock()
	if !ok {
		return nil, model.ErrCheckpointNotFound
	}

	var cp model.Checkpoint
	if err := json.Unmarshal(b, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

func (m *MemoryCheckpointStore) Delete(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, threadID)
	return nil
}

var _ model.CheckpointStore = (*MemoryCheckpointStore)(nil)
