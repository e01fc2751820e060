package model

import (
	"context"
	"errors"
	"time"
)

// ErrCheckpointNotFound is returned by stores when a thread has no
// checkpoint yet.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpoint is the persisted snapshot of one thread: the full SharedState
// plus the pending-suspension marker. It is the only cross-call persistent
// record the core owns.
type Checkpoint struct {
	ThreadID  string       `json:"thread_id"`
	State     *SharedState `json:"state"`
	Suspended bool         `json:"suspended"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewCheckpoint returns an empty checkpoint for a fresh thread.
func NewCheckpoint(threadID string) *Checkpoint {
	return &Checkpoint{
		ThreadID: threadID,
		State:    NewSharedState(),
	}
}

// CheckpointStore persists one checkpoint per thread identifier. Access is
// single-writer per thread; implementations only need atomic replacement of
// the whole record.
type CheckpointStore interface {
	// Load retrieves the checkpoint for a thread, or ErrCheckpointNotFound.
	Load(ctx context.Context, threadID string) (*Checkpoint, error)

	// Save replaces the checkpoint for the thread atomically.
	Save(ctx context.Context, cp *Checkpoint) error

	// Delete discards the checkpoint, resetting the thread.
	Delete(ctx context.Context, threadID string) error
}
