package stats

import (
	"context"
	"fmt"
	"time"

	"ammCore/internal/storage"
)

// Checkpoint marks how far into the journal a previous run got. Windows are
// only comparable across runs of the same size, so the size is kept with it.
type Checkpoint struct {
	LastTimestamp uint64 `json:"last_timestamp"`
	WindowSeconds uint64 `json:"window_seconds"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// StateStore keeps the checkpoint between runs.
type StateStore interface {
	Load(ctx context.Context) (Checkpoint, bool, error)
	Save(ctx context.Context, cp Checkpoint) error
}

// FileStateStore keeps the checkpoint in a JSON file.
type FileStateStore struct {
	Path string
}

func (s *FileStateStore) Load(_ context.Context) (Checkpoint, bool, error) {
	var cp Checkpoint
	if s == nil || s.Path == "" {
		return cp, false, nil
	}
	ok, err := storage.ReadJSONFile(s.Path, &cp)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("load stats checkpoint: %w", err)
	}
	return cp, ok, nil
}

func (s *FileStateStore) Save(_ context.Context, cp Checkpoint) error {
	if s == nil || s.Path == "" {
		return nil
	}
	cp.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if err := storage.WriteJSONFile(s.Path, cp); err != nil {
		return fmt.Errorf("save stats checkpoint: %w", err)
	}
	return nil
}
