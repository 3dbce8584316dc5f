package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"partner-calendar-backend/internal/models"
)

const queueFileName = "_queue.json"

// QueueStore persists the shared processing queue as a JSON file under the
// output root. Every mutation is a read-modify-write cycle guarded by an
// in-process mutex plus a file lock, so concurrent operator sessions cannot
// interleave partial updates.
type QueueStore struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

func NewQueueStore(outputRoot string) (*QueueStore, error) {
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output root: %w", err)
	}
	path := filepath.Join(outputRoot, queueFileName)
	return &QueueStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Load returns the persisted queue, failing open to a fresh stopped queue
// when the file is missing or unreadable.
func (s *QueueStore) Load() (*models.QueueState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.NewQueueState(), nil
	}

	var state models.QueueState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.NewQueueState(), nil
	}
	if state.Items == nil {
		state.Items = []models.QueueItem{}
	}
	if state.CurrentIndex < 0 {
		state.CurrentIndex = 0
	}
	return &state, nil
}

// Save writes the queue atomically: a temp file in the same directory is
// renamed over the live one so a concurrent Load never sees a partial write.
func (s *QueueStore) Save(state *models.QueueState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.tmp-%s", s.path, uuid.NewString())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write queue: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace queue file: %w", err)
	}
	return nil
}

// Update runs one locked read-modify-write cycle and returns the persisted
// result.
func (s *QueueStore) Update(fn func(*models.QueueState)) (*models.QueueState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire queue lock: %w", err)
	}
	defer s.lock.Unlock()

	state, err := s.Load()
	if err != nil {
		return nil, err
	}
	fn(state)
	if err := s.Save(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Enqueue appends the given partners, skipping any that are already queued
// (exact, case-sensitive name match) or already finalized. The selection cap
// is the caller's responsibility.
func (s *QueueStore) Enqueue(records []models.QueueItem, finalized func(partner string) bool) (*models.QueueState, []string, []string, error) {
	var added, skipped []string
	state, err := s.Update(func(q *models.QueueState) {
		for _, record := range records {
			if finalized(record.Partner) || q.Contains(record.Partner) {
				skipped = append(skipped, record.Partner)
				continue
			}
			q.Items = append(q.Items, models.QueueItem{
				Partner: record.Partner,
				FileID:  record.FileID,
				Status:  "pending",
			})
			added = append(added, record.Partner)
		}
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return state, added, skipped, nil
}

func (s *QueueStore) SetRunState(runState string) (*models.QueueState, error) {
	switch runState {
	case models.QueueStopped, models.QueueRunning, models.QueuePaused:
	default:
		return nil, fmt.Errorf("invalid run state %q", runState)
	}
	return s.Update(func(q *models.QueueState) {
		q.State = runState
	})
}

// Stop is the operator stop action: halt and rewind to the front. Queue
// completion instead leaves the cursor at len(items) via SetRunState.
func (s *QueueStore) Stop() (*models.QueueState, error) {
	return s.Update(func(q *models.QueueState) {
		q.State = models.QueueStopped
		q.CurrentIndex = 0
	})
}

// AdvanceCursor moves processing to the next item, stopping the queue once
// the cursor passes the last one. The cursor only ever increments here or
// rewinds to zero in Stop/Clear.
func (s *QueueStore) AdvanceCursor() (*models.QueueState, error) {
	return s.Update(func(q *models.QueueState) {
		q.CurrentIndex++
		if q.CurrentIndex >= len(q.Items) {
			q.State = models.QueueStopped
		}
	})
}

func (s *QueueStore) Clear() (*models.QueueState, error) {
	return s.Update(func(q *models.QueueState) {
		*q = *models.NewQueueState()
	})
}
