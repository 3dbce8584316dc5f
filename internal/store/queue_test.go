package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-calendar-backend/internal/models"
	"partner-calendar-backend/internal/store"
)

func newQueueStore(t *testing.T) *store.QueueStore {
	t.Helper()
	s, err := store.NewQueueStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestQueueStoreLoadFailsOpen(t *testing.T) {
	s := newQueueStore(t)

	state, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, models.QueueStopped, state.State)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Items)
}

func TestQueueStoreLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewQueueStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "_queue.json"), []byte("{not json"), 0o644))

	state, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, models.QueueStopped, state.State)
	assert.Empty(t, state.Items)
}

func TestQueueStoreEnqueueDeduplicates(t *testing.T) {
	s := newQueueStore(t)

	items := []models.QueueItem{
		{Partner: "Acme", FileID: "abc123"},
		{Partner: "Acme", FileID: "abc123"},
		{Partner: "Globex", FileID: "def456"},
	}
	state, added, skipped, err := s.Enqueue(items, func(string) bool { return false })
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme", "Globex"}, added)
	assert.Equal(t, []string{"Acme"}, skipped)
	require.Len(t, state.Items, 2)
	assert.Equal(t, "pending", state.Items[0].Status)

	// Enqueueing again is a no-op for both partners.
	state, added, _, err = s.Enqueue(items[:1], func(string) bool { return false })
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Len(t, state.Items, 2)
}

func TestQueueStoreEnqueueSkipsFinalized(t *testing.T) {
	s := newQueueStore(t)

	items := []models.QueueItem{
		{Partner: "Acme", FileID: "abc123"},
		{Partner: "Globex", FileID: "def456"},
	}
	state, added, skipped, err := s.Enqueue(items, func(partner string) bool {
		return partner == "Acme"
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Globex"}, added)
	assert.Equal(t, []string{"Acme"}, skipped)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "Globex", state.Items[0].Partner)
}

func TestQueueStoreRunStateTransitions(t *testing.T) {
	s := newQueueStore(t)

	items := []models.QueueItem{
		{Partner: "Acme", FileID: "abc123"},
		{Partner: "Globex", FileID: "def456"},
	}
	_, _, _, err := s.Enqueue(items, func(string) bool { return false })
	require.NoError(t, err)

	state, err := s.SetRunState(models.QueueRunning)
	require.NoError(t, err)
	assert.Equal(t, models.QueueRunning, state.State)

	// Mid-queue advance keeps the queue running.
	state, err = s.AdvanceCursor()
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Equal(t, models.QueueRunning, state.State)

	// Passing the last item stops the queue; the cursor stays past the end.
	state, err = s.AdvanceCursor()
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentIndex)
	assert.Equal(t, models.QueueStopped, state.State)

	// The operator stop action rewinds to the front.
	state, err = s.Stop()
	require.NoError(t, err)
	assert.Equal(t, models.QueueStopped, state.State)
	assert.Equal(t, 0, state.CurrentIndex)

	_, err = s.SetRunState("bogus")
	assert.Error(t, err)
}

func TestQueueStoreClear(t *testing.T) {
	s := newQueueStore(t)

	_, _, _, err := s.Enqueue([]models.QueueItem{{Partner: "Acme", FileID: "abc123"}}, func(string) bool { return false })
	require.NoError(t, err)

	state, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, models.QueueStopped, state.State)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Items)

	reloaded, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items)
}

func TestQueueStateSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewQueueStore(dir)
	require.NoError(t, err)

	_, _, _, err = s.Enqueue([]models.QueueItem{{Partner: "Acme", FileID: "abc123"}}, func(string) bool { return false })
	require.NoError(t, err)
	_, err = s.SetRunState(models.QueuePaused)
	require.NoError(t, err)

	other, err := store.NewQueueStore(dir)
	require.NoError(t, err)
	state, err := other.Load()
	require.NoError(t, err)
	assert.Equal(t, models.QueuePaused, state.State)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "Acme", state.Items[0].Partner)
	assert.Equal(t, "abc123", state.Items[0].FileID)
}
