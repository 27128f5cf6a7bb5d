package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
)

func TestMemoryRunStoreSaveAndGet(t *testing.T) {
	store := NewMemoryRunStore(time.Minute)
	run := &models.TimetableRun{ID: "run-1", Status: models.RunStatusFinished, Penalty: 7}

	require.NoError(t, store.Save(context.Background(), run))

	// Later mutation of the original must not leak into the stored copy.
	run.Penalty = 99

	stored, err := store.Get(context.Background(), "run-1")
	require.NoError(t, err)
	require.Equal(t, 7, stored.Penalty)
}

func TestMemoryRunStoreUnknownID(t *testing.T) {
	store := NewMemoryRunStore(time.Minute)
	_, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestMemoryRunStoreExpiry(t *testing.T) {
	store := NewMemoryRunStore(10 * time.Millisecond)
	run := &models.TimetableRun{ID: "run-1", Status: models.RunStatusFinished}

	require.NoError(t, store.Save(context.Background(), run))
	time.Sleep(25 * time.Millisecond)

	_, err := store.Get(context.Background(), "run-1")
	require.ErrorIs(t, err, ErrRunNotFound)
}
