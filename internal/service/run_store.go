package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
)

// RunStore persists solving runs for later retrieval and export.
type RunStore interface {
	Save(ctx context.Context, run *models.TimetableRun) error
	Get(ctx context.Context, id string) (*models.TimetableRun, error)
}

// ErrRunNotFound is returned when a run ID is unknown or expired.
var ErrRunNotFound = errors.New("run not found")

type storedRun struct {
	run     *models.TimetableRun
	savedAt time.Time
}

// MemoryRunStore keeps runs in process memory with a TTL.
type MemoryRunStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]storedRun
}

// NewMemoryRunStore builds an in-memory run store.
func NewMemoryRunStore(ttl time.Duration) *MemoryRunStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryRunStore{
		ttl:   ttl,
		items: make(map[string]storedRun),
	}
}

// Save stores a snapshot of the run, refreshing its TTL. Copying keeps
// concurrent readers away from the worker still mutating the original.
func (s *MemoryRunStore) Save(_ context.Context, run *models.TimetableRun) error {
	snapshot := *run
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[run.ID] = storedRun{run: &snapshot, savedAt: time.Now()}
	s.prune()
	return nil
}

// Get returns a run by ID.
func (s *MemoryRunStore) Get(_ context.Context, id string) (*models.TimetableRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok || time.Since(item.savedAt) > s.ttl {
		return nil, ErrRunNotFound
	}
	snapshot := *item.run
	return &snapshot, nil
}

func (s *MemoryRunStore) prune() {
	for id, item := range s.items {
		if time.Since(item.savedAt) > s.ttl {
			delete(s.items, id)
		}
	}
}

// RedisRunStore keeps runs in Redis so they survive restarts and are shared
// across replicas.
type RedisRunStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRunStore builds a Redis-backed run store.
func NewRedisRunStore(client *redis.Client, ttl time.Duration) *RedisRunStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisRunStore{client: client, ttl: ttl}
}

func runKey(id string) string {
	return "timetable:run:" + id
}

// Save stores the run as JSON with the configured TTL.
func (s *RedisRunStore) Save(ctx context.Context, run *models.TimetableRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", run.ID, err)
	}
	if err := s.client.Set(ctx, runKey(run.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store run %s: %w", run.ID, err)
	}
	return nil
}

// Get returns a run by ID.
func (s *RedisRunStore) Get(ctx context.Context, id string) (*models.TimetableRun, error) {
	payload, err := s.client.Get(ctx, runKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	var run models.TimetableRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &run, nil
}
