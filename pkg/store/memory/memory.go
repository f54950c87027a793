// Package memory provides an in-process store.Store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/store"
)

// Store keeps patterns and shards in maps guarded by a RWMutex.
type Store struct {
	mu       sync.RWMutex
	patterns map[string]mosaic.WorkingSet
	shards   map[string][]store.Record
	now      func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		patterns: make(map[string]mosaic.WorkingSet),
		shards:   make(map[string][]store.Record),
		now:      time.Now,
	}
}

func (s *Store) GetPattern(_ context.Context, userID string) (mosaic.WorkingSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.patterns[userID]
	if !ok {
		return mosaic.WorkingSet{}, store.ErrPatternNotFound(userID)
	}
	return ws.Clone(), nil
}

func (s *Store) CreatePattern(_ context.Context, userID string, ws mosaic.WorkingSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[userID] = ws.Clone()
	return nil
}

func (s *Store) UpdatePattern(_ context.Context, userID string, ws mosaic.WorkingSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patterns[userID]; !ok {
		return store.ErrPatternNotFound(userID)
	}
	s.patterns[userID] = ws.Clone()
	return nil
}

func (s *Store) DeletePattern(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patterns[userID]; !ok {
		return store.ErrPatternNotFound(userID)
	}
	delete(s.patterns, userID)
	return nil
}

func (s *Store) ListShards(_ context.Context, userID string) ([]shard.Shard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.shards[userID]
	out := make([]shard.Shard, len(recs))
	for i, r := range recs {
		out[i] = r.Shard
	}
	return out, nil
}

func (s *Store) GetShard(_ context.Context, userID, id string) (shard.Shard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.find(userID, id)
	if i < 0 {
		return shard.Shard{}, store.ErrShardNotFound(id)
	}
	return s.shards[userID][i].Shard, nil
}

func (s *Store) CreateShard(_ context.Context, userID string, d shard.Draft) (shard.Shard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := store.NewRecord(userID, d, s.now())
	s.shards[userID] = append(s.shards[userID], rec)
	return rec.Shard, nil
}

func (s *Store) UpdateShard(_ context.Context, userID, id string, d shard.Draft) (shard.Shard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(userID, id)
	if i < 0 {
		return shard.Shard{}, store.ErrShardNotFound(id)
	}
	rec := &s.shards[userID][i]
	rec.Shard = d.Apply(rec.Shard)
	return rec.Shard, nil
}

func (s *Store) DeleteShard(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(userID, id)
	if i < 0 {
		return store.ErrShardNotFound(id)
	}
	recs := s.shards[userID]
	s.shards[userID] = append(recs[:i:i], recs[i+1:]...)
	return nil
}

func (s *Store) TarnishShard(_ context.Context, userID, id string) (shard.Shard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(userID, id)
	if i < 0 {
		return shard.Shard{}, store.ErrShardNotFound(id)
	}
	rec := &s.shards[userID][i]
	rec.Tarnished = true
	return rec.Shard, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) find(userID, id string) int {
	for i, r := range s.shards[userID] {
		if r.ID == id {
			return i
		}
	}
	return -1
}

var _ store.Store = (*Store)(nil)
