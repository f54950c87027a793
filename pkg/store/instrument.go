package store

import (
	"context"
	"time"

	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/observability"
	"github.com/matzehuels/reflections/pkg/shard"
)

// Instrumented reports every call of the wrapped store to the registered
// observability.StoreHooks under the given backend name.
type Instrumented struct {
	inner   Store
	backend string
}

// Instrument wraps s.
func Instrument(s Store, backend string) *Instrumented {
	return &Instrumented{inner: s, backend: backend}
}

func (s *Instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnOperation(ctx, s.backend, op, time.Since(start), err)
}

func (s *Instrumented) GetPattern(ctx context.Context, userID string) (mosaic.WorkingSet, error) {
	start := time.Now()
	ws, err := s.inner.GetPattern(ctx, userID)
	s.observe(ctx, "get_pattern", start, err)
	return ws, err
}

func (s *Instrumented) CreatePattern(ctx context.Context, userID string, ws mosaic.WorkingSet) error {
	start := time.Now()
	err := s.inner.CreatePattern(ctx, userID, ws)
	s.observe(ctx, "create_pattern", start, err)
	return err
}

func (s *Instrumented) UpdatePattern(ctx context.Context, userID string, ws mosaic.WorkingSet) error {
	start := time.Now()
	err := s.inner.UpdatePattern(ctx, userID, ws)
	s.observe(ctx, "update_pattern", start, err)
	return err
}

func (s *Instrumented) DeletePattern(ctx context.Context, userID string) error {
	start := time.Now()
	err := s.inner.DeletePattern(ctx, userID)
	s.observe(ctx, "delete_pattern", start, err)
	return err
}

func (s *Instrumented) ListShards(ctx context.Context, userID string) ([]shard.Shard, error) {
	start := time.Now()
	list, err := s.inner.ListShards(ctx, userID)
	s.observe(ctx, "list_shards", start, err)
	return list, err
}

func (s *Instrumented) GetShard(ctx context.Context, userID, id string) (shard.Shard, error) {
	start := time.Now()
	sh, err := s.inner.GetShard(ctx, userID, id)
	s.observe(ctx, "get_shard", start, err)
	return sh, err
}

func (s *Instrumented) CreateShard(ctx context.Context, userID string, d shard.Draft) (shard.Shard, error) {
	start := time.Now()
	sh, err := s.inner.CreateShard(ctx, userID, d)
	s.observe(ctx, "create_shard", start, err)
	return sh, err
}

func (s *Instrumented) UpdateShard(ctx context.Context, userID, id string, d shard.Draft) (shard.Shard, error) {
	start := time.Now()
	sh, err := s.inner.UpdateShard(ctx, userID, id, d)
	s.observe(ctx, "update_shard", start, err)
	return sh, err
}

func (s *Instrumented) DeleteShard(ctx context.Context, userID, id string) error {
	start := time.Now()
	err := s.inner.DeleteShard(ctx, userID, id)
	s.observe(ctx, "delete_shard", start, err)
	return err
}

func (s *Instrumented) TarnishShard(ctx context.Context, userID, id string) (shard.Shard, error) {
	start := time.Now()
	sh, err := s.inner.TarnishShard(ctx, userID, id)
	s.observe(ctx, "tarnish_shard", start, err)
	return sh, err
}

func (s *Instrumented) Close() error { return s.inner.Close() }

var _ Store = (*Instrumented)(nil)
