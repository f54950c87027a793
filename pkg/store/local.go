package store

import (
	"context"

	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
)

// Local binds a Store to one user so it can back the interaction machine
// directly, without going through the HTTP server. It applies the same
// checks as the server.
type Local struct {
	store  Store
	userID string
	limits Limits
}

// NewLocal returns a backend for userID.
func NewLocal(s Store, userID string, l Limits) *Local {
	return &Local{store: s, userID: userID, limits: l}
}

// UserID returns the bound user.
func (l *Local) UserID() string { return l.userID }

func (l *Local) GetPoints(ctx context.Context) (mosaic.WorkingSet, error) {
	return l.store.GetPattern(ctx, l.userID)
}

func (l *Local) CreatePoints(ctx context.Context, ws mosaic.WorkingSet) error {
	ws, err := l.limits.CheckPattern(ws)
	if err != nil {
		return err
	}
	return l.store.CreatePattern(ctx, l.userID, ws)
}

func (l *Local) UpdatePoints(ctx context.Context, ws mosaic.WorkingSet) error {
	ws, err := l.limits.CheckPattern(ws)
	if err != nil {
		return err
	}
	return l.store.UpdatePattern(ctx, l.userID, ws)
}

func (l *Local) ListShards(ctx context.Context) ([]shard.Shard, error) {
	return l.store.ListShards(ctx, l.userID)
}

func (l *Local) CreateShard(ctx context.Context, d shard.Draft) ([]shard.Shard, error) {
	d, err := l.limits.CheckDraft(d)
	if err != nil {
		return nil, err
	}
	if _, err := l.store.CreateShard(ctx, l.userID, d); err != nil {
		return nil, err
	}
	return l.store.ListShards(ctx, l.userID)
}

func (l *Local) UpdateShard(ctx context.Context, id string, d shard.Draft) ([]shard.Shard, error) {
	d, err := l.limits.CheckDraft(d)
	if err != nil {
		return nil, err
	}
	if _, err := l.store.UpdateShard(ctx, l.userID, id, d); err != nil {
		return nil, err
	}
	return l.store.ListShards(ctx, l.userID)
}

func (l *Local) DeleteShard(ctx context.Context, id string) ([]shard.Shard, error) {
	if err := l.store.DeleteShard(ctx, l.userID, id); err != nil {
		return nil, err
	}
	return l.store.ListShards(ctx, l.userID)
}
