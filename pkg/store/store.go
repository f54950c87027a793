// Package store persists users' point patterns and shards.
//
// The [Store] interface is implemented by several backends:
//   - memory: in-process maps for tests and the standalone editor
//   - redis: hashes per user, for multi-instance servers
//   - mongo: the voronoi_patterns and shards collections
//
// Every operation is scoped to a user ID. A shard that exists but belongs to
// another user is reported exactly like a missing one.
//
// # Usage
//
//	st := memory.New()
//	defer st.Close()
//
//	backend := store.NewLocal(st, store.UserID("ada"), store.DefaultLimits())
//	m := interact.New(backend, host, interact.DefaultConfig())
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
)

// Store is the persistence interface shared by all backends.
type Store interface {
	// GetPattern returns the user's working set or a PATTERN_NOT_FOUND error.
	GetPattern(ctx context.Context, userID string) (mosaic.WorkingSet, error)
	// CreatePattern stores the working set, replacing any existing one.
	CreatePattern(ctx context.Context, userID string, ws mosaic.WorkingSet) error
	// UpdatePattern replaces an existing working set.
	UpdatePattern(ctx context.Context, userID string, ws mosaic.WorkingSet) error
	// DeletePattern removes the working set.
	DeletePattern(ctx context.Context, userID string) error

	// ListShards returns the user's shards in creation order.
	ListShards(ctx context.Context, userID string) ([]shard.Shard, error)
	GetShard(ctx context.Context, userID, id string) (shard.Shard, error)
	CreateShard(ctx context.Context, userID string, d shard.Draft) (shard.Shard, error)
	// UpdateShard changes spark, text, tint and glow. The origin point is kept.
	UpdateShard(ctx context.Context, userID, id string, d shard.Draft) (shard.Shard, error)
	DeleteShard(ctx context.Context, userID, id string) error
	// TarnishShard flags a shard as tarnished.
	TarnishShard(ctx context.Context, userID, id string) (shard.Shard, error)

	Close() error
}

// Record is the stored form of a shard.
type Record struct {
	shard.Shard `bson:",inline"`
	UserID      string    `json:"user_id" bson:"user_id"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// NewRecord builds the record for a new shard with a fresh ID.
func NewRecord(userID string, d shard.Draft, now time.Time) Record {
	return Record{Shard: d.New(NewID()), UserID: userID, CreatedAt: now}
}

// NewID returns a new random shard ID.
func NewID() string { return uuid.NewString() }

var userNamespace = uuid.MustParse("6f1a3c0e-8f0b-4b59-9d8e-6a3a2f6c1e77")

// UserID derives a stable user ID from a login name.
func UserID(username string) string {
	return uuid.NewSHA1(userNamespace, []byte(username)).String()
}

// ErrPatternNotFound returns the error reported for a missing pattern.
func ErrPatternNotFound(userID string) error {
	return errors.New(errors.ErrCodePatternNotFound, "no pattern stored for user %s", userID)
}

// ErrShardNotFound returns the error reported for a missing or foreign shard.
func ErrShardNotFound(id string) error {
	return errors.New(errors.ErrCodeShardNotFound, "shard %s not found", id)
}
