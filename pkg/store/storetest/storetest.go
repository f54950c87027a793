// Package storetest holds a conformance suite shared by all store.Store
// backends.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/store"
)

// Run exercises a backend. newStore must return an empty store; each
// subtest gets its own instance and user IDs.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("PatternNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetPattern(context.Background(), user(t, "a"))
		assert.True(t, errors.Is(err, errors.ErrCodePatternNotFound), "got %v", err)
	})

	t.Run("PatternRoundTrip", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		u := user(t, "a")
		ws := mosaic.WorkingSet{
			Points:   []geom.Point{{X: 0.25, Y: -0.5}, {X: -1, Y: 1}},
			Rotation: 3,
		}

		require.NoError(t, s.CreatePattern(ctx, u, ws))
		got, err := s.GetPattern(ctx, u)
		require.NoError(t, err)
		assert.True(t, ws.Equal(got), "got %+v", got)

		ws.Points = append(ws.Points, geom.Pt(0.1, 0.1))
		ws.Rotation = 0
		require.NoError(t, s.UpdatePattern(ctx, u, ws))
		got, err = s.GetPattern(ctx, u)
		require.NoError(t, err)
		assert.True(t, ws.Equal(got), "got %+v", got)

		require.NoError(t, s.DeletePattern(ctx, u))
		_, err = s.GetPattern(ctx, u)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("UpdateMissingPattern", func(t *testing.T) {
		s := newStore(t)
		err := s.UpdatePattern(context.Background(), user(t, "a"), mosaic.DefaultWorkingSet())
		assert.True(t, errors.Is(err, errors.ErrCodePatternNotFound), "got %v", err)
	})

	t.Run("CreatePatternReplaces", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		u := user(t, "a")
		require.NoError(t, s.CreatePattern(ctx, u, mosaic.DefaultWorkingSet()))
		ws := mosaic.WorkingSet{Points: []geom.Point{{X: 0.5}}, Rotation: 1}
		require.NoError(t, s.CreatePattern(ctx, u, ws))
		got, err := s.GetPattern(ctx, u)
		require.NoError(t, err)
		assert.True(t, ws.Equal(got))
	})

	t.Run("ShardLifecycle", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		u := user(t, "a")

		list, err := s.ListShards(ctx, u)
		require.NoError(t, err)
		assert.Empty(t, list)

		first, err := s.CreateShard(ctx, u, shard.Draft{Spark: "one", Text: "first", Tint: 1, Point: 0})
		require.NoError(t, err)
		require.NotEmpty(t, first.ID)
		second, err := s.CreateShard(ctx, u, shard.Draft{Spark: "two", Text: "second", Tint: 2, Glow: 1, Point: 3})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		list, err = s.ListShards(ctx, u)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)

		updated, err := s.UpdateShard(ctx, u, first.ID, shard.Draft{Spark: "one", Text: "edited", Tint: 5, Glow: 1, Point: 9})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Text)
		assert.Equal(t, 5, updated.Tint)
		assert.Equal(t, 0, updated.Point, "update must keep the origin point")

		got, err := s.GetShard(ctx, u, first.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)

		tarnished, err := s.TarnishShard(ctx, u, second.ID)
		require.NoError(t, err)
		assert.True(t, tarnished.Tarnished)

		require.NoError(t, s.DeleteShard(ctx, u, first.ID))
		list, err = s.ListShards(ctx, u)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, second.ID, list[0].ID)
		assert.True(t, list[0].Tarnished)
	})

	t.Run("ShardOwnership", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		owner, other := user(t, "owner"), user(t, "other")

		sh, err := s.CreateShard(ctx, owner, shard.Draft{Spark: "x", Text: "mine"})
		require.NoError(t, err)

		_, err = s.GetShard(ctx, other, sh.ID)
		assert.True(t, errors.Is(err, errors.ErrCodeShardNotFound), "get: %v", err)
		_, err = s.UpdateShard(ctx, other, sh.ID, shard.Draft{Text: "theirs"})
		assert.True(t, errors.Is(err, errors.ErrCodeShardNotFound), "update: %v", err)
		err = s.DeleteShard(ctx, other, sh.ID)
		assert.True(t, errors.Is(err, errors.ErrCodeShardNotFound), "delete: %v", err)
		_, err = s.TarnishShard(ctx, other, sh.ID)
		assert.True(t, errors.Is(err, errors.ErrCodeShardNotFound), "tarnish: %v", err)

		list, err := s.ListShards(ctx, other)
		require.NoError(t, err)
		assert.Empty(t, list)

		got, err := s.GetShard(ctx, owner, sh.ID)
		require.NoError(t, err)
		assert.Equal(t, "mine", got.Text)
	})

	t.Run("MissingShard", func(t *testing.T) {
		s := newStore(t)
		err := s.DeleteShard(context.Background(), user(t, "a"), "nope")
		assert.True(t, errors.IsNotFound(err), "got %v", err)
	})
}

// user scopes a user ID to the running test so backends that share a
// server across subtests never see each other's data.
func user(t *testing.T, name string) string {
	return store.UserID(t.Name() + "/" + name)
}
