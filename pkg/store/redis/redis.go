// Package redis provides a store.Store on top of Redis.
//
// Each user owns two hashes:
//
//	<prefix>pattern:<user>  fields rotation_count and points (JSON [[x,y],...])
//	<prefix>shards:<user>   shard ID -> JSON record
package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/store"
)

// DefaultPrefix namespaces all keys written by the store.
const DefaultPrefix = "reflections:"

const (
	fieldRotation = "rotation_count"
	fieldPoints   = "points"
)

// Store persists patterns and shards in Redis hashes.
type Store struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(p string) Option {
	return func(s *Store) { s.prefix = p }
}

// New wraps an existing client. The store does not own the client unless
// Close is called.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to the Redis server at url (redis://host:port/db) and
// checks the connection.
func Dial(ctx context.Context, url string, opts ...Option) (*Store, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse redis url")
	}
	client := redis.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis")
	}
	return New(client, opts...), nil
}

func (s *Store) patternKey(userID string) string { return s.prefix + "pattern:" + userID }
func (s *Store) shardsKey(userID string) string  { return s.prefix + "shards:" + userID }

func (s *Store) GetPattern(ctx context.Context, userID string) (mosaic.WorkingSet, error) {
	fields, err := s.client.HGetAll(ctx, s.patternKey(userID)).Result()
	if err != nil {
		return mosaic.WorkingSet{}, wrap(err, "get pattern")
	}
	if len(fields) == 0 {
		return mosaic.WorkingSet{}, store.ErrPatternNotFound(userID)
	}
	return decodePattern(fields)
}

func (s *Store) CreatePattern(ctx context.Context, userID string, ws mosaic.WorkingSet) error {
	values, err := encodePattern(ws)
	if err != nil {
		return err
	}
	return wrap(s.client.HSet(ctx, s.patternKey(userID), values).Err(), "create pattern")
}

func (s *Store) UpdatePattern(ctx context.Context, userID string, ws mosaic.WorkingSet) error {
	key := s.patternKey(userID)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return wrap(err, "update pattern")
	}
	if n == 0 {
		return store.ErrPatternNotFound(userID)
	}
	values, err := encodePattern(ws)
	if err != nil {
		return err
	}
	return wrap(s.client.HSet(ctx, key, values).Err(), "update pattern")
}

func (s *Store) DeletePattern(ctx context.Context, userID string) error {
	n, err := s.client.Del(ctx, s.patternKey(userID)).Result()
	if err != nil {
		return wrap(err, "delete pattern")
	}
	if n == 0 {
		return store.ErrPatternNotFound(userID)
	}
	return nil
}

func (s *Store) ListShards(ctx context.Context, userID string) ([]shard.Shard, error) {
	vals, err := s.client.HVals(ctx, s.shardsKey(userID)).Result()
	if err != nil {
		return nil, wrap(err, "list shards")
	}
	recs := make([]store.Record, 0, len(vals))
	for _, v := range vals {
		var rec store.Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode shard")
		}
		recs = append(recs, rec)
	}
	slices.SortStableFunc(recs, func(a, b store.Record) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	out := make([]shard.Shard, len(recs))
	for i, r := range recs {
		out[i] = r.Shard
	}
	return out, nil
}

func (s *Store) GetShard(ctx context.Context, userID, id string) (shard.Shard, error) {
	rec, err := s.getRecord(ctx, userID, id)
	if err != nil {
		return shard.Shard{}, err
	}
	return rec.Shard, nil
}

func (s *Store) CreateShard(ctx context.Context, userID string, d shard.Draft) (shard.Shard, error) {
	rec := store.NewRecord(userID, d, s.now())
	if err := s.putRecord(ctx, rec); err != nil {
		return shard.Shard{}, err
	}
	return rec.Shard, nil
}

func (s *Store) UpdateShard(ctx context.Context, userID, id string, d shard.Draft) (shard.Shard, error) {
	rec, err := s.getRecord(ctx, userID, id)
	if err != nil {
		return shard.Shard{}, err
	}
	rec.Shard = d.Apply(rec.Shard)
	if err := s.putRecord(ctx, rec); err != nil {
		return shard.Shard{}, err
	}
	return rec.Shard, nil
}

func (s *Store) DeleteShard(ctx context.Context, userID, id string) error {
	n, err := s.client.HDel(ctx, s.shardsKey(userID), id).Result()
	if err != nil {
		return wrap(err, "delete shard")
	}
	if n == 0 {
		return store.ErrShardNotFound(id)
	}
	return nil
}

func (s *Store) TarnishShard(ctx context.Context, userID, id string) (shard.Shard, error) {
	rec, err := s.getRecord(ctx, userID, id)
	if err != nil {
		return shard.Shard{}, err
	}
	rec.Tarnished = true
	if err := s.putRecord(ctx, rec); err != nil {
		return shard.Shard{}, err
	}
	return rec.Shard, nil
}

// Close closes the underlying client.
func (s *Store) Close() error { return s.client.Close() }

func (s *Store) getRecord(ctx context.Context, userID, id string) (store.Record, error) {
	raw, err := s.client.HGet(ctx, s.shardsKey(userID), id).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return store.Record{}, store.ErrShardNotFound(id)
	}
	if err != nil {
		return store.Record{}, wrap(err, "get shard")
	}
	var rec store.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return store.Record{}, errors.Wrap(errors.ErrCodeInternal, err, "decode shard %s", id)
	}
	return rec, nil
}

func (s *Store) putRecord(ctx context.Context, rec store.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode shard")
	}
	return wrap(s.client.HSet(ctx, s.shardsKey(rec.UserID), rec.ID, raw).Err(), "put shard")
}

func encodePattern(ws mosaic.WorkingSet) (map[string]any, error) {
	pts := ws.Points
	if pts == nil {
		pts = []geom.Point{}
	}
	raw, err := json.Marshal(pts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode points")
	}
	return map[string]any{
		fieldRotation: ws.Rotation,
		fieldPoints:   string(raw),
	}, nil
}

func decodePattern(fields map[string]string) (mosaic.WorkingSet, error) {
	var ws mosaic.WorkingSet
	if v, ok := fields[fieldRotation]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ws, errors.Wrap(errors.ErrCodeInternal, err, "decode rotation count")
		}
		ws.Rotation = n
	}
	if v, ok := fields[fieldPoints]; ok && v != "" {
		if err := json.Unmarshal([]byte(v), &ws.Points); err != nil {
			return ws, errors.Wrap(errors.ErrCodeInternal, err, "decode points")
		}
	}
	return ws, nil
}

func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "redis: %s", op)
}

var _ store.Store = (*Store)(nil)
