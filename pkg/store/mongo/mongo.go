// Package mongo provides a store.Store backed by MongoDB.
//
// Patterns live in the voronoi_patterns collection, one document per user
// with the points kept as a JSON string. Shards live in the shards
// collection and are listed by creation time.
package mongo

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/store"
)

// Collection names.
const (
	PatternsCollection = "voronoi_patterns"
	ShardsCollection   = "shards"
)

type patternDoc struct {
	UserID        string    `bson:"user_id"`
	Points        string    `bson:"points"`
	RotationCount int       `bson:"rotation_count"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

// Store persists patterns and shards in two collections.
type Store struct {
	client   *mongo.Client
	patterns *mongo.Collection
	shards   *mongo.Collection
	now      func() time.Time
}

// Connect opens a client for uri, pings it and prepares the indexes in the
// named database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	s := New(client, database)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New uses an already connected client.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:   client,
		patterns: db.Collection(PatternsCollection),
		shards:   db.Collection(ShardsCollection),
		now:      time.Now,
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.patterns.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return wrap(err, "create pattern index")
	}
	_, err = s.shards.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return wrap(err, "create shard index")
}

func (s *Store) GetPattern(ctx context.Context, userID string) (mosaic.WorkingSet, error) {
	var doc patternDoc
	err := s.patterns.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return mosaic.WorkingSet{}, store.ErrPatternNotFound(userID)
	}
	if err != nil {
		return mosaic.WorkingSet{}, wrap(err, "get pattern")
	}
	ws := mosaic.WorkingSet{Rotation: doc.RotationCount}
	if doc.Points != "" {
		if err := json.Unmarshal([]byte(doc.Points), &ws.Points); err != nil {
			return mosaic.WorkingSet{}, errors.Wrap(errors.ErrCodeInternal, err, "decode points")
		}
	}
	return ws, nil
}

func (s *Store) CreatePattern(ctx context.Context, userID string, ws mosaic.WorkingSet) error {
	doc, err := s.patternDoc(userID, ws)
	if err != nil {
		return err
	}
	_, err = s.patterns.ReplaceOne(ctx, bson.M{"user_id": userID}, doc, options.Replace().SetUpsert(true))
	return wrap(err, "create pattern")
}

func (s *Store) UpdatePattern(ctx context.Context, userID string, ws mosaic.WorkingSet) error {
	doc, err := s.patternDoc(userID, ws)
	if err != nil {
		return err
	}
	res, err := s.patterns.ReplaceOne(ctx, bson.M{"user_id": userID}, doc)
	if err != nil {
		return wrap(err, "update pattern")
	}
	if res.MatchedCount == 0 {
		return store.ErrPatternNotFound(userID)
	}
	return nil
}

func (s *Store) DeletePattern(ctx context.Context, userID string) error {
	res, err := s.patterns.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return wrap(err, "delete pattern")
	}
	if res.DeletedCount == 0 {
		return store.ErrPatternNotFound(userID)
	}
	return nil
}

func (s *Store) ListShards(ctx context.Context, userID string) ([]shard.Shard, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.shards.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, wrap(err, "list shards")
	}
	var recs []store.Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, wrap(err, "decode shards")
	}
	out := make([]shard.Shard, len(recs))
	for i, r := range recs {
		out[i] = r.Shard
	}
	return out, nil
}

func (s *Store) GetShard(ctx context.Context, userID, id string) (shard.Shard, error) {
	var rec store.Record
	err := s.shards.FindOne(ctx, shardFilter(userID, id)).Decode(&rec)
	if err != nil {
		return shard.Shard{}, notFound(err, id, "get shard")
	}
	return rec.Shard, nil
}

func (s *Store) CreateShard(ctx context.Context, userID string, d shard.Draft) (shard.Shard, error) {
	// Mongo stores time with millisecond precision; truncate so the
	// returned record matches what a later read yields.
	rec := store.NewRecord(userID, d, s.now().UTC().Truncate(time.Millisecond))
	if _, err := s.shards.InsertOne(ctx, rec); err != nil {
		return shard.Shard{}, wrap(err, "create shard")
	}
	return rec.Shard, nil
}

func (s *Store) UpdateShard(ctx context.Context, userID, id string, d shard.Draft) (shard.Shard, error) {
	return s.findAndSet(ctx, userID, id, bson.M{
		"spark": d.Spark,
		"text":  d.Text,
		"tint":  d.Tint,
		"glow":  d.Glow,
	})
}

func (s *Store) DeleteShard(ctx context.Context, userID, id string) error {
	res, err := s.shards.DeleteOne(ctx, shardFilter(userID, id))
	if err != nil {
		return wrap(err, "delete shard")
	}
	if res.DeletedCount == 0 {
		return store.ErrShardNotFound(id)
	}
	return nil
}

func (s *Store) TarnishShard(ctx context.Context, userID, id string) (shard.Shard, error) {
	return s.findAndSet(ctx, userID, id, bson.M{"tarnished": true})
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) findAndSet(ctx context.Context, userID, id string, set bson.M) (shard.Shard, error) {
	var rec store.Record
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.shards.FindOneAndUpdate(ctx, shardFilter(userID, id), bson.M{"$set": set}, opts).Decode(&rec)
	if err != nil {
		return shard.Shard{}, notFound(err, id, "update shard")
	}
	return rec.Shard, nil
}

func (s *Store) patternDoc(userID string, ws mosaic.WorkingSet) (patternDoc, error) {
	pts := ws.Points
	if pts == nil {
		pts = []geom.Point{}
	}
	raw, err := json.Marshal(pts)
	if err != nil {
		return patternDoc{}, errors.Wrap(errors.ErrCodeInternal, err, "encode points")
	}
	return patternDoc{
		UserID:        userID,
		Points:        string(raw),
		RotationCount: ws.Rotation,
		UpdatedAt:     s.now().UTC(),
	}, nil
}

func shardFilter(userID, id string) bson.M {
	return bson.M{"user_id": userID, "id": id}
}

func notFound(err error, id, op string) error {
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrShardNotFound(id)
	}
	return wrap(err, op)
}

func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "mongo: %s", op)
}

var _ store.Store = (*Store)(nil)
