package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability"
)

// DefaultCollection holds ranking records.
const DefaultCollection = "rankings"

// MongoStore keeps records in a MongoDB collection indexed by
// (group, created_at desc).
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, selects database, and ensures the lookup
// index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s := &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultCollection),
	}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "group", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Save inserts rec.
func (s *MongoStore) Save(ctx context.Context, rec *Record) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnSave(ctx, "mongo", rec.Group, time.Since(start), err) }()

	if err := prepare(rec); err != nil {
		return err
	}
	_, err = s.coll.InsertOne(ctx, rec)
	return err
}

// Latest returns the newest record for group.
func (s *MongoStore) Latest(ctx context.Context, group string) (rec *Record, err error) {
	start := time.Now()
	defer func() { observability.Store().OnLoad(ctx, "mongo", group, time.Since(start), err) }()

	if err := errors.ValidateGroupName(group); err != nil {
		return nil, err
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	var out Record
	err = s.coll.FindOne(ctx, bson.M{"group": group}, opts).Decode(&out)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(group)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns records for group, newest first.
func (s *MongoStore) List(ctx context.Context, group string, limit int) (recs []*Record, err error) {
	start := time.Now()
	defer func() { observability.Store().OnLoad(ctx, "mongo", group, time.Since(start), err) }()

	if err := errors.ValidateGroupName(group); err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.M{"group": group}, opts)
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Ping checks connectivity; the server's health endpoint uses it.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
