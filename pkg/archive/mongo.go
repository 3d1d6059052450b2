package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default Mongo location of the archive.
const (
	DefaultMongoDatabase   = "spacecol"
	DefaultMongoCollection = "runs"
)

// mongoRecord is the stored document. Seeds are kept as int64 bit patterns
// because BSON has no unsigned 64-bit integer.
type mongoRecord struct {
	ID          string    `bson:"_id"`
	CreatedAt   time.Time `bson:"created_at"`
	Source      string    `bson:"source"`
	Seed        int64     `bson:"seed"`
	Nodes       int       `bson:"nodes"`
	Ticks       int       `bson:"ticks"`
	Reason      string    `bson:"reason"`
	OptionsHash string    `bson:"options_hash"`
	Options     []byte    `bson:"options,omitempty"`
	Tree        []byte    `bson:"tree,omitempty"`
}

func toMongo(r Record) mongoRecord {
	return mongoRecord{
		ID:          r.ID,
		CreatedAt:   r.CreatedAt,
		Source:      r.Source,
		Seed:        int64(r.Seed),
		Nodes:       r.Nodes,
		Ticks:       r.Ticks,
		Reason:      r.Reason,
		OptionsHash: r.OptionsHash,
		Options:     r.Options,
		Tree:        r.Tree,
	}
}

func (m mongoRecord) record() Record {
	return Record{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt.UTC(),
		Source:      m.Source,
		Seed:        uint64(m.Seed),
		Nodes:       m.Nodes,
		Ticks:       m.Ticks,
		Reason:      m.Reason,
		OptionsHash: m.OptionsHash,
		Options:     m.Options,
		Tree:        m.Tree,
	}
}

// MongoStore is a Store backed by a MongoDB collection.
type MongoStore struct {
	client *mongo.Client // nil when the collection is borrowed
	coll   *mongo.Collection
}

// OpenMongo connects to uri and uses the default database and collection.
func OpenMongo(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	coll := client.Database(DefaultMongoDatabase).Collection(DefaultMongoCollection)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	}); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("create mongo index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// NewMongoStore uses an existing collection. Close does not disconnect its
// client.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// Save upserts the record by id.
func (s *MongoStore) Save(ctx context.Context, r Record) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, toMongo(r), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

// Get loads a full record.
func (s *MongoStore) Get(ctx context.Context, id string) (Record, error) {
	var m mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return m.record(), nil
}

// List returns record summaries, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(listLimit(limit))).
		SetProjection(bson.M{"options": 0, "tree": 0})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	out := make([]Record, len(docs))
	for i, d := range docs {
		out[i] = d.record()
	}
	return out, nil
}

// Close disconnects the client when the store owns it.
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
