package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/lanechart/pkg/errors"
)

// DefaultCollection is the collection MongoStore uses.
const DefaultCollection = "charts"

// mongoDoc is the stored shape. The chart body is kept as its JSON encoding
// so documents round-trip byte for byte with the other backends.
type mongoDoc struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	Lanes     int       `bson:"lanes"`
	Links     int       `bson:"links"`
	Chart     string    `bson:"chart"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore stores charts in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// NewMongoStore connects to uri and uses the charts collection of database
// db. The connection is verified with a ping.
func NewMongoStore(ctx context.Context, uri, db string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}
	s := NewMongoStoreFromClient(client, db)
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client. Close does not
// disconnect a client it did not create.
func NewMongoStoreFromClient(client *mongo.Client, db string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(db).Collection(DefaultCollection),
	}
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Document, error) {
	var d mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "find chart %s", id)
	}
	c, err := decode(id, []byte(d.Chart))
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Chart: c, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}, nil
}

func (s *MongoStore) Put(ctx context.Context, doc *Document) (*Document, error) {
	id, err := prepare(doc)
	if err != nil {
		return nil, err
	}
	body, err := encode(id, doc.Chart)
	if err != nil {
		return nil, err
	}

	t := now().Truncate(time.Millisecond)
	meta := summarize(id, doc.Chart, t, t)
	update := bson.M{
		"$set": bson.M{
			"title":      meta.Title,
			"lanes":      meta.Lanes,
			"links":      meta.Links,
			"chart":      string(body),
			"updated_at": t,
		},
		"$setOnInsert": bson.M{"created_at": t},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var d mongoDoc
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "upsert chart %s", id)
	}
	c, err := decode(id, []byte(d.Chart))
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Chart: c, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete chart %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetProjection(bson.M{"chart": 0}).
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list charts")
	}
	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list charts")
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
