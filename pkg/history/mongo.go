package history

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "podfeed"

const mongoCollection = "creation_dates"

type dateDocument struct {
	Name      string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoStore keeps the index in a MongoDB collection, one document per pod.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and verifies the connection.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "ping mongodb")
	}
	return NewMongoStore(client, database), nil
}

// NewMongoStore wraps an existing client.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}
}

// Load reads every document.
func (s *MongoStore) Load(ctx context.Context) (Index, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "query creation dates")
	}
	defer cur.Close(ctx)

	ix := Index{}
	for cur.Next(ctx) {
		var doc dateDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode creation date")
		}
		ix[doc.Name] = doc.CreatedAt.UTC()
	}
	if err := cur.Err(); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "read creation dates")
	}
	return ix, nil
}

// Save upserts every entry with one unordered bulk write.
func (s *MongoStore) Save(ctx context.Context, ix Index) error {
	if len(ix) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(ix))
	for _, name := range ix.Names() {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": name}).
			SetReplacement(dateDocument{Name: name, CreatedAt: ix[name].UTC()}).
			SetUpsert(true))
	}
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return perrors.Wrap(perrors.ErrCodeNetwork, err, "store creation dates")
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
