package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kmathys/orgcanvas/pkg/chart"
)

// MongoConfig holds MongoDB connection parameters.
type MongoConfig struct {
	URI        string // mongodb://... connection string
	Database   string // defaults to "orgcanvas"
	Collection string // defaults to "charts"
}

// mongoDoc is the stored document shape. The chart name is the document ID,
// so saves are idempotent upserts.
type mongoDoc struct {
	Name      string      `bson:"_id"`
	Chart     chart.Chart `bson:"chart"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

// MongoStore is a MongoDB-backed store for durable server deployments.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "orgcanvas"
	}
	if cfg.Collection == "" {
		cfg.Collection = "charts"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, c chart.Chart) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	doc := mongoDoc{Name: name, Chart: c, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save chart %s: %w", name, err)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, name string) (chart.Chart, error) {
	if err := ValidateName(name); err != nil {
		return chart.Chart{}, err
	}
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return chart.Chart{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return chart.Chart{}, fmt.Errorf("load chart %s: %w", name, err)
	}
	return doc.Chart, nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode chart name: %w", err)
		}
		names = append(names, doc.Name)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("delete chart %s: %w", name, err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
