package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/city-traffic/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccidentsCollection is the collection the accident journal writes to.
const AccidentsCollection = "accidents"

// ConnectMongo connects to MongoDB at uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoCollection wraps a MongoDB collection for accident records.
type MongoCollection struct {
	Collection *mongo.Collection
}

// NewAccidentCollection returns the accident collection of database name.
func NewAccidentCollection(client *mongo.Client, name string) *MongoCollection {
	return &MongoCollection{Collection: client.Database(name).Collection(AccidentsCollection)}
}

// recentOrder is the sort of RecentAccidents, newest first.
var recentOrder = bson.E{Key: "created_at", Value: -1}

// accidentIndexes serve RecentAccidents for a single run and across runs.
func accidentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "run_id", Value: 1}, recentOrder}},
		{Keys: bson.D{recentOrder}},
	}
}

// EnsureIndexes creates the indexes the history queries rely on.
func (c *MongoCollection) EnsureIndexes(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.Indexes().CreateMany(ctx, accidentIndexes())
	if err != nil {
		return fmt.Errorf("failed to create accident index: %w", err)
	}
	return nil
}

// StoreAccident inserts an accident record into the collection.
func (c *MongoCollection) StoreAccident(ctx context.Context, rec models.AccidentRecord) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := c.Collection.InsertOne(ctx, rec)
	return err
}

// mongoAccidentCursor wraps a MongoDB cursor for accident queries.
type mongoAccidentCursor struct {
	cursor *mongo.Cursor
}

// All retrieves all results from the cursor.
func (m *mongoAccidentCursor) All(ctx context.Context, out interface{}) error {
	return m.cursor.All(ctx, out)
}

func (m *mongoAccidentCursor) Close(ctx context.Context) error {
	return m.cursor.Close(ctx)
}

// FindAccidents queries accident records from the collection.
func (c *MongoCollection) FindAccidents(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (AccidentCursor, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoAccidentCursor{cursor: cursor}, nil
}

// RecentAccidents returns the latest limit accidents of a run, newest first.
// An empty runID matches every run.
func RecentAccidents(ctx context.Context, coll AccidentCollection, runID string, limit int64) ([]models.AccidentRecord, error) {
	filter := bson.M{}
	if runID != "" {
		filter["run_id"] = runID
	}
	opts := options.Find().SetSort(bson.D{recentOrder}).SetLimit(limit)

	cursor, err := coll.FindAccidents(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query accidents: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.AccidentRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode accidents: %w", err)
	}
	return records, nil
}

// DeleteAll deletes all accident records from the collection.
func (c *MongoCollection) DeleteAll(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}
