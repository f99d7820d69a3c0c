package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const duplicateKeyCode = 11000

// mongoEntry is the stored document; Data is decoded so it is queryable as BSON.
type mongoEntry struct {
	ID         string    `bson:"_id"`
	DateCreate time.Time `bson:"date_create"`
	Action     string    `bson:"action,omitempty"`
	ActorType  string    `bson:"actor_type,omitempty"`
	ActorID    string    `bson:"actor_id,omitempty"`
	EntityType string    `bson:"entity_type,omitempty"`
	EntityID   string    `bson:"entity_id,omitempty"`
	ArchivedAt time.Time `bson:"archived_at"`
	Data       any       `bson:"data,omitempty"`
}

// MongoDBStore implements EntryStore for MongoDB.
type MongoDBStore struct {
	collection *mongo.Collection
}

// NewMongoDBStore creates the audit_entries collection indexes if needed.
func NewMongoDBStore(ctx context.Context, database *mongo.Database) (*MongoDBStore, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	collection := database.Collection("audit_entries")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date_create", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}}},
		{Keys: bson.D{{Key: "entity_id", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		slog.Warn("failed to create some MongoDB indexes", "error", err)
	}

	return &MongoDBStore{collection: collection}, nil
}

// WriteBatch inserts entries unordered; duplicates of already archived ids are ignored.
func (s *MongoDBStore) WriteBatch(ctx context.Context, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]any, len(entries))
	for i, e := range entries {
		doc := mongoEntry{
			ID:         e.ID,
			DateCreate: e.DateCreate,
			Action:     e.Action,
			ActorType:  e.ActorType,
			ActorID:    e.ActorID,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			ArchivedAt: e.ArchivedAt,
		}
		if len(e.Data) > 0 {
			var parsed any
			if err := json.Unmarshal(e.Data, &parsed); err == nil {
				doc.Data = parsed
			} else {
				doc.Data = string(e.Data)
			}
		}
		docs[i] = doc
	}

	_, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return nil
	}

	var bulkErr mongo.BulkWriteException
	if errors.As(err, &bulkErr) && bulkErr.WriteConcernError == nil {
		failed := 0
		for _, we := range bulkErr.WriteErrors {
			if we.Code != duplicateKeyCode {
				failed++
			}
		}
		if failed == 0 {
			return nil
		}
		return fmt.Errorf("failed to insert %d of %d audit entries: %w", failed, len(entries), err)
	}
	return fmt.Errorf("failed to insert audit entries: %w", err)
}

// Prune deletes entries created before cutoff.
func (s *MongoDBStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.D{{Key: "date_create", Value: bson.D{{Key: "$lt", Value: cutoff}}}})
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	return result.DeletedCount, nil
}

// Close is a no-op; the client is owned by the storage layer.
func (s *MongoDBStore) Close() error {
	return nil
}
