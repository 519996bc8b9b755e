// Package mongo implements ContentStore (C11) against MongoDB: each
// Element's rendered content lives as one document keyed by its element ID.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docingest/internal/config"
	"docingest/internal/mapper"
	"docingest/internal/port"
)

type contentStore struct {
	collection *mongo.Collection
}

// NewClient connects to MongoDB using the given configuration.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return client, nil
}

// NewContentStore creates a new MongoDB-backed port.ContentStore.
func NewContentStore(client *mongo.Client, cfg config.MongoConfig) port.ContentStore {
	collection := client.Database(cfg.Database).Collection(cfg.Collection)
	return &contentStore{collection: collection}
}

type contentDocument struct {
	ID      string         `bson:"_id"`
	Type    string         `bson:"type"`
	Content map[string]any `bson:"content"`
}

func (s *contentStore) InsertBatch(ctx context.Context, rows []mapper.ContentRow) error {
	if len(rows) == 0 {
		return nil
	}

	docs := make([]interface{}, len(rows))
	for i, row := range rows {
		docs[i] = contentDocument{
			ID:      row.ID,
			Type:    string(row.Type),
			Content: row.Content,
		}
	}

	_, err := s.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("contentStore.InsertBatch: %w", err)
	}
	return nil
}

// DeleteByIDs removes content documents by element ID. It is not part of
// port.ContentStore: per the chosen compensation design, only MetaStore
// rows are rolled back on a partial write, since ContentStore failing is
// what triggers compensation in the first place.
func (s *contentStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("contentStore.DeleteByIDs: %w", err)
	}
	return nil
}
