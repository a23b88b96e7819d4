// Package mongo implements the document store against MongoDB.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lumenapp/server/core"
)

// Store persists users and generated content in two collections.
type Store struct {
	users    *mongo.Collection
	contents *mongo.Collection
}

var _ core.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{
		users:    db.Collection("users"),
		contents: db.Collection("contents"),
	}
}

// EnsureIndexes creates the uniqueness and lookup indexes the store
// relies on. Identifier indexes are sparse so absent values never
// collide.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "federated_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	if _, err := s.users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	contentIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := s.contents.Indexes().CreateMany(ctx, contentIndexes); err != nil {
		return fmt.Errorf("failed to create content indexes: %w", err)
	}
	return nil
}
