package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lumenapp/server/core"
)

type contentDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"user_id"`
	Query     string        `bson:"query"`
	Body      string        `bson:"body"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

func (d *contentDoc) toContent() *core.Content {
	return &core.Content{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Query:     d.Query,
		Body:      d.Body,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *Store) Insert(ctx context.Context, c *core.Content) (*core.Content, error) {
	now := time.Now().UTC()
	doc := &contentDoc{
		ID:        bson.NewObjectID(),
		UserID:    c.UserID,
		Query:     c.Query,
		Body:      c.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.contents.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert content: %w", err)
	}
	return doc.toContent(), nil
}

func (s *Store) FindContentByID(ctx context.Context, id string) (*core.Content, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrNotFound
	}

	var doc contentDoc
	err = s.contents.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find content: %w", err)
	}
	return doc.toContent(), nil
}

func (s *Store) FindContentByUser(ctx context.Context, userID string) ([]*core.Content, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.contents.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*core.Content
	for cursor.Next(ctx) {
		var doc contentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode content: %w", err)
		}
		out = append(out, doc.toContent())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read content cursor: %w", err)
	}
	return out, nil
}
