package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lumenapp/server/core"
)

// ContentService is a thin passthrough to the generative collaborator,
// persisting each exchange for later retrieval.
type ContentService struct {
	store     core.ContentStore
	generator core.Generator // nil when no provider is configured
	log       zerolog.Logger
}

func NewContentService(store core.ContentStore, generator core.Generator, log zerolog.Logger) *ContentService {
	return &ContentService{store: store, generator: generator, log: log}
}

// Generate produces text for the prompt and stores the exchange under the
// requesting user.
func (s *ContentService) Generate(ctx context.Context, userID, query string) (*core.Content, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, core.ErrQueryRequired
	}
	if s.generator == nil {
		return nil, core.ErrContentDisabled
	}

	body, err := s.generator.Generate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	content, err := s.store.Insert(ctx, &core.Content{
		UserID: userID,
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}

	s.log.Debug().Str("user_id", userID).Str("content_id", content.ID).Msg("content generated")

	return content, nil
}

// GetByID returns a single stored exchange.
func (s *ContentService) GetByID(ctx context.Context, id string) (*core.Content, error) {
	return s.store.FindContentByID(ctx, id)
}

// ListByUser returns a user's exchanges, newest first.
func (s *ContentService) ListByUser(ctx context.Context, userID string) ([]*core.Content, error) {
	return s.store.FindContentByUser(ctx, userID)
}
