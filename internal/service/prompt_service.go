package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memory-server/internal/api"
	"memory-server/internal/models"
	"memory-server/internal/store"
)

// PromptService serves the writing prompts offered when starting a story.
type PromptService struct {
	store  store.EntityStore
	logger *zap.Logger
}

// NewPromptService creates a PromptService.
func NewPromptService(entityStore store.EntityStore, logger *zap.Logger) *PromptService {
	return &PromptService{
		store:  entityStore,
		logger: logger.Named("PromptService"),
	}
}

// ListPrompts returns every prompt.
func (s *PromptService) ListPrompts(ctx context.Context) ([]api.Prompt, error) {
	entities, err := s.store.ListAll(ctx, store.KindPrompts)
	if err != nil {
		return nil, err
	}
	prompts := make([]api.Prompt, 0, len(entities))
	for _, e := range entities {
		prompt, ok := e.(*models.Prompt)
		if !ok {
			return nil, fmt.Errorf("%w: store returned %T for prompt", models.ErrInternal, e)
		}
		prompts = append(prompts, api.NewPrompt(*prompt))
	}
	return prompts, nil
}

// CreatePrompt inserts a new prompt. Used by seeding and admin tooling.
func (s *PromptService) CreatePrompt(ctx context.Context, name, description string) (models.Prompt, error) {
	now := time.Now().UTC()
	prompt := models.Prompt{
		UUID:        uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.store.Insert(ctx, store.KindPrompts, &prompt); err != nil {
		return models.Prompt{}, err
	}
	s.logger.Info("Prompt created", zap.String("name", name))
	return prompt, nil
}
