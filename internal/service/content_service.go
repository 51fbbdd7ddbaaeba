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

// ContentService manages the content items belonging to a story. It enforces
// the owning story's terminal-deletion invariant; ownership of the story
// itself is the StoryService's concern.
type ContentService struct {
	store  store.EntityStore
	logger *zap.Logger
}

// NewContentService creates a ContentService on top of the given store.
func NewContentService(entityStore store.EntityStore, logger *zap.Logger) *ContentService {
	return &ContentService{
		store:  entityStore,
		logger: logger.Named("ContentService"),
	}
}

// CreateContent inserts one content item per details value, tied to the
// story. Output order matches input order. Items are inserted independently:
// a failure partway through leaves the earlier items persisted, and the
// caller sees exactly the items that made it.
func (s *ContentService) CreateContent(ctx context.Context, storyID int64, details []models.ContentDetails) ([]models.Content, error) {
	created := make([]models.Content, 0, len(details))
	for _, d := range details {
		if err := d.Validate(); err != nil {
			return created, err
		}
		now := time.Now().UTC()
		item := models.Content{
			StoryID:   storyID,
			UUID:      uuid.New(),
			Details:   d,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.store.Insert(ctx, store.KindContent, &item); err != nil {
			s.logger.Error("Failed to insert content item",
				zap.Int64("storyID", storyID), zap.Int("inserted", len(created)), zap.Error(err))
			return created, err
		}
		created = append(created, item)
	}
	return created, nil
}

// ListForStory returns every content item whose story_id references the
// story, in storage order.
func (s *ContentService) ListForStory(ctx context.Context, storyID int64) ([]models.Content, error) {
	entities, err := s.store.ListByForeignKey(ctx, store.KindContent, "story_id", storyID)
	if err != nil {
		return nil, err
	}
	items := make([]models.Content, 0, len(entities))
	for _, e := range entities {
		item, ok := e.(*models.Content)
		if !ok {
			return nil, fmt.Errorf("%w: store returned %T for content", models.ErrInternal, e)
		}
		items = append(items, *item)
	}
	return items, nil
}

// UpdateContent applies a batch of full-details replacements against the
// story's content. The story's deleted flag is checked once, before any item
// is touched. Each update fetches the existing item by UUID, swaps in the
// new details, bumps updated_at, and persists; a NotFound halts the batch
// immediately, with already-applied updates left in place. Returns the
// story's full resulting content set, re-listed after all updates land.
func (s *ContentService) UpdateContent(ctx context.Context, story *models.Story, updates []api.UpdateContentRequest) ([]models.Content, error) {
	if story.Deleted {
		return nil, models.ErrStoryDeleted
	}

	for _, u := range updates {
		if err := u.Details.Validate(); err != nil {
			return nil, err
		}
		entity, err := s.store.GetByUUID(ctx, store.KindContent, u.UUID)
		if err != nil {
			return nil, err
		}
		item, ok := entity.(*models.Content)
		if !ok {
			return nil, fmt.Errorf("%w: store returned %T for content", models.ErrInternal, entity)
		}

		item.Details = u.Details
		item.UpdatedAt = time.Now().UTC()
		if err := s.store.ReplaceByUUID(ctx, store.KindContent, item.UUID, item); err != nil {
			return nil, err
		}
	}

	return s.ListForStory(ctx, story.ID)
}
