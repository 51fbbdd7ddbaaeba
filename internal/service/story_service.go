package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memory-server/internal/api"
	"memory-server/internal/auth"
	"memory-server/internal/models"
	"memory-server/internal/store"
)

// StoryService orchestrates the story lifecycle on top of an EntityStore.
// It owns the ownership and terminal-deletion invariants; content item
// persistence is delegated to the ContentService.
type StoryService struct {
	store   store.EntityStore
	content *ContentService
	logger  *zap.Logger
}

// NewStoryService creates a StoryService.
func NewStoryService(entityStore store.EntityStore, content *ContentService, logger *zap.Logger) *StoryService {
	return &StoryService{
		store:   entityStore,
		content: content,
		logger:  logger.Named("StoryService"),
	}
}

// CreateStory inserts a new story for the user, then its initial content
// items. The two steps are not transactional: if a content insert fails the
// story already exists, with the content inserted so far, and the error is
// surfaced so callers can detect the partial aggregate.
func (s *StoryService) CreateStory(ctx context.Context, user *auth.VerifiedUser, req api.CreateStoryRequest) (api.Story, error) {
	userID, err := user.ID()
	if err != nil {
		return api.Story{}, err
	}

	now := time.Now().UTC()
	story := models.Story{
		UserID:    userID,
		UUID:      uuid.New(),
		Title:     req.Title,
		Deleted:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.store.Insert(ctx, store.KindStories, &story); err != nil {
		return api.Story{}, err
	}

	content, err := s.content.CreateContent(ctx, story.ID, req.Content)
	if err != nil {
		s.logger.Error("Story created but content insert failed, aggregate is partial",
			zap.String("storyUUID", story.UUID.String()), zap.Int("contentInserted", len(content)), zap.Error(err))
		return api.Story{}, err
	}

	s.logger.Info("Story created",
		zap.String("storyUUID", story.UUID.String()), zap.Int64("userID", userID), zap.Int("contentItems", len(content)))
	return api.NewStory(story, content), nil
}

// GetStory returns the user's story aggregate by UUID. A story owned by a
// different user is reported as not found, so callers cannot probe for the
// existence of other users' stories.
func (s *StoryService) GetStory(ctx context.Context, user *auth.VerifiedUser, storyUUID uuid.UUID) (api.Story, error) {
	story, err := s.getOwnedStory(ctx, user, storyUUID)
	if err != nil {
		return api.Story{}, err
	}
	content, err := s.content.ListForStory(ctx, story.ID)
	if err != nil {
		return api.Story{}, err
	}
	return api.NewStory(*story, content), nil
}

// UpdateStory applies a partial update to the user's story: only the fields
// present in the update are changed, updated_at is bumped, and the record is
// persisted wholesale with every untouched field carried forward. A story
// that is already deleted rejects any further update.
func (s *StoryService) UpdateStory(ctx context.Context, user *auth.VerifiedUser, storyUUID uuid.UUID, req api.UpdateStoryRequest) (models.Story, error) {
	story, err := s.getOwnedStory(ctx, user, storyUUID)
	if err != nil {
		return models.Story{}, err
	}
	if story.Deleted {
		return models.Story{}, models.ErrStoryDeleted
	}

	if req.Title != nil {
		story.Title = *req.Title
	}
	if req.Deleted != nil {
		story.Deleted = *req.Deleted
	}
	story.UpdatedAt = time.Now().UTC()

	if err := s.store.ReplaceByUUID(ctx, store.KindStories, story.UUID, story); err != nil {
		return models.Story{}, err
	}
	return *story, nil
}

// DeleteStory soft-deletes the user's story. Deletion is terminal: deleting
// a story that is already deleted fails with models.ErrStoryDeleted, the
// same answer any other post-deletion update gets.
func (s *StoryService) DeleteStory(ctx context.Context, user *auth.VerifiedUser, storyUUID uuid.UUID) error {
	deleted := true
	_, err := s.UpdateStory(ctx, user, storyUUID, api.UpdateStoryRequest{Deleted: &deleted})
	return err
}

// UpdateStoryContent applies a content update batch against the user's
// story, returning the story's full resulting content set.
func (s *StoryService) UpdateStoryContent(ctx context.Context, user *auth.VerifiedUser, storyUUID uuid.UUID, updates []api.UpdateContentRequest) ([]api.Content, error) {
	story, err := s.getOwnedStory(ctx, user, storyUUID)
	if err != nil {
		return nil, err
	}
	content, err := s.content.UpdateContent(ctx, story, updates)
	if err != nil {
		return nil, err
	}
	items := make([]api.Content, 0, len(content))
	for _, c := range content {
		items = append(items, api.NewContent(c))
	}
	return items, nil
}

func (s *StoryService) getOwnedStory(ctx context.Context, user *auth.VerifiedUser, storyUUID uuid.UUID) (*models.Story, error) {
	userID, err := user.ID()
	if err != nil {
		return nil, err
	}

	entity, err := s.store.GetByUUID(ctx, store.KindStories, storyUUID)
	if err != nil {
		return nil, err
	}
	story, ok := entity.(*models.Story)
	if !ok {
		return nil, fmt.Errorf("%w: store returned %T for story", models.ErrInternal, entity)
	}
	if story.UserID != userID {
		// Deliberately indistinguishable from an absent story.
		return nil, models.ErrNotFound
	}
	return story, nil
}
