package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memory-server/internal/api"
	"memory-server/internal/auth"
	"memory-server/internal/models"
	"memory-server/internal/service"
	"memory-server/internal/store"
	storeMocks "memory-server/internal/store/mocks"
)

func testUser(id int64) models.User {
	now := time.Now().UTC()
	return models.User{ID: id, UUID: uuid.New(), Name: "tester", CreatedAt: now, UpdatedAt: now}
}

func newServices(entityStore store.EntityStore) (*service.StoryService, *service.ContentService) {
	logger := zap.NewNop()
	content := service.NewContentService(entityStore, logger)
	return service.NewStoryService(entityStore, content, logger), content
}

func storedStory(owner int64, deleted bool) *models.Story {
	now := time.Now().UTC()
	return &models.Story{
		ID:        1,
		UserID:    owner,
		UUID:      uuid.New(),
		Title:     "stored",
		Deleted:   deleted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestGetStoryOwnershipMismatchIsNotFound(t *testing.T) {
	ctx := context.Background()
	mockStore := new(storeMocks.EntityStore)
	stories, _ := newServices(mockStore)

	story := storedStory(99, false) // owned by someone else
	mockStore.On("GetByUUID", ctx, store.KindStories, story.UUID).Return(story, nil).Once()

	user := auth.NewVerifiedUser(testUser(1))
	_, err := stories.GetStory(ctx, user, story.UUID)

	assert.True(t, errors.Is(err, models.ErrNotFound))
	mockStore.AssertExpectations(t)
	// The content list must never have been consulted.
	mockStore.AssertNotCalled(t, "ListByForeignKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStoryPartialMerge(t *testing.T) {
	ctx := context.Background()

	t.Run("title-only update leaves deleted and created_at untouched", func(t *testing.T) {
		mockStore := new(storeMocks.EntityStore)
		stories, _ := newServices(mockStore)

		story := storedStory(1, false)
		createdAt := story.CreatedAt
		mockStore.On("GetByUUID", ctx, store.KindStories, story.UUID).Return(story, nil).Once()
		mockStore.On("ReplaceByUUID", ctx, store.KindStories, story.UUID, mock.MatchedBy(func(e models.Entity) bool {
			replaced := e.(*models.Story)
			assert.Equal(t, "Goodbye, moon", replaced.Title)
			assert.False(t, replaced.Deleted)
			assert.Equal(t, createdAt, replaced.CreatedAt)
			assert.True(t, replaced.UpdatedAt.After(createdAt) || replaced.UpdatedAt.Equal(createdAt))
			return true
		})).Return(nil).Once()

		user := auth.NewVerifiedUser(testUser(1))
		title := "Goodbye, moon"
		updated, err := stories.UpdateStory(ctx, user, story.UUID, api.UpdateStoryRequest{Title: &title})

		require.NoError(t, err)
		assert.Equal(t, "Goodbye, moon", updated.Title)
		assert.False(t, updated.Deleted)
		mockStore.AssertExpectations(t)
	})

	t.Run("deleted-only update leaves title untouched", func(t *testing.T) {
		mockStore := new(storeMocks.EntityStore)
		stories, _ := newServices(mockStore)

		story := storedStory(1, false)
		mockStore.On("GetByUUID", ctx, store.KindStories, story.UUID).Return(story, nil).Once()
		mockStore.On("ReplaceByUUID", ctx, store.KindStories, story.UUID, mock.MatchedBy(func(e models.Entity) bool {
			replaced := e.(*models.Story)
			assert.Equal(t, "stored", replaced.Title)
			assert.True(t, replaced.Deleted)
			return true
		})).Return(nil).Once()

		user := auth.NewVerifiedUser(testUser(1))
		deleted := true
		updated, err := stories.UpdateStory(ctx, user, story.UUID, api.UpdateStoryRequest{Deleted: &deleted})

		require.NoError(t, err)
		assert.True(t, updated.Deleted)
		assert.Equal(t, "stored", updated.Title)
		mockStore.AssertExpectations(t)
	})
}

func TestUpdateStoryDeletedIsTerminal(t *testing.T) {
	ctx := context.Background()
	mockStore := new(storeMocks.EntityStore)
	stories, _ := newServices(mockStore)

	story := storedStory(1, true)
	mockStore.On("GetByUUID", ctx, store.KindStories, story.UUID).Return(story, nil).Once()

	user := auth.NewVerifiedUser(testUser(1))
	title := "resurrection attempt"
	_, err := stories.UpdateStory(ctx, user, story.UUID, api.UpdateStoryRequest{Title: &title})

	assert.True(t, errors.Is(err, models.ErrStoryDeleted))
	mockStore.AssertNotCalled(t, "ReplaceByUUID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteStoryTwiceFails(t *testing.T) {
	ctx := context.Background()
	mockStore := new(storeMocks.EntityStore)
	stories, _ := newServices(mockStore)

	story := storedStory(1, true)
	mockStore.On("GetByUUID", ctx, store.KindStories, story.UUID).Return(story, nil).Once()

	user := auth.NewVerifiedUser(testUser(1))
	err := stories.DeleteStory(ctx, user, story.UUID)

	assert.True(t, errors.Is(err, models.ErrStoryDeleted))
}

func TestCreateStorySurfacesPartialContentFailure(t *testing.T) {
	ctx := context.Background()
	mockStore := new(storeMocks.EntityStore)
	stories, _ := newServices(mockStore)

	mockStore.On("Insert", ctx, store.KindStories, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(2).(models.Entity).SetEntityID(10)
	}).Return(int64(10), nil).Once()
	// First content insert lands, the second fails.
	mockStore.On("Insert", ctx, store.KindContent, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(2).(models.Entity).SetEntityID(1)
	}).Return(int64(1), nil).Once()
	mockStore.On("Insert", ctx, store.KindContent, mock.Anything).Return(int64(0), models.ErrStorage).Once()

	user := auth.NewVerifiedUser(testUser(1))
	_, err := stories.CreateStory(ctx, user, api.CreateStoryRequest{
		Title: "partial",
		Content: []models.ContentDetails{
			models.NewTextDetails("one", "lands"),
			models.NewTextDetails("two", "fails"),
		},
	})

	assert.True(t, errors.Is(err, models.ErrStorage))
	mockStore.AssertExpectations(t)
}

// TestStoryLifecycleOnFileStore runs the full journalling flow against a
// real file backend.
func TestStoryLifecycleOnFileStore(t *testing.T) {
	ctx := context.Background()
	fileStore := store.NewFileStore(t.TempDir(), zap.NewNop())
	stories, _ := newServices(fileStore)

	users := service.NewUserService(fileStore, zap.NewNop())
	owner, err := users.CreateUser(ctx, "demo")
	require.NoError(t, err)
	user := auth.NewVerifiedUser(owner)

	created, err := stories.CreateStory(ctx, user, api.CreateStoryRequest{
		Title: "Hello, world",
		Content: []models.ContentDetails{
			models.NewTextDetails("A day in the life", "A picnic"),
		},
	})
	require.NoError(t, err)

	fetched, err := stories.GetStory(ctx, user, created.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", fetched.Title)
	require.Len(t, fetched.Content, 1)
	assert.Equal(t, models.ContentKindText, fetched.Content[0].Kind)
	assert.Equal(t, "A day in the life", fetched.Content[0].Details.Text.Title)
	assert.Equal(t, "A picnic", fetched.Content[0].Details.Text.Body)

	title := "Goodbye, moon"
	updated, err := stories.UpdateStory(ctx, user, created.UUID, api.UpdateStoryRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Goodbye, moon", updated.Title)

	after, err := stories.GetStory(ctx, user, created.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Goodbye, moon", after.Title)
	require.Len(t, after.Content, 1)
	assert.Equal(t, fetched.Content[0].UUID, after.Content[0].UUID)
	assert.Equal(t, fetched.Content[0].Details, after.Content[0].Details)

	require.NoError(t, stories.DeleteStory(ctx, user, created.UUID))

	_, err = stories.UpdateStoryContent(ctx, user, created.UUID, []api.UpdateContentRequest{
		{UUID: after.Content[0].UUID, Details: models.NewTextDetails("too late", "the story is gone")},
	})
	assert.True(t, errors.Is(err, models.ErrStoryDeleted))
}
