package store_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memory-server/internal/models"
	"memory-server/internal/store"
)

func newTestFileStore(t *testing.T) *store.FileStore {
	t.Helper()
	return store.NewFileStore(t.TempDir(), zap.NewNop())
}

func testStory(userID int64, title string) *models.Story {
	now := time.Now().UTC()
	return &models.Story{
		UserID:    userID,
		UUID:      uuid.New(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testContent(storyID int64, details models.ContentDetails) *models.Content {
	now := time.Now().UTC()
	return &models.Content{
		StoryID:   storyID,
		UUID:      uuid.New(),
		Details:   details,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	story := testStory(7, "Hello, world")
	id, err := s.Insert(ctx, store.KindStories, story)
	require.NoError(t, err)
	assert.Equal(t, id, story.ID)

	got, err := s.GetByUUID(ctx, store.KindStories, story.UUID)
	require.NoError(t, err)
	assert.Equal(t, story, got)

	byID, err := s.GetByID(ctx, store.KindStories, id)
	require.NoError(t, err)
	assert.Equal(t, story, byID)
}

func TestFileStoreContentRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	item := testContent(3, models.NewTextDetails("A day in the life", "A picnic"))
	_, err := s.Insert(ctx, store.KindContent, item)
	require.NoError(t, err)

	got, err := s.GetByUUID(ctx, store.KindContent, item.UUID)
	require.NoError(t, err)
	assert.Equal(t, item, got)
}

func TestFileStoreGetByUUIDNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	_, err := s.GetByUUID(ctx, store.KindStories, uuid.New())
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = s.GetByID(ctx, store.KindStories, 42)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestFileStoreReplaceByUUID(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	story := testStory(1, "first draft")
	_, err := s.Insert(ctx, store.KindStories, story)
	require.NoError(t, err)
	sibling := testStory(1, "untouched")
	_, err = s.Insert(ctx, store.KindStories, sibling)
	require.NoError(t, err)

	story.Title = "second draft"
	story.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.ReplaceByUUID(ctx, store.KindStories, story.UUID, story))

	got, err := s.GetByUUID(ctx, store.KindStories, story.UUID)
	require.NoError(t, err)
	assert.Equal(t, "second draft", got.(*models.Story).Title)

	kept, err := s.GetByUUID(ctx, store.KindStories, sibling.UUID)
	require.NoError(t, err)
	assert.Equal(t, sibling, kept)
}

func TestFileStoreReplaceByUUIDNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	story := testStory(1, "never inserted")
	err := s.ReplaceByUUID(ctx, store.KindStories, story.UUID, story)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestFileStoreListByForeignKey(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	first := testStory(1, "with content")
	second := testStory(1, "without content")
	_, err := s.Insert(ctx, store.KindStories, first)
	require.NoError(t, err)
	_, err = s.Insert(ctx, store.KindStories, second)
	require.NoError(t, err)

	var wantUUIDs []uuid.UUID
	for i := 0; i < 3; i++ {
		item := testContent(first.ID, models.NewTextDetails(fmt.Sprintf("part %d", i), "body"))
		_, err := s.Insert(ctx, store.KindContent, item)
		require.NoError(t, err)
		wantUUIDs = append(wantUUIDs, item.UUID)
	}

	matches, err := s.ListByForeignKey(ctx, store.KindContent, "story_id", first.ID)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	var gotUUIDs []uuid.UUID
	for _, m := range matches {
		item := m.(*models.Content)
		assert.Equal(t, first.ID, item.StoryID)
		gotUUIDs = append(gotUUIDs, item.UUID)
	}
	assert.ElementsMatch(t, wantUUIDs, gotUUIDs)

	empty, err := s.ListByForeignKey(ctx, store.KindContent, "story_id", second.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	unknown, err := s.ListByForeignKey(ctx, store.KindContent, "no_such_field", first.ID)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestFileStoreNextIDConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	const workers = 16
	const perWorker = 25

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id, err := s.NextID(ctx, store.KindStories)
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, seen[id], "id %d issued twice", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestFileStoreNextIDSeedsFromExistingDocuments(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	first := store.NewFileStore(root, zap.NewNop())
	for i := 0; i < 2; i++ {
		_, err := first.Insert(ctx, store.KindUsers, &models.User{UUID: uuid.New(), Name: fmt.Sprintf("user-%d", i)})
		require.NoError(t, err)
	}

	// A new store over the same root continues the sequence.
	second := store.NewFileStore(root, zap.NewNop())
	id, err := second.NextID(ctx, store.KindUsers)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

func TestFileStoreDocumentLayout(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := store.NewFileStore(root, zap.NewNop())

	story := testStory(1, "layout check")
	_, err := s.Insert(ctx, store.KindStories, story)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "stories", story.UUID.String()+".json"))
	assert.NoError(t, err)
}

func TestFileStoreListAllEmptyKind(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	prompts, err := s.ListAll(ctx, store.KindPrompts)
	require.NoError(t, err)
	assert.Empty(t, prompts)
}
