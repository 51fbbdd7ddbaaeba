// Command seed populates the configured storage backend with the starter
// prompt set and a demo user with one story, so a fresh deployment has data
// to serve. It is safe to point at either backend.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"memory-server/internal/api"
	"memory-server/internal/auth"
	"memory-server/internal/config"
	"memory-server/internal/logger"
	"memory-server/internal/models"
	"memory-server/internal/service"
	"memory-server/internal/store"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entityStore, cleanup, err := openStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open storage backend", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer cleanup()
	zapLogger.Info("Storage backend ready", zap.String("backend", cfg.StorageBackend))

	if err := seed(ctx, entityStore, zapLogger); err != nil {
		zapLogger.Fatal("Seeding failed", zap.Error(err))
	}
	zapLogger.Info("Seeding complete")
}

func openStore(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (store.EntityStore, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := store.ConnectPool(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store.NewPgStore(pool, zapLogger), pool.Close, nil
	default:
		return store.NewFileStore(cfg.FileStoreRoot, zapLogger), func() {}, nil
	}
}

func seed(ctx context.Context, entityStore store.EntityStore, zapLogger *zap.Logger) error {
	prompts := service.NewPromptService(entityStore, zapLogger)
	users := service.NewUserService(entityStore, zapLogger)
	content := service.NewContentService(entityStore, zapLogger)
	stories := service.NewStoryService(entityStore, content, zapLogger)

	starterPrompts := []struct{ name, description string }{
		{"A day in the life", "Capture one ordinary day, hour by hour."},
		{"A place you love", "Describe somewhere that feels like yours."},
		{"Someone who shaped you", "Write about a person you carry with you."},
	}
	for _, p := range starterPrompts {
		if _, err := prompts.CreatePrompt(ctx, p.name, p.description); err != nil {
			return err
		}
	}

	user, err := users.CreateUser(ctx, "demo")
	if err != nil {
		return err
	}

	handle := auth.NewVerifiedUser(user)
	story, err := stories.CreateStory(ctx, handle, api.CreateStoryRequest{
		Title: "Hello, world",
		Content: []models.ContentDetails{
			models.NewTextDetails("A day in the life", "A picnic"),
		},
	})
	if err != nil {
		return err
	}

	zapLogger.Info("Demo story created",
		zap.String("userUUID", user.UUID.String()),
		zap.String("storyUUID", story.UUID.String()),
		zap.Int("contentItems", len(story.Content)))
	return nil
}
