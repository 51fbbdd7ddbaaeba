package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"memory-server/internal/models"
	"memory-server/internal/store"
)

// Mock EntityStore
type EntityStore struct {
	mock.Mock
}

func (m *EntityStore) GetByUUID(ctx context.Context, kind store.Kind, id uuid.UUID) (models.Entity, error) {
	args := m.Called(ctx, kind, id)
	entity, _ := args.Get(0).(models.Entity)
	return entity, args.Error(1)
}

func (m *EntityStore) GetByID(ctx context.Context, kind store.Kind, id int64) (models.Entity, error) {
	args := m.Called(ctx, kind, id)
	entity, _ := args.Get(0).(models.Entity)
	return entity, args.Error(1)
}

func (m *EntityStore) ListByForeignKey(ctx context.Context, kind store.Kind, field string, value int64) ([]models.Entity, error) {
	args := m.Called(ctx, kind, field, value)
	entities, _ := args.Get(0).([]models.Entity)
	return entities, args.Error(1)
}

func (m *EntityStore) ListAll(ctx context.Context, kind store.Kind) ([]models.Entity, error) {
	args := m.Called(ctx, kind)
	entities, _ := args.Get(0).([]models.Entity)
	return entities, args.Error(1)
}

func (m *EntityStore) Insert(ctx context.Context, kind store.Kind, entity models.Entity) (int64, error) {
	args := m.Called(ctx, kind, entity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EntityStore) ReplaceByUUID(ctx context.Context, kind store.Kind, id uuid.UUID, entity models.Entity) error {
	args := m.Called(ctx, kind, id, entity)
	return args.Error(0)
}

func (m *EntityStore) NextID(ctx context.Context, kind store.Kind) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}
