package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memory-server/internal/models"
	"memory-server/internal/store"
)

// UserService creates and resolves user records. Users are immutable after
// creation; the authentication collaborator looks them up by UUID.
type UserService struct {
	store  store.EntityStore
	logger *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(entityStore store.EntityStore, logger *zap.Logger) *UserService {
	return &UserService{
		store:  entityStore,
		logger: logger.Named("UserService"),
	}
}

// CreateUser inserts a new user with a fresh UUID.
func (s *UserService) CreateUser(ctx context.Context, name string) (models.User, error) {
	now := time.Now().UTC()
	user := models.User{
		UUID:      uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.store.Insert(ctx, store.KindUsers, &user); err != nil {
		return models.User{}, err
	}
	s.logger.Info("User created", zap.String("userUUID", user.UUID.String()))
	return user, nil
}

// GetUser returns the user with the given UUID.
func (s *UserService) GetUser(ctx context.Context, userUUID uuid.UUID) (models.User, error) {
	entity, err := s.store.GetByUUID(ctx, store.KindUsers, userUUID)
	if err != nil {
		return models.User{}, err
	}
	user, ok := entity.(*models.User)
	if !ok {
		return models.User{}, fmt.Errorf("%w: store returned %T for user", models.ErrInternal, entity)
	}
	return *user, nil
}
