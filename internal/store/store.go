package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"memory-server/internal/models"
)

// Kind identifies a persisted entity family. Its string value is the file
// backend's directory name and the relational backend's table name.
type Kind string

const (
	KindPrompts Kind = "prompts"
	KindStories Kind = "stories"
	KindContent Kind = "content"
	KindUsers   Kind = "users"
)

// EntityStore is the storage contract shared by both backends. Numeric ids
// are unique within a kind; UUIDs are unique across the kind and supplied by
// the caller before Insert.
//
// Lookup misses are models.ErrNotFound. Records that exist but cannot be
// decoded into the domain model are models.ErrInvalidRecord. Transport
// failures are models.ErrStorage.
type EntityStore interface {
	// GetByUUID returns the entity of kind with the given UUID.
	GetByUUID(ctx context.Context, kind Kind, id uuid.UUID) (models.Entity, error)
	// GetByID returns the entity of kind with the given numeric id.
	GetByID(ctx context.Context, kind Kind, id int64) (models.Entity, error)
	// ListByForeignKey returns every entity of kind whose named field equals
	// value. An unknown field name yields an empty slice, not an error.
	ListByForeignKey(ctx context.Context, kind Kind, field string, value int64) ([]models.Entity, error)
	// ListAll returns every entity of kind.
	ListAll(ctx context.Context, kind Kind) ([]models.Entity, error)
	// Insert assigns a fresh numeric id to the entity and persists it,
	// returning the id.
	Insert(ctx context.Context, kind Kind, entity models.Entity) (int64, error)
	// ReplaceByUUID overwrites the stored record wholesale. Callers carry
	// forward any fields they did not mean to change.
	ReplaceByUUID(ctx context.Context, kind Kind, id uuid.UUID, entity models.Entity) error
	// NextID produces a new, previously unused numeric id for kind.
	NextID(ctx context.Context, kind Kind) (int64, error)
}

// newEntity allocates the model type stored under kind.
func newEntity(kind Kind) (models.Entity, error) {
	switch kind {
	case KindPrompts:
		return &models.Prompt{}, nil
	case KindStories:
		return &models.Story{}, nil
	case KindContent:
		return &models.Content{}, nil
	case KindUsers:
		return &models.User{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %q", models.ErrInternal, string(kind))
	}
}
