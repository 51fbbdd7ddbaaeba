package models

import (
	"time"

	"github.com/google/uuid"
)

// Story represents a user-owned story. Stories are never hard-deleted:
// Deleted is a terminal soft-delete flag, and once set the story's content
// must not be mutated again. UserID never changes after creation.
type Story struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	UUID      uuid.UUID `db:"uuid" json:"uuid"`
	Title     string    `db:"title" json:"title"`
	Deleted   bool      `db:"deleted" json:"deleted"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Story) EntityID() int64       { return s.ID }
func (s *Story) SetEntityID(id int64)  { s.ID = id }
func (s *Story) EntityUUID() uuid.UUID { return s.UUID }
