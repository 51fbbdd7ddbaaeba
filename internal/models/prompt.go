package models

import (
	"time"

	"github.com/google/uuid"
)

// Prompt is a writing prompt offered to users when starting a story.
type Prompt struct {
	ID          int64     `db:"id" json:"id"`
	UUID        uuid.UUID `db:"uuid" json:"uuid"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (p *Prompt) EntityID() int64       { return p.ID }
func (p *Prompt) SetEntityID(id int64)  { p.ID = id }
func (p *Prompt) EntityUUID() uuid.UUID { return p.UUID }
