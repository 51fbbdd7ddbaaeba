package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system. Users are immutable after creation.
type User struct {
	ID        int64     `db:"id" json:"id"`
	UUID      uuid.UUID `db:"uuid" json:"uuid"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) EntityID() int64        { return u.ID }
func (u *User) SetEntityID(id int64)   { u.ID = id }
func (u *User) EntityUUID() uuid.UUID  { return u.UUID }
