package models

import "github.com/google/uuid"

// Entity is implemented by every persisted record type so that a single
// store contract can serve all kinds. Numeric ids are assigned by the
// store on insert; UUIDs are generated by the caller beforehand.
type Entity interface {
	EntityID() int64
	SetEntityID(id int64)
	EntityUUID() uuid.UUID
}
