package models

import "errors"

// Application-wide standard errors
var (
	// Resource errors
	ErrNotFound = errors.New("resource not found")

	// State errors
	ErrStoryDeleted = errors.New("story has been deleted")

	// Validation / decode errors (bad stored data: malformed UUID,
	// out-of-range flag, undecodable details payload)
	ErrInvalidRecord = errors.New("stored record is invalid")

	// Transport-level storage failures (file IO, database connection)
	ErrStorage = errors.New("storage failure")

	// General server errors
	ErrInternal = errors.New("internal server error")
)
