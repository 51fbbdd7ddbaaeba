// Package auth holds the request-scoped identity handle handed to the
// persistence core by the authentication collaborator. The handshake that
// produces a verified user is outside this package.
package auth

import (
	"sync"

	"github.com/google/uuid"

	"memory-server/internal/models"
)

// VerifiedUser wraps the authenticated user's record behind a mutex shared
// by every code path touching the current request's identity. The accessors
// copy a scalar under the lock and release it immediately; the lock is never
// held across a storage call.
type VerifiedUser struct {
	mu   sync.Mutex
	user *models.User
}

// NewVerifiedUser wraps an authenticated user's record.
func NewVerifiedUser(user models.User) *VerifiedUser {
	return &VerifiedUser{user: &user}
}

// ID returns the user's numeric id. Fails with models.ErrInternal if the
// handle was never attached to a user record.
func (v *VerifiedUser) ID() (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.user == nil {
		return 0, models.ErrInternal
	}
	return v.user.ID, nil
}

// UUID returns the user's UUID. Fails with models.ErrInternal if the handle
// was never attached to a user record.
func (v *VerifiedUser) UUID() (uuid.UUID, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.user == nil {
		return uuid.Nil, models.ErrInternal
	}
	return v.user.UUID, nil
}
