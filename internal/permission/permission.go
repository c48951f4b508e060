// Package permission decides whether a requester may act on a single resource.
package permission

import (
	"errors"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/model"
)

var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrNotOwner         = errors.New("requester does not own the resource")
)

// Owned is any resource with exactly one owning user.
type Owned interface {
	OwnerID() int64
}

// Check is one pre-operation predicate. It returns nil to allow.
type Check func(id model.Identity, resource Owned) error

// ObjectChecks guard every single-item read, update and delete.
var ObjectChecks = []Check{Authenticated, Owner}

// IsOwner reports whether id owns resource. Anonymous requesters own nothing.
func IsOwner(id model.Identity, resource Owned) bool {
	if !id.Authenticated() || resource == nil {
		return false
	}
	return resource.OwnerID() == id.UserID
}

// Authenticated rejects anonymous requesters.
func Authenticated(id model.Identity, _ Owned) error {
	if !id.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// Owner rejects requesters that are not the resource owner.
func Owner(id model.Identity, resource Owned) error {
	if !IsOwner(id, resource) {
		return ErrNotOwner
	}
	return nil
}

// Require runs checks in order and returns the first failure.
func Require(id model.Identity, resource Owned, checks ...Check) error {
	for _, check := range checks {
		if err := check(id, resource); err != nil {
			return err
		}
	}
	return nil
}
