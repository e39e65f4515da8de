// Package idgen allocates identifiers for newly created records.
package idgen

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// maxAttempts bounds how many candidates an allocator tries before giving up.
const maxAttempts = 16

// ErrExhausted is returned when no free id was found within maxAttempts.
var ErrExhausted = errors.New("idgen: no free id found")

// Allocator produces ids that do not collide with any id for which taken
// reports true at call time.
type Allocator interface {
	NextID(ctx context.Context, taken func(id string) bool) (string, error)
}

// UUID allocates random version 4 UUID strings.
type UUID struct{}

// NewUUID returns the default allocator.
func NewUUID() UUID { return UUID{} }

func (UUID) NextID(ctx context.Context, taken func(id string) bool) (string, error) {
	for range maxAttempts {
		id := uuid.NewString()
		if !taken(id) {
			return id, nil
		}
	}
	return "", ErrExhausted
}
