// Package store implements the ordered in-memory collections behind the
// dish and order endpoints.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/jcmexdev/grubdash/internal/idgen"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID indicates a record with the same id is already stored.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrPrecondition indicates the stored record failed a RemoveIf check.
	ErrPrecondition = errors.New("record precondition failed")
)

// Collection is an insertion-ordered sequence of records keyed by id.
// It is safe for concurrent use. Records are handed out by value; callers
// change a stored record only through Update.
type Collection[T any] struct {
	mu    sync.RWMutex
	items []T
	idOf  func(T) string
}

// NewCollection creates a collection. idOf extracts the id of a record.
func NewCollection[T any](idOf func(T) string) *Collection[T] {
	return &Collection[T]{idOf: idOf}
}

// List returns a snapshot of every record in insertion order. The result
// is never nil so an empty collection encodes as [].
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of stored records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Find retrieves a record by id.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Append stores a record that already carries its id.
func (c *Collection[T]) Append(item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.idOf(item)
	if c.indexLocked(id) >= 0 {
		return fmt.Errorf("append %q: %w", id, ErrDuplicateID)
	}
	c.items = append(c.items, item)
	return nil
}

// Create allocates a fresh id with alloc, builds the record with it and
// appends it. The id is allocated under the write lock so no other record
// can claim it in between.
func (c *Collection[T]) Create(ctx context.Context, alloc idgen.Allocator, build func(id string) T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := alloc.NextID(ctx, func(id string) bool { return c.indexLocked(id) >= 0 })
	if err != nil {
		var zero T
		return zero, fmt.Errorf("allocate id: %w", err)
	}
	item := build(id)
	c.items = append(c.items, item)
	return item, nil
}

// Update applies mutate to the stored record in place and returns the
// result. mutate must not change the id.
func (c *Collection[T]) Update(id string, mutate func(*T)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		var zero T
		return zero, fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	mutate(&c.items[i])
	return c.items[i], nil
}

// RemoveIf deletes a record by id, keeping the order of the others, but
// only when ok holds for the stored record. The check and the removal happen
// under the same write lock.
func (c *Collection[T]) RemoveIf(id string, ok func(T) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", id, ErrNotFound)
	}
	if !ok(c.items[i]) {
		return fmt.Errorf("remove %q: %w", id, ErrPrecondition)
	}
	c.items = slices.Delete(c.items, i, i+1)
	return nil
}

func (c *Collection[T]) indexLocked(id string) int {
	return slices.IndexFunc(c.items, func(item T) bool { return c.idOf(item) == id })
}
