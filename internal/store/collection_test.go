package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jcmexdev/grubdash/internal/idgen"
)

type record struct {
	ID   string
	Name string
}

func newTestCollection(t *testing.T, seed ...record) *Collection[record] {
	t.Helper()
	c := NewCollection(func(r record) string { return r.ID })
	for _, r := range seed {
		if err := c.Append(r); err != nil {
			t.Fatalf("Append(%s) error = %v", r.ID, err)
		}
	}
	return c
}

// sequence hands out "1", "2", ... skipping taken ids.
type sequence struct {
	next int
}

func (s *sequence) NextID(ctx context.Context, taken func(string) bool) (string, error) {
	for {
		s.next++
		id := fmt.Sprint(s.next)
		if !taken(id) {
			return id, nil
		}
	}
}

type failingAllocator struct{}

func (failingAllocator) NextID(context.Context, func(string) bool) (string, error) {
	return "", idgen.ErrExhausted
}

func TestCollectionKeepsInsertionOrder(t *testing.T) {
	c := newTestCollection(t, record{ID: "b"}, record{ID: "a"}, record{ID: "c"})

	got := c.List()
	want := []string{"b", "a", "c"}
	for i, r := range got {
		if r.ID != want[i] {
			t.Fatalf("List()[%d] = %s, want %s", i, r.ID, want[i])
		}
	}
}

func TestCollectionAppendDuplicate(t *testing.T) {
	c := newTestCollection(t, record{ID: "1"})
	if err := c.Append(record{ID: "1"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Append() error = %v, want ErrDuplicateID", err)
	}
}

func TestCollectionCreateSkipsTakenIDs(t *testing.T) {
	c := newTestCollection(t, record{ID: "1"}, record{ID: "2"})

	got, err := c.Create(context.Background(), &sequence{}, func(id string) record {
		return record{ID: id, Name: "new"}
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got.ID != "3" {
		t.Errorf("ID = %s, want 3", got.ID)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestCollectionCreateAllocatorFailure(t *testing.T) {
	c := newTestCollection(t)
	_, err := c.Create(context.Background(), failingAllocator{}, func(id string) record { return record{ID: id} })
	if !errors.Is(err, idgen.ErrExhausted) {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCollectionUpdate(t *testing.T) {
	c := newTestCollection(t, record{ID: "1", Name: "old"})

	got, err := c.Update("1", func(r *record) { r.Name = "new" })
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Name != "new" {
		t.Errorf("Update() = %+v", got)
	}
	if found, _ := c.Find("1"); found.Name != "new" {
		t.Errorf("Find() after Update = %+v", found)
	}

	if _, err := c.Update("missing", func(*record) {}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v", err)
	}
}

func TestCollectionRemoveIf(t *testing.T) {
	c := newTestCollection(t, record{ID: "1"}, record{ID: "2", Name: "keep"}, record{ID: "3"})
	always := func(record) bool { return true }

	if err := c.RemoveIf("2", func(r record) bool { return r.Name != "keep" }); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("RemoveIf() error = %v, want ErrPrecondition", err)
	}
	if _, ok := c.Find("2"); !ok {
		t.Fatal("record removed although the check failed")
	}

	if err := c.RemoveIf("2", always); err != nil {
		t.Fatalf("RemoveIf() error = %v", err)
	}
	if _, ok := c.Find("2"); ok {
		t.Error("Find(2) after RemoveIf")
	}
	list := c.List()
	if len(list) != 2 || list[0].ID != "1" || list[1].ID != "3" {
		t.Errorf("List() = %+v", list)
	}
	if err := c.RemoveIf("2", always); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveIf() error = %v", err)
	}
}

func TestCollectionRemoveIfSeesConcurrentUpdate(t *testing.T) {
	for range 200 {
		c := newTestCollection(t, record{ID: "1", Name: "pending"})

		var wg sync.WaitGroup
		var removeErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = c.Update("1", func(r *record) { r.Name = "preparing" })
		}()
		go func() {
			defer wg.Done()
			removeErr = c.RemoveIf("1", func(r record) bool { return r.Name == "pending" })
		}()
		wg.Wait()

		// Either the removal ran first, or the update did and blocked it.
		found, ok := c.Find("1")
		if removeErr == nil && ok {
			t.Fatal("RemoveIf() succeeded but the record is still stored")
		}
		if removeErr != nil && (!ok || found.Name != "preparing") {
			t.Fatalf("RemoveIf() error = %v with record %+v", removeErr, found)
		}
	}
}

func TestCollectionListIsSnapshot(t *testing.T) {
	c := newTestCollection(t, record{ID: "1", Name: "a"})
	list := c.List()
	list[0].Name = "changed"
	if found, _ := c.Find("1"); found.Name != "a" {
		t.Errorf("store changed through List() result: %+v", found)
	}
	if empty := newTestCollection(t).List(); empty == nil {
		t.Error("List() of empty collection is nil")
	}
}

func TestCollectionConcurrentCreate(t *testing.T) {
	c := newTestCollection(t)
	alloc := idgen.NewUUID()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Create(context.Background(), alloc, func(id string) record { return record{ID: id} }); err != nil {
				t.Errorf("Create() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if c.Len() != 50 {
		t.Fatalf("Len() = %d, want 50", c.Len())
	}
	seen := make(map[string]bool)
	for _, r := range c.List() {
		if seen[r.ID] {
			t.Fatalf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
	}
}
