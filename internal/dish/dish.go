// Package dish implements the menu endpoints: the dish store and the
// validation pipelines in front of it.
package dish

import (
	"context"

	"github.com/jcmexdev/grubdash/internal/idgen"
	"github.com/jcmexdev/grubdash/internal/store"
)

// Dish is a menu item. Price is in currency minor units.
type Dish struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	ImageURL    string `json:"image_url"`
}

// Fields are the mutable attributes of a dish.
type Fields struct {
	Name        string
	Description string
	Price       int
	ImageURL    string
}

func (f Fields) apply(d *Dish) {
	d.Name = f.Name
	d.Description = f.Description
	d.Price = f.Price
	d.ImageURL = f.ImageURL
}

// Store owns the ordered dish collection.
type Store struct {
	dishes *store.Collection[Dish]
	ids    idgen.Allocator
}

// NewStore creates a store seeded with the given dishes.
func NewStore(ids idgen.Allocator, seed ...Dish) (*Store, error) {
	s := &Store{
		dishes: store.NewCollection(func(d Dish) string { return d.ID }),
		ids:    ids,
	}
	for _, d := range seed {
		if err := s.dishes.Append(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// List returns every dish in creation order.
func (s *Store) List() []Dish { return s.dishes.List() }

// Len returns the number of stored dishes.
func (s *Store) Len() int { return s.dishes.Len() }

// Find retrieves a dish by id.
func (s *Store) Find(id string) (Dish, bool) { return s.dishes.Find(id) }

// Create appends a new dish under a freshly allocated id.
func (s *Store) Create(ctx context.Context, f Fields) (Dish, error) {
	return s.dishes.Create(ctx, s.ids, func(id string) Dish {
		d := Dish{ID: id}
		f.apply(&d)
		return d
	})
}

// Update replaces the mutable fields of dish id, keeping its id.
func (s *Store) Update(id string, f Fields) (Dish, error) {
	return s.dishes.Update(id, f.apply)
}
