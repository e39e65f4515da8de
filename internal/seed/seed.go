// Package seed holds the fixtures the stores start with.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/jcmexdev/grubdash/internal/dish"
	"github.com/jcmexdev/grubdash/internal/order"
)

//go:embed data/*.json
var fixtures embed.FS

// Dishes returns the seed menu.
func Dishes() ([]dish.Dish, error) {
	var dishes []dish.Dish
	if err := load("data/dishes.json", &dishes); err != nil {
		return nil, err
	}
	return dishes, nil
}

// Orders returns the seed orders.
func Orders() ([]order.Order, error) {
	var orders []order.Order
	if err := load("data/orders.json", &orders); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if !o.Status.Valid() {
			return nil, fmt.Errorf("seed: order %s has invalid status %q", o.ID, o.Status)
		}
	}
	return orders, nil
}

func load(name string, v any) error {
	b, err := fixtures.ReadFile(name)
	if err != nil {
		return fmt.Errorf("seed: read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("seed: decode %s: %w", name, err)
	}
	return nil
}
