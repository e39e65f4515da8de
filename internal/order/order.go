// Package order implements the order endpoints: the order store and the
// validation pipelines in front of it.
package order

import (
	"context"
	"slices"

	"github.com/jcmexdev/grubdash/internal/idgen"
	"github.com/jcmexdev/grubdash/internal/store"
)

// Status is the delivery state of an order.
type Status string

const (
	StatusPending        Status = "pending"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out-for-delivery"
	StatusDelivered      Status = "delivered"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusPending, StatusPreparing, StatusOutForDelivery, StatusDelivered}

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Order is a customer order.
type Order struct {
	ID           string     `json:"id"`
	DeliverTo    string     `json:"deliverTo"`
	MobileNumber string     `json:"mobileNumber"`
	Status       Status     `json:"status"`
	Dishes       []LineItem `json:"dishes"`
}

// LineItem references a dish and how many of it were ordered.
type LineItem struct {
	DishID   string `json:"dishId"`
	Quantity int    `json:"quantity"`
}

// Fields are the attributes an update may replace. Dishes are validated on
// update but never replaced.
type Fields struct {
	DeliverTo    string
	MobileNumber string
	Status       Status
}

// Store owns the ordered order collection.
type Store struct {
	orders *store.Collection[Order]
	ids    idgen.Allocator
}

// NewStore creates a store seeded with the given orders.
func NewStore(ids idgen.Allocator, seed ...Order) (*Store, error) {
	s := &Store{
		orders: store.NewCollection(func(o Order) string { return o.ID }),
		ids:    ids,
	}
	for _, o := range seed {
		if err := s.orders.Append(o); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// List returns every order in creation order.
func (s *Store) List() []Order { return s.orders.List() }

// Find retrieves an order by id.
func (s *Store) Find(id string) (Order, bool) { return s.orders.Find(id) }

// Create appends a new pending order under a freshly allocated id.
func (s *Store) Create(ctx context.Context, deliverTo, mobileNumber string, dishes []LineItem) (Order, error) {
	return s.orders.Create(ctx, s.ids, func(id string) Order {
		return Order{
			ID:           id,
			DeliverTo:    deliverTo,
			MobileNumber: mobileNumber,
			Status:       StatusPending,
			Dishes:       slices.Clone(dishes),
		}
	})
}

// Update replaces deliverTo, mobileNumber and status of order id.
func (s *Store) Update(id string, f Fields) (Order, error) {
	return s.orders.Update(id, func(o *Order) {
		o.DeliverTo = f.DeliverTo
		o.MobileNumber = f.MobileNumber
		o.Status = f.Status
	})
}

// Len returns the number of stored orders.
func (s *Store) Len() int { return s.orders.Len() }

// RemovePending deletes order id if it is still pending when the store lock
// is held. Otherwise it returns store.ErrPrecondition.
func (s *Store) RemovePending(id string) error {
	return s.orders.RemoveIf(id, func(o Order) bool { return o.Status == StatusPending })
}
