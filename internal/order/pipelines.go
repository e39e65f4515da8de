package order

import (
	"context"
	"errors"

	"github.com/jcmexdev/grubdash/internal/pipeline"
	"github.com/jcmexdev/grubdash/internal/store"
)

// Pipelines holds one pipeline per order endpoint.
type Pipelines struct {
	List   *pipeline.Pipeline
	Create *pipeline.Pipeline
	Read   *pipeline.Pipeline
	Update *pipeline.Pipeline
	Delete *pipeline.Pipeline
}

// NewPipelines wires the order endpoints to s.
func NewPipelines(s *Store, opts ...pipeline.Option) *Pipelines {
	h := &handlers{store: s}

	return &Pipelines{
		List: pipeline.New("orders.list", nil, h.list, opts...),
		Create: pipeline.New("orders.create", []pipeline.Step{
			pipeline.HasData(),
			pipeline.FieldRequired(entity, "deliverTo"),
			pipeline.FieldRequired(entity, "mobileNumber"),
			dishExists(),
			dishIsArray(),
			dishesIsNotEmpty(),
			quantityIsValid(),
		}, h.create, opts...),
		Read: pipeline.New("orders.read", []pipeline.Step{
			orderExists(s),
		}, h.read, opts...),
		Update: pipeline.New("orders.update", []pipeline.Step{
			pipeline.HasData(),
			orderExists(s),
			dishExists(),
			dishIsArray(),
			dishesIsNotEmpty(),
			pipeline.FieldRequired(entity, "deliverTo"),
			pipeline.FieldRequired(entity, "mobileNumber"),
			statusIsValid(),
			pipeline.RouteIDMatchesBodyID(entity, paramID),
			quantityIsValid(),
			statusIsNotDelivered(),
		}, h.update, opts...),
		Delete: pipeline.New("orders.delete", []pipeline.Step{
			orderExists(s),
			statusIsPending(),
		}, h.destroy, opts...),
	}
}

type handlers struct {
	store *Store
}

func (h *handlers) list(ctx context.Context, req *pipeline.Request) (pipeline.Result, error) {
	return pipeline.OK(h.store.List()), nil
}

func (h *handlers) create(ctx context.Context, req *pipeline.Request) (pipeline.Result, error) {
	created, err := h.store.Create(ctx,
		pipeline.String(req.Field("deliverTo")),
		pipeline.String(req.Field("mobileNumber")),
		lineItemsFrom(req),
	)
	if err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.Created(created), nil
}

func (h *handlers) read(ctx context.Context, req *pipeline.Request) (pipeline.Result, error) {
	found, _ := pipeline.Stashed[Order](req, orderKey)
	return pipeline.OK(found), nil
}

func (h *handlers) update(ctx context.Context, req *pipeline.Request) (pipeline.Result, error) {
	found, _ := pipeline.Stashed[Order](req, orderKey)
	updated, err := h.store.Update(found.ID, Fields{
		DeliverTo:    pipeline.String(req.Field("deliverTo")),
		MobileNumber: pipeline.String(req.Field("mobileNumber")),
		Status:       Status(pipeline.String(req.Field("status"))),
	})
	if errors.Is(err, store.ErrNotFound) {
		return pipeline.Result{}, pipeline.NotFound("Order id does not exist: %s", found.ID)
	}
	if err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.OK(updated), nil
}

func (h *handlers) destroy(ctx context.Context, req *pipeline.Request) (pipeline.Result, error) {
	found, _ := pipeline.Stashed[Order](req, orderKey)
	err := h.store.RemovePending(found.ID)
	if errors.Is(err, store.ErrNotFound) {
		return pipeline.Result{}, pipeline.NotFound("Order id does not exist: %s", found.ID)
	}
	if errors.Is(err, store.ErrPrecondition) {
		return pipeline.Result{}, pipeline.Conflict(pendingOnlyMessage)
	}
	if err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.NoContent(), nil
}
