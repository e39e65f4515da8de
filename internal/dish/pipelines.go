package dish

import (
	"context"
	"errors"

	"github.com/jcmexdev/grubdash/internal/pipeline"
	"github.com/jcmexdev/grubdash/internal/store"
)

// Pipelines holds one pipeline per dish endpoint.
type Pipelines struct {
	List   *pipeline.Pipeline
	Create *pipeline.Pipeline
	Read   *pipeline.Pipeline
	Update *pipeline.Pipeline
}

// NewPipelines wires the dish endpoints to s.
func NewPipelines(s *Store, opts ...pipeline.Option) *Pipelines {
	h := &handlers{store: s}

	return &Pipelines{
		List: pipeline.New("dishes.list", nil, h.list, opts...),
		Create: pipeline.New("dishes.create", []pipeline.Step{
			pipeline.HasData(),
			pipeline.FieldRequired(entity, "name"),
			pipeline.FieldRequired(entity, "description"),
			pipeline.FieldRequired(entity, "price"),
			priceIsValidNumber(),
			pipeline.FieldRequired(entity, "image_url"),
		}, h.create, opts...),
		Read: pipeline.New("dishes.read", []pipeline.Step{
			dishIDIsValid(s),
		}, h.read, opts...),
		Update: pipeline.New("dishes.update", []pipeline.Step{
			pipeline.HasData(),
			dishIDIsValid(s),
			pipeline.RouteIDMatchesBodyID(entity, paramID),
			pipeline.FieldRequired(entity, "name"),
			pipeline.FieldRequired(entity, "description"),
			pipeline.FieldRequired(entity, "price"),
			priceIsValidNumber(),
			pipeline.FieldRequired(entity, "image_url"),
		}, h.update, opts...),
	}
}

type handlers struct {
	store *Store
}

func (h *handlers) list(ctx context.Context, req *pipeline.Request) (pipeline.Result, error) {
	return pipeline.OK(h.store.List()), nil
}

func (h *handlers) create(ctx context.Context, req *pipeline.Request) (pipeline.Result, error) {
	created, err := h.store.Create(ctx, fieldsFrom(req))
	if err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.Created(created), nil
}

func (h *handlers) read(ctx context.Context, req *pipeline.Request) (pipeline.Result, error) {
	found, _ := pipeline.Stashed[Dish](req, stashKey)
	return pipeline.OK(found), nil
}

func (h *handlers) update(ctx context.Context, req *pipeline.Request) (pipeline.Result, error) {
	found, _ := pipeline.Stashed[Dish](req, stashKey)
	updated, err := h.store.Update(found.ID, fieldsFrom(req))
	if errors.Is(err, store.ErrNotFound) {
		return pipeline.Result{}, pipeline.NotFound("Dish does not exist: %s", found.ID)
	}
	if err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.OK(updated), nil
}
