package dish

import (
	"context"

	"github.com/jcmexdev/grubdash/internal/pipeline"
)

const (
	entity  = "Dish"
	paramID = "dishId"

	// stashKey is where dishIDIsValid leaves the resolved dish.
	stashKey = "dish"
)

// priceIsValidNumber rejects prices that are not integers greater than 0.
func priceIsValidNumber() pipeline.Step {
	return pipeline.NewStep("price-is-valid-number", func(ctx context.Context, req *pipeline.Request) error {
		price, ok := pipeline.Integer(req.Field("price"))
		if !ok || price <= 0 {
			return pipeline.InvalidValue("Dish must have a price that is an integer greater than 0")
		}
		return nil
	})
}

// dishIDIsValid resolves the route dishId and stashes the dish.
func dishIDIsValid(s *Store) pipeline.Step {
	return pipeline.NewStep("dish-id-is-valid", func(ctx context.Context, req *pipeline.Request) error {
		dishID := req.Param(paramID)
		found, ok := s.Find(dishID)
		if !ok {
			return pipeline.NotFound("Dish does not exist: %s", dishID)
		}
		req.Stash(stashKey, found)
		return nil
	})
}

// fieldsFrom reads the mutable fields out of a validated request.
func fieldsFrom(req *pipeline.Request) Fields {
	price, _ := pipeline.Integer(req.Field("price"))
	return Fields{
		Name:        pipeline.String(req.Field("name")),
		Description: pipeline.String(req.Field("description")),
		Price:       price,
		ImageURL:    pipeline.String(req.Field("image_url")),
	}
}
