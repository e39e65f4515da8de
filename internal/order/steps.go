package order

import (
	"context"

	"github.com/jcmexdev/grubdash/internal/pipeline"
)

const (
	entity  = "Order"
	paramID = "orderId"

	orderKey  = "order"
	dishesKey = "dishes"

	pendingOnlyMessage = "An order cannot be deleted unless it is pending"
)

// dishExists requires a truthy dishes field and stashes it.
func dishExists() pipeline.Step {
	return pipeline.NewStep("dish-exists", func(ctx context.Context, req *pipeline.Request) error {
		dishes := req.Field("dishes")
		if !pipeline.Truthy(dishes) {
			return pipeline.MissingField("Order must include a dish")
		}
		req.Stash(dishesKey, dishes)
		return nil
	})
}

func dishIsArray() pipeline.Step {
	return pipeline.NewStep("dish-is-array", func(ctx context.Context, req *pipeline.Request) error {
		if _, ok := pipeline.Stashed[[]any](req, dishesKey); !ok {
			return pipeline.InvalidValue("Order must include at least one dish")
		}
		return nil
	})
}

func dishesIsNotEmpty() pipeline.Step {
	return pipeline.NewStep("dishes-is-not-empty", func(ctx context.Context, req *pipeline.Request) error {
		dishes, _ := pipeline.Stashed[[]any](req, dishesKey)
		if len(dishes) == 0 {
			return pipeline.MissingField("Order must include at least one dish")
		}
		return nil
	})
}

// quantityIsValid reports the first dish whose quantity is not an integer
// greater than 0.
func quantityIsValid() pipeline.Step {
	return pipeline.NewStep("quantity-is-valid", func(ctx context.Context, req *pipeline.Request) error {
		dishes, _ := pipeline.Stashed[[]any](req, dishesKey)
		for i, raw := range dishes {
			entry, _ := raw.(map[string]any)
			quantity, ok := pipeline.Integer(entry["quantity"])
			if !ok || quantity <= 0 {
				return pipeline.InvalidValue("Dish %d must have a quantity that is an integer greater than 0", i)
			}
		}
		return nil
	})
}

// orderExists resolves the route orderId and stashes the order.
func orderExists(s *Store) pipeline.Step {
	return pipeline.NewStep("order-exists", func(ctx context.Context, req *pipeline.Request) error {
		orderID := req.Param(paramID)
		found, ok := s.Find(orderID)
		if !ok {
			return pipeline.NotFound("Order id does not exist: %s", orderID)
		}
		req.Stash(orderKey, found)
		return nil
	})
}

func statusIsValid() pipeline.Step {
	return pipeline.NewStep("status-is-valid", func(ctx context.Context, req *pipeline.Request) error {
		status, _ := req.Field("status").(string)
		if !Status(status).Valid() {
			return pipeline.InvalidValue("Order must have a status of pending, preparing, out-for-delivery, delivered")
		}
		return nil
	})
}

// statusIsNotDelivered rejects updates whose incoming status is delivered.
func statusIsNotDelivered() pipeline.Step {
	return pipeline.NewStep("status-is-not-delivered", func(ctx context.Context, req *pipeline.Request) error {
		if status, _ := req.Field("status").(string); Status(status) == StatusDelivered {
			return pipeline.Conflict("A delivered order cannot be changed")
		}
		return nil
	})
}

// statusIsPending only lets pending orders through.
func statusIsPending() pipeline.Step {
	return pipeline.NewStep("status-is-pending", func(ctx context.Context, req *pipeline.Request) error {
		found, _ := pipeline.Stashed[Order](req, orderKey)
		if found.Status != StatusPending {
			return pipeline.Conflict(pendingOnlyMessage)
		}
		return nil
	})
}

// lineItemsFrom converts the stashed dishes of a validated request.
func lineItemsFrom(req *pipeline.Request) []LineItem {
	dishes, _ := pipeline.Stashed[[]any](req, dishesKey)
	items := make([]LineItem, 0, len(dishes))
	for _, raw := range dishes {
		entry, _ := raw.(map[string]any)
		quantity, _ := pipeline.Integer(entry["quantity"])
		items = append(items, LineItem{
			DishID:   pipeline.String(entry["dishId"]),
			Quantity: quantity,
		})
	}
	return items
}
