package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"

	"github.com/jcmexdev/grubdash/internal/idgen"
	"github.com/jcmexdev/grubdash/internal/pipeline"
)

const (
	pendingID   = "8c3b2f0a7e1d4b6a9f5e2c1d0b9a8e7f"
	preparingID = "f6069a542257054114138301947672ba"
	deliveredID = "5a887d326e83d3c5bdcbee398ea32aff"
)

func seedOrders() []Order {
	return []Order{
		{
			ID:           preparingID,
			DeliverTo:    "1600 Pennsylvania Avenue NW, Washington, DC 20500",
			MobileNumber: "(202) 456-1111",
			Status:       StatusPreparing,
			Dishes:       []LineItem{{DishID: "d1", Quantity: 1}},
		},
		{
			ID:           deliveredID,
			DeliverTo:    "308 Negra Arroyo Lane",
			MobileNumber: "(505) 143-3369",
			Status:       StatusDelivered,
			Dishes:       []LineItem{{DishID: "d2", Quantity: 2}},
		},
		{
			ID:           pendingID,
			DeliverTo:    "221B Baker Street",
			MobileNumber: "(020) 7224-3688",
			Status:       StatusPending,
			Dishes:       []LineItem{{DishID: "d1", Quantity: 3}},
		},
	}
}

func newTestPipelines(t *testing.T) (*Store, *Pipelines) {
	t.Helper()
	s, err := NewStore(idgen.NewUUID(), seedOrders()...)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s, NewPipelines(s)
}

func dishesOf(quantities ...any) []any {
	dishes := make([]any, 0, len(quantities))
	for _, q := range quantities {
		dishes = append(dishes, map[string]any{"dishId": "d1", "quantity": q})
	}
	return dishes
}

func newOrder() map[string]any {
	return map[string]any{
		"deliverTo":    "123 Main",
		"mobileNumber": "555",
		"dishes":       dishesOf(json.Number("2")),
	}
}

func changes(status string) map[string]any {
	data := newOrder()
	data["status"] = status
	return data
}

func set(data map[string]any, key string, value any) map[string]any {
	data[key] = value
	return data
}

func unset(data map[string]any, key string) map[string]any {
	delete(data, key)
	return data
}

func runErr(t *testing.T, err error) *pipeline.Error {
	t.Helper()
	var perr *pipeline.Error
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *pipeline.Error", err)
	}
	return perr
}

func TestCreateOrder(t *testing.T) {
	s, p := newTestPipelines(t)

	res, err := p.Create.Run(context.Background(), &pipeline.Request{Data: newOrder()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Status != http.StatusCreated {
		t.Errorf("Status = %d, want 201", res.Status)
	}

	got := res.Data.(Order)
	if got.ID == "" {
		t.Fatal("created order has no id")
	}
	want := Order{
		ID:           got.ID,
		DeliverTo:    "123 Main",
		MobileNumber: "555",
		Status:       StatusPending,
		Dishes:       []LineItem{{DishID: "d1", Quantity: 2}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("created = %+v, want %+v", got, want)
	}
	if n := s.Len(); n != 4 {
		t.Errorf("store has %d orders, want 4", n)
	}
}

func TestCreateOrderRejected(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		kind    pipeline.Kind
		message string
	}{
		{
			name:    "missingData",
			kind:    pipeline.KindMissingData,
			message: "Missing data",
		},
		{
			name:    "missingDeliverTo",
			data:    unset(newOrder(), "deliverTo"),
			kind:    pipeline.KindMissingField,
			message: "Order must include a deliverTo",
		},
		{
			name:    "emptyMobileNumber",
			data:    set(newOrder(), "mobileNumber", ""),
			kind:    pipeline.KindMissingField,
			message: "Order must include a mobileNumber",
		},
		{
			name:    "missingDishes",
			data:    unset(newOrder(), "dishes"),
			kind:    pipeline.KindMissingField,
			message: "Order must include a dish",
		},
		{
			name:    "dishesNotArray",
			data:    set(newOrder(), "dishes", "tacos"),
			kind:    pipeline.KindInvalidValue,
			message: "Order must include at least one dish",
		},
		{
			name:    "emptyDishes",
			data:    set(newOrder(), "dishes", []any{}),
			kind:    pipeline.KindMissingField,
			message: "Order must include at least one dish",
		},
		{
			name:    "zeroQuantity",
			data:    set(newOrder(), "dishes", dishesOf(json.Number("1"), json.Number("0"))),
			kind:    pipeline.KindInvalidValue,
			message: "Dish 1 must have a quantity that is an integer greater than 0",
		},
		{
			name:    "firstInvalidIndexWins",
			data:    set(newOrder(), "dishes", dishesOf(json.Number("1"), "2", json.Number("-1"))),
			kind:    pipeline.KindInvalidValue,
			message: "Dish 1 must have a quantity that is an integer greater than 0",
		},
		{
			name:    "missingQuantity",
			data:    set(newOrder(), "dishes", []any{map[string]any{"dishId": "d1"}}),
			kind:    pipeline.KindInvalidValue,
			message: "Dish 0 must have a quantity that is an integer greater than 0",
		},
		{
			name:    "fractionalQuantity",
			data:    set(newOrder(), "dishes", dishesOf(json.Number("1.5"))),
			kind:    pipeline.KindInvalidValue,
			message: "Dish 0 must have a quantity that is an integer greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := newTestPipelines(t)

			_, err := p.Create.Run(context.Background(), &pipeline.Request{Data: tt.data})
			perr := runErr(t, err)
			if perr.Status != http.StatusBadRequest || perr.Kind != tt.kind || perr.Message != tt.message {
				t.Errorf("error = %+v, want %v %q", perr, tt.kind, tt.message)
			}
			if n := s.Len(); n != 3 {
				t.Errorf("store has %d orders after rejection, want 3", n)
			}
		})
	}
}

func TestCreateOrderAcceptsWholeFloatQuantity(t *testing.T) {
	_, p := newTestPipelines(t)

	res, err := p.Create.Run(context.Background(), &pipeline.Request{
		Data: set(newOrder(), "dishes", dishesOf(json.Number("2.0"))),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if q := res.Data.(Order).Dishes[0].Quantity; q != 2 {
		t.Errorf("Quantity = %d, want 2", q)
	}
}

func TestReadOrder(t *testing.T) {
	_, p := newTestPipelines(t)

	res, err := p.Read.Run(context.Background(), &pipeline.Request{
		Params: map[string]string{"orderId": pendingID},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := res.Data.(Order); got.ID != pendingID || got.Status != StatusPending {
		t.Errorf("Run() = %+v", got)
	}

	_, err = p.Read.Run(context.Background(), &pipeline.Request{
		Params: map[string]string{"orderId": "nope"},
	})
	perr := runErr(t, err)
	if perr.Status != http.StatusNotFound || perr.Message != "Order id does not exist: nope" {
		t.Errorf("error = %+v", perr)
	}
}

func TestUpdateOrder(t *testing.T) {
	_, p := newTestPipelines(t)

	res, err := p.Update.Run(context.Background(), &pipeline.Request{
		Data:   set(changes("out-for-delivery"), "dishes", dishesOf(json.Number("9"))),
		Params: map[string]string{"orderId": preparingID},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := res.Data.(Order)
	want := Order{
		ID:           preparingID,
		DeliverTo:    "123 Main",
		MobileNumber: "555",
		Status:       StatusOutForDelivery,
		Dishes:       []LineItem{{DishID: "d1", Quantity: 1}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("updated = %+v, want %+v", got, want)
	}
}

func TestUpdateOrderRejected(t *testing.T) {
	tests := []struct {
		name    string
		routeID string
		data    map[string]any
		status  int
		message string
	}{
		{
			name:    "missingData",
			routeID: "nope",
			status:  http.StatusBadRequest,
			message: "Missing data",
		},
		{
			name:    "unknownOrder",
			routeID: "nope",
			data:    changes("pending"),
			status:  http.StatusNotFound,
			message: "Order id does not exist: nope",
		},
		{
			name:    "dishesCheckedBeforeDeliverTo",
			routeID: pendingID,
			data:    unset(unset(changes("pending"), "dishes"), "deliverTo"),
			status:  http.StatusBadRequest,
			message: "Order must include a dish",
		},
		{
			name:    "missingDeliverTo",
			routeID: pendingID,
			data:    unset(changes("pending"), "deliverTo"),
			status:  http.StatusBadRequest,
			message: "Order must include a deliverTo",
		},
		{
			name:    "missingStatus",
			routeID: pendingID,
			data:    unset(changes("pending"), "status"),
			status:  http.StatusBadRequest,
			message: "Order must have a status of pending, preparing, out-for-delivery, delivered",
		},
		{
			name:    "unknownStatus",
			routeID: pendingID,
			data:    changes("invalid"),
			status:  http.StatusBadRequest,
			message: "Order must have a status of pending, preparing, out-for-delivery, delivered",
		},
		{
			name:    "mismatchedBodyID",
			routeID: pendingID,
			data:    set(changes("pending"), "id", "other"),
			status:  http.StatusBadRequest,
			message: "Order id does not match route id. Order: other, Route: " + pendingID,
		},
		{
			name:    "invalidQuantity",
			routeID: pendingID,
			data:    set(changes("pending"), "dishes", dishesOf(json.Number("0"))),
			status:  http.StatusBadRequest,
			message: "Dish 0 must have a quantity that is an integer greater than 0",
		},
		{
			name:    "deliveredStatus",
			routeID: pendingID,
			data:    changes("delivered"),
			status:  http.StatusBadRequest,
			message: "A delivered order cannot be changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := newTestPipelines(t)
			before := s.List()

			_, err := p.Update.Run(context.Background(), &pipeline.Request{
				Data:   tt.data,
				Params: map[string]string{"orderId": tt.routeID},
			})
			perr := runErr(t, err)
			if perr.Status != tt.status || perr.Message != tt.message {
				t.Errorf("error = %+v, want %d %q", perr, tt.status, tt.message)
			}
			if after := s.List(); !reflect.DeepEqual(before, after) {
				t.Errorf("store changed after rejection: %+v", after)
			}
		})
	}
}

func TestDeleteOrder(t *testing.T) {
	tests := []struct {
		name    string
		routeID string
		status  int
		message string
		remain  int
	}{
		{
			name:    "pending",
			routeID: pendingID,
			status:  http.StatusNoContent,
			remain:  2,
		},
		{
			name:    "preparing",
			routeID: preparingID,
			status:  http.StatusBadRequest,
			message: "An order cannot be deleted unless it is pending",
			remain:  3,
		},
		{
			name:    "delivered",
			routeID: deliveredID,
			status:  http.StatusBadRequest,
			message: "An order cannot be deleted unless it is pending",
			remain:  3,
		},
		{
			name:    "unknown",
			routeID: "nope",
			status:  http.StatusNotFound,
			message: "Order id does not exist: nope",
			remain:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := newTestPipelines(t)

			res, err := p.Delete.Run(context.Background(), &pipeline.Request{
				Params: map[string]string{"orderId": tt.routeID},
			})
			if tt.message == "" {
				if err != nil {
					t.Fatalf("Run() error = %v", err)
				}
				if res.Status != tt.status || res.Data != nil {
					t.Errorf("Run() = %+v, want %d with no data", res, tt.status)
				}
				if _, ok := s.Find(tt.routeID); ok {
					t.Error("order still present after delete")
				}
			} else {
				perr := runErr(t, err)
				if perr.Status != tt.status || perr.Message != tt.message {
					t.Errorf("error = %+v, want %d %q", perr, tt.status, tt.message)
				}
			}
			if n := s.Len(); n != tt.remain {
				t.Errorf("store has %d orders, want %d", n, tt.remain)
			}
		})
	}
}

func TestDeleteOrderRacingStatusUpdate(t *testing.T) {
	s, p := newTestPipelines(t)
	ctx := context.Background()

	for round := range 500 {
		res, err := p.Create.Run(ctx, &pipeline.Request{Data: newOrder()})
		if err != nil {
			t.Fatalf("round %d: create error = %v", round, err)
		}
		params := map[string]string{"orderId": res.Data.(Order).ID}

		var wg sync.WaitGroup
		var updateErr, deleteErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, updateErr = p.Update.Run(ctx, &pipeline.Request{Data: changes("preparing"), Params: params})
		}()
		go func() {
			defer wg.Done()
			_, deleteErr = p.Delete.Run(ctx, &pipeline.Request{Params: params})
		}()
		wg.Wait()

		if updateErr == nil && deleteErr == nil {
			t.Fatalf("round %d: order was moved to preparing and deleted", round)
		}
		if deleteErr != nil {
			perr := runErr(t, deleteErr)
			switch perr.Message {
			case "An order cannot be deleted unless it is pending", "Order id does not exist: " + params["orderId"]:
			default:
				t.Fatalf("round %d: delete error = %+v", round, perr)
			}
			if updateErr == nil {
				if got, ok := s.Find(params["orderId"]); !ok || got.Status != StatusPreparing {
					t.Fatalf("round %d: order = %+v, %v; want preparing", round, got, ok)
				}
			}
		}
	}
}

func TestListOrders(t *testing.T) {
	_, p := newTestPipelines(t)

	res, err := p.List.Run(context.Background(), &pipeline.Request{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(res.Data, seedOrders()) {
		t.Errorf("Data = %+v", res.Data)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false", s)
		}
	}
	if Status("cancelled").Valid() {
		t.Error("cancelled.Valid() = true")
	}
}
