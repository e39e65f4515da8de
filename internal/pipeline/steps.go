package pipeline

import "context"

// HasData rejects requests whose body carries no "data" object.
func HasData() Step {
	return NewStep("has-data", func(ctx context.Context, req *Request) error {
		if req.Data == nil {
			return MissingData("Missing data")
		}
		return nil
	})
}

// FieldRequired rejects requests where data[field] is not truthy.
// Empty strings, zero, false and null all count as missing.
func FieldRequired(entity, field string) Step {
	return NewStep("field-required("+field+")", func(ctx context.Context, req *Request) error {
		if Truthy(req.Field(field)) {
			return nil
		}
		return MissingField("%s must include a %s", entity, field)
	})
}

// RouteIDMatchesBodyID rejects a body id that differs from the route
// parameter. A missing, null or empty body id is accepted; a non-string id
// never matches.
func RouteIDMatchesBodyID(entity, param string) Step {
	return NewStep("route-id-matches-body-id", func(ctx context.Context, req *Request) error {
		routeID := req.Param(param)
		raw := req.Field("id")
		if raw == nil {
			return nil
		}
		if bodyID, ok := raw.(string); ok && (bodyID == "" || bodyID == routeID) {
			return nil
		}
		return Conflict("%s id does not match route id. %s: %s, Route: %s", entity, entity, String(raw), routeID)
	})
}
