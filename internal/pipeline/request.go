package pipeline

// Request is what every step and handler of a pipeline sees for one call.
type Request struct {
	// Data is the JSON object found under the body's "data" key. It is nil
	// when the body has no "data" member or when that member is not an object.
	Data map[string]any

	// Params holds the route parameters, e.g. "dishId".
	Params map[string]string

	// Locals is per-request scratch space. Steps stash values here, such as
	// a record they looked up, for later steps and the handler.
	Locals map[string]any
}

// Field returns data[name], or nil when absent.
func (r *Request) Field(name string) any {
	if r.Data == nil {
		return nil
	}
	return r.Data[name]
}

// Param returns the named route parameter.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// Stash records v under key for later steps.
func (r *Request) Stash(key string, v any) {
	if r.Locals == nil {
		r.Locals = make(map[string]any)
	}
	r.Locals[key] = v
}

// Stashed returns the value recorded under key as a T.
func Stashed[T any](r *Request, key string) (T, bool) {
	v, ok := r.Locals[key].(T)
	return v, ok
}
