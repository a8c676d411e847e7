package mask

import "context"

// key is the context key for the request's View.
type key struct{}

// NewContext returns a copy of parent carrying the View, so collaborators
// resolving deep in a request (e.g. introspection) can reach the same
// projection without threading it through every call.
func NewContext(parent context.Context, v *View) context.Context {
	return context.WithValue(parent, key{}, v)
}

// FromContext extracts the View from ctx.
// It returns the View and whether it was present.
func FromContext(ctx context.Context) (*View, bool) {
	v, ok := ctx.Value(key{}).(*View)
	return v, ok
}
