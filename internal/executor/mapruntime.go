package executor

import (
	"context"
	"fmt"
)

// Resolver resolves one field. source is the parent value, args the coerced
// argument values.
type Resolver func(ctx context.Context, source any, args map[string]any) (any, error)

// MapRuntime is a Runtime backed by in-memory data. Registered resolvers
// (keyed "ObjectType.field") take precedence; otherwise fields are read from
// map[string]any source values by field name. Abstract types resolve through
// the "__typename" key of the value. Suitable for tests, examples, and
// serving static data sets.
type MapRuntime struct {
	resolvers map[string]Resolver
}

// NewMapRuntime creates a MapRuntime with the provided resolvers.
func NewMapRuntime(resolvers map[string]Resolver) *MapRuntime {
	rs := make(map[string]Resolver, len(resolvers))
	for k, v := range resolvers {
		rs[k] = v
	}
	return &MapRuntime{resolvers: rs}
}

// ValueResolver returns a Resolver that always yields val.
func ValueResolver(val any) Resolver {
	return func(context.Context, any, map[string]any) (any, error) { return val, nil }
}

// ErrorResolver returns a Resolver that always fails with err.
func ErrorResolver(err error) Resolver {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

func (m *MapRuntime) Resolve(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if r, ok := m.resolvers[objectType+"."+field]; ok {
		return r(ctx, source, args)
	}
	if src, ok := source.(map[string]any); ok {
		return src[field], nil
	}
	if source == nil {
		return nil, nil
	}
	return nil, fmt.Errorf("no resolver for %s.%s", objectType, field)
}

func (m *MapRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if src, ok := value.(map[string]any); ok {
		if typename, ok := src["__typename"].(string); ok {
			return typename, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type for %s", abstractType)
}

func (m *MapRuntime) SerializeLeaf(ctx context.Context, typeName string, value any) (any, error) {
	return value, nil
}
