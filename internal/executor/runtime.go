package executor

import "context"

// Runtime is the host integration surface for field resolution. The executor
// handles selection-set traversal, argument coercion, value completion, and
// Non-Null error propagation; the runtime supplies raw field values.
//
// Implementations must be safe for concurrent use and must not mutate source
// or args. Errors returned from any method become located GraphQL errors.
type Runtime interface {
	// Resolve returns the raw value for a field. source is the parent object
	// value (nil for root fields); args are already coerced per the schema.
	// Return (nil, nil) to produce a GraphQL null for nullable fields.
	Resolve(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error)

	// ResolveType returns the concrete object type name for a value of an
	// abstract type (interface or union).
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeaf coerces a scalar or enum value into a JSON-safe Go value.
	// For enums, return the symbolic name as a string.
	SerializeLeaf(ctx context.Context, typeName string, value any) (any, error)
}
