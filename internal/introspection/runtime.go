package introspection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	executor "github.com/hanpama/graphmask/internal/executor"
	mask "github.com/hanpama/graphmask/internal/mask"
	schema "github.com/hanpama/graphmask/internal/schema"
)

// IntrospectionWrapper holds both the runtime and extended schema
type IntrospectionWrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap returns a Runtime that handles GraphQL introspection fields.
// It extends the schema with introspection types and fields. Every
// introspection answer is produced through the visibility view carried
// in the request context, so hidden schema elements never surface.
func Wrap(base executor.Runtime, sch *schema.Schema) *IntrospectionWrapper {
	// Create a copy of the schema to avoid modifying the original
	extendedSchema := extendSchemaWithIntrospection(sch)
	runtime := &runtime{
		base:     base,
		schema:   extendedSchema,
		fallback: mask.Unmasked(extendedSchema),
	}
	return &IntrospectionWrapper{
		Runtime: runtime,
		Schema:  extendedSchema,
	}
}

type runtime struct {
	base     executor.Runtime
	schema   *schema.Schema // Extended schema with introspection types
	fallback *mask.View     // Used when the context carries no view
}

// view returns the visibility view for the current request. A context
// without one sees the full extended schema.
func (r *runtime) view(ctx context.Context) *mask.View {
	if v, ok := mask.FromContext(ctx); ok {
		return v
	}
	return r.fallback
}

func (r *runtime) Resolve(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	v := r.view(ctx)

	switch src := source.(type) {
	case *mask.View:
		if val, ok := resolveSchemaField(src, field); ok {
			return val, nil
		}
	case *schema.Type:
		if val, ok := resolveTypeField(v, src, field, args); ok {
			return val, nil
		}
	case *schema.TypeRef:
		if val, ok := resolveTypeRefField(v, src, field, args); ok {
			return val, nil
		}
	case *schema.Field:
		if val, ok := resolveFieldField(v, src, field, args); ok {
			return val, nil
		}
	case *schema.InputValue:
		if val, ok := resolveInputValueField(src, field); ok {
			return val, nil
		}
	case *schema.EnumValue:
		if val, ok := resolveEnumValueField(src, field); ok {
			return val, nil
		}
	case *schema.Directive:
		if val, ok := resolveDirectiveField(src, field, args); ok {
			return val, nil
		}
	}

	if objectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return v, nil
		case "__type":
			return resolveTypeQuery(v, args), nil
		}
	}

	return r.base.Resolve(ctx, objectType, field, source, args)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *runtime) SerializeLeaf(ctx context.Context, typ string, value any) (any, error) {
	return r.base.SerializeLeaf(ctx, typ, value)
}

// --- helpers ---

func resolveTypeQuery(v *mask.View, args map[string]any) *schema.Type {
	name, _ := args["name"].(string)
	if name == "" {
		return nil
	}
	return v.Type(name)
}

func resolveSchemaTypes(v *mask.View) []*schema.Type {
	out := []*schema.Type{}
	for _, t := range v.Types() {
		if strings.HasPrefix(t.Name, "__") {
			continue
		}
		out = append(out, t)
	}
	return out
}

func resolveSchemaDirectives(v *mask.View) []*schema.Directive {
	dirs := v.Directives()
	if dirs == nil {
		return []*schema.Directive{}
	}
	return dirs
}

func resolveTypeFields(v *mask.View, t *schema.Type, args map[string]any) []*schema.Field {
	if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.Field{}
	for _, f := range v.Fields(t) {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		if !includeDeprecated && f.IsDeprecated {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveTypeInterfaces(v *mask.View, t *schema.Type) []*schema.Type {
	if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
		return nil
	}
	out := v.Interfaces(t)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveTypePossibleTypes(v *mask.View, t *schema.Type) []*schema.Type {
	if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
		return nil
	}
	pts := append([]*schema.Type{}, v.PossibleTypes(t)...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Name < pts[j].Name })
	return pts
}

func resolveTypeEnumValues(v *mask.View, t *schema.Type, args map[string]any) []*schema.EnumValue {
	if t.Kind != schema.TypeKindEnum {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.EnumValue{}
	for _, ev := range v.EnumValues(t) {
		if !includeDeprecated && ev.IsDeprecated {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveTypeInputFields(v *mask.View, t *schema.Type, args map[string]any) []*schema.InputValue {
	if t.Kind != schema.TypeKindInputObject {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.InputValue{}
	for _, iv := range v.InputFields(t) {
		if !includeDeprecated && iv.IsDeprecated {
			continue
		}
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveFieldArgs(v *mask.View, f *schema.Field, args map[string]any) []*schema.InputValue {
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.InputValue{}
	for _, a := range v.Arguments(f) {
		if !includeDeprecated && a.IsDeprecated {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveFieldDeprecationReason(f *schema.Field) *string {
	if f.IsDeprecated {
		return &f.DeprecationReason
	}
	return nil
}

func resolveInputValueDefaultValue(a *schema.InputValue) *string {
	if a.DefaultValue != nil {
		value := fmt.Sprintf("%v", a.DefaultValue)
		return &value
	}
	return nil
}

func resolveInputValueDeprecationReason(a *schema.InputValue) *string {
	if a.IsDeprecated {
		return &a.DeprecationReason
	}
	return nil
}

func resolveEnumValueDeprecationReason(ev *schema.EnumValue) *string {
	if ev.IsDeprecated {
		return &ev.DeprecationReason
	}
	return nil
}

func resolveDirectiveLocations(d *schema.Directive) []string {
	locs := append([]string{}, d.Locations...)
	sort.Strings(locs)
	return locs
}

func resolveDirectiveArgs(d *schema.Directive, args map[string]any) []*schema.InputValue {
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.InputValue{}
	for _, a := range d.Arguments {
		if !includeDeprecated && a.IsDeprecated {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveSchemaField(v *mask.View, field string) (any, bool) {
	switch field {
	case "types":
		return resolveSchemaTypes(v), true
	case "queryType":
		return v.QueryType(), true
	case "mutationType":
		return v.MutationType(), true
	case "subscriptionType":
		return v.SubscriptionType(), true
	case "directives":
		return resolveSchemaDirectives(v), true
	case "description":
		return v.Schema().Description, true
	}
	return nil, false
}

func resolveTypeField(v *mask.View, t *schema.Type, field string, args map[string]any) (any, bool) {
	switch field {
	case "kind":
		return string(t.Kind), true
	case "name":
		return t.Name, true
	case "description":
		return t.Description, true
	case "specifiedByURL":
		return t.SpecifiedByURL, true
	case "fields":
		return resolveTypeFields(v, t, args), true
	case "interfaces":
		return resolveTypeInterfaces(v, t), true
	case "possibleTypes":
		return resolveTypePossibleTypes(v, t), true
	case "enumValues":
		return resolveTypeEnumValues(v, t, args), true
	case "inputFields":
		return resolveTypeInputFields(v, t, args), true
	case "isOneOf":
		return t.OneOf, true
	case "ofType":
		// Wrapper types (LIST/NON_NULL) are represented as TypeRef nodes, so named types never expose ofType.
		return nil, true
	}
	return nil, false
}

func resolveTypeRefField(v *mask.View, tr *schema.TypeRef, field string, args map[string]any) (any, bool) {
	switch field {
	case "kind":
		if tr.Kind == schema.TypeRefKindNamed {
			// A bare reference reports the kind of the type it names.
			if def := v.Type(tr.Named); def != nil {
				return string(def.Kind), true
			}
			return nil, true
		}
		return string(tr.Kind), true
	case "name":
		if tr.IsNonNull() || tr.IsList() {
			return nil, true
		}
		return tr.Named, true
	case "ofType":
		if tr.Kind == schema.TypeRefKindNonNull || tr.Kind == schema.TypeRefKindList {
			return tr.OfType, true
		}
		return nil, true
	default:
		if name := tr.GetNamedType(); name != "" {
			if def := v.Type(name); def != nil {
				return resolveTypeField(v, def, field, args)
			}
		}
		return nil, true
	}
}

func resolveFieldField(v *mask.View, f *schema.Field, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return f.Name, true
	case "description":
		return f.Description, true
	case "args":
		return resolveFieldArgs(v, f, args), true
	case "type":
		return f.Type, true
	case "isDeprecated":
		return f.IsDeprecated, true
	case "deprecationReason":
		return resolveFieldDeprecationReason(f), true
	}
	return nil, false
}

func resolveInputValueField(a *schema.InputValue, field string) (any, bool) {
	switch field {
	case "name":
		return a.Name, true
	case "description":
		return a.Description, true
	case "type":
		return a.Type, true
	case "defaultValue":
		return resolveInputValueDefaultValue(a), true
	case "isDeprecated":
		return a.IsDeprecated, true
	case "deprecationReason":
		return resolveInputValueDeprecationReason(a), true
	}
	return nil, false
}

func resolveEnumValueField(ev *schema.EnumValue, field string) (any, bool) {
	switch field {
	case "name":
		return ev.Name, true
	case "description":
		return ev.Description, true
	case "isDeprecated":
		return ev.IsDeprecated, true
	case "deprecationReason":
		return resolveEnumValueDeprecationReason(ev), true
	}
	return nil, false
}

func resolveDirectiveField(d *schema.Directive, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return d.Name, true
	case "description":
		return d.Description, true
	case "isRepeatable":
		return d.IsRepeatable, true
	case "locations":
		return resolveDirectiveLocations(d), true
	case "args":
		return resolveDirectiveArgs(d, args), true
	}
	return nil, false
}

func boolArg(args map[string]any, name string, def bool) bool {
	if args == nil {
		return def
	}
	if v, ok := args[name]; ok {
		if b, ok2 := v.(bool); ok2 {
			return b
		}
	}
	return def
}
