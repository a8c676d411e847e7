package mask

import (
	"context"
	"sort"
	"sync"

	schema "github.com/hanpama/graphmask/internal/schema"
)

// View is the filtered projection of a schema for one request. It wraps the
// schema without copying it; every navigation method answers from a visibility
// resolution computed lazily on first use and reused for the View's lifetime.
// A View is safe for concurrent readers.
type View struct {
	schema *schema.Schema
	mask   *Mask
	ctx    context.Context // request context for predicate evaluation

	once sync.Once
	res  *resolution
}

// Stats summarizes a resolved view, mainly for observability.
type Stats struct {
	Types       int
	HiddenTypes int
	Passes      int
}

func (v *View) resolve() *resolution {
	v.once.Do(func() {
		v.res = resolve(v.ctx, v.schema, v.mask)
	})
	return v.res
}

// Schema returns the underlying unmasked schema.
func (v *View) Schema() *schema.Schema { return v.schema }

// Stats returns resolution statistics, forcing resolution if needed.
func (v *View) Stats() Stats { return v.resolve().stats }

// QueryType returns the visible root query type, or nil.
func (v *View) QueryType() *schema.Type { return v.Type(v.schema.QueryType) }

// MutationType returns the visible root mutation type, or nil.
func (v *View) MutationType() *schema.Type { return v.Type(v.schema.MutationType) }

// SubscriptionType returns the visible root subscription type, or nil.
func (v *View) SubscriptionType() *schema.Type { return v.Type(v.schema.SubscriptionType) }

// Type returns the named type, or nil when it is hidden or does not exist.
// The two cases are indistinguishable on purpose.
func (v *View) Type(name string) *schema.Type {
	if name == "" {
		return nil
	}
	res := v.resolve()
	if res.hiddenType[name] {
		return nil
	}
	return v.schema.Types[name]
}

// Types returns all visible named types sorted by name.
func (v *View) Types() []*schema.Type {
	res := v.resolve()
	out := make([]*schema.Type, 0, len(v.schema.Types))
	for name, t := range v.schema.Types {
		if res.hiddenType[name] {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Fields returns t's visible fields in declaration order. Nil for hidden
// types and for kinds without fields.
func (v *View) Fields(t *schema.Type) []*schema.Field {
	if t == nil {
		return nil
	}
	res := v.resolve()
	if res.hiddenType[t.Name] {
		return nil
	}
	return res.fields[t.Name]
}

// Field returns the named visible field of t, or nil.
func (v *View) Field(t *schema.Type, name string) *schema.Field {
	for _, f := range v.Fields(t) {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Arguments returns f's visible arguments in declaration order.
func (v *View) Arguments(f *schema.Field) []*schema.InputValue {
	if f == nil {
		return nil
	}
	return v.resolve().arguments[f]
}

// Argument returns the named visible argument of f, or nil.
func (v *View) Argument(f *schema.Field, name string) *schema.InputValue {
	for _, a := range v.Arguments(f) {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// InputFields returns t's visible input fields in declaration order.
func (v *View) InputFields(t *schema.Type) []*schema.InputValue {
	if t == nil {
		return nil
	}
	res := v.resolve()
	if res.hiddenType[t.Name] {
		return nil
	}
	return res.inputFields[t.Name]
}

// EnumValues returns t's visible enum values in declaration order.
func (v *View) EnumValues(t *schema.Type) []*schema.EnumValue {
	if t == nil {
		return nil
	}
	res := v.resolve()
	if res.hiddenType[t.Name] {
		return nil
	}
	return res.enumValues[t.Name]
}

// PossibleTypes returns the visible concrete member types of an abstract
// type, in declaration order.
func (v *View) PossibleTypes(t *schema.Type) []*schema.Type {
	if t == nil {
		return nil
	}
	res := v.resolve()
	if res.hiddenType[t.Name] {
		return nil
	}
	out := make([]*schema.Type, 0, len(t.PossibleTypes))
	for _, name := range t.PossibleTypes {
		if res.hiddenType[name] {
			continue
		}
		if member := v.schema.Types[name]; member != nil && member.Kind == schema.TypeKindObject {
			out = append(out, member)
		}
	}
	return out
}

// Interfaces returns the visible interfaces implemented by t, in declaration
// order. A hidden interface disappears from this listing even when t itself
// stays visible.
func (v *View) Interfaces(t *schema.Type) []*schema.Type {
	if t == nil {
		return nil
	}
	res := v.resolve()
	if res.hiddenType[t.Name] {
		return nil
	}
	out := make([]*schema.Type, 0, len(t.Interfaces))
	for _, name := range t.Interfaces {
		if res.hiddenType[name] {
			continue
		}
		if iface := v.schema.Types[name]; iface != nil {
			out = append(out, iface)
		}
	}
	return out
}

// Directives returns the schema's directive definitions sorted by name.
// Directives are not maskable members.
func (v *View) Directives() []*schema.Directive {
	out := make([]*schema.Directive, 0, len(v.schema.Directives))
	for _, d := range v.schema.Directives {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
