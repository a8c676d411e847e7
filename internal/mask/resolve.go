package mask

import (
	"context"
	"sort"
	"strings"

	schema "github.com/hanpama/graphmask/internal/schema"
)

// resolution is the memoized outcome of one View's visibility computation.
// All slices preserve declaration order from the raw schema.
type resolution struct {
	hiddenType  map[string]bool
	fields      map[string][]*schema.Field
	arguments   map[*schema.Field][]*schema.InputValue
	inputFields map[string][]*schema.InputValue
	enumValues  map[string][]*schema.EnumValue
	stats       Stats
}

func resolve(ctx context.Context, s *schema.Schema, m *Mask) *resolution {
	r := &resolver{
		ctx:    ctx,
		s:      s,
		pred:   m.hidden,
		base:   make(map[schema.Member]bool),
		hidden: make(map[string]bool),
	}
	r.names = make([]string, 0, len(s.Types))
	for name := range s.Types {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	r.seed()
	passes := r.iterate()
	if m.prune {
		passes += r.pruneUnreachable()
	}
	return r.materialize(passes)
}

type resolver struct {
	ctx    context.Context
	s      *schema.Schema
	pred   Predicate
	names  []string
	base   map[schema.Member]bool // base predicate results, one evaluation per member
	hidden map[string]bool        // current type-level hidden status
}

func (r *resolver) baseHidden(m schema.Member) bool {
	if r.pred == nil {
		return false
	}
	if v, ok := r.base[m]; ok {
		return v
	}
	v := r.pred(r.ctx, m)
	r.base[m] = v
	return v
}

// exempt members are never maskable: built-in scalars, introspection types,
// and the root operation types.
func (r *resolver) exempt(name string) bool {
	return schema.IsBuiltIn(name) || r.s.IsRootType(name)
}

// seed applies the base predicate to every named type.
func (r *resolver) seed() {
	for _, name := range r.names {
		if r.exempt(name) {
			continue
		}
		if r.baseHidden(r.s.Types[name]) {
			r.hidden[name] = true
		}
	}
}

// iterate re-derives type-level hidden status from the current state until a
// full pass changes nothing. Each pass is O(schema); the pass count is bounded
// by the number of types, so cyclic type graphs terminate.
func (r *resolver) iterate() int {
	passes := 0
	for changed := true; changed; {
		changed = false
		passes++
		for _, name := range r.names {
			if r.hidden[name] || r.exempt(name) {
				continue
			}
			if r.collapsed(r.s.Types[name]) {
				r.hidden[name] = true
				changed = true
			}
		}
	}
	return passes
}

// collapsed reports whether t has become structurally empty under the current
// hidden state. An empty container is unusable and must disappear with its
// members.
func (r *resolver) collapsed(t *schema.Type) bool {
	switch t.Kind {
	case schema.TypeKindObject, schema.TypeKindInterface:
		for _, f := range t.Fields {
			if r.fieldVisible(t, f) {
				return false
			}
		}
		return true
	case schema.TypeKindUnion:
		for _, member := range t.PossibleTypes {
			if r.memberVisible(member) {
				return false
			}
		}
		return true
	case schema.TypeKindEnum:
		for _, v := range t.EnumValues {
			if !r.baseHidden(v) {
				return false
			}
		}
		return true
	case schema.TypeKindInputObject:
		for _, iv := range t.InputFields {
			if r.inputValueVisible(iv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (r *resolver) fieldVisible(owner *schema.Type, f *schema.Field) bool {
	if strings.HasPrefix(f.Name, "__") {
		return true
	}
	if r.baseHidden(f) {
		return false
	}
	if r.hidden[schema.GetNamedType(f.Type)] {
		return false
	}
	if owner.Kind == schema.TypeKindInterface {
		return r.interfaceFieldImplemented(owner, f)
	}
	return true
}

// interfaceFieldImplemented reports whether at least one visible object
// implementer still exposes the interface field. A field hidden on every
// implementer is unresolvable through the interface and is hidden there too.
// Interfaces with no object implementers in the raw schema skip the rule.
func (r *resolver) interfaceFieldImplemented(iface *schema.Type, f *schema.Field) bool {
	sawImplementer := false
	for _, name := range iface.PossibleTypes {
		impl := r.s.Types[name]
		if impl == nil || impl.Kind != schema.TypeKindObject {
			continue
		}
		sawImplementer = true
		if r.hidden[name] {
			continue
		}
		implField := impl.GetField(f.Name)
		if implField == nil {
			continue
		}
		if !r.baseHidden(implField) && !r.hidden[schema.GetNamedType(implField.Type)] {
			return true
		}
	}
	return !sawImplementer
}

func (r *resolver) memberVisible(name string) bool {
	member := r.s.Types[name]
	return member != nil && member.Kind == schema.TypeKindObject && !r.hidden[name]
}

func (r *resolver) inputValueVisible(iv *schema.InputValue) bool {
	return !r.baseHidden(iv) && !r.hidden[schema.GetNamedType(iv.Type)]
}

// materialize freezes the converged state into per-container visible lists.
func (r *resolver) materialize(passes int) *resolution {
	res := &resolution{
		hiddenType:  r.hidden,
		fields:      make(map[string][]*schema.Field),
		arguments:   make(map[*schema.Field][]*schema.InputValue),
		inputFields: make(map[string][]*schema.InputValue),
		enumValues:  make(map[string][]*schema.EnumValue),
	}
	res.stats = Stats{Types: len(r.s.Types), HiddenTypes: len(r.hidden), Passes: passes}

	for _, name := range r.names {
		if r.hidden[name] {
			continue
		}
		t := r.s.Types[name]
		switch t.Kind {
		case schema.TypeKindObject, schema.TypeKindInterface:
			fields := make([]*schema.Field, 0, len(t.Fields))
			for _, f := range t.Fields {
				if !r.fieldVisible(t, f) {
					continue
				}
				fields = append(fields, f)
				args := make([]*schema.InputValue, 0, len(f.Arguments))
				for _, a := range f.Arguments {
					if r.inputValueVisible(a) {
						args = append(args, a)
					}
				}
				res.arguments[f] = args
			}
			res.fields[name] = fields
		case schema.TypeKindInputObject:
			ivs := make([]*schema.InputValue, 0, len(t.InputFields))
			for _, iv := range t.InputFields {
				if r.inputValueVisible(iv) {
					ivs = append(ivs, iv)
				}
			}
			res.inputFields[name] = ivs
		case schema.TypeKindEnum:
			evs := make([]*schema.EnumValue, 0, len(t.EnumValues))
			for _, v := range t.EnumValues {
				if !r.baseHidden(v) {
					evs = append(evs, v)
				}
			}
			res.enumValues[name] = evs
		}
	}
	return res
}
