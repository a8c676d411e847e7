package mask

import (
	schema "github.com/hanpama/graphmask/internal/schema"
)

// pruneUnreachable hides types that no visible member chain reaches from the
// root operation types, then re-runs the collapse closure since removing a
// type can empty containers elsewhere. Repeats until stable. Returns the
// number of extra closure passes consumed.
func (r *resolver) pruneUnreachable() int {
	passes := 0
	for {
		reach := r.reachable()
		changed := false
		for _, name := range r.names {
			if r.hidden[name] || r.exempt(name) {
				continue
			}
			if !reach[name] {
				r.hidden[name] = true
				changed = true
			}
		}
		if !changed {
			return passes
		}
		passes += r.iterate()
	}
}

// reachable walks the visible structure from the root operation types:
// field return types, argument types, input field types, implemented
// interfaces, and abstract-type members.
func (r *resolver) reachable() map[string]bool {
	seen := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		if name == "" || seen[name] || r.hidden[name] {
			return
		}
		t := r.s.Types[name]
		if t == nil {
			return
		}
		seen[name] = true
		switch t.Kind {
		case schema.TypeKindObject, schema.TypeKindInterface:
			for _, f := range t.Fields {
				if !r.fieldVisible(t, f) {
					continue
				}
				visit(schema.GetNamedType(f.Type))
				for _, a := range f.Arguments {
					if r.inputValueVisible(a) {
						visit(schema.GetNamedType(a.Type))
					}
				}
			}
			for _, iface := range t.Interfaces {
				visit(iface)
			}
			for _, member := range t.PossibleTypes {
				visit(member)
			}
		case schema.TypeKindUnion:
			for _, member := range t.PossibleTypes {
				visit(member)
			}
		case schema.TypeKindInputObject:
			for _, iv := range t.InputFields {
				if r.inputValueVisible(iv) {
					visit(schema.GetNamedType(iv.Type))
				}
			}
		}
	}
	visit(r.s.QueryType)
	visit(r.s.MutationType)
	visit(r.s.SubscriptionType)
	return seen
}
