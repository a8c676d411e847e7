// Package validator checks a parsed query document against a masked schema
// view. It covers the name-resolution rules that matter for masking: every
// reference to a hidden type, field, argument, or enum value fails with the
// same error a nonexistent one would produce, so clients cannot distinguish
// "hidden" from "never existed".
package validator

import (
	"strings"

	language "github.com/hanpama/graphmask/internal/language"
	mask "github.com/hanpama/graphmask/internal/mask"
	schema "github.com/hanpama/graphmask/internal/schema"
)

// Validate checks every operation and fragment in doc against the view.
// A nil return means the document only references visible schema members.
func Validate(view *mask.View, doc *language.QueryDocument) language.ErrorList {
	w := &walker{view: view, doc: doc, fragments: make(map[string]bool)}
	for _, op := range doc.Operations {
		w.validateOperation(op)
	}
	for _, frag := range doc.Fragments {
		w.validateFragment(frag)
	}
	return w.errs
}

type walker struct {
	view      *mask.View
	doc       *language.QueryDocument
	fragments map[string]bool // fragment names already validated
	errs      language.ErrorList
}

func (w *walker) addErr(pos *language.Position, format string, args ...any) {
	w.errs = append(w.errs, language.ErrorPosf(pos, format, args...))
}

func (w *walker) validateOperation(op *language.OperationDefinition) {
	var root *schema.Type
	switch op.Operation {
	case language.Query:
		root = w.view.QueryType()
	case language.Mutation:
		root = w.view.MutationType()
	case language.Subscription:
		root = w.view.SubscriptionType()
	}
	if root == nil {
		w.addErr(op.Position, "Schema is not configured for %ss", op.Operation)
		return
	}
	w.validateSelectionSet(root, op.SelectionSet)
}

func (w *walker) validateFragment(frag *language.FragmentDefinition) {
	if w.fragments[frag.Name] {
		return
	}
	w.fragments[frag.Name] = true
	cond := w.view.Type(frag.TypeCondition)
	if cond == nil {
		w.addErr(frag.Position, "No such type %s, so it can't be a fragment condition", frag.TypeCondition)
		return
	}
	w.validateSelectionSet(cond, frag.SelectionSet)
}

func (w *walker) validateSelectionSet(parent *schema.Type, set language.SelectionSet) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *language.Field:
			w.validateField(parent, s)
		case *language.InlineFragment:
			cond := parent
			if s.TypeCondition != "" {
				cond = w.view.Type(s.TypeCondition)
				if cond == nil {
					w.addErr(s.Position, "No such type %s, so it can't be a fragment condition", s.TypeCondition)
					continue
				}
			}
			w.validateSelectionSet(cond, s.SelectionSet)
		case *language.FragmentSpread:
			frag := w.doc.Fragments.ForName(s.Name)
			if frag == nil {
				w.addErr(s.Position, "Fragment %s was used, but not defined", s.Name)
				continue
			}
			w.validateFragment(frag)
		}
	}
}

func (w *walker) validateField(parent *schema.Type, field *language.Field) {
	if field.Name == "__typename" {
		return
	}
	if parent.Kind == schema.TypeKindUnion {
		w.addErr(field.Position, "Selections can't be made directly on unions (see selections on %s)", parent.Name)
		return
	}

	def := w.view.Field(parent, field.Name)
	if def == nil {
		w.addErr(field.Position, "Field '%s' doesn't exist on type '%s'", field.Name, parent.Name)
		return
	}

	for _, arg := range field.Arguments {
		if w.view.Argument(def, arg.Name) == nil {
			w.addErr(arg.Position, "Field '%s' doesn't accept argument '%s'", field.Name, arg.Name)
		}
	}
	for _, argDef := range w.view.Arguments(def) {
		if schema.IsNonNull(argDef.Type) && argDef.DefaultValue == nil && field.Arguments.ForName(argDef.Name) == nil {
			w.addErr(field.Position, "Field '%s' is missing required argument '%s'", field.Name, argDef.Name)
		}
	}

	named := w.view.Type(schema.GetNamedType(def.Type))
	if named == nil {
		// Fields returning hidden types are themselves hidden, so a visible
		// field always has a visible return type. Introspection meta fields
		// resolve against the extended schema instead.
		if !strings.HasPrefix(field.Name, "__") {
			w.addErr(field.Position, "Field '%s' doesn't exist on type '%s'", field.Name, parent.Name)
		}
		return
	}

	switch named.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		if len(field.SelectionSet) > 0 {
			w.addErr(field.Position, "Selections can't be made on scalars (field '%s' returns %s but has selections)", field.Name, named.Name)
		}
	default:
		if len(field.SelectionSet) == 0 {
			w.addErr(field.Position, "Field must have selections (field '%s' returns %s but has no selections)", field.Name, named.Name)
			return
		}
		w.validateSelectionSet(named, field.SelectionSet)
	}
}
