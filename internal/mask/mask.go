// Package mask decides per-request visibility of schema members and projects
// the schema through that decision.
//
// A Mask couples a Predicate ("is this member hidden for this request?") with
// propagation rules that keep the exposed schema consistent: hiding a type
// hides every field returning it and every argument accepting it, and any
// container left empty by masking (an object or interface with no visible
// fields, a union with no visible members, an enum with no visible values, an
// input object with no visible input fields) is itself hidden. The closure is
// computed by fixed-point iteration, so cyclic type graphs terminate.
//
// A Mask is immutable and may serve many concurrent requests; each request
// materializes its own View via Mask.View. Consumers that navigate the schema
// exclusively through a View cannot observe hidden members: lookups fail the
// same way they do for members that never existed.
package mask

import (
	"context"

	schema "github.com/hanpama/graphmask/internal/schema"
)

// Predicate reports whether a schema member is hidden for the request carried
// by ctx. Predicates must be side-effect free and safe for concurrent use; a
// panicking predicate is a configuration bug and is not recovered here.
type Predicate func(ctx context.Context, m schema.Member) bool

// HideNothing hides no members. Equivalent to a nil predicate.
func HideNothing(context.Context, schema.Member) bool { return false }

// HideTagged hides members whose metadata contains key, with any value.
func HideTagged(key string) Predicate {
	return func(_ context.Context, m schema.Member) bool {
		return m.MemberMetadata().Has(key)
	}
}

// HideTaggedValue hides members whose metadata maps key to exactly value.
func HideTaggedValue(key, value string) Predicate {
	return func(_ context.Context, m schema.Member) bool {
		v, ok := m.MemberMetadata().Get(key)
		return ok && v == value
	}
}

// Any hides a member when any of the given predicates hides it.
func Any(preds ...Predicate) Predicate {
	return func(ctx context.Context, m schema.Member) bool {
		for _, p := range preds {
			if p(ctx, m) {
				return true
			}
		}
		return false
	}
}

// All hides a member only when every given predicate hides it.
func All(preds ...Predicate) Predicate {
	return func(ctx context.Context, m schema.Member) bool {
		for _, p := range preds {
			if !p(ctx, m) {
				return false
			}
		}
		return len(preds) > 0
	}
}

// Mask is an immutable visibility decision shared across requests.
type Mask struct {
	hidden Predicate
	prune  bool
}

// Option configures a Mask at construction time.
type Option func(*Mask)

// WithPruneUnreachable additionally hides types that cannot be reached from
// the root operation types through visible fields, arguments, interfaces, or
// union members. Off by default: a type that is merely unreferenced is not
// hidden unless this option is set.
func WithPruneUnreachable() Option {
	return func(m *Mask) { m.prune = true }
}

// New creates a Mask from the given predicate. A nil predicate hides nothing,
// which still yields a useful View when combined with WithPruneUnreachable.
func New(hidden Predicate, opts ...Option) *Mask {
	m := &Mask{hidden: hidden}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// View binds the mask to one request. ctx is threaded into every predicate
// evaluation; the returned View memoizes all visibility decisions for its
// lifetime and must not outlive the request.
func (m *Mask) View(ctx context.Context, s *schema.Schema) *View {
	return &View{schema: s, mask: m, ctx: ctx}
}

// Unmasked returns a View of s that hides nothing. Useful for callers that
// need the View navigation contract without an active mask.
func Unmasked(s *schema.Schema) *View {
	return New(nil).View(context.Background(), s)
}
