package introspection

import (
	"context"
	"testing"

	executor "github.com/hanpama/graphmask/internal/executor"
	language "github.com/hanpama/graphmask/internal/language"
	mask "github.com/hanpama/graphmask/internal/mask"
	schema "github.com/hanpama/graphmask/internal/schema"
	"github.com/stretchr/testify/require"
)

const testSDL = `
type Query {
  phonemes: [Phoneme!]!
  graphemes: [Grapheme!]!
  search(within: WithinInput): [Language!]
}

type Phoneme implements LanguageMember {
  symbol: String!
  language: Language
}

type Grapheme implements LanguageMember {
  glyph: String!
  language: Language
}

interface LanguageMember {
  language: Language
}

type Language {
  name: String!
}

union EmicUnit = Phoneme | Grapheme

input WithinInput {
  latSouth: Float!
  latNorth: Float!
}
`

type introspectionFixture struct {
	wrapper *IntrospectionWrapper
	exec    *executor.Executor
}

func newFixture(t *testing.T) *introspectionFixture {
	t.Helper()
	s, err := schema.BuildFromSDL("test.graphql", testSDL)
	require.NoError(t, err)
	wrapper := Wrap(executor.NewMapRuntime(nil), s)
	return &introspectionFixture{
		wrapper: wrapper,
		exec:    executor.NewExecutor(wrapper.Runtime),
	}
}

func hideNamed(names ...string) mask.Predicate {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(_ context.Context, m schema.Member) bool {
		return set[m.MemberName()]
	}
}

// query runs an introspection query through a view built from pred.
func (f *introspectionFixture) query(t *testing.T, pred mask.Predicate, q string) map[string]any {
	t.Helper()
	view := mask.New(pred).View(context.Background(), f.wrapper.Schema)
	ctx := mask.NewContext(context.Background(), view)

	doc, err := language.ParseQuery(q)
	require.NoError(t, err)
	res := f.exec.ExecuteRequest(ctx, view, doc, "", nil, nil)
	require.Empty(t, res.Errors)
	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	return data
}

func listedTypeNames(t *testing.T, data map[string]any) []string {
	t.Helper()
	sch, ok := data["__schema"].(map[string]any)
	require.True(t, ok)
	raw, ok := sch["types"].([]any)
	require.True(t, ok)
	names := make([]string, 0, len(raw))
	for _, item := range raw {
		names = append(names, item.(map[string]any)["name"].(string))
	}
	return names
}

func TestSchemaTypesOmitHidden(t *testing.T) {
	f := newFixture(t)

	data := f.query(t, nil, `{ __schema { types { name } } }`)
	require.Contains(t, listedTypeNames(t, data), "Phoneme")

	data = f.query(t, hideNamed("Phoneme"), `{ __schema { types { name } } }`)
	names := listedTypeNames(t, data)
	require.NotContains(t, names, "Phoneme")
	require.Contains(t, names, "Grapheme")
	// Introspection types are never listed.
	require.NotContains(t, names, "__Schema")
}

func TestTypeByNameReturnsNullForHidden(t *testing.T) {
	f := newFixture(t)

	data := f.query(t, hideNamed("Phoneme"), `{ hidden: __type(name: "Phoneme") { name } missing: __type(name: "Morpheme") { name } }`)
	require.Nil(t, data["hidden"])
	require.Nil(t, data["missing"])

	data = f.query(t, nil, `{ __type(name: "Phoneme") { name kind } }`)
	require.Equal(t, map[string]any{"name": "Phoneme", "kind": "OBJECT"}, data["__type"])
}

func TestUnionPossibleTypesOmitHidden(t *testing.T) {
	f := newFixture(t)

	data := f.query(t, hideNamed("Phoneme"), `{ __type(name: "EmicUnit") { possibleTypes { name } } }`)
	union := data["__type"].(map[string]any)
	require.Equal(t, []any{map[string]any{"name": "Grapheme"}}, union["possibleTypes"])
}

func TestInterfacesListingOmitsHidden(t *testing.T) {
	f := newFixture(t)

	data := f.query(t, nil, `{ __type(name: "Phoneme") { interfaces { name } } }`)
	typ := data["__type"].(map[string]any)
	require.Equal(t, []any{map[string]any{"name": "LanguageMember"}}, typ["interfaces"])

	// Hiding the interface removes it from the listing; the object stays.
	data = f.query(t, hideNamed("LanguageMember"), `{ __type(name: "Phoneme") { name interfaces { name } } }`)
	typ = data["__type"].(map[string]any)
	require.Equal(t, "Phoneme", typ["name"])
	require.Equal(t, []any{}, typ["interfaces"])
}

func TestHiddenFieldsAbsentFromFieldListing(t *testing.T) {
	f := newFixture(t)

	data := f.query(t, hideNamed("symbol"), `{ __type(name: "Phoneme") { fields { name } } }`)
	typ := data["__type"].(map[string]any)
	require.Equal(t, []any{map[string]any{"name": "language"}}, typ["fields"])
}

func TestCollapsedInputObjectInvisible(t *testing.T) {
	f := newFixture(t)

	data := f.query(t, hideNamed("latSouth", "latNorth"), `
{
  __type(name: "WithinInput") { name }
  __schema { types { name } }
}`)
	require.Nil(t, data["__type"])
	require.NotContains(t, listedTypeNames(t, data), "WithinInput")
}

func TestFieldTypeAndArgs(t *testing.T) {
	f := newFixture(t)

	data := f.query(t, nil, `
{
  __type(name: "Query") {
    fields {
      name
      args { name type { kind ofType { name } } }
      type { kind }
    }
  }
}`)
	typ := data["__type"].(map[string]any)
	fields := typ["fields"].([]any)
	// Fields are listed in name order.
	first := fields[0].(map[string]any)
	require.Equal(t, "graphemes", first["name"])
	require.Equal(t, map[string]any{"kind": "NON_NULL"}, first["type"])

	var search map[string]any
	for _, f := range fields {
		if fm := f.(map[string]any); fm["name"] == "search" {
			search = fm
		}
	}
	require.NotNil(t, search)
	args := search["args"].([]any)
	require.Len(t, args, 1)
	arg := args[0].(map[string]any)
	require.Equal(t, "within", arg["name"])
	require.Equal(t, map[string]any{"kind": "INPUT_OBJECT", "ofType": nil}, arg["type"])
}

func TestFallbackWithoutViewShowsAll(t *testing.T) {
	f := newFixture(t)

	// No view in context: the wrapper answers from its unmasked fallback.
	doc, err := language.ParseQuery(`{ __type(name: "Phoneme") { name } }`)
	require.NoError(t, err)
	view := mask.Unmasked(f.wrapper.Schema)
	res := f.exec.ExecuteRequest(context.Background(), view, doc, "", nil, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"__type": map[string]any{"name": "Phoneme"}}, res.Data.(map[string]any))
}
