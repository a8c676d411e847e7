package executor

import (
	"context"
	"errors"
	"testing"

	language "github.com/hanpama/graphmask/internal/language"
	mask "github.com/hanpama/graphmask/internal/mask"
	schema "github.com/hanpama/graphmask/internal/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testSDL = `
type Query {
  phoneme(symbol: String!): Phoneme
  phonemes: [Phoneme!]!
  unit(id: ID!): EmicUnit
  secret: String
}

type Phoneme implements LanguageMember {
  symbol: String!
  name: String
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
`

func phonemeValue(symbol, name string) map[string]any {
	return map[string]any{
		"__typename": "Phoneme",
		"symbol":     symbol,
		"name":       name,
		"language":   map[string]any{"name": "English"},
	}
}

func newTestView(t *testing.T, pred mask.Predicate) *mask.View {
	t.Helper()
	s, err := schema.BuildFromSDL("test.graphql", testSDL)
	require.NoError(t, err)
	return mask.New(pred).View(context.Background(), s)
}

func hideNamed(name string) mask.Predicate {
	return func(_ context.Context, m schema.Member) bool {
		return m.MemberName() == name
	}
}

func execute(t *testing.T, view *mask.View, rt Runtime, query string, vars map[string]any) *ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	exec := NewExecutor(rt)
	return exec.ExecuteRequest(context.Background(), view, doc, "", vars, nil)
}

func TestExecuteSimpleQuery(t *testing.T) {
	view := newTestView(t, nil)
	rt := NewMapRuntime(map[string]Resolver{
		"Query.phoneme": func(_ context.Context, _ any, args map[string]any) (any, error) {
			return phonemeValue(args["symbol"].(string), "voiceless bilabial stop"), nil
		},
	})

	res := execute(t, view, rt, `{ phoneme(symbol: "p") { symbol name language { name } } }`, nil)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"phoneme": map[string]any{
			"symbol":   "p",
			"name":     "voiceless bilabial stop",
			"language": map[string]any{"name": "English"},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestHiddenFieldErrorsLikeUnknown(t *testing.T) {
	view := newTestView(t, hideNamed("secret"))
	rt := NewMapRuntime(nil)

	res := execute(t, view, rt, `{ secret }`, nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "Field 'secret' doesn't exist on type 'Query'", res.Errors[0].Message)

	res = execute(t, view, rt, `{ nonsense }`, nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "Field 'nonsense' doesn't exist on type 'Query'", res.Errors[0].Message)
}

func TestAbstractTypeResolution(t *testing.T) {
	view := newTestView(t, nil)
	rt := NewMapRuntime(map[string]Resolver{
		"Query.unit": ValueResolver(phonemeValue("p", "p sound")),
	})

	res := execute(t, view, rt, `{ unit(id: "1") { __typename ... on Phoneme { symbol } } }`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{
		"unit": map[string]any{"__typename": "Phoneme", "symbol": "p"},
	}, res.Data)
}

func TestAbstractResolutionToHiddenTypeDoesNotLeak(t *testing.T) {
	// The runtime resolves the union value to Phoneme while Phoneme is masked.
	// The error reads exactly as if Phoneme never existed.
	view := newTestView(t, hideNamed("Phoneme"))
	rt := NewMapRuntime(map[string]Resolver{
		"Query.unit": ValueResolver(phonemeValue("p", "p sound")),
	})

	res := execute(t, view, rt, `{ unit(id: "1") { __typename } }`, nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "Abstract type EmicUnit must resolve to an Object type at runtime. Got: Phoneme", res.Errors[0].Message)

	// Same message for a typename that never existed.
	rt = NewMapRuntime(map[string]Resolver{
		"Query.unit": ValueResolver(map[string]any{"__typename": "Morpheme"}),
	})
	res = execute(t, view, rt, `{ unit(id: "1") { __typename } }`, nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "Abstract type EmicUnit must resolve to an Object type at runtime. Got: Morpheme", res.Errors[0].Message)
}

func TestSkipIncludeDirectives(t *testing.T) {
	view := newTestView(t, nil)
	rt := NewMapRuntime(map[string]Resolver{
		"Query.phoneme": ValueResolver(phonemeValue("p", "p sound")),
	})

	res := execute(t, view, rt, `
query ($withName: Boolean!) {
  phoneme(symbol: "p") {
    symbol
    name @include(if: $withName)
  }
}`, map[string]any{"withName": false})
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"phoneme": map[string]any{"symbol": "p"}}, res.Data)

	res = execute(t, view, rt, `
{
  phoneme(symbol: "p") {
    symbol @skip(if: true)
    name
  }
}`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"phoneme": map[string]any{"name": "p sound"}}, res.Data)
}

func TestFragmentOnHiddenConditionSkipped(t *testing.T) {
	view := newTestView(t, hideNamed("Grapheme"))
	rt := NewMapRuntime(map[string]Resolver{
		"Query.phoneme": ValueResolver(phonemeValue("p", "p sound")),
	})

	// A fragment conditioned on a hidden type never applies.
	res := execute(t, view, rt, `
{
  phoneme(symbol: "p") {
    symbol
    ... on Grapheme { glyph }
  }
}`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"phoneme": map[string]any{"symbol": "p"}}, res.Data)
}

func TestResolverErrorBecomesFieldError(t *testing.T) {
	view := newTestView(t, nil)
	rt := NewMapRuntime(map[string]Resolver{
		"Query.phoneme": ErrorResolver(errors.New("backend unavailable")),
	})

	res := execute(t, view, rt, `{ phoneme(symbol: "p") { symbol } }`, nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "backend unavailable", res.Errors[0].Message)
	require.Equal(t, Path{"phoneme"}, res.Errors[0].Path)
	require.Equal(t, map[string]any{"phoneme": nil}, res.Data)
}

func TestNonNullFieldNullPropagates(t *testing.T) {
	view := newTestView(t, nil)
	rt := NewMapRuntime(map[string]Resolver{
		"Query.phoneme": ValueResolver(map[string]any{"name": "p sound"}),
	})

	// symbol is String! and the value has no symbol key.
	res := execute(t, view, rt, `{ phoneme(symbol: "p") { symbol } }`, nil)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "Cannot return null for non-nullable field")
	require.Equal(t, map[string]any{"phoneme": nil}, res.Data)
}

func TestVariableCoercion(t *testing.T) {
	view := newTestView(t, nil)
	var gotArgs map[string]any
	rt := NewMapRuntime(map[string]Resolver{
		"Query.phoneme": func(_ context.Context, _ any, args map[string]any) (any, error) {
			gotArgs = args
			return nil, nil
		},
	})

	res := execute(t, view, rt, `
query ($s: String!) { phoneme(symbol: $s) { symbol } }
`, map[string]any{"s": "q"})
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"symbol": "q"}, gotArgs)
}

func TestOperationSelection(t *testing.T) {
	view := newTestView(t, nil)
	rt := NewMapRuntime(map[string]Resolver{
		"Query.secret": ValueResolver("ok"),
	})
	doc, err := language.ParseQuery(`
query A { secret }
query B { phonemes { symbol } }
`)
	require.NoError(t, err)
	exec := NewExecutor(rt)

	res := exec.ExecuteRequest(context.Background(), view, doc, "A", nil, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"secret": "ok"}, res.Data)

	res = exec.ExecuteRequest(context.Background(), view, doc, "C", nil, nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "operation not found", res.Errors[0].Message)
}
