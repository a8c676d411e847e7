package validator

import (
	"context"
	"testing"

	language "github.com/hanpama/graphmask/internal/language"
	mask "github.com/hanpama/graphmask/internal/mask"
	schema "github.com/hanpama/graphmask/internal/schema"
	"github.com/stretchr/testify/require"
)

const testSDL = `
type Query {
  phoneme(symbol: String!): Phoneme
  phonemes: [Phoneme!]!
  languages: [Language!]!
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
  members: [LanguageMember!]
}
`

func buildView(t *testing.T, pred mask.Predicate) *mask.View {
	t.Helper()
	s, err := schema.BuildFromSDL("test.graphql", testSDL)
	require.NoError(t, err)
	return mask.New(pred).View(context.Background(), s)
}

func hideType(name string) mask.Predicate {
	return func(_ context.Context, m schema.Member) bool {
		return m.MemberName() == name
	}
}

func validate(t *testing.T, v *mask.View, query string) language.ErrorList {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return Validate(v, doc)
}

func TestValidQueryPasses(t *testing.T) {
	v := buildView(t, nil)
	errs := validate(t, v, `{ phoneme(symbol: "p") { symbol } }`)
	require.Empty(t, errs)
}

func TestHiddenFieldReadsAsNonexistent(t *testing.T) {
	v := buildView(t, hideType("Phoneme"))

	errs := validate(t, v, `{ phoneme(symbol: "p") { symbol } }`)
	require.Len(t, errs, 1)
	require.Equal(t, "Field 'phoneme' doesn't exist on type 'Query'", errs[0].Message)

	// Identical wording for a field that never existed.
	errs = validate(t, v, `{ zzzz { symbol } }`)
	require.Len(t, errs, 1)
	require.Equal(t, "Field 'zzzz' doesn't exist on type 'Query'", errs[0].Message)
}

func TestHiddenTypeAsFragmentCondition(t *testing.T) {
	v := buildView(t, hideType("Phoneme"))

	errs := validate(t, v, `
{ languages { members { ... on Phoneme { symbol } } } }
`)
	require.Len(t, errs, 1)
	require.Equal(t, "No such type Phoneme, so it can't be a fragment condition", errs[0].Message)

	errs = validate(t, v, `
query { languages { members { ...ph } } }
fragment ph on Phoneme { symbol }
`)
	require.Len(t, errs, 1)
	require.Equal(t, "No such type Phoneme, so it can't be a fragment condition", errs[0].Message)
}

func TestUnknownArgument(t *testing.T) {
	v := buildView(t, nil)
	errs := validate(t, v, `{ phoneme(symbol: "p", lang: "en") { symbol } }`)
	require.Len(t, errs, 1)
	require.Equal(t, "Field 'phoneme' doesn't accept argument 'lang'", errs[0].Message)
}

func TestMissingRequiredArgument(t *testing.T) {
	v := buildView(t, nil)
	errs := validate(t, v, `{ phoneme { symbol } }`)
	require.Len(t, errs, 1)
	require.Equal(t, "Field 'phoneme' is missing required argument 'symbol'", errs[0].Message)
}

func TestHiddenArgumentReadsAsUnknown(t *testing.T) {
	v := buildView(t, hideType("symbol"))
	// Hiding the argument makes supplying it an error, same as a made-up name.
	errs := validate(t, v, `{ phoneme(symbol: "p") { language { name } } }`)
	require.Len(t, errs, 1)
	require.Equal(t, "Field 'phoneme' doesn't accept argument 'symbol'", errs[0].Message)
}

func TestSelectionShapeRules(t *testing.T) {
	v := buildView(t, nil)

	errs := validate(t, v, `{ phonemes { symbol { x } } }`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Message, "Selections can't be made on scalars")

	errs = validate(t, v, `{ phonemes }`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Message, "Field must have selections")
}

func TestUndefinedFragmentSpread(t *testing.T) {
	v := buildView(t, nil)
	errs := validate(t, v, `{ phonemes { ...missing } }`)
	require.Len(t, errs, 1)
	require.Equal(t, "Fragment missing was used, but not defined", errs[0].Message)
}

func TestTypenameAlwaysAllowed(t *testing.T) {
	v := buildView(t, hideType("Phoneme"))
	errs := validate(t, v, `{ __typename languages { __typename name } }`)
	require.Empty(t, errs)
}

func TestMutationWithoutMutationType(t *testing.T) {
	v := buildView(t, nil)
	errs := validate(t, v, `mutation { rename }`)
	require.Len(t, errs, 1)
	require.Equal(t, "Schema is not configured for mutations", errs[0].Message)
}
