package mask

import (
	"context"
	"strings"
	"testing"

	schemapkg "github.com/hanpama/graphmask/internal/schema"
	"github.com/stretchr/testify/require"
)

func TestRenderSDLUnmasked(t *testing.T) {
	s := buildTestSchema(t)
	sdl := RenderSDL(Unmasked(s))

	require.Contains(t, sdl, "type Query {")
	require.Contains(t, sdl, "type Phoneme implements LanguageMember {")
	require.Contains(t, sdl, "union EmicUnit = Phoneme | Grapheme")
	require.Contains(t, sdl, "enum Manner {")
	require.Contains(t, sdl, "input WithinInput {")
	require.Contains(t, sdl, "phoneme(symbol: String!): Phoneme")
	// Built-in scalars are not dumped.
	require.NotContains(t, sdl, "scalar String")
}

func TestRenderSDLMasked(t *testing.T) {
	s := buildTestSchema(t)
	v := New(hideNamed("Phoneme")).View(context.Background(), s)
	sdl := RenderSDL(v)

	require.NotContains(t, sdl, "Phoneme")
	require.Contains(t, sdl, "union EmicUnit = Grapheme")
	require.Contains(t, sdl, "interface LanguageMember {")
	require.NotContains(t, sdl, "phonemes")
}

func TestRenderSDLRoundTrips(t *testing.T) {
	s := buildTestSchema(t)
	sdl := RenderSDL(New(hideNamed("Phoneme")).View(context.Background(), s))

	rebuilt, err := schemapkg.BuildFromSDL("rendered.graphql", sdl)
	require.NoError(t, err)
	require.Nil(t, rebuilt.Types["Phoneme"])
	require.NotNil(t, rebuilt.Types["Grapheme"])
}

func TestRenderSDLDeprecation(t *testing.T) {
	sdl := `
type Query {
  old: String @deprecated(reason: "use new")
  new: String
}
`
	s, err := schemapkg.BuildFromSDL("dep.graphql", sdl)
	require.NoError(t, err)
	out := RenderSDL(Unmasked(s))
	require.True(t, strings.Contains(out, `old: String @deprecated(reason: "use new")`), out)
}
