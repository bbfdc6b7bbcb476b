package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"diaggroups/internal/extractor"
	"diaggroups/internal/graph"
	"diaggroups/internal/tablegen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func buildGraph(t *testing.T, src string) *graph.Graph {
	t.Helper()
	file, err := tablegen.Parse("test.td", []byte(src))
	require.NoError(t, err)
	b := graph.NewBuilder()
	extractor.NewExtractor(nil).Walk(file, b)
	return b.Graph()
}

func render(t *testing.T, g *graph.Graph, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g, opts))
	return buf.String()
}

const scenarioB = `
def Bar : DiagGroup<"unused-variable", [Foo]>;
def Foo : DiagGroup<"format">;
`

func TestWrite_Text(t *testing.T) {
	t.Run("Single switch", func(t *testing.T) {
		g := buildGraph(t, `def Foo : DiagGroup<"format">;`)
		assert.Equal(t, "-Wformat\n", render(t, g, Options{}))
	})

	t.Run("All switches", func(t *testing.T) {
		g := buildGraph(t, scenarioB)
		assert.Equal(t, "-Wformat\n-Wunused-variable\n#   -Wformat\n", render(t, g, Options{}))
	})

	t.Run("Top level only", func(t *testing.T) {
		g := buildGraph(t, scenarioB)
		assert.Equal(t, "-Wunused-variable\n#   -Wformat\n", render(t, g, Options{TopLevel: true}))
	})

	t.Run("Unique", func(t *testing.T) {
		g := buildGraph(t, scenarioB)
		assert.Equal(t, "-Wformat\n-Wunused-variable\n", render(t, g, Options{Unique: true}))
		assert.Equal(t, "-Wunused-variable\n", render(t, g, Options{TopLevel: true, Unique: true}))
	})

	t.Run("Empty switch name", func(t *testing.T) {
		g := buildGraph(t, `def Empty : DiagGroup<"", [Foo]>; def Foo : DiagGroup<"format">;`)
		assert.Equal(t, "-W\n#   -Wformat\n-Wformat\n", render(t, g, Options{}))
	})

	t.Run("Nested indentation", func(t *testing.T) {
		g := buildGraph(t, `
def All : DiagGroup<"all", [Most]>;
def Most : DiagGroup<"most", [Unused, Format]>;
def Unused : DiagGroup<"unused">;
def Format : DiagGroup<"format">;
`)
		assert.Equal(t, "-Wall\n#   -Wmost\n#     -Wformat\n#     -Wunused\n", render(t, g, Options{TopLevel: true}))
	})

	t.Run("Idempotent", func(t *testing.T) {
		src := `
def A : DiagGroup<"a", [C, B]>;
def B : DiagGroup<"b", [C]>;
def C : DiagGroup<"c">;
def : DiagGroup<"d", [A, B, C]>;
`
		first := render(t, buildGraph(t, src), Options{})
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, render(t, buildGraph(t, src), Options{}))
		}
	})
}

func TestWrite_Text_Cycles(t *testing.T) {
	g := buildGraph(t, `
def A : DiagGroup<"a", [B]>;
def B : DiagGroup<"b", [A]>;
`)

	t.Run("Fail leaves no output", func(t *testing.T) {
		var buf bytes.Buffer
		err := Write(&buf, g, Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, graph.ErrCycle))
		assert.Empty(t, buf.String())
	})

	t.Run("Truncate", func(t *testing.T) {
		opts := Options{Expand: graph.ExpandOptions{Cycles: graph.CyclesTruncate}}
		assert.Equal(t,
			"-Wa\n#   -Wb\n#     -Wa (cycle)\n-Wb\n#   -Wa\n#     -Wb (cycle)\n",
			render(t, g, opts))
	})
}

func TestWrite_Text_Unresolved(t *testing.T) {
	g := buildGraph(t, `def Foo : DiagGroup<"foo", [Missing, Bar]>; def Bar : DiagGroup<"bar">;`)

	_, err := Build(g, Options{})
	assert.ErrorIs(t, err, graph.ErrUnresolvedReference)

	opts := Options{Expand: graph.ExpandOptions{Unresolved: graph.UnresolvedMark}}
	assert.Equal(t, "-Wbar\n-Wfoo\n#   -Wbar\n#   <unresolved Missing>\n", render(t, g, opts))

	opts.Expand.Unresolved = graph.UnresolvedSkip
	assert.Equal(t, "-Wbar\n-Wfoo\n#   -Wbar\n", render(t, g, opts))
}

func TestWrite_Structured(t *testing.T) {
	g := buildGraph(t, `
def All : DiagGroup<"all", [Most]>;
def Most : DiagGroup<"most", [Format]>;
def Format : DiagGroup<"format">;
`)

	t.Run("JSON", func(t *testing.T) {
		out := render(t, g, Options{Format: FormatJSON, TopLevel: true})

		var got []Switch
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "all", got[0].Name)
		assert.Equal(t, "All", got[0].Record)
		assert.True(t, got[0].Root)
		require.Len(t, got[0].Enables, 1)
		assert.Equal(t, "most", got[0].Enables[0].Switch)
		require.Len(t, got[0].Enables[0].Enables, 1)
		assert.Equal(t, "format", got[0].Enables[0].Enables[0].Switch)
	})

	t.Run("YAML", func(t *testing.T) {
		out := render(t, g, Options{Format: FormatYAML, Unique: true})

		var got []Switch
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		require.Len(t, got, 3)
		assert.Equal(t, "format", got[1].Name)
		assert.Equal(t, []string{"most"}, got[1].EnabledBy)
		assert.False(t, got[1].Root)
		assert.Empty(t, got[1].Enables)
	})

	t.Run("Empty graph", func(t *testing.T) {
		empty := buildGraph(t, ``)
		assert.Equal(t, "[]\n", render(t, empty, Options{Format: FormatJSON}))
		assert.Equal(t, "", render(t, empty, Options{}))
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	var buf bytes.Buffer
	assert.Error(t, Write(&buf, buildGraph(t, ``), Options{Format: "xml"}))
}

func TestWrite_Mermaid(t *testing.T) {
	g := buildGraph(t, `
def All : DiagGroup<"all", [Most, Format]>;
def Most : DiagGroup<"most", [Format]>;
def Format : DiagGroup<"format", [Missing]>;
`)
	opts := Options{
		Format:   FormatMermaid,
		TopLevel: true,
		Expand:   graph.ExpandOptions{Unresolved: graph.UnresolvedMark},
	}
	assert.Equal(t, "```mermaid\n"+
		"graph TD\n"+
		"    n0[\"-Wall\"]\n"+
		"    n1[\"-Wformat\"]\n"+
		"    n2[\"#lt;unresolved Missing#gt;\"]\n"+
		"    n3[\"-Wmost\"]\n"+
		"    n0 --> n1\n"+
		"    n1 --> n2\n"+
		"    n0 --> n3\n"+
		"    n3 --> n1\n"+
		"```\n", render(t, g, opts))

	opts.Unique = true
	opts.TopLevel = false
	assert.Equal(t, "```mermaid\ngraph TD\n    n0[\"-Wall\"]\n    n1[\"-Wformat\"]\n    n2[\"-Wmost\"]\n```\n", render(t, g, opts))
}
