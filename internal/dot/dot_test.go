package dot

import (
	"strings"
	"testing"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const versionGraph = `digraph G {
"dpkg/1.17.0" [style="filled",fillcolor="chartreuse",label="dpkg/1.17.0"]
"dpkg/1.16.1" [style="filled",fillcolor="salmon",label="dpkg/1.16.1"]
"dpkg/1.16.0" [style="filled",fillcolor="salmon",label="dpkg/1.16.0"]
"dpkg/1.15.9" [style="filled",fillcolor="white",label="dpkg/1.15.9\n(some versions)"]
"dpkg/1.16.1"->"dpkg/1.16.0" [dir="back"]
"dpkg/1.17.0"->"dpkg/1.16.1" [dir="back"]
"dpkg/1.16.0"->"dpkg/1.15.9" [dir="back"]

}
`

func TestParse(t *testing.T) {
	g, err := Parse(versionGraph)
	require.NoError(t, err)

	assert.Len(t, g.Nodes, 4)
	assert.Equal(t, []string{"dpkg/1.15.9"}, g.Roots())
	assert.Equal(t, []string{"dpkg/1.16.0"}, g.Children("dpkg/1.15.9"))
	assert.Equal(t, []string{"dpkg/1.17.0"}, g.Children("dpkg/1.16.1"))
	assert.Empty(t, g.Children("dpkg/1.17.0"))

	n := g.Nodes["dpkg/1.15.9"]
	assert.Equal(t, "dpkg/1.15.9\n(some versions)", n.Label())
	assert.Equal(t, "white", n.Get("fillcolor"))
	assert.Equal(t, "", n.Get("shape"))
}

func TestNode_LabelDefaultsToName(t *testing.T) {
	g, err := Parse("digraph G {\n\"1.0-1\" [fillcolor=\"salmon\"]\n}")
	require.NoError(t, err)

	assert.Equal(t, "1.0-1", g.Nodes["1.0-1"].Label())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not a digraph", "graph G {\n}"},
		{"html error page", "<html><body>500</body></html>"},
		{"unknown line", "digraph G {\nrankdir=LR\n}"},
		{"forward edge", "digraph G {\n\"a\" [label=\"a\"]\n\"b\" [label=\"b\"]\n\"a\"->\"b\"\n}"},
		{"edge to unknown node", "digraph G {\n\"a\" [label=\"a\"]\n\"a\"->\"b\" [dir=\"back\"]\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)

			assert.ErrorIs(t, err, apperrors.ErrDotSyntax)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	g, err := Parse("digraph G {\n}\n")
	require.NoError(t, err)

	assert.Empty(t, g.Nodes)
	assert.Equal(t, "", g.Format(Node.Label, "*"))
}

func TestGraph_Format(t *testing.T) {
	g, err := Parse(versionGraph)
	require.NoError(t, err)

	render := func(n Node) string {
		return strings.ToUpper(n.Get("fillcolor")) + " " + n.Label()
	}
	want := "" +
		"∙ WHITE dpkg/1.15.9\n" +
		"  (some versions)\n" +
		"  ∙ SALMON dpkg/1.16.0\n" +
		"    ∙ SALMON dpkg/1.16.1\n" +
		"      ∙ CHARTREUSE dpkg/1.17.0\n"

	assert.Equal(t, want, g.Format(render, "∙"))
}

func TestGraph_FormatVisitsSharedNodesOnce(t *testing.T) {
	g, err := Parse(`digraph G {
"b" [label="b"]
"a" [label="a"]
"c" [label="c"]
"d" [label="d"]
"b"->"a" [dir="back"]
"c"->"a" [dir="back"]
"d"->"b" [dir="back"]
"d"->"c" [dir="back"]
}`)
	require.NoError(t, err)

	want := "" +
		"* a\n" +
		"  * b\n" +
		"    * d\n" +
		"  * c\n"

	assert.Equal(t, want, g.Format(Node.Label, "*"))
}
