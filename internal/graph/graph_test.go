package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ares-ubo/internal/resolve"
)

func nestedTrace() []resolve.Line {
	return []resolve.Line{
		{Depth: 0, Text: "Alfa s.r.o. (IČO 12345678)"},
		{Depth: 1, Text: "Společníci:"},
		{Depth: 2, Text: "Jan Novák — 50.00% (efektivně 50.00%)"},
		{Depth: 2, Text: "Beta s.r.o. — 50.00% (IČO 87654321)"},
		{Depth: 3, Text: "Beta s.r.o. (IČO 87654321)"},
		{Depth: 4, Text: "Společníci:"},
		{Depth: 5, Text: "Eva Malá — 40.00% (efektivně 20.00%)"},
	}
}

func edgeBetween(g *Graph, from, to string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

func TestBuildProjectsCompaniesAndPersons(t *testing.T) {
	g := Build(nestedTrace(), "12345678", "Ownership_12345678")

	var companies, persons, labels int
	for _, n := range g.Nodes {
		switch n.Kind {
		case NodeCompany:
			companies++
		case NodePerson:
			persons++
		case NodeLabel:
			labels++
		}
	}
	assert.Equal(t, 2, companies)
	assert.Equal(t, 2, persons)
	assert.Equal(t, 2, labels)
	assert.Len(t, g.Edges, 3)
}

func TestBuildEdgeCarriesShareLabel(t *testing.T) {
	g := Build(nestedTrace(), "12345678", "T")

	e, ok := edgeBetween(g, "ICO_12345678", "ICO_87654321")
	require.True(t, ok)
	assert.Equal(t, "50.00%", e.Label)
}

func TestBuildLevelsFollowTreeTiers(t *testing.T) {
	g := Build(nestedTrace(), "12345678", "T")

	byID := make(map[string]Node)
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, 0, byID["ICO_12345678"].Level)
	assert.Equal(t, 1, byID["ICO_87654321"].Level)
}

func TestBuildSkipsNoticeLines(t *testing.T) {
	lines := append(nestedTrace(), resolve.Line{
		Depth: 2, Text: "⚠️ Nelze načíst ARES VR pro 00000009: HTTP 404",
	})
	g := Build(lines, "12345678", "T")
	for _, n := range g.Nodes {
		assert.NotContains(t, n.Label, "⚠️")
	}
}

func TestBuildDedupsRepeatedEdges(t *testing.T) {
	lines := append(nestedTrace(), nestedTrace()[3:]...)
	g := Build(lines, "12345678", "T")

	seen := make(map[[2]string]int)
	for _, e := range g.Edges {
		seen[[2]string{e.From, e.To}]++
	}
	assert.Equal(t, 1, seen[[2]string{"ICO_12345678", "ICO_87654321"}])
}

func TestDOTRendering(t *testing.T) {
	g := Build(nestedTrace(), "12345678", "Ownership_12345678")
	dot := g.DOT()

	assert.Contains(t, dot, "digraph ownership {")
	assert.Contains(t, dot, `label="Ownership_12345678"`)
	assert.Contains(t, dot, "shape=box")
	assert.Contains(t, dot, "shape=ellipse")
	assert.Contains(t, dot, "#2EA39C")
	assert.Contains(t, dot, "edge [dir=back")
	assert.Contains(t, dot, "rank=same")
	// label-group nodes never render
	assert.NotContains(t, dot, "Společníci")
}

func TestDOTEdgeLabels(t *testing.T) {
	g := Build(nestedTrace(), "12345678", "T")
	dot := g.DOT()
	assert.Contains(t, dot, `ICO_12345678 -> ICO_87654321 [label="50.00%"]`)
}
