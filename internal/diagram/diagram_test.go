package diagram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoNodeDiagram() *Diagram {
	d := New()
	d.AddNode(NewNode("n1", KindStart, 100, 100))
	d.AddNode(NewNode("n2", KindProcess, 300, 100))
	return d
}

func TestEnsureDefaultsIdempotent(t *testing.T) {
	e := Edge{ID: "e1", SourceID: "a", TargetID: "b"}
	e.EnsureDefaults()

	assert.Equal(t, LineSolid, e.LineStyle)
	assert.Equal(t, DefaultLineColor, e.LineColor)
	assert.InDelta(t, DefaultLineWidth, e.LineWidth, 1e-9)
	assert.Equal(t, DefaultLabelColor, e.LabelColor)
	assert.InDelta(t, float64(DefaultLabelFontSize), e.LabelFontSize, 1e-9)
	assert.False(t, e.LabelBold)

	// A second pass must not clobber explicit values.
	e.LineColor = "#ff0000"
	e.EnsureDefaults()
	assert.Equal(t, "#ff0000", e.LineColor)
}

func TestEdgePathEndpointsOnOutlines(t *testing.T) {
	d := twoNodeDiagram()
	d.AddEdge(Edge{ID: "e1", SourceID: "n1", TargetID: "n2"})

	path, ok := d.EdgePath(&d.Edges[0])
	require.True(t, ok)

	// Horizontal neighbors: the resolved default bend is the midpoint of the
	// two provisional boundary points (160,100) and (230,100), not of the
	// centers.
	assert.InDelta(t, 100.0, path.Bend.Y, 1e-9)
	assert.InDelta(t, 195.0, path.Bend.X, 1e-9)

	// Source point: on the start ellipse (rx=60) plus the 2-unit gap.
	assert.InDelta(t, 100.0+60.0+2.0, path.Source.X, 1e-9)
	assert.InDelta(t, 100.0, path.Source.Y, 1e-9)

	// Target point: on the process rect's left side (hw=70) minus the gap.
	assert.InDelta(t, 300.0-70.0-2.0, path.Target.X, 1e-9)
	assert.InDelta(t, 100.0, path.Target.Y, 1e-9)
}

func TestEdgePathExplicitBend(t *testing.T) {
	d := twoNodeDiagram()
	bx, by := 200.0, 250.0
	d.AddEdge(Edge{ID: "e1", SourceID: "n1", TargetID: "n2", BendX: &bx, BendY: &by})

	path, ok := d.EdgePath(&d.Edges[0])
	require.True(t, ok)
	assert.Equal(t, bx, path.Bend.X)
	assert.Equal(t, by, path.Bend.Y)

	// With an explicit bend below the nodes, both endpoints leave through
	// their lower outline halves.
	assert.Greater(t, path.Source.Y, 100.0)
	assert.Greater(t, path.Target.Y, 100.0)
}

func TestEdgePathMissingEndpoint(t *testing.T) {
	d := twoNodeDiagram()
	d.AddEdge(Edge{ID: "e1", SourceID: "n1", TargetID: "ghost"})

	_, ok := d.EdgePath(&d.Edges[0])
	assert.False(t, ok)
}

func TestEdgePathCoincidentNodes(t *testing.T) {
	d := New()
	d.AddNode(NewNode("a", KindProcess, 50, 50))
	d.AddNode(NewNode("b", KindProcess, 50, 50))
	d.AddEdge(Edge{ID: "e", SourceID: "a", TargetID: "b"})

	// Degenerate geometry must not panic or produce NaN.
	path, ok := d.EdgePath(&d.Edges[0])
	require.True(t, ok)
	assert.False(t, math.IsNaN(path.Source.X))
	assert.False(t, math.IsNaN(path.Bend.X))
}

func TestRemoveNodesCascadesEdges(t *testing.T) {
	d := twoNodeDiagram()
	d.AddNode(NewNode("n3", KindEnd, 500, 100))
	d.AddEdge(Edge{ID: "e1", SourceID: "n1", TargetID: "n2"})
	d.AddEdge(Edge{ID: "e2", SourceID: "n2", TargetID: "n3"})

	d.RemoveNodes([]string{"n1"})

	assert.Nil(t, d.NodeByID("n1"))
	assert.NotNil(t, d.NodeByID("n2"))
	assert.Nil(t, d.EdgeByID("e1"))
	assert.NotNil(t, d.EdgeByID("e2"))

	// Unknown ids are ignored.
	d.RemoveNodes([]string{"ghost"})
	assert.Len(t, d.Nodes, 2)
}

func TestCloneIsDeep(t *testing.T) {
	d := twoNodeDiagram()
	bx, by := 10.0, 20.0
	d.AddEdge(Edge{ID: "e1", SourceID: "n1", TargetID: "n2", BendX: &bx, BendY: &by})

	clone := d.Clone()
	clone.Nodes[0].X = 999
	*clone.Edges[0].BendX = 999

	assert.InDelta(t, 100.0, d.Nodes[0].X, 1e-9)
	assert.InDelta(t, 10.0, *d.Edges[0].BendX, 1e-9)
}

func TestBounds(t *testing.T) {
	d := New()
	assert.Equal(t, defaultBounds, d.Bounds())

	d.AddNode(NewNode("n1", KindProcess, 0, 0)) // 140x60
	b := d.Bounds()
	assert.InDelta(t, -70.0-BoundsPadding, b.X, 1e-9)
	assert.InDelta(t, -30.0-BoundsPadding, b.Y, 1e-9)
	assert.InDelta(t, 140.0+2*BoundsPadding, b.Width, 1e-9)
}

func TestHitNodeRespectsShape(t *testing.T) {
	decision := NewNode("d", KindDecision, 0, 0) // 120x80 diamond
	assert.True(t, HitNode(&decision, 0, 0))
	assert.True(t, HitNode(&decision, 55, 0))
	// Bounding-box corner lies outside the diamond.
	assert.False(t, HitNode(&decision, 55, 35))

	start := NewNode("s", KindStart, 0, 0) // 120x50 ellipse
	assert.True(t, HitNode(&start, 0, 0))
	assert.False(t, HitNode(&start, 58, 23))

	io := NewNode("i", KindIO, 0, 0) // 140x60 parallelogram, slant 28
	assert.True(t, HitNode(&io, 0, 0))
	// Top-left bounding-box corner is cut off by the slant.
	assert.False(t, HitNode(&io, -68, -29))
}

func TestParseRoundTrip(t *testing.T) {
	d := twoNodeDiagram()
	d.AddEdge(Edge{ID: "e1", SourceID: "n1", TargetID: "n2", Label: "ok"})

	data, err := d.Export()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Len(t, parsed.Nodes, 2)
	assert.Len(t, parsed.Edges, 1)
	assert.Equal(t, d.Nodes, parsed.Nodes)
	assert.Equal(t, "e1", parsed.Edges[0].ID)
	// Ids are preserved across export/import.
	assert.Equal(t, "n1", parsed.Edges[0].SourceID)
}

func TestParseDefaultsMissingFields(t *testing.T) {
	parsed, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, parsed.Nodes)
	assert.NotNil(t, parsed.Edges)
	assert.Empty(t, parsed.Nodes)

	parsed, err = Parse([]byte(`{"nodes":null,"edges":[{"id":"e","sourceId":"a","targetId":"b"}]}`))
	require.NoError(t, err)
	assert.Empty(t, parsed.Nodes)
	require.Len(t, parsed.Edges, 1)
	// Imported edges are normalized.
	assert.Equal(t, LineSolid, parsed.Edges[0].LineStyle)
	assert.InDelta(t, DefaultLineWidth, parsed.Edges[0].LineWidth, 1e-9)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"nodes": [`))
	assert.Error(t, err)
}

func TestExportEmptyDiagramWritesArrays(t *testing.T) {
	data, err := New().Export()
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}
