package editor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftboard/draftboard/backend-go/internal/diagram"
	"github.com/draftboard/draftboard/backend-go/internal/layout"
	"github.com/draftboard/draftboard/backend-go/internal/view"
)

type stubIDs struct {
	nodes, edges int
}

func (s *stubIDs) NewNodeID() string {
	s.nodes++
	return fmt.Sprintf("n%d", s.nodes)
}

func (s *stubIDs) NewEdgeID() string {
	s.edges++
	return fmt.Sprintf("e%d", s.edges)
}

type stubPrompt struct {
	text string
	ok   bool
}

func (p stubPrompt) PromptText(string) (string, bool) { return p.text, p.ok }

func newTestEditor() *Editor {
	return New(view.New(800, 600), &stubIDs{}, nil)
}

func attach(e *Editor, nodes []diagram.Node, edges []diagram.Edge) {
	d := diagram.New()
	for _, n := range nodes {
		d.AddNode(n)
	}
	for _, ed := range edges {
		d.AddEdge(ed)
	}
	e.Attach(d)
}

func click(e *Editor, x, y float64) {
	e.PointerDown(x, y, false)
	e.PointerUp()
}

func TestPlacementToolCreatesNodeAndReverts(t *testing.T) {
	e := newTestEditor()
	e.SetTool(PlaceTool(diagram.KindStart))

	click(e, 100, 100)

	require.Len(t, e.Diagram().Nodes, 1)
	n := e.Diagram().Nodes[0]
	assert.Equal(t, diagram.KindStart, n.Kind)
	assert.InDelta(t, 100.0, n.X, 1e-9)
	assert.InDelta(t, 100.0, n.Y, 1e-9)
	assert.Equal(t, []string{n.ID}, e.SelectedNodes())
	assert.Equal(t, ToolSelect, e.Tool())
}

func TestConnectTwoNodes(t *testing.T) {
	e := newTestEditor()
	e.SetTool(PlaceTool(diagram.KindStart))
	click(e, 100, 100)
	e.SetTool(PlaceTool(diagram.KindProcess))
	click(e, 300, 100)

	start := e.Diagram().Nodes[0]
	process := e.Diagram().Nodes[1]

	e.SetTool(ToolConnect)
	click(e, 100, 100)
	assert.Equal(t, start.ID, e.ConnectSource())

	click(e, 300, 100)

	require.Len(t, e.Diagram().Edges, 1)
	ed := e.Diagram().Edges[0]
	assert.Equal(t, start.ID, ed.SourceID)
	assert.Equal(t, process.ID, ed.TargetID)
	assert.Equal(t, diagram.LineSolid, ed.LineStyle)
	assert.Equal(t, diagram.DefaultLineColor, ed.LineColor)
	assert.InDelta(t, diagram.DefaultLineWidth, ed.LineWidth, 1e-9)

	p, ok := e.Diagram().EdgePath(&ed)
	require.True(t, ok)
	// Endpoints sit just off each node's analytic outline, toward the bend.
	assert.InDelta(t, 160.0, p.Source.X, 2.5)
	assert.InDelta(t, 230.0, p.Target.X, 2.5)

	// The tool stays on connect for repeated connections.
	assert.Equal(t, ToolConnect, e.Tool())
	assert.Empty(t, e.ConnectSource())
}

func TestConnectSameNodeIsNoop(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)

	e.SetTool(ToolConnect)
	click(e, 100, 100)
	click(e, 100, 100)

	assert.Empty(t, e.Diagram().Edges)
	assert.Equal(t, "a", e.ConnectSource())
}

func TestConnectMissIsNoop(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)

	e.SetTool(ToolConnect)
	click(e, 700, 500)
	assert.Empty(t, e.ConnectSource())
}

func TestSetToolAbandonsConnectSource(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)

	e.SetTool(ToolConnect)
	click(e, 100, 100)
	e.SetTool(ToolSelect)
	assert.Empty(t, e.ConnectSource())
}

func TestClickSelectsTopmostNode(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{
		diagram.NewNode("under", diagram.KindProcess, 100, 100),
		diagram.NewNode("over", diagram.KindProcess, 100, 100),
	}, nil)

	click(e, 100, 100)
	assert.Equal(t, []string{"over"}, e.SelectedNodes())
	assert.Equal(t, "over", e.ActiveNode())
}

func TestShiftClickTogglesMembership(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{
		diagram.NewNode("a", diagram.KindProcess, 100, 100),
		diagram.NewNode("b", diagram.KindProcess, 300, 100),
	}, nil)

	click(e, 100, 100)
	e.PointerDown(300, 100, true)
	e.PointerUp()
	assert.ElementsMatch(t, []string{"a", "b"}, e.SelectedNodes())

	e.PointerDown(300, 100, true)
	e.PointerUp()
	assert.Equal(t, []string{"a"}, e.SelectedNodes())
}

func TestDragSnapsToGrid(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)

	e.PointerDown(100, 100, false)
	e.PointerMove(133, 117)
	e.PointerUp()

	n := e.Diagram().NodeByID("a")
	assert.InDelta(t, 140.0, n.X, 1e-9)
	assert.InDelta(t, 120.0, n.Y, 1e-9)
}

func TestDragSnapsToNeighborAxis(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{
		diagram.NewNode("a", diagram.KindProcess, 100, 100),
		diagram.NewNode("b", diagram.KindProcess, 206, 300),
	}, nil)

	e.PointerDown(100, 100, false)
	e.PointerMove(203, 100)
	e.PointerUp()

	// Grid snap gives x=200, then b's x within the alignment threshold wins.
	assert.InDelta(t, 206.0, e.Diagram().NodeByID("a").X, 1e-9)
	assert.InDelta(t, 100.0, e.Diagram().NodeByID("a").Y, 1e-9)
}

func TestGroupDragAppliesUniformDelta(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{
		diagram.NewNode("a", diagram.KindProcess, 100, 100),
		diagram.NewNode("c", diagram.KindProcess, 150, 130),
	}, nil)

	click(e, 100, 100)
	e.PointerDown(150, 130, true)
	e.PointerUp()

	// Press on a member keeps the multi-selection and drags the group.
	e.PointerDown(100, 100, false)
	assert.ElementsMatch(t, []string{"a", "c"}, e.SelectedNodes())
	e.PointerMove(133, 117)
	e.PointerUp()

	a, c := e.Diagram().NodeByID("a"), e.Diagram().NodeByID("c")
	assert.InDelta(t, 140.0, a.X, 1e-9)
	assert.InDelta(t, 120.0, a.Y, 1e-9)
	assert.InDelta(t, 190.0, c.X, 1e-9)
	assert.InDelta(t, 150.0, c.Y, 1e-9)
}

func TestDragWithoutMovementDoesNotCommit(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)

	click(e, 100, 100)
	assert.False(t, e.Undo())

	e.PointerDown(100, 100, false)
	e.PointerMove(133, 117)
	e.PointerUp()
	assert.True(t, e.Undo())
	assert.InDelta(t, 100.0, e.Diagram().NodeByID("a").X, 1e-9)
}

func TestDragSnappedBackToOriginDoesNotCommit(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)

	// The wiggle stays under half a grid cell, so the lead snaps back to its
	// origin and releasing must not record an identical snapshot.
	e.PointerDown(100, 100, false)
	e.PointerMove(103, 102)
	e.PointerUp()

	assert.False(t, e.Undo())
	assert.InDelta(t, 100.0, e.Diagram().NodeByID("a").X, 1e-9)

	// Same when the pointer wanders off and returns before release.
	e.PointerDown(100, 100, false)
	e.PointerMove(160, 100)
	e.PointerMove(101, 99)
	e.PointerUp()

	assert.False(t, e.Undo())
	assert.InDelta(t, 100.0, e.Diagram().NodeByID("a").X, 1e-9)
}

func TestBendDragSnapsAndSelectsEdge(t *testing.T) {
	e := newTestEditor()
	attach(e,
		[]diagram.Node{
			diagram.NewNode("a", diagram.KindProcess, 100, 100),
			diagram.NewNode("b", diagram.KindProcess, 300, 100),
		},
		[]diagram.Edge{{ID: "ab", SourceID: "a", TargetID: "b"}},
	)

	// The derived bend of this pair sits at (200, 100).
	e.PointerDown(200, 100, false)
	e.PointerMove(233, 147)
	e.PointerUp()

	assert.Equal(t, "ab", e.SelectedEdge())
	assert.Empty(t, e.SelectedNodes())
	ed := e.Diagram().EdgeByID("ab")
	require.NotNil(t, ed.BendX)
	assert.InDelta(t, 230.0, *ed.BendX, 1e-9)
	assert.InDelta(t, 150.0, *ed.BendY, 1e-9)
}

func TestEdgeClickSelectsEdge(t *testing.T) {
	e := newTestEditor()
	attach(e,
		[]diagram.Node{
			diagram.NewNode("a", diagram.KindProcess, 100, 100),
			diagram.NewNode("b", diagram.KindProcess, 300, 100),
		},
		[]diagram.Edge{{ID: "ab", SourceID: "a", TargetID: "b"}},
	)
	click(e, 100, 100) // select a node first

	// Near the first segment but outside the bend handle radius.
	click(e, 180, 106)

	assert.Equal(t, "ab", e.SelectedEdge())
	assert.Empty(t, e.SelectedNodes())
}

func TestMarqueeSelectsOverlappingBoxes(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{
		diagram.NewNode("a", diagram.KindProcess, 100, 100), // box x [30,170]
		diagram.NewNode("b", diagram.KindProcess, 400, 100), // box x [330,470]
	}, nil)

	// Fully contains a, clips only the left edge of b.
	e.PointerDown(20, 60, true)
	e.PointerMove(340, 140)
	e.PointerUp()
	assert.ElementsMatch(t, []string{"a", "b"}, e.SelectedNodes())

	// Misses both, from a cleared selection.
	click(e, 700, 500)
	e.PointerDown(600, 500, true)
	e.PointerMove(620, 520)
	e.PointerUp()
	assert.Empty(t, e.SelectedNodes())
}

func TestMarqueeAppendsToSelection(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{
		diagram.NewNode("a", diagram.KindProcess, 100, 100),
		diagram.NewNode("b", diagram.KindProcess, 400, 400),
	}, nil)

	click(e, 100, 100)
	e.PointerDown(320, 320, true)
	e.PointerMove(480, 480)
	e.PointerUp()

	assert.ElementsMatch(t, []string{"a", "b"}, e.SelectedNodes())
}

func TestEmptyPressPansAndClearsSelection(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)
	click(e, 100, 100)

	e.PointerDown(600, 500, false)
	e.PointerMove(630, 520)
	e.PointerUp()

	assert.Empty(t, e.SelectedNodes())
	assert.InDelta(t, 30.0, e.View().PanX, 1e-9)
	assert.InDelta(t, 20.0, e.View().PanY, 1e-9)
}

func TestDeleteCascadesEdges(t *testing.T) {
	e := newTestEditor()
	attach(e,
		[]diagram.Node{
			diagram.NewNode("a", diagram.KindProcess, 100, 100),
			diagram.NewNode("b", diagram.KindProcess, 300, 100),
		},
		[]diagram.Edge{{ID: "ab", SourceID: "a", TargetID: "b"}},
	)

	click(e, 100, 100)
	require.True(t, e.DeleteSelection())

	assert.Nil(t, e.Diagram().NodeByID("a"))
	assert.NotNil(t, e.Diagram().NodeByID("b"))
	assert.Empty(t, e.Diagram().Edges)
	assert.Empty(t, e.SelectedNodes())
}

func TestDeleteSelectedEdge(t *testing.T) {
	e := newTestEditor()
	attach(e,
		[]diagram.Node{
			diagram.NewNode("a", diagram.KindProcess, 100, 100),
			diagram.NewNode("b", diagram.KindProcess, 300, 100),
		},
		[]diagram.Edge{{ID: "ab", SourceID: "a", TargetID: "b"}},
	)

	click(e, 180, 106)
	require.Equal(t, "ab", e.SelectedEdge())
	require.True(t, e.DeleteSelection())

	assert.Empty(t, e.Diagram().Edges)
	assert.Len(t, e.Diagram().Nodes, 2)
}

func TestDeleteEmptySelectionIsNoop(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)
	assert.False(t, e.DeleteSelection())
	assert.Len(t, e.Diagram().Nodes, 1)
}

func TestUndoRedoClearSelection(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)

	e.PointerDown(100, 100, false)
	e.PointerMove(160, 100)
	e.PointerUp()
	click(e, 160, 100)
	require.NotEmpty(t, e.SelectedNodes())

	require.True(t, e.Undo())
	assert.Empty(t, e.SelectedNodes())
	assert.InDelta(t, 100.0, e.Diagram().NodeByID("a").X, 1e-9)

	require.True(t, e.Redo())
	assert.InDelta(t, 160.0, e.Diagram().NodeByID("a").X, 1e-9)
	assert.False(t, e.Redo())
}

func TestSelectAll(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{
		diagram.NewNode("a", diagram.KindProcess, 100, 100),
		diagram.NewNode("b", diagram.KindProcess, 300, 100),
	}, nil)

	e.SelectAll()
	assert.ElementsMatch(t, []string{"a", "b"}, e.SelectedNodes())
}

func TestCopyPasteSelectsPastedNodes(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)

	click(e, 100, 100)
	require.True(t, e.Copy())
	require.True(t, e.Paste())

	require.Len(t, e.Diagram().Nodes, 2)
	require.Len(t, e.SelectedNodes(), 1)
	pasted := e.Diagram().NodeByID(e.SelectedNodes()[0])
	require.NotNil(t, pasted)
	assert.InDelta(t, 128.0, pasted.X, 1e-9)
}

func TestMirrorClipboardKeepsCopyPasteSemantics(t *testing.T) {
	e := newTestEditor()
	e.MirrorClipboard(true)
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)

	// OS mirroring is best-effort; copy and paste behave the same whether or
	// not a system clipboard exists.
	click(e, 100, 100)
	require.True(t, e.Copy())
	require.True(t, e.Paste())

	require.Len(t, e.Diagram().Nodes, 2)
	pasted := e.Diagram().NodeByID(e.SelectedNodes()[0])
	require.NotNil(t, pasted)
	assert.InDelta(t, 128.0, pasted.X, 1e-9)
}

func TestPasteEmptyClipboardIsNoop(t *testing.T) {
	e := newTestEditor()
	assert.False(t, e.Paste())
}

func TestDoubleClickEditsText(t *testing.T) {
	e := New(view.New(800, 600), &stubIDs{}, stubPrompt{text: "Ship it", ok: true})
	attach(e, []diagram.Node{diagram.NewNode("a", diagram.KindProcess, 100, 100)}, nil)

	e.DoubleClick(100, 100)
	assert.Equal(t, "Ship it", e.Diagram().NodeByID("a").Text)
	assert.True(t, e.Undo())
}

func TestDoubleClickNoops(t *testing.T) {
	for name, p := range map[string]stubPrompt{
		"cancelled": {text: "x", ok: false},
		"empty":     {text: "", ok: true},
		"unchanged": {text: "same", ok: true},
	} {
		t.Run(name, func(t *testing.T) {
			e := New(view.New(800, 600), &stubIDs{}, p)
			n := diagram.NewNode("a", diagram.KindProcess, 100, 100)
			n.Text = "same"
			attach(e, []diagram.Node{n}, nil)

			e.DoubleClick(100, 100)
			assert.Equal(t, "same", e.Diagram().NodeByID("a").Text)
			assert.False(t, e.Undo())
		})
	}
}

func TestAutoLayoutCommits(t *testing.T) {
	e := newTestEditor()
	attach(e,
		[]diagram.Node{
			diagram.NewNode("a", diagram.KindStart, 50, 90),
			diagram.NewNode("b", diagram.KindEnd, 20, 10),
		},
		[]diagram.Edge{{ID: "ab", SourceID: "a", TargetID: "b"}},
	)

	e.AutoLayout(layout.Vertical)
	assert.Less(t, e.Diagram().NodeByID("a").Y, e.Diagram().NodeByID("b").Y)
	assert.True(t, e.Undo())
	assert.InDelta(t, 90.0, e.Diagram().NodeByID("a").Y, 1e-9)
}

func TestAlignOnSelection(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{
		diagram.NewNode("a", diagram.KindProcess, 100, 100),
		diagram.NewNode("b", diagram.KindProcess, 300, 200),
	}, nil)

	e.SelectAll()
	require.True(t, e.Align(layout.AlignLeft))
	assert.InDelta(t, 100.0, e.Diagram().NodeByID("b").X, 1e-9)

	e.clearSelection()
	assert.False(t, e.Align(layout.AlignLeft))
}

func TestImportReplacesDiagram(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("old", diagram.KindProcess, 100, 100)}, nil)
	click(e, 100, 100)

	err := e.Import([]byte(`{"nodes":[{"id":"new","kind":"start","x":5,"y":6,"width":120,"height":50}],"edges":[]}`))
	require.NoError(t, err)
	assert.Nil(t, e.Diagram().NodeByID("old"))
	assert.NotNil(t, e.Diagram().NodeByID("new"))
	assert.Empty(t, e.SelectedNodes())
}

func TestImportMalformedLeavesDiagramUntouched(t *testing.T) {
	e := newTestEditor()
	attach(e, []diagram.Node{diagram.NewNode("old", diagram.KindProcess, 100, 100)}, nil)

	err := e.Import([]byte(`{"nodes": nope`))
	require.Error(t, err)
	assert.NotNil(t, e.Diagram().NodeByID("old"))
}

func TestExportRoundTrip(t *testing.T) {
	e := newTestEditor()
	attach(e,
		[]diagram.Node{diagram.NewNode("a", diagram.KindDecision, 10, 20)},
		[]diagram.Edge{{ID: "loop", SourceID: "a", TargetID: "a"}},
	)

	data, err := e.Export()
	require.NoError(t, err)

	other := newTestEditor()
	require.NoError(t, other.Import(data))
	assert.Len(t, other.Diagram().Nodes, 1)
	assert.Len(t, other.Diagram().Edges, 1)
	assert.Equal(t, "a", other.Diagram().Nodes[0].ID)
}

func TestPlacementToolKindParsing(t *testing.T) {
	kind, ok := PlaceTool(diagram.KindDecision).PlacementKind()
	require.True(t, ok)
	assert.Equal(t, diagram.KindDecision, kind)

	_, ok = ToolSelect.PlacementKind()
	assert.False(t, ok)
	_, ok = Tool("place:").PlacementKind()
	assert.False(t, ok)
}
