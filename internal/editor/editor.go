// Package editor is the interaction core of the flowchart canvas. It routes
// pointer and keyboard events through the active tool and gesture, mutates the
// diagram, and commits history at the end of discrete gestures. All hit-test
// misses and stale ids are silent no-ops.
package editor

import (
	"math"

	"github.com/draftboard/draftboard/backend-go/internal/clipboard"
	"github.com/draftboard/draftboard/backend-go/internal/diagram"
	"github.com/draftboard/draftboard/backend-go/internal/geom"
	"github.com/draftboard/draftboard/backend-go/internal/history"
	"github.com/draftboard/draftboard/backend-go/internal/layout"
	"github.com/draftboard/draftboard/backend-go/internal/view"
)

// Tool is the active editing mode. Placement tools are one value per node
// kind, built with PlaceTool.
type Tool string

const (
	ToolSelect  Tool = "select"
	ToolConnect Tool = "connect"
)

const placePrefix = "place:"

// PlaceTool returns the placement tool for a node kind.
func PlaceTool(kind diagram.NodeKind) Tool {
	return Tool(placePrefix + string(kind))
}

// PlacementKind reports the node kind a placement tool creates.
func (t Tool) PlacementKind() (diagram.NodeKind, bool) {
	s := string(t)
	if len(s) <= len(placePrefix) || s[:len(placePrefix)] != placePrefix {
		return "", false
	}
	return diagram.NodeKind(s[len(placePrefix):]), true
}

// gesture is the transient drag sub-state, orthogonal to the tool.
type gesture int

const (
	gestureIdle gesture = iota
	gestureDragNode
	gestureDragBend
	gesturePan
	gestureMarquee
)

// Hit-test and snap tuning. The pixel thresholds divide by the zoom scale at
// use so tolerance stays visually constant.
const (
	bendHandleRadius = 10
	edgeHitDistance  = 8
	bendSnapGrid     = 10
	dragSnapGrid     = 20
	neighborSnapDist = 8
)

// TextPrompter solicits replacement text for a node on double-click. ok=false
// means the user cancelled.
type TextPrompter interface {
	PromptText(current string) (text string, ok bool)
}

// IDSource provides fresh unique ids. The editor never invents its own.
type IDSource interface {
	NewNodeID() string
	NewEdgeID() string
}

// Editor owns one interaction session: the live diagram, viewport, history,
// clipboard, selection, and in-flight gesture state. Not safe for concurrent
// use; all mutation happens on the event-delivery goroutine.
type Editor struct {
	diag   *diagram.Diagram
	view   *view.Viewport
	hist   *history.History
	clip   *clipboard.Clipboard
	ids    IDSource
	prompt TextPrompter

	tool          Tool
	selectedNodes []string
	activeNode    string
	selectedEdge  string
	connectSource string

	gesture     gesture
	dragMoved   bool
	dragEdgeID  string
	dragLeadID  string
	dragStart   geom.Point
	dragOrigins map[string]geom.Point

	panStartX, panStartY float64
	panOrigX, panOrigY   float64

	marqueeStart  geom.Point
	marqueeEnd    geom.Point
	marqueeAppend bool
	marqueeBase   []string
}

// New returns an editor over an empty diagram with the select tool active.
// prompt may be nil, in which case double-click text editing is disabled.
func New(vp *view.Viewport, ids IDSource, prompt TextPrompter) *Editor {
	e := &Editor{
		diag:   diagram.New(),
		view:   vp,
		hist:   history.New(history.DefaultLimit),
		clip:   clipboard.New(false),
		ids:    ids,
		prompt: prompt,
		tool:   ToolSelect,
	}
	e.hist.Reset(e.diag)
	return e
}

// ConfigureHistory replaces the history stack with one capped at limit,
// seeded with the current diagram. Call before editing begins; prior
// snapshots are discarded.
func (e *Editor) ConfigureHistory(limit int) {
	e.hist = history.New(limit)
	e.hist.Reset(e.diag)
}

// MirrorClipboard replaces the clipboard with one that mirrors copies to the
// OS clipboard and falls back to it on paste. Call before editing begins; any
// captured payload is discarded.
func (e *Editor) MirrorClipboard(enabled bool) {
	e.clip = clipboard.New(enabled)
}

// Diagram returns the live diagram. Renderers must treat it as read-only.
func (e *Editor) Diagram() *diagram.Diagram { return e.diag }

// View returns the viewport.
func (e *Editor) View() *view.Viewport { return e.view }

// Tool returns the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches the active tool, abandoning a half-finished connect
// gesture.
func (e *Editor) SetTool(t Tool) {
	e.tool = t
	e.connectSource = ""
}

// SelectedNodes returns the node selection in selection order.
func (e *Editor) SelectedNodes() []string { return e.selectedNodes }

// SelectedEdge returns the selected edge id, or "".
func (e *Editor) SelectedEdge() string { return e.selectedEdge }

// ActiveNode returns the node driving the inspector, or "".
func (e *Editor) ActiveNode() string { return e.activeNode }

// ConnectSource returns the pending connect-gesture source node, or "".
func (e *Editor) ConnectSource() string { return e.connectSource }

// Marquee returns the in-flight marquee rectangle in world space and whether
// one is active, for the render pass.
func (e *Editor) Marquee() (geom.Rect, bool) {
	if e.gesture != gestureMarquee {
		return geom.Rect{}, false
	}
	return geom.FromCorners(e.marqueeStart, e.marqueeEnd), true
}

func (e *Editor) isSelected(id string) bool {
	for _, s := range e.selectedNodes {
		if s == id {
			return true
		}
	}
	return false
}

func (e *Editor) selectOnly(id string) {
	e.selectedNodes = []string{id}
	e.activeNode = id
	e.selectedEdge = ""
}

func (e *Editor) clearSelection() {
	e.selectedNodes = nil
	e.activeNode = ""
	e.selectedEdge = ""
}

func (e *Editor) toggleSelection(id string) {
	for i, s := range e.selectedNodes {
		if s == id {
			e.selectedNodes = append(e.selectedNodes[:i], e.selectedNodes[i+1:]...)
			if e.activeNode == id {
				e.activeNode = ""
				if n := len(e.selectedNodes); n > 0 {
					e.activeNode = e.selectedNodes[n-1]
				}
			}
			return
		}
	}
	e.selectedNodes = append(e.selectedNodes, id)
	e.activeNode = id
	e.selectedEdge = ""
}

// hitNode returns the topmost node containing the world point, respecting each
// kind's exact outline.
func (e *Editor) hitNode(wx, wy float64) *diagram.Node {
	for i := len(e.diag.Nodes) - 1; i >= 0; i-- {
		if diagram.HitNode(&e.diag.Nodes[i], wx, wy) {
			return &e.diag.Nodes[i]
		}
	}
	return nil
}

// hitEdge returns the topmost edge whose two-segment path passes within the
// scale-adjusted threshold of the world point.
func (e *Editor) hitEdge(wx, wy float64) *diagram.Edge {
	threshold := edgeHitDistance / e.view.Scale
	for i := len(e.diag.Edges) - 1; i >= 0; i-- {
		ed := &e.diag.Edges[i]
		p, ok := e.diag.EdgePath(ed)
		if !ok {
			continue
		}
		d1 := geom.PointToSegmentDistance(wx, wy, p.Source.X, p.Source.Y, p.Bend.X, p.Bend.Y)
		d2 := geom.PointToSegmentDistance(wx, wy, p.Bend.X, p.Bend.Y, p.Target.X, p.Target.Y)
		if math.Min(d1, d2) <= threshold {
			return ed
		}
	}
	return nil
}

// hitBendHandle returns the topmost edge whose bend point sits within the
// handle radius of the world point.
func (e *Editor) hitBendHandle(wx, wy float64) *diagram.Edge {
	radius := bendHandleRadius / e.view.Scale
	for i := len(e.diag.Edges) - 1; i >= 0; i-- {
		ed := &e.diag.Edges[i]
		p, ok := e.diag.EdgePath(ed)
		if !ok {
			continue
		}
		if math.Hypot(wx-p.Bend.X, wy-p.Bend.Y) <= radius {
			return ed
		}
	}
	return nil
}

// PointerDown dispatches a press at screen coordinates through the tool and
// hit-test priority chain.
func (e *Editor) PointerDown(sx, sy float64, shift bool) {
	wx, wy := e.view.ToWorld(sx, sy)

	if e.tool == ToolSelect {
		if ed := e.hitBendHandle(wx, wy); ed != nil {
			e.clearSelection()
			e.selectedEdge = ed.ID
			e.gesture = gestureDragBend
			e.dragEdgeID = ed.ID
			e.dragMoved = false
			return
		}
	}

	if e.tool == ToolConnect {
		n := e.hitNode(wx, wy)
		if n == nil {
			return
		}
		if e.connectSource == "" {
			e.connectSource = n.ID
			e.selectOnly(n.ID)
			return
		}
		if n.ID == e.connectSource {
			return
		}
		e.diag.AddEdge(diagram.Edge{
			ID:       e.ids.NewEdgeID(),
			SourceID: e.connectSource,
			TargetID: n.ID,
		})
		e.connectSource = ""
		e.hist.Commit(e.diag)
		return
	}

	if kind, ok := e.tool.PlacementKind(); ok {
		n := diagram.NewNode(e.ids.NewNodeID(), kind, wx, wy)
		e.diag.AddNode(n)
		e.selectOnly(n.ID)
		e.hist.Commit(e.diag)
		e.tool = ToolSelect
		return
	}

	if n := e.hitNode(wx, wy); n != nil {
		if shift {
			e.toggleSelection(n.ID)
			return
		}
		if !e.isSelected(n.ID) {
			e.selectOnly(n.ID)
		} else {
			e.activeNode = n.ID
		}
		e.beginNodeDrag(n.ID, wx, wy)
		return
	}

	if ed := e.hitEdge(wx, wy); ed != nil {
		e.clearSelection()
		e.selectedEdge = ed.ID
		return
	}

	if shift {
		e.gesture = gestureMarquee
		e.marqueeStart = geom.Point{X: wx, Y: wy}
		e.marqueeEnd = e.marqueeStart
		e.marqueeAppend = true
		e.marqueeBase = append([]string(nil), e.selectedNodes...)
		return
	}

	e.clearSelection()
	e.gesture = gesturePan
	e.panStartX, e.panStartY = sx, sy
	e.panOrigX, e.panOrigY = e.view.PanX, e.view.PanY
}

func (e *Editor) beginNodeDrag(leadID string, wx, wy float64) {
	e.gesture = gestureDragNode
	e.dragLeadID = leadID
	e.dragStart = geom.Point{X: wx, Y: wy}
	e.dragMoved = false
	e.dragOrigins = make(map[string]geom.Point, len(e.selectedNodes))
	for _, id := range e.selectedNodes {
		if n := e.diag.NodeByID(id); n != nil {
			e.dragOrigins[id] = geom.Point{X: n.X, Y: n.Y}
		}
	}
}

// PointerMove routes motion to the active gesture.
func (e *Editor) PointerMove(sx, sy float64) {
	switch e.gesture {
	case gestureDragBend:
		wx, wy := e.view.ToWorld(sx, sy)
		ed := e.diag.EdgeByID(e.dragEdgeID)
		if ed == nil {
			return
		}
		bx := snapToGrid(wx, bendSnapGrid)
		by := snapToGrid(wy, bendSnapGrid)
		ed.BendX, ed.BendY = &bx, &by
		e.dragMoved = true

	case gestureDragNode:
		wx, wy := e.view.ToWorld(sx, sy)
		e.moveGroup(wx-e.dragStart.X, wy-e.dragStart.Y)

	case gesturePan:
		e.view.PanX = e.panOrigX + (sx - e.panStartX)
		e.view.PanY = e.panOrigY + (sy - e.panStartY)

	case gestureMarquee:
		wx, wy := e.view.ToWorld(sx, sy)
		e.marqueeEnd = geom.Point{X: wx, Y: wy}
	}
}

// moveGroup repositions the dragged selection. The lead node's raw position is
// snapped to the grid and to nearby unselected nodes' axes; the resulting
// delta is applied uniformly so relative offsets inside the group survive.
func (e *Editor) moveGroup(dx, dy float64) {
	leadOrigin, ok := e.dragOrigins[e.dragLeadID]
	if !ok {
		return
	}

	lead := geom.Point{X: leadOrigin.X + dx, Y: leadOrigin.Y + dy}
	lead.X = snapToGrid(lead.X, dragSnapGrid)
	lead.Y = snapToGrid(lead.Y, dragSnapGrid)
	for i := range e.diag.Nodes {
		n := &e.diag.Nodes[i]
		if _, dragging := e.dragOrigins[n.ID]; dragging {
			continue
		}
		if math.Abs(n.X-lead.X) <= neighborSnapDist {
			lead.X = n.X
		}
		if math.Abs(n.Y-lead.Y) <= neighborSnapDist {
			lead.Y = n.Y
		}
	}

	// dragMoved tracks the snapped delta, not the raw pointer delta, so a
	// wiggle that snaps back to the origin never commits a no-op snapshot.
	fdx := lead.X - leadOrigin.X
	fdy := lead.Y - leadOrigin.Y
	e.dragMoved = fdx != 0 || fdy != 0
	for id, origin := range e.dragOrigins {
		if n := e.diag.NodeByID(id); n != nil {
			n.X = origin.X + fdx
			n.Y = origin.Y + fdy
		}
	}
}

// PointerUp ends the active gesture: marquees resolve to a selection, drags
// that moved something commit history.
func (e *Editor) PointerUp() {
	switch e.gesture {
	case gestureMarquee:
		e.resolveMarquee()
	case gestureDragNode, gestureDragBend:
		if e.dragMoved {
			e.hist.Commit(e.diag)
		}
	}

	e.gesture = gestureIdle
	e.dragMoved = false
	e.dragEdgeID = ""
	e.dragLeadID = ""
	e.dragOrigins = nil
	e.marqueeBase = nil
}

// resolveMarquee selects every node whose bounding box overlaps the marquee
// rectangle, unioned with the pre-gesture selection in append mode.
func (e *Editor) resolveMarquee() {
	rect := geom.FromCorners(e.marqueeStart, e.marqueeEnd)

	var ids []string
	if e.marqueeAppend {
		ids = append(ids, e.marqueeBase...)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for i := range e.diag.Nodes {
		n := &e.diag.Nodes[i]
		if seen[n.ID] || !diagram.NodeBounds(n).Intersects(rect) {
			continue
		}
		ids = append(ids, n.ID)
		seen[n.ID] = true
	}

	e.selectedNodes = ids
	e.selectedEdge = ""
	e.activeNode = ""
	if len(ids) > 0 {
		e.activeNode = ids[len(ids)-1]
	}
}

// DoubleClick opens the text prompt for the node under the pointer. Empty,
// unchanged, or cancelled input leaves the node untouched.
func (e *Editor) DoubleClick(sx, sy float64) {
	if e.prompt == nil {
		return
	}
	wx, wy := e.view.ToWorld(sx, sy)
	n := e.hitNode(wx, wy)
	if n == nil {
		return
	}
	text, ok := e.prompt.PromptText(n.Text)
	if !ok || text == "" || text == n.Text {
		return
	}
	n.Text = text
	e.hist.Commit(e.diag)
}

// SetNodeText replaces a node's text and commits, for surfaces that collect
// the text themselves instead of going through the prompt collaborator.
// Empty, unchanged, or unknown ids are no-ops.
func (e *Editor) SetNodeText(id, text string) bool {
	n := e.diag.NodeByID(id)
	if n == nil || text == "" || text == n.Text {
		return false
	}
	n.Text = text
	e.hist.Commit(e.diag)
	return true
}

// Undo steps the diagram back one snapshot, clearing selection and any pending
// connect source. No-op at the oldest entry.
func (e *Editor) Undo() bool {
	d, ok := e.hist.Undo()
	if !ok {
		return false
	}
	e.diag = d
	e.clearSelection()
	e.connectSource = ""
	return true
}

// Redo steps the diagram forward one snapshot. No-op at the newest entry.
func (e *Editor) Redo() bool {
	d, ok := e.hist.Redo()
	if !ok {
		return false
	}
	e.diag = d
	e.clearSelection()
	e.connectSource = ""
	return true
}

// CanUndo reports whether an undo step is available.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether a redo step is available.
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// SelectAll selects every node, clearing any edge selection.
func (e *Editor) SelectAll() {
	ids := make([]string, len(e.diag.Nodes))
	for i := range e.diag.Nodes {
		ids[i] = e.diag.Nodes[i].ID
	}
	e.selectedNodes = ids
	e.selectedEdge = ""
	if len(ids) > 0 {
		e.activeNode = ids[len(ids)-1]
	}
}

// Copy captures the node selection into the clipboard. Does not touch history.
func (e *Editor) Copy() bool {
	return e.clip.Copy(e.diag, e.selectedNodes)
}

// Paste inserts the clipboard payload; the pasted nodes become the new
// selection. No-op on an empty clipboard.
func (e *Editor) Paste() bool {
	newIDs := e.clip.Paste(e.diag, e.ids)
	if len(newIDs) == 0 {
		return false
	}
	e.selectedNodes = newIDs
	e.selectedEdge = ""
	e.activeNode = newIDs[len(newIDs)-1]
	e.hist.Commit(e.diag)
	return true
}

// DeleteSelection removes the selected edge, or the selected nodes and every
// edge touching any of them. No-op on an empty selection.
func (e *Editor) DeleteSelection() bool {
	switch {
	case e.selectedEdge != "":
		e.diag.RemoveEdge(e.selectedEdge)
	case len(e.selectedNodes) > 0:
		e.diag.RemoveNodes(e.selectedNodes)
	default:
		return false
	}
	e.clearSelection()
	e.hist.Commit(e.diag)
	return true
}

// AutoLayout runs the topological layering pass and commits.
func (e *Editor) AutoLayout(o layout.Orientation) {
	layout.Auto(e.diag, o)
	e.hist.Commit(e.diag)
}

// Align applies an alignment operation to the current selection and commits
// when it changed anything.
func (e *Editor) Align(op func(*diagram.Diagram, []string) bool) bool {
	if !op(e.diag, e.selectedNodes) {
		return false
	}
	e.hist.Commit(e.diag)
	return true
}

// CenterView recenters the viewport on the diagram bounds, optionally fitting
// the zoom scale first.
func (e *Editor) CenterView(fit bool) {
	e.view.CenterOn(e.diag.Bounds(), fit)
}

// Export serializes the live diagram as {"nodes": [...], "edges": [...]}.
func (e *Editor) Export() ([]byte, error) {
	return e.diag.Export()
}

// Import replaces the diagram wholesale from JSON and commits once. Malformed
// input returns an error and leaves the current diagram untouched.
func (e *Editor) Import(data []byte) error {
	d, err := diagram.Parse(data)
	if err != nil {
		return err
	}
	e.diag = d
	e.clearSelection()
	e.connectSource = ""
	e.hist.Commit(e.diag)
	return nil
}

// Attach swaps in an externally owned diagram (a project switch) and
// reinitializes history around it.
func (e *Editor) Attach(d *diagram.Diagram) {
	if d == nil {
		d = diagram.New()
	}
	e.diag = d
	e.clearSelection()
	e.connectSource = ""
	e.hist.Reset(d)
}

func snapToGrid(v, grid float64) float64 {
	return math.Round(v/grid) * grid
}
