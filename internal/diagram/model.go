package diagram

import (
	"github.com/draftboard/draftboard/backend-go/internal/geom"
)

// NodeKind selects the rendered outline of a node.
type NodeKind string

const (
	KindStart    NodeKind = "start"
	KindProcess  NodeKind = "process"
	KindDecision NodeKind = "decision"
	KindIO       NodeKind = "io"
	KindEnd      NodeKind = "end"
)

// LineStyle is the stroke style of an edge.
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
)

// Edge style defaults, filled in by EnsureDefaults for edges created before
// the style fields existed (imports, old payloads).
const (
	DefaultLineColor     = "#2d3436"
	DefaultLineWidth     = 1.4
	DefaultLabelColor    = "#636e72"
	DefaultLabelFontSize = 12
)

// Node is a flowchart shape. X and Y are the center in world space; the
// outline is derived per kind from Width and Height.
type Node struct {
	ID     string   `json:"id"`
	Kind   NodeKind `json:"kind"`
	Text   string   `json:"text"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
}

// Edge is a typed relation between two nodes. BendX/BendY, when set, override
// the derived bend point of the two-segment path.
type Edge struct {
	ID            string    `json:"id"`
	SourceID      string    `json:"sourceId"`
	TargetID      string    `json:"targetId"`
	Label         string    `json:"label"`
	LabelColor    string    `json:"labelColor,omitempty"`
	LabelFontSize float64   `json:"labelFontSize,omitempty"`
	LabelBold     bool      `json:"labelBold,omitempty"`
	LineStyle     LineStyle `json:"lineStyle,omitempty"`
	LineColor     string    `json:"lineColor,omitempty"`
	LineWidth     float64   `json:"lineWidth,omitempty"`
	BendX         *float64  `json:"bendX,omitempty"`
	BendY         *float64  `json:"bendY,omitempty"`
}

// Diagram is the live document: nodes in z-order (later entries draw on top
// and hit-test first) plus edges in no guaranteed order.
type Diagram struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// New returns an empty diagram.
func New() *Diagram {
	return &Diagram{}
}

// DefaultSize returns the placement size for a node kind.
func DefaultSize(kind NodeKind) (w, h float64) {
	switch kind {
	case KindStart, KindEnd:
		return 120, 50
	case KindDecision:
		return 120, 80
	default: // process, io
		return 140, 60
	}
}

// NewNode builds a node of the given kind centered at (x, y) with the kind's
// default size.
func NewNode(id string, kind NodeKind, x, y float64) Node {
	w, h := DefaultSize(kind)
	return Node{ID: id, Kind: kind, X: x, Y: y, Width: w, Height: h}
}

// EnsureDefaults idempotently fills unset style fields of an edge. It must run
// at every ingestion boundary (creation, paste, import) so style-dependent
// code never sees zero values.
func (e *Edge) EnsureDefaults() {
	if e.LineStyle == "" {
		e.LineStyle = LineSolid
	}
	if e.LineColor == "" {
		e.LineColor = DefaultLineColor
	}
	if e.LineWidth == 0 {
		e.LineWidth = DefaultLineWidth
	}
	if e.LabelColor == "" {
		e.LabelColor = DefaultLabelColor
	}
	if e.LabelFontSize == 0 {
		e.LabelFontSize = DefaultLabelFontSize
	}
}

// NodeByID returns a pointer into the node slice, valid until the slice is
// next modified.
func (d *Diagram) NodeByID(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// EdgeByID returns a pointer into the edge slice, valid until the slice is
// next modified.
func (d *Diagram) EdgeByID(id string) *Edge {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return &d.Edges[i]
		}
	}
	return nil
}

// AddNode appends a node on top of the z-order.
func (d *Diagram) AddNode(n Node) {
	d.Nodes = append(d.Nodes, n)
}

// AddEdge appends an edge after normalizing its style fields.
func (d *Diagram) AddEdge(e Edge) {
	e.EnsureDefaults()
	d.Edges = append(d.Edges, e)
}

// RemoveNodes deletes the given nodes and every edge touching any of them.
// Unknown ids are ignored. Filter-and-replace keeps iteration safe.
func (d *Diagram) RemoveNodes(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	nodes := d.Nodes[:0:0]
	for _, n := range d.Nodes {
		if !drop[n.ID] {
			nodes = append(nodes, n)
		}
	}
	d.Nodes = nodes

	edges := d.Edges[:0:0]
	for _, e := range d.Edges {
		if !drop[e.SourceID] && !drop[e.TargetID] {
			edges = append(edges, e)
		}
	}
	d.Edges = edges
}

// RemoveEdge deletes the edge with the given id, if present.
func (d *Diagram) RemoveEdge(id string) {
	edges := d.Edges[:0:0]
	for _, e := range d.Edges {
		if e.ID != id {
			edges = append(edges, e)
		}
	}
	d.Edges = edges
}

// Clone returns a deep, independent copy. History snapshots and clipboard
// payloads rely on there being no aliasing, including the bend pointers.
func (d *Diagram) Clone() *Diagram {
	out := &Diagram{
		Nodes: make([]Node, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
	}
	copy(out.Nodes, d.Nodes)
	for i, e := range d.Edges {
		if e.BendX != nil {
			v := *e.BendX
			e.BendX = &v
		}
		if e.BendY != nil {
			v := *e.BendY
			e.BendY = &v
		}
		out.Edges[i] = e
	}
	return out
}

// BoundsPadding is the margin added around the content extent.
const BoundsPadding = 80

// defaultBounds is returned for an empty diagram so viewport math always has
// a box to center on.
var defaultBounds = geom.Rect{X: -400, Y: -300, Width: 800, Height: 600}

// NodeBounds returns the axis-aligned box covering a node's extent.
func NodeBounds(n *Node) geom.Rect {
	return geom.Rect{
		X:      n.X - n.Width/2,
		Y:      n.Y - n.Height/2,
		Width:  n.Width,
		Height: n.Height,
	}
}

// Bounds returns the axis-aligned box covering every node plus padding, or a
// default centered box when the diagram has no nodes.
func (d *Diagram) Bounds() geom.Rect {
	if len(d.Nodes) == 0 {
		return defaultBounds
	}

	b := NodeBounds(&d.Nodes[0])
	for i := 1; i < len(d.Nodes); i++ {
		b = b.Union(NodeBounds(&d.Nodes[i]))
	}
	return geom.Rect{
		X:      b.X - BoundsPadding,
		Y:      b.Y - BoundsPadding,
		Width:  b.Width + 2*BoundsPadding,
		Height: b.Height + 2*BoundsPadding,
	}
}
