package diagram

import (
	"github.com/draftboard/draftboard/backend-go/internal/geom"
)

// ioSlantRatio is the horizontal offset of the io parallelogram's slanted
// sides as a fraction of the node width.
const ioSlantRatio = 0.2

// OutlineKind tells a renderer which primitive to draw.
type OutlineKind string

const (
	OutlineEllipse OutlineKind = "ellipse"
	OutlineRect    OutlineKind = "rect"
	OutlinePolygon OutlineKind = "polygon"
)

// Outline is a node's resolved shape, exposed so any renderer draws exactly
// what hit-testing sees.
type Outline struct {
	Kind   OutlineKind  `json:"kind"`
	Center geom.Point   `json:"center"`
	RX     float64      `json:"rx,omitempty"`
	RY     float64      `json:"ry,omitempty"`
	Points []geom.Point `json:"points,omitempty"`
}

// NodePolygon returns the corner points for polygon-outlined kinds (decision,
// io) and nil for the others.
func NodePolygon(n *Node) []geom.Point {
	hw, hh := n.Width/2, n.Height/2
	switch n.Kind {
	case KindDecision:
		return []geom.Point{
			{X: n.X, Y: n.Y - hh},
			{X: n.X + hw, Y: n.Y},
			{X: n.X, Y: n.Y + hh},
			{X: n.X - hw, Y: n.Y},
		}
	case KindIO:
		slant := n.Width * ioSlantRatio
		return []geom.Point{
			{X: n.X - hw + slant, Y: n.Y - hh},
			{X: n.X + hw, Y: n.Y - hh},
			{X: n.X + hw - slant, Y: n.Y + hh},
			{X: n.X - hw, Y: n.Y + hh},
		}
	default:
		return nil
	}
}

// NodeOutline resolves the render outline for a node.
func NodeOutline(n *Node) Outline {
	center := geom.Point{X: n.X, Y: n.Y}
	switch n.Kind {
	case KindStart, KindEnd:
		return Outline{Kind: OutlineEllipse, Center: center, RX: n.Width / 2, RY: n.Height / 2}
	case KindDecision, KindIO:
		return Outline{Kind: OutlinePolygon, Center: center, Points: NodePolygon(n)}
	default:
		return Outline{Kind: OutlineRect, Center: center, RX: n.Width / 2, RY: n.Height / 2}
	}
}

// BoundaryPoint returns the point on a node's outline in the direction from
// its center toward (tx, ty). A target at the center returns the center.
func BoundaryPoint(n *Node, tx, ty float64) geom.Point {
	hw, hh := n.Width/2, n.Height/2
	switch n.Kind {
	case KindStart, KindEnd:
		return geom.EllipseBoundary(n.X, n.Y, hw, hh, tx, ty)
	case KindDecision:
		return geom.DiamondBoundary(n.X, n.Y, hw, hh, tx, ty)
	case KindIO:
		return geom.PolygonBoundary(n.X, n.Y, tx, ty, NodePolygon(n))
	default:
		return geom.RectBoundary(n.X, n.Y, hw, hh, tx, ty)
	}
}

// HitNode reports whether the world point lies inside the node's outline.
// Unlike marquee selection this respects the exact shape, not the bounding
// box.
func HitNode(n *Node, x, y float64) bool {
	hw, hh := n.Width/2, n.Height/2
	switch n.Kind {
	case KindStart, KindEnd:
		if hw == 0 || hh == 0 {
			return false
		}
		nx, ny := (x-n.X)/hw, (y-n.Y)/hh
		return nx*nx+ny*ny <= 1
	case KindDecision, KindIO:
		return geom.PointInPolygon(x, y, NodePolygon(n))
	default:
		return NodeBounds(n).Contains(x, y)
	}
}
