package diagram

import (
	"math"

	"github.com/draftboard/draftboard/backend-go/internal/geom"
)

// boundaryGap pushes resolved endpoints slightly off the outline so the
// stroke never renders exactly on the shape's seam.
const boundaryGap = 2

// Path is an edge's resolved two-segment polyline.
type Path struct {
	Source geom.Point `json:"source"`
	Bend   geom.Point `json:"bend"`
	Target geom.Point `json:"target"`
}

// EdgePath derives the rendered path of an edge. Returns false when either
// endpoint node is missing; callers skip such edges without error.
//
// When no explicit bend is stored the bend is resolved in two passes: first a
// provisional boundary point toward the midpoint of the centers, then the
// final bend as the midpoint of the two provisional boundary points. The
// second pass makes the default elbow hug the shapes instead of their centers.
func (d *Diagram) EdgePath(e *Edge) (Path, bool) {
	src := d.NodeByID(e.SourceID)
	tgt := d.NodeByID(e.TargetID)
	if src == nil || tgt == nil {
		return Path{}, false
	}

	explicit := e.BendX != nil && e.BendY != nil
	bend := geom.Point{X: (src.X + tgt.X) / 2, Y: (src.Y + tgt.Y) / 2}
	if explicit {
		bend = geom.Point{X: *e.BendX, Y: *e.BendY}
	}

	s := BoundaryPoint(src, bend.X, bend.Y)
	t := BoundaryPoint(tgt, bend.X, bend.Y)
	if !explicit {
		bend = geom.Point{X: (s.X + t.X) / 2, Y: (s.Y + t.Y) / 2}
		s = BoundaryPoint(src, bend.X, bend.Y)
		t = BoundaryPoint(tgt, bend.X, bend.Y)
	}

	return Path{
		Source: pushToward(s, bend, boundaryGap),
		Bend:   bend,
		Target: pushToward(t, bend, boundaryGap),
	}, true
}

// pushToward moves p by dist along the direction to target. Zero-length
// directions leave p unchanged.
func pushToward(p, target geom.Point, dist float64) geom.Point {
	dx, dy := target.X-p.X, target.Y-p.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return p
	}
	return geom.Point{
		X: p.X + dx/length*dist,
		Y: p.Y + dy/length*dist,
	}
}
