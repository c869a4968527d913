package geom

import "math"

// Boundary points anchor edge endpoints on a node's outline: the point where a
// line from the shape's center toward some external target crosses the outline.
// Every function below returns the center unchanged when the target coincides
// with it; callers tolerate the resulting zero-length segment.

// EllipseBoundary returns the outline point of an ellipse centered at (cx, cy)
// with radii (rx, ry) in the direction of (tx, ty). Closed form: the direction
// cosines of the normalized direction scaled by the radii.
func EllipseBoundary(cx, cy, rx, ry, tx, ty float64) Point {
	dx, dy := tx-cx, ty-cy
	length := math.Hypot(dx, dy)
	if length == 0 {
		return Point{X: cx, Y: cy}
	}
	return Point{
		X: cx + rx*dx/length,
		Y: cy + ry*dy/length,
	}
}

// DiamondBoundary returns the outline point of a diamond with half-extents
// (hw, hh). On the outline |dx|/hw + |dy|/hh == 1, so the direction is scaled
// by the reciprocal of its L1 norm in half-extent units.
func DiamondBoundary(cx, cy, hw, hh, tx, ty float64) Point {
	dx, dy := tx-cx, ty-cy
	k := math.Abs(dx)/hw + math.Abs(dy)/hh
	if k == 0 {
		return Point{X: cx, Y: cy}
	}
	return Point{
		X: cx + dx/k,
		Y: cy + dy/k,
	}
}

// RectBoundary returns the outline point of an axis-aligned rectangle with
// half-extents (hw, hh): the min of the scale factors that reach each
// half-extent.
func RectBoundary(cx, cy, hw, hh, tx, ty float64) Point {
	dx, dy := tx-cx, ty-cy
	if dx == 0 && dy == 0 {
		return Point{X: cx, Y: cy}
	}

	t := math.Inf(1)
	if dx != 0 {
		t = hw / math.Abs(dx)
	}
	if dy != 0 {
		t = min(t, hh/math.Abs(dy))
	}
	return Point{
		X: cx + dx*t,
		Y: cy + dy*t,
	}
}

// PolygonBoundary casts a ray from (cx, cy) toward (tx, ty) against each
// polygon side and returns the nearest intersection along the ray. Used for
// the slanted io quadrilateral, which has no closed form. Falls back to the
// center when the ray misses every side (degenerate polygon or zero direction).
func PolygonBoundary(cx, cy, tx, ty float64, poly []Point) Point {
	dx, dy := tx-cx, ty-cy
	if (dx == 0 && dy == 0) || len(poly) < 3 {
		return Point{X: cx, Y: cy}
	}

	best := math.Inf(1)
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		t, ok := RaySegmentIntersection(cx, cy, dx, dy, a.X, a.Y, b.X, b.Y)
		if ok && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return Point{X: cx, Y: cy}
	}
	return Point{
		X: cx + dx*best,
		Y: cy + dy*best,
	}
}

// RaySegmentIntersection intersects the ray O + t*D (t >= 0) with the segment
// A->B and returns the ray parameter t of the hit. ok is false for parallel
// lines, hits behind the origin, or hits outside the segment.
func RaySegmentIntersection(ox, oy, dx, dy, ax, ay, bx, by float64) (float64, bool) {
	sx, sy := bx-ax, by-ay
	denom := dx*sy - dy*sx
	if denom == 0 {
		return 0, false
	}

	// Solve O + t*D = A + u*S for t (ray) and u (segment).
	t := ((ax-ox)*sy - (ay-oy)*sx) / denom
	u := ((ax-ox)*dy - (ay-oy)*dx) / denom
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// PointToSegmentDistance returns the distance from (px, py) to the segment
// A->B using the standard clamped projection.
func PointToSegmentDistance(px, py, ax, ay, bx, by float64) float64 {
	sx, sy := bx-ax, by-ay
	lenSq := sx*sx + sy*sy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}

	t := ((px-ax)*sx + (py-ay)*sy) / lenSq
	t = max(0, min(1, t))
	return math.Hypot(px-(ax+sx*t), py-(ay+sy*t))
}

// PointInPolygon reports whether (px, py) lies inside the polygon using
// even-odd ray casting.
func PointInPolygon(px, py float64, poly []Point) bool {
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > py) != (b.Y > py) &&
			px < (b.X-a.X)*(py-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
