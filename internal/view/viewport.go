// Package view maps between world coordinates and screen pixels under the
// canvas pan offset and uniform zoom scale.
package view

import (
	"math"

	"github.com/draftboard/draftboard/backend-go/internal/geom"
)

// Zoom scale limits.
const (
	MinScale = 0.5
	MaxScale = 2.0
)

// fitFill leaves a margin when fitting content into the viewport.
const fitFill = 0.9

// Viewport holds the pan/zoom state plus the pixel size of the drawing
// surface it projects into.
type Viewport struct {
	PanX   float64 `json:"panX"`
	PanY   float64 `json:"panY"`
	Scale  float64 `json:"scale"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// New returns a viewport at identity zoom over a surface of the given pixel
// size.
func New(width, height float64) *Viewport {
	return &Viewport{Scale: 1, Width: width, Height: height}
}

// ToWorld converts a screen position to world coordinates.
func (v *Viewport) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - v.PanX) / v.Scale, (sy - v.PanY) / v.Scale
}

// ToScreen converts a world position to screen coordinates.
func (v *Viewport) ToScreen(wx, wy float64) (float64, float64) {
	return wx*v.Scale + v.PanX, wy*v.Scale + v.PanY
}

// SetScale clamps and applies a zoom scale.
func (v *Viewport) SetScale(s float64) {
	v.Scale = ClampScale(s)
}

// ClampScale bounds a scale to the supported zoom range.
func ClampScale(s float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, s))
}

// CenterOn recomputes the pan so the center of bounds maps to the viewport
// center. When fit is set the scale is first derived so the bounds fill 90%
// of the surface, clamped to the zoom range and rounded to 2 decimals.
func (v *Viewport) CenterOn(bounds geom.Rect, fit bool) {
	if fit && !bounds.IsEmpty() {
		s := math.Min(v.Width*fitFill/bounds.Width, v.Height*fitFill/bounds.Height)
		s = ClampScale(s)
		v.Scale = math.Round(s*100) / 100
	}

	cx, cy := bounds.Center()
	v.PanX = v.Width/2 - cx*v.Scale
	v.PanY = v.Height/2 - cy*v.Scale
}
