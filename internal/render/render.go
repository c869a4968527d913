// Package render rasterizes diagrams to PNG. Shapes and edge paths are drawn
// from the same outlines and three-point paths the interaction core hit-tests
// against, so the picture always matches what the pointer sees.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/draftboard/draftboard/backend-go/internal/diagram"
	"github.com/draftboard/draftboard/backend-go/internal/view"
)

const (
	nodeStrokeColor = "#2d3436"
	nodeFillColor   = "#ffffff"
	nodeTextColor   = "#2d3436"
	nodeFontSize    = 13.0
	nodeLineWidth   = 1.6
	arrowSize       = 9.0
	arrowAngle      = 0.45 // radians off the shaft
)

// Renderer draws diagrams onto a fixed-size surface.
type Renderer struct {
	width  int
	height int
	ttf    *truetype.Font
}

// New returns a renderer for a surface of the given pixel size.
func New(width, height int) (*Renderer, error) {
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Renderer{width: width, height: height, ttf: ttf}, nil
}

func (r *Renderer) face(size float64) font.Face {
	return truetype.NewFace(r.ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Snapshot renders the diagram fitted and centered on the surface and returns
// the encoded PNG.
func (r *Renderer) Snapshot(d *diagram.Diagram) ([]byte, error) {
	vp := view.New(float64(r.width), float64(r.height))
	vp.CenterOn(d.Bounds(), true)
	return r.PNG(d, vp)
}

// PNG renders the diagram under the given viewport and returns the encoded
// PNG.
func (r *Renderer) PNG(d *diagram.Diagram, vp *view.Viewport) ([]byte, error) {
	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(color.White)
	dc.Clear()

	// Edges first so nodes draw over their seams.
	for i := range d.Edges {
		r.drawEdge(dc, d, &d.Edges[i], vp)
	}
	for i := range d.Nodes {
		r.drawNode(dc, &d.Nodes[i], vp)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawEdge(dc *gg.Context, d *diagram.Diagram, e *diagram.Edge, vp *view.Viewport) {
	p, ok := d.EdgePath(e)
	if !ok {
		return
	}

	sx, sy := vp.ToScreen(p.Source.X, p.Source.Y)
	bx, by := vp.ToScreen(p.Bend.X, p.Bend.Y)
	tx, ty := vp.ToScreen(p.Target.X, p.Target.Y)

	dc.SetHexColor(e.LineColor)
	dc.SetLineWidth(e.LineWidth * vp.Scale)
	if e.LineStyle == diagram.LineDashed {
		dc.SetDash(6*vp.Scale, 4*vp.Scale)
	}
	dc.MoveTo(sx, sy)
	dc.LineTo(bx, by)
	dc.LineTo(tx, ty)
	dc.Stroke()
	dc.SetDash()

	r.drawArrowhead(dc, bx, by, tx, ty, vp.Scale)

	if e.Label != "" {
		dc.SetHexColor(e.LabelColor)
		dc.SetFontFace(r.face(e.LabelFontSize * vp.Scale))
		dc.DrawStringAnchored(e.Label, bx, by-8*vp.Scale, 0.5, 0.5)
	}
}

// drawArrowhead fills a triangle at (tx, ty) pointing away from (fx, fy).
func (r *Renderer) drawArrowhead(dc *gg.Context, fx, fy, tx, ty, scale float64) {
	dx, dy := tx-fx, ty-fy
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	size := arrowSize * scale
	dc.MoveTo(tx, ty)
	dc.LineTo(tx-size*dx+size*dy*arrowAngle, ty-size*dy-size*dx*arrowAngle)
	dc.LineTo(tx-size*dx-size*dy*arrowAngle, ty-size*dy+size*dx*arrowAngle)
	dc.ClosePath()
	dc.Fill()
}

func (r *Renderer) drawNode(dc *gg.Context, n *diagram.Node, vp *view.Viewport) {
	outline := diagram.NodeOutline(n)

	switch outline.Kind {
	case diagram.OutlineEllipse:
		cx, cy := vp.ToScreen(outline.Center.X, outline.Center.Y)
		dc.DrawEllipse(cx, cy, outline.RX*vp.Scale, outline.RY*vp.Scale)
	case diagram.OutlinePolygon:
		for i, pt := range outline.Points {
			x, y := vp.ToScreen(pt.X, pt.Y)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
	default:
		b := diagram.NodeBounds(n)
		x, y := vp.ToScreen(b.X, b.Y)
		dc.DrawRectangle(x, y, b.Width*vp.Scale, b.Height*vp.Scale)
	}

	dc.SetHexColor(nodeFillColor)
	dc.FillPreserve()
	dc.SetHexColor(nodeStrokeColor)
	dc.SetLineWidth(nodeLineWidth * vp.Scale)
	dc.Stroke()

	if n.Text != "" {
		cx, cy := vp.ToScreen(n.X, n.Y)
		dc.SetHexColor(nodeTextColor)
		dc.SetFontFace(r.face(nodeFontSize * vp.Scale))
		dc.DrawStringWrapped(n.Text, cx, cy, 0.5, 0.5, n.Width*vp.Scale*0.9, 1.3, gg.AlignCenter)
	}
}
