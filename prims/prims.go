// Package prims generates mask-layout building blocks: bond pads, tapers,
// waveguide traces, fan-out routing, ground planes with signal apertures,
// and resonator geometry.
//
// Every generator is a pure function. Dimensions are given in micrometers
// and quantized onto the design grid at entry; there is no shared parameter
// table. The returned polygons are kernel-validated and ready to attach to
// a cell.
package prims

import (
	"fmt"

	"github.com/maskforge/maskforge"
)

// XY is a coordinate in micrometers, before grid quantization.
type XY struct {
	X, Y float64
}

// Pad returns a rectangular bond pad centered at the origin.
func Pad(g maskforge.Grid, width, height float64) (maskforge.Polygon, error) {
	if width <= 0 || height <= 0 {
		return maskforge.Polygon{}, fmt.Errorf("prims: pad %gx%g um: %w",
			width, height, maskforge.ErrDegenerateGeometry)
	}
	return maskforge.RectPolygon(maskforge.Box{
		Min: g.PtUM(-width/2, -height/2),
		Max: g.PtUM(width/2, height/2),
	})
}

// RoundedPad returns a pad with quarter-circle corners. The arc is
// approximated so no chord deviates from the true circle by more than tol
// micrometers. A radius of zero degenerates to Pad.
func RoundedPad(g maskforge.Grid, width, height, radius, tol float64) (maskforge.Polygon, error) {
	if radius == 0 {
		return Pad(g, width, height)
	}
	if width <= 0 || height <= 0 || radius < 0 ||
		2*radius > width || 2*radius > height {
		return maskforge.Polygon{}, fmt.Errorf("prims: rounded pad %gx%g r=%g um: %w",
			width, height, radius, maskforge.ErrDegenerateGeometry)
	}

	min := g.PtUM(-width/2, -height/2)
	max := g.PtUM(width/2, height/2)
	r := g.DBU(radius)
	tolDBU := g.DBU(tol)
	if tolDBU < 1 {
		tolDBU = 1
	}

	// Arc centers, one per corner, counter-clockwise from bottom-right.
	centers := []maskforge.Point{
		{X: max.X - r, Y: min.Y + r},
		{X: max.X - r, Y: max.Y - r},
		{X: min.X + r, Y: max.Y - r},
		{X: min.X + r, Y: min.Y + r},
	}
	pts := make([]maskforge.Point, 0, 4*(maskforge.CircleSegments(r, tolDBU)/4+1))
	for corner, c := range centers {
		pts = append(pts, quarterArc(c, r, corner, tolDBU)...)
	}
	return maskforge.NewPolygon(pts)
}

// quarterArc returns points on the quarter circle of the given corner
// index (0 = spanning -90..0 degrees, proceeding counter-clockwise),
// endpoints included. All four corners draw from one quadrant table, so
// opposite corners mirror each other exactly and the assembled outline
// is symmetric about both pad axes.
func quarterArc(c maskforge.Point, r int32, corner int, tol int32) []maskforge.Point {
	q := maskforge.CircleSegments(r, tol) / 4
	xs, ys := maskforge.QuadrantTable(r, q)
	pts := make([]maskforge.Point, 0, q+1)
	for i := 0; i <= q; i++ {
		var dx, dy int32
		switch corner {
		case 0:
			dx, dy = ys[i], -xs[i]
		case 1:
			dx, dy = xs[i], ys[i]
		case 2:
			dx, dy = -ys[i], xs[i]
		default:
			dx, dy = -xs[i], -ys[i]
		}
		pts = append(pts, maskforge.Pt(c.X+dx, c.Y+dy))
	}
	return pts
}

// Taper returns a trapezoid running along +x from the origin, linearly
// interpolating from startWidth to endWidth over length. All three
// dimensions must be positive.
func Taper(g maskforge.Grid, length, startWidth, endWidth float64) (maskforge.Polygon, error) {
	if length <= 0 || startWidth <= 0 || endWidth <= 0 {
		return maskforge.Polygon{}, fmt.Errorf("prims: taper l=%g w0=%g w1=%g um: %w",
			length, startWidth, endWidth, maskforge.ErrInvalidTaper)
	}
	l := g.DBU(length)
	h0 := g.DBU(startWidth / 2)
	h1 := g.DBU(endWidth / 2)
	return maskforge.NewPolygon([]maskforge.Point{
		{X: 0, Y: -h0},
		{X: l, Y: -h1},
		{X: l, Y: h1},
		{X: 0, Y: h0},
	})
}

// Trace converts a centerline into a trace polygon of the given width.
// tol bounds the chord error of round caps.
func Trace(g maskforge.Grid, centerline []XY, width float64, style maskforge.CapStyle, tol float64) (maskforge.Polygon, error) {
	if width <= 0 {
		return maskforge.Polygon{}, fmt.Errorf("prims: trace width %g um: %w",
			width, maskforge.ErrDegenerateGeometry)
	}
	pts := make([]maskforge.Point, len(centerline))
	for i, p := range centerline {
		pts[i] = g.PtUM(p.X, p.Y)
	}
	tolDBU := g.DBU(tol)
	if tolDBU < 1 {
		tolDBU = 1
	}
	pa := maskforge.Path{Points: pts, Width: g.DBU(width), Cap: style}
	poly, err := pa.ToPolygon(tolDBU)
	if err != nil {
		return maskforge.Polygon{}, fmt.Errorf("prims: trace: %w", err)
	}
	return poly, nil
}
