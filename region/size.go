package region

import (
	"fmt"
	"math"

	"github.com/maskforge/maskforge"
)

// Size grows (d > 0) or erodes (d < 0) the region by |d| DBU and returns
// the canonical result. Joins are mitered, so sizing is exact for
// rectilinear geometry: growing an axis-aligned rectangle by d and eroding
// by d reproduces it bit-for-bit. Spiky acute corners fall back to bevels.
//
// Erosion that erases the entire region fails with ErrSizingCollapse;
// erosion legitimately splitting a region into several parts does not.
func Size(r Region, d int32) (Region, error) {
	switch {
	case d == 0 || r.IsEmpty():
		return r, nil
	case d > 0:
		return grow(r, d), nil
	}
	out := erode(r, -d)
	if out.IsEmpty() {
		return Region{}, fmt.Errorf("erode by %d: %w", -d, maskforge.ErrSizingCollapse)
	}
	return out, nil
}

// grow expands every outer boundary outward by d and shrinks holes by d:
// the union of the region with an offset quad along every contour edge and
// a miter patch at every convex corner.
func grow(r Region, d int32) Region {
	soup := make([]maskforge.Polygon, 0, len(r.polys)*4)
	soup = append(soup, r.polys...)
	for _, p := range r.polys {
		soup = appendContourOffsets(soup, p.Outer(), d)
		for _, h := range p.Holes() {
			soup = appendContourOffsets(soup, h, d)
		}
	}
	return fromCanonical(boolean(soup, nil, opUnion))
}

// appendContourOffsets emits the offset quads and corner patches for one
// contour. Contours are stored with the interior on the left (outers
// counter-clockwise, holes clockwise), so the growth direction is always
// the right side of travel.
func appendContourOffsets(dst []maskforge.Polygon, ring []maskforge.Point, d int32) []maskforge.Polygon {
	n := len(ring)
	fd := float64(d)
	for i := 0; i < n; i++ {
		p1 := ring[i]
		p2 := ring[(i+1)%n]
		p3 := ring[(i+2)%n]

		nrm := rightNormal(p1, p2)
		q, err := maskforge.NewPolygon([]maskforge.Point{
			p1, p2,
			offsetPt(p2, nrm, fd),
			offsetPt(p1, nrm, fd),
		})
		if err == nil {
			dst = append(dst, q)
		}

		// Convex corner at p2: patch the gap the two quads leave open.
		din := p2.Sub(p1)
		dout := p3.Sub(p2)
		if din.Cross(dout) <= 0 {
			continue
		}
		na := rightNormal(p1, p2)
		nb := rightNormal(p2, p3)
		denom := 1 + na.dot(nb)
		var patch []maskforge.Point
		if denom < 0.3 {
			// Acute spike: bevel.
			patch = []maskforge.Point{p2, offsetPt(p2, na, fd), offsetPt(p2, nb, fd)}
		} else {
			miter := na.add(nb).scale(1 / denom)
			patch = []maskforge.Point{
				p2,
				offsetPt(p2, na, fd),
				offsetPt(p2, miter, fd),
				offsetPt(p2, nb, fd),
			}
		}
		if pp, err := maskforge.NewPolygon(patch); err == nil {
			dst = append(dst, pp)
		}
	}
	return dst
}

// erode is the dual of grow: complement within an inflated frame, grow the
// complement, and subtract it back out.
func erode(r Region, d int32) Region {
	frameBox := r.BoundingBox().Inflate(3*d + 16)
	frame, err := maskforge.RectPolygon(frameBox)
	if err != nil {
		return Region{}
	}
	comp := fromCanonical(boolean([]maskforge.Polygon{frame}, r.polys, opDifference))
	return r.Difference(grow(comp, d))
}

// rightNormal returns the unit normal on the right of travel a -> b.
func rightNormal(a, b maskforge.Point) fvec {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	l := math.Hypot(dx, dy)
	return fvec{dy / l, -dx / l}
}

type fvec struct{ x, y float64 }

func (v fvec) add(w fvec) fvec      { return fvec{v.x + w.x, v.y + w.y} }
func (v fvec) scale(s float64) fvec { return fvec{v.x * s, v.y * s} }
func (v fvec) dot(w fvec) float64   { return v.x*w.x + v.y*w.y }

func offsetPt(p maskforge.Point, v fvec, d float64) maskforge.Point {
	return maskforge.Pt(
		p.X+int32(math.Round(v.x*d)),
		p.Y+int32(math.Round(v.y*d)),
	)
}
