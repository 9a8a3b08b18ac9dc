package maskforge

import (
	"fmt"
	"math"
	"math/big"
)

// Polygon is a closed boundary on the grid: one outer contour plus zero or
// more hole contours. The first and last point of each contour are distinct
// and implicitly closed. Winding is normalized at construction: the outer
// contour runs counter-clockwise, holes run clockwise.
//
// Polygon is a value type; contours are never mutated after construction.
type Polygon struct {
	outer []Point
	holes [][]Point
}

// NewPolygon validates and normalizes a polygon from ordered contour
// points. Consecutive duplicate points are dropped. A contour with fewer
// than three distinct points or zero enclosed area fails with
// ErrDegenerateGeometry. Self-intersection is not checked here; the region
// engine canonicalizes any winding produced by generators.
func NewPolygon(outer []Point, holes ...[]Point) (Polygon, error) {
	o, err := cleanRing(outer)
	if err != nil {
		return Polygon{}, fmt.Errorf("outer contour: %w", err)
	}
	if signedArea2(o) < 0 {
		reverseRing(o)
	}
	var hs [][]Point
	for i, h := range holes {
		c, err := cleanRing(h)
		if err != nil {
			return Polygon{}, fmt.Errorf("hole %d: %w", i, err)
		}
		if signedArea2(c) > 0 {
			reverseRing(c)
		}
		hs = append(hs, c)
	}
	return Polygon{outer: o, holes: hs}, nil
}

// MustPolygon is NewPolygon for statically known-good contours; it panics
// on degenerate input. Intended for tests and fixed tables.
func MustPolygon(outer []Point, holes ...[]Point) Polygon {
	p, err := NewPolygon(outer, holes...)
	if err != nil {
		panic(err)
	}
	return p
}

// RectPolygon returns the axis-aligned rectangle polygon spanning the box.
func RectPolygon(b Box) (Polygon, error) {
	return NewPolygon([]Point{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Max.Y},
		{X: b.Min.X, Y: b.Max.Y},
	})
}

// cleanRing copies a contour, dropping consecutive duplicates (including
// the wrap-around pair) and rejecting degenerate results.
func cleanRing(ring []Point) ([]Point, error) {
	out := make([]Point, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return nil, fmt.Errorf("%d distinct points: %w", len(out), ErrDegenerateGeometry)
	}
	if signedArea2(out) == 0 {
		return nil, fmt.Errorf("zero area: %w", ErrDegenerateGeometry)
	}
	return out, nil
}

func reverseRing(ring []Point) {
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
}

// signedArea2 returns twice the signed area of a ring via the shoelace
// formula. Positive for counter-clockwise rings. Exact in int64.
func signedArea2(ring []Point) int64 {
	var sum int64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		sum += p.Cross(q)
	}
	return sum
}

// Outer returns the outer contour. The returned slice is shared; treat it
// as read-only.
func (p Polygon) Outer() []Point {
	return p.outer
}

// Holes returns the hole contours (possibly nil). Read-only.
func (p Polygon) Holes() [][]Point {
	return p.holes
}

// Area2 returns twice the enclosed area in DBU²: the outer contour area
// minus all hole areas. Always non-negative for a normalized polygon.
func (p Polygon) Area2() int64 {
	a := signedArea2(p.outer)
	for _, h := range p.holes {
		a += signedArea2(h) // holes are clockwise, negative contribution
	}
	return a
}

// Area returns the enclosed area in DBU².
func (p Polygon) Area() float64 {
	return float64(p.Area2()) / 2
}

// BoundingBox returns the tight axis-aligned bounding box. Holes lie
// inside the outer contour and cannot extend it.
func (p Polygon) BoundingBox() Box {
	b := EmptyBox()
	for _, pt := range p.outer {
		b = b.UnionPoint(pt)
	}
	return b
}

// Centroid returns the area centroid, rounded to the nearest grid point.
// Accumulation uses big integers so the result is exact before the single
// final rounding, regardless of coordinate magnitude.
func (p Polygon) Centroid() Point {
	sx, sy := new(big.Int), new(big.Int)
	accumCentroid(sx, sy, p.outer)
	for _, h := range p.holes {
		accumCentroid(sx, sy, h)
	}
	den := new(big.Int).SetInt64(3 * p.Area2())
	return Point{
		X: int32(roundRat(sx, den)),
		Y: int32(roundRat(sy, den)),
	}
}

// accumCentroid adds Σ (p+q)·cross(p,q) terms for one ring.
func accumCentroid(sx, sy *big.Int, ring []Point) {
	var t big.Int
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		cr := a.Cross(b)
		t.SetInt64(int64(a.X) + int64(b.X))
		t.Mul(&t, big.NewInt(cr))
		sx.Add(sx, &t)
		t.SetInt64(int64(a.Y) + int64(b.Y))
		t.Mul(&t, big.NewInt(cr))
		sy.Add(sy, &t)
	}
}

// roundRat rounds num/den to the nearest integer, half away from zero,
// entirely in big-integer arithmetic.
func roundRat(num, den *big.Int) int64 {
	n := new(big.Int).Mul(num, two)
	d := new(big.Int).Mul(den, two)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	half := new(big.Int).Quo(d, two)
	if n.Sign() >= 0 {
		n.Add(n, half)
	} else {
		n.Sub(n, half)
	}
	return new(big.Int).Quo(n, d).Int64()
}

var two = big.NewInt(2)

// Contains reports whether the point lies strictly inside the polygon
// (inside the outer contour and outside every hole), using the non-zero
// winding rule with exact integer orientation tests.
func (p Polygon) Contains(pt Point) bool {
	w := ringWinding(p.outer, pt)
	for _, h := range p.holes {
		w += ringWinding(h, pt)
	}
	return w != 0
}

// ringWinding returns the winding contribution of one ring around pt,
// using the half-open crossing rule so shared edges are counted once.
func ringWinding(ring []Point, pt Point) int {
	var w int
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		if a.Y <= pt.Y && b.Y > pt.Y {
			if orient(a, b, pt) > 0 {
				w++
			}
		} else if a.Y > pt.Y && b.Y <= pt.Y {
			if orient(a, b, pt) < 0 {
				w--
			}
		}
	}
	return w
}

// Transformed returns the polygon mapped through a placement transform.
// Mirroring reverses winding, so contours are re-normalized.
func (p Polygon) Transformed(t Transform) Polygon {
	out := Polygon{outer: transformRing(p.outer, t)}
	if signedArea2(out.outer) < 0 {
		reverseRing(out.outer)
	}
	for _, h := range p.holes {
		th := transformRing(h, t)
		if signedArea2(th) > 0 {
			reverseRing(th)
		}
		out.holes = append(out.holes, th)
	}
	return out
}

func transformRing(ring []Point, t Transform) []Point {
	out := make([]Point, len(ring))
	for i, p := range ring {
		out[i] = t.Apply(p)
	}
	return out
}

// Circle returns a regular polygon approximating a circle of the given
// radius around center, with enough segments that the chord error stays
// within tol (both in DBU). Used by rounded pads, ring resonators, and
// round path caps.
func Circle(center Point, radius, tol int32) (Polygon, error) {
	if radius <= 0 {
		return Polygon{}, fmt.Errorf("circle radius %d: %w", radius, ErrDegenerateGeometry)
	}
	n := CircleSegments(radius, tol)
	q := n / 4
	xs, ys := QuadrantTable(radius, q)
	ring := make([]Point, 0, n)
	for i := 0; i < q; i++ {
		ring = append(ring, Point{X: center.X + xs[i], Y: center.Y + ys[i]})
	}
	for i := 0; i < q; i++ {
		ring = append(ring, Point{X: center.X - ys[i], Y: center.Y + xs[i]})
	}
	for i := 0; i < q; i++ {
		ring = append(ring, Point{X: center.X - xs[i], Y: center.Y - ys[i]})
	}
	for i := 0; i < q; i++ {
		ring = append(ring, Point{X: center.X + ys[i], Y: center.Y - xs[i]})
	}
	return NewPolygon(ring)
}

// CircleSegments returns the segment count for which a regular polygon of
// the given radius keeps the chord sagitta within tol. Minimum 8, and the
// count is rounded up to a multiple of 4 so the cardinal points are hit
// exactly.
func CircleSegments(radius, tol int32) int {
	if tol < 1 {
		tol = 1
	}
	if tol >= radius {
		return 8
	}
	ratio := 1 - float64(tol)/float64(radius)
	n := int(math.Ceil(math.Pi / math.Acos(ratio)))
	if n < 8 {
		n = 8
	}
	return (n + 3) &^ 3
}

// QuadrantTable returns the vertex offsets of a quarter arc of the given
// radius split into q segments, from (radius, 0) up to (0, radius)
// inclusive. The sine column is the cosine column read backwards, so
// rings assembled from the table are exactly symmetric under reflection
// about either axis and under quarter turns.
func QuadrantTable(radius int32, q int) (xs, ys []int32) {
	xs = make([]int32, q+1)
	ys = make([]int32, q+1)
	xs[0] = radius
	for i := 1; i < q; i++ {
		a := (math.Pi / 2) * float64(i) / float64(q)
		xs[i] = int32(math.Round(float64(radius) * math.Cos(a)))
	}
	for i := range ys {
		ys[i] = xs[q-i]
	}
	return xs, ys
}
