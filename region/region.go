// Package region implements Boolean set algebra over polygon sets on a
// single logical layer: union, intersection, difference, xor, and signed
// sizing (grow/erode).
//
// A Region is always canonical: no two member polygons overlap, and
// coincident or overlapping input polygons are coalesced into one. Regions
// are ephemeral values derived from stored shapes; they are never persisted
// themselves.
//
// Tie-break convention: touching is not overlapping. Two regions that share
// only boundary points or edges have an empty intersection, and
// Difference(A, B) may touch B at its boundary but never overlaps its
// interior. This is the convention the validation engine's overlap check
// relies on.
package region

import (
	"github.com/maskforge/maskforge"
)

// Region is a canonicalized, non-overlapping set of polygons on one
// logical layer. The zero value is the empty region.
type Region struct {
	polys []maskforge.Polygon
}

// Empty returns the empty region.
func Empty() Region {
	return Region{}
}

// FromPolygons canonicalizes an arbitrary polygon soup into a Region.
// Overlapping and self-intersecting input (non-zero winding rule) is
// merged; the result polygons are disjoint.
func FromPolygons(ps ...maskforge.Polygon) Region {
	if len(ps) == 0 {
		return Region{}
	}
	return Region{polys: boolean(ps, nil, opUnion)}
}

// fromCanonical wraps polygons already known to be canonical.
func fromCanonical(ps []maskforge.Polygon) Region {
	return Region{polys: ps}
}

// Polygons returns the member polygons in canonical order. Read-only.
func (r Region) Polygons() []maskforge.Polygon {
	return r.polys
}

// IsEmpty reports whether the region contains no area.
func (r Region) IsEmpty() bool {
	return len(r.polys) == 0
}

// Count returns the number of member polygons.
func (r Region) Count() int {
	return len(r.polys)
}

// Area2 returns twice the total enclosed area in DBU². Member polygons are
// disjoint, so the sum is exact.
func (r Region) Area2() int64 {
	var a int64
	for _, p := range r.polys {
		a += p.Area2()
	}
	return a
}

// Area returns the total enclosed area in DBU².
func (r Region) Area() float64 {
	return float64(r.Area2()) / 2
}

// BoundingBox returns the bounding box of the whole region.
func (r Region) BoundingBox() maskforge.Box {
	b := maskforge.EmptyBox()
	for _, p := range r.polys {
		b = b.Union(p.BoundingBox())
	}
	return b
}

// Union returns the set union of two regions on the same layer.
func (r Region) Union(s Region) Region {
	if r.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return r
	}
	return fromCanonical(boolean(r.polys, s.polys, opUnion))
}

// Intersection returns the set intersection. Boundary-touching inputs
// produce an empty result (touching is not overlapping).
func (r Region) Intersection(s Region) Region {
	if r.IsEmpty() || s.IsEmpty() {
		return Region{}
	}
	return fromCanonical(boolean(r.polys, s.polys, opIntersection))
}

// Difference returns r minus s. The result never overlaps the interior of
// s; shared boundary edges are permitted.
func (r Region) Difference(s Region) Region {
	if r.IsEmpty() {
		return Region{}
	}
	if s.IsEmpty() {
		return r
	}
	return fromCanonical(boolean(r.polys, s.polys, opDifference))
}

// Xor returns the symmetric difference of two regions.
func (r Region) Xor(s Region) Region {
	if r.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return r
	}
	return fromCanonical(boolean(r.polys, s.polys, opXor))
}

// SymmetricDifferenceArea2 returns twice the area by which two regions
// disagree. Zero means the regions cover identical ground.
func (r Region) SymmetricDifferenceArea2(s Region) int64 {
	return r.Xor(s).Area2()
}

// Equal reports whether two regions cover exactly the same ground,
// independent of how their canonical polygons happen to be tessellated.
func (r Region) Equal(s Region) bool {
	if r.Area2() != s.Area2() {
		return false
	}
	return r.SymmetricDifferenceArea2(s) == 0
}

// Transformed maps the region through a placement transform. Quarter-turn
// placements preserve canonical form directly; arbitrary angles re-merge
// after grid rounding, since rounding can create new coincidences.
func (r Region) Transformed(t maskforge.Transform) Region {
	if r.IsEmpty() {
		return r
	}
	mapped := make([]maskforge.Polygon, len(r.polys))
	for i, p := range r.polys {
		mapped[i] = p.Transformed(t)
	}
	if isExactTransform(t) {
		return fromCanonical(sortPolygons(mapped))
	}
	return FromPolygons(mapped...)
}

// isExactTransform reports whether the transform moves grid points to grid
// points without rounding.
func isExactTransform(t maskforge.Transform) bool {
	q := t.Rotation / 90
	return q == float64(int(q))
}

// Scaled multiplies every coordinate by the integer factor f (exact). Used
// by checks that need sub-DBU precision, such as the minimum-feature
// opening at doubled scale.
func (r Region) Scaled(f int32) Region {
	if f == 1 || r.IsEmpty() {
		return r
	}
	out := make([]maskforge.Polygon, len(r.polys))
	for i, p := range r.polys {
		out[i] = scalePolygon(p, f)
	}
	return fromCanonical(out)
}

func scalePolygon(p maskforge.Polygon, f int32) maskforge.Polygon {
	scaleRing := func(ring []maskforge.Point) []maskforge.Point {
		out := make([]maskforge.Point, len(ring))
		for i, pt := range ring {
			out[i] = maskforge.Pt(pt.X*f, pt.Y*f)
		}
		return out
	}
	holes := make([][]maskforge.Point, len(p.Holes()))
	for i, h := range p.Holes() {
		holes[i] = scaleRing(h)
	}
	sp, err := maskforge.NewPolygon(scaleRing(p.Outer()), holes...)
	if err != nil {
		// Scaling a valid polygon by a positive factor cannot degenerate.
		panic(err)
	}
	return sp
}
