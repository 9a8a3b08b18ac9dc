package region

import (
	"math"
	"sort"

	"github.com/maskforge/maskforge"
)

// The boolean engine is a scanbeam sweep. The plane is cut into horizontal
// bands at every vertex y and every pairwise edge-crossing y; inside one
// band no two active edges cross, so sorting them by x at the band midpoint
// and accumulating per-operand winding numbers yields the covered slabs
// directly. The result boundary is reconstructed from slab sides plus the
// 1D symmetric difference of covered intervals at each band boundary, then
// traced into closed contours.
//
// Reconstruction runs on a sub-DBU grid (qScale steps per DBU) so that
// corners computed independently from the same edge or crossing land on
// identical keys; final vertices are rounded to the DBU grid once, after
// collinear simplification.

type op int

const (
	opUnion op = iota
	opIntersection
	opDifference
	opXor
)

// inside is the point-classification predicate per operation, over the
// non-zero winding counts of the two operands.
func (o op) inside(wA, wB int) bool {
	switch o {
	case opUnion:
		return wA != 0 || wB != 0
	case opIntersection:
		return wA != 0 && wB != 0
	case opDifference:
		return wA != 0 && wB == 0
	default: // opXor
		return (wA != 0) != (wB != 0)
	}
}

// qScale is the reconstruction sub-grid resolution per DBU.
const qScale = 1024

// eventEps merges sweep events closer than this (in DBU).
const eventEps = 1e-6

type edge struct {
	a, b    maskforge.Point // a.Y < b.Y
	delta   int             // winding change when passing the edge left to right
	operand int             // 0 = A, 1 = B
	x0, y0  float64
	dxdy    float64
}

func (e *edge) xAt(y float64) float64 {
	return e.x0 + (y-e.y0)*e.dxdy
}

func newEdge(a, b maskforge.Point, operand int) (edge, bool) {
	if a.Y == b.Y {
		return edge{}, false // horizontal edges carry no winding
	}
	// A counter-clockwise contour traverses its left side downward, so
	// crossing a downward edge rightward enters the interior: delta +1.
	// Upward traversal is the exit: delta -1.
	delta := 1
	if b.Y > a.Y {
		delta = -1
	} else {
		a, b = b, a
	}
	e := edge{a: a, b: b, delta: delta, operand: operand}
	e.x0 = float64(a.X)
	e.y0 = float64(a.Y)
	e.dxdy = float64(b.X-a.X) / float64(b.Y-a.Y)
	return e, true
}

func collectEdges(dst []edge, ps []maskforge.Polygon, operand int) []edge {
	addRing := func(ring []maskforge.Point) {
		for i, a := range ring {
			b := ring[(i+1)%len(ring)]
			if e, ok := newEdge(a, b, operand); ok {
				dst = append(dst, e)
			}
		}
	}
	for _, p := range ps {
		addRing(p.Outer())
		for _, h := range p.Holes() {
			addRing(h)
		}
	}
	return dst
}

// boolean computes the canonical result polygons of `a <op> b`.
func boolean(a, b []maskforge.Polygon, o op) []maskforge.Polygon {
	edges := collectEdges(nil, a, 0)
	edges = collectEdges(edges, b, 1)
	if len(edges) == 0 {
		return nil
	}

	events := collectEvents(edges)
	slabs, bounds := sweepBands(edges, events, o)
	segs := buildBoundary(slabs, bounds)
	rings := traceContours(segs)
	return assemblePolygons(rings)
}

// collectEvents gathers the sorted, deduplicated band-boundary ys:
// every edge endpoint plus every proper pairwise crossing.
func collectEvents(edges []edge) []float64 {
	ys := make([]float64, 0, 2*len(edges)+8)
	for i := range edges {
		ys = append(ys, edges[i].y0, float64(edges[i].b.Y))
	}

	// Crossing scan, pruned by sorting on the low endpoint y.
	order := make([]int, len(edges))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return edges[order[i]].a.Y < edges[order[j]].a.Y
	})
	for ii, io := range order {
		ei := &edges[io]
		for _, jo := range order[ii+1:] {
			ej := &edges[jo]
			if ej.a.Y >= ei.b.Y {
				break // no interior y overlap possible beyond this point
			}
			if !xRangesOverlap(ei, ej) {
				continue
			}
			if cy, ok := properCrossY(ei, ej); ok {
				ys = append(ys, cy)
			}
		}
	}

	sort.Float64s(ys)
	out := ys[:0]
	for _, y := range ys {
		if len(out) == 0 || y-out[len(out)-1] > eventEps {
			out = append(out, y)
		}
	}
	return out
}

func xRangesOverlap(e, f *edge) bool {
	eMin, eMax := minMax32(e.a.X, e.b.X)
	fMin, fMax := minMax32(f.a.X, f.b.X)
	return eMin <= fMax && fMin <= eMax
}

func minMax32(a, b int32) (int32, int32) {
	if a < b {
		return a, b
	}
	return b, a
}

// properCrossY returns the y of a proper interior crossing of two edges.
// Orientation signs are computed exactly in int64; shared endpoints and
// collinear overlaps are not proper crossings (their ys are vertex events
// already).
func properCrossY(e, f *edge) (float64, bool) {
	o1 := orient(e.a, e.b, f.a)
	o2 := orient(e.a, e.b, f.b)
	if o1 == 0 || o2 == 0 || (o1 > 0) == (o2 > 0) {
		return 0, false
	}
	o3 := orient(f.a, f.b, e.a)
	o4 := orient(f.a, f.b, e.b)
	if o3 == 0 || o4 == 0 || (o3 > 0) == (o4 > 0) {
		return 0, false
	}
	d1x := float64(e.b.X - e.a.X)
	d1y := float64(e.b.Y - e.a.Y)
	d2x := float64(f.b.X - f.a.X)
	d2y := float64(f.b.Y - f.a.Y)
	denom := d1x*d2y - d1y*d2x
	t := (float64(f.a.X-e.a.X)*d2y - float64(f.a.Y-e.a.Y)*d2x) / denom
	return e.y0 + t*d1y, true
}

func orient(a, b, c maskforge.Point) int64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// slab is one covered x-interval of one band, with corners on the q-grid.
type slab struct {
	lx0, rx0 int64 // x at the band bottom
	lx1, rx1 int64 // x at the band top
}

// bandBounds carries a band's boundary ys on the q-grid.
type bandBounds struct {
	qy0, qy1 int64
}

// sweepBands classifies every band and returns its covered slabs.
func sweepBands(edges []edge, events []float64, o op) ([][]slab, []bandBounds) {
	slabs := make([][]slab, 0, len(events))
	bounds := make([]bandBounds, 0, len(events))

	type item struct {
		e          *edge
		xm, x0, x1 float64
	}
	items := make([]item, 0, len(edges))

	for k := 0; k+1 < len(events); k++ {
		y0, y1 := events[k], events[k+1]
		mid := (y0 + y1) / 2

		items = items[:0]
		for i := range edges {
			e := &edges[i]
			if e.y0 < mid && float64(e.b.Y) > mid {
				items = append(items, item{e: e, xm: e.xAt(mid), x0: e.xAt(y0), x1: e.xAt(y1)})
			}
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].xm != items[j].xm {
				return items[i].xm < items[j].xm
			}
			return items[i].x1 < items[j].x1
		})

		var bandSlabs []slab
		wA, wB := 0, 0
		inside := false
		var lx0, lx1 int64
		for _, it := range items {
			if it.e.operand == 0 {
				wA += it.e.delta
			} else {
				wB += it.e.delta
			}
			now := o.inside(wA, wB)
			if now == inside {
				continue
			}
			if now {
				lx0, lx1 = qround(it.x0), qround(it.x1)
			} else {
				rx0, rx1 := qround(it.x0), qround(it.x1)
				rx0 = max(rx0, lx0)
				rx1 = max(rx1, lx1)
				if rx0 > lx0 || rx1 > lx1 {
					// Coalesce slabs separated by a zero-width seam
					// (coincident duplicate edges).
					if n := len(bandSlabs); n > 0 &&
						bandSlabs[n-1].rx0 == lx0 && bandSlabs[n-1].rx1 == lx1 {
						bandSlabs[n-1].rx0 = rx0
						bandSlabs[n-1].rx1 = rx1
					} else {
						bandSlabs = append(bandSlabs, slab{lx0: lx0, rx0: rx0, lx1: lx1, rx1: rx1})
					}
				}
			}
			inside = now
		}
		slabs = append(slabs, bandSlabs)
		bounds = append(bounds, bandBounds{qy0: qround(y0), qy1: qround(y1)})
	}
	return slabs, bounds
}

func qround(v float64) int64 {
	return int64(math.Round(v * qScale))
}

// qpoint is a reconstruction vertex on the q-grid.
type qpoint struct {
	x, y int64
}

type qseg struct {
	from, to qpoint
}

// buildBoundary emits directed boundary segments with the interior on the
// left: slab sides (left down, right up) and, at each band boundary, the
// 1D symmetric difference of coverage above vs. below (bottom edges +x,
// top edges -x).
func buildBoundary(slabs [][]slab, bounds []bandBounds) []qseg {
	var segs []qseg
	for k, band := range slabs {
		qy0, qy1 := bounds[k].qy0, bounds[k].qy1
		for _, s := range band {
			if s.lx0 != s.rx0 || s.lx1 != s.rx1 { // skip fully degenerate
				segs = append(segs,
					qseg{from: qpoint{s.lx1, qy1}, to: qpoint{s.lx0, qy0}},
					qseg{from: qpoint{s.rx0, qy0}, to: qpoint{s.rx1, qy1}},
				)
			}
		}
	}

	// Horizontal boundary pieces at every band boundary, including the
	// bottom of the first band and the top of the last.
	for k := 0; k <= len(slabs); k++ {
		var below, above []interval
		var qy int64
		if k > 0 {
			for _, s := range slabs[k-1] {
				below = append(below, interval{s.lx1, s.rx1})
			}
			qy = bounds[k-1].qy1
		}
		if k < len(slabs) {
			for _, s := range slabs[k] {
				above = append(above, interval{s.lx0, s.rx0})
			}
			qy = bounds[k].qy0
		}
		below = mergeIntervals(below)
		above = mergeIntervals(above)
		for _, iv := range subtractIntervals(above, below) { // bottom edges
			segs = append(segs, qseg{from: qpoint{iv.lo, qy}, to: qpoint{iv.hi, qy}})
		}
		for _, iv := range subtractIntervals(below, above) { // top edges
			segs = append(segs, qseg{from: qpoint{iv.hi, qy}, to: qpoint{iv.lo, qy}})
		}
	}

	return cancelOpposites(segs)
}

type interval struct {
	lo, hi int64
}

// mergeIntervals sorts and coalesces touching or overlapping intervals.
func mergeIntervals(ivs []interval) []interval {
	if len(ivs) < 2 {
		return ivs
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].lo < ivs[j].lo })
	out := ivs[:1]
	for _, iv := range ivs[1:] {
		if iv.lo <= out[len(out)-1].hi {
			if iv.hi > out[len(out)-1].hi {
				out[len(out)-1].hi = iv.hi
			}
		} else {
			out = append(out, iv)
		}
	}
	return out
}

// subtractIntervals returns a minus b for sorted disjoint interval lists.
func subtractIntervals(a, b []interval) []interval {
	var out []interval
	j := 0
	for _, iv := range a {
		lo := iv.lo
		for j < len(b) && b[j].hi <= lo {
			j++
		}
		k := j
		for k < len(b) && b[k].lo < iv.hi {
			if b[k].lo > lo {
				out = append(out, interval{lo, b[k].lo})
			}
			if b[k].hi > lo {
				lo = b[k].hi
			}
			k++
		}
		if lo < iv.hi {
			out = append(out, interval{lo, iv.hi})
		}
	}
	return out
}

// cancelOpposites removes segment pairs that traverse the same ground in
// opposite directions. Such pairs bound zero-width seams and must not
// survive into the canonical boundary.
func cancelOpposites(segs []qseg) []qseg {
	type key struct{ a, b qpoint }
	canon := func(s qseg) (key, int) {
		if s.from.y < s.to.y || (s.from.y == s.to.y && s.from.x < s.to.x) {
			return key{s.from, s.to}, 1
		}
		return key{s.to, s.from}, -1
	}
	net := make(map[key]int, len(segs))
	for _, s := range segs {
		k, d := canon(s)
		net[k] += d
	}
	out := segs[:0]
	for _, s := range segs {
		k, d := canon(s)
		if net[k]*d > 0 {
			net[k] -= d
			out = append(out, s)
		}
	}
	return out
}

// traceContours stitches directed segments into closed rings. At junction
// vertices the sharpest left turn is taken, which keeps the interior on
// the left and separates regions that touch at a single point.
func traceContours(segs []qseg) [][]qpoint {
	fromIdx := make(map[qpoint][]int, len(segs))
	for i, s := range segs {
		fromIdx[s.from] = append(fromIdx[s.from], i)
	}
	used := make([]bool, len(segs))
	var rings [][]qpoint

	for i := range segs {
		if used[i] {
			continue
		}
		start := segs[i].from
		cur := i
		used[i] = true
		ring := []qpoint{start}
		closed := false
		for iter := 0; iter < len(segs)+1; iter++ {
			end := segs[cur].to
			if end == start {
				closed = true
				break
			}
			ring = append(ring, end)
			next := pickContinuation(segs, fromIdx[end], used, segs[cur])
			if next < 0 {
				break
			}
			used[next] = true
			cur = next
		}
		if closed && len(ring) >= 3 {
			rings = append(rings, ring)
		} else if !closed {
			maskforge.Logger().Debug("region: dropping open boundary chain",
				"points", len(ring))
		}
	}
	return rings
}

// pickContinuation selects the unused outgoing segment making the
// sharpest left turn relative to the incoming direction.
func pickContinuation(segs []qseg, candidates []int, used []bool, in qseg) int {
	dinX := float64(in.to.x - in.from.x)
	dinY := float64(in.to.y - in.from.y)
	best := -1
	bestAngle := math.Inf(-1)
	for _, c := range candidates {
		if used[c] {
			continue
		}
		doutX := float64(segs[c].to.x - segs[c].from.x)
		doutY := float64(segs[c].to.y - segs[c].from.y)
		// CCW turn angle in (-pi, pi]; larger means harder left.
		a := math.Atan2(dinX*doutY-dinY*doutX, dinX*doutX+dinY*doutY)
		if a > bestAngle {
			bestAngle = a
			best = c
		}
	}
	return best
}

// assemblePolygons simplifies rings, rounds them to the DBU grid,
// classifies outers vs. holes, assigns holes to their enclosing outers,
// and returns sorted canonical polygons.
func assemblePolygons(rings [][]qpoint) []maskforge.Polygon {
	var outers []ringInfo
	var holes []ringInfo
	for _, qr := range rings {
		ring := finishRing(qr)
		if ring == nil {
			continue
		}
		a2 := ringArea2(ring)
		if a2 >= 2 {
			outers = append(outers, ringInfo{pts: ring, area2: a2, bbox: ringBBox(ring)})
		} else if a2 <= -2 {
			holes = append(holes, ringInfo{pts: ring, area2: -a2, bbox: ringBBox(ring)})
		}
	}

	holesFor := make([][][]maskforge.Point, len(outers))
	for _, h := range holes {
		oi := findEnclosingOuter(outers, h)
		if oi < 0 {
			maskforge.Logger().Debug("region: hole without enclosing outer dropped",
				"bbox", h.bbox)
			continue
		}
		holesFor[oi] = append(holesFor[oi], h.pts)
	}

	polys := make([]maskforge.Polygon, 0, len(outers))
	for i, o := range outers {
		p, err := maskforge.NewPolygon(o.pts, holesFor[i]...)
		if err != nil {
			maskforge.Logger().Debug("region: dropping degenerate result contour",
				"err", err)
			continue
		}
		polys = append(polys, p)
	}
	return sortPolygons(polys)
}

type ringInfo struct {
	pts   []maskforge.Point
	area2 int64
	bbox  maskforge.Box
}

// finishRing simplifies a q-grid ring and rounds it onto the DBU grid.
func finishRing(qr []qpoint) []maskforge.Point {
	qr = simplifyQRing(qr)
	if len(qr) < 3 {
		return nil
	}
	ring := make([]maskforge.Point, 0, len(qr))
	for _, q := range qr {
		p := maskforge.Pt(qToDBU(q.x), qToDBU(q.y))
		if len(ring) > 0 && ring[len(ring)-1] == p {
			continue
		}
		ring = append(ring, p)
	}
	for len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return nil
	}
	return ring
}

// simplifyQRing removes vertices that deviate from the line through their
// neighbors by less than half a q-grid step. This strips the band-boundary
// waypoints the sweep introduced along straight edges while keeping every
// true corner (true corners deviate by at least one DBU = qScale steps).
func simplifyQRing(qr []qpoint) []qpoint {
	const maxDev = 0.45
	changed := true
	for changed && len(qr) > 3 {
		changed = false
		out := make([]qpoint, 0, len(qr))
		n := len(qr)
		for i := 0; i < n; i++ {
			a := qr[(i+n-1)%n]
			b := qr[i]
			c := qr[(i+1)%n]
			if b == a {
				changed = true
				continue
			}
			acx, acy := float64(c.x-a.x), float64(c.y-a.y)
			abx, aby := float64(b.x-a.x), float64(b.y-a.y)
			lenAC := math.Hypot(acx, acy)
			if lenAC == 0 {
				// a == c: spike; drop b.
				changed = true
				continue
			}
			dev := math.Abs(acx*aby-acy*abx) / lenAC
			if dev < maxDev {
				changed = true
				continue
			}
			out = append(out, b)
		}
		qr = out
	}
	return qr
}

func qToDBU(v int64) int32 {
	if v >= 0 {
		return int32((v + qScale/2) / qScale)
	}
	return int32(-((-v + qScale/2) / qScale))
}

func ringArea2(ring []maskforge.Point) int64 {
	var sum int64
	for i, p := range ring {
		sum += p.Cross(ring[(i+1)%len(ring)])
	}
	return sum
}

func ringBBox(ring []maskforge.Point) maskforge.Box {
	b := maskforge.EmptyBox()
	for _, p := range ring {
		b = b.UnionPoint(p)
	}
	return b
}

// findEnclosingOuter returns the smallest outer strictly containing some
// vertex of the hole, or -1.
func findEnclosingOuter(outers []ringInfo, h ringInfo) int {
	best := -1
	for i, o := range outers {
		if o.bbox.Min.X > h.bbox.Min.X || o.bbox.Max.X < h.bbox.Max.X ||
			o.bbox.Min.Y > h.bbox.Min.Y || o.bbox.Max.Y < h.bbox.Max.Y {
			continue
		}
		contained := false
		for _, v := range h.pts {
			if ringContains(o.pts, v) {
				contained = true
				break
			}
		}
		if contained && (best < 0 || o.area2 < outers[best].area2) {
			best = i
		}
	}
	return best
}

// ringContains is a non-zero winding point test with exact orientation.
func ringContains(ring []maskforge.Point, pt maskforge.Point) bool {
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
	return w != 0
}

func sortPolygons(ps []maskforge.Polygon) []maskforge.Polygon {
	sort.Slice(ps, func(i, j int) bool {
		bi, bj := ps[i].BoundingBox(), ps[j].BoundingBox()
		if bi.Min.Y != bj.Min.Y {
			return bi.Min.Y < bj.Min.Y
		}
		if bi.Min.X != bj.Min.X {
			return bi.Min.X < bj.Min.X
		}
		return ps[i].Area2() < ps[j].Area2()
	})
	return ps
}
