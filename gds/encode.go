package gds

import (
	"fmt"
	"io"
	"sort"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/design"
)

// Encode writes the hierarchical design as a GDSII stream: one structure
// per cell in insertion order, with SREF/AREF records for instances.
// Timestamps are written as zero so identical content always produces
// identical bytes.
func Encode(w io.Writer, d *design.Design) error {
	wr := &writer{w: w}
	writeLibHeader(wr, d.Name(), d.Grid())
	for _, c := range d.Cells() {
		writeCell(wr, c)
	}
	wr.record(recENDLIB, dtNone, nil)
	if wr.err != nil {
		return fmt.Errorf("gds: encode %q: %w", d.Name(), wr.err)
	}
	return nil
}

// EncodeFlat writes a flattened snapshot as a GDSII stream with a single
// structure holding only boundary records, no references.
func EncodeFlat(w io.Writer, name string, g maskforge.Grid, f *design.Flat) error {
	wr := &writer{w: w}
	writeLibHeader(wr, name, g)

	wr.int16s(recBGNSTR, make([]int16, 12)...)
	wr.str(recSTRNAME, name)
	for _, l := range f.Layers() {
		for _, p := range f.Layer(l).Polygons() {
			writeBoundary(wr, l, p)
		}
	}
	wr.record(recENDSTR, dtNone, nil)

	wr.record(recENDLIB, dtNone, nil)
	if wr.err != nil {
		return fmt.Errorf("gds: encode flat %q: %w", name, wr.err)
	}
	return nil
}

func writeLibHeader(wr *writer, name string, g maskforge.Grid) {
	wr.int16s(recHEADER, gdsVersion)
	wr.int16s(recBGNLIB, make([]int16, 12)...)
	wr.str(recLIBNAME, name)
	// User unit is the micrometer; meters per DBU follows from the grid.
	wr.real8s(recUNITS, g.UMPerDBU, g.UMPerDBU*1e-6)
}

func writeCell(wr *writer, c *design.Cell) {
	wr.int16s(recBGNSTR, make([]int16, 12)...)
	wr.str(recSTRNAME, c.Name())
	for _, s := range c.Shapes() {
		writeBoundary(wr, s.Layer, s.Poly)
	}
	for _, in := range c.Instances() {
		writeInstance(wr, in)
	}
	wr.record(recENDSTR, dtNone, nil)
}

func writeBoundary(wr *writer, l maskforge.Layer, p maskforge.Polygon) {
	ring := resolveHoles(p)
	wr.record(recBOUNDARY, dtNone, nil)
	wr.int16s(recLAYER, l.Number)
	wr.int16s(recDATATYPE, l.Datatype)
	xy := make([]int32, 0, 2*(len(ring)+1))
	for _, pt := range ring {
		xy = append(xy, pt.X, pt.Y)
	}
	// Explicit closure point per the stream format.
	xy = append(xy, ring[0].X, ring[0].Y)
	wr.int32s(recXY, xy...)
	wr.record(recENDEL, dtNone, nil)
}

func writeInstance(wr *writer, in design.Instance) {
	rows, cols := in.Rows, in.Cols
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	array := rows > 1 || cols > 1

	if array {
		wr.record(recAREF, dtNone, nil)
	} else {
		wr.record(recSREF, dtNone, nil)
	}
	wr.str(recSNAME, in.Cell)

	angle := in.T.Rotation
	if in.T.Mirror || angle != 0 {
		var flags uint16
		if in.T.Mirror {
			flags |= stransMirror
		}
		wr.bits(recSTRANS, flags)
		if angle != 0 {
			wr.real8s(recANGLE, angle)
		}
	}

	if array {
		wr.int16s(recCOLROW, int16(cols), int16(rows))
		// Origin, then the column and row lattice reference points.
		wr.int32s(recXY,
			in.T.DX, in.T.DY,
			in.T.DX+int32(cols)*in.ColPitch, in.T.DY,
			in.T.DX, in.T.DY+int32(rows)*in.RowPitch)
	} else {
		wr.int32s(recXY, in.T.DX, in.T.DY)
	}
	wr.record(recENDEL, dtNone, nil)
}

// resolveHoles returns a single ring for the polygon. Holes are joined
// to the outer ring by zero-width slits: each hole's leftmost vertex is
// bridged to the nearest ring edge straight to its left, preserving the
// enclosed area exactly.
func resolveHoles(p maskforge.Polygon) []maskforge.Point {
	ring := p.Outer()
	holes := p.Holes()
	if len(holes) == 0 {
		return ring
	}

	// Left-to-right hole order keeps every bridge clear of holes not
	// yet inserted.
	sorted := make([][]maskforge.Point, len(holes))
	copy(sorted, holes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return leftmostIndexOf(sorted[i]).less(leftmostIndexOf(sorted[j]))
	})
	for _, hole := range sorted {
		ring = spliceHole(ring, hole)
	}
	return ring
}

type ringAnchor struct {
	pt  maskforge.Point
	idx int
}

func (a ringAnchor) less(b ringAnchor) bool {
	if a.pt.X != b.pt.X {
		return a.pt.X < b.pt.X
	}
	return a.pt.Y < b.pt.Y
}

func leftmostIndexOf(ring []maskforge.Point) ringAnchor {
	best := ringAnchor{pt: ring[0]}
	for i, pt := range ring[1:] {
		cand := ringAnchor{pt: pt, idx: i + 1}
		if cand.less(best) {
			best = cand
		}
	}
	return best
}

// spliceHole cuts a keyhole slit from the hole's leftmost vertex to the
// ring edge immediately to its left and merges the hole contour into
// the ring. Hole winding is opposite the outer's, so traversing the
// hole through the slit keeps the enclosed area correct.
func spliceHole(ring, hole []maskforge.Point) []maskforge.Point {
	anchor := leftmostIndexOf(hole)
	h := anchor.pt

	// Nearest crossing of the leftward horizontal ray with a ring edge.
	bestX := int32(0)
	bestEdge := -1
	found := false
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		x, ok := rayHit(a, b, h)
		if !ok || x >= h.X {
			continue
		}
		if !found || x > bestX {
			bestX, bestEdge, found = x, i, true
		}
	}
	if !found {
		// Hole outside the ring; constructor invariants make this
		// unreachable, keep the geometry rather than dropping it.
		return ring
	}
	bridge := maskforge.Pt(bestX, h.Y)

	out := make([]maskforge.Point, 0, len(ring)+len(hole)+3)
	out = append(out, ring[:bestEdge+1]...)
	out = append(out, bridge)
	for i := 0; i <= len(hole); i++ {
		out = append(out, hole[(anchor.idx+i)%len(hole)])
	}
	out = append(out, bridge)
	out = append(out, ring[bestEdge+1:]...)
	return out
}

// rayHit intersects the horizontal line y = h.Y with edge a-b and
// returns the crossing x. Horizontal edges and edges not spanning the
// line are skipped; the span test is half-open so shared vertices count
// once.
func rayHit(a, b maskforge.Point, h maskforge.Point) (int32, bool) {
	if a.Y == b.Y {
		return 0, false
	}
	lo, hi := a, b
	if lo.Y > hi.Y {
		lo, hi = hi, lo
	}
	if h.Y < lo.Y || h.Y >= hi.Y {
		return 0, false
	}
	t := float64(h.Y-a.Y) / float64(b.Y-a.Y)
	x := float64(a.X) + t*float64(b.X-a.X)
	return int32(x), true
}
