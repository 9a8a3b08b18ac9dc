package maskforge

import (
	"fmt"
	"math"
)

// CapStyle selects the end-cap shape used when a Path is converted to a
// Polygon.
type CapStyle int

const (
	// CapFlush ends the trace exactly at the centerline endpoints.
	CapFlush CapStyle = iota
	// CapSquare extends the trace by half the width past each endpoint.
	CapSquare
	// CapRound closes each end with a half-disk approximated within the
	// chord-error tolerance.
	CapRound
)

// Path is an ordered centerline with a width, representing a
// to-be-converted trace. Paths never persist past generation: ToPolygon
// produces the stored form.
type Path struct {
	Points []Point
	Width  int32
	Cap    CapStyle
}

// ToPolygon converts the path into its outline polygon by offsetting the
// centerline by half the width on each side. Joins are mitered, falling
// back to bevels for near-reversal bends; round caps are approximated
// within tol (DBU chord error).
//
// The outline of a self-overlapping centerline can self-intersect; callers
// that generate sharp serpentine traces should canonicalize the result
// through a region union.
func (pa Path) ToPolygon(tol int32) (Polygon, error) {
	if pa.Width <= 0 {
		return Polygon{}, fmt.Errorf("path width %d: %w", pa.Width, ErrDegenerateGeometry)
	}
	pts := dedupePoints(pa.Points)
	if len(pts) < 2 {
		return Polygon{}, fmt.Errorf("path needs 2 distinct points, got %d: %w",
			len(pts), ErrDegenerateGeometry)
	}
	h := float64(pa.Width) / 2

	// Square caps extend the centerline itself; flush and round caps
	// work on the original endpoints.
	fp := make([]fpoint, len(pts))
	for i, p := range pts {
		fp[i] = fpoint{float64(p.X), float64(p.Y)}
	}
	if pa.Cap == CapSquare {
		d0 := fp[1].sub(fp[0]).unit()
		dn := fp[len(fp)-1].sub(fp[len(fp)-2]).unit()
		fp[0] = fp[0].sub(d0.scale(h))
		fp[len(fp)-1] = fp[len(fp)-1].add(dn.scale(h))
	}

	left := offsetSide(fp, h)
	right := offsetSide(reverseF(fp), h)

	ring := make([]Point, 0, len(left)+len(right)+16)
	appendF := func(ps []fpoint) {
		for _, p := range ps {
			ring = append(ring, Point{X: int32(math.Round(p.x)), Y: int32(math.Round(p.y))})
		}
	}
	appendF(left)
	if pa.Cap == CapRound {
		appendF(capArc(fp[len(fp)-1], fp[len(fp)-1].sub(fp[len(fp)-2]).unit(), h, tol))
	}
	appendF(right)
	if pa.Cap == CapRound {
		appendF(capArc(fp[0], fp[0].sub(fp[1]).unit(), h, tol))
	}
	return NewPolygon(ring)
}

func dedupePoints(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

// fpoint is the float working form used only during offsetting; results
// are rounded back to the grid before storage.
type fpoint struct{ x, y float64 }

func (p fpoint) add(q fpoint) fpoint    { return fpoint{p.x + q.x, p.y + q.y} }
func (p fpoint) sub(q fpoint) fpoint    { return fpoint{p.x - q.x, p.y - q.y} }
func (p fpoint) scale(s float64) fpoint { return fpoint{p.x * s, p.y * s} }
func (p fpoint) dot(q fpoint) float64   { return p.x*q.x + p.y*q.y }

func (p fpoint) unit() fpoint {
	l := math.Hypot(p.x, p.y)
	if l == 0 {
		return fpoint{}
	}
	return fpoint{p.x / l, p.y / l}
}

// leftNormal returns the unit normal on the left of the travel direction.
func (p fpoint) leftNormal() fpoint { return fpoint{-p.y, p.x} }

// offsetSide walks the centerline and emits the offset polyline h to the
// left of the travel direction, with mitered interior joins.
func offsetSide(fp []fpoint, h float64) []fpoint {
	out := make([]fpoint, 0, len(fp)+4)
	n0 := fp[1].sub(fp[0]).unit().leftNormal()
	out = append(out, fp[0].add(n0.scale(h)))
	for i := 1; i < len(fp)-1; i++ {
		na := fp[i].sub(fp[i-1]).unit().leftNormal()
		nb := fp[i+1].sub(fp[i]).unit().leftNormal()
		denom := 1 + na.dot(nb)
		if denom < 0.1 {
			// Near-reversal bend: bevel instead of a miter spike.
			out = append(out, fp[i].add(na.scale(h)), fp[i].add(nb.scale(h)))
			continue
		}
		miter := na.add(nb).scale(h / denom)
		out = append(out, fp[i].add(miter))
	}
	nn := fp[len(fp)-1].sub(fp[len(fp)-2]).unit().leftNormal()
	out = append(out, fp[len(fp)-1].add(nn.scale(h)))
	return out
}

func reverseF(fp []fpoint) []fpoint {
	out := make([]fpoint, len(fp))
	for i, p := range fp {
		out[len(fp)-1-i] = p
	}
	return out
}

// capArc emits the interior points of a half-disk of radius h around the
// endpoint, sweeping from the left offset of the outgoing direction dir
// around to the right offset.
func capArc(end, dir fpoint, h float64, tol int32) []fpoint {
	n := CircleSegments(int32(math.Ceil(h)), tol) / 2
	if n < 4 {
		n = 4
	}
	ln := dir.leftNormal()
	start := math.Atan2(ln.y, ln.x)
	out := make([]fpoint, 0, n-1)
	for i := 1; i < n; i++ {
		a := start - math.Pi*float64(i)/float64(n)
		out = append(out, fpoint{end.x + h*math.Cos(a), end.y + h*math.Sin(a)})
	}
	return out
}
