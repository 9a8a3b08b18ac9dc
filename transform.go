package maskforge

import "math"

// Transform is a placement mapping: an optional mirror about the x axis,
// followed by a counter-clockwise rotation, followed by a translation.
// Magnification is fixed at 1, since fabrication requires every stored
// dimension to be exact.
//
// This is the GDSII reference-transform model (STRANS mirror bit applied
// before ANGLE). Quarter-turn rotations are applied with pure integer
// arithmetic; arbitrary angles go through float math and are rounded back
// to the grid.
type Transform struct {
	// DX, DY translate in database units.
	DX, DY int32

	// Rotation is counter-clockwise, in degrees, normalized to [0, 360).
	Rotation float64

	// Mirror flips about the x axis (y -> -y) before rotating.
	Mirror bool
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{}
}

// Translate returns a pure translation transform.
func Translate(dx, dy int32) Transform {
	return Transform{DX: dx, DY: dy}
}

// Rotate returns a pure rotation transform (degrees, counter-clockwise).
func Rotate(deg float64) Transform {
	return Transform{Rotation: normalizeDeg(deg)}
}

// MirrorX returns a pure mirror about the x axis.
func MirrorX() Transform {
	return Transform{Mirror: true}
}

// IsIdentity returns true if the transform maps every point to itself.
func (t Transform) IsIdentity() bool {
	return t.DX == 0 && t.DY == 0 && t.Rotation == 0 && !t.Mirror
}

// normalizeDeg wraps an angle into [0, 360).
func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// quarterTurns reports whether the rotation is an exact quarter turn and
// returns the number of turns (0..3). Angles within 1e-9 degrees of a
// quarter turn count as exact, so composed transforms keep the fast path.
func quarterTurns(deg float64) (int, bool) {
	q := deg / 90
	n := math.Round(q)
	if math.Abs(q-n) > 1e-9/90 {
		return 0, false
	}
	return int(n) & 3, true
}

// Apply maps a point through the transform. Quarter-turn placements are
// exact; arbitrary angles round the result to the nearest grid point.
func (t Transform) Apply(p Point) Point {
	x, y := int64(p.X), int64(p.Y)
	if t.Mirror {
		y = -y
	}
	if n, ok := quarterTurns(t.Rotation); ok {
		switch n {
		case 1:
			x, y = -y, x
		case 2:
			x, y = -x, -y
		case 3:
			x, y = y, -x
		}
		return Point{X: int32(x) + t.DX, Y: int32(y) + t.DY}
	}
	rad := t.Rotation * math.Pi / 180
	sin, cos := math.Sincos(rad)
	fx := float64(x)*cos - float64(y)*sin
	fy := float64(x)*sin + float64(y)*cos
	return Point{
		X: int32(math.Round(fx)) + t.DX,
		Y: int32(math.Round(fy)) + t.DY,
	}
}

// Compose returns the transform equivalent to applying u first, then t.
// Composition along an instance chain multiplies in parent-to-leaf order:
//
//	total := parent.Compose(child)
//
// The composition is symbolic (mirror xor, rotation sum with sign flip
// under mirror, translation mapped through the parent), so chains of
// quarter-turn placements stay exact however deep the hierarchy is.
func (t Transform) Compose(u Transform) Transform {
	rot := u.Rotation
	if t.Mirror {
		rot = -rot
	}
	origin := t.Apply(Point{X: u.DX, Y: u.DY})
	return Transform{
		DX:       origin.X,
		DY:       origin.Y,
		Rotation: normalizeDeg(t.Rotation + rot),
		Mirror:   t.Mirror != u.Mirror,
	}
}
