package maskforge

import "math"

// Point represents a 2D point on the database-unit grid.
// Coordinates are integers; one unit is one DBU.
type Point struct {
	X, Y int32
}

// Pt is a convenience function to create a Point.
func Pt(x, y int32) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Neg returns the point with both coordinates negated.
func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Cross returns the 2D cross product of two vectors as an int64 scalar.
// Widening to int64 keeps the product exact for the full int32 range.
func (p Point) Cross(q Point) int64 {
	return int64(p.X)*int64(q.Y) - int64(p.Y)*int64(q.X)
}

// Dot returns the dot product of two vectors as an int64 scalar.
func (p Point) Dot(q Point) int64 {
	return int64(p.X)*int64(q.X) + int64(p.Y)*int64(q.Y)
}

// Length returns the Euclidean length of the vector.
func (p Point) Length() float64 {
	return math.Hypot(float64(p.X), float64(p.Y))
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// orient returns the orientation of c relative to the directed line a->b:
// positive if c is left of it, negative if right, zero if collinear.
// Exact: all products fit int64.
func orient(a, b, c Point) int64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// Box is an axis-aligned bounding box on the grid. An empty box has
// Min > Max; use EmptyBox to start a union.
type Box struct {
	Min, Max Point
}

// EmptyBox returns a box with inverted bounds, suitable as the identity
// for union operations.
func EmptyBox() Box {
	return Box{
		Min: Point{X: math.MaxInt32, Y: math.MaxInt32},
		Max: Point{X: math.MinInt32, Y: math.MinInt32},
	}
}

// IsEmpty returns true if the box encloses no area.
func (b Box) IsEmpty() bool {
	return b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y
}

// Union returns the smallest box containing both b and other.
func (b Box) Union(other Box) Box {
	return Box{
		Min: Point{X: min(b.Min.X, other.Min.X), Y: min(b.Min.Y, other.Min.Y)},
		Max: Point{X: max(b.Max.X, other.Max.X), Y: max(b.Max.Y, other.Max.Y)},
	}
}

// UnionPoint expands the box to include the point.
func (b Box) UnionPoint(p Point) Box {
	return Box{
		Min: Point{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y)},
		Max: Point{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y)},
	}
}

// Inflate returns the box grown by d on every side.
func (b Box) Inflate(d int32) Box {
	return Box{
		Min: Point{X: b.Min.X - d, Y: b.Min.Y - d},
		Max: Point{X: b.Max.X + d, Y: b.Max.Y + d},
	}
}

// Width returns the horizontal extent of the box.
func (b Box) Width() int32 {
	if b.IsEmpty() {
		return 0
	}
	return b.Max.X - b.Min.X
}

// Height returns the vertical extent of the box.
func (b Box) Height() int32 {
	if b.IsEmpty() {
		return 0
	}
	return b.Max.Y - b.Min.Y
}

// Grid carries the database-unit resolution of a design. All generator
// parameters are given in micrometers and quantized through the Grid at
// creation time; nothing downstream of the kernel sees floating values.
type Grid struct {
	// UMPerDBU is the physical length of one database unit in micrometers
	// (0.001 for a 1 nm grid, 0.01 for a 10 nm grid).
	UMPerDBU float64
}

// DBU quantizes a length in micrometers to database units,
// rounding half away from zero.
func (g Grid) DBU(um float64) int32 {
	return int32(math.Round(um / g.UMPerDBU))
}

// UM converts a length in database units back to micrometers.
func (g Grid) UM(dbu int32) float64 {
	return float64(dbu) * g.UMPerDBU
}

// PtUM quantizes a micrometer coordinate pair to a grid Point.
func (g Grid) PtUM(x, y float64) Point {
	return Point{X: g.DBU(x), Y: g.DBU(y)}
}
