// Package design holds the cell hierarchy of a mask layout.
//
// A Design is a named collection of cells. Each cell carries flat shape
// content (layer-tagged polygons) plus instances of other cells, placed
// under an affine transform and optionally repeated on a rectangular
// lattice. The reference graph is kept acyclic at insertion time, so
// traversals never need cycle guards.
package design

import (
	"fmt"
	"sync"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/region"
)

// Shape is one polygon on one layer.
type Shape struct {
	Layer maskforge.Layer
	Poly  maskforge.Polygon
}

// Instance places a child cell inside a parent. A Rows x Cols lattice
// repeats the placement on an axis-aligned grid in the parent frame:
// element (r, c) is shifted by (c*ColPitch, r*RowPitch) database units
// before T applies. Rows and Cols of 0 are treated as 1.
type Instance struct {
	Cell string
	T    maskforge.Transform

	Rows, Cols         int
	RowPitch, ColPitch int32
}

func (in Instance) rows() int {
	if in.Rows < 1 {
		return 1
	}
	return in.Rows
}

func (in Instance) cols() int {
	if in.Cols < 1 {
		return 1
	}
	return in.Cols
}

// IsArray reports whether the instance repeats on a lattice.
func (in Instance) IsArray() bool {
	return in.rows() > 1 || in.cols() > 1
}

// Placements calls fn with the effective transform of every lattice
// element, row-major. A simple instance yields a single call with T.
func (in Instance) Placements(fn func(maskforge.Transform)) {
	for r, nr := 0, in.rows(); r < nr; r++ {
		for c, nc := 0, in.cols(); c < nc; c++ {
			t := in.T
			t.DX += int32(c) * in.ColPitch
			t.DY += int32(r) * in.RowPitch
			fn(t)
		}
	}
}

// Cell is a node of the hierarchy: shapes plus child instances.
type Cell struct {
	name      string
	design    *Design
	shapes    []Shape
	instances []Instance
}

// Name returns the cell's name.
func (c *Cell) Name() string { return c.name }

// Shapes returns the cell's own shapes, in insertion order. The slice
// is shared; callers must not mutate it.
func (c *Cell) Shapes() []Shape { return c.shapes }

// Instances returns the cell's child placements, in insertion order.
func (c *Cell) Instances() []Instance { return c.instances }

// AddPolygon adds one polygon on the given layer.
func (c *Cell) AddPolygon(layer maskforge.Layer, p maskforge.Polygon) {
	c.design.mu.Lock()
	defer c.design.mu.Unlock()
	c.shapes = append(c.shapes, Shape{Layer: layer, Poly: p})
}

// AddRegion adds every polygon of a region on the given layer.
func (c *Cell) AddRegion(layer maskforge.Layer, r region.Region) {
	c.design.mu.Lock()
	defer c.design.mu.Unlock()
	for _, p := range r.Polygons() {
		c.shapes = append(c.shapes, Shape{Layer: layer, Poly: p})
	}
}

// AddInstance places a child cell. The target must already exist in the
// design, and the placement must not create a reference cycle; on either
// failure the hierarchy is left unchanged.
func (c *Cell) AddInstance(in Instance) error {
	c.design.mu.Lock()
	defer c.design.mu.Unlock()

	child, ok := c.design.cells[in.Cell]
	if !ok {
		return fmt.Errorf("design: instance in %q: cell %q: %w",
			c.name, in.Cell, maskforge.ErrUnknownCell)
	}
	if child == c || c.design.reaches(child, c) {
		return fmt.Errorf("design: instance of %q in %q: %w",
			in.Cell, c.name, maskforge.ErrCyclicReference)
	}
	c.instances = append(c.instances, in)
	return nil
}

// Design is a set of uniquely named cells sharing one database grid and
// one layer table.
type Design struct {
	mu     sync.RWMutex
	name   string
	grid   maskforge.Grid
	layers *maskforge.LayerTable
	cells  map[string]*Cell
	order  []string
	top    string
}

// New creates an empty design using the given database grid.
func New(name string, grid maskforge.Grid) *Design {
	return &Design{
		name:   name,
		grid:   grid,
		layers: maskforge.NewLayerTable(),
		cells:  make(map[string]*Cell),
	}
}

// Name returns the design name. It becomes the library name on export.
func (d *Design) Name() string { return d.name }

// Grid returns the database grid shared by all cells.
func (d *Design) Grid() maskforge.Grid { return d.grid }

// Layers returns the design's symbolic layer table.
func (d *Design) Layers() *maskforge.LayerTable { return d.layers }

// SetTop designates the cell exported as the top of the hierarchy. The
// cell must already exist.
func (d *Design) SetTop(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.cells[name]; !ok {
		return fmt.Errorf("design: top cell %q: %w", name, maskforge.ErrUnknownCell)
	}
	d.top = name
	return nil
}

// Top returns the designated top cell. If none was set, the design's
// single root of the reference graph is used; zero or several roots
// yield an error.
func (d *Design) Top() (*Cell, error) {
	d.mu.RLock()
	top := d.top
	d.mu.RUnlock()
	if top != "" {
		return d.Cell(top)
	}
	tops := d.TopCells()
	if len(tops) != 1 {
		return nil, fmt.Errorf("design: %d root cells and no designated top: %w",
			len(tops), maskforge.ErrUnknownCell)
	}
	return tops[0], nil
}

// AddCell creates a new empty cell. Names are unique within a design.
func (d *Design) AddCell(name string) (*Cell, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.cells[name]; ok {
		return nil, fmt.Errorf("design: cell %q: %w", name, maskforge.ErrDuplicateCellName)
	}
	c := &Cell{name: name, design: d}
	d.cells[name] = c
	d.order = append(d.order, name)
	return c, nil
}

// Cell looks up a cell by name.
func (d *Design) Cell(name string) (*Cell, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.cells[name]
	if !ok {
		return nil, fmt.Errorf("design: cell %q: %w", name, maskforge.ErrUnknownCell)
	}
	return c, nil
}

// Cells returns all cells in insertion order.
func (d *Design) Cells() []*Cell {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Cell, len(d.order))
	for i, name := range d.order {
		out[i] = d.cells[name]
	}
	return out
}

// RemoveCell deletes a cell. It fails if any other cell still
// instances it, so the hierarchy never holds dangling references.
func (d *Design) RemoveCell(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.cells[name]; !ok {
		return fmt.Errorf("design: cell %q: %w", name, maskforge.ErrUnknownCell)
	}
	for _, other := range d.cells {
		if other.name == name {
			continue
		}
		for _, in := range other.instances {
			if in.Cell == name {
				return fmt.Errorf("design: cell %q still instanced by %q", name, other.name)
			}
		}
	}
	delete(d.cells, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// TopCells returns the cells no other cell instances, in insertion
// order. A freshly built chip design normally has exactly one.
func (d *Design) TopCells() []*Cell {
	d.mu.RLock()
	defer d.mu.RUnlock()

	referenced := make(map[string]bool)
	for _, c := range d.cells {
		for _, in := range c.instances {
			referenced[in.Cell] = true
		}
	}
	var tops []*Cell
	for _, name := range d.order {
		if !referenced[name] {
			tops = append(tops, d.cells[name])
		}
	}
	return tops
}

// reaches reports whether target is reachable from start through
// instance references. Caller holds the design lock.
func (d *Design) reaches(start, target *Cell) bool {
	seen := make(map[*Cell]bool)
	var walk func(*Cell) bool
	walk = func(c *Cell) bool {
		if c == target {
			return true
		}
		if seen[c] {
			return false
		}
		seen[c] = true
		for _, in := range c.instances {
			if child, ok := d.cells[in.Cell]; ok && walk(child) {
				return true
			}
		}
		return false
	}
	return walk(start)
}

// BoundingBox returns the bounding box of a cell including all child
// instances, in database units. An empty cell yields an empty box.
func (c *Cell) BoundingBox() maskforge.Box {
	c.design.mu.RLock()
	defer c.design.mu.RUnlock()
	return c.bbox(make(map[*Cell]maskforge.Box))
}

func (c *Cell) bbox(memo map[*Cell]maskforge.Box) maskforge.Box {
	if b, ok := memo[c]; ok {
		return b
	}
	b := maskforge.EmptyBox()
	for _, s := range c.shapes {
		b = b.Union(s.Poly.BoundingBox())
	}
	for _, in := range c.instances {
		child, ok := c.design.cells[in.Cell]
		if !ok {
			continue
		}
		cb := child.bbox(memo)
		if cb.IsEmpty() {
			continue
		}
		in.Placements(func(t maskforge.Transform) {
			for _, corner := range []maskforge.Point{
				cb.Min,
				{X: cb.Max.X, Y: cb.Min.Y},
				cb.Max,
				{X: cb.Min.X, Y: cb.Max.Y},
			} {
				b = b.UnionPoint(t.Apply(corner))
			}
		})
	}
	memo[c] = b
	return b
}
