package design

import (
	"fmt"
	"sync"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/internal/parallel"
	"github.com/maskforge/maskforge/region"
)

// Flat is the result of flattening a cell: one merged region per layer,
// every instance expanded and every transform applied.
type Flat struct {
	layers map[maskforge.Layer]region.Region
}

// Layers returns the layers that carry geometry, in (number, datatype)
// order.
func (f *Flat) Layers() []maskforge.Layer {
	out := make([]maskforge.Layer, 0, len(f.layers))
	for l := range f.layers {
		out = append(out, l)
	}
	maskforge.SortLayers(out)
	return out
}

// Layer returns the merged region on one layer. Layers without geometry
// yield an empty region.
func (f *Flat) Layer(l maskforge.Layer) region.Region {
	r, ok := f.layers[l]
	if !ok {
		return region.Empty()
	}
	return r
}

// BoundingBox returns the bounding box over all layers.
func (f *Flat) BoundingBox() maskforge.Box {
	b := maskforge.EmptyBox()
	for _, r := range f.layers {
		b = b.Union(r.BoundingBox())
	}
	return b
}

// Flatten expands the hierarchy below the named cell into per-layer
// merged regions. Instance transforms compose parent to leaf, array
// instances are expanded element by element, and the polygons landing
// on each layer are merged into canonical form. Layers are merged
// concurrently since they are independent.
func Flatten(d *Design, top string) (*Flat, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	root, ok := d.cells[top]
	if !ok {
		return nil, fmt.Errorf("design: flatten %q: %w", top, maskforge.ErrUnknownCell)
	}

	soup := make(map[maskforge.Layer][]maskforge.Polygon)
	collect(root, maskforge.Identity(), soup)

	f := &Flat{layers: make(map[maskforge.Layer]region.Region, len(soup))}
	if len(soup) == 0 {
		return f, nil
	}

	pool := parallel.NewWorkerPool(0)
	defer pool.Close()

	var mu sync.Mutex
	jobs := make([]func(), 0, len(soup))
	for l, polys := range soup {
		l, polys := l, polys
		jobs = append(jobs, func() {
			r := region.FromPolygons(polys...)
			mu.Lock()
			f.layers[l] = r
			mu.Unlock()
		})
	}
	pool.Run(jobs)
	return f, nil
}

// collect walks the hierarchy accumulating transformed polygons per
// layer. t maps the current cell's frame into the top cell's frame.
func collect(c *Cell, t maskforge.Transform, soup map[maskforge.Layer][]maskforge.Polygon) {
	for _, s := range c.shapes {
		soup[s.Layer] = append(soup[s.Layer], s.Poly.Transformed(t))
	}
	for _, in := range c.instances {
		child, ok := c.design.cells[in.Cell]
		if !ok {
			continue
		}
		in.Placements(func(place maskforge.Transform) {
			collect(child, t.Compose(place), soup)
		})
	}
}
