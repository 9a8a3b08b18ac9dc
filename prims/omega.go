package prims

import (
	"fmt"
	"math"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/region"
)

// OmegaSpec parametrizes an omega-shaped ring resonator: an annulus with
// a gap opened at the bottom and a feed stub running down from each gap
// edge. All dimensions are micrometers.
type OmegaSpec struct {
	Radius float64 // outer radius of the annulus
	Width  float64 // radial width of the ring
	Gap    float64 // opening width at the bottom, centered on x=0

	// StubLength/StubWidth size the two feed stubs. Zero for a plain
	// split ring.
	StubLength float64
	StubWidth  float64

	// Tol bounds the chord error of the circle approximation.
	Tol float64
}

// OmegaRing generates the resonator geometry centered at the origin.
func OmegaRing(g maskforge.Grid, spec OmegaSpec) (region.Region, error) {
	inner := spec.Radius - spec.Width
	if spec.Radius <= 0 || spec.Width <= 0 || inner <= 0 ||
		spec.Gap <= 0 || spec.Gap/2 >= inner {
		return region.Region{}, fmt.Errorf("prims: omega r=%g w=%g gap=%g um: %w",
			spec.Radius, spec.Width, spec.Gap, maskforge.ErrDegenerateGeometry)
	}

	tol := g.DBU(spec.Tol)
	if tol < 1 {
		tol = 1
	}
	outerDisk, err := maskforge.Circle(maskforge.Pt(0, 0), g.DBU(spec.Radius), tol)
	if err != nil {
		return region.Region{}, fmt.Errorf("prims: omega outer: %w", err)
	}
	innerDisk, err := maskforge.Circle(maskforge.Pt(0, 0), g.DBU(inner), tol)
	if err != nil {
		return region.Region{}, fmt.Errorf("prims: omega inner: %w", err)
	}
	ring := region.FromPolygons(outerDisk).Difference(region.FromPolygons(innerDisk))

	// Open the gap: within |x| <= gap/2 the annulus has material only in
	// its bottom band, so a cut reaching y=0 removes exactly that band.
	halfGap := g.DBU(spec.Gap / 2)
	cut, err := maskforge.RectPolygon(maskforge.Box{
		Min: maskforge.Pt(-halfGap, -g.DBU(spec.Radius)-2),
		Max: maskforge.Pt(halfGap, 0),
	})
	if err != nil {
		return region.Region{}, fmt.Errorf("prims: omega gap: %w", err)
	}
	ring = ring.Difference(region.FromPolygons(cut))

	if spec.StubLength <= 0 || spec.StubWidth <= 0 {
		return ring, nil
	}

	// Stub tops sit on the inner-circle chord at the gap edge, so the
	// stubs overlap the ring band without poking into the hole.
	innerDBU := float64(g.DBU(inner))
	top := int32(math.Round(-math.Sqrt(innerDBU*innerDBU - float64(halfGap)*float64(halfGap))))
	bottom := -g.DBU(spec.Radius + spec.StubLength)
	sw := g.DBU(spec.StubWidth)
	for _, x0 := range []int32{halfGap, -halfGap - sw} {
		stub, err := maskforge.RectPolygon(maskforge.Box{
			Min: maskforge.Pt(x0, bottom),
			Max: maskforge.Pt(x0+sw, top),
		})
		if err != nil {
			return region.Region{}, fmt.Errorf("prims: omega stub: %w", err)
		}
		ring = ring.Union(region.FromPolygons(stub))
	}
	return ring, nil
}

// CPW couples a coplanar-waveguide signal trace with the keepout region
// that must be carved from the surrounding ground metal.
type CPW struct {
	Signal  maskforge.Polygon
	Keepout region.Region
}

// CPWLine generates a signal trace along the centerline plus its ground
// keepout, the trace grown by the gap distance on all sides.
func CPWLine(g maskforge.Grid, centerline []XY, width, gap, tol float64) (CPW, error) {
	if gap <= 0 {
		return CPW{}, fmt.Errorf("prims: cpw gap %g um: %w", gap, maskforge.ErrDegenerateGeometry)
	}
	signal, err := Trace(g, centerline, width, maskforge.CapFlush, tol)
	if err != nil {
		return CPW{}, fmt.Errorf("prims: cpw: %w", err)
	}
	keepout, err := region.Size(region.FromPolygons(signal), g.DBU(gap))
	if err != nil {
		return CPW{}, fmt.Errorf("prims: cpw keepout: %w", err)
	}
	return CPW{Signal: signal, Keepout: keepout}, nil
}
