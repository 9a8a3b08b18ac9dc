package prims

import (
	"fmt"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/region"
)

// GroundPlane returns a full-coverage plane spanning min..max with
// apertures carved around the signal geometry. The aperture region is
// the signal grown by the clearance distance, so moving a signal trace
// regenerates a correctly sized opening; nothing is drawn by hand.
func GroundPlane(g maskforge.Grid, min, max XY, signal region.Region, clearance float64) (region.Region, error) {
	cover, err := maskforge.RectPolygon(maskforge.Box{
		Min: g.PtUM(min.X, min.Y),
		Max: g.PtUM(max.X, max.Y),
	})
	if err != nil {
		return region.Region{}, fmt.Errorf("prims: ground plane cover: %w", err)
	}
	plane := region.FromPolygons(cover)
	if signal.IsEmpty() {
		return plane, nil
	}

	aperture, err := region.Size(signal, g.DBU(clearance))
	if err != nil {
		return region.Region{}, fmt.Errorf("prims: ground plane aperture: %w", err)
	}
	return plane.Difference(aperture), nil
}
