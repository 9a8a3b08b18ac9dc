package prims

import (
	"fmt"

	"github.com/maskforge/maskforge"
)

// AlignmentCross returns a plus-shaped alignment mark centered at the
// origin: overall span size, arm width lineWidth, both in micrometers.
func AlignmentCross(g maskforge.Grid, size, lineWidth float64) (maskforge.Polygon, error) {
	if size <= 0 || lineWidth <= 0 || lineWidth >= size {
		return maskforge.Polygon{}, fmt.Errorf("prims: cross size=%g line=%g um: %w",
			size, lineWidth, maskforge.ErrDegenerateGeometry)
	}
	s := g.DBU(size / 2)
	h := g.DBU(lineWidth / 2)
	return maskforge.NewPolygon([]maskforge.Point{
		{X: h, Y: -s}, {X: h, Y: -h}, {X: s, Y: -h},
		{X: s, Y: h}, {X: h, Y: h}, {X: h, Y: s},
		{X: -h, Y: s}, {X: -h, Y: h}, {X: -s, Y: h},
		{X: -s, Y: -h}, {X: -h, Y: -h}, {X: -h, Y: -s},
	})
}
