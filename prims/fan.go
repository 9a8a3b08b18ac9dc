package prims

import (
	"fmt"

	"github.com/maskforge/maskforge"
)

// FanSpec parametrizes a fan-out: N parallel traces running along +x,
// converging linearly from StartPitch at x=0 to EndPitch at x=Length.
// All dimensions are micrometers.
type FanSpec struct {
	Traces     int
	Length     float64
	Width      float64
	StartPitch float64
	EndPitch   float64

	// Clearance is the minimum allowed edge-to-edge gap between
	// neighboring traces anywhere along the fan.
	Clearance float64
}

// TraceFan generates the fan's trace polygons, one per line, ordered
// bottom to top. Neighbor spacing interpolates linearly, so its minimum
// is attained at one of the two ends; if the gap there falls below the
// clearance the whole fan is rejected.
func TraceFan(g maskforge.Grid, spec FanSpec) ([]maskforge.Polygon, error) {
	if spec.Traces < 1 || spec.Length <= 0 || spec.Width <= 0 ||
		spec.StartPitch <= 0 || spec.EndPitch <= 0 {
		return nil, fmt.Errorf("prims: fan n=%d l=%g w=%g um: %w",
			spec.Traces, spec.Length, spec.Width, maskforge.ErrDegenerateGeometry)
	}
	if spec.Traces > 1 {
		minPitch := spec.StartPitch
		if spec.EndPitch < minPitch {
			minPitch = spec.EndPitch
		}
		if gap := minPitch - spec.Width; gap < spec.Clearance {
			return nil, fmt.Errorf("prims: fan gap %g um below clearance %g um: %w",
				gap, spec.Clearance, maskforge.ErrFanClearance)
		}
	}

	polys := make([]maskforge.Polygon, 0, spec.Traces)
	for i := 0; i < spec.Traces; i++ {
		off := float64(i) - float64(spec.Traces-1)/2
		poly, err := Trace(g, []XY{
			{X: 0, Y: off * spec.StartPitch},
			{X: spec.Length, Y: off * spec.EndPitch},
		}, spec.Width, maskforge.CapFlush, 0)
		if err != nil {
			return nil, fmt.Errorf("prims: fan trace %d: %w", i, err)
		}
		polys = append(polys, poly)
	}
	return polys, nil
}
