// Package validate runs fabrication rule checks over a flattened design
// snapshot. Checks never abort on the first finding: every rule runs to
// completion and the full violation list comes back in one structured
// report, ordered and machine-readable.
//
// Validation always consumes a design.Flat, never the raw hierarchy, so
// overlaps across instance boundaries are seen as they will print.
package validate

import (
	"errors"
	"fmt"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/design"
	"github.com/maskforge/maskforge/region"
)

// Check identifies the rule a violation came from.
type Check string

const (
	CheckOverlap       Check = "overlap"
	CheckClearance     Check = "clearance"
	CheckSymmetry      Check = "symmetry"
	CheckMinFeature    Check = "min-feature"
	CheckClosedPolygon Check = "closed-polygon"
)

// Violation is one rule finding. Where localizes the offending geometry
// in database units; Area2 is its doubled area when the finding has one.
type Violation struct {
	Check  Check         `json:"check"`
	Layers []string      `json:"layers"`
	Where  maskforge.Box `json:"where"`
	Area2  int64         `json:"area2,omitempty"`
	Detail string        `json:"detail"`
}

// Report collects every violation of a validation run.
type Report struct {
	Violations []Violation `json:"violations"`
}

// OK reports whether the run found no violations.
func (r *Report) OK() bool { return len(r.Violations) == 0 }

func (r *Report) add(v Violation) { r.Violations = append(r.Violations, v) }

// ExclusiveRule declares two layers mutually exclusive. Touching
// boundaries are allowed; interior overlap is a violation unless it
// falls inside Allow.
type ExclusiveRule struct {
	A, B  maskforge.Layer
	Allow region.Region
}

// ClearanceRule requires a minimum boundary-to-boundary distance, in
// database units, between the geometry of two layers.
type ClearanceRule struct {
	A, B maskforge.Layer
	Min  int32
}

// SymmetryRule requires a layer to be mirror-symmetric about the
// vertical line x = AxisX.
type SymmetryRule struct {
	Layer maskforge.Layer
	AxisX int32
}

// MinFeatureRule requires every feature on a layer to be at least Min
// database units wide.
type MinFeatureRule struct {
	Layer maskforge.Layer
	Min   int32
}

// Config lists the rules of one validation run.
type Config struct {
	Exclusive  []ExclusiveRule
	Clearance  []ClearanceRule
	Symmetry   []SymmetryRule
	MinFeature []MinFeatureRule

	// CurveTolerance discounts clearance findings thinner than this many
	// database units, attributing them to arc approximation error.
	// Zero means the default of 2.
	CurveTolerance int32
}

func (c Config) curveTol() int32 {
	if c.CurveTolerance <= 0 {
		return 2
	}
	return c.CurveTolerance
}

// Run executes every configured check against the snapshot.
func Run(f *design.Flat, cfg Config) Report {
	var rep Report
	for _, rule := range cfg.Exclusive {
		checkOverlap(f, rule, &rep)
	}
	for _, rule := range cfg.Clearance {
		checkClearance(f, rule, cfg.curveTol(), &rep)
	}
	for _, rule := range cfg.Symmetry {
		checkSymmetry(f, rule, &rep)
	}
	for _, rule := range cfg.MinFeature {
		checkMinFeature(f, rule, cfg.curveTol(), &rep)
	}
	checkClosedPolygons(f, &rep)

	maskforge.Logger().Debug("validation finished",
		"violations", len(rep.Violations))
	return rep
}

func layerPair(a, b maskforge.Layer) []string {
	return []string{a.String(), b.String()}
}

// checkOverlap flags interior intersection between two exclusive layers,
// outside the declared contact allowlist. Boundary touching does not
// intersect and passes.
func checkOverlap(f *design.Flat, rule ExclusiveRule, rep *Report) {
	x := f.Layer(rule.A).Intersection(f.Layer(rule.B))
	if !rule.Allow.IsEmpty() {
		x = x.Difference(rule.Allow)
	}
	for _, p := range x.Polygons() {
		rep.add(Violation{
			Check:  CheckOverlap,
			Layers: layerPair(rule.A, rule.B),
			Where:  p.BoundingBox(),
			Area2:  p.Area2(),
			Detail: fmt.Sprintf("layers %s and %s overlap", rule.A, rule.B),
		})
	}
}

// checkClearance grows layer A by the required distance and intersects
// with B: geometry closer than Min produces interior overlap. Exact for
// rectilinear inputs; findings thinner than the curve tolerance are
// discarded as arc-approximation noise.
func checkClearance(f *design.Flat, rule ClearanceRule, tol int32, rep *Report) {
	a := f.Layer(rule.A)
	if a.IsEmpty() {
		return
	}
	grown, err := region.Size(a, rule.Min)
	if err != nil {
		rep.add(Violation{
			Check:  CheckClearance,
			Layers: layerPair(rule.A, rule.B),
			Detail: fmt.Sprintf("sizing %s by %d failed: %v", rule.A, rule.Min, err),
		})
		return
	}
	x := grown.Intersection(f.Layer(rule.B))
	minArea2 := int64(tol) * int64(tol)
	for _, p := range x.Polygons() {
		if p.Area2() < minArea2 {
			continue
		}
		rep.add(Violation{
			Check:  CheckClearance,
			Layers: layerPair(rule.A, rule.B),
			Where:  p.BoundingBox(),
			Area2:  p.Area2(),
			Detail: fmt.Sprintf("layers %s and %s closer than %d dbu", rule.A, rule.B, rule.Min),
		})
	}
}

// checkSymmetry mirrors the layer about the vertical axis and reports
// the symmetric-difference area if the reflection does not reproduce
// the layer exactly.
func checkSymmetry(f *design.Flat, rule SymmetryRule, rep *Report) {
	r := f.Layer(rule.Layer)
	mirrored := r.Transformed(maskforge.Transform{
		DX:       2 * rule.AxisX,
		Rotation: 180,
		Mirror:   true,
	})
	diff := r.Xor(mirrored)
	if diff.IsEmpty() {
		return
	}
	rep.add(Violation{
		Check:  CheckSymmetry,
		Layers: []string{rule.Layer.String()},
		Where:  diff.BoundingBox(),
		Area2:  diff.Area2(),
		Detail: fmt.Sprintf("layer %s asymmetric about x=%d", rule.Layer, rule.AxisX),
	})
}

// checkMinFeature flags features narrower than the threshold via a
// morphological opening. The geometry is doubled first so the erosion
// distance t-1 lands on the grid for any threshold parity: a feature of
// width exactly t survives, width t-1 vanishes and is flagged. On curved
// boundaries the opening can leave slivers a database unit or two wide
// from offset rounding; lost pieces thinner than the curve tolerance are
// discarded as noise.
func checkMinFeature(f *design.Flat, rule MinFeatureRule, tol int32, rep *Report) {
	if rule.Min <= 1 {
		return
	}
	r := f.Layer(rule.Layer)
	if r.IsEmpty() {
		return
	}
	doubled := r.Scaled(2)
	d := rule.Min - 1

	lost := doubled
	eroded, err := region.Size(doubled, -d)
	if err == nil {
		opened, gerr := region.Size(eroded, d)
		if gerr != nil {
			opened = region.Empty()
		}
		lost = doubled.Difference(opened)
	} else if !errors.Is(err, maskforge.ErrSizingCollapse) {
		rep.add(Violation{
			Check:  CheckMinFeature,
			Layers: []string{rule.Layer.String()},
			Detail: fmt.Sprintf("opening %s failed: %v", rule.Layer, err),
		})
		return
	}

	for _, p := range lost.Polygons() {
		if _, werr := region.Size(region.FromPolygons(p), -tol); werr != nil {
			continue
		}
		b := p.BoundingBox()
		rep.add(Violation{
			Check:  CheckMinFeature,
			Layers: []string{rule.Layer.String()},
			Where: maskforge.Box{
				Min: maskforge.Pt(b.Min.X/2, b.Min.Y/2),
				Max: maskforge.Pt(b.Max.X/2, b.Max.Y/2),
			},
			Area2:  p.Area2() / 4,
			Detail: fmt.Sprintf("feature on %s narrower than %d dbu", rule.Layer, rule.Min),
		})
	}
}

// checkClosedPolygons re-validates every stored polygon against the
// kernel constructor. Construction already guarantees this; the check
// exists as defense in depth for geometry that arrived via decode.
func checkClosedPolygons(f *design.Flat, rep *Report) {
	for _, l := range f.Layers() {
		for _, p := range f.Layer(l).Polygons() {
			if _, err := maskforge.NewPolygon(p.Outer(), p.Holes()...); err != nil {
				rep.add(Violation{
					Check:  CheckClosedPolygon,
					Layers: []string{l.String()},
					Where:  p.BoundingBox(),
					Detail: fmt.Sprintf("invalid polygon on %s: %v", l, err),
				})
			}
		}
	}
}
