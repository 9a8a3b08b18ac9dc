package main

import (
	"fmt"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/design"
	"github.com/maskforge/maskforge/prims"
	"github.com/maskforge/maskforge/region"
	"github.com/maskforge/maskforge/validate"
)

// couplingGap separates the resonator stubs from the feed trace, in
// micrometers.
const couplingGap = 40.0

// buildChip assembles the demo design: a die with two bond pads feeding
// a through trace, an omega resonator coupled above it, and an
// auto-carved ground plane, repeated on a wafer lattice.
func buildChip(cfg chipConfig) (*design.Design, error) {
	g := maskforge.Grid{UMPerDBU: cfg.GridUMPerDBU}
	d := design.New(cfg.Name, g)

	for name, lc := range cfg.Layers {
		if _, err := d.Layers().Register(name, maskforge.Layer{
			Number: lc.Number, Datatype: lc.Datatype,
		}); err != nil {
			return nil, err
		}
	}
	gold, err := d.Layers().Lookup("gold")
	if err != nil {
		return nil, err
	}
	groundLayer, err := d.Layers().Lookup("ground")
	if err != nil {
		return nil, err
	}

	// Leaf cells.
	padCell, err := d.AddCell("pad")
	if err != nil {
		return nil, err
	}
	padPoly, err := prims.RoundedPad(g, cfg.Pad.Width, cfg.Pad.Height, cfg.Pad.CornerRadius, 0.1)
	if err != nil {
		return nil, err
	}
	padCell.AddPolygon(gold, padPoly)

	omegaCell, err := d.AddCell("omega")
	if err != nil {
		return nil, err
	}
	omegaRegion, err := prims.OmegaRing(g, prims.OmegaSpec{
		Radius:     cfg.Omega.Radius,
		Width:      cfg.Omega.Width,
		Gap:        cfg.Omega.Gap,
		StubLength: cfg.Omega.StubLength,
		StubWidth:  cfg.Omega.StubWidth,
		Tol:        0.1,
	})
	if err != nil {
		return nil, err
	}
	omegaCell.AddRegion(gold, omegaRegion)

	// Die geometry. The feed chain runs along y=0: pad, taper, trace,
	// taper, pad, mirror-symmetric about x=0.
	die, err := d.AddCell("die")
	if err != nil {
		return nil, err
	}

	const traceHalf = 300.0
	taperPoly, err := prims.Taper(g, cfg.Taper.Length, cfg.Taper.StartWidth, cfg.Taper.EndWidth)
	if err != nil {
		return nil, err
	}
	taperX := traceHalf + cfg.Taper.Length
	leftTaper := taperPoly.Transformed(maskforge.Translate(g.DBU(-taperX), 0))
	rightTaper := taperPoly.Transformed(maskforge.Transform{DX: g.DBU(taperX), Rotation: 180})
	die.AddPolygon(gold, leftTaper)
	die.AddPolygon(gold, rightTaper)

	tracePoly, err := prims.Trace(g, []prims.XY{
		{X: -traceHalf, Y: 0}, {X: traceHalf, Y: 0},
	}, cfg.TraceWidth, maskforge.CapFlush, 0.1)
	if err != nil {
		return nil, err
	}
	die.AddPolygon(gold, tracePoly)

	padX := taperX + cfg.Pad.Width/2
	for _, dx := range []float64{-padX, padX} {
		if err := die.AddInstance(design.Instance{
			Cell: "pad",
			T:    maskforge.Translate(g.DBU(dx), 0),
		}); err != nil {
			return nil, err
		}
	}

	// Resonator above the trace, stubs reaching down to the coupling
	// gap.
	omegaY := cfg.TraceWidth/2 + couplingGap + cfg.Omega.Radius + cfg.Omega.StubLength
	if err := die.AddInstance(design.Instance{
		Cell: "omega",
		T:    maskforge.Translate(0, g.DBU(omegaY)),
	}); err != nil {
		return nil, err
	}

	// Alignment marks at the die corners.
	cross, err := prims.AlignmentCross(g, 80, 8)
	if err != nil {
		return nil, err
	}
	markX := padX + cfg.Pad.Width/2 + 100
	markY := omegaY + cfg.Omega.Radius + 100
	for _, sx := range []float64{-markX, markX} {
		for _, sy := range []float64{-markY, markY} {
			die.AddPolygon(gold, cross.Transformed(maskforge.Translate(g.DBU(sx), g.DBU(sy))))
		}
	}

	// Ground plane: full die cover with apertures carved around every
	// gold feature by the configured clearance.
	signal := dieGold(die, d)
	bounds := die.BoundingBox()
	margin := cfg.Ground.Margin
	plane, err := prims.GroundPlane(g,
		prims.XY{X: g.UM(bounds.Min.X) - margin, Y: g.UM(bounds.Min.Y) - margin},
		prims.XY{X: g.UM(bounds.Max.X) + margin, Y: g.UM(bounds.Max.Y) + margin},
		signal, cfg.Ground.Clearance)
	if err != nil {
		return nil, err
	}
	die.AddRegion(groundLayer, plane)

	// Wafer lattice of dies.
	wafer, err := d.AddCell("wafer")
	if err != nil {
		return nil, err
	}
	if err := wafer.AddInstance(design.Instance{
		Cell:     "die",
		Rows:     cfg.Wafer.Rows,
		Cols:     cfg.Wafer.Cols,
		RowPitch: g.DBU(cfg.Wafer.RowPitch),
		ColPitch: g.DBU(cfg.Wafer.ColPitch),
	}); err != nil {
		return nil, err
	}
	if err := d.SetTop("wafer"); err != nil {
		return nil, err
	}
	return d, nil
}

// dieGold merges the die's own gold shapes with its instanced pad and
// resonator footprints, flattened one level.
func dieGold(die *design.Cell, d *design.Design) region.Region {
	var polys []maskforge.Polygon
	for _, s := range die.Shapes() {
		polys = append(polys, s.Poly)
	}
	for _, in := range die.Instances() {
		child, err := d.Cell(in.Cell)
		if err != nil {
			continue
		}
		for _, s := range child.Shapes() {
			in.Placements(func(t maskforge.Transform) {
				polys = append(polys, s.Poly.Transformed(t))
			})
		}
	}
	return region.FromPolygons(polys...)
}

// chipRules derives the validation config from the recipe.
func chipRules(cfg chipConfig, d *design.Design) (validate.Config, error) {
	gold, err := d.Layers().Lookup("gold")
	if err != nil {
		return validate.Config{}, err
	}
	groundLayer, err := d.Layers().Lookup("ground")
	if err != nil {
		return validate.Config{}, err
	}
	// Each die is mirror-symmetric, so the whole lattice is symmetric
	// about its column center.
	axis := int32(cfg.Wafer.Cols-1) * d.Grid().DBU(cfg.Wafer.ColPitch) / 2
	return validate.Config{
		Exclusive: []validate.ExclusiveRule{{A: gold, B: groundLayer}},
		Clearance: []validate.ClearanceRule{{A: gold, B: groundLayer, Min: cfg.Rules.ClearanceDBU}},
		Symmetry:  []validate.SymmetryRule{{Layer: gold, AxisX: axis}},
		MinFeature: []validate.MinFeatureRule{
			{Layer: gold, Min: cfg.Rules.MinFeatureDBU},
			{Layer: groundLayer, Min: cfg.Rules.MinFeatureDBU},
		},
	}, nil
}

// describe summarizes the design for the console.
func describe(d *design.Design) string {
	cells := d.Cells()
	shapes := 0
	instances := 0
	for _, c := range cells {
		shapes += len(c.Shapes())
		instances += len(c.Instances())
	}
	return fmt.Sprintf("%d cells, %d shapes, %d instances", len(cells), shapes, instances)
}
