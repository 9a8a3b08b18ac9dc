// Package maskforge provides the geometry kernel for a parametric
// photolithographic mask layout engine.
//
// # Overview
//
// maskforge builds hierarchical mask designs (pads, tapers, waveguide
// traces, resonators, ground planes) from numeric parameters, validates
// them against clearance and minimum-feature rules, and writes exact
// polygon geometry to GDSII stream files in both hierarchical and
// flattened form.
//
// All stored coordinates are integers on the database-unit (DBU) grid.
// Floating-point parameter inputs are quantized to the grid at creation
// time, so no floating drift ever reaches the storage layer.
//
// # Quick Start
//
//	grid := maskforge.Grid{UMPerDBU: 0.001}
//	d := design.New("chip", grid)
//	metal, _ := d.Layers().Register("metal", maskforge.Layer{Number: 1, Datatype: 0})
//
//	top, _ := d.AddCell("top")
//	pad, _ := prims.Pad(grid, 400, 800)
//	top.AddPolygon(metal, pad)
//
//	flat, _ := design.Flatten(d, "top")
//	report := validate.Run(flat, cfg)
//	gds.WriteFile("chip.gds", d)
//
// # Architecture
//
// The library is organized into:
//   - Root package: Point, Polygon, Path, Transform, Layer, Grid
//   - region: Boolean set operations (union, difference, sizing) on one layer
//   - design: cell hierarchy graph, instancing, and flatten/merge
//   - prims: parametric shape generators built on the kernel and region ops
//   - validate: structured rule checks over a flattened snapshot
//   - gds: GDSII stream codec (hierarchical and flattened export)
//   - render: PNG preview of flattened layers
package maskforge
