package maskforge

import "errors"

// Sentinel errors for kernel-level and structural failures. Callers match
// them with errors.Is; call sites wrap with context (offending cell, shape,
// or parameter) via fmt.Errorf and %w.
var (
	// ErrDegenerateGeometry reports a malformed input shape: fewer than
	// three distinct points, or zero enclosed area.
	ErrDegenerateGeometry = errors.New("maskforge: degenerate geometry")

	// ErrSizingCollapse reports that a negative sizing (erosion) erased
	// a region entirely.
	ErrSizingCollapse = errors.New("maskforge: sizing collapsed region")

	// ErrDuplicateCellName reports a cell-name collision inside a Design.
	ErrDuplicateCellName = errors.New("maskforge: duplicate cell name")

	// ErrCyclicReference reports an instance insertion that would make a
	// cell (directly or transitively) instance itself.
	ErrCyclicReference = errors.New("maskforge: cyclic cell reference")

	// ErrInvalidTaper reports non-positive taper length or width.
	ErrInvalidTaper = errors.New("maskforge: invalid taper parameters")

	// ErrFanClearance reports a trace fan whose neighbor spacing falls
	// below the configured clearance at some point along the fan.
	ErrFanClearance = errors.New("maskforge: fan-out clearance violation")

	// ErrUnknownLayer reports a symbolic layer name missing from the
	// design's layer table.
	ErrUnknownLayer = errors.New("maskforge: unknown layer")

	// ErrUnknownCell reports a reference to a cell name absent from the
	// design.
	ErrUnknownCell = errors.New("maskforge: unknown cell")
)
