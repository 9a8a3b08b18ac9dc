package gds

import (
	"fmt"
	"io"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/design"
)

// pendingInstance defers reference insertion until every structure has
// been read, since a stream may reference structures defined later.
type pendingInstance struct {
	cell string
	inst design.Instance
}

// Decode reads a GDSII stream and rebuilds the design. Any malformed
// record aborts the whole decode; a partial hierarchy is never
// returned.
func Decode(r io.Reader) (*design.Design, error) {
	rd := &reader{r: r}

	rec, err := rd.next()
	if err != nil {
		return nil, err
	}
	if rec.typ != recHEADER {
		return nil, fmt.Errorf("gds: stream does not start with HEADER: %w", ErrFormat)
	}

	var (
		d       *design.Design
		name    string
		pending []pendingInstance
	)
	for {
		rec, err = rd.next()
		if err != nil {
			return nil, err
		}
		switch rec.typ {
		case recBGNLIB:
			// Timestamps, ignored.
		case recLIBNAME:
			name = rec.str()
		case recUNITS:
			reals := rec.real8s()
			if len(reals) != 2 || reals[0] <= 0 || reals[1] <= 0 {
				return nil, fmt.Errorf("gds: non-positive unit resolution: %w", ErrFormat)
			}
			d = design.New(name, maskforge.Grid{UMPerDBU: reals[0]})
		case recBGNSTR:
			if d == nil {
				return nil, fmt.Errorf("gds: structure before UNITS: %w", ErrFormat)
			}
			p, err := decodeStructure(rd, d)
			if err != nil {
				return nil, err
			}
			pending = append(pending, p...)
		case recENDLIB:
			if d == nil {
				return nil, fmt.Errorf("gds: stream has no UNITS record: %w", ErrFormat)
			}
			for _, p := range pending {
				c, err := d.Cell(p.cell)
				if err != nil {
					return nil, fmt.Errorf("gds: %w", err)
				}
				if err := c.AddInstance(p.inst); err != nil {
					return nil, fmt.Errorf("gds: %w", err)
				}
			}
			return d, nil
		default:
			if err := skipKnown(rec); err != nil {
				return nil, err
			}
		}
	}
}

// decodeStructure reads one BGNSTR..ENDSTR block. The BGNSTR record
// itself has already been consumed.
func decodeStructure(rd *reader, d *design.Design) ([]pendingInstance, error) {
	rec, err := rd.next()
	if err != nil {
		return nil, err
	}
	if rec.typ != recSTRNAME {
		return nil, fmt.Errorf("gds: structure without STRNAME: %w", ErrFormat)
	}
	cell, err := d.AddCell(rec.str())
	if err != nil {
		return nil, fmt.Errorf("gds: %w", err)
	}

	var pending []pendingInstance
	for {
		rec, err = rd.next()
		if err != nil {
			return nil, err
		}
		switch rec.typ {
		case recENDSTR:
			return pending, nil
		case recBOUNDARY:
			if err := decodeBoundary(rd, cell); err != nil {
				return nil, err
			}
		case recPATH:
			if err := decodePath(rd, cell); err != nil {
				return nil, err
			}
		case recSREF, recAREF:
			inst, err := decodeReference(rd, rec.typ == recAREF)
			if err != nil {
				return nil, err
			}
			pending = append(pending, pendingInstance{cell: cell.Name(), inst: inst})
		case recTEXT, recNODE, recBOX:
			// Annotation elements carry no mask geometry.
			if err := skipElement(rd); err != nil {
				return nil, err
			}
		default:
			if err := skipKnown(rec); err != nil {
				return nil, err
			}
		}
	}
}

// skipElement consumes records up to the next ENDEL.
func skipElement(rd *reader) error {
	for {
		rec, err := rd.next()
		if err != nil {
			return err
		}
		if rec.typ == recENDEL {
			return nil
		}
	}
}

// element accumulates the records of one BOUNDARY/PATH/reference up to
// ENDEL.
type element struct {
	layer    int16
	datatype int16
	width    int32
	pathtype int16
	sname    string
	mirror   bool
	angle    float64
	cols     int16
	rows     int16
	xy       []int32
}

func readElement(rd *reader) (element, error) {
	var el element
	for {
		rec, err := rd.next()
		if err != nil {
			return el, err
		}
		switch rec.typ {
		case recENDEL:
			return el, nil
		case recLAYER:
			el.layer = rec.int16s()[0]
		case recDATATYPE:
			el.datatype = rec.int16s()[0]
		case recWIDTH:
			el.width = rec.int32s()[0]
		case recPATHTYPE:
			el.pathtype = rec.int16s()[0]
		case recSNAME:
			el.sname = rec.str()
		case recSTRANS:
			if len(rec.data) == 2 {
				el.mirror = rec.data[0]&0x80 != 0
			}
		case recANGLE:
			el.angle = rec.real8s()[0]
		case recMAG:
			if mag := rec.real8s()[0]; mag != 1 {
				return el, fmt.Errorf("gds: magnification %g unsupported: %w", mag, ErrFormat)
			}
		case recCOLROW:
			cr := rec.int16s()
			if len(cr) != 2 {
				return el, fmt.Errorf("gds: malformed COLROW: %w", ErrFormat)
			}
			el.cols, el.rows = cr[0], cr[1]
		case recXY:
			el.xy = rec.int32s()
		default:
			if err := skipKnown(rec); err != nil {
				return el, err
			}
		}
	}
}

func decodeBoundary(rd *reader, cell *design.Cell) error {
	el, err := readElement(rd)
	if err != nil {
		return err
	}
	pts, err := xyToPoints(el.xy, 4)
	if err != nil {
		return err
	}
	// Drop the explicit closure point.
	if pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	poly, err := maskforge.NewPolygon(pts)
	if err != nil {
		return fmt.Errorf("gds: boundary on layer %d/%d: %w", el.layer, el.datatype, err)
	}
	cell.AddPolygon(maskforge.Layer{Number: el.layer, Datatype: el.datatype}, poly)
	return nil
}

// decodePath converts a PATH element to its boundary polygon. Pathtype
// 0 is a flush cap, 1 round, 2 half-width square extension.
func decodePath(rd *reader, cell *design.Cell) error {
	el, err := readElement(rd)
	if err != nil {
		return err
	}
	pts, err := xyToPoints(el.xy, 2)
	if err != nil {
		return err
	}
	if el.width <= 0 {
		return fmt.Errorf("gds: path with width %d: %w", el.width, ErrFormat)
	}
	style := maskforge.CapFlush
	switch el.pathtype {
	case 0:
	case 1:
		style = maskforge.CapRound
	case 2:
		style = maskforge.CapSquare
	default:
		return fmt.Errorf("gds: pathtype %d unsupported: %w", el.pathtype, ErrFormat)
	}
	pa := maskforge.Path{Points: pts, Width: el.width, Cap: style}
	poly, err := pa.ToPolygon(1)
	if err != nil {
		return fmt.Errorf("gds: path on layer %d/%d: %w", el.layer, el.datatype, err)
	}
	cell.AddPolygon(maskforge.Layer{Number: el.layer, Datatype: el.datatype}, poly)
	return nil
}

func decodeReference(rd *reader, array bool) (design.Instance, error) {
	el, err := readElement(rd)
	if err != nil {
		return design.Instance{}, err
	}
	if el.sname == "" {
		return design.Instance{}, fmt.Errorf("gds: reference without SNAME: %w", ErrFormat)
	}
	inst := design.Instance{
		Cell: el.sname,
		T: maskforge.Transform{
			Rotation: el.angle,
			Mirror:   el.mirror,
		},
	}
	if !array {
		pts, err := xyToPoints(el.xy, 1)
		if err != nil {
			return design.Instance{}, err
		}
		inst.T.DX, inst.T.DY = pts[0].X, pts[0].Y
		return inst, nil
	}

	if el.cols < 1 || el.rows < 1 {
		return design.Instance{}, fmt.Errorf("gds: AREF with %dx%d lattice: %w", el.cols, el.rows, ErrFormat)
	}
	pts, err := xyToPoints(el.xy, 3)
	if err != nil {
		return design.Instance{}, err
	}
	origin, colRef, rowRef := pts[0], pts[1], pts[2]
	if colRef.Y != origin.Y || rowRef.X != origin.X {
		return design.Instance{}, fmt.Errorf("gds: skewed array lattice: %w", ErrFormat)
	}
	inst.T.DX, inst.T.DY = origin.X, origin.Y
	inst.Cols, inst.Rows = int(el.cols), int(el.rows)
	inst.ColPitch = (colRef.X - origin.X) / int32(el.cols)
	inst.RowPitch = (rowRef.Y - origin.Y) / int32(el.rows)
	return inst, nil
}

func xyToPoints(xy []int32, minPts int) ([]maskforge.Point, error) {
	if len(xy)%2 != 0 || len(xy)/2 < minPts {
		return nil, fmt.Errorf("gds: XY record with %d coordinates: %w", len(xy), ErrFormat)
	}
	pts := make([]maskforge.Point, len(xy)/2)
	for i := range pts {
		pts[i] = maskforge.Pt(xy[2*i], xy[2*i+1])
	}
	return pts, nil
}

// skipKnown ignores records the decoder understands but does not use.
// Anything else is an unknown mandatory record and fails the decode.
func skipKnown(rec record) error {
	switch rec.typ {
	case recELFLAGS, recPLEX:
		return nil
	}
	return fmt.Errorf("gds: unknown record type 0x%02x: %w", rec.typ, ErrFormat)
}
