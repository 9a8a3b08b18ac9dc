package gds

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/design"
	"github.com/maskforge/maskforge/region"
)

var (
	testGrid = maskforge.Grid{UMPerDBU: 0.01}
	metal    = maskforge.Layer{Number: 1}
	oxide    = maskforge.Layer{Number: 5, Datatype: 2}
)

func rect(t *testing.T, x0, y0, x1, y1 int32) maskforge.Polygon {
	t.Helper()
	p, err := maskforge.RectPolygon(maskforge.Box{
		Min: maskforge.Pt(x0, y0),
		Max: maskforge.Pt(x1, y1),
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// testDesign builds the reference hierarchy: a top cell holding a
// rotated reference to one child and a 2x3 array of the other.
func testDesign(t *testing.T) *design.Design {
	t.Helper()
	d := design.New("chiplib", testGrid)

	pad, err := d.AddCell("pad")
	if err != nil {
		t.Fatal(err)
	}
	pad.AddPolygon(metal, rect(t, -50, -50, 50, 50))
	pad.AddPolygon(oxide, rect(t, -60, -60, 60, 60))

	res, err := d.AddCell("resonator")
	if err != nil {
		t.Fatal(err)
	}
	res.AddPolygon(metal, maskforge.MustPolygon([]maskforge.Point{
		{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 80}, {X: 120, Y: 80}, {X: 120, Y: 40}, {X: 0, Y: 40},
	}))

	top, err := d.AddCell("top")
	if err != nil {
		t.Fatal(err)
	}
	if err := top.AddInstance(design.Instance{
		Cell: "resonator",
		T:    maskforge.Transform{DX: 1000, DY: 500, Rotation: 90, Mirror: true},
	}); err != nil {
		t.Fatal(err)
	}
	if err := top.AddInstance(design.Instance{
		Cell:     "pad",
		T:        maskforge.Translate(-2000, 0),
		Rows:     2,
		Cols:     3,
		RowPitch: 300,
		ColPitch: 250,
	}); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestHierarchicalRoundTrip(t *testing.T) {
	d := testDesign(t)

	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	if got.Name() != "chiplib" {
		t.Errorf("name = %q", got.Name())
	}
	if g := got.Grid(); g.UMPerDBU != testGrid.UMPerDBU {
		t.Errorf("grid = %v", g)
	}

	cells := got.Cells()
	if len(cells) != 3 {
		t.Fatalf("cells = %d, want 3", len(cells))
	}
	for i, name := range []string{"pad", "resonator", "top"} {
		if cells[i].Name() != name {
			t.Errorf("cells[%d] = %q, want %q", i, cells[i].Name(), name)
		}
	}

	pad, _ := got.Cell("pad")
	if len(pad.Shapes()) != 2 {
		t.Errorf("pad shapes = %d", len(pad.Shapes()))
	}
	if pad.Shapes()[1].Layer != oxide {
		t.Errorf("pad shape layer = %v", pad.Shapes()[1].Layer)
	}

	top, _ := got.Cell("top")
	ins := top.Instances()
	if len(ins) != 2 {
		t.Fatalf("top instances = %d", len(ins))
	}
	ref := ins[0]
	if ref.Cell != "resonator" || ref.T.DX != 1000 || ref.T.DY != 500 ||
		ref.T.Rotation != 90 || !ref.T.Mirror {
		t.Errorf("sref = %+v", ref)
	}
	arr := ins[1]
	if arr.Cell != "pad" || arr.Rows != 2 || arr.Cols != 3 ||
		arr.RowPitch != 300 || arr.ColPitch != 250 ||
		arr.T.DX != -2000 || arr.T.DY != 0 {
		t.Errorf("aref = %+v", arr)
	}
}

func TestDecodeEncodeByteReproducible(t *testing.T) {
	d := testDesign(t)

	var first bytes.Buffer
	if err := Encode(&first, d); err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	var second bytes.Buffer
	if err := Encode(&second, decoded); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("re-encoded stream differs from original")
	}
}

func TestHoleKeyholeRoundTrip(t *testing.T) {
	donut := region.FromPolygons(rect(t, 0, 0, 400, 400)).
		Difference(region.FromPolygons(rect(t, 100, 100, 300, 300)))
	if len(donut.Polygons()[0].Holes()) != 1 {
		t.Fatal("test shape has no hole")
	}

	d := design.New("lib", testGrid)
	c, _ := d.AddCell("donut")
	c.AddRegion(metal, donut)

	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	cell, _ := got.Cell("donut")
	if len(cell.Shapes()) != 1 {
		t.Fatalf("shapes = %d", len(cell.Shapes()))
	}
	// The slit ring canonicalizes back to the exact donut.
	back := region.FromPolygons(cell.Shapes()[0].Poly)
	if !back.Equal(donut) {
		t.Errorf("keyhole round trip differs by area2 %d", back.SymmetricDifferenceArea2(donut))
	}
}

func TestEncodeFlat(t *testing.T) {
	d := testDesign(t)
	flat, err := design.Flatten(d, "top")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := EncodeFlat(&buf, "chip_flat", testGrid, flat); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	cells := got.Cells()
	if len(cells) != 1 || cells[0].Name() != "chip_flat" {
		t.Fatalf("cells = %v", cells)
	}
	if len(cells[0].Instances()) != 0 {
		t.Error("flat export contains reference records")
	}

	// Geometry must match the flattened source exactly, per layer.
	byLayer := make(map[maskforge.Layer][]maskforge.Polygon)
	for _, s := range cells[0].Shapes() {
		byLayer[s.Layer] = append(byLayer[s.Layer], s.Poly)
	}
	for _, l := range flat.Layers() {
		back := region.FromPolygons(byLayer[l]...)
		if !back.Equal(flat.Layer(l)) {
			t.Errorf("layer %s differs by area2 %d", l, back.SymmetricDifferenceArea2(flat.Layer(l)))
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	d := testDesign(t)
	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		t.Fatal(err)
	}
	valid := buf.Bytes()

	t.Run("truncated stream", func(t *testing.T) {
		_, err := Decode(bytes.NewReader(valid[:len(valid)/2]))
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("err = %v, want ErrFormat", err)
		}
	})

	t.Run("empty stream", func(t *testing.T) {
		_, err := Decode(bytes.NewReader(nil))
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("err = %v, want ErrFormat", err)
		}
	})

	t.Run("unknown mandatory record", func(t *testing.T) {
		var bad bytes.Buffer
		wr := &writer{w: &bad}
		wr.int16s(recHEADER, gdsVersion)
		wr.record(0x7E, dtNone, nil)
		_, err := Decode(bytes.NewReader(bad.Bytes()))
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("err = %v, want ErrFormat", err)
		}
	})

	t.Run("non-positive units", func(t *testing.T) {
		var bad bytes.Buffer
		wr := &writer{w: &bad}
		wr.int16s(recHEADER, gdsVersion)
		wr.int16s(recBGNLIB, make([]int16, 12)...)
		wr.str(recLIBNAME, "lib")
		wr.real8s(recUNITS, 0, 1e-8)
		_, err := Decode(bytes.NewReader(bad.Bytes()))
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("err = %v, want ErrFormat", err)
		}
	})

	t.Run("no header", func(t *testing.T) {
		var bad bytes.Buffer
		wr := &writer{w: &bad}
		wr.str(recLIBNAME, "lib")
		_, err := Decode(bytes.NewReader(bad.Bytes()))
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("err = %v, want ErrFormat", err)
		}
	})
}

func TestFileRoundTrip(t *testing.T) {
	d := testDesign(t)
	dir := t.TempDir()

	tests := []string{"chip.gds", "chip.gds.gz"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, d); err != nil {
				t.Fatal(err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if len(got.Cells()) != 3 {
				t.Errorf("cells = %d", len(got.Cells()))
			}
		})
	}
}
