package design

import (
	"errors"
	"testing"

	"github.com/maskforge/maskforge"
)

var testGrid = maskforge.Grid{UMPerDBU: 0.01}

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

func TestAddCellDuplicate(t *testing.T) {
	d := New("chip", testGrid)
	if _, err := d.AddCell("pad"); err != nil {
		t.Fatal(err)
	}
	_, err := d.AddCell("pad")
	if !errors.Is(err, maskforge.ErrDuplicateCellName) {
		t.Fatalf("err = %v, want ErrDuplicateCellName", err)
	}
}

func TestCellLookup(t *testing.T) {
	d := New("chip", testGrid)
	c, _ := d.AddCell("pad")
	got, err := d.Cell("pad")
	if err != nil || got != c {
		t.Fatalf("Cell(pad) = %v, %v", got, err)
	}
	if _, err := d.Cell("absent"); !errors.Is(err, maskforge.ErrUnknownCell) {
		t.Fatalf("err = %v, want ErrUnknownCell", err)
	}
}

func TestCellsInsertionOrder(t *testing.T) {
	d := New("chip", testGrid)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := d.AddCell(name); err != nil {
			t.Fatal(err)
		}
	}
	cells := d.Cells()
	want := []string{"zeta", "alpha", "mid"}
	for i, c := range cells {
		if c.Name() != want[i] {
			t.Errorf("cells[%d] = %q, want %q", i, c.Name(), want[i])
		}
	}
}

func TestAddInstanceUnknownTarget(t *testing.T) {
	d := New("chip", testGrid)
	c, _ := d.AddCell("top")
	err := c.AddInstance(Instance{Cell: "ghost"})
	if !errors.Is(err, maskforge.ErrUnknownCell) {
		t.Fatalf("err = %v, want ErrUnknownCell", err)
	}
	if len(c.Instances()) != 0 {
		t.Error("failed insertion left an instance behind")
	}
}

func TestAddInstanceCycle(t *testing.T) {
	d := New("chip", testGrid)
	a, _ := d.AddCell("a")
	b, _ := d.AddCell("b")
	c, _ := d.AddCell("c")

	if err := a.AddInstance(Instance{Cell: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddInstance(Instance{Cell: "c"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cell *Cell
		ref  string
	}{
		{"self reference", a, "a"},
		{"direct back edge", b, "a"},
		{"transitive back edge", c, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(tt.cell.Instances())
			err := tt.cell.AddInstance(Instance{Cell: tt.ref})
			if !errors.Is(err, maskforge.ErrCyclicReference) {
				t.Fatalf("err = %v, want ErrCyclicReference", err)
			}
			if len(tt.cell.Instances()) != before {
				t.Error("rejected insertion changed the hierarchy")
			}
		})
	}
}

func TestDiamondReferenceIsNotACycle(t *testing.T) {
	// a -> b -> d and a -> c -> d share a leaf; that is a DAG, not a
	// cycle.
	d := New("chip", testGrid)
	a, _ := d.AddCell("a")
	b, _ := d.AddCell("b")
	c, _ := d.AddCell("c")
	if _, err := d.AddCell("d"); err != nil {
		t.Fatal(err)
	}

	for _, step := range []struct {
		cell *Cell
		ref  string
	}{
		{a, "b"}, {a, "c"}, {b, "d"}, {c, "d"},
	} {
		if err := step.cell.AddInstance(Instance{Cell: step.ref}); err != nil {
			t.Fatalf("instance %s -> %s: %v", step.cell.Name(), step.ref, err)
		}
	}
}

func TestRemoveCell(t *testing.T) {
	d := New("chip", testGrid)
	top, _ := d.AddCell("top")
	if _, err := d.AddCell("leaf"); err != nil {
		t.Fatal(err)
	}
	if err := top.AddInstance(Instance{Cell: "leaf"}); err != nil {
		t.Fatal(err)
	}

	if err := d.RemoveCell("leaf"); err == nil {
		t.Fatal("removed a cell that is still instanced")
	}
	if err := d.RemoveCell("top"); err != nil {
		t.Fatal(err)
	}
	if err := d.RemoveCell("leaf"); err != nil {
		t.Fatal(err)
	}
	if err := d.RemoveCell("leaf"); !errors.Is(err, maskforge.ErrUnknownCell) {
		t.Fatalf("err = %v, want ErrUnknownCell", err)
	}
}

func TestTopCells(t *testing.T) {
	d := New("chip", testGrid)
	top, _ := d.AddCell("top")
	if _, err := d.AddCell("pad"); err != nil {
		t.Fatal(err)
	}
	if err := top.AddInstance(Instance{Cell: "pad"}); err != nil {
		t.Fatal(err)
	}
	tops := d.TopCells()
	if len(tops) != 1 || tops[0].Name() != "top" {
		t.Fatalf("tops = %v", tops)
	}
}

func TestInstancePlacements(t *testing.T) {
	in := Instance{
		Cell:     "pad",
		T:        maskforge.Translate(100, 200),
		Rows:     2,
		Cols:     3,
		RowPitch: 50,
		ColPitch: 30,
	}
	var got []maskforge.Point
	in.Placements(func(t maskforge.Transform) {
		got = append(got, maskforge.Pt(t.DX, t.DY))
	})
	want := []maskforge.Point{
		{X: 100, Y: 200}, {X: 130, Y: 200}, {X: 160, Y: 200},
		{X: 100, Y: 250}, {X: 130, Y: 250}, {X: 160, Y: 250},
	}
	if len(got) != len(want) {
		t.Fatalf("placements = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("placement[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if !in.IsArray() {
		t.Error("IsArray = false for a 2x3 lattice")
	}
}

func TestCellBoundingBox(t *testing.T) {
	d := New("chip", testGrid)
	leaf, _ := d.AddCell("leaf")
	leaf.AddPolygon(maskforge.Layer{Number: 1}, rect(t, 0, 0, 10, 20))

	top, _ := d.AddCell("top")
	if err := top.AddInstance(Instance{
		Cell: "leaf",
		T:    maskforge.Transform{DX: 100, DY: 0, Rotation: 90},
	}); err != nil {
		t.Fatal(err)
	}
	if err := top.AddInstance(Instance{Cell: "leaf", T: maskforge.Translate(-50, -50)}); err != nil {
		t.Fatal(err)
	}

	b := top.BoundingBox()
	// Rotated copy spans (80,0)-(100,10); translated copy (-50,-50)-(-40,-30).
	if b.Min != maskforge.Pt(-50, -50) || b.Max != maskforge.Pt(100, 10) {
		t.Errorf("bbox = %+v", b)
	}
}
