package design

import (
	"errors"
	"testing"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/region"
)

var (
	metal = maskforge.Layer{Number: 1, Datatype: 0}
	oxide = maskforge.Layer{Number: 5, Datatype: 2}
)

func TestFlattenUnknownTop(t *testing.T) {
	d := New("chip", testGrid)
	_, err := Flatten(d, "missing")
	if !errors.Is(err, maskforge.ErrUnknownCell) {
		t.Fatalf("err = %v, want ErrUnknownCell", err)
	}
}

func TestFlattenSingleCell(t *testing.T) {
	d := New("chip", testGrid)
	c, _ := d.AddCell("top")
	c.AddPolygon(metal, rect(t, 0, 0, 100, 100))
	c.AddPolygon(metal, rect(t, 50, 50, 150, 150))
	c.AddPolygon(oxide, rect(t, 0, 0, 10, 10))

	f, err := Flatten(d, "top")
	if err != nil {
		t.Fatal(err)
	}
	layers := f.Layers()
	if len(layers) != 2 || layers[0] != metal || layers[1] != oxide {
		t.Fatalf("layers = %v", layers)
	}
	// Overlapping shapes on one layer merge into one polygon.
	m := f.Layer(metal)
	if m.Count() != 1 {
		t.Errorf("metal count = %d, want 1", m.Count())
	}
	want := int64(2 * (100*100 + 100*100 - 50*50))
	if m.Area2() != want {
		t.Errorf("metal area2 = %d, want %d", m.Area2(), want)
	}
	if f.Layer(maskforge.Layer{Number: 99}).Count() != 0 {
		t.Error("absent layer not empty")
	}
}

func TestFlattenComposesTransforms(t *testing.T) {
	d := New("chip", testGrid)
	leaf, _ := d.AddCell("leaf")
	leaf.AddPolygon(metal, rect(t, 0, 0, 10, 20))

	mid, _ := d.AddCell("mid")
	if err := mid.AddInstance(Instance{
		Cell: "leaf",
		T:    maskforge.Transform{DX: 100, Rotation: 90},
	}); err != nil {
		t.Fatal(err)
	}

	top, _ := d.AddCell("top")
	if err := top.AddInstance(Instance{
		Cell: "mid",
		T:    maskforge.Transform{DY: 1000, Rotation: 180},
	}); err != nil {
		t.Fatal(err)
	}

	f, err := Flatten(d, "top")
	if err != nil {
		t.Fatal(err)
	}
	// Composed: leaf rect under Rotate(90)+DX(100) spans (80,0)-(100,10);
	// then Rotate(180)+DY(1000) maps that to (-100,990)-(-80,1000).
	want := region.FromPolygons(rect(t, -100, 990, -80, 1000))
	if got := f.Layer(metal); !got.Equal(want) {
		t.Errorf("flattened bbox = %+v", got.BoundingBox())
	}
}

func TestFlattenMirroredInstance(t *testing.T) {
	d := New("chip", testGrid)
	leaf, _ := d.AddCell("leaf")
	leaf.AddPolygon(metal, rect(t, 10, 0, 30, 5))

	top, _ := d.AddCell("top")
	if err := top.AddInstance(Instance{Cell: "leaf", T: maskforge.MirrorX()}); err != nil {
		t.Fatal(err)
	}

	f, err := Flatten(d, "top")
	if err != nil {
		t.Fatal(err)
	}
	want := region.FromPolygons(rect(t, 10, -5, 30, 0))
	if got := f.Layer(metal); !got.Equal(want) {
		t.Errorf("mirrored bbox = %+v", got.BoundingBox())
	}
}

func TestFlattenArrayInstance(t *testing.T) {
	d := New("chip", testGrid)
	leaf, _ := d.AddCell("pad")
	leaf.AddPolygon(metal, rect(t, 0, 0, 10, 10))

	top, _ := d.AddCell("top")
	if err := top.AddInstance(Instance{
		Cell:     "pad",
		Rows:     2,
		Cols:     3,
		RowPitch: 100,
		ColPitch: 40,
	}); err != nil {
		t.Fatal(err)
	}

	f, err := Flatten(d, "top")
	if err != nil {
		t.Fatal(err)
	}
	m := f.Layer(metal)
	if m.Count() != 6 {
		t.Fatalf("array expanded to %d polygons, want 6", m.Count())
	}
	if m.Area2() != 6*2*10*10 {
		t.Errorf("area2 = %d", m.Area2())
	}
	b := m.BoundingBox()
	if b.Min != maskforge.Pt(0, 0) || b.Max != maskforge.Pt(90, 110) {
		t.Errorf("bbox = %+v", b)
	}
}

func TestFlattenSharedLeafMergesOverlap(t *testing.T) {
	// The same leaf placed twice with overlapping footprints must merge
	// on the flattened layer.
	d := New("chip", testGrid)
	leaf, _ := d.AddCell("bar")
	leaf.AddPolygon(metal, rect(t, 0, 0, 100, 10))

	top, _ := d.AddCell("top")
	if err := top.AddInstance(Instance{Cell: "bar"}); err != nil {
		t.Fatal(err)
	}
	if err := top.AddInstance(Instance{Cell: "bar", T: maskforge.Translate(50, 0)}); err != nil {
		t.Fatal(err)
	}

	f, err := Flatten(d, "top")
	if err != nil {
		t.Fatal(err)
	}
	want := region.FromPolygons(rect(t, 0, 0, 150, 10))
	if got := f.Layer(metal); !got.Equal(want) || got.Count() != 1 {
		t.Errorf("merged overlap: count = %d, bbox = %+v", got.Count(), got.BoundingBox())
	}
}
