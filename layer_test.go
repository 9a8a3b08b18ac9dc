package maskforge

import (
	"errors"
	"testing"
)

func TestLayerTable(t *testing.T) {
	tab := NewLayerTable()
	metal := Layer{Number: 1, Datatype: 0}
	if _, err := tab.Register("metal", metal); err != nil {
		t.Fatal(err)
	}
	// Same binding again is a no-op.
	if _, err := tab.Register("metal", metal); err != nil {
		t.Errorf("idempotent Register failed: %v", err)
	}
	// Rebinding to a different layer is an error.
	if _, err := tab.Register("metal", Layer{Number: 2}); err == nil {
		t.Error("rebinding name to different layer did not fail")
	}

	got, err := tab.Lookup("metal")
	if err != nil || got != metal {
		t.Errorf("Lookup = %v, %v", got, err)
	}
	if _, err := tab.Lookup("platinum"); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("missing name err = %v, want ErrUnknownLayer", err)
	}
}

func TestLayerOrdering(t *testing.T) {
	layers := []Layer{{3, 0}, {1, 1}, {1, 0}, {2, 0}}
	SortLayers(layers)
	want := []Layer{{1, 0}, {1, 1}, {2, 0}, {3, 0}}
	for i := range want {
		if layers[i] != want[i] {
			t.Fatalf("sorted[%d] = %v, want %v", i, layers[i], want[i])
		}
	}
	if got := (Layer{1, 0}).String(); got != "1/0" {
		t.Errorf("String = %q", got)
	}
}

func TestGridQuantization(t *testing.T) {
	g := Grid{UMPerDBU: 0.001}
	tests := []struct {
		um   float64
		want int32
	}{
		{0, 0},
		{1, 1000},
		{0.0004, 0},
		{0.0005, 1},
		{-0.0005, -1},
		{123.4567, 123457},
	}
	for _, tt := range tests {
		if got := g.DBU(tt.um); got != tt.want {
			t.Errorf("DBU(%v) = %d, want %d", tt.um, got, tt.want)
		}
	}
	if p := g.PtUM(1.5, -2.25); p != Pt(1500, -2250) {
		t.Errorf("PtUM = %v", p)
	}
}
