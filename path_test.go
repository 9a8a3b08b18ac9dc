package maskforge

import (
	"errors"
	"testing"
)

func TestPathToPolygonStraight(t *testing.T) {
	pa := Path{Points: []Point{{0, 0}, {100, 0}}, Width: 10}
	p, err := pa.ToPolygon(2)
	if err != nil {
		t.Fatal(err)
	}
	b := p.BoundingBox()
	if b.Min != Pt(0, -5) || b.Max != Pt(100, 5) {
		t.Errorf("flush-cap bbox = %+v", b)
	}
	if got := p.Area2(); got != 2*100*10 {
		t.Errorf("Area2 = %d, want %d", got, 2*100*10)
	}
}

func TestPathToPolygonSquareCap(t *testing.T) {
	pa := Path{Points: []Point{{0, 0}, {100, 0}}, Width: 10, Cap: CapSquare}
	p, err := pa.ToPolygon(2)
	if err != nil {
		t.Fatal(err)
	}
	b := p.BoundingBox()
	if b.Min != Pt(-5, -5) || b.Max != Pt(105, 5) {
		t.Errorf("square-cap bbox = %+v", b)
	}
}

func TestPathToPolygonRoundCap(t *testing.T) {
	pa := Path{Points: []Point{{0, 0}, {100, 0}}, Width: 40, Cap: CapRound}
	p, err := pa.ToPolygon(2)
	if err != nil {
		t.Fatal(err)
	}
	b := p.BoundingBox()
	// Caps extend up to half the width past the endpoints.
	if b.Min.X > 0 || b.Min.X < -20 || b.Max.X < 100 || b.Max.X > 120 {
		t.Errorf("round-cap bbox = %+v", b)
	}
	// Area between the flush rectangle and the square-cap rectangle.
	if a := p.Area2(); a <= 2*100*40 || a >= 2*140*40 {
		t.Errorf("round-cap Area2 = %d out of range", a)
	}
}

func TestPathToPolygonBend(t *testing.T) {
	// Right-angle bend: miter join keeps the outer corner sharp.
	pa := Path{Points: []Point{{0, 0}, {100, 0}, {100, 100}}, Width: 20}
	p, err := pa.ToPolygon(2)
	if err != nil {
		t.Fatal(err)
	}
	b := p.BoundingBox()
	if b.Max != Pt(110, 100) {
		t.Errorf("bend bbox max = %v, want (110,100)", b.Max)
	}
	// Two 110-long arms of width 20, sharing the 20x20 corner once:
	// 2*(110*20 + 110*20 - 20*20) = 8000.
	want := int64(8000)
	if got := p.Area2(); got != want {
		t.Errorf("bend Area2 = %d, want %d", got, want)
	}
}

func TestPathToPolygonErrors(t *testing.T) {
	tests := []struct {
		name string
		pa   Path
	}{
		{"zero width", Path{Points: []Point{{0, 0}, {10, 0}}, Width: 0}},
		{"negative width", Path{Points: []Point{{0, 0}, {10, 0}}, Width: -4}},
		{"one point", Path{Points: []Point{{0, 0}}, Width: 10}},
		{"all duplicate points", Path{Points: []Point{{5, 5}, {5, 5}}, Width: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.pa.ToPolygon(2)
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Errorf("err = %v, want ErrDegenerateGeometry", err)
			}
		})
	}
}
