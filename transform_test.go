package maskforge

import "testing"

func TestTransformApplyQuarterTurns(t *testing.T) {
	p := Pt(100, 40)
	tests := []struct {
		name string
		tr   Transform
		want Point
	}{
		{"identity", Identity(), Pt(100, 40)},
		{"translate", Translate(7, -3), Pt(107, 37)},
		{"rot90", Rotate(90), Pt(-40, 100)},
		{"rot180", Rotate(180), Pt(-100, -40)},
		{"rot270", Rotate(270), Pt(40, -100)},
		{"rot-90 wraps to 270", Rotate(-90), Pt(40, -100)},
		{"mirror", MirrorX(), Pt(100, -40)},
		{"mirror then rot90", Transform{Rotation: 90, Mirror: true}, Pt(40, 100)},
		{"full placement", Transform{DX: 10, DY: 20, Rotation: 180, Mirror: true}, Pt(-90, 60)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Apply(p); got != tt.want {
				t.Errorf("%+v.Apply(%v) = %v, want %v", tt.tr, p, got, tt.want)
			}
		})
	}
}

func TestTransformApplyArbitraryAngle(t *testing.T) {
	// 45 degrees on (100, 0): exact result is (70.71, 70.71),
	// rounded to the grid.
	got := Rotate(45).Apply(Pt(100, 0))
	want := Pt(71, 71)
	if got != want {
		t.Errorf("Rotate(45).Apply = %v, want %v", got, want)
	}
}

func TestTransformCompose(t *testing.T) {
	tests := []struct {
		name string
		a, b Transform
	}{
		{"translate chain", Translate(10, 20), Translate(-3, 5)},
		{"rotate then translate", Rotate(90), Translate(100, 0)},
		{"translate then rotate", Translate(100, 0), Rotate(90)},
		{"mirror conjugates rotation", MirrorX(), Rotate(90)},
		{"deep mix", Transform{DX: 5, DY: -7, Rotation: 270, Mirror: true},
			Transform{DX: 11, DY: 13, Rotation: 180}},
	}
	pts := []Point{Pt(0, 0), Pt(1, 0), Pt(0, 1), Pt(-250, 6031), Pt(12345, -6789)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.a.Compose(tt.b)
			for _, p := range pts {
				want := tt.a.Apply(tt.b.Apply(p))
				if got := c.Apply(p); got != want {
					t.Errorf("compose.Apply(%v) = %v, want %v", p, got, want)
				}
			}
		})
	}
}

func TestTransformComposeIdentity(t *testing.T) {
	tr := Transform{DX: 42, DY: -8, Rotation: 90, Mirror: true}
	if got := Identity().Compose(tr); got != tr {
		t.Errorf("Identity.Compose = %+v, want %+v", got, tr)
	}
	if got := tr.Compose(Identity()); got != tr {
		t.Errorf("Compose(Identity) = %+v, want %+v", got, tr)
	}
}

func TestQuarterTurnsStayExactUnderComposition(t *testing.T) {
	// Composing many quarter-turn placements must never leave the exact
	// integer path.
	tr := Identity()
	for i := 0; i < 8; i++ {
		tr = tr.Compose(Transform{DX: 1000, Rotation: 90})
	}
	if _, ok := quarterTurns(tr.Rotation); !ok {
		t.Fatalf("rotation %v is not an exact quarter turn", tr.Rotation)
	}
	// 8 quarter turns bring the frame back to 0 degrees.
	if tr.Rotation != 0 {
		t.Errorf("rotation = %v, want 0", tr.Rotation)
	}
}
