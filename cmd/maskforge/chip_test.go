package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maskforge/maskforge/design"
	"github.com/maskforge/maskforge/gds"
	"github.com/maskforge/maskforge/validate"
)

func TestBuildChipStructure(t *testing.T) {
	d, err := buildChip(defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"pad", "omega", "die", "wafer"} {
		if _, err := d.Cell(name); err != nil {
			t.Errorf("missing cell %q: %v", name, err)
		}
	}
	top, err := d.Top()
	if err != nil {
		t.Fatal(err)
	}
	if top.Name() != "wafer" {
		t.Errorf("top = %q, want wafer", top.Name())
	}

	die, _ := d.Cell("die")
	// Two pads, one resonator.
	if n := len(die.Instances()); n != 3 {
		t.Errorf("die has %d instances, want 3", n)
	}
}

func TestDefaultChipValidatesClean(t *testing.T) {
	cfg := defaultConfig()
	d, err := buildChip(cfg)
	if err != nil {
		t.Fatal(err)
	}
	flat, err := design.Flatten(d, "wafer")
	if err != nil {
		t.Fatal(err)
	}
	rules, err := chipRules(cfg, d)
	if err != nil {
		t.Fatal(err)
	}
	rep := validate.Run(flat, rules)
	for _, v := range rep.Violations {
		t.Errorf("unexpected violation: %s %v: %s", v.Check, v.Layers, v.Detail)
	}

	// The wafer lattice replicates every die layer shape.
	dieFlat, err := design.Flatten(d, "die")
	if err != nil {
		t.Fatal(err)
	}
	perDie := 0
	for _, l := range dieFlat.Layers() {
		perDie += dieFlat.Layer(l).Count()
	}
	total := 0
	for _, l := range flat.Layers() {
		total += flat.Layer(l).Count()
	}
	want := perDie * cfg.Wafer.Rows * cfg.Wafer.Cols
	if total != want {
		t.Errorf("wafer has %d flat polygons, want %d", total, want)
	}
}

func TestChipGDSRoundTrip(t *testing.T) {
	d, err := buildChip(defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "chip.gds")
	if err := gds.WriteFile(path, d); err != nil {
		t.Fatal(err)
	}
	back, err := gds.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(back.Cells()), len(d.Cells()); got != want {
		t.Errorf("decoded %d cells, want %d", got, want)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg chipConfig)
	}{
		{
			name: "override pad",
			yaml: "pad:\n  width: 250\n  height: 250\n  corner_radius: 25\n",
			check: func(t *testing.T, cfg chipConfig) {
				if cfg.Pad.Width != 250 {
					t.Errorf("pad width = %g, want 250", cfg.Pad.Width)
				}
				if cfg.TraceWidth != defaultConfig().TraceWidth {
					t.Errorf("unrelated field changed: trace width %g", cfg.TraceWidth)
				}
			},
		},
		{
			name:    "bad grid",
			yaml:    "grid_um_per_dbu: -1\n",
			wantErr: true,
		},
		{
			name:    "malformed",
			yaml:    "pad: [not a map\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "chip.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := loadConfig(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestDescribe(t *testing.T) {
	d, err := buildChip(defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s := describe(d)
	if !strings.Contains(s, "4 cells") {
		t.Errorf("describe = %q, want 4 cells", s)
	}
}
