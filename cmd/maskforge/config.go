package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// chipConfig parametrizes the demo omega-resonator chip. All dimensions
// are micrometers unless noted.
type chipConfig struct {
	Name         string  `yaml:"name"`
	GridUMPerDBU float64 `yaml:"grid_um_per_dbu"`

	Layers map[string]layerConfig `yaml:"layers"`

	Pad struct {
		Width        float64 `yaml:"width"`
		Height       float64 `yaml:"height"`
		CornerRadius float64 `yaml:"corner_radius"`
	} `yaml:"pad"`

	Taper struct {
		Length     float64 `yaml:"length"`
		StartWidth float64 `yaml:"start_width"`
		EndWidth   float64 `yaml:"end_width"`
	} `yaml:"taper"`

	TraceWidth float64 `yaml:"trace_width"`

	Omega struct {
		Radius     float64 `yaml:"radius"`
		Width      float64 `yaml:"width"`
		Gap        float64 `yaml:"gap"`
		StubLength float64 `yaml:"stub_length"`
		StubWidth  float64 `yaml:"stub_width"`
	} `yaml:"omega"`

	Ground struct {
		Margin    float64 `yaml:"margin"`
		Clearance float64 `yaml:"clearance"`
	} `yaml:"ground"`

	Wafer struct {
		Rows     int     `yaml:"rows"`
		Cols     int     `yaml:"cols"`
		RowPitch float64 `yaml:"row_pitch"`
		ColPitch float64 `yaml:"col_pitch"`
	} `yaml:"wafer"`

	Rules struct {
		ClearanceDBU  int32 `yaml:"clearance_dbu"`
		MinFeatureDBU int32 `yaml:"min_feature_dbu"`
	} `yaml:"rules"`
}

type layerConfig struct {
	Number   int16 `yaml:"number"`
	Datatype int16 `yaml:"datatype"`
}

// defaultConfig mirrors a typical 10 nm-grid RF chip recipe.
func defaultConfig() chipConfig {
	var cfg chipConfig
	cfg.Name = "omega_chip"
	cfg.GridUMPerDBU = 0.01
	cfg.Layers = map[string]layerConfig{
		"gold":   {Number: 1},
		"ground": {Number: 2},
	}
	cfg.Pad.Width = 300
	cfg.Pad.Height = 300
	cfg.Pad.CornerRadius = 30
	cfg.Taper.Length = 400
	cfg.Taper.StartWidth = 300
	cfg.Taper.EndWidth = 20
	cfg.TraceWidth = 20
	cfg.Omega.Radius = 120
	cfg.Omega.Width = 12
	cfg.Omega.Gap = 20
	cfg.Omega.StubLength = 60
	cfg.Omega.StubWidth = 12
	cfg.Ground.Margin = 200
	cfg.Ground.Clearance = 30
	cfg.Wafer.Rows = 2
	cfg.Wafer.Cols = 3
	cfg.Wafer.RowPitch = 3000
	cfg.Wafer.ColPitch = 3000
	cfg.Rules.ClearanceDBU = 50
	cfg.Rules.MinFeatureDBU = 100
	return cfg
}

// loadConfig reads a YAML parameter file over the defaults. An empty
// path returns the defaults untouched.
func loadConfig(path string) (chipConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.GridUMPerDBU <= 0 {
		return cfg, fmt.Errorf("config %s: grid_um_per_dbu must be positive", path)
	}
	return cfg, nil
}
