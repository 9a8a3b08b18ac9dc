// Command maskforge generates a parametric resonator chip layout,
// validates it against its process rules, and writes GDSII output.
//
// Usage:
//
//	maskforge [--config chip.yaml] [--out chip.gds] [--flat flat.gds] [--png chip.png]
//
// With no config file the built-in demo parameters are used. The main
// output is a hierarchical GDSII library; --flat additionally writes a
// single-cell merged version and --png a raster preview.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/design"
	"github.com/maskforge/maskforge/gds"
	"github.com/maskforge/maskforge/render"
	"github.com/maskforge/maskforge/validate"
)

type options struct {
	configPath string
	outPath    string
	flatPath   string
	pngPath    string
	checkOnly  bool
	verbose    bool
}

func main() {
	var opts options
	pflag.StringVarP(&opts.configPath, "config", "c", "", "chip parameter file (YAML)")
	pflag.StringVarP(&opts.outPath, "out", "o", "chip.gds", "hierarchical GDSII output (.gds or .gds.gz)")
	pflag.StringVar(&opts.flatPath, "flat", "", "also write a flattened single-cell GDSII file")
	pflag.StringVar(&opts.pngPath, "png", "", "also write a raster preview")
	pflag.BoolVar(&opts.checkOnly, "check-only", false, "validate without writing any output")
	pflag.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	pflag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "maskforge:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.verbose {
		maskforge.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	d, err := buildChip(cfg)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	fmt.Printf("%s: %s\n", d.Name(), describe(d))

	top, err := d.Top()
	if err != nil {
		return err
	}
	flat, err := design.Flatten(d, top.Name())
	if err != nil {
		return fmt.Errorf("flatten: %w", err)
	}

	rules, err := chipRules(cfg, d)
	if err != nil {
		return err
	}
	report := validate.Run(flat, rules)
	if !report.OK() {
		for _, v := range report.Violations {
			fmt.Fprintf(os.Stderr, "violation: %s %v at (%d,%d)-(%d,%d): %s\n",
				v.Check, v.Layers,
				v.Where.Min.X, v.Where.Min.Y, v.Where.Max.X, v.Where.Max.Y,
				v.Detail)
		}
		return fmt.Errorf("validation failed with %d violation(s)", len(report.Violations))
	}
	fmt.Println("validation: clean")

	if opts.checkOnly {
		return nil
	}

	if err := gds.WriteFile(opts.outPath, d); err != nil {
		return fmt.Errorf("write %s: %w", opts.outPath, err)
	}
	fmt.Println("wrote", opts.outPath)

	if opts.flatPath != "" {
		if err := gds.WriteFlatFile(opts.flatPath, top.Name(), d.Grid(), flat); err != nil {
			return fmt.Errorf("write %s: %w", opts.flatPath, err)
		}
		fmt.Println("wrote", opts.flatPath)
	}
	if opts.pngPath != "" {
		if err := render.PNG(opts.pngPath, flat, render.Options{}); err != nil {
			return fmt.Errorf("write %s: %w", opts.pngPath, err)
		}
		fmt.Println("wrote", opts.pngPath)
	}
	return nil
}
