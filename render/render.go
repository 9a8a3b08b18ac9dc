// Package render rasterizes a flattened design to a PNG preview image.
// The preview is a convenience for eyeballing layouts; the validation
// report remains the correctness gate.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/vector"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/design"
)

// Options control the preview raster.
type Options struct {
	// WidthPx is the output image width. Zero means 1024; height
	// follows from the layout aspect ratio.
	WidthPx int

	// MarginPx frames the layout. Zero means 16.
	MarginPx int

	// Background fills the empty area. The zero value paints black.
	Background color.RGBA

	// Colors overrides the per-layer fill. Layers without an entry take
	// colors from a fixed palette in layer order.
	Colors map[maskforge.Layer]color.RGBA
}

var palette = []color.RGBA{
	{R: 0xE6, G: 0xB4, B: 0x22, A: 0xB0}, // gold
	{R: 0x3C, G: 0x8D, B: 0xD4, A: 0xB0}, // blue
	{R: 0xC8, G: 0x50, B: 0x50, A: 0xB0}, // red
	{R: 0x52, G: 0xB8, B: 0x6E, A: 0xB0}, // green
	{R: 0xA0, G: 0x6A, B: 0xD4, A: 0xB0}, // violet
	{R: 0x9E, G: 0x9E, B: 0x9E, A: 0xB0}, // gray
}

func (o Options) widthPx() int {
	if o.WidthPx <= 0 {
		return 1024
	}
	return o.WidthPx
}

func (o Options) marginPx() int {
	if o.MarginPx <= 0 {
		return 16
	}
	return o.MarginPx
}

func (o Options) layerColor(l maskforge.Layer, ordinal int) color.RGBA {
	if c, ok := o.Colors[l]; ok {
		return c
	}
	return palette[ordinal%len(palette)]
}

// Image rasterizes the snapshot. Layers paint bottom-up in (number,
// datatype) order with translucent fills so stacked metal stays
// readable.
func Image(f *design.Flat, opts Options) (*image.RGBA, error) {
	b := f.BoundingBox()
	if b.IsEmpty() {
		return nil, fmt.Errorf("render: empty design")
	}

	margin := opts.marginPx()
	w := opts.widthPx()
	scale := float64(w-2*margin) / float64(b.Width())
	h := int(float64(b.Height())*scale) + 2*margin
	if h <= 2*margin {
		h = 2*margin + 1
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := opts.Background
	if bg.A == 0 {
		bg = color.RGBA{A: 0xFF}
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	// DBU to pixel, y flipped so +y points up in the preview.
	px := func(p maskforge.Point) (float32, float32) {
		x := float64(p.X-b.Min.X)*scale + float64(margin)
		y := float64(b.Max.Y-p.Y)*scale + float64(margin)
		return float32(x), float32(y)
	}

	for i, l := range f.Layers() {
		ras := vector.NewRasterizer(w, h)
		for _, poly := range f.Layer(l).Polygons() {
			traceRing(ras, poly.Outer(), px)
			for _, hole := range poly.Holes() {
				traceRing(ras, hole, px)
			}
		}
		c := opts.layerColor(l, i)
		ras.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
	}
	return img, nil
}

func traceRing(ras *vector.Rasterizer, ring []maskforge.Point, px func(maskforge.Point) (float32, float32)) {
	x0, y0 := px(ring[0])
	ras.MoveTo(x0, y0)
	for _, p := range ring[1:] {
		x, y := px(p)
		ras.LineTo(x, y)
	}
	ras.ClosePath()
}

// PNG writes the preview to path.
func PNG(path string, f *design.Flat, opts Options) error {
	img, err := Image(f, opts)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	maskforge.Logger().Info("wrote preview", "path", path)
	return nil
}
