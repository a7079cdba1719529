package render

import (
	"image/color"

	"github.com/mazznoer/colorgrad"
)

const lutSize = 256

// DensityPainter converts a density buffer into RGBA pixels through a color
// gradient. The pixel buffer is reused between frames.
type DensityPainter struct {
	w, h int
	buf  []byte
	lut  []color.RGBA
}

// NewDensityPainter constructs a painter with the inferno gradient.
func NewDensityPainter(w, h int) *DensityPainter {
	return NewDensityPainterWithGradient(w, h, colorgrad.Inferno())
}

// NewDensityPainterWithGradient constructs a painter with a caller-chosen
// gradient.
func NewDensityPainterWithGradient(w, h int, grad colorgrad.Gradient) *DensityPainter {
	p := &DensityPainter{
		w:   w,
		h:   h,
		buf: make([]byte, w*h*4),
		lut: make([]color.RGBA, lutSize),
	}
	for i := range p.lut {
		c := grad.At(float64(i) / float64(lutSize-1))
		r, g, b := c.RGB255()
		p.lut[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return p
}

// Pixels maps density samples in [0, 1] to RGBA bytes. The returned slice is
// owned by the painter and overwritten on the next call.
func (p *DensityPainter) Pixels(density []float64) []byte {
	fillGradientRGBA(p.buf, density, p.lut)
	return p.buf
}

// Palette returns the gradient discretized for paletted image encoding.
func Palette(grad colorgrad.Gradient, n int) []color.Color {
	pal := make([]color.Color, 0, n)
	for _, c := range grad.Colors(uint(n)) {
		pal = append(pal, c)
	}
	return pal
}
