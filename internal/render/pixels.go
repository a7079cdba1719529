package render

import "image/color"

// fillGradientRGBA converts scalar cell data in [0, 1] into RGBA pixels in
// buf using a precomputed color lookup table. Values outside the range are
// clamped to the table's ends.
func fillGradientRGBA(buf []byte, cells []float64, lut []color.RGBA) {
	if len(lut) == 0 {
		for i := range cells {
			base := i * 4
			buf[base+0] = 0
			buf[base+1] = 0
			buf[base+2] = 0
			buf[base+3] = 0
		}
		return
	}

	last := len(lut) - 1
	for i, c := range cells {
		idx := int(c * float64(last))
		if idx < 0 {
			idx = 0
		}
		if idx > last {
			idx = last
		}
		base := i * 4
		col := lut[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
