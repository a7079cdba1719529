package field

import (
	"fmt"

	"gridflow/pkg/vec"
)

// Grid2 stores scalar samples on a uniform 2-D lattice in row-major order.
// Size, spacing and data origin are fixed for the lifetime of the grid; only
// the stored values mutate.
type Grid2 struct {
	size       Size2
	spacing    vec.V2
	dataOrigin vec.V2
	data       []float64
}

// NewGrid2 allocates a grid with the given extents. The data origin is the
// physical position of sample (0, 0).
func NewGrid2(size Size2, spacing, dataOrigin vec.V2) (*Grid2, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("field: grid size must be positive, got %dx%d", size.X, size.Y)
	}
	if spacing.X <= 0 || spacing.Y <= 0 {
		return nil, fmt.Errorf("field: grid spacing must be positive, got %gx%g", spacing.X, spacing.Y)
	}
	return &Grid2{
		size:       size,
		spacing:    spacing,
		dataOrigin: dataOrigin,
		data:       make([]float64, size.Count()),
	}, nil
}

// Size returns the per-axis sample counts.
func (g *Grid2) Size() Size2 { return g.size }

// Spacing returns the physical distance between neighboring samples.
func (g *Grid2) Spacing() vec.V2 { return g.spacing }

// DataOrigin returns the physical position of sample (0, 0).
func (g *Grid2) DataOrigin() vec.V2 { return g.dataOrigin }

// Data exposes the backing slice so callers can read/write values directly.
func (g *Grid2) Data() []float64 { return g.data }

// Idx returns the linear slice index for a grid coordinate.
func (g *Grid2) Idx(i Index2) int { return i.Y*g.size.X + i.X }

// At returns the stored value at an index. No bounds checking is performed;
// callers on hot loops are expected to iterate within the grid extents.
func (g *Grid2) At(i Index2) float64 { return g.data[i.Y*g.size.X+i.X] }

// Set stores a value at an index without bounds checking.
func (g *Grid2) Set(i Index2, v float64) { g.data[i.Y*g.size.X+i.X] = v }

// DataPosition returns the physical position of the sample at an index.
func (g *Grid2) DataPosition(i Index2) vec.V2 {
	return vec.V2{
		X: g.dataOrigin.X + float64(i.X)*g.spacing.X,
		Y: g.dataOrigin.Y + float64(i.Y)*g.spacing.Y,
	}
}

// Fill sets every sample to v.
func (g *Grid2) Fill(v float64) {
	for i := range g.data {
		g.data[i] = v
	}
}

// CopyFrom copies the values of another grid with identical extents.
func (g *Grid2) CopyFrom(o *Grid2) {
	copy(g.data, o.data)
}

// Clone returns a deep copy of the grid.
func (g *Grid2) Clone() *Grid2 {
	c := &Grid2{
		size:       g.size,
		spacing:    g.spacing,
		dataOrigin: g.dataOrigin,
		data:       make([]float64, len(g.data)),
	}
	copy(c.data, g.data)
	return c
}

// Sample returns the bilinear interpolation of the stored values at an
// arbitrary physical point. Out-of-range coordinates are clamped to the
// outermost samples, so no read ever leaves the grid.
func (g *Grid2) Sample(p vec.V2) float64 {
	i, fx := g.cellFraction((p.X-g.dataOrigin.X)/g.spacing.X, g.size.X)
	j, fy := g.cellFraction((p.Y-g.dataOrigin.Y)/g.spacing.Y, g.size.Y)

	w := g.size.X
	base := j*w + i
	v00 := g.data[base]
	v10 := v00
	v01 := v00
	v11 := v00
	if i+1 < g.size.X {
		v10 = g.data[base+1]
	}
	if j+1 < g.size.Y {
		v01 = g.data[base+w]
		if i+1 < g.size.X {
			v11 = g.data[base+w+1]
		}
	}

	return (1-fy)*((1-fx)*v00+fx*v10) + fy*((1-fx)*v01+fx*v11)
}

// cellFraction clamps a normalized coordinate into the grid and splits it
// into a base sample index and a fractional weight.
func (g *Grid2) cellFraction(x float64, n int) (int, float64) {
	if x < 0 {
		return 0, 0
	}
	max := float64(n - 1)
	if x >= max {
		return n - 1, 0
	}
	i := int(x)
	return i, x - float64(i)
}
