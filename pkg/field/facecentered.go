package field

import (
	"math"

	"gridflow/pkg/vec"
)

// FaceCenteredGrid is a staggered (MAC) vector field: the x component is
// sampled at the centers of faces perpendicular to x and the y component at
// the centers of faces perpendicular to y. There is no per-point vector
// storage; a full vector anywhere is reconstructed from the two component
// grids.
type FaceCenteredGrid struct {
	resolution Size2
	spacing    vec.V2
	origin     vec.V2
	u, v       *Grid2
}

// NewFaceCenteredGrid allocates a staggered grid over resolution cells
// starting at origin. The u grid has one extra sample column, the v grid one
// extra sample row.
func NewFaceCenteredGrid(resolution Size2, spacing, origin vec.V2) (*FaceCenteredGrid, error) {
	u, err := NewGrid2(
		Size2{resolution.X + 1, resolution.Y},
		spacing,
		origin.Add(vec.V2{Y: 0.5 * spacing.Y}),
	)
	if err != nil {
		return nil, err
	}
	v, err := NewGrid2(
		Size2{resolution.X, resolution.Y + 1},
		spacing,
		origin.Add(vec.V2{X: 0.5 * spacing.X}),
	)
	if err != nil {
		return nil, err
	}
	return &FaceCenteredGrid{
		resolution: resolution,
		spacing:    spacing,
		origin:     origin,
		u:          u,
		v:          v,
	}, nil
}

// Resolution returns the cell counts per axis.
func (f *FaceCenteredGrid) Resolution() Size2 { return f.resolution }

// Spacing returns the cell spacing.
func (f *FaceCenteredGrid) Spacing() vec.V2 { return f.spacing }

// Origin returns the lower corner of the covered box.
func (f *FaceCenteredGrid) Origin() vec.V2 { return f.origin }

// U returns the x-component grid.
func (f *FaceCenteredGrid) U() *Grid2 { return f.u }

// V returns the y-component grid.
func (f *FaceCenteredGrid) V() *Grid2 { return f.v }

// ValueAtCellCenter reconstructs the full velocity vector at a cell center by
// averaging the two faces bounding the cell along each axis.
func (f *FaceCenteredGrid) ValueAtCellCenter(i Index2) vec.V2 {
	return vec.V2{
		X: 0.5 * (f.u.At(i) + f.u.At(Index2{i.X + 1, i.Y})),
		Y: 0.5 * (f.v.At(i) + f.v.At(Index2{i.X, i.Y + 1})),
	}
}

// Sample reconstructs the velocity vector at an arbitrary physical point by
// interpolating each staggered component independently.
func (f *FaceCenteredGrid) Sample(p vec.V2) vec.V2 {
	return vec.V2{X: f.u.Sample(p), Y: f.v.Sample(p)}
}

// Fill sets every component sample to the given vector.
func (f *FaceCenteredGrid) Fill(val vec.V2) {
	f.u.Fill(val.X)
	f.v.Fill(val.Y)
}

// CopyFrom copies component values from another grid of identical extents.
func (f *FaceCenteredGrid) CopyFrom(o *FaceCenteredGrid) {
	f.u.CopyFrom(o.u)
	f.v.CopyFrom(o.v)
}

// Clone returns a deep copy of the grid.
func (f *FaceCenteredGrid) Clone() *FaceCenteredGrid {
	return &FaceCenteredGrid{
		resolution: f.resolution,
		spacing:    f.spacing,
		origin:     f.origin,
		u:          f.u.Clone(),
		v:          f.v.Clone(),
	}
}

// MaxMagnitude returns the largest cell-centered velocity magnitude after
// adding the offset vector to every cell value.
func (f *FaceCenteredGrid) MaxMagnitude(offset vec.V2) float64 {
	maxSq := 0.0
	for y := 0; y < f.resolution.Y; y++ {
		for x := 0; x < f.resolution.X; x++ {
			v := f.ValueAtCellCenter(Index2{x, y}).Add(offset)
			if s := v.SquaredLength(); s > maxSq {
				maxSq = s
			}
		}
	}
	return math.Sqrt(maxSq)
}
