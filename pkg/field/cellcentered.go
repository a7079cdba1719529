package field

import "gridflow/pkg/vec"

// CellCenteredGrid stores one scalar per cell, sampled at the geometric
// center of each cell. The resolution counts cells; callers that want a
// ghost border size the grid accordingly.
type CellCenteredGrid struct {
	Grid2
	origin vec.V2
}

// NewCellCenteredGrid allocates a cell-centered grid covering the box that
// starts at origin and spans resolution*spacing.
func NewCellCenteredGrid(resolution Size2, spacing, origin vec.V2) (*CellCenteredGrid, error) {
	g, err := NewGrid2(resolution, spacing, origin.Add(spacing.Scale(0.5)))
	if err != nil {
		return nil, err
	}
	return &CellCenteredGrid{Grid2: *g, origin: origin}, nil
}

// Resolution returns the cell counts per axis.
func (c *CellCenteredGrid) Resolution() Size2 { return c.Size() }

// Origin returns the lower corner of the covered box.
func (c *CellCenteredGrid) Origin() vec.V2 { return c.origin }

// Bounds returns the lower and upper corners of the covered box.
func (c *CellCenteredGrid) Bounds() (lo, hi vec.V2) {
	res := c.Resolution()
	sp := c.Spacing()
	hi = c.origin.Add(vec.V2{X: float64(res.X) * sp.X, Y: float64(res.Y) * sp.Y})
	return c.origin, hi
}

// CellSize returns the physical extent of one cell.
func (c *CellCenteredGrid) CellSize() vec.V2 { return c.Spacing() }
