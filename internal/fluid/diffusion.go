package fluid

import (
	"gridflow/pkg/field"
)

// DiffusionSolver performs the implicit (backward Euler) viscosity step
// dv/dt = nu * laplacian(v) on each staggered component, restricted to faces
// that lie in fluid and outside the collider. Backward Euler is
// unconditionally stable, so the viscosity coefficient does not constrain
// the sub-step size.
type DiffusionSolver struct {
	maxIter int
	tol     float64

	scratch cgScratch
	marker  []uint8
	rhs     []float64
	sol     []float64
}

// NewDiffusionSolver returns a solver with default iteration limits.
func NewDiffusionSolver() *DiffusionSolver {
	return &DiffusionSolver{maxIter: 200, tol: 1e-8}
}

// Solve diffuses the velocity field in place. Faces inside the collider or
// outside the fluid are left untouched.
func (d *DiffusionSolver) Solve(vel *field.FaceCenteredGrid, viscosity, timeInterval float64, colliderSdf, fluidSdf field.ScalarField2) {
	d.solveComponent(vel.U(), viscosity, timeInterval, colliderSdf, fluidSdf)
	d.solveComponent(vel.V(), viscosity, timeInterval, colliderSdf, fluidSdf)
}

func (d *DiffusionSolver) solveComponent(g *field.Grid2, viscosity, timeInterval float64, colliderSdf, fluidSdf field.ScalarField2) {
	size := g.Size()
	n := size.Count()
	if cap(d.marker) < n {
		d.marker = make([]uint8, n)
		d.rhs = make([]float64, n)
		d.sol = make([]float64, n)
	}
	marker := d.marker[:n]
	rhs := d.rhs[:n]
	sol := d.sol[:n]

	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			i := field.Index2{X: x, Y: y}
			pos := g.DataPosition(i)
			if !IsInsideSdf(colliderSdf.Sample(pos)) && fluidSdf.Sample(pos) > 0 {
				marker[g.Idx(i)] = 1
			} else {
				marker[g.Idx(i)] = 0
			}
		}
	}

	copy(rhs, g.Data())
	copy(sol, g.Data())

	h := g.Spacing()
	cx := viscosity * timeInterval / (h.X * h.X)
	cy := viscosity * timeInterval / (h.Y * h.Y)
	w := size.X

	// (I - nu*dt*L) with homogeneous Neumann coupling: neighbors outside the
	// fluid-open region drop out of the stencil.
	apply := func(dst, src []float64) {
		for y := 0; y < size.Y; y++ {
			for xi := 0; xi < size.X; xi++ {
				idx := y*w + xi
				if marker[idx] == 0 {
					dst[idx] = src[idx]
					continue
				}
				c := src[idx]
				acc := c
				if xi > 0 && marker[idx-1] != 0 {
					acc += cx * (c - src[idx-1])
				}
				if xi+1 < size.X && marker[idx+1] != 0 {
					acc += cx * (c - src[idx+1])
				}
				if y > 0 && marker[idx-w] != 0 {
					acc += cy * (c - src[idx-w])
				}
				if y+1 < size.Y && marker[idx+w] != 0 {
					acc += cy * (c - src[idx+w])
				}
				dst[idx] = acc
			}
		}
	}

	d.scratch.conjGrad(apply, rhs, sol, d.maxIter, d.tol)

	data := g.Data()
	for i := range data {
		if marker[i] != 0 {
			data[i] = sol[i]
		}
	}
}
