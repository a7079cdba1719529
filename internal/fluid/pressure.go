package fluid

import (
	"gridflow/pkg/field"
	"gridflow/pkg/vec"
)

// Cell classification used by the pressure solve.
const (
	cellSolid = iota
	cellFluid
	cellAir
)

// PressureSolver removes the divergent part of the velocity field by solving
// a Poisson problem for pressure over the fluid cells and subtracting the
// pressure gradient in place. Solid cells get a Neumann condition with the
// collider's face velocity as the boundary value; air cells (outside the
// fluid signed distance) hold zero pressure.
type PressureSolver struct {
	maxIter int
	tol     float64

	scratch  cgScratch
	marker   []uint8
	rhs      []float64
	pressure []float64
}

// NewPressureSolver returns a solver with default iteration limits.
func NewPressureSolver() *PressureSolver {
	return &PressureSolver{maxIter: 400, tol: 1e-8}
}

// Solve projects the velocity field in place.
func (s *PressureSolver) Solve(vel *field.FaceCenteredGrid, timeInterval float64, colliderSdf, fluidSdf field.ScalarField2, colliderVel field.VectorField2) {
	if timeInterval <= 0 {
		return
	}

	res := vel.Resolution()
	n := res.Count()
	if cap(s.marker) < n {
		s.marker = make([]uint8, n)
		s.rhs = make([]float64, n)
		s.pressure = make([]float64, n)
	}
	marker := s.marker[:n]
	rhs := s.rhs[:n]
	pressure := s.pressure[:n]

	sp := vel.Spacing()
	origin := vel.Origin()
	u, v := vel.U(), vel.V()
	w := res.X

	cellCenter := func(i field.Index2) vec.V2 {
		return vec.V2{
			X: origin.X + (float64(i.X)+0.5)*sp.X,
			Y: origin.Y + (float64(i.Y)+0.5)*sp.Y,
		}
	}

	for y := 0; y < res.Y; y++ {
		for x := 0; x < res.X; x++ {
			i := field.Index2{X: x, Y: y}
			pos := cellCenter(i)
			switch {
			case IsInsideSdf(colliderSdf.Sample(pos)):
				marker[y*w+x] = cellSolid
			case fluidSdf.Sample(pos) > 0:
				marker[y*w+x] = cellFluid
			default:
				marker[y*w+x] = cellAir
			}
		}
	}

	// Divergence of the current field. Faces buried in the collider count
	// with the obstacle's own velocity so a moving obstacle pushes fluid.
	uAt := func(i field.Index2) float64 {
		pos := u.DataPosition(i)
		if IsInsideSdf(colliderSdf.Sample(pos)) {
			return colliderVel.Sample(pos).X
		}
		return u.At(i)
	}
	vAt := func(i field.Index2) float64 {
		pos := v.DataPosition(i)
		if IsInsideSdf(colliderSdf.Sample(pos)) {
			return colliderVel.Sample(pos).Y
		}
		return v.At(i)
	}

	for y := 0; y < res.Y; y++ {
		for x := 0; x < res.X; x++ {
			idx := y*w + x
			if marker[idx] != cellFluid {
				rhs[idx] = 0
				pressure[idx] = 0
				continue
			}
			div := (uAt(field.Index2{X: x + 1, Y: y})-uAt(field.Index2{X: x, Y: y}))/sp.X +
				(vAt(field.Index2{X: x, Y: y + 1})-vAt(field.Index2{X: x, Y: y}))/sp.Y
			rhs[idx] = -div / timeInterval
		}
	}

	ihx2 := 1 / (sp.X * sp.X)
	ihy2 := 1 / (sp.Y * sp.Y)

	// Negated five-point Laplacian over fluid cells: solid neighbors drop
	// out (Neumann), air neighbors keep the diagonal term (Dirichlet p=0).
	// Cells beyond the outer boundary are treated as solid.
	apply := func(dst, src []float64) {
		for y := 0; y < res.Y; y++ {
			for x := 0; x < res.X; x++ {
				idx := y*w + x
				if marker[idx] != cellFluid {
					dst[idx] = src[idx]
					continue
				}
				c := src[idx]
				acc := 0.0
				if x > 0 && marker[idx-1] != cellSolid {
					acc += ihx2 * c
					if marker[idx-1] == cellFluid {
						acc -= ihx2 * src[idx-1]
					}
				}
				if x+1 < res.X && marker[idx+1] != cellSolid {
					acc += ihx2 * c
					if marker[idx+1] == cellFluid {
						acc -= ihx2 * src[idx+1]
					}
				}
				if y > 0 && marker[idx-w] != cellSolid {
					acc += ihy2 * c
					if marker[idx-w] == cellFluid {
						acc -= ihy2 * src[idx-w]
					}
				}
				if y+1 < res.Y && marker[idx+w] != cellSolid {
					acc += ihy2 * c
					if marker[idx+w] == cellFluid {
						acc -= ihy2 * src[idx+w]
					}
				}
				dst[idx] = acc
			}
		}
	}

	s.scratch.conjGrad(apply, rhs, pressure, s.maxIter, s.tol)

	// Subtract the pressure gradient on faces between fluid cells. Faces
	// touching a solid cell take the obstacle's velocity instead.
	for y := 0; y < res.Y; y++ {
		for x := 1; x < res.X; x++ {
			i := field.Index2{X: x, Y: y}
			left := marker[y*w+x-1]
			right := marker[y*w+x]
			switch {
			case left == cellFluid && right == cellFluid:
				u.Set(i, u.At(i)-timeInterval*(pressure[y*w+x]-pressure[y*w+x-1])/sp.X)
			case left == cellSolid || right == cellSolid:
				u.Set(i, colliderVel.Sample(u.DataPosition(i)).X)
			case left == cellFluid:
				u.Set(i, u.At(i)-timeInterval*(0-pressure[y*w+x-1])/sp.X)
			case right == cellFluid:
				u.Set(i, u.At(i)-timeInterval*(pressure[y*w+x]-0)/sp.X)
			}
		}
	}
	for y := 1; y < res.Y; y++ {
		for x := 0; x < res.X; x++ {
			i := field.Index2{X: x, Y: y}
			below := marker[(y-1)*w+x]
			above := marker[y*w+x]
			switch {
			case below == cellFluid && above == cellFluid:
				v.Set(i, v.At(i)-timeInterval*(pressure[y*w+x]-pressure[(y-1)*w+x])/sp.Y)
			case below == cellSolid || above == cellSolid:
				v.Set(i, colliderVel.Sample(v.DataPosition(i)).Y)
			case below == cellFluid:
				v.Set(i, v.At(i)-timeInterval*(0-pressure[(y-1)*w+x])/sp.Y)
			case above == cellFluid:
				v.Set(i, v.At(i)-timeInterval*(pressure[y*w+x]-0)/sp.Y)
			}
		}
	}
}
