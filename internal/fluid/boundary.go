package fluid

import (
	"math"

	"gridflow/pkg/field"
	"gridflow/pkg/vec"
)

// Closed-domain direction flags. A set bit marks that outer wall as solid.
const (
	DirectionLeft = 1 << iota
	DirectionRight
	DirectionDown
	DirectionUp
)

const (
	DirectionNone = 0
	DirectionAll  = DirectionLeft | DirectionRight | DirectionDown | DirectionUp
)

// BoundaryConditionSolver rasterizes the collider into the velocity grid's
// index space and constrains velocity against the obstacle and the domain
// walls. The rasterized fields are rebuilt once per sub-step and read-only
// afterwards.
type BoundaryConditionSolver struct {
	collider         Collider
	closedDomainFlag int

	colliderSdf *field.CellCenteredGrid
	colliderVel *field.FaceCenteredGrid

	uMarker []uint8
	vMarker []uint8

	uSlip *field.Grid2
	vSlip *field.Grid2
}

// NewBoundaryConditionSolver returns a solver with all walls closed.
func NewBoundaryConditionSolver() *BoundaryConditionSolver {
	return &BoundaryConditionSolver{closedDomainFlag: DirectionAll}
}

// ClosedDomainBoundaryFlag returns the wall bitmask.
func (b *BoundaryConditionSolver) ClosedDomainBoundaryFlag() int { return b.closedDomainFlag }

// SetClosedDomainBoundaryFlag sets which outer walls are solid.
func (b *BoundaryConditionSolver) SetClosedDomainBoundaryFlag(flag int) {
	b.closedDomainFlag = flag
}

// UpdateCollider rasterizes the collider's signed distance and velocity onto
// grids aligned with the given staggered layout. A nil collider rasterizes
// to "no obstacle anywhere". The layout comes from an already-validated
// velocity grid, so allocation cannot fail.
func (b *BoundaryConditionSolver) UpdateCollider(collider Collider, size field.Size2, spacing, origin vec.V2) {
	b.collider = collider

	if b.colliderSdf == nil || b.colliderSdf.Resolution() != size {
		sdf, err := field.NewCellCenteredGrid(size, spacing, origin)
		if err != nil {
			panic("fluid: collider raster: " + err.Error())
		}
		vel, err := field.NewFaceCenteredGrid(size, spacing, origin)
		if err != nil {
			panic("fluid: collider raster: " + err.Error())
		}
		b.colliderSdf = sdf
		b.colliderVel = vel
		b.uMarker = make([]uint8, vel.U().Size().Count())
		b.vMarker = make([]uint8, vel.V().Size().Count())
	}

	if collider == nil {
		b.colliderSdf.Fill(math.MaxFloat64)
		b.colliderVel.Fill(vec.V2{})
		return
	}

	sdf := &b.colliderSdf.Grid2
	sdf.Size().ForEach(func(i field.Index2) {
		sdf.Set(i, collider.SignedDistance(sdf.DataPosition(i)))
	})
	u := b.colliderVel.U()
	u.Size().ForEach(func(i field.Index2) {
		u.Set(i, collider.VelocityAt(u.DataPosition(i)).X)
	})
	v := b.colliderVel.V()
	v.Size().ForEach(func(i field.Index2) {
		v.Set(i, collider.VelocityAt(v.DataPosition(i)).Y)
	})
}

// ColliderSdf returns the rasterized signed-distance field. Before the first
// UpdateCollider call it reports "no obstacle anywhere".
func (b *BoundaryConditionSolver) ColliderSdf() field.ScalarField2 {
	if b.colliderSdf == nil {
		return field.ConstantScalarField{Value: math.MaxFloat64}
	}
	return b.colliderSdf
}

// ColliderVelocityField returns the rasterized collider velocity.
func (b *BoundaryConditionSolver) ColliderVelocityField() field.VectorField2 {
	if b.colliderVel == nil {
		return field.ConstantVectorField{}
	}
	return b.colliderVel
}

// ConstrainVelocity enforces no-penetration against the collider and the
// closed domain walls. Fluid values are first extended into the obstacle to
// the given depth so that backtraces landing inside read a continuation of
// the flow, then faces inside the obstacle keep only the velocity component
// tangential to its surface (free slip), relative to the obstacle's motion.
func (b *BoundaryConditionSolver) ConstrainVelocity(vel *field.FaceCenteredGrid, depth int) {
	if b.colliderSdf != nil && b.collider != nil {
		b.extrapolateIntoObstacle(vel, depth)
		b.constrainAgainstObstacle(vel)
	}
	b.constrainWalls(vel)
}

func (b *BoundaryConditionSolver) extrapolateIntoObstacle(vel *field.FaceCenteredGrid, depth int) {
	u := vel.U()
	usz := u.Size()
	for y := 0; y < usz.Y; y++ {
		for x := 0; x < usz.X; x++ {
			i := field.Index2{X: x, Y: y}
			if IsInsideSdf(b.colliderSdf.Sample(u.DataPosition(i))) {
				b.uMarker[u.Idx(i)] = 0
			} else {
				b.uMarker[u.Idx(i)] = 1
			}
		}
	}
	field.ExtrapolateToRegion(u, b.uMarker, depth)

	v := vel.V()
	vsz := v.Size()
	for y := 0; y < vsz.Y; y++ {
		for x := 0; x < vsz.X; x++ {
			i := field.Index2{X: x, Y: y}
			if IsInsideSdf(b.colliderSdf.Sample(v.DataPosition(i))) {
				b.vMarker[v.Idx(i)] = 0
			} else {
				b.vMarker[v.Idx(i)] = 1
			}
		}
	}
	field.ExtrapolateToRegion(v, b.vMarker, depth)
}

// The slip projection is componentwise on the staggered layout: a face only
// stores its own component of the projected vector, and reconstructing the
// other component interpolates neighbor faces whose normals differ. One pass
// therefore leaves a residual inward component wherever the surface normal
// varies between neighbors. Each pass reads from a snapshot of the field and
// the passes repeat until the largest inward component found at the start of
// a pass is below slipTolerance, at which point that pass changed nothing
// beyond the tolerance.
const (
	slipTolerance     = 1e-12
	maxSlipIterations = 256
)

func (b *BoundaryConditionSolver) constrainAgainstObstacle(vel *field.FaceCenteredGrid) {
	for iter := 0; iter < maxSlipIterations; iter++ {
		if b.slipPass(vel) <= slipTolerance {
			break
		}
	}
}

// slipPass projects every face inside the obstacle and reports the largest
// inward normal component it found before projecting.
func (b *BoundaryConditionSolver) slipPass(vel *field.FaceCenteredGrid) float64 {
	u := vel.U()
	v := vel.V()
	if b.uSlip == nil || b.uSlip.Size() != u.Size() {
		b.uSlip = u.Clone()
		b.vSlip = v.Clone()
	} else {
		b.uSlip.CopyFrom(u)
		b.vSlip.CopyFrom(v)
	}

	maxInward := 0.0
	usz := u.Size()
	for y := 0; y < usz.Y; y++ {
		for x := 0; x < usz.X; x++ {
			i := field.Index2{X: x, Y: y}
			pos := u.DataPosition(i)
			if !IsInsideSdf(b.colliderSdf.Sample(pos)) {
				continue
			}
			full := vec.V2{X: b.uSlip.At(i), Y: b.vSlip.Sample(pos)}
			slipped, inward := b.slip(full, pos)
			if inward > maxInward {
				maxInward = inward
			}
			u.Set(i, slipped.X)
		}
	}

	vsz := v.Size()
	for y := 0; y < vsz.Y; y++ {
		for x := 0; x < vsz.X; x++ {
			i := field.Index2{X: x, Y: y}
			pos := v.DataPosition(i)
			if !IsInsideSdf(b.colliderSdf.Sample(pos)) {
				continue
			}
			full := vec.V2{X: b.uSlip.Sample(pos), Y: b.vSlip.At(i)}
			slipped, inward := b.slip(full, pos)
			if inward > maxInward {
				maxInward = inward
			}
			v.Set(i, slipped.Y)
		}
	}
	return maxInward
}

// slip removes the component of the fluid velocity that points into the
// obstacle, keeping the tangential part relative to the obstacle's motion.
// The second return value is the magnitude of the removed inward component.
func (b *BoundaryConditionSolver) slip(v vec.V2, pos vec.V2) (vec.V2, float64) {
	colliderVel := b.collider.VelocityAt(pos)
	n := b.surfaceNormal(pos)
	if n.SquaredLength() == 0 {
		return colliderVel, 0
	}
	rel := v.Sub(colliderVel)
	dot := rel.Dot(n)
	if dot >= 0 {
		return v, 0
	}
	return colliderVel.Add(rel.Sub(n.Scale(dot))), -dot
}

// surfaceNormal estimates the outward obstacle normal from the rasterized
// signed-distance field by central differences.
func (b *BoundaryConditionSolver) surfaceNormal(pos vec.V2) vec.V2 {
	h := b.colliderSdf.Spacing()
	g := vec.V2{
		X: b.colliderSdf.Sample(pos.Add(vec.V2{X: h.X})) - b.colliderSdf.Sample(pos.Sub(vec.V2{X: h.X})),
		Y: b.colliderSdf.Sample(pos.Add(vec.V2{Y: h.Y})) - b.colliderSdf.Sample(pos.Sub(vec.V2{Y: h.Y})),
	}
	l := g.Length()
	if l == 0 {
		return vec.V2{}
	}
	return g.Scale(1 / l)
}

// constrainWalls zeroes normal velocity on the outer faces of every wall the
// closed-domain flag marks solid.
func (b *BoundaryConditionSolver) constrainWalls(vel *field.FaceCenteredGrid) {
	u := vel.U()
	usz := u.Size()
	if b.closedDomainFlag&DirectionLeft != 0 {
		for y := 0; y < usz.Y; y++ {
			u.Set(field.Index2{X: 0, Y: y}, 0)
		}
	}
	if b.closedDomainFlag&DirectionRight != 0 {
		for y := 0; y < usz.Y; y++ {
			u.Set(field.Index2{X: usz.X - 1, Y: y}, 0)
		}
	}

	v := vel.V()
	vsz := v.Size()
	if b.closedDomainFlag&DirectionDown != 0 {
		for x := 0; x < vsz.X; x++ {
			v.Set(field.Index2{X: x, Y: 0}, 0)
		}
	}
	if b.closedDomainFlag&DirectionUp != 0 {
		for x := 0; x < vsz.X; x++ {
			v.Set(field.Index2{X: x, Y: vsz.Y - 1}, 0)
		}
	}
}
