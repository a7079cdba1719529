package fluid

import (
	"fmt"
	"math"

	"gridflow/pkg/field"
	"gridflow/pkg/vec"
)

// Hooks are optional per-step extension callbacks. A nil hook means the
// default behavior: nothing for begin/end, gravity for external forces.
type Hooks struct {
	OnBeginStep    func(timeInterval float64)
	OnEndStep      func(timeInterval float64)
	ExternalForces func(timeInterval float64)
}

// Config describes a solver at construction time. Size counts interior
// cells; the solver adds a one-cell ghost border on every side.
type Config struct {
	Size    field.Size2
	Spacing vec.V2
	Origin  vec.V2

	Gravity                  vec.V2
	Viscosity                float64
	MaxCfl                   float64
	ClosedDomainBoundaryFlag int

	UseFixedSubSteps bool
	FixedSubSteps    int

	Hooks Hooks
}

// DefaultConfig returns the standard configuration: a unit box, closed on
// all sides, with downward gravity and zero viscosity.
func DefaultConfig() Config {
	return Config{
		Size:                     field.Size2{X: 128, Y: 128},
		Spacing:                  vec.V2{X: 1.0 / 128, Y: 1.0 / 128},
		Origin:                   vec.V2{},
		Gravity:                  vec.V2{Y: -9.8},
		Viscosity:                0,
		MaxCfl:                   5,
		ClosedDomainBoundaryFlag: DirectionAll,
		FixedSubSteps:            1,
	}
}

// Solver advances a density marker field and a staggered velocity field
// through time while enforcing approximate incompressibility and boundary
// conditions against a rigid collider. All grids are allocated once at
// construction; a step mutates values in place.
type Solver struct {
	size             field.Size2
	gravity          vec.V2
	viscosity        float64
	maxCfl           float64
	closedDomainFlag int
	useFixedSubSteps bool
	fixedSubSteps    int
	hooks            Hooks

	velocity *field.FaceCenteredGrid
	density  *field.CellCenteredGrid
	collider Collider
	emitter  Emitter
	fluidSdf field.ScalarField2

	bc        *BoundaryConditionSolver
	diffusion *DiffusionSolver
	pressure  *PressureSolver

	densityOld *field.Grid2
	uOld       *field.Grid2
	vOld       *field.Grid2

	currentTime float64
	initialized bool
}

// NewSolver constructs a solver over the given interior resolution. The
// velocity and density grids carry a one-cell ghost border on every side, so
// their stored resolution is Size+2 starting at Origin-Spacing.
func NewSolver(cfg Config) (*Solver, error) {
	if cfg.Size.X <= 0 || cfg.Size.Y <= 0 {
		return nil, fmt.Errorf("fluid: interior size must be positive, got %dx%d", cfg.Size.X, cfg.Size.Y)
	}
	ghosted := cfg.Size.Add(2)
	ghostOrigin := cfg.Origin.Sub(cfg.Spacing)

	velocity, err := field.NewFaceCenteredGrid(ghosted, cfg.Spacing, ghostOrigin)
	if err != nil {
		return nil, err
	}
	density, err := field.NewCellCenteredGrid(ghosted, cfg.Spacing, ghostOrigin)
	if err != nil {
		return nil, err
	}

	s := &Solver{
		size:             cfg.Size,
		gravity:          cfg.Gravity,
		closedDomainFlag: cfg.ClosedDomainBoundaryFlag,
		useFixedSubSteps: cfg.UseFixedSubSteps,
		fixedSubSteps:    cfg.FixedSubSteps,
		hooks:            cfg.Hooks,
		velocity:         velocity,
		density:          density,
		fluidSdf:         field.ConstantScalarField{Value: math.MaxFloat64},
		bc:               NewBoundaryConditionSolver(),
		diffusion:        NewDiffusionSolver(),
		pressure:         NewPressureSolver(),
		densityOld:       density.Grid2.Clone(),
		uOld:             velocity.U().Clone(),
		vOld:             velocity.V().Clone(),
	}
	if s.fixedSubSteps < 1 {
		s.fixedSubSteps = 1
	}
	s.SetViscosityCoefficient(cfg.Viscosity)
	s.SetMaxCfl(cfg.MaxCfl)
	s.bc.SetClosedDomainBoundaryFlag(s.closedDomainFlag)
	return s, nil
}

// Size returns the interior resolution.
func (s *Solver) Size() field.Size2 { return s.size }

// GridSpacing returns the cell spacing.
func (s *Solver) GridSpacing() vec.V2 { return s.velocity.Spacing() }

// GridOrigin returns the lower corner of the ghosted grid.
func (s *Solver) GridOrigin() vec.V2 { return s.velocity.Origin() }

// Velocity returns the staggered velocity field.
func (s *Solver) Velocity() *field.FaceCenteredGrid { return s.velocity }

// Density returns the cell-centered density field.
func (s *Solver) Density() *field.CellCenteredGrid { return s.density }

// CurrentTime returns the accumulated simulation time.
func (s *Solver) CurrentTime() float64 { return s.currentTime }

// Gravity returns the gravity vector.
func (s *Solver) Gravity() vec.V2 { return s.gravity }

// SetGravity sets the gravity vector.
func (s *Solver) SetGravity(g vec.V2) { s.gravity = g }

// ViscosityCoefficient returns the fluid viscosity.
func (s *Solver) ViscosityCoefficient() float64 { return s.viscosity }

// SetViscosityCoefficient sets the viscosity. Negative input is clamped to
// zero, which turns the diffusion stage into a no-op.
func (s *Solver) SetViscosityCoefficient(viscosity float64) {
	s.viscosity = math.Max(viscosity, 0)
}

// MaxCfl returns the max allowed CFL number.
func (s *Solver) MaxCfl() float64 { return s.maxCfl }

// SetMaxCfl sets the max allowed CFL number, clamped away from zero so the
// sub-step count stays finite.
func (s *Solver) SetMaxCfl(maxCfl float64) {
	s.maxCfl = math.Max(maxCfl, math.SmallestNonzeroFloat64)
}

// ClosedDomainBoundaryFlag returns the wall bitmask.
func (s *Solver) ClosedDomainBoundaryFlag() int { return s.closedDomainFlag }

// SetClosedDomainBoundaryFlag sets which outer walls are solid.
func (s *Solver) SetClosedDomainBoundaryFlag(flag int) {
	s.closedDomainFlag = flag
	s.bc.SetClosedDomainBoundaryFlag(flag)
}

// Collider returns the attached collider, if any.
func (s *Solver) Collider() Collider { return s.collider }

// SetCollider attaches an obstacle. The solver only reads it; ownership
// stays with the caller, which must keep it alive while attached.
func (s *Solver) SetCollider(c Collider) { s.collider = c }

// Emitter returns the attached emitter, if any.
func (s *Solver) Emitter() Emitter { return s.emitter }

// SetEmitter attaches a source term applied at the beginning of each
// sub-step.
func (s *Solver) SetEmitter(e Emitter) { s.emitter = e }

// SetFluidSdf overrides the fluid region. The default is fluid everywhere.
// Positive values mark fluid.
func (s *Solver) SetFluidSdf(sdf field.ScalarField2) {
	if sdf == nil {
		sdf = field.ConstantScalarField{Value: math.MaxFloat64}
	}
	s.fluidSdf = sdf
}

// CFL returns the CFL number the current velocity field would reach over the
// given time interval, including the velocity gravity would add.
func (s *Solver) CFL(timeInterval float64) float64 {
	maxVel := s.velocity.MaxMagnitude(s.gravity.Scale(timeInterval))
	return maxVel * timeInterval / s.velocity.Spacing().Min()
}

// SubSteps returns how many sub-intervals a step of the given length will be
// divided into. Adaptive mode derives the count from the CFL condition;
// fixed mode returns the configured constant. The count is always at
// least 1.
func (s *Solver) SubSteps(timeInterval float64) int {
	if s.useFixedSubSteps {
		return s.fixedSubSteps
	}
	n := int(math.Ceil(s.CFL(timeInterval) / s.maxCfl))
	if n < 1 {
		n = 1
	}
	return n
}

// Initialize performs the zero-duration collider and emitter update. It runs
// exactly once before the first step; Advance calls it if needed.
func (s *Solver) Initialize() {
	if s.initialized {
		return
	}
	s.updateCollider(0)
	s.updateEmitter(0)
	s.initialized = true
}

// Advance moves the simulation forward by one physical time interval,
// internally split into CFL-bounded sub-steps.
func (s *Solver) Advance(timeInterval float64) {
	if timeInterval <= 0 {
		return
	}
	s.Initialize()

	n := s.SubSteps(timeInterval)
	sub := timeInterval / float64(n)
	for i := 0; i < n; i++ {
		s.advanceSubStep(sub)
		s.currentTime += sub
	}
}

func (s *Solver) advanceSubStep(timeInterval float64) {
	s.beginStep(timeInterval)
	s.densityStep(timeInterval)
	s.velocityStep(timeInterval)
	s.endStep(timeInterval)
}

func (s *Solver) beginStep(timeInterval float64) {
	s.updateCollider(timeInterval)
	s.updateEmitter(timeInterval)

	s.bc.UpdateCollider(
		s.collider,
		s.velocity.Resolution(),
		s.velocity.Spacing(),
		s.velocity.Origin(),
	)

	s.applyBoundaryCondition()

	if s.hooks.OnBeginStep != nil {
		s.hooks.OnBeginStep(timeInterval)
	}
}

func (s *Solver) densityStep(timeInterval float64) {
	s.computeSource(timeInterval)
	s.computeViscosity(timeInterval)
	s.advectDensity(timeInterval)
	s.applyBoundaryCondition()
}

func (s *Solver) velocityStep(timeInterval float64) {
	s.computeExternalForces(timeInterval)
	s.computeViscosity(timeInterval)
	s.computePressure(timeInterval)
	s.advectVelocity(timeInterval)
	s.constrainVelocity()
	s.applyBoundaryCondition()
}

func (s *Solver) endStep(timeInterval float64) {
	if s.hooks.OnEndStep != nil {
		s.hooks.OnEndStep(timeInterval)
	}
}

func (s *Solver) updateCollider(timeInterval float64) {
	if s.collider != nil {
		s.collider.Update(s.currentTime, timeInterval)
	}
}

func (s *Solver) updateEmitter(timeInterval float64) {
	if s.emitter != nil {
		s.emitter.Emit(timeInterval, s.density, s.velocity)
	}
}

// computeSource is a placeholder for scripted source terms; the boundary
// condition still runs so the ghost border stays consistent.
func (s *Solver) computeSource(float64) {
	s.applyBoundaryCondition()
}

func (s *Solver) computeExternalForces(timeInterval float64) {
	if s.hooks.ExternalForces != nil {
		s.hooks.ExternalForces(timeInterval)
		return
	}
	s.computeGravity(timeInterval)
}

func (s *Solver) computeGravity(timeInterval float64) {
	if !(s.gravity.SquaredLength() > math.SmallestNonzeroFloat64) {
		return
	}

	if s.gravity.X != 0 {
		data := s.velocity.U().Data()
		dv := timeInterval * s.gravity.X
		for i := range data {
			data[i] += dv
		}
	}
	if s.gravity.Y != 0 {
		data := s.velocity.V().Data()
		dv := timeInterval * s.gravity.Y
		for i := range data {
			data[i] += dv
		}
	}

	s.applyBoundaryCondition()
}

func (s *Solver) computeViscosity(timeInterval float64) {
	if !(s.viscosity > math.SmallestNonzeroFloat64) {
		return
	}
	s.diffusion.Solve(s.velocity, s.viscosity, timeInterval, s.bc.ColliderSdf(), s.fluidSdf)
	s.applyBoundaryCondition()
}

func (s *Solver) computePressure(timeInterval float64) {
	s.pressure.Solve(s.velocity, timeInterval, s.bc.ColliderSdf(), s.fluidSdf, s.bc.ColliderVelocityField())
	s.applyBoundaryCondition()
}

// advectDensity performs a semi-Lagrangian backtrace for every interior
// cell. All reads go to a snapshot of the field taken at the start of the
// sweep, so writes never feed back into the same stage.
func (s *Solver) advectDensity(timeInterval float64) {
	s.densityOld.CopyFrom(&s.density.Grid2)

	lo, hi := s.density.Bounds()
	cs := s.density.CellSize()
	minPos := lo.Add(cs)
	maxPos := hi.Sub(cs)

	u, v := s.velocity.U(), s.velocity.V()
	res := s.density.Resolution()
	for y := 1; y < res.Y-1; y++ {
		for x := 1; x < res.X-1; x++ {
			i := field.Index2{X: x, Y: y}
			vel := vec.V2{X: u.At(i), Y: v.At(i)}
			pos := s.density.DataPosition(i)
			newPos := pos.Sub(vel.Scale(timeInterval)).Clamp(minPos, maxPos)
			s.density.Set(i, s.densityOld.Sample(newPos))
		}
	}

	s.applyBoundaryCondition()
}

// advectVelocity applies the same backtrace to each staggered component.
// The clamp keeps the traced point one full cell inside the domain on every
// axis, the same robustness trade as density advection.
func (s *Solver) advectVelocity(timeInterval float64) {
	s.uOld.CopyFrom(s.velocity.U())
	s.vOld.CopyFrom(s.velocity.V())

	origin := s.velocity.Origin()
	sp := s.velocity.Spacing()
	res := s.velocity.Resolution()
	minPos := origin.Add(sp)
	maxPos := origin.Add(vec.V2{X: float64(res.X) * sp.X, Y: float64(res.Y) * sp.Y}).Sub(sp)

	u := s.velocity.U()
	usz := u.Size()
	for y := 1; y < usz.Y-1; y++ {
		for x := 1; x < usz.X-1; x++ {
			i := field.Index2{X: x, Y: y}
			pos := u.DataPosition(i)
			vel := vec.V2{X: s.uOld.At(i), Y: s.vOld.Sample(pos)}
			newPos := pos.Sub(vel.Scale(timeInterval)).Clamp(minPos, maxPos)
			u.Set(i, s.uOld.Sample(newPos))
		}
	}

	v := s.velocity.V()
	vsz := v.Size()
	for y := 1; y < vsz.Y-1; y++ {
		for x := 1; x < vsz.X-1; x++ {
			i := field.Index2{X: x, Y: y}
			pos := v.DataPosition(i)
			vel := vec.V2{X: s.uOld.Sample(pos), Y: s.vOld.At(i)}
			newPos := pos.Sub(vel.Scale(timeInterval)).Clamp(minPos, maxPos)
			v.Set(i, s.vOld.Sample(newPos))
		}
	}
}

func (s *Solver) constrainVelocity() {
	s.bc.ConstrainVelocity(s.velocity, int(math.Ceil(s.maxCfl)))
}

// applyBoundaryCondition refreshes the density ghost border: each edge ghost
// copies its adjacent interior cell and each corner averages its two edge
// neighbors. It runs after every stage that can touch interior values.
func (s *Solver) applyBoundaryCondition() {
	d := &s.density.Grid2
	res := s.density.Resolution()
	mx, my := res.X-1, res.Y-1

	for y := 1; y < my; y++ {
		d.Set(field.Index2{X: 0, Y: y}, d.At(field.Index2{X: 1, Y: y}))
		d.Set(field.Index2{X: mx, Y: y}, d.At(field.Index2{X: mx - 1, Y: y}))
	}
	for x := 1; x < mx; x++ {
		d.Set(field.Index2{X: x, Y: 0}, d.At(field.Index2{X: x, Y: 1}))
		d.Set(field.Index2{X: x, Y: my}, d.At(field.Index2{X: x, Y: my - 1}))
	}

	d.Set(field.Index2{X: 0, Y: 0},
		0.5*(d.At(field.Index2{X: 1, Y: 0})+d.At(field.Index2{X: 0, Y: 1})))
	d.Set(field.Index2{X: 0, Y: my},
		0.5*(d.At(field.Index2{X: 1, Y: my})+d.At(field.Index2{X: 0, Y: my - 1})))
	d.Set(field.Index2{X: mx, Y: 0},
		0.5*(d.At(field.Index2{X: mx - 1, Y: 0})+d.At(field.Index2{X: mx, Y: 1})))
	d.Set(field.Index2{X: mx, Y: my},
		0.5*(d.At(field.Index2{X: mx - 1, Y: my})+d.At(field.Index2{X: mx, Y: my - 1})))
}

// ExtrapolateIntoCollider extends values from cells outside the collider
// into cells inside it, ceil(maxCfl) layers deep, so sampling near a moving
// obstacle does not read stale interior values.
func (s *Solver) ExtrapolateIntoCollider(grid *field.CellCenteredGrid) {
	sdf := s.bc.ColliderSdf()
	size := grid.Size()
	marker := make([]uint8, size.Count())
	size.ForEach(func(i field.Index2) {
		if IsInsideSdf(sdf.Sample(grid.DataPosition(i))) {
			marker[grid.Idx(i)] = 0
		} else {
			marker[grid.Idx(i)] = 1
		}
	})
	field.ExtrapolateToRegion(&grid.Grid2, marker, int(math.Ceil(s.maxCfl)))
}

// MaxDivergence returns the largest absolute velocity divergence over the
// interior cells. Used by diagnostics tooling.
func (s *Solver) MaxDivergence() float64 {
	u, v := s.velocity.U(), s.velocity.V()
	sp := s.velocity.Spacing()
	res := s.velocity.Resolution()

	maxDiv := 0.0
	for y := 1; y < res.Y-1; y++ {
		for x := 1; x < res.X-1; x++ {
			div := (u.At(field.Index2{X: x + 1, Y: y})-u.At(field.Index2{X: x, Y: y}))/sp.X +
				(v.At(field.Index2{X: x, Y: y + 1})-v.At(field.Index2{X: x, Y: y}))/sp.Y
			if d := math.Abs(div); d > maxDiv {
				maxDiv = d
			}
		}
	}
	return maxDiv
}

// TotalDensity sums the interior density. Used by diagnostics tooling to
// watch mass drift.
func (s *Solver) TotalDensity() float64 {
	res := s.density.Resolution()
	sum := 0.0
	for y := 1; y < res.Y-1; y++ {
		for x := 1; x < res.X-1; x++ {
			sum += s.density.At(field.Index2{X: x, Y: y})
		}
	}
	return sum
}
