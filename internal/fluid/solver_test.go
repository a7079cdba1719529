package fluid

import (
	"math"
	"testing"

	"gridflow/pkg/field"
	"gridflow/pkg/vec"
)

func newTestSolver(t *testing.T, n int) *Solver {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Size = field.Size2{X: n, Y: n}
	cfg.Spacing = vec.V2{X: 1, Y: 1}
	cfg.Gravity = vec.V2{}
	cfg.Viscosity = 0
	s, err := NewSolver(cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	return s
}

// checkGhostBorder verifies the Neumann copy rule on every edge ghost and
// the averaging rule on the four corners.
func checkGhostBorder(t *testing.T, d *field.CellCenteredGrid) {
	t.Helper()
	res := d.Resolution()
	mx, my := res.X-1, res.Y-1

	for y := 1; y < my; y++ {
		if d.At(field.Index2{X: 0, Y: y}) != d.At(field.Index2{X: 1, Y: y}) {
			t.Fatalf("left ghost at y=%d does not copy interior", y)
		}
		if d.At(field.Index2{X: mx, Y: y}) != d.At(field.Index2{X: mx - 1, Y: y}) {
			t.Fatalf("right ghost at y=%d does not copy interior", y)
		}
	}
	for x := 1; x < mx; x++ {
		if d.At(field.Index2{X: x, Y: 0}) != d.At(field.Index2{X: x, Y: 1}) {
			t.Fatalf("bottom ghost at x=%d does not copy interior", x)
		}
		if d.At(field.Index2{X: x, Y: my}) != d.At(field.Index2{X: x, Y: my - 1}) {
			t.Fatalf("top ghost at x=%d does not copy interior", x)
		}
	}

	corners := []struct {
		c, a, b field.Index2
	}{
		{field.Index2{X: 0, Y: 0}, field.Index2{X: 1, Y: 0}, field.Index2{X: 0, Y: 1}},
		{field.Index2{X: 0, Y: my}, field.Index2{X: 1, Y: my}, field.Index2{X: 0, Y: my - 1}},
		{field.Index2{X: mx, Y: 0}, field.Index2{X: mx - 1, Y: 0}, field.Index2{X: mx, Y: 1}},
		{field.Index2{X: mx, Y: my}, field.Index2{X: mx - 1, Y: my}, field.Index2{X: mx, Y: my - 1}},
	}
	for _, c := range corners {
		want := 0.5 * (d.At(c.a) + d.At(c.b))
		if d.At(c.c) != want {
			t.Fatalf("corner ghost %v = %g, want %g", c.c, d.At(c.c), want)
		}
	}
}

func TestStepAtRestLeavesDensityUnchanged(t *testing.T) {
	s := newTestSolver(t, 4)

	// 6x6 with ghost border; (1,3) is an interior cell.
	s.Density().Set(field.Index2{X: 1, Y: 3}, 1.0)
	initial := append([]float64(nil), s.Density().Data()...)

	s.Advance(0.1)

	res := s.Density().Resolution()
	for y := 1; y < res.Y-1; y++ {
		for x := 1; x < res.X-1; x++ {
			i := field.Index2{X: x, Y: y}
			if got := s.Density().At(i); got != initial[s.Density().Idx(i)] {
				t.Fatalf("interior density at %v changed: got %g, want %g",
					i, got, initial[s.Density().Idx(i)])
			}
		}
	}
	checkGhostBorder(t, s.Density())
}

func TestGhostBorderHoldsAfterEveryStage(t *testing.T) {
	s := newTestSolver(t, 8)
	s.Density().Set(field.Index2{X: 3, Y: 3}, 1.0)
	s.Density().Set(field.Index2{X: 5, Y: 7}, 0.5)
	s.SetGravity(vec.V2{Y: -9.8})
	s.Initialize()

	s.beginStep(0.05)
	checkGhostBorder(t, s.Density())

	s.densityStep(0.05)
	checkGhostBorder(t, s.Density())

	s.velocityStep(0.05)
	checkGhostBorder(t, s.Density())
}

func TestZeroViscosityDiffusionIsBitIdentical(t *testing.T) {
	s := newTestSolver(t, 8)
	s.SetViscosityCoefficient(-3.5) // clamps to zero

	u := s.Velocity().U().Data()
	v := s.Velocity().V().Data()
	for i := range u {
		u[i] = math.Sin(float64(i) * 0.7)
	}
	for i := range v {
		v[i] = math.Cos(float64(i) * 1.3)
	}
	uBefore := append([]float64(nil), u...)
	vBefore := append([]float64(nil), v...)

	s.computeViscosity(0.25)

	for i := range u {
		if u[i] != uBefore[i] {
			t.Fatalf("u[%d] changed through zero-viscosity diffusion", i)
		}
	}
	for i := range v {
		if v[i] != vBefore[i] {
			t.Fatalf("v[%d] changed through zero-viscosity diffusion", i)
		}
	}
}

func TestGravityStepExactIncrement(t *testing.T) {
	s := newTestSolver(t, 6)
	s.SetGravity(vec.V2{Y: -9.8})

	uBefore := append([]float64(nil), s.Velocity().U().Data()...)
	vBefore := append([]float64(nil), s.Velocity().V().Data()...)

	s.Advance(0.01)

	const want = -9.8 * 0.01
	const tol = 1e-12

	u := s.Velocity().U()
	usz := u.Size()
	for y := 0; y < usz.Y; y++ {
		for x := 0; x < usz.X; x++ {
			i := field.Index2{X: x, Y: y}
			before := uBefore[u.Idx(i)]
			if got := u.At(i); got != before {
				t.Fatalf("u at %v changed: got %g, want %g", i, got, before)
			}
		}
	}

	v := s.Velocity().V()
	vsz := v.Size()
	for y := 1; y < vsz.Y-1; y++ {
		for x := 1; x < vsz.X-1; x++ {
			i := field.Index2{X: x, Y: y}
			got := v.At(i) - vBefore[v.Idx(i)]
			if math.Abs(got-want) > tol {
				t.Fatalf("interior v at %v moved by %g, want %g", i, got, want)
			}
		}
	}

	checkGhostBorder(t, s.Density())
}

func TestSubStepCountMonotonicAndPositive(t *testing.T) {
	s := newTestSolver(t, 8)
	s.SetMaxCfl(1)

	prev := 0
	for _, speed := range []float64{0, 0.5, 2, 8, 32, 128} {
		s.Velocity().Fill(vec.V2{X: speed})
		n := s.SubSteps(0.1)
		if n < 1 {
			t.Fatalf("sub-step count %d < 1 at speed %g", n, speed)
		}
		if n < prev {
			t.Fatalf("sub-step count decreased from %d to %d at speed %g", prev, n, speed)
		}
		prev = n
	}
}

func TestFixedSubStepping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = field.Size2{X: 4, Y: 4}
	cfg.Spacing = vec.V2{X: 1, Y: 1}
	cfg.UseFixedSubSteps = true
	cfg.FixedSubSteps = 3
	s, err := NewSolver(cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}

	s.Velocity().Fill(vec.V2{X: 1e6})
	if n := s.SubSteps(10); n != 3 {
		t.Fatalf("fixed sub-stepping returned %d, want 3", n)
	}
}

func TestAdvectionSurvivesAdversarialVelocity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = field.Size2{X: 8, Y: 8}
	cfg.Spacing = vec.V2{X: 1, Y: 1}
	cfg.Gravity = vec.V2{}
	cfg.UseFixedSubSteps = true
	cfg.FixedSubSteps = 1
	s, err := NewSolver(cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}

	s.Density().Set(field.Index2{X: 4, Y: 4}, 1.0)
	s.Velocity().Fill(vec.V2{X: 1e9, Y: -1e9})

	s.Advance(1.0)

	for i, d := range s.Density().Data() {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			t.Fatalf("density[%d] = %g after adversarial velocity", i, d)
		}
		if d < 0 || d > 1 {
			t.Fatalf("density[%d] = %g escaped [0, 1]; backtrace clamp failed", i, d)
		}
	}
}

func TestPressureProjectionReducesDivergence(t *testing.T) {
	s := newTestSolver(t, 16)
	s.Initialize()
	s.beginStep(0.1)

	// Divergent interior pattern; outermost faces stay zero so the closed
	// box carries no net boundary flux and the Poisson system is consistent.
	u := s.Velocity().U()
	usz := u.Size()
	for y := 1; y < usz.Y-1; y++ {
		for x := 1; x < usz.X-1; x++ {
			u.Set(field.Index2{X: x, Y: y}, math.Sin(float64(x)*0.9)*math.Cos(float64(y)*0.4))
		}
	}
	v := s.Velocity().V()
	vsz := v.Size()
	for y := 1; y < vsz.Y-1; y++ {
		for x := 1; x < vsz.X-1; x++ {
			v.Set(field.Index2{X: x, Y: y}, math.Cos(float64(x)*0.3)*math.Sin(float64(y)*1.1))
		}
	}

	before := s.MaxDivergence()
	if before == 0 {
		t.Fatal("test field should start divergent")
	}

	s.computePressure(0.1)

	after := s.MaxDivergence()
	if after > before*0.01 {
		t.Fatalf("projection left divergence %g, want under 1%% of initial %g", after, before)
	}
}

func TestConfigClamping(t *testing.T) {
	s := newTestSolver(t, 4)

	s.SetViscosityCoefficient(-1)
	if got := s.ViscosityCoefficient(); got != 0 {
		t.Fatalf("negative viscosity clamped to %g, want 0", got)
	}

	s.SetMaxCfl(0)
	if got := s.MaxCfl(); got <= 0 {
		t.Fatalf("maxCfl clamped to %g, want > 0", got)
	}
	if n := s.SubSteps(0.1); n < 1 {
		t.Fatalf("sub-step count %d with clamped maxCfl", n)
	}
}

func TestZeroSizedGridRejected(t *testing.T) {
	for _, size := range []field.Size2{
		{X: 0, Y: 4},
		{X: 4, Y: 0},
		{X: -1, Y: 4},
	} {
		cfg := DefaultConfig()
		cfg.Size = size
		if _, err := NewSolver(cfg); err == nil {
			t.Fatalf("NewSolver accepted interior size %dx%d", size.X, size.Y)
		}
	}
}

func TestHooksInvokedPerSubStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = field.Size2{X: 4, Y: 4}
	cfg.Spacing = vec.V2{X: 1, Y: 1}
	cfg.Gravity = vec.V2{}
	cfg.UseFixedSubSteps = true
	cfg.FixedSubSteps = 4

	begins, ends, forces := 0, 0, 0
	cfg.Hooks = Hooks{
		OnBeginStep:    func(float64) { begins++ },
		OnEndStep:      func(float64) { ends++ },
		ExternalForces: func(float64) { forces++ },
	}
	s, err := NewSolver(cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}

	s.Advance(0.4)

	if begins != 4 || ends != 4 || forces != 4 {
		t.Fatalf("hooks ran begin=%d end=%d forces=%d, want 4 each", begins, ends, forces)
	}
}
