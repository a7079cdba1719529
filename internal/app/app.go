//go:build ebiten

package app

import (
	"gridflow/internal/fluid"
	"gridflow/internal/render"
	"gridflow/internal/scenario"
	"gridflow/internal/ui"
	"gridflow/pkg/field"
	"gridflow/pkg/vec"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const hudWidth = 190

// Game adapts a smoke simulation to the ebiten.Game interface.
type Game struct {
	cfg    scenario.Config
	solver *fluid.Solver

	painter *render.DensityPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	tex     *ebiten.Image
	cells   []float64

	scale int
	dt    float64

	paused   bool
	tickOnce bool

	dragging  bool
	lastDrag  vec.V2
	injecting bool
}

// New constructs a Game over the provided scenario.
func New(cfg scenario.Config, scale, tps int) (*Game, error) {
	solver, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	solver.Initialize()

	size := solver.Size()
	if scale <= 0 {
		scale = 1
	}
	if tps <= 0 {
		tps = 60
	}

	g := &Game{
		cfg:     cfg,
		solver:  solver,
		painter: render.NewDensityPainter(size.X, size.Y),
		tex:     ebiten.NewImage(size.X, size.Y),
		cells:   make([]float64, size.X*size.Y),
		scale:   scale,
		dt:      1.0 / float64(tps),
	}
	g.overlay = ui.NewOverlay(g, scale)
	g.hud = ui.NewHUD(hudWidth, []ui.Tunable{
		{
			Label: "viscosity",
			Step:  0.0005,
			Min:   0,
			Max:   0.05,
			Get:   g.solverViscosity,
			Set:   g.setSolverViscosity,
		},
		{
			Label: "max cfl",
			Step:  0.5,
			Min:   0.5,
			Max:   20,
			Get:   g.solverMaxCfl,
			Set:   g.setSolverMaxCfl,
		},
	})
	return g, nil
}

// Tunable getters go through methods so the HUD survives a Reset swapping
// the solver out from under it.
func (g *Game) solverViscosity() float64     { return g.solver.ViscosityCoefficient() }
func (g *Game) setSolverViscosity(v float64) { g.solver.SetViscosityCoefficient(v) }
func (g *Game) solverMaxCfl() float64        { return g.solver.MaxCfl() }
func (g *Game) setSolverMaxCfl(v float64)    { g.solver.SetMaxCfl(v) }

// Reset rebuilds the solver from the scenario it was constructed with.
func (g *Game) Reset() error {
	solver, err := g.cfg.Build()
	if err != nil {
		return err
	}
	solver.Initialize()
	g.solver = solver
	g.tickOnce = false
	g.dragging = false
	return nil
}

// FlowVectorAt samples the simulation velocity at interior cell coordinates.
func (g *Game) FlowVectorAt(cx, cy float64) (float64, float64) {
	v := g.solver.Velocity().Sample(g.cellToWorld(vec.V2{X: cx, Y: cy}))
	return v.X, v.Y
}

// GridCells returns the interior resolution.
func (g *Game) GridCells() (int, int) {
	size := g.solver.Size()
	return size.X, size.Y
}

// ObstacleCircle reports the collider outline when the collider is a sphere.
func (g *Game) ObstacleCircle() (cx, cy, radius float64, ok bool) {
	sphere, isSphere := g.solver.Collider().(*fluid.SphereCollider)
	if !isSphere {
		return 0, 0, 0, false
	}
	spacing := g.solver.GridSpacing()
	c := g.worldToCell(sphere.Center())
	return c.X, c.Y, sphere.Radius() / spacing.X, true
}

// interiorOrigin is the world position of the lower-left interior corner.
func (g *Game) interiorOrigin() vec.V2 {
	return g.solver.GridOrigin().Add(g.solver.GridSpacing())
}

func (g *Game) cellToWorld(c vec.V2) vec.V2 {
	return g.interiorOrigin().Add(c.Mul(g.solver.GridSpacing()))
}

func (g *Game) worldToCell(p vec.V2) vec.V2 {
	spacing := g.solver.GridSpacing()
	d := p.Sub(g.interiorOrigin())
	return vec.V2{X: d.X / spacing.X, Y: d.Y / spacing.Y}
}

// cursorWorld maps the mouse position to world coordinates, reporting
// whether the cursor is over the simulation view.
func (g *Game) cursorWorld() (vec.V2, bool) {
	mx, my := ebiten.CursorPosition()
	size := g.solver.Size()
	if mx < 0 || my < 0 || mx >= size.X*g.scale || my >= size.Y*g.scale {
		return vec.V2{}, false
	}
	cx := float64(mx) / float64(g.scale)
	cy := float64(size.Y) - float64(my)/float64(g.scale)
	return g.cellToWorld(vec.V2{X: cx, Y: cy}), true
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.Reset(); err != nil {
			return err
		}
	}

	g.overlay.Update()
	size := g.solver.Size()
	g.hud.Update(size.X * g.scale)
	g.handleMouse()

	if (!g.paused) || g.tickOnce {
		g.solver.Advance(g.dt)
		g.tickOnce = false
	}
	return nil
}

func (g *Game) handleMouse() {
	sphere, hasSphere := g.solver.Collider().(*fluid.SphereCollider)

	if hasSphere {
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			if p, over := g.cursorWorld(); over && p.Sub(sphere.Center()).Length() <= sphere.Radius() {
				g.dragging = true
				g.lastDrag = p
			}
		}
		if g.dragging {
			if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
				g.dragging = false
				sphere.SetVelocity(vec.V2{})
			} else if p, over := g.cursorWorld(); over {
				sphere.SetCenter(p)
				sphere.SetVelocity(p.Sub(g.lastDrag).Scale(1 / g.dt))
				g.lastDrag = p
			}
		}
	}

	g.injecting = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if g.injecting {
		if p, over := g.cursorWorld(); over {
			g.injectSmoke(p)
		}
	}
}

// injectSmoke splats a small density disc around the world position.
func (g *Game) injectSmoke(p vec.V2) {
	density := g.solver.Density()
	spacing := g.solver.GridSpacing()
	radius := 3 * spacing.X
	res := density.Resolution()
	for y := 1; y < res.Y-1; y++ {
		for x := 1; x < res.X-1; x++ {
			idx := field.Index2{X: x, Y: y}
			d := density.DataPosition(idx).Sub(p).Length()
			if d > radius {
				continue
			}
			v := density.At(idx) + 0.5*(1-d/radius)
			if v > 1 {
				v = 1
			}
			density.Set(idx, v)
		}
	}
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	size := g.solver.Size()
	density := g.solver.Density()

	// Interior cells only, flipped so grid row 0 lands at the bottom of
	// the screen.
	for y := 0; y < size.Y; y++ {
		srcRow := size.Y - y
		for x := 0; x < size.X; x++ {
			g.cells[y*size.X+x] = density.At(field.Index2{X: x + 1, Y: srcRow})
		}
	}
	g.tex.WritePixels(g.painter.Pixels(g.cells))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.tex, op)

	g.overlay.Draw(screen)
	g.hud.Draw(screen, size.X*g.scale, size.Y*g.scale, ui.Stats{
		Time:          g.solver.CurrentTime(),
		TimeStep:      g.dt,
		SubSteps:      g.solver.SubSteps(g.dt),
		Cfl:           g.solver.CFL(g.dt),
		MaxDivergence: g.solver.MaxDivergence(),
		TotalDensity:  g.solver.TotalDensity(),
		Paused:        g.paused,
	})
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	size := g.solver.Size()
	return size.X*g.scale + hudWidth, size.Y * g.scale
}
