// Package scenario loads simulation setups from ini-style files and builds
// solvers from them.
package scenario

import (
	"fmt"
	"strings"

	"github.com/iand/perlin"
	gcfg "gopkg.in/gcfg.v1"

	"gridflow/internal/fluid"
	"gridflow/pkg/field"
	"gridflow/pkg/vec"
)

// Config mirrors the sections of a scenario file.
type Config struct {
	Grid struct {
		Width   int
		Height  int
		Spacing float64
	}
	Fluid struct {
		GravityX    float64
		GravityY    float64
		Viscosity   float64
		MaxCfl      float64
		ClosedWalls string
	}
	Collider struct {
		Shape  string
		X, Y   float64
		Radius float64
		Width  float64
		Height float64
	}
	Emitter struct {
		X, Y   float64
		Radius float64
		Rate   float64
		VelX   float64
		VelY   float64
	}
	Noise struct {
		Enabled   bool
		Scale     float64
		Alpha     float64
		Beta      float64
		Octaves   int
		Seed      int64
		Amplitude float64
	}
}

// Default returns the standard smoke-in-a-box scenario.
func Default() Config {
	var c Config
	c.Grid.Width = 128
	c.Grid.Height = 128
	c.Grid.Spacing = 1.0 / 128
	c.Fluid.GravityY = -9.8
	c.Fluid.MaxCfl = 5
	c.Fluid.ClosedWalls = "all"
	c.Noise.Scale = 8
	c.Noise.Alpha = 2
	c.Noise.Beta = 2
	c.Noise.Octaves = 3
	c.Noise.Seed = 1337
	c.Noise.Amplitude = 1
	return c
}

// Load reads a scenario file over the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if err := gcfg.ReadFileInto(&c, path); err != nil {
		return c, fmt.Errorf("scenario: reading %s: %v", path, err)
	}
	if err := c.CheckInit(); err != nil {
		return c, err
	}
	return c, nil
}

// CheckInit validates the configuration.
func (c *Config) CheckInit() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf(
			"scenario: grid must have positive dimensions, got %dx%d",
			c.Grid.Width, c.Grid.Height,
		)
	}
	if c.Grid.Spacing <= 0 {
		return fmt.Errorf("scenario: grid spacing must be positive, got %g", c.Grid.Spacing)
	}
	switch strings.ToLower(c.Collider.Shape) {
	case "", "none", "sphere", "box":
	default:
		return fmt.Errorf("scenario: unknown collider shape %q", c.Collider.Shape)
	}
	if strings.EqualFold(c.Collider.Shape, "sphere") && c.Collider.Radius <= 0 {
		return fmt.Errorf(
			"scenario: sphere collider needs a positive radius, got %g",
			c.Collider.Radius,
		)
	}
	if strings.EqualFold(c.Collider.Shape, "box") && (c.Collider.Width <= 0 || c.Collider.Height <= 0) {
		return fmt.Errorf(
			"scenario: box collider needs positive extents, got %gx%g",
			c.Collider.Width, c.Collider.Height,
		)
	}
	if _, err := parseWalls(c.Fluid.ClosedWalls); err != nil {
		return err
	}
	return nil
}

// Build constructs a solver, collider and emitter from the configuration
// and seeds the initial density field.
func (c *Config) Build() (*fluid.Solver, error) {
	if err := c.CheckInit(); err != nil {
		return nil, err
	}
	walls, err := parseWalls(c.Fluid.ClosedWalls)
	if err != nil {
		return nil, err
	}

	cfg := fluid.DefaultConfig()
	cfg.Size = field.Size2{X: c.Grid.Width, Y: c.Grid.Height}
	cfg.Spacing = vec.V2{X: c.Grid.Spacing, Y: c.Grid.Spacing}
	cfg.Gravity = vec.V2{X: c.Fluid.GravityX, Y: c.Fluid.GravityY}
	cfg.Viscosity = c.Fluid.Viscosity
	cfg.MaxCfl = c.Fluid.MaxCfl
	cfg.ClosedDomainBoundaryFlag = walls

	solver, err := fluid.NewSolver(cfg)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(c.Collider.Shape) {
	case "sphere":
		solver.SetCollider(fluid.NewSphereCollider(
			vec.V2{X: c.Collider.X, Y: c.Collider.Y}, c.Collider.Radius,
		))
	case "box":
		half := vec.V2{X: c.Collider.Width / 2, Y: c.Collider.Height / 2}
		center := vec.V2{X: c.Collider.X, Y: c.Collider.Y}
		solver.SetCollider(fluid.NewBoxCollider(center.Sub(half), center.Add(half)))
	}

	if c.Emitter.Radius > 0 {
		solver.SetEmitter(&fluid.PointEmitter{
			Center:   vec.V2{X: c.Emitter.X, Y: c.Emitter.Y},
			Radius:   c.Emitter.Radius,
			Rate:     c.Emitter.Rate,
			Velocity: vec.V2{X: c.Emitter.VelX, Y: c.Emitter.VelY},
		})
	}

	if c.Noise.Enabled {
		c.seedDensity(solver)
	}
	return solver, nil
}

// seedDensity fills the interior density with band-limited noise in [0, 1].
func (c *Config) seedDensity(solver *fluid.Solver) {
	density := solver.Density()
	res := density.Resolution()
	for y := 1; y < res.Y-1; y++ {
		for x := 1; x < res.X-1; x++ {
			nx := float64(x) / float64(res.X) * c.Noise.Scale
			ny := float64(y) / float64(res.Y) * c.Noise.Scale
			n := perlin.Noise2D(nx, ny, c.Noise.Seed, c.Noise.Alpha, c.Noise.Beta, c.Noise.Octaves)
			d := c.Noise.Amplitude * (0.5 + 0.5*n)
			if d < 0 {
				d = 0
			}
			if d > 1 {
				d = 1
			}
			density.Set(field.Index2{X: x, Y: y}, d)
		}
	}
}

func parseWalls(spec string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "", "all":
		return fluid.DirectionAll, nil
	case "none":
		return fluid.DirectionNone, nil
	}

	flag := fluid.DirectionNone
	for _, part := range strings.Split(spec, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "left":
			flag |= fluid.DirectionLeft
		case "right":
			flag |= fluid.DirectionRight
		case "down", "bottom":
			flag |= fluid.DirectionDown
		case "up", "top":
			flag |= fluid.DirectionUp
		default:
			return 0, fmt.Errorf("scenario: unknown wall %q in %q", part, spec)
		}
	}
	return flag, nil
}
