package fluid

import (
	"testing"

	"gridflow/pkg/field"
	"gridflow/pkg/vec"
)

func TestPointEmitterAddsDensityInsideDisc(t *testing.T) {
	spacing := vec.V2{X: 0.1, Y: 0.1}
	density, err := field.NewCellCenteredGrid(field.Size2{X: 10, Y: 10}, spacing, vec.V2{})
	if err != nil {
		t.Fatalf("NewCellCenteredGrid: %v", err)
	}
	velocity, err := field.NewFaceCenteredGrid(field.Size2{X: 10, Y: 10}, spacing, vec.V2{})
	if err != nil {
		t.Fatalf("NewFaceCenteredGrid: %v", err)
	}

	e := &PointEmitter{
		Center: vec.V2{X: 0.5, Y: 0.5},
		Radius: 0.15,
		Rate:   2.0,
	}
	e.Emit(0.1, density, velocity)

	center := field.Index2{X: 5, Y: 5}
	if got := density.At(center); got != 0.2 {
		t.Fatalf("center density = %v, want 0.2", got)
	}
	corner := field.Index2{X: 0, Y: 0}
	if got := density.At(corner); got != 0 {
		t.Fatalf("corner density = %v, want 0", got)
	}
}

func TestPointEmitterClampsDensityToOne(t *testing.T) {
	spacing := vec.V2{X: 0.1, Y: 0.1}
	density, _ := field.NewCellCenteredGrid(field.Size2{X: 4, Y: 4}, spacing, vec.V2{})
	velocity, _ := field.NewFaceCenteredGrid(field.Size2{X: 4, Y: 4}, spacing, vec.V2{})

	e := &PointEmitter{Center: vec.V2{X: 0.2, Y: 0.2}, Radius: 1, Rate: 100}
	e.Emit(1, density, velocity)

	res := density.Resolution()
	for y := 0; y < res.Y; y++ {
		for x := 0; x < res.X; x++ {
			if d := density.At(field.Index2{X: x, Y: y}); d > 1 {
				t.Fatalf("density at (%d,%d) = %v, want <= 1", x, y, d)
			}
		}
	}
}

func TestPointEmitterDrivesJetVelocity(t *testing.T) {
	spacing := vec.V2{X: 0.1, Y: 0.1}
	density, _ := field.NewCellCenteredGrid(field.Size2{X: 10, Y: 10}, spacing, vec.V2{})
	velocity, _ := field.NewFaceCenteredGrid(field.Size2{X: 10, Y: 10}, spacing, vec.V2{})

	e := &PointEmitter{
		Center:   vec.V2{X: 0.5, Y: 0.5},
		Radius:   0.15,
		Rate:     1,
		Velocity: vec.V2{X: 0, Y: 2.5},
	}
	e.Emit(0.1, density, velocity)

	// The y-face closest to the center.
	if got := velocity.V().At(field.Index2{X: 5, Y: 5}); got != 2.5 {
		t.Fatalf("jet v = %v, want 2.5", got)
	}
	// Faces far outside the disc stay untouched.
	if got := velocity.V().At(field.Index2{X: 0, Y: 0}); got != 0 {
		t.Fatalf("far v = %v, want 0", got)
	}
}
