package fluid

import (
	"gridflow/pkg/field"
	"gridflow/pkg/vec"
)

// Emitter injects density (and optionally momentum) into the grids at the
// beginning of each sub-step.
type Emitter interface {
	Emit(timeInterval float64, density *field.CellCenteredGrid, velocity *field.FaceCenteredGrid)
}

// PointEmitter adds density inside a disc at a fixed rate and drives the
// local velocity toward a target jet velocity.
type PointEmitter struct {
	Center   vec.V2
	Radius   float64
	Rate     float64
	Velocity vec.V2
}

// Emit applies the source terms for one sub-step.
func (e *PointEmitter) Emit(timeInterval float64, density *field.CellCenteredGrid, velocity *field.FaceCenteredGrid) {
	if e.Radius <= 0 || timeInterval <= 0 {
		return
	}
	r2 := e.Radius * e.Radius

	size := density.Size()
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			i := field.Index2{X: x, Y: y}
			if density.DataPosition(i).Sub(e.Center).SquaredLength() > r2 {
				continue
			}
			d := density.At(i) + e.Rate*timeInterval
			if d > 1 {
				d = 1
			}
			density.Set(i, d)
		}
	}

	if e.Velocity.SquaredLength() == 0 {
		return
	}
	u := velocity.U()
	usz := u.Size()
	for y := 0; y < usz.Y; y++ {
		for x := 0; x < usz.X; x++ {
			i := field.Index2{X: x, Y: y}
			if u.DataPosition(i).Sub(e.Center).SquaredLength() <= r2 {
				u.Set(i, e.Velocity.X)
			}
		}
	}
	v := velocity.V()
	vsz := v.Size()
	for y := 0; y < vsz.Y; y++ {
		for x := 0; x < vsz.X; x++ {
			i := field.Index2{X: x, Y: y}
			if v.DataPosition(i).Sub(e.Center).SquaredLength() <= r2 {
				v.Set(i, e.Velocity.Y)
			}
		}
	}
}
