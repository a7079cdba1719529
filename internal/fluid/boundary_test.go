package fluid

import (
	"testing"

	"gridflow/pkg/field"
	"gridflow/pkg/vec"
)

func newTestGrid(t *testing.T, n int) *field.FaceCenteredGrid {
	t.Helper()
	g, err := field.NewFaceCenteredGrid(field.Size2{X: n, Y: n}, vec.V2{X: 1, Y: 1}, vec.V2{})
	if err != nil {
		t.Fatalf("NewFaceCenteredGrid: %v", err)
	}
	return g
}

func TestConstrainVelocityClosedWalls(t *testing.T) {
	bc := NewBoundaryConditionSolver()
	vel := newTestGrid(t, 8)
	vel.Fill(vec.V2{X: 3, Y: -2})

	bc.ConstrainVelocity(vel, 1)

	u, v := vel.U(), vel.V()
	usz, vsz := u.Size(), v.Size()
	for y := 0; y < usz.Y; y++ {
		if got := u.At(field.Index2{X: 0, Y: y}); got != 0 {
			t.Fatalf("left wall face u = %g, want 0", got)
		}
		if got := u.At(field.Index2{X: usz.X - 1, Y: y}); got != 0 {
			t.Fatalf("right wall face u = %g, want 0", got)
		}
	}
	for x := 0; x < vsz.X; x++ {
		if got := v.At(field.Index2{X: x, Y: 0}); got != 0 {
			t.Fatalf("bottom wall face v = %g, want 0", got)
		}
		if got := v.At(field.Index2{X: x, Y: vsz.Y - 1}); got != 0 {
			t.Fatalf("top wall face v = %g, want 0", got)
		}
	}

	// Interior faces keep the flow.
	if got := u.At(field.Index2{X: 4, Y: 4}); got != 3 {
		t.Fatalf("interior u = %g, want 3", got)
	}
}

func TestConstrainVelocityOpenWalls(t *testing.T) {
	bc := NewBoundaryConditionSolver()
	bc.SetClosedDomainBoundaryFlag(DirectionNone)
	vel := newTestGrid(t, 8)
	vel.Fill(vec.V2{X: 3, Y: -2})

	bc.ConstrainVelocity(vel, 1)

	if got := vel.U().At(field.Index2{X: 0, Y: 3}); got != 3 {
		t.Fatalf("open left wall face u = %g, want untouched 3", got)
	}
	if got := vel.V().At(field.Index2{X: 3, Y: 0}); got != -2 {
		t.Fatalf("open bottom wall face v = %g, want untouched -2", got)
	}
}

func TestUpdateColliderRasterizesSdf(t *testing.T) {
	bc := NewBoundaryConditionSolver()
	collider := NewSphereCollider(vec.V2{X: 4, Y: 4}, 2)

	bc.UpdateCollider(collider, field.Size2{X: 8, Y: 8}, vec.V2{X: 1, Y: 1}, vec.V2{})

	sdf := bc.ColliderSdf()
	if phi := sdf.Sample(vec.V2{X: 4, Y: 4}); !IsInsideSdf(phi) {
		t.Fatalf("rasterized sdf at obstacle center = %g, want inside", phi)
	}
	if phi := sdf.Sample(vec.V2{X: 0.5, Y: 0.5}); IsInsideSdf(phi) {
		t.Fatalf("rasterized sdf far from obstacle = %g, want outside", phi)
	}
}

func TestUpdateColliderRasterizesVelocity(t *testing.T) {
	bc := NewBoundaryConditionSolver()
	collider := NewSphereCollider(vec.V2{X: 4, Y: 4}, 2)
	collider.SetVelocity(vec.V2{X: 1.5, Y: 0.5})

	bc.UpdateCollider(collider, field.Size2{X: 8, Y: 8}, vec.V2{X: 1, Y: 1}, vec.V2{})

	got := bc.ColliderVelocityField().Sample(vec.V2{X: 4, Y: 4})
	if got.Sub(vec.V2{X: 1.5, Y: 0.5}).Length() > 1e-12 {
		t.Fatalf("rasterized collider velocity = %v, want (1.5, 0.5)", got)
	}
}

func TestConstrainVelocityStopsInflowIntoObstacle(t *testing.T) {
	bc := NewBoundaryConditionSolver()
	bc.SetClosedDomainBoundaryFlag(DirectionNone)
	collider := NewSphereCollider(vec.V2{X: 4, Y: 4}, 2)
	bc.UpdateCollider(collider, field.Size2{X: 8, Y: 8}, vec.V2{X: 1, Y: 1}, vec.V2{})

	vel := newTestGrid(t, 8)
	vel.Fill(vec.V2{X: 5, Y: 0}) // flow straight at the obstacle's left side

	bc.ConstrainVelocity(vel, 2)

	// After constraining, the velocity at every face inside the resting
	// obstacle must have no inward normal component left.
	u := vel.U()
	usz := u.Size()
	for y := 0; y < usz.Y; y++ {
		for x := 0; x < usz.X; x++ {
			i := field.Index2{X: x, Y: y}
			pos := u.DataPosition(i)
			if !IsInsideSdf(bc.colliderSdf.Sample(pos)) {
				continue
			}
			full := vec.V2{X: u.At(i), Y: vel.V().Sample(pos)}
			n := bc.surfaceNormal(pos)
			if dot := full.Dot(n); dot < -1e-9 {
				t.Fatalf("u-face (%d,%d) still has inward normal component %g", x, y, dot)
			}
		}
	}

	v := vel.V()
	vsz := v.Size()
	for y := 0; y < vsz.Y; y++ {
		for x := 0; x < vsz.X; x++ {
			i := field.Index2{X: x, Y: y}
			pos := v.DataPosition(i)
			if !IsInsideSdf(bc.colliderSdf.Sample(pos)) {
				continue
			}
			full := vec.V2{X: vel.U().Sample(pos), Y: v.At(i)}
			n := bc.surfaceNormal(pos)
			if dot := full.Dot(n); dot < -1e-9 {
				t.Fatalf("v-face (%d,%d) still has inward normal component %g", x, y, dot)
			}
		}
	}
}
