package fluid

import (
	"math"
	"testing"

	"gridflow/pkg/vec"
)

func TestSphereColliderSignedDistance(t *testing.T) {
	c := NewSphereCollider(vec.V2{X: 2, Y: 3}, 1.5)

	if phi := c.SignedDistance(vec.V2{X: 2, Y: 3}); !IsInsideSdf(phi) {
		t.Fatalf("center should be inside, got phi=%g", phi)
	}
	if phi := c.SignedDistance(vec.V2{X: 2, Y: 5}); IsInsideSdf(phi) {
		t.Fatalf("point outside radius reported inside, phi=%g", phi)
	}
	if phi := c.SignedDistance(vec.V2{X: 2, Y: 4.5}); math.Abs(phi) > 1e-12 {
		t.Fatalf("surface point should have zero distance, got %g", phi)
	}
}

func TestSphereColliderUpdateMovesCenter(t *testing.T) {
	c := NewSphereCollider(vec.V2{}, 1)
	c.SetVelocity(vec.V2{X: 2, Y: -1})

	c.Update(0, 0.5)

	want := vec.V2{X: 1, Y: -0.5}
	if c.Center() != want {
		t.Fatalf("center after update = %v, want %v", c.Center(), want)
	}
	if got := c.VelocityAt(vec.V2{X: 9, Y: 9}); got != (vec.V2{X: 2, Y: -1}) {
		t.Fatalf("rigid velocity = %v, want translation velocity", got)
	}
}

func TestBoxColliderSignedDistance(t *testing.T) {
	b := NewBoxCollider(vec.V2{X: 0, Y: 0}, vec.V2{X: 2, Y: 1})

	if phi := b.SignedDistance(vec.V2{X: 1, Y: 0.5}); !IsInsideSdf(phi) {
		t.Fatalf("box center should be inside, got phi=%g", phi)
	}
	if phi := b.SignedDistance(vec.V2{X: 3, Y: 0.5}); math.Abs(phi-1) > 1e-12 {
		t.Fatalf("distance right of box = %g, want 1", phi)
	}
	// Diagonal from the corner.
	if phi := b.SignedDistance(vec.V2{X: 3, Y: 2}); math.Abs(phi-math.Sqrt2) > 1e-12 {
		t.Fatalf("corner diagonal distance = %g, want sqrt(2)", phi)
	}
}
