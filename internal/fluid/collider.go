package fluid

import (
	"math"

	"gridflow/pkg/vec"
)

// Collider is an implicit rigid obstacle. The solver updates it exactly once
// at the beginning of each sub-step and treats it as read-only afterwards.
// Signed distances are negative inside the solid and positive outside.
type Collider interface {
	// Update advances the obstacle to the given simulation time.
	Update(currentTime, timeInterval float64)
	// SignedDistance returns the signed distance from p to the surface.
	SignedDistance(p vec.V2) float64
	// VelocityAt returns the obstacle's velocity at p.
	VelocityAt(p vec.V2) vec.V2
}

// IsInsideSdf reports whether a signed-distance value lies inside the solid.
func IsInsideSdf(phi float64) bool { return phi < 0 }

// SphereCollider is a circular obstacle that translates with a constant
// velocity between updates. Interactive frontends may reposition it directly
// between steps via SetCenter/SetVelocity.
type SphereCollider struct {
	center   vec.V2
	radius   float64
	velocity vec.V2
}

// NewSphereCollider constructs a circular collider.
func NewSphereCollider(center vec.V2, radius float64) *SphereCollider {
	if radius < 0 {
		radius = 0
	}
	return &SphereCollider{center: center, radius: radius}
}

// Center returns the current center.
func (s *SphereCollider) Center() vec.V2 { return s.center }

// Radius returns the radius.
func (s *SphereCollider) Radius() float64 { return s.radius }

// SetCenter moves the collider.
func (s *SphereCollider) SetCenter(c vec.V2) { s.center = c }

// SetVelocity sets the translation velocity.
func (s *SphereCollider) SetVelocity(v vec.V2) { s.velocity = v }

// Update translates the obstacle by its velocity.
func (s *SphereCollider) Update(_, timeInterval float64) {
	s.center = s.center.Add(s.velocity.Scale(timeInterval))
}

// SignedDistance returns distance to the circle, negative inside.
func (s *SphereCollider) SignedDistance(p vec.V2) float64 {
	return p.Sub(s.center).Length() - s.radius
}

// VelocityAt returns the rigid translation velocity.
func (s *SphereCollider) VelocityAt(vec.V2) vec.V2 { return s.velocity }

// BoxCollider is an axis-aligned rectangular obstacle.
type BoxCollider struct {
	lower    vec.V2
	upper    vec.V2
	velocity vec.V2
}

// NewBoxCollider constructs a box collider spanning [lower, upper].
func NewBoxCollider(lower, upper vec.V2) *BoxCollider {
	if upper.X < lower.X {
		lower.X, upper.X = upper.X, lower.X
	}
	if upper.Y < lower.Y {
		lower.Y, upper.Y = upper.Y, lower.Y
	}
	return &BoxCollider{lower: lower, upper: upper}
}

// Bounds returns the box corners.
func (b *BoxCollider) Bounds() (lo, hi vec.V2) { return b.lower, b.upper }

// SetVelocity sets the translation velocity.
func (b *BoxCollider) SetVelocity(v vec.V2) { b.velocity = v }

// Translate moves both corners by d.
func (b *BoxCollider) Translate(d vec.V2) {
	b.lower = b.lower.Add(d)
	b.upper = b.upper.Add(d)
}

// Update translates the obstacle by its velocity.
func (b *BoxCollider) Update(_, timeInterval float64) {
	b.Translate(b.velocity.Scale(timeInterval))
}

// SignedDistance returns distance to the box surface, negative inside.
func (b *BoxCollider) SignedDistance(p vec.V2) float64 {
	center := b.lower.Add(b.upper).Scale(0.5)
	half := b.upper.Sub(b.lower).Scale(0.5)
	d := vec.V2{
		X: math.Abs(p.X-center.X) - half.X,
		Y: math.Abs(p.Y-center.Y) - half.Y,
	}
	outside := vec.V2{X: math.Max(d.X, 0), Y: math.Max(d.Y, 0)}
	return outside.Length() + math.Min(math.Max(d.X, d.Y), 0)
}

// VelocityAt returns the rigid translation velocity.
func (b *BoxCollider) VelocityAt(vec.V2) vec.V2 { return b.velocity }
