package vec

import "math"

// V2 is a 2-D vector with float64 components.
type V2 struct {
	X, Y float64
}

// Add returns v + o.
func (v V2) Add(o V2) V2 { return V2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v V2) Sub(o V2) V2 { return V2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by s.
func (v V2) Scale(s float64) V2 { return V2{v.X * s, v.Y * s} }

// Mul returns the componentwise product of v and o.
func (v V2) Mul(o V2) V2 { return V2{v.X * o.X, v.Y * o.Y} }

// Dot returns the dot product of v and o.
func (v V2) Dot(o V2) float64 { return v.X*o.X + v.Y*o.Y }

// SquaredLength returns |v|^2.
func (v V2) SquaredLength() float64 { return v.Dot(v) }

// Length returns |v|.
func (v V2) Length() float64 { return math.Sqrt(v.SquaredLength()) }

// Min returns the smaller component.
func (v V2) Min() float64 { return math.Min(v.X, v.Y) }

// Max returns the larger component.
func (v V2) Max() float64 { return math.Max(v.X, v.Y) }

// Clamp limits each component of v to the range [lo, hi] componentwise.
func (v V2) Clamp(lo, hi V2) V2 {
	return V2{clamp(v.X, lo.X, hi.X), clamp(v.Y, lo.Y, hi.Y)}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
