package fluid

import (
	"gonum.org/v1/gonum/floats"
)

// linearOp applies a symmetric positive-definite operator: dst = A*src.
// dst and src never alias.
type linearOp func(dst, src []float64)

// cgScratch holds reusable work vectors for conjugate-gradient solves so the
// per-sub-step solver calls do not allocate.
type cgScratch struct {
	r, p, ap []float64
}

func (s *cgScratch) resize(n int) {
	if cap(s.r) < n {
		s.r = make([]float64, n)
		s.p = make([]float64, n)
		s.ap = make([]float64, n)
	}
	s.r = s.r[:n]
	s.p = s.p[:n]
	s.ap = s.ap[:n]
}

// conjGrad solves A*x = b for a symmetric positive-definite A, starting from
// the value already in x. It returns the number of iterations used. The
// tolerance is measured on the squared residual norm relative to b.
func (s *cgScratch) conjGrad(apply linearOp, b, x []float64, maxIter int, tol float64) int {
	n := len(b)
	s.resize(n)
	r, p, ap := s.r, s.p, s.ap

	apply(r, x)
	floats.SubTo(r, b, r)
	copy(p, r)

	rr := floats.Dot(r, r)
	bb := floats.Dot(b, b)
	if bb == 0 {
		bb = 1
	}
	limit := tol * tol * bb

	iter := 0
	for ; iter < maxIter && rr > limit; iter++ {
		apply(ap, p)
		pap := floats.Dot(p, ap)
		if pap == 0 {
			break
		}
		alpha := rr / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		rrNew := floats.Dot(r, r)
		beta := rrNew / rr
		rr = rrNew

		floats.Scale(beta, p)
		floats.Add(p, r)
	}
	return iter
}
