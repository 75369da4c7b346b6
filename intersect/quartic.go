package intersect

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// QuarticRoots returns the real roots, in ascending order, of
//
//	t⁴ + b*t³ + c*t² + d*t + e = 0
//
// The roots are the eigenvalues of the companion matrix, polished with a
// few Newton iterations. Nearly real complex pairs, as produced by double
// roots at tangent contacts, are reported as real.
func QuarticRoots(b, c, d, e float64) []float64 {
	companion := mat.NewDense(4, 4, []float64{
		-b, -c, -d, -e,
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	})
	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenNone) {
		return nil
	}
	scale := 1 + math.Max(math.Max(math.Abs(b), math.Abs(c)), math.Max(math.Abs(d), math.Abs(e)))
	var roots []float64
	for _, v := range eig.Values(nil) {
		re := real(v)
		if math.Abs(imag(v)) > 1e-6*math.Max(1, cmplx.Abs(v)) {
			continue
		}
		re = polishQuartic(b, c, d, e, re)
		if math.IsNaN(re) || math.IsInf(re, 0) {
			continue
		}
		if math.Abs(evalQuartic(b, c, d, e, re)) > 1e-6*scale*math.Max(1, re*re*re*re) {
			continue
		}
		roots = append(roots, re)
	}
	sort.Float64s(roots)
	return roots
}

func evalQuartic(b, c, d, e, t float64) float64 {
	return (((t+b)*t+c)*t+d)*t + e
}

func polishQuartic(b, c, d, e, t float64) float64 {
	for i := 0; i < 8; i++ {
		f := evalQuartic(b, c, d, e, t)
		df := ((4*t+3*b)*t+2*c)*t + d
		if df == 0 {
			break
		}
		step := f / df
		next := t - step
		// Newton diverges near double roots. Keep the better estimate.
		if math.Abs(evalQuartic(b, c, d, e, next)) >= math.Abs(f) {
			break
		}
		t = next
	}
	return t
}
