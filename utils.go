package cam

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DtoR converts degrees to radians.
func DtoR(degrees float64) float64 {
	return (math.Pi / 180) * degrees
}

// Clamp x between a and b, assume a <= b
func Clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

// EqualFloat returns true if a and b differ by at most tol.
func EqualFloat(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// EqualVec returns true if every component of a and b differ by at most tol.
func EqualVec(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// Horizontal returns v projected onto the XY plane.
func Horizontal(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y}
}

// CeilDiv returns how many steps of size step are needed to cover span,
// with a minimum of one. Values within Epsilon of an integer round down.
func CeilDiv(span, step float64) int {
	if step <= 0 || span <= 0 {
		return 1
	}
	n := span / step
	r := math.Round(n)
	if math.Abs(n-r) < Epsilon {
		n = r
	}
	return max(1, int(math.Ceil(n)))
}
