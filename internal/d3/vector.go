package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector manipulation routines used throughout the toolpath code.

// Elem returns a vector with all components set to sides.
func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

// EqualWithin returns true if all components of a and b differ by at most tol.
func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Max returns the largest component of a.
func Max(a r3.Vec) float64 {
	return math.Max(a.Z, math.Max(a.X, a.Y))
}

// Min returns the smallest component of a.
func Min(a r3.Vec) float64 {
	return math.Min(a.Z, math.Min(a.X, a.Y))
}

// Unit returns a unit vector in the direction of a. Unlike r3.Unit it
// returns the zero vector for a zero length argument instead of NaNs.
func Unit(a r3.Vec) r3.Vec {
	n := r3.Norm(a)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, a)
}

// Horizontal returns a with its Z component zeroed.
func Horizontal(a r3.Vec) r3.Vec {
	return r3.Vec{X: a.X, Y: a.Y}
}

// Lerp linearly interpolates between a and b. t=0 returns a.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Set is a set of vectors.
type Set []r3.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() r3.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() r3.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = MaxElem(vmax, v)
	}
	return vmax
}

// FromR2 lifts v to 3D at height z.
func FromR2(v r2.Vec, z float64) r3.Vec {
	return r3.Vec{
		X: v.X,
		Y: v.Y,
		Z: z,
	}
}

// ToR2 drops the Z component of v.
func ToR2(v r3.Vec) r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}
