package intersect

import (
	"math"

	"github.com/soypat/cam"
	"gonum.org/v1/gonum/spatial/r3"
)

// SpherePlane returns the first contact of the sphere with centre c with plane pl.
func SpherePlane(c r3.Vec, radius float64, d r3.Vec, pl Plane) (ccp, cp r3.Vec, t float64) {
	s := r3.Dot(pl.N, d)
	if math.Abs(s) < cam.Epsilon {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	ccp = r3.Add(c, r3.Scale(math.Copysign(radius, s), pl.N))
	cp, t = PlanePoint(pl, d, ccp)
	return ccp, cp, t
}

// SpherePoint returns the first contact of the sphere with point p.
func SpherePoint(c r3.Vec, radius float64, d, p r3.Vec) (ccp, cp r3.Vec, t float64) {
	w := r3.Sub(p, c)
	// |w - t*d|² = radius²
	t, ok := smallRoot(1, -2*r3.Dot(w, d), r3.Norm2(w)-radius*radius)
	if !ok {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	return behind(p, d, t), p, t
}

// SphereLine returns the first contact of the sphere with the infinite
// line through p with unit direction e.
func SphereLine(c r3.Vec, radius float64, d, p, e r3.Vec) (ccp, cp r3.Vec, t float64) {
	w := perp(r3.Sub(c, p), e)
	dp := perp(d, e)
	// |w + t*dp|² = radius²
	t, ok := smallRoot(r3.Norm2(dp), 2*r3.Dot(w, dp), r3.Norm2(w)-radius*radius)
	if !ok {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	cp = closestOnLine(p, e, r3.Add(c, r3.Scale(t, d)))
	return behind(cp, d, t), cp, t
}
