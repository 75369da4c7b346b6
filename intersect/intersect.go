// Package intersect computes first contact between moving cutter shapes
// and fixed geometric primitives.
//
// Every function takes the shape at its start position and a unit travel
// direction d, and returns:
//
//	ccp: the point of the shape surface, at its start position, that makes contact
//	cp:  the contact point on the target
//	t:   the signed travel distance along d until contact, so that cp = ccp + t*d
//
// When there is no contact t is cam.Infinite and the points are zero.
// Targets are infinite: lines extend past their endpoints and planes past
// their triangles. Callers must check that cp lies within the actual
// segment or triangle. Degenerate configurations such as travel parallel
// to a plane report no contact instead of failing.
package intersect

import (
	"math"

	"github.com/soypat/cam"
	"gonum.org/v1/gonum/spatial/r3"
)

var noContact = cam.Infinite

// Plane is an infinite plane through P with unit normal N.
type Plane struct {
	P, N r3.Vec
}

// PlanePoint returns where a point p moving along d meets the plane pl,
// with t the distance travelled. This is the building block for shapes
// with a flat face.
func PlanePoint(pl Plane, d, p r3.Vec) (cp r3.Vec, t float64) {
	den := r3.Dot(pl.N, d)
	if math.Abs(den) < cam.Epsilon {
		return r3.Vec{}, noContact
	}
	t = r3.Dot(pl.N, r3.Sub(pl.P, p)) / den
	return r3.Add(p, r3.Scale(t, d)), t
}

// perp returns the component of v perpendicular to unit vector a.
func perp(v, a r3.Vec) r3.Vec {
	return r3.Sub(v, r3.Scale(r3.Dot(v, a), a))
}

// unitOrZero normalizes v, returning false if v is shorter than cam.Epsilon.
func unitOrZero(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n < cam.Epsilon {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// smallRoot returns the smaller root of a*t² + b*t + c = 0.
// ok is false for complex roots or a vanishing a.
func smallRoot(a, b, c float64) (t float64, ok bool) {
	if math.Abs(a) < cam.Epsilon*cam.Epsilon {
		return 0, false
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		if disc > -cam.Epsilon*cam.Epsilon*a*a {
			// Tangency lost to rounding.
			disc = 0
		} else {
			return 0, false
		}
	}
	sq := math.Sqrt(disc)
	if a > 0 {
		return (-b - sq) / (2 * a), true
	}
	return (-b + sq) / (2 * a), true
}

// behind returns cp - t*d.
func behind(cp, d r3.Vec, t float64) r3.Vec {
	return r3.Sub(cp, r3.Scale(t, d))
}

// closestOnLine returns the point of the infinite line through p with
// unit direction e closest to q.
func closestOnLine(p, e, q r3.Vec) r3.Vec {
	return r3.Add(p, r3.Scale(r3.Dot(r3.Sub(q, p), e), e))
}
