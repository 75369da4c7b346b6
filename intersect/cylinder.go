package intersect

import (
	"math"

	"github.com/soypat/cam"
	"gonum.org/v1/gonum/spatial/r3"
)

// The cylinder functions model the infinite side surface of a cylinder
// with unit axis a through c. Callers bound the height of the contact.

// CylinderPoint returns the first contact of the cylinder side with point p.
func CylinderPoint(c, a r3.Vec, radius float64, d, p r3.Vec) (ccp, cp r3.Vec, t float64) {
	w := perp(r3.Sub(p, c), a)
	dp := perp(d, a)
	// |w - t*dp|² = radius²
	t, ok := smallRoot(r3.Norm2(dp), -2*r3.Dot(w, dp), r3.Norm2(w)-radius*radius)
	if !ok {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	return behind(p, d, t), p, t
}

// CylinderLine returns the first contact of the cylinder side with the
// infinite line through p with unit direction e. Lines parallel to the
// axis are treated as points.
func CylinderLine(c, a r3.Vec, radius float64, d, p, e r3.Vec) (ccp, cp r3.Vec, t float64) {
	n, ok := unitOrZero(r3.Cross(a, e))
	if !ok {
		return CylinderPoint(c, a, radius, d, p)
	}
	nd := r3.Dot(n, d)
	if math.Abs(nd) < cam.Epsilon {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	// Distance between the moving axis and the line reaches ±radius.
	d0 := r3.Dot(n, r3.Sub(c, p))
	t = math.Min((radius-d0)/nd, (-radius-d0)/nd)
	axis := r3.Add(c, r3.Scale(t, d))
	// Closest point of the line to the displaced axis.
	w0 := r3.Sub(p, axis)
	b := r3.Dot(e, a)
	den := 1 - b*b
	s := (b*r3.Dot(a, w0) - r3.Dot(e, w0)) / den
	cp = r3.Add(p, r3.Scale(s, e))
	return behind(cp, d, t), cp, t
}

// CylinderPlane returns the first contact of the cylinder side with a
// plane parallel to its axis. The contact point is reported at the height
// of c along the axis. Other planes report no contact since they always
// cut an infinite cylinder.
func CylinderPlane(c, a r3.Vec, radius float64, d r3.Vec, pl Plane) (ccp, cp r3.Vec, t float64) {
	if math.Abs(r3.Dot(pl.N, a)) > cam.Epsilon {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	s := r3.Dot(pl.N, d)
	if math.Abs(s) < cam.Epsilon {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	ccp = r3.Add(c, r3.Scale(math.Copysign(radius, s), pl.N))
	cp, t = PlanePoint(pl, d, ccp)
	return ccp, cp, t
}
