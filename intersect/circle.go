package intersect

import (
	"math"

	"github.com/soypat/cam"
	"gonum.org/v1/gonum/spatial/r3"
)

// The circle functions model a flat disc with centre c, unit axis a and
// the given radius, such as the bottom face of a cylindrical cutter.

// CirclePlane returns the first contact of the disc with plane pl.
// A disc parallel to the plane touches it with its whole face; the
// centre is then reported as contact point.
func CirclePlane(c, a r3.Vec, radius float64, d r3.Vec, pl Plane) (ccp, cp r3.Vec, t float64) {
	s := r3.Dot(pl.N, d)
	if math.Abs(s) < cam.Epsilon {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	ccp = c
	if u, ok := unitOrZero(perp(pl.N, a)); ok {
		ccp = r3.Add(c, r3.Scale(math.Copysign(radius, s), u))
	}
	cp, t = PlanePoint(pl, d, ccp)
	return ccp, cp, t
}

// CirclePoint returns the first contact of the disc with point p.
// When moving out of the disc plane the disc face must reach p. When moving
// within the disc plane p must lie on that plane and is hit by the rim.
func CirclePoint(c, a r3.Vec, radius float64, d, p r3.Vec) (ccp, cp r3.Vec, t float64) {
	ad := r3.Dot(a, d)
	if math.Abs(ad) > cam.Epsilon {
		t = r3.Dot(a, r3.Sub(p, c)) / ad
		ccp = behind(p, d, t)
		if r3.Norm2(r3.Sub(ccp, c)) > radius*radius+cam.Epsilon {
			return r3.Vec{}, r3.Vec{}, noContact
		}
		return ccp, p, t
	}
	w := r3.Sub(p, c)
	if math.Abs(r3.Dot(a, w)) > cam.Epsilon {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	// |w - t*d|² = radius²
	t, ok := smallRoot(1, -2*r3.Dot(w, d), r3.Norm2(w)-radius*radius)
	if !ok {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	return behind(p, d, t), p, t
}

// CircleLine returns the first contact of the disc with the infinite line
// through p with unit direction e.
func CircleLine(c, a r3.Vec, radius float64, d, p, e r3.Vec) (ccp, cp r3.Vec, t float64) {
	ad := r3.Dot(a, d)
	ae := r3.Dot(a, e)
	switch {
	case math.Abs(ad) > cam.Epsilon && math.Abs(ae) > cam.Epsilon:
		// The line pierces the moving disc plane at p + s(t)*e with
		// s(t) = s0 + s1*t. Contact when that point enters the disc.
		s0 := r3.Dot(a, r3.Sub(c, p)) / ae
		s1 := ad / ae
		v0 := r3.Sub(r3.Add(p, r3.Scale(s0, e)), c)
		v1 := r3.Sub(r3.Scale(s1, e), d)
		t, ok := smallRoot(r3.Norm2(v1), 2*r3.Dot(v0, v1), r3.Norm2(v0)-radius*radius)
		if !ok {
			return r3.Vec{}, r3.Vec{}, noContact
		}
		cp = r3.Add(p, r3.Scale(s0+s1*t, e))
		return behind(cp, d, t), cp, t

	case math.Abs(ad) > cam.Epsilon:
		// Line parallel to the disc: the face reaches the whole line at once.
		t = r3.Dot(a, r3.Sub(p, c)) / ad
		moved := r3.Add(c, r3.Scale(t, d))
		cp = closestOnLine(p, e, moved)
		if r3.Norm2(r3.Sub(cp, moved)) > radius*radius+cam.Epsilon {
			return r3.Vec{}, r3.Vec{}, noContact
		}
		return behind(cp, d, t), cp, t

	case math.Abs(ae) > cam.Epsilon:
		// Moving within the disc plane, the line pierces it at a single point.
		s := r3.Dot(a, r3.Sub(c, p)) / ae
		return CirclePoint(c, a, radius, d, r3.Add(p, r3.Scale(s, e)))
	}
	// Line and motion both within the disc plane.
	if math.Abs(r3.Dot(a, r3.Sub(p, c))) > cam.Epsilon {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	n, ok := unitOrZero(r3.Cross(a, e))
	if !ok {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	nd := r3.Dot(n, d)
	if math.Abs(nd) < cam.Epsilon {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	d0 := r3.Dot(n, r3.Sub(c, p))
	t = math.Min((radius-d0)/nd, (-radius-d0)/nd)
	moved := r3.Add(c, r3.Scale(t, d))
	cp = closestOnLine(p, e, moved)
	return behind(cp, d, t), cp, t
}
