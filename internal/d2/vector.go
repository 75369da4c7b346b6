package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func Elem(sides float64) r2.Vec {
	return r2.Vec{
		X: sides,
		Y: sides,
	}
}

func EqualWithin(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
}

// Swap exchanges the X and Y components of a.
func Swap(a r2.Vec) r2.Vec {
	return r2.Vec{X: a.Y, Y: a.X}
}

type Set []r2.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() r2.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() r2.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = MaxElem(vmax, v)
	}
	return vmax
}

// SignedArea returns the area enclosed by the closed polyline a
// using the shoelace formula. Counter-clockwise polylines have positive area.
func (a Set) SignedArea() float64 {
	if len(a) < 3 {
		return 0
	}
	var sum float64
	prev := a[len(a)-1]
	for _, v := range a {
		sum += r2.Cross(prev, v)
		prev = v
	}
	return sum / 2
}

// Winding returns the winding number of the closed polyline a around p.
// Zero means p lies outside.
func (a Set) Winding(p r2.Vec) int {
	wn := 0
	if len(a) < 3 {
		return 0
	}
	prev := a[len(a)-1]
	for _, v := range a {
		if prev.Y <= p.Y {
			if v.Y > p.Y && side(prev, v, p) > 0 {
				wn++
			}
		} else if v.Y <= p.Y && side(prev, v, p) < 0 {
			wn--
		}
		prev = v
	}
	return wn
}

// side is positive when p lies to the left of the directed line a->b.
func side(a, b, p r2.Vec) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(p, a))
}

// Overlap returns true if 1D intervals a=[a.X,a.Y] and b=[b.X,b.Y] overlap.
func Overlap(a, b r2.Vec) bool {
	return a.Y >= b.X && b.Y >= a.X
}

// SegmentIntersection returns the point where segments a1a2 and b1b2 cross and
// true, or false when they do not cross or are parallel. Touching within tol counts.
func SegmentIntersection(a1, a2, b1, b2 r2.Vec, tol float64) (r2.Vec, bool) {
	da := r2.Sub(a2, a1)
	db := r2.Sub(b2, b1)
	den := r2.Cross(da, db)
	if math.Abs(den) < tol*tol {
		return r2.Vec{}, false
	}
	w := r2.Sub(b1, a1)
	s := r2.Cross(w, db) / den
	u := r2.Cross(w, da) / den
	la, lb := r2.Norm(da), r2.Norm(db)
	if s*la < -tol || s*la > la+tol || u*lb < -tol || u*lb > lb+tol {
		return r2.Vec{}, false
	}
	return r2.Add(a1, r2.Scale(s, da)), true
}

// LineIntersection returns the intersection point of the infinite lines
// through a1a2 and b1b2. ok is false when the lines are parallel.
func LineIntersection(a1, a2, b1, b2 r2.Vec, tol float64) (p r2.Vec, ok bool) {
	da := r2.Sub(a2, a1)
	db := r2.Sub(b2, b1)
	den := r2.Cross(da, db)
	if math.Abs(den) <= tol*r2.Norm(da)*r2.Norm(db) {
		return r2.Vec{}, false
	}
	s := r2.Cross(r2.Sub(b1, a1), db) / den
	return r2.Add(a1, r2.Scale(s, da)), true
}

// DistToLine returns the distance from p to the segment ab.
func DistToLine(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := math.Max(0, math.Min(1, r2.Dot(r2.Sub(p, a), ab)/l2))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}
