package cam

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Path is one continuous tool motion: an ordered sequence of cutter
// locations with no retract in between.
type Path struct {
	Points []r3.Vec
	// Closed paths return to their first point after the last one.
	Closed bool
}

// Append adds points to the end of the path.
func (p *Path) Append(points ...r3.Vec) {
	p.Points = append(p.Points, points...)
}

// Len returns the number of points in the path.
func (p *Path) Len() int { return len(p.Points) }

// Last returns the last point of the path. It panics on an empty path.
func (p *Path) Last() r3.Vec { return p.Points[len(p.Points)-1] }

// Close marks the path as a loop. A repeated first point at the end
// of the path is removed.
func (p *Path) Close() {
	if n := len(p.Points); n > 1 && EqualVec(p.Points[0], p.Points[n-1], Epsilon) {
		p.Points = p.Points[:n-1]
	}
	p.Closed = true
}

// Reverse reverses the path in place.
func (p *Path) Reverse() {
	pts := p.Points
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// Clone returns a deep copy of the path.
func (p Path) Clone() Path {
	p.Points = append([]r3.Vec(nil), p.Points...)
	return p
}

// Length returns the travelled distance along the path, including
// the closing segment of closed paths.
func (p Path) Length() (l float64) {
	for i := 1; i < len(p.Points); i++ {
		l += r3.Norm(r3.Sub(p.Points[i], p.Points[i-1]))
	}
	if p.Closed && len(p.Points) > 2 {
		l += r3.Norm(r3.Sub(p.Points[0], p.Last()))
	}
	return l
}

// SimplifyToolpath removes every point lying on the straight line through
// its neighbours. Two segments are considered collinear when their
// normalized directions are equal within Epsilon. Running it twice
// yields the same result as running it once.
func SimplifyToolpath(p *Path) {
	if len(p.Points) < 3 {
		return
	}
	out := p.Points[:1]
	for i := 1; i < len(p.Points); i++ {
		cur := p.Points[i]
		last := out[len(out)-1]
		if EqualVec(cur, last, Epsilon) {
			// Coincident points carry no direction.
			continue
		}
		if len(out) >= 2 {
			prev := out[len(out)-2]
			d1 := r3.Unit(r3.Sub(last, prev))
			d2 := r3.Unit(r3.Sub(cur, last))
			if EqualVec(d1, d2, Epsilon) {
				out[len(out)-1] = cur
				continue
			}
		}
		out = append(out, cur)
	}
	p.Points = out
}
