package geom

import (
	"math"

	"github.com/soypat/cam"
	"github.com/soypat/cam/internal/d2"
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Polygon is a chain of points on a horizontal plane. A closed polygon
// connects its last point back to the first; the first point is not
// repeated at the end.
//
// Outer boundaries of closed polygons run counter-clockwise as seen from
// above and holes run clockwise, so the enclosed material always lies on
// the left of the direction of travel.
type Polygon struct {
	Points []r3.Vec
	Closed bool
}

// NewPolygon returns a polygon through points. Consecutive duplicate points
// are removed, as well as a repeated first point at the end of a closed polygon.
func NewPolygon(points []r3.Vec, closed bool) Polygon {
	p := Polygon{Closed: closed}
	for _, pt := range points {
		if len(p.Points) > 0 && cam.EqualVec(pt, p.Points[len(p.Points)-1], cam.Epsilon) {
			continue
		}
		p.Points = append(p.Points, pt)
	}
	if closed && len(p.Points) > 1 && cam.EqualVec(p.Points[0], p.Points[len(p.Points)-1], cam.Epsilon) {
		p.Points = p.Points[:len(p.Points)-1]
	}
	return p
}

// Len returns the amount of points.
func (p *Polygon) Len() int { return len(p.Points) }

// First returns the first point. It panics on an empty polygon.
func (p *Polygon) First() r3.Vec { return p.Points[0] }

// Last returns the last point. It panics on an empty polygon.
func (p *Polygon) Last() r3.Vec { return p.Points[len(p.Points)-1] }

// Clone returns a deep copy of the polygon.
func (p Polygon) Clone() Polygon {
	p.Points = append([]r3.Vec(nil), p.Points...)
	return p
}

// Lines returns the segments of the polygon, including the closing
// segment of closed polygons.
func (p *Polygon) Lines() []Line {
	n := len(p.Points)
	if n < 2 {
		return nil
	}
	lines := make([]Line, 0, n)
	for i := 1; i < n; i++ {
		lines = append(lines, NewLine(p.Points[i-1], p.Points[i]))
	}
	if p.Closed && n > 2 {
		lines = append(lines, NewLine(p.Points[n-1], p.Points[0]))
	}
	return lines
}

// Box returns the bounding box of the polygon.
func (p *Polygon) Box() d3.Box { return d3.BoxOf(p.Points...) }

// Length returns the perimeter of the polygon.
func (p *Polygon) Length() (l float64) {
	for _, ln := range p.Lines() {
		l += ln.Len()
	}
	return l
}

func (p *Polygon) xy() d2.Set {
	s := make(d2.Set, len(p.Points))
	for i, v := range p.Points {
		s[i] = d3.ToR2(v)
	}
	return s
}

// Area returns the signed area enclosed by a closed polygon projected
// onto the XY plane, positive for counter-clockwise polygons.
// Open polygons have zero area.
func (p *Polygon) Area() float64 {
	if !p.Closed {
		return 0
	}
	return p.xy().SignedArea()
}

// IsOuter returns true if p is a closed counter-clockwise polygon.
func (p *Polygon) IsOuter() bool { return p.Area() > 0 }

// Winding returns the winding number of the closed polygon around the XY
// projection of pt. Zero means pt is outside.
func (p *Polygon) Winding(pt r3.Vec) int {
	if !p.Closed {
		return 0
	}
	return p.xy().Winding(d3.ToR2(pt))
}

// Contains returns true if pt lies within the closed polygon as seen from above.
func (p *Polygon) Contains(pt r3.Vec) bool { return p.Winding(pt) != 0 }

// Reverse reverses the direction of travel in place.
func (p *Polygon) Reverse() {
	pts := p.Points
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// Path returns the polygon as a tool path.
func (p *Polygon) Path() cam.Path {
	return cam.Path{Points: append([]r3.Vec(nil), p.Points...), Closed: p.Closed}
}

// Offset returns the polygon with every segment shifted by d to its right,
// joined at the intersections of neighbouring shifted segments.
// Outer polygons grow and holes shrink for positive d.
// cam.ErrDegenerate is returned if the polygon collapses.
func (p *Polygon) Offset(d float64) (Polygon, error) {
	lines := p.Lines()
	if len(lines) == 0 {
		return Polygon{}, cam.ErrDegenerate
	}
	if d == 0 {
		return p.Clone(), nil
	}
	shifted := make([]Line, len(lines))
	for i, ln := range lines {
		off := r3.Scale(d, RightOf(ln.Dir()))
		shifted[i] = NewLine(r3.Add(ln.P1, off), r3.Add(ln.P2, off))
	}
	out, _, err := ExtendShiftedLines(shifted, p.Closed)
	if err != nil {
		return Polygon{}, err
	}
	pts := make([]r3.Vec, 0, len(out)+1)
	for _, ln := range out {
		pts = append(pts, ln.P1)
	}
	if !p.Closed {
		pts = append(pts, out[len(out)-1].P2)
	}
	return NewPolygon(pts, p.Closed), nil
}

// Intersections returns the points where the segments of p cross the
// segments of q. Shared endpoints of adjacent segments of the same polygon
// are not reported when p == q.
func (p *Polygon) Intersections(q *Polygon) []r3.Vec {
	if !d2BoxOf(p).Overlaps(d2BoxOf(q), cam.Epsilon) {
		return nil
	}
	self := p == q
	pl, ql := p.Lines(), q.Lines()
	var hits []r3.Vec
	for i, a := range pl {
		abox := d2.BoxOf(d3.ToR2(a.P1), d3.ToR2(a.P2))
		jstart := 0
		if self {
			jstart = i + 1
		}
		for j := jstart; j < len(ql); j++ {
			b := ql[j]
			if self && (j == i+1 || (p.Closed && i == 0 && j == len(ql)-1)) {
				continue
			}
			if !abox.Overlaps(d2.BoxOf(d3.ToR2(b.P1), d3.ToR2(b.P2)), cam.Epsilon) {
				continue
			}
			x, ok := d2.SegmentIntersection(d3.ToR2(a.P1), d3.ToR2(a.P2), d3.ToR2(b.P1), d3.ToR2(b.P2), cam.Epsilon)
			if ok {
				hits = append(hits, d3.FromR2(x, a.P1.Z))
			}
		}
	}
	return hits
}

func d2BoxOf(p *Polygon) d2.Box {
	return d2.BoxOf(p.xy()...)
}

// RightOf returns the horizontal unit vector pointing to the right of dir
// as seen from above.
func RightOf(dir r3.Vec) r3.Vec {
	h := r3.Vec{X: dir.Y, Y: -dir.X}
	n := math.Hypot(h.X, h.Y)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, h)
}
