// Package geom implements the geometric primitives the toolpath generators
// operate on: lines, planes, triangles, polygons and the models built
// from them.
package geom

import (
	"math"

	"github.com/soypat/cam"
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Line is a directed segment from P1 to P2. Its direction and length are
// cached on construction so Line should be created with NewLine.
// A zero length Line is degenerate: it has no direction.
type Line struct {
	P1, P2 r3.Vec
	dir    r3.Vec
	length float64
}

// NewLine returns the segment from p1 to p2.
func NewLine(p1, p2 r3.Vec) Line {
	v := r3.Sub(p2, p1)
	l := r3.Norm(v)
	var dir r3.Vec
	if l > 0 {
		dir = r3.Scale(1/l, v)
	}
	return Line{P1: p1, P2: p2, dir: dir, length: l}
}

// Dir returns the unit direction of the line or the zero vector for
// a degenerate line.
func (l Line) Dir() r3.Vec { return l.dir }

// Len returns the length of the line. It is never negative.
func (l Line) Len() float64 { return l.length }

// Vector returns P2-P1.
func (l Line) Vector() r3.Vec { return r3.Sub(l.P2, l.P1) }

// Degenerate returns true if the line is shorter than cam.Epsilon.
func (l Line) Degenerate() bool { return l.length < cam.Epsilon }

// Reverse returns the line from P2 to P1.
func (l Line) Reverse() Line {
	return Line{P1: l.P2, P2: l.P1, dir: r3.Scale(-1, l.dir), length: l.length}
}

// Point returns the point at distance d from P1 along the line.
func (l Line) Point(d float64) r3.Vec {
	return r3.Add(l.P1, r3.Scale(d, l.dir))
}

// Box returns the bounding box of the segment.
func (l Line) Box() d3.Box {
	return d3.BoxOf(l.P1, l.P2)
}

// Project returns the signed distance from P1 of the projection of p
// onto the infinite line.
func (l Line) Project(p r3.Vec) float64 {
	return r3.Dot(r3.Sub(p, l.P1), l.dir)
}

// ClosestPoint returns the point of the segment nearest to p.
func (l Line) ClosestPoint(p r3.Vec) r3.Vec {
	d := math.Max(0, math.Min(l.length, l.Project(p)))
	return l.Point(d)
}

// DistanceTo returns the distance from p to the segment.
func (l Line) DistanceTo(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, l.ClosestPoint(p)))
}

// Contains returns true if p lies on the segment within cam.Epsilon.
func (l Line) Contains(p r3.Vec) bool {
	if l.Degenerate() {
		return cam.EqualVec(p, l.P1, cam.Epsilon)
	}
	return l.DistanceTo(p) < cam.Epsilon
}

// Spans returns true if the projection of p onto the line falls between
// the endpoints, within cam.Epsilon. The distance of p to the line is not checked.
func (l Line) Spans(p r3.Vec) bool {
	d := l.Project(p)
	return d >= -cam.Epsilon && d <= l.length+cam.Epsilon
}
