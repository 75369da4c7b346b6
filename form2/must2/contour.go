// Package must2 builds planar contours. Functions panic on invalid
// arguments; package form2 wraps them returning errors.
package must2

import (
	"math"

	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/internal/d2"
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const tolerance = 1e-9

// Polygon returns a closed outline through vertex at height z. The
// outline is turned counter-clockwise so it bounds material. A repeated
// first vertex at the end is removed.
func Polygon(vertex []r2.Vec, z float64) geom.Polygon {
	n := len(vertex)
	if n > 0 && d2.EqualWithin(vertex[0], vertex[n-1], tolerance) {
		n--
	}
	if n < 3 {
		panic("number of vertices < 3")
	}
	set := d2.Set(vertex[:n])
	area := set.SignedArea()
	if math.Abs(area) < tolerance {
		panic("polygon has no area")
	}
	pts := make([]r3.Vec, n)
	for i, v := range set {
		pts[i] = d3.FromR2(v, z)
	}
	p := geom.NewPolygon(pts, true)
	if area < 0 {
		p.Reverse()
	}
	return p
}

// Hole returns the polygon through vertex as a hole: clockwise, so the
// material lies outside.
func Hole(vertex []r2.Vec, z float64) geom.Polygon {
	p := Polygon(vertex, z)
	p.Reverse()
	return p
}

// Rectangle returns an axis aligned rectangle outline.
func Rectangle(min, max r2.Vec, z float64) geom.Polygon {
	if max.X <= min.X || max.Y <= min.Y {
		panic("empty rectangle")
	}
	return Polygon([]r2.Vec{
		min,
		{X: max.X, Y: min.Y},
		max,
		{X: min.X, Y: max.Y},
	}, z)
}

// Nagon returns the vertices of a regular n sided polygon of given
// circumradius centered at the origin, starting on the +X axis.
func Nagon(n int, radius float64) d2.Set {
	if n < 3 {
		panic("n < 3")
	}
	if radius <= 0 {
		panic("radius <= 0")
	}
	v := make(d2.Set, n)
	for i := range v {
		a := 2 * math.Pi * float64(i) / float64(n)
		v[i] = r2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return v
}

// Circle returns a regular polygon approximating a circle around center.
func Circle(center r2.Vec, radius float64, segments int, z float64) geom.Polygon {
	v := Nagon(segments, radius)
	for i := range v {
		v[i] = r2.Add(v[i], center)
	}
	return Polygon(v, z)
}

// Open returns an open chain through vertex, for engraving lines.
func Open(vertex []r2.Vec, z float64) geom.Polygon {
	if len(vertex) < 2 {
		panic("number of vertices < 2")
	}
	pts := make([]r3.Vec, len(vertex))
	for i, v := range vertex {
		pts[i] = d3.FromR2(v, z)
	}
	p := geom.NewPolygon(pts, false)
	if len(p.Points) < 2 {
		panic("all vertices coincide")
	}
	return p
}
