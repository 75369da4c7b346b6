package geom

import (
	"math"

	"github.com/soypat/cam"
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a mesh face with vertices ordered clockwise as seen from
// outside the solid. Derived data is computed by NewTriangle and must be
// refreshed with Update after mutating the vertices.
type Triangle struct {
	P1, P2, P3 r3.Vec
	// N is the outward unit normal.
	N r3.Vec
	// Edges P1-P2, P2-P3 and P3-P1.
	E1, E2, E3 Line
	Box        d3.Box
	// Center and Radius describe the circumcircle, used as a bounding
	// sphere for cheap rejection tests.
	Center         r3.Vec
	Radius, Radius2 float64
	// Middle is the centroid.
	Middle r3.Vec

	fixedNormal bool
	degenerate  bool
}

// NewTriangle creates a triangle with its normal derived from the vertex order.
func NewTriangle(p1, p2, p3 r3.Vec) Triangle {
	t := Triangle{P1: p1, P2: p2, P3: p3}
	t.Update()
	return t
}

// NewTriangleNormal creates a triangle with a supplied outward normal,
// as found in mesh files.
func NewTriangleNormal(p1, p2, p3, n r3.Vec) Triangle {
	t := Triangle{P1: p1, P2: p2, P3: p3, N: d3.Unit(n), fixedNormal: true}
	if t.N == (r3.Vec{}) {
		t.fixedNormal = false
	}
	t.Update()
	return t
}

// Update recomputes all derived data from the vertices.
func (t *Triangle) Update() {
	t.E1 = NewLine(t.P1, t.P2)
	t.E2 = NewLine(t.P2, t.P3)
	t.E3 = NewLine(t.P3, t.P1)
	t.Box = d3.BoxOf(t.P1, t.P2, t.P3)
	t.Middle = r3.Scale(1./3, r3.Add(t.P1, r3.Add(t.P2, t.P3)))

	a := r3.Sub(t.P1, t.P3)
	b := r3.Sub(t.P2, t.P3)
	axb := r3.Cross(a, b)
	axb2 := r3.Norm2(axb)
	la, lb := r3.Norm(a), r3.Norm(b)
	// Collinear vertices have no circumcircle nor a normal.
	t.degenerate = axb2 <= (cam.Epsilon*la*lb)*(cam.Epsilon*la*lb) || axb2 == 0
	if t.degenerate {
		t.Center = t.Middle
		t.Radius = cam.Infinite
		t.Radius2 = cam.Infinite
		if !t.fixedNormal {
			t.N = r3.Vec{}
		}
		return
	}
	num := r3.Cross(r3.Sub(r3.Scale(r3.Norm2(a), b), r3.Scale(r3.Norm2(b), a)), axb)
	t.Center = r3.Add(t.P3, r3.Scale(1/(2*axb2), num))
	t.Radius2 = r3.Norm2(r3.Sub(t.P1, t.Center))
	t.Radius = math.Sqrt(t.Radius2)
	if !t.fixedNormal {
		t.N = r3.Unit(r3.Cross(r3.Sub(t.P3, t.P1), r3.Sub(t.P2, t.P1)))
	}
}

// Degenerate returns true for triangles with collinear vertices. They
// have no circumcircle and should be ignored by collision code.
func (t *Triangle) Degenerate() bool { return t.degenerate }

// Vertices returns the three vertices in order.
func (t *Triangle) Vertices() [3]r3.Vec { return [3]r3.Vec{t.P1, t.P2, t.P3} }

// Edges returns the three edges in order.
func (t *Triangle) Edges() [3]Line { return [3]Line{t.E1, t.E2, t.E3} }

// Plane returns the supporting plane of the triangle.
func (t *Triangle) Plane() Plane { return Plane{P: t.P1, N: t.N} }

// MinZ returns the lowest vertex height.
func (t *Triangle) MinZ() float64 { return t.Box.Min.Z }

// MaxZ returns the highest vertex height.
func (t *Triangle) MaxZ() float64 { return t.Box.Max.Z }

// Area returns the area of the triangle.
func (t *Triangle) Area() float64 {
	return r3.Norm(r3.Cross(r3.Sub(t.P2, t.P1), r3.Sub(t.P3, t.P1))) / 2
}

// PointInside returns true if p, assumed to lie on the triangle's
// plane, is within the triangle or on its border within cam.Epsilon.
func (t *Triangle) PointInside(p r3.Vec) bool {
	v0 := r3.Sub(t.P3, t.P1)
	v1 := r3.Sub(t.P2, t.P1)
	v2 := r3.Sub(p, t.P1)
	dot00 := r3.Dot(v0, v0)
	dot01 := r3.Dot(v0, v1)
	dot02 := r3.Dot(v0, v2)
	dot11 := r3.Dot(v1, v1)
	dot12 := r3.Dot(v1, v2)
	den := dot00*dot11 - dot01*dot01
	if den == 0 {
		return false
	}
	u := (dot11*dot02 - dot01*dot12) / den
	v := (dot00*dot12 - dot01*dot02) / den
	return u > -cam.Epsilon && v > -cam.Epsilon && u+v < 1+cam.Epsilon
}

// transform applies tr to the vertices. Mirroring transforms swap
// two vertices to keep the winding clockwise from outside.
func (t *Triangle) transform(tr d3.Transform, mirror bool) {
	t.P1, t.P2, t.P3 = tr.Transform(t.P1), tr.Transform(t.P2), tr.Transform(t.P3)
	if mirror {
		t.P2, t.P3 = t.P3, t.P2
	}
	t.fixedNormal = false
	t.Update()
}

// Waterline returns the intersection of the triangle with the horizontal
// plane at height z. The returned line is oriented so that the solid lies
// to its left and the outside to its right when viewed from above.
// ok is false when the plane misses the triangle, only touches a vertex,
// or the triangle is (nearly) horizontal.
// An edge lying in the plane is returned whichever side the third vertex
// is on, so a wall standing on the plane yields its foot. Two walls
// meeting at such an edge both return it.
func (t *Triangle) Waterline(z float64) (ln Line, ok bool) {
	if t.degenerate || t.Box.Min.Z > z+cam.Epsilon || t.Box.Max.Z < z-cam.Epsilon {
		return Line{}, false
	}
	nh := r3.Vec{X: t.N.X, Y: t.N.Y}
	if r3.Norm(nh) < cam.Epsilon {
		return Line{}, false
	}
	verts := t.Vertices()
	var on, above, below []r3.Vec
	for _, v := range verts {
		switch {
		case math.Abs(v.Z-z) < cam.Epsilon:
			on = append(on, r3.Vec{X: v.X, Y: v.Y, Z: z})
		case v.Z > z:
			above = append(above, v)
		default:
			below = append(below, v)
		}
	}
	var a, b r3.Vec
	switch {
	case len(on) == 3:
		return Line{}, false
	case len(on) == 2:
		a, b = on[0], on[1]
	case len(on) == 1:
		if len(above) != 1 || len(below) != 1 {
			// Vertex touch.
			return Line{}, false
		}
		a = on[0]
		b = crossZ(above[0], below[0], z)
	default:
		if len(above) == 0 || len(below) == 0 {
			return Line{}, false
		}
		var lone r3.Vec
		var pair []r3.Vec
		if len(above) == 1 {
			lone, pair = above[0], below
		} else {
			lone, pair = below[0], above
		}
		a = crossZ(lone, pair[0], z)
		b = crossZ(lone, pair[1], z)
	}
	ln = NewLine(a, b)
	if ln.Degenerate() {
		return Line{}, false
	}
	// Direction Z×N keeps the outside on the right.
	want := r3.Cross(r3.Vec{Z: 1}, nh)
	if r3.Dot(ln.Dir(), want) < 0 {
		ln = ln.Reverse()
	}
	return ln, true
}

// crossZ returns the point where segment ab crosses height z.
func crossZ(a, b r3.Vec, z float64) r3.Vec {
	t := (z - a.Z) / (b.Z - a.Z)
	p := d3.Lerp(a, b, t)
	p.Z = z
	return p
}
