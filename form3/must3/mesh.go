// Package must3 builds triangle meshes of simple solids. Functions panic
// on invalid arguments; package form3 wraps them returning errors.
package must3

import (
	"math"

	"github.com/soypat/cam/geom"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// quad returns the two triangles of the planar quadrilateral abcd, whose
// vertices run counter-clockwise as seen from outside.
func quad(a, b, c, d r3.Vec) []geom.Triangle {
	return []geom.Triangle{
		geom.NewTriangle(a, c, b),
		geom.NewTriangle(a, d, c),
	}
}

// FlatSquare returns a horizontal rectangle at height z facing up.
func FlatSquare(min, max r2.Vec, z float64) []geom.Triangle {
	if max.X <= min.X || max.Y <= min.Y {
		panic("empty rectangle")
	}
	return quad(
		r3.Vec{X: min.X, Y: min.Y, Z: z},
		r3.Vec{X: max.X, Y: min.Y, Z: z},
		r3.Vec{X: max.X, Y: max.Y, Z: z},
		r3.Vec{X: min.X, Y: max.Y, Z: z},
	)
}

// Wall returns a vertical rectangle from p1 to p2 spanning heights
// [zlo, zhi]. It faces the right of the direction p1 to p2.
func Wall(p1, p2 r2.Vec, zlo, zhi float64) []geom.Triangle {
	if p1 == p2 {
		panic("zero length wall")
	}
	if zhi <= zlo {
		panic("zhi <= zlo")
	}
	return quad(
		r3.Vec{X: p1.X, Y: p1.Y, Z: zlo},
		r3.Vec{X: p2.X, Y: p2.Y, Z: zlo},
		r3.Vec{X: p2.X, Y: p2.Y, Z: zhi},
		r3.Vec{X: p1.X, Y: p1.Y, Z: zhi},
	)
}

// Pyramid returns the four faces of a square based pyramid centered on
// the Z axis with its base at z=0. The base itself is included when
// closed is true.
func Pyramid(half, height float64, closed bool) []geom.Triangle {
	if half <= 0 || height <= 0 {
		panic("pyramid size <= 0")
	}
	apex := r3.Vec{Z: height}
	c := [4]r3.Vec{
		{X: half, Y: half}, {X: -half, Y: half}, {X: -half, Y: -half}, {X: half, Y: -half},
	}
	tris := make([]geom.Triangle, 0, 6)
	for i := range c {
		tris = append(tris, geom.NewTriangle(c[i], c[(i+3)%4], apex))
	}
	if closed {
		tris = append(tris, quad(c[3], c[2], c[1], c[0])...)
	}
	return tris
}

// Box returns the 12 triangles of the closed axis aligned box [min, max].
func Box(min, max r3.Vec) []geom.Triangle {
	if max.X <= min.X || max.Y <= min.Y || max.Z <= min.Z {
		panic("empty box")
	}
	x0, y0, z0 := min.X, min.Y, min.Z
	x1, y1, z1 := max.X, max.Y, max.Z
	v := func(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }
	var tris []geom.Triangle
	tris = append(tris, quad(v(x0, y0, z1), v(x1, y0, z1), v(x1, y1, z1), v(x0, y1, z1))...) // top
	tris = append(tris, quad(v(x0, y0, z0), v(x0, y1, z0), v(x1, y1, z0), v(x1, y0, z0))...) // bottom
	tris = append(tris, quad(v(x1, y0, z0), v(x1, y1, z0), v(x1, y1, z1), v(x1, y0, z1))...)
	tris = append(tris, quad(v(x0, y0, z0), v(x0, y0, z1), v(x0, y1, z1), v(x0, y1, z0))...)
	tris = append(tris, quad(v(x0, y1, z0), v(x0, y1, z1), v(x1, y1, z1), v(x1, y1, z0))...)
	tris = append(tris, quad(v(x0, y0, z0), v(x1, y0, z0), v(x1, y0, z1), v(x0, y0, z1))...)
	return tris
}

// Hemisphere returns a UV tessellated upper half sphere of the given
// radius centered at the origin, without its flat base.
func Hemisphere(radius float64, segments int) []geom.Triangle {
	if radius <= 0 {
		panic("radius <= 0")
	}
	if segments < 3 {
		panic("segments < 3")
	}
	rings := segments / 2
	if rings < 2 {
		rings = 2
	}
	pt := func(ring, seg int) r3.Vec {
		// ring 0 is the equator, ring == rings the pole.
		el := float64(ring) / float64(rings) * math.Pi / 2
		az := float64(seg) / float64(segments) * 2 * math.Pi
		return r3.Vec{
			X: radius * math.Cos(el) * math.Cos(az),
			Y: radius * math.Cos(el) * math.Sin(az),
			Z: radius * math.Sin(el),
		}
	}
	var tris []geom.Triangle
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			a, b := pt(ring, seg), pt(ring, seg+1)
			c, d := pt(ring+1, seg+1), pt(ring+1, seg)
			if ring == rings-1 {
				tris = append(tris, geom.NewTriangle(a, c, b))
				continue
			}
			tris = append(tris, quad(a, b, c, d)...)
		}
	}
	return tris
}
