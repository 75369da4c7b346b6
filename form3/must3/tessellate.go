package must3

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/cam/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tessellate meshes s with uniform marching cubes of the given
// resolution along the longest side of its bounding box.
func Tessellate(s sdf.SDF3, cells int) []geom.Triangle {
	if cells < 2 {
		panic("cells < 2")
	}
	tris := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	out := make([]geom.Triangle, 0, len(tris))
	for _, t := range tris {
		// sdfx winds counter-clockwise from outside.
		tri := geom.NewTriangle(fromV3(t[0]), fromV3(t[2]), fromV3(t[1]))
		if tri.Degenerate() {
			continue
		}
		out = append(out, tri)
	}
	return out
}

// Sphere returns a tessellated sphere centered at the origin.
func Sphere(radius float64, cells int) []geom.Triangle {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(err)
	}
	return Tessellate(s, cells)
}

// Cylinder returns a tessellated cylinder along Z centered at the origin
// with edges rounded by round.
func Cylinder(height, radius, round float64, cells int) []geom.Triangle {
	s, err := sdf.Cylinder3D(height, radius, round)
	if err != nil {
		panic(err)
	}
	return Tessellate(s, cells)
}

// RoundedBox returns a tessellated box centered at the origin with
// corners rounded by round.
func RoundedBox(size r3.Vec, round float64, cells int) []geom.Triangle {
	s, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}, round)
	if err != nil {
		panic(err)
	}
	return Tessellate(s, cells)
}

func fromV3(v v3.Vec) r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
