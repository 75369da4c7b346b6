// Package form3 provides triangle meshes of simple solids for testing
// and demonstrating toolpath generation.
package form3

import (
	"fmt"
	"runtime/debug"

	"github.com/soypat/cam/form3/must3"
	"github.com/soypat/cam/geom"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// mesh calls fn and turns a panic into an error.
func mesh(fn func() []geom.Triangle) (tris []geom.Triangle, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return fn(), err
}

// FlatSquare returns a horizontal upward facing rectangle at height z.
func FlatSquare(min, max r2.Vec, z float64) ([]geom.Triangle, error) {
	return mesh(func() []geom.Triangle { return must3.FlatSquare(min, max, z) })
}

// Wall returns a vertical rectangle between p1 and p2 facing the right of p1->p2.
func Wall(p1, p2 r2.Vec, zlo, zhi float64) ([]geom.Triangle, error) {
	return mesh(func() []geom.Triangle { return must3.Wall(p1, p2, zlo, zhi) })
}

// Pyramid returns a square based pyramid with its base at z=0.
func Pyramid(half, height float64, closed bool) ([]geom.Triangle, error) {
	return mesh(func() []geom.Triangle { return must3.Pyramid(half, height, closed) })
}

// Box returns a closed axis aligned box.
func Box(min, max r3.Vec) ([]geom.Triangle, error) {
	return mesh(func() []geom.Triangle { return must3.Box(min, max) })
}

// Hemisphere returns the upper half of a sphere centered at the origin.
func Hemisphere(radius float64, segments int) ([]geom.Triangle, error) {
	return mesh(func() []geom.Triangle { return must3.Hemisphere(radius, segments) })
}

// Sphere returns a marching cubes sphere.
func Sphere(radius float64, cells int) ([]geom.Triangle, error) {
	return mesh(func() []geom.Triangle { return must3.Sphere(radius, cells) })
}

// Cylinder returns a marching cubes cylinder along Z (rounded edges with round > 0).
func Cylinder(height, radius, round float64, cells int) ([]geom.Triangle, error) {
	return mesh(func() []geom.Triangle { return must3.Cylinder(height, radius, round, cells) })
}

// RoundedBox returns a marching cubes box (rounded corners with round > 0).
func RoundedBox(size r3.Vec, round float64, cells int) ([]geom.Triangle, error) {
	return mesh(func() []geom.Triangle { return must3.RoundedBox(size, round, cells) })
}
