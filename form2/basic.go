// Package form2 provides contour models of simple planar shapes for
// engraving.
package form2

import (
	"fmt"
	"runtime/debug"

	"github.com/soypat/cam/form2/must2"
	"github.com/soypat/cam/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

func contour(fn func() geom.Polygon) (p geom.Polygon, err error) {
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

// Polygon returns a closed counter-clockwise outline through vertex at height z.
func Polygon(vertex []r2.Vec, z float64) (geom.Polygon, error) {
	return contour(func() geom.Polygon { return must2.Polygon(vertex, z) })
}

// Hole returns a closed clockwise outline through vertex at height z.
func Hole(vertex []r2.Vec, z float64) (geom.Polygon, error) {
	return contour(func() geom.Polygon { return must2.Hole(vertex, z) })
}

// Rectangle returns an axis aligned rectangle outline.
func Rectangle(min, max r2.Vec, z float64) (geom.Polygon, error) {
	return contour(func() geom.Polygon { return must2.Rectangle(min, max, z) })
}

// Nagon returns a regular n sided polygon with the given circumradius
// around center.
func Nagon(n int, center r2.Vec, radius, z float64) (geom.Polygon, error) {
	return contour(func() geom.Polygon {
		v := must2.Nagon(n, radius)
		for i := range v {
			v[i] = r2.Add(v[i], center)
		}
		return must2.Polygon(v, z)
	})
}

// Circle returns a polygon of the given amount of segments approximating a circle.
func Circle(center r2.Vec, radius float64, segments int, z float64) (geom.Polygon, error) {
	return contour(func() geom.Polygon { return must2.Circle(center, radius, segments, z) })
}

// Open returns an open chain through vertex at height z.
func Open(vertex []r2.Vec, z float64) (geom.Polygon, error) {
	return contour(func() geom.Polygon { return must2.Open(vertex, z) })
}

// Frame returns a contour model of a rectangle with a rectangular hole
// inset by border.
func Frame(min, max r2.Vec, border, z float64) (*geom.ContourModel, error) {
	outer, err := Rectangle(min, max, z)
	if err != nil {
		return nil, err
	}
	in := r2.Vec{X: border, Y: border}
	inner, err := contour(func() geom.Polygon {
		p := must2.Rectangle(r2.Add(min, in), r2.Sub(max, in), z)
		p.Reverse()
		return p
	})
	if err != nil {
		return nil, err
	}
	return geom.NewContourModel(outer, inner), nil
}
