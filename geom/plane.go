package geom

import (
	"math"

	"github.com/soypat/cam"
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is the infinite plane through P with unit normal N.
type Plane struct {
	P, N r3.Vec
}

// NewPlane returns the plane through p with normal n. n is normalized.
func NewPlane(p, n r3.Vec) Plane {
	return Plane{P: p, N: d3.Unit(n)}
}

// HorizontalPlane returns the plane z=height with upwards normal.
func HorizontalPlane(height float64) Plane {
	return Plane{P: r3.Vec{Z: height}, N: r3.Vec{Z: 1}}
}

// Distance returns the signed distance from p to the plane, positive on the side N points to.
func (pl Plane) Distance(p r3.Vec) float64 {
	return r3.Dot(r3.Sub(p, pl.P), pl.N)
}

// IntersectPoint returns the point where the ray from p along unit direction
// dir reaches the plane and the signed distance travelled. The distance is
// cam.Infinite if the ray is parallel to the plane.
func (pl Plane) IntersectPoint(dir, p r3.Vec) (r3.Vec, float64) {
	den := r3.Dot(pl.N, dir)
	if math.Abs(den) < cam.Epsilon {
		return r3.Vec{}, cam.Infinite
	}
	t := r3.Dot(pl.N, r3.Sub(pl.P, p)) / den
	return r3.Add(p, r3.Scale(t, dir)), t
}
