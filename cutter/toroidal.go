package cutter

import (
	"fmt"
	"math"

	"github.com/soypat/cam"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/intersect"
	"gonum.org/v1/gonum/spatial/r3"
)

// Toroidal is a bull nose end mill of overall radius Radius with corners
// rounded by the minor radius. The torus centre sits one minor radius
// above the tip and the flat bottom spans the major radius.
// Material allowance grows the minor radius.
type Toroidal struct {
	shaft
	minor float64
}

var _ Cutter = (*Toroidal)(nil)

func NewToroidal(radius, minorRadius, height float64) *Toroidal {
	return &Toroidal{shaft: newShaft(radius, height), minor: minorRadius}
}

func (c *Toroidal) SetRequiredDistance(d float64) { c.required = d }

// MinorRadius returns the corner radius including material allowance.
func (c *Toroidal) MinorRadius() float64 { return c.minor + c.required }

// MajorRadius returns the distance from the axis to the centre of the
// corner rounding.
func (c *Toroidal) MajorRadius() float64 { return c.radius - c.minor }

func (c *Toroidal) Clone() Cutter {
	cc := *c
	return &cc
}

func (c *Toroidal) String() string {
	return fmt.Sprintf("Toroidal(r=%g, minor=%g, h=%g)", c.radius, c.minor, c.height)
}

func (c *Toroidal) Drop(t *geom.Triangle, start r3.Vec) (r3.Vec, bool) {
	return drop(c, &c.shaft, t, start)
}

func (c *Toroidal) Intersect(d r3.Vec, t *geom.Triangle, start r3.Vec) Contact {
	best := noContact()
	major, minor := c.MajorRadius(), c.MinorRadius()
	center := r3.Add(start, r3.Vec{Z: c.minor})
	if major < cam.Epsilon {
		// No flat bottom left: the torus is a ball.
		sphereContact(&best, t, d, start, center, minor)
		sideContact(&best, t, d, start, minor, center.Z, start.Z+c.height)
		return best
	}

	if _, cp, dist := intersect.TorusPlane(center, axisZ, major, minor, d, plane(t)); !math.IsInf(dist, 1) && t.PointInside(cp) {
		best.consider(start, d, cp, dist)
	}
	disc := r3.Vec{X: center.X, Y: center.Y, Z: center.Z - minor}
	for _, e := range t.Edges() {
		if e.Degenerate() {
			continue
		}
		if _, cp, dist := intersect.TorusEdge(center, axisZ, major, minor, d, e.P1, e.P2); !math.IsInf(dist, 1) {
			best.consider(start, d, cp, dist)
		}
		if _, cp, dist := intersect.CircleLine(disc, axisZ, major, d, e.P1, e.Dir()); !math.IsInf(dist, 1) && e.Spans(cp) {
			best.consider(start, d, cp, dist)
		}
	}
	for _, p := range t.Vertices() {
		if _, cp, dist := intersect.TorusPoint(center, axisZ, major, minor, d, p); !math.IsInf(dist, 1) {
			best.consider(start, d, cp, dist)
		}
		if _, cp, dist := intersect.CirclePoint(disc, axisZ, major, d, p); !math.IsInf(dist, 1) {
			best.consider(start, d, cp, dist)
		}
	}
	sideContact(&best, t, d, start, major+minor, center.Z, start.Z+c.height)
	return best
}
