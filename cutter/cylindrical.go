package cutter

import (
	"fmt"
	"math"

	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/intersect"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cylindrical is a flat end mill: a disc at the tip and a straight shaft.
// Material allowance grows the radius and lowers the disc.
type Cylindrical struct {
	shaft
}

var _ Cutter = (*Cylindrical)(nil)

func NewCylindrical(radius, height float64) *Cylindrical {
	return &Cylindrical{shaft: newShaft(radius, height)}
}

func (c *Cylindrical) SetRequiredDistance(d float64) { c.required = d }

func (c *Cylindrical) Clone() Cutter {
	cc := *c
	return &cc
}

func (c *Cylindrical) String() string {
	return fmt.Sprintf("Cylindrical(r=%g, h=%g)", c.radius, c.height)
}

func (c *Cylindrical) Drop(t *geom.Triangle, start r3.Vec) (r3.Vec, bool) {
	return drop(c, &c.shaft, t, start)
}

func (c *Cylindrical) Intersect(d r3.Vec, t *geom.Triangle, start r3.Vec) Contact {
	best := noContact()
	r := c.DistanceRadius()
	disc := r3.Vec{X: start.X, Y: start.Y, Z: start.Z - c.required}

	if _, cp, dist := intersect.CirclePlane(disc, axisZ, r, d, plane(t)); !math.IsInf(dist, 1) && t.PointInside(cp) {
		best.consider(start, d, cp, dist)
	}
	for _, e := range t.Edges() {
		if e.Degenerate() {
			continue
		}
		if _, cp, dist := intersect.CircleLine(disc, axisZ, r, d, e.P1, e.Dir()); !math.IsInf(dist, 1) && e.Spans(cp) {
			best.consider(start, d, cp, dist)
		}
	}
	for _, p := range t.Vertices() {
		if _, cp, dist := intersect.CirclePoint(disc, axisZ, r, d, p); !math.IsInf(dist, 1) {
			best.consider(start, d, cp, dist)
		}
	}
	sideContact(&best, t, d, start, r, disc.Z, start.Z+c.height)
	return best
}
