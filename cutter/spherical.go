package cutter

import (
	"fmt"
	"math"

	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/intersect"
	"gonum.org/v1/gonum/spatial/r3"
)

// Spherical is a ball end mill. The ball centre sits one radius above
// the tip; material allowance grows the ball around that centre.
type Spherical struct {
	shaft
}

var _ Cutter = (*Spherical)(nil)

func NewSpherical(radius, height float64) *Spherical {
	return &Spherical{shaft: newShaft(radius, height)}
}

func (s *Spherical) SetRequiredDistance(d float64) { s.required = d }

func (s *Spherical) Clone() Cutter {
	cc := *s
	return &cc
}

func (s *Spherical) String() string {
	return fmt.Sprintf("Spherical(r=%g, h=%g)", s.radius, s.height)
}

// Center returns the centre of the ball at the cutter's location.
func (s *Spherical) Center() r3.Vec {
	return r3.Add(s.loc, r3.Vec{Z: s.radius})
}

func (s *Spherical) Drop(t *geom.Triangle, start r3.Vec) (r3.Vec, bool) {
	return drop(s, &s.shaft, t, start)
}

func (s *Spherical) Intersect(d r3.Vec, t *geom.Triangle, start r3.Vec) Contact {
	best := noContact()
	r := s.DistanceRadius()
	center := r3.Add(start, r3.Vec{Z: s.radius})
	sphereContact(&best, t, d, start, center, r)
	sideContact(&best, t, d, start, r, center.Z, start.Z+s.height)
	return best
}

// sphereContact runs the face, edge and vertex checks of a ball with the
// given centre and radius.
func sphereContact(best *Contact, t *geom.Triangle, d, start, center r3.Vec, r float64) {
	if _, cp, dist := intersect.SpherePlane(center, r, d, plane(t)); !math.IsInf(dist, 1) && t.PointInside(cp) {
		best.consider(start, d, cp, dist)
	}
	for _, e := range t.Edges() {
		if e.Degenerate() {
			continue
		}
		if _, cp, dist := intersect.SphereLine(center, r, d, e.P1, e.Dir()); !math.IsInf(dist, 1) && e.Spans(cp) {
			best.consider(start, d, cp, dist)
		}
	}
	for _, p := range t.Vertices() {
		if _, cp, dist := intersect.SpherePoint(center, r, d, p); !math.IsInf(dist, 1) {
			best.consider(start, d, cp, dist)
		}
	}
}
