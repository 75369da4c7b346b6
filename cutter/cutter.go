// Package cutter models milling tool shapes and their first contact
// with model triangles.
//
// A cutter's location is its tip: the lowest point on the tool axis
// without material allowance. The axis is always vertical.
package cutter

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soypat/cam"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultHeight is the shaft height used when a cutter is created with a
// non-positive height.
const DefaultHeight = 10.0

var (
	axisZ = r3.Vec{Z: 1}
	down  = r3.Vec{Z: -1}
)

// Cutter is a tool shape that can be tested for contact against triangles.
//
// Intersect and Drop never modify the cutter so a single instance may be
// shared by concurrent readers. MoveTo and SetRequiredDistance are not
// safe for concurrent use: Clone the cutter per goroutine instead.
type Cutter interface {
	// Intersect returns the first contact of the cutter placed at start and
	// moving along unit direction d with triangle t.
	Intersect(d r3.Vec, t *geom.Triangle, start r3.Vec) Contact
	// Drop returns where the cutter with its tip over start comes to rest
	// when lowered onto t. Triangles out of reach are rejected cheaply.
	Drop(t *geom.Triangle, start r3.Vec) (cl r3.Vec, ok bool)

	// Radius returns the nominal radius of the tool.
	Radius() float64
	// DistanceRadius returns the radius including material allowance.
	DistanceRadius() float64
	Height() float64
	RequiredDistance() float64
	// SetRequiredDistance sets the material allowance kept between the
	// tool and the model.
	SetRequiredDistance(d float64)

	Location() r3.Vec
	MoveTo(loc r3.Vec)
	// Box returns the bounding box of the cutter at its location.
	Box() d3.Box
	// Clone returns an independent copy of the cutter.
	Clone() Cutter
	fmt.Stringer
}

// Contact describes the first contact of a moving cutter.
type Contact struct {
	// CL is the cutter location at contact.
	CL r3.Vec
	// CP is the touched point of the triangle.
	CP r3.Vec
	// Dist is the travel distance until contact. It is cam.Infinite
	// when there is no contact and may be negative when the cutter
	// overlaps the triangle at its start.
	Dist float64
}

// OK returns true if the contact exists.
func (c Contact) OK() bool { return !math.IsInf(c.Dist, 1) }

func noContact() Contact { return Contact{Dist: cam.Infinite} }

// consider replaces the contact if t is strictly closer. Earlier
// candidates win ties.
func (c *Contact) consider(start, d, cp r3.Vec, t float64) {
	if t < c.Dist {
		c.Dist = t
		c.CP = cp
		c.CL = r3.Add(start, r3.Scale(t, d))
	}
}

// Kind enumerates the cutter shapes.
type Kind int

const (
	KindCylindrical Kind = iota
	KindSpherical
	KindToroidal
)

func (k Kind) String() string {
	switch k {
	case KindCylindrical:
		return "cylindrical"
	case KindSpherical:
		return "spherical"
	case KindToroidal:
		return "toroidal"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the Kind named by s. Common tool names such as
// "flat" and "ball" are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "cylindrical", "cylinder", "flat", "endmill":
		return KindCylindrical, nil
	case "spherical", "sphere", "ball", "ballnose":
		return KindSpherical, nil
	case "toroidal", "torus", "bull", "bullnose":
		return KindToroidal, nil
	}
	return 0, fmt.Errorf("unknown cutter kind %q", s)
}

var errRadius = errors.New("cutter radius must be positive")

// New returns a cutter of kind k. minorRadius is only used by toroidal
// cutters and must be in (0, radius].
func New(k Kind, radius, minorRadius, height float64) (Cutter, error) {
	if !(radius > 0) {
		return nil, errRadius
	}
	switch k {
	case KindCylindrical:
		return NewCylindrical(radius, height), nil
	case KindSpherical:
		return NewSpherical(radius, height), nil
	case KindToroidal:
		if !(minorRadius > 0) || minorRadius > radius {
			return nil, fmt.Errorf("minor radius %g must be in (0, %g]", minorRadius, radius)
		}
		return NewToroidal(radius, minorRadius, height), nil
	}
	return nil, fmt.Errorf("unsupported cutter kind %v", k)
}

// shaft holds the state common to all shapes.
type shaft struct {
	radius   float64
	height   float64
	required float64
	loc      r3.Vec
}

func newShaft(radius, height float64) shaft {
	if height <= 0 {
		height = DefaultHeight
	}
	return shaft{radius: radius, height: height}
}

func (s *shaft) Radius() float64           { return s.radius }
func (s *shaft) DistanceRadius() float64   { return s.radius + s.required }
func (s *shaft) Height() float64           { return s.height }
func (s *shaft) RequiredDistance() float64 { return s.required }
func (s *shaft) Location() r3.Vec          { return s.loc }
func (s *shaft) MoveTo(loc r3.Vec)         { s.loc = loc }

// Box returns the bounding box of the cutter at its location. All shapes
// grow downwards by the required distance.
func (s *shaft) Box() d3.Box {
	return s.boxAt(s.loc)
}

func (s *shaft) boxAt(loc r3.Vec) d3.Box {
	r := s.DistanceRadius()
	return d3.Box{
		Min: r3.Vec{X: loc.X - r, Y: loc.Y - r, Z: loc.Z - s.required},
		Max: r3.Vec{X: loc.X + r, Y: loc.Y + r, Z: loc.Z + s.height},
	}
}

// reaches is the O(1) reject used before dropping onto t: the horizontal
// footprint of the cutter must overlap the triangle's bounding box and
// its circumscribed circle.
func (s *shaft) reaches(t *geom.Triangle, start r3.Vec) bool {
	r := s.DistanceRadius()
	if t.Box.Max.X < start.X-r-cam.Epsilon || t.Box.Min.X > start.X+r+cam.Epsilon ||
		t.Box.Max.Y < start.Y-r-cam.Epsilon || t.Box.Min.Y > start.Y+r+cam.Epsilon {
		return false
	}
	if t.Degenerate() {
		return false
	}
	dx, dy := start.X-t.Center.X, start.Y-t.Center.Y
	reach := r + t.Radius + cam.Epsilon
	return dx*dx+dy*dy <= reach*reach
}

// drop lowers c from start onto t.
func drop(c Cutter, s *shaft, t *geom.Triangle, start r3.Vec) (r3.Vec, bool) {
	if !s.reaches(t, start) {
		return r3.Vec{}, false
	}
	ct := c.Intersect(down, t, start)
	if !ct.OK() {
		return r3.Vec{}, false
	}
	return ct.CL, true
}
