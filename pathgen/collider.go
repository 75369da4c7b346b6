package pathgen

import (
	"sync"

	"github.com/soypat/cam"
	"github.com/soypat/cam/cutter"
	"github.com/soypat/cam/geom"
)

// Collider is a collision backend answering whether a cutter at its
// current location overlaps the model. It replaces the triangle
// contact math of the drop cutter with a binary search, as used with
// rigid body physics engines.
type Collider interface {
	Collides(c cutter.Cutter) bool
}

// Serialize returns a Collider that forwards to c while holding a lock,
// for backends that are not safe for concurrent use.
func Serialize(c Collider) Collider {
	return &serialCollider{c: c}
}

type serialCollider struct {
	mu sync.Mutex
	c  Collider
}

func (s *serialCollider) Collides(c cutter.Cutter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Collides(c)
}

// ModelCollider is a Collider computed from the triangles of a model.
// A cutter collides when dropping it onto any nearby triangle would
// leave it higher than its location.
type ModelCollider struct {
	Model *geom.Model
}

func (m ModelCollider) Collides(c cutter.Cutter) bool {
	loc := c.Location()
	hit := false
	m.Model.TrianglesIn(columnBox(c, loc.X, loc.Y), func(_ int, t *geom.Triangle) bool {
		cl, ok := c.Drop(t, loc)
		hit = ok && cl.Z > loc.Z+cam.Epsilon
		return !hit
	})
	return hit
}
