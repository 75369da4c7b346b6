package geom

import (
	"sync"

	"github.com/soypat/cam/internal/d3"
	"github.com/soypat/cam/spatial"
)

// Model is a triangle mesh. Triangles are identified by their dense
// index in the model. The spatial index is built lazily on the first
// query after a change; appends are inserted into an existing index,
// transforms force a rebuild.
//
// Reading methods are safe for concurrent use. Mutating methods
// must not run concurrently with anything else.
type Model struct {
	tris []Triangle
	box  d3.Box

	mu    sync.Mutex
	kind  spatial.Kind
	index spatial.Index
	dirty bool
}

// NewModel returns a model containing the non degenerate triangles of tris.
func NewModel(tris ...Triangle) *Model {
	m := &Model{box: d3.EmptyBox()}
	for i := range tris {
		m.Append(tris[i])
	}
	return m
}

// Append adds t to the model and returns its id. Degenerate triangles are
// not added and return -1.
func (m *Model) Append(t Triangle) int {
	if t.Degenerate() {
		return -1
	}
	if len(m.tris) == 0 {
		m.box = d3.EmptyBox()
	}
	id := len(m.tris)
	m.tris = append(m.tris, t)
	m.box = m.box.Extend(t.Box)
	m.mu.Lock()
	if m.index != nil && !m.dirty {
		m.index.Insert(id, t.Box)
	}
	m.mu.Unlock()
	return id
}

// Len returns the amount of triangles in the model.
func (m *Model) Len() int { return len(m.tris) }

// Triangle returns the triangle with the given id.
func (m *Model) Triangle(id int) *Triangle { return &m.tris[id] }

// Triangles returns the triangles of the model. The slice must not be modified.
func (m *Model) Triangles() []Triangle { return m.tris }

// Bounds returns the bounding box of the model. An empty model has an empty box.
func (m *Model) Bounds() d3.Box {
	if len(m.tris) == 0 {
		return d3.EmptyBox()
	}
	return m.box
}

// SetIndexKind selects the spatial index implementation. The index is
// rebuilt on the next query.
func (m *Model) SetIndexKind(k spatial.Kind) {
	m.mu.Lock()
	m.kind = k
	m.dirty = true
	m.mu.Unlock()
}

// Transform applies tr to every triangle in place and invalidates the index.
func (m *Model) Transform(tr d3.Transform) {
	mirror := tr.Det() < 0
	m.box = d3.EmptyBox()
	for i := range m.tris {
		m.tris[i].transform(tr, mirror)
		m.box = m.box.Extend(m.tris[i].Box)
	}
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
}

func (m *Model) spatialIndex() spatial.Index {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == nil || m.dirty {
		boxes := make([]d3.Box, len(m.tris))
		for i := range m.tris {
			boxes[i] = m.tris[i].Box
		}
		m.index = spatial.New(m.kind, boxes)
		m.dirty = false
	}
	return m.index
}

// TrianglesIn calls fn for every triangle whose bounding box overlaps box.
// box may be unbounded along any axis. Iteration stops if fn returns false.
func (m *Model) TrianglesIn(box d3.Box, fn func(id int, t *Triangle) bool) {
	if len(m.tris) == 0 {
		return
	}
	m.spatialIndex().Query(box, func(id int) bool {
		return fn(id, &m.tris[id])
	})
}

// Merge appends all triangles of other to m.
func (m *Model) Merge(other *Model) {
	for i := range other.tris {
		m.Append(other.tris[i])
	}
}
