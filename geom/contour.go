package geom

import (
	"github.com/soypat/cam"
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ContourModel is a set of polygons lying on one cutting plane.
// Lines appended one by one are merged into chains: a line extends an open
// polygon when one of its endpoints matches an end of that polygon, and
// open polygons whose ends meet are spliced together. A polygon is closed
// exactly when its last point reaches its first and accepts no more lines.
type ContourModel struct {
	polys []Polygon
}

// NewContourModel returns a model holding copies of polys.
func NewContourModel(polys ...Polygon) *ContourModel {
	m := &ContourModel{}
	for i := range polys {
		m.AppendPolygon(polys[i])
	}
	return m
}

// Polygons returns the polygons of the model. The slice must not be modified.
func (m *ContourModel) Polygons() []Polygon { return m.polys }

// Len returns the amount of polygons.
func (m *ContourModel) Len() int { return len(m.polys) }

// AppendPolygon adds a copy of p to the model without merging.
func (m *ContourModel) AppendPolygon(p Polygon) {
	if len(p.Points) == 0 {
		return
	}
	m.polys = append(m.polys, p.Clone())
}

// Bounds returns the bounding box of all polygons.
func (m *ContourModel) Bounds() d3.Box {
	b := d3.EmptyBox()
	for i := range m.polys {
		b = b.Extend(m.polys[i].Box())
	}
	return b
}

// AppendLine adds the directed line ln to the model. It extends an open
// polygon only head to tail, so every chain keeps the direction of its
// lines. Degenerate lines are ignored.
func (m *ContourModel) AppendLine(ln Line) { m.appendLine(ln, true) }

// AppendSegment is like AppendLine but also joins lines whose direction
// is opposite to the chain they meet, reversing them as needed.
func (m *ContourModel) AppendSegment(ln Line) { m.appendLine(ln, false) }

func (m *ContourModel) appendLine(ln Line, directed bool) {
	if ln.Degenerate() {
		return
	}
	for i := range m.polys {
		p := &m.polys[i]
		if p.Closed {
			continue
		}
		switch {
		case near(p.Last(), ln.P1):
			p.Points = append(p.Points, ln.P2)
		case near(p.First(), ln.P2):
			p.Points = append([]r3.Vec{ln.P1}, p.Points...)
		case !directed && near(p.Last(), ln.P2):
			p.Points = append(p.Points, ln.P1)
		case !directed && near(p.First(), ln.P1):
			p.Points = append([]r3.Vec{ln.P2}, p.Points...)
		default:
			continue
		}
		m.settle(i, directed)
		return
	}
	m.polys = append(m.polys, Polygon{Points: []r3.Vec{ln.P1, ln.P2}})
}

// settle closes polygon i if its ends meet, otherwise splices it
// with another open polygon sharing an end.
func (m *ContourModel) settle(i int, directed bool) {
	p := &m.polys[i]
	if len(p.Points) > 2 && near(p.First(), p.Last()) {
		p.Points = p.Points[:len(p.Points)-1]
		p.Closed = len(p.Points) >= 3
		return
	}
	for j := range m.polys {
		q := &m.polys[j]
		if j == i || q.Closed {
			continue
		}
		var merged []r3.Vec
		switch {
		case near(p.Last(), q.First()):
			merged = append(p.Points, q.Points[1:]...)
		case near(q.Last(), p.First()):
			merged = append(q.Points, p.Points[1:]...)
		case !directed && near(p.Last(), q.Last()):
			rq := q.Clone()
			rq.Reverse()
			merged = append(p.Points, rq.Points[1:]...)
		case !directed && near(p.First(), q.First()):
			rp := p.Clone()
			rp.Reverse()
			merged = append(rp.Points, q.Points[1:]...)
		default:
			continue
		}
		p.Points = merged
		m.polys = append(m.polys[:j], m.polys[j+1:]...)
		if j < i {
			i--
		}
		m.settle(i, directed)
		return
	}
}

func near(a, b r3.Vec) bool { return cam.EqualVec(a, b, cam.Epsilon) }

// Intersection is a crossing between two segments of a ContourModel.
type Intersection struct {
	// A and B are the indices of the crossing polygons. A == B for a
	// polygon crossing itself.
	A, B  int
	Point r3.Vec
}

// SelfIntersections returns all crossings between segments of the model's
// polygons. Pairs of polygons whose bounding boxes do not overlap are
// skipped without inspecting their segments.
func (m *ContourModel) SelfIntersections() []Intersection {
	var out []Intersection
	for i := range m.polys {
		for j := i; j < len(m.polys); j++ {
			for _, pt := range m.polys[i].Intersections(&m.polys[j]) {
				out = append(out, Intersection{A: i, B: j, Point: pt})
			}
		}
	}
	return out
}

// Offset returns a model with every polygon offset by d. Polygons that
// collapse are left out and counted in dropped.
func (m *ContourModel) Offset(d float64) (out *ContourModel, dropped int) {
	out = &ContourModel{}
	for i := range m.polys {
		p, err := m.polys[i].Offset(d)
		if err != nil {
			dropped++
			continue
		}
		out.polys = append(out.polys, p)
	}
	return out, dropped
}
