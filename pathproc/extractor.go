package pathproc

import (
	"errors"
	"math"
	"sort"

	"github.com/soypat/cam"
	"github.com/soypat/cam/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Policy selects how the extractor treats regions that merge or divide
// from one scanline to the next.
type Policy int

const (
	// Contour follows region boundaries through joins and splits so every
	// connected boundary becomes one loop.
	Contour Policy = iota
	// Monotone closes the regions involved in a join or split and starts
	// new ones, so every loop is monotone along the sweep.
	Monotone
)

var errOddScanline = errors.New("scanline has an odd number of boundary points")

// Loop is a closed polygon found by the extractor.
type Loop struct {
	Points []r2.Vec
	// Depth is the number of other loops enclosing this one. Even depths
	// bound regions and are counter-clockwise, odd depths bound holes and
	// are clockwise.
	Depth int
}

// Region is a monotone region: one interval per consecutive scanline.
type Region struct {
	Spans [][2]r2.Vec
}

// Sweep is the outcome of one direction of the extractor.
type Sweep struct {
	Loops []Loop
	// Regions is only meaningful for the Monotone policy.
	Regions []Region
}

// bound is one side of a region boundary, running in sweep order.
// Sibling bounds are referenced by their index in the arena.
type bound struct {
	pts         []r2.Vec
	top, bottom int
}

// span is an interval of the previous scanline and the bounds it extends.
type span struct {
	lo, hi      float64
	left, right int
	region      int
}

// Extractor turns scanlines of region intervals into closed loops. Each
// scanline is a sorted list of points on a line, pairwise delimiting the
// inside of regions. A direction sweeps lines parallel to X; a swapped
// direction sweeps lines parallel to Y.
type Extractor struct {
	policy Policy
	swap   bool

	bounds  []bound
	active  []span
	regions []Region
	last    float64
	started bool
}

// NewExtractor returns an extractor using policy p.
func NewExtractor(p Policy) *Extractor {
	return &Extractor{policy: p}
}

// NewDirection resets the sweep state. When swap is true scanlines are
// taken to run parallel to Y.
func (e *Extractor) NewDirection(swap bool) {
	e.swap = swap
	e.bounds = e.bounds[:0]
	e.active = e.active[:0]
	e.regions = e.regions[:0]
	e.started = false
}

// toSweep maps a world point to (along line, across lines).
func (e *Extractor) toSweep(p r2.Vec) r2.Vec {
	if e.swap {
		return d2.Swap(p)
	}
	return p
}

func (e *Extractor) toWorld(u, v float64) r2.Vec {
	if e.swap {
		return r2.Vec{X: v, Y: u}
	}
	return r2.Vec{X: u, Y: v}
}

func (e *Extractor) newBound(p r2.Vec) int {
	e.bounds = append(e.bounds, bound{pts: []r2.Vec{p}, top: -1, bottom: -1})
	return len(e.bounds) - 1
}

func (e *Extractor) extend(b int, p r2.Vec) {
	e.bounds[b].pts = append(e.bounds[b].pts, p)
}

func (e *Extractor) joinTop(a, b int) {
	e.bounds[a].top = b
	e.bounds[b].top = a
}

func (e *Extractor) joinBottom(a, b int) {
	e.bounds[a].bottom = b
	e.bounds[b].bottom = a
}

// Scanline adds the boundary points of one scanline. An odd number of
// points is rejected and the scanline ignored.
func (e *Extractor) Scanline(pts []r2.Vec) error {
	if len(pts)%2 != 0 {
		return errOddScanline
	}
	if len(pts) == 0 {
		if e.started {
			e.advance(e.last, nil)
		}
		return nil
	}
	us := make([]float64, len(pts))
	var v float64
	for i, p := range pts {
		sp := e.toSweep(p)
		us[i] = sp.X
		v += sp.Y
	}
	v /= float64(len(pts))
	sort.Float64s(us)
	var next []span
	for i := 0; i < len(us); i += 2 {
		if us[i+1]-us[i] < cam.Epsilon {
			// Empty interval.
			continue
		}
		next = append(next, span{lo: us[i], hi: us[i+1]})
	}
	e.advance(v, next)
	e.last = v
	e.started = true
	return nil
}

// advance matches the intervals of the new scanline at v against the
// active ones. Overlapping intervals form components that are resolved
// together.
func (e *Extractor) advance(v float64, next []span) {
	prev := e.active
	i, j := 0, 0
	for i < len(prev) || j < len(next) {
		ci, cj := i, j
		var hi float64
		if j >= len(next) || (i < len(prev) && prev[i].lo <= next[j].lo) {
			hi = prev[i].hi
			i++
		} else {
			hi = next[j].hi
			j++
		}
		for {
			if i < len(prev) && prev[i].lo <= hi+cam.Epsilon {
				hi = math.Max(hi, prev[i].hi)
				i++
			} else if j < len(next) && next[j].lo <= hi+cam.Epsilon {
				hi = math.Max(hi, next[j].hi)
				j++
			} else {
				break
			}
		}
		e.resolve(v, prev[ci:i], next[cj:j])
	}
	e.active = next
}

func (e *Extractor) resolve(v float64, p, n []span) {
	k, m := len(p), len(n)
	switch {
	case k == 0:
		for j := range n {
			e.open(v, &n[j])
		}
	case m == 0:
		for i := range p {
			e.joinBottom(p[i].left, p[i].right)
		}
	case k == 1 && m == 1:
		n[0].left, n[0].right, n[0].region = p[0].left, p[0].right, p[0].region
		e.extend(n[0].left, e.toWorld(n[0].lo, v))
		e.extend(n[0].right, e.toWorld(n[0].hi, v))
		e.addSpan(&n[0], v)
	case e.policy == Monotone:
		for i := range p {
			e.joinBottom(p[i].left, p[i].right)
		}
		for j := range n {
			e.open(v, &n[j])
		}
	default:
		// The outer bounds continue, inner gaps of the previous scanline
		// close and inner gaps of the new one open.
		for i := 0; i+1 < k; i++ {
			e.joinBottom(p[i].right, p[i+1].left)
		}
		n[0].left, n[0].region = p[0].left, p[0].region
		e.extend(n[0].left, e.toWorld(n[0].lo, v))
		n[m-1].right = p[k-1].right
		e.extend(n[m-1].right, e.toWorld(n[m-1].hi, v))
		for j := 0; j+1 < m; j++ {
			r := e.newBound(e.toWorld(n[j].hi, v))
			l := e.newBound(e.toWorld(n[j+1].lo, v))
			e.joinTop(r, l)
			n[j].right, n[j+1].left = r, l
		}
		for j := range n {
			if j > 0 {
				n[j].region = e.newRegion()
			}
			e.addSpan(&n[j], v)
		}
	}
}

// open starts a new region at interval s.
func (e *Extractor) open(v float64, s *span) {
	s.left = e.newBound(e.toWorld(s.lo, v))
	s.right = e.newBound(e.toWorld(s.hi, v))
	e.joinTop(s.left, s.right)
	s.region = e.newRegion()
	e.addSpan(s, v)
}

func (e *Extractor) newRegion() int {
	e.regions = append(e.regions, Region{})
	return len(e.regions) - 1
}

func (e *Extractor) addSpan(s *span, v float64) {
	r := &e.regions[s.region]
	r.Spans = append(r.Spans, [2]r2.Vec{e.toWorld(s.lo, v), e.toWorld(s.hi, v)})
}

// EndDirection closes all open regions and returns the loops and regions
// of the direction.
func (e *Extractor) EndDirection() Sweep {
	if len(e.active) > 0 {
		e.advance(e.last, nil)
	}
	loops := e.splice()
	labelDepth(loops)
	regions := make([]Region, len(e.regions))
	copy(regions, e.regions)
	return Sweep{Loops: loops, Regions: regions}
}

// splice follows the top and bottom joins of the bounds, in creation
// order, until each loop returns to its first bound.
func (e *Extractor) splice() []Loop {
	visited := make([]bool, len(e.bounds))
	var loops []Loop
	for start := range e.bounds {
		if visited[start] {
			continue
		}
		var pts []r2.Vec
		cur, forward, ok := start, true, false
		for steps := 0; steps <= len(e.bounds); steps++ {
			visited[cur] = true
			b := &e.bounds[cur]
			if forward {
				pts = append(pts, b.pts...)
				cur = b.bottom
			} else {
				for i := len(b.pts) - 1; i >= 0; i-- {
					pts = append(pts, b.pts[i])
				}
				cur = b.top
			}
			forward = !forward
			if cur < 0 {
				break
			}
			if cur == start && forward {
				ok = true
				break
			}
		}
		if !ok {
			// Broken links leave an unusable chain.
			continue
		}
		pts = dedupe(pts, true)
		if len(pts) < 3 {
			continue
		}
		loops = append(loops, Loop{Points: pts})
	}
	return loops
}

// labelDepth sets the nesting depth of every loop and orients it.
func labelDepth(loops []Loop) {
	for i := range loops {
		probe := loops[i].Points[0]
		depth := 0
		for j := range loops {
			if i == j {
				continue
			}
			if d2.Set(loops[j].Points).Winding(probe) != 0 {
				depth++
			}
		}
		loops[i].Depth = depth
		ccw := d2.Set(loops[i].Points).SignedArea() > 0
		if ccw != (depth%2 == 0) {
			reverse2(loops[i].Points)
		}
	}
}

func reverse2(pts []r2.Vec) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// dedupe removes consecutive points closer than cam.Epsilon. For closed
// loops the last point is also compared to the first.
func dedupe(pts []r2.Vec, closed bool) []r2.Vec {
	if len(pts) == 0 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		if !d2.EqualWithin(p, out[len(out)-1], cam.Epsilon) {
			out = append(out, p)
		}
	}
	if closed && len(out) > 1 && d2.EqualWithin(out[0], out[len(out)-1], cam.Epsilon) {
		out = out[:len(out)-1]
	}
	return out
}

// MergeLoops merges the loops b of a second sweep into the matching loops
// of a. A loop of b matches the loop of a at the same depth whose bounding
// box overlaps it the most; its points are inserted into the nearest
// edges of the match. Loops of b without match are appended.
func MergeLoops(a, b []Loop, tol float64) []Loop {
	out := make([]Loop, len(a))
	for i := range a {
		out[i] = Loop{Points: append([]r2.Vec(nil), a[i].Points...), Depth: a[i].Depth}
	}
	boxes := make([]d2.Box, len(a))
	for i := range a {
		boxes[i] = d2.BoxOf(a[i].Points...)
	}
	for _, lb := range b {
		bb := d2.BoxOf(lb.Points...)
		best, bestArea := -1, 0.0
		for i := range a {
			if a[i].Depth != lb.Depth || !boxes[i].Overlaps(bb, tol) {
				continue
			}
			lo := d2.MaxElem(boxes[i].Min, bb.Min)
			hi := d2.MinElem(boxes[i].Max, bb.Max)
			area := math.Max(hi.X-lo.X, 0) * math.Max(hi.Y-lo.Y, 0)
			if best < 0 || area > bestArea {
				best, bestArea = i, area
			}
		}
		if best < 0 {
			out = append(out, Loop{Points: append([]r2.Vec(nil), lb.Points...), Depth: lb.Depth})
			continue
		}
		out[best].Points = insertPoints(out[best].Points, lb.Points, tol)
	}
	return out
}

// insertPoints inserts every point of extra after the edge of loop
// nearest to it, ordered along that edge.
func insertPoints(loop, extra []r2.Vec, tol float64) []r2.Vec {
	type ins struct {
		edge int
		t    float64
		p    r2.Vec
	}
	n := len(loop)
	var pending []ins
	for _, q := range extra {
		bestEdge, bestDist, bestT := -1, math.Inf(1), 0.0
		for i := 0; i < n; i++ {
			a, b := loop[i], loop[(i+1)%n]
			d := d2.DistToLine(q, a, b)
			if d < bestDist {
				ab := r2.Sub(b, a)
				t := 0.0
				if l2 := r2.Norm2(ab); l2 > 0 {
					t = r2.Dot(r2.Sub(q, a), ab) / l2
				}
				bestEdge, bestDist, bestT = i, d, t
			}
		}
		if bestEdge >= 0 {
			pending = append(pending, ins{edge: bestEdge, t: bestT, p: q})
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].edge != pending[j].edge {
			return pending[i].edge < pending[j].edge
		}
		return pending[i].t < pending[j].t
	})
	out := make([]r2.Vec, 0, n+len(pending))
	k := 0
	for i := 0; i < n; i++ {
		out = append(out, loop[i])
		for ; k < len(pending) && pending[k].edge == i; k++ {
			if !d2.EqualWithin(pending[k].p, out[len(out)-1], tol) {
				out = append(out, pending[k].p)
			}
		}
	}
	return dedupe(out, true)
}
