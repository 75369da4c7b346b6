package pathgen

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/soypat/cam"
	"github.com/soypat/cam/cutter"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/internal/d3"
	"github.com/soypat/cam/internal/parallel"
	"github.com/soypat/cam/motion"
	"github.com/soypat/cam/pathproc"
	"gonum.org/v1/gonum/spatial/r3"
)

// ContourFollow mills the waterlines of the model: at every layer of the
// grid the cutter follows the outline of the model's cross section at
// that height, offset so the cutter touches without gouging.
// Only the Box, StepDown and Start of the grid are used.
//
// The offset is found by probing towards the waterline from twice the
// cutter reach outside of it. Material already touching the cutter at
// that start, such as an overhang above the layer reaching further out
// than the cutter radius, is not seen and is not protected.
type ContourFollow struct {
	Model  *geom.Model
	Cutter cutter.Cutter
	Grid   motion.Grid
	// Workers limits the number of triangles processed concurrently.
	// Zero uses all CPUs.
	Workers int
	Log     logrus.FieldLogger
}

// Generate feeds one scanline per offset waterline loop into proc. Closed
// loops repeat their first point at the end.
func (cf *ContourFollow) Generate(proc pathproc.Processor, progress cam.ProgressFunc) (cam.Result, error) {
	if cf.Model == nil {
		return cam.Result{}, errNoModel
	}
	if cf.Cutter == nil {
		return cam.Result{}, errNoCutter
	}
	g := cf.Grid
	if g.LineDistance <= 0 {
		// Lines are not used.
		g.LineDistance = 1
	}
	if err := g.Validate(); err != nil {
		return cam.Result{}, err
	}
	layers := g.Layers()
	r := newRun("contour follow", proc, progress, cf.Log, len(layers))
	r.log.WithFields(logrus.Fields{
		"layers":    len(layers),
		"triangles": cf.Model.Len(),
		"cutter":    cf.Cutter.String(),
	}).Debug("contour follow start")

	descending := g.Start&motion.StartBottom == 0
	// Triangles on the side of the plane the layers move away from
	// can not produce waterlines anymore.
	done := make([]bool, cf.Model.Len())
	for i, z := range layers {
		var ids []int
		tris := cf.Model.Triangles()
		for id := range tris {
			if done[id] {
				continue
			}
			t := &tris[id]
			if (descending && t.MinZ() > z+cam.Epsilon) || (!descending && t.MaxZ() < z-cam.Epsilon) {
				done[id] = true
				continue
			}
			ids = append(ids, id)
		}
		var lines []geom.Line
		canceled := parallel.Unordered(cf.Workers, parallel.Slice(ids), func(id int) *geom.Line {
			ln, ok := cf.Model.Triangle(id).Waterline(z)
			if !ok {
				return nil
			}
			return &ln
		}, func(ln *geom.Line) bool {
			if ln != nil {
				lines = append(lines, *ln)
			}
			return !r.progress.Report(cam.Progress{Text: r.text, Percent: -1})
		})
		if canceled {
			r.res.Canceled = true
			break
		}
		loops := cf.offsetLoops(r, uniqueLines(lines))
		r.pass(i, motion.DirX)
		for _, p := range loops {
			r.scanline(simplifyLoop(p.Points, p.Closed))
		}
		tool := r3.Vec{Z: z}
		if !r.step(&tool) {
			break
		}
	}
	return r.finish(), nil
}

// offsetLoops groups waterline segments into loops and offsets them by
// the cutter. Loops that collapse are dropped and segments that vanish
// while their neighbours are joined are reported.
func (cf *ContourFollow) offsetLoops(r *run, lines []geom.Line) []geom.Polygon {
	var cm geom.ContourModel
	for _, ln := range lines {
		cm.AppendLine(ln)
	}
	var out []geom.Polygon
	for _, poly := range cm.Polygons() {
		raw := poly.Lines()
		shifted := make([]geom.Line, 0, len(raw))
		for _, ln := range raw {
			if s, ok := cf.shift(ln); ok {
				shifted = append(shifted, s)
			}
		}
		joined, dropped, err := geom.ExtendShiftedLines(shifted, poly.Closed)
		if err != nil {
			r.warn(WarnDegenerateLoop)
			continue
		}
		if dropped > 0 || len(shifted) < len(raw) {
			r.warn(WarnVanishedSegment)
		}
		pts := make([]r3.Vec, 0, len(joined)+1)
		for _, ln := range joined {
			pts = append(pts, ln.P1)
		}
		if !poly.Closed {
			pts = append(pts, joined[len(joined)-1].P2)
		}
		out = append(out, geom.NewPolygon(pts, poly.Closed))
	}
	return out
}

// shift moves a waterline segment outwards to where the cutter touches
// the model. Both endpoints are probed by moving the cutter from outside
// towards them along the outward normal of the segment. The probe falls
// back to the plain cutter radius when nothing is hit.
func (cf *ContourFollow) shift(ln geom.Line) (geom.Line, bool) {
	right := geom.RightOf(ln.Dir())
	if right == (r3.Vec{}) {
		return geom.Line{}, false
	}
	a, b := cf.probe(ln.P1, right), cf.probe(ln.P2, right)
	s := geom.NewLine(a, b)
	if s.Degenerate() || r3.Dot(s.Dir(), ln.Dir()) <= 0 {
		return geom.Line{}, false
	}
	return s, true
}

// probe returns the cutter location touching the model when moving
// towards p along -right. Contacts behind the start are ignored: in a
// concave corner the neighbouring wall always overlaps the start.
func (cf *ContourFollow) probe(p, right r3.Vec) r3.Vec {
	c := cf.Cutter
	reach := c.DistanceRadius()
	fallback := r3.Add(p, r3.Scale(reach, right))
	start := r3.Add(p, r3.Scale(2*reach, right))
	d := r3.Scale(-1, right)

	box := d3.BoxOf(start, p)
	box.Min = r3.Sub(box.Min, r3.Vec{X: reach, Y: reach, Z: c.RequiredDistance()})
	box.Max = r3.Add(box.Max, r3.Vec{X: reach, Y: reach, Z: c.Height()})
	best := math.Inf(1)
	var cl r3.Vec
	cf.Model.TrianglesIn(box, func(_ int, t *geom.Triangle) bool {
		ct := c.Intersect(d, t, start)
		if ct.OK() && ct.Dist >= -cam.Epsilon && ct.Dist < best {
			best, cl = ct.Dist, ct.CL
		}
		return true
	})
	if math.IsInf(best, 1) || best > 2*reach+cam.Epsilon {
		return fallback
	}
	return cl
}

// uniqueLines removes repeated waterline segments. Two walls meeting at
// the cutting plane both report their common edge.
func uniqueLines(lines []geom.Line) []geom.Line {
	q := func(v float64) int64 { return int64(math.Round(v / cam.Epsilon)) }
	seen := make(map[[4]int64]bool, len(lines))
	out := lines[:0]
	for _, ln := range lines {
		k := [4]int64{q(ln.P1.X), q(ln.P1.Y), q(ln.P2.X), q(ln.P2.Y)}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, ln)
	}
	return out
}

// simplifyLoop returns the points of a loop without collinear points.
// Closed loops start at a corner and repeat it at the end.
func simplifyLoop(pts []r3.Vec, closed bool) []r3.Vec {
	n := len(pts)
	if !closed || n < 3 {
		p := cam.Path{Points: append([]r3.Vec(nil), pts...)}
		cam.SimplifyToolpath(&p)
		return p.Points
	}
	start := 0
	for i := range pts {
		prev, cur, next := pts[(i+n-1)%n], pts[i], pts[(i+1)%n]
		d1 := r3.Unit(r3.Sub(cur, prev))
		d2 := r3.Unit(r3.Sub(next, cur))
		if !cam.EqualVec(d1, d2, cam.Epsilon) {
			start = i
			break
		}
	}
	loop := make([]r3.Vec, 0, n+1)
	loop = append(loop, pts[start:]...)
	loop = append(loop, pts[:start]...)
	loop = append(loop, pts[start])
	p := cam.Path{Points: loop}
	cam.SimplifyToolpath(&p)
	return p.Points
}
