package pathgen

import (
	"math"
	"sort"

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

// PushCutter slices the model at every layer of the grid. Each grid
// line is reduced to its free segments, the parts along which the
// cutter moves without touching the model.
type PushCutter struct {
	Model  *geom.Model
	Cutter cutter.Cutter
	Grid   motion.Grid
	// Workers limits the number of lines computed concurrently. Zero
	// uses all CPUs.
	Workers int
	Log     logrus.FieldLogger
}

type pushedLine struct {
	line motion.Line
	free []geom.Line
}

// Generate feeds one scanline per grid line into proc, with a gap
// between consecutive free segments. A line fully inside the material
// yields an empty scanline.
func (p *PushCutter) Generate(proc pathproc.Processor, progress cam.ProgressFunc) (cam.Result, error) {
	if p.Model == nil {
		return cam.Result{}, errNoModel
	}
	if p.Cutter == nil {
		return cam.Result{}, errNoCutter
	}
	if err := p.Grid.Validate(); err != nil {
		return cam.Result{}, err
	}
	it := p.Grid.Lines()
	r := newRun("push cutter", proc, progress, p.Log, it.Len())
	r.log.WithFields(logrus.Fields{
		"lines":  it.Len(),
		"layers": len(p.Grid.Layers()),
		"cutter": p.Cutter.String(),
	}).Debug("push cutter start")

	next := func() (motion.Line, bool) {
		if !it.Next() {
			return motion.Line{}, false
		}
		return it.Line(), true
	}
	task := func(l motion.Line) pushedLine {
		return pushedLine{line: l, free: FreeSegments(p.Model, p.Cutter, l.Start, l.End)}
	}
	parallel.Ordered(p.Workers, next, task, func(pl pushedLine) bool {
		r.pass(pl.line.Layer, pl.line.Dir)
		segs := make([][]r3.Vec, len(pl.free))
		for i, f := range pl.free {
			segs[i] = []r3.Vec{f.P1, f.P2}
		}
		r.scanline(segs...)
		end := pl.line.End
		return r.step(&end)
	})
	return r.finish(), nil
}

// interval is a blocked range of distances along a pushed line.
type interval struct{ lo, hi float64 }

// FreeSegments returns the parts of the segment from a to b along which
// c can move its tip without touching m, in order from a. A segment clear
// of all material returns the segment itself.
//
// Every triangle blocks the interval between the first contacts of the
// cutter pushed from a towards b and pushed back from b towards a.
// When the triangles crossed by the line at the tip height form closed
// surfaces the solid interior between them is blocked as well.
func FreeSegments(m *geom.Model, c cutter.Cutter, a, b r3.Vec) []geom.Line {
	ln := geom.NewLine(a, b)
	if ln.Degenerate() {
		return nil
	}
	length := ln.Len()
	d := ln.Dir()
	back := r3.Scale(-1, d)

	r := c.DistanceRadius()
	box := d3.BoxOf(a, b)
	box.Min = r3.Sub(box.Min, r3.Vec{X: r, Y: r, Z: c.RequiredDistance()})
	box.Max = r3.Add(box.Max, r3.Vec{X: r, Y: r, Z: c.Height()})

	var blocked []interval
	m.TrianglesIn(box, func(_ int, t *geom.Triangle) bool {
		in := c.Intersect(d, t, a)
		out := c.Intersect(back, t, b)
		if !in.OK() && !out.OK() {
			return true
		}
		iv := interval{lo: math.Inf(-1), hi: math.Inf(1)}
		if in.OK() {
			iv.lo = in.Dist
		}
		if out.OK() {
			iv.hi = length - out.Dist
		}
		if iv.hi >= iv.lo {
			blocked = append(blocked, iv)
		}
		return true
	})
	blocked = append(blocked, interior(m, a, d)...)
	return complement(ln, blocked)
}

// crossing is a passage of the line through a triangle. enter is true
// when the line goes into the solid.
type crossing struct {
	s     float64
	enter bool
}

// interior returns the ranges of the infinite line through a along d
// lying inside closed surfaces of m. It returns nil when the crossings
// do not balance, as for open meshes.
func interior(m *geom.Model, a, d r3.Vec) []interval {
	q := d3.Box{Min: a, Max: a}
	if math.Abs(d.X) > cam.Epsilon {
		q.Min.X, q.Max.X = math.Inf(-1), math.Inf(1)
	}
	if math.Abs(d.Y) > cam.Epsilon {
		q.Min.Y, q.Max.Y = math.Inf(-1), math.Inf(1)
	}
	var xs []crossing
	m.TrianglesIn(q, func(_ int, t *geom.Triangle) bool {
		den := r3.Dot(t.N, d)
		if math.Abs(den) < cam.Epsilon {
			return true
		}
		s := r3.Dot(r3.Sub(t.P1, a), t.N) / den
		if !t.PointInside(r3.Add(a, r3.Scale(s, d))) {
			return true
		}
		xs = append(xs, crossing{s: s, enter: den < 0})
		return true
	})
	if len(xs) == 0 {
		return nil
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i].s < xs[j].s })
	var (
		out   []interval
		depth int
		start float64
		last  = crossing{s: math.Inf(-1)}
	)
	for _, x := range xs {
		if x.enter == last.enter && x.s-last.s < cam.Epsilon {
			// The line passes through an edge shared by two triangles.
			continue
		}
		last = x
		if x.enter {
			if depth == 0 {
				start = x.s
			}
			depth++
			continue
		}
		depth--
		if depth < 0 {
			return nil
		}
		if depth == 0 {
			out = append(out, interval{lo: start, hi: x.s})
		}
	}
	if depth != 0 {
		return nil
	}
	return out
}

// complement returns the parts of ln not covered by blocked. Free parts
// shorter than cam.Epsilon are dropped.
func complement(ln geom.Line, blocked []interval) []geom.Line {
	length := ln.Len()
	sort.Slice(blocked, func(i, j int) bool { return blocked[i].lo < blocked[j].lo })
	var free []geom.Line
	pos := 0.0
	emit := func(lo, hi float64) {
		if hi-lo >= cam.Epsilon {
			free = append(free, geom.NewLine(ln.Point(lo), ln.Point(hi)))
		}
	}
	for _, iv := range blocked {
		if iv.hi < pos {
			continue
		}
		if iv.lo > length {
			break
		}
		if iv.lo > pos {
			emit(pos, iv.lo)
		}
		pos = math.Max(pos, iv.hi)
		if pos >= length {
			return free
		}
	}
	if pos == 0 {
		return []geom.Line{ln}
	}
	emit(pos, length)
	return free
}
