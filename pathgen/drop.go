package pathgen

import (
	"errors"
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

// DefaultPrecision is the height resolution of the binary search used
// with a Collider.
const DefaultPrecision = 0.01

// DropCutter samples the grid lines of a single layer and lowers the
// cutter onto the model at every sample. Heights are clamped to the Z
// range of the grid box.
type DropCutter struct {
	Model  *geom.Model
	Cutter cutter.Cutter
	// Grid defines the sampled lines. Its StepDown is ignored.
	Grid motion.Grid
	// Step is the maximum distance between samples along a line. It
	// defaults to the grid's line distance.
	Step float64
	// SafetyHeight replaces samples where no collision free height
	// exists within the grid box. It is raised to the top of the box
	// when lower.
	SafetyHeight float64
	// Physics selects a collision backend instead of triangle math.
	Physics Collider
	// Precision is the height resolution when Physics is set.
	Precision float64
	// Workers limits the number of lines computed concurrently. Zero
	// uses all CPUs.
	Workers int
	Log     logrus.FieldLogger
}

// droppedLine is the result of sampling one grid line.
type droppedLine struct {
	line     motion.Line
	points   []r3.Vec
	exceeded bool
}

func (d *DropCutter) validate() error {
	if d.Model == nil && d.Physics == nil {
		return errNoModel
	}
	if d.Cutter == nil {
		return errNoCutter
	}
	if err := d.Grid.Validate(); err != nil {
		return err
	}
	if d.Grid.Box.Max.Z < d.Grid.Box.Min.Z {
		return errors.New("drop cutter grid has inverted height range")
	}
	return nil
}

// Generate feeds one scanline per grid line into proc.
func (d *DropCutter) Generate(proc pathproc.Processor, progress cam.ProgressFunc) (cam.Result, error) {
	if err := d.validate(); err != nil {
		return cam.Result{}, err
	}
	g := d.Grid
	g.StepDown = 0
	it := g.Lines()
	r := newRun("drop cutter", proc, progress, d.Log, it.Len())
	r.log.WithFields(logrus.Fields{
		"lines":  it.Len(),
		"cutter": d.Cutter.String(),
		"box":    g.Box,
	}).Debug("drop cutter start")

	next := func() (motion.Line, bool) {
		if !it.Next() {
			return motion.Line{}, false
		}
		return it.Line(), true
	}
	task := func(l motion.Line) droppedLine {
		return d.dropLine(d.Cutter.Clone(), l)
	}
	parallel.Ordered(d.Workers, next, task, func(dl droppedLine) bool {
		if dl.exceeded {
			r.warn(WarnHeightExceeded)
		}
		r.pass(dl.line.Layer, dl.line.Dir)
		r.scanline(dl.points)
		var tool *r3.Vec
		if n := len(dl.points); n > 0 {
			tool = &dl.points[n-1]
		}
		return r.step(tool)
	})
	return r.finish(), nil
}

func (d *DropCutter) safetyHeight() float64 {
	return math.Max(d.SafetyHeight, d.Grid.Box.Max.Z)
}

func (d *DropCutter) step() float64 {
	if d.Step > 0 {
		return d.Step
	}
	return d.Grid.LineDistance
}

// dropLine samples l. Where the contact triangle changes between two
// samples at different heights a point is added at the higher height
// over the lower sample so the move between them never descends
// diagonally through the model.
func (d *DropCutter) dropLine(c cutter.Cutter, l motion.Line) droppedLine {
	out := droppedLine{line: l}
	var (
		prev    r3.Vec
		prevTri int
	)
	for i, p := range l.Points(d.step()) {
		z, tri, ok := d.dropAt(c, p.X, p.Y)
		if !ok {
			out.exceeded = true
			z, tri = d.safetyHeight(), -1
		}
		cur := r3.Vec{X: p.X, Y: p.Y, Z: z}
		if i > 0 && tri != prevTri && math.Abs(cur.Z-prev.Z) > cam.Epsilon {
			mid := prev
			if cur.Z < prev.Z {
				mid = cur
			}
			mid.Z = math.Max(prev.Z, cur.Z)
			out.points = append(out.points, mid)
		}
		out.points = append(out.points, cur)
		prev, prevTri = cur, tri
	}
	return out
}

// dropAt returns the resting height of the cutter over (x,y) and the id
// of the triangle it rests on, -1 for the bottom of the grid box. ok is
// false when the height exceeds the top of the box.
func (d *DropCutter) dropAt(c cutter.Cutter, x, y float64) (z float64, tri int, ok bool) {
	minz, maxz := d.Grid.Box.Min.Z, d.Grid.Box.Max.Z
	if d.Physics != nil {
		return d.searchHeight(c, x, y)
	}
	start := r3.Vec{X: x, Y: y, Z: maxz}
	z, tri = math.Inf(-1), -1
	d.Model.TrianglesIn(columnBox(c, x, y), func(id int, t *geom.Triangle) bool {
		cl, hit := c.Drop(t, start)
		if hit && cl.Z > z {
			z, tri = cl.Z, id
		}
		return true
	})
	switch {
	case z > maxz+cam.Epsilon:
		return z, tri, false
	case z < minz:
		return minz, -1, true
	}
	return math.Min(z, maxz), tri, true
}

// searchHeight finds the lowest free height over (x,y) by bisection
// against the Physics backend.
func (d *DropCutter) searchHeight(c cutter.Cutter, x, y float64) (float64, int, bool) {
	lo, hi := d.Grid.Box.Min.Z, d.Grid.Box.Max.Z
	at := func(z float64) bool {
		c.MoveTo(r3.Vec{X: x, Y: y, Z: z})
		return d.Physics.Collides(c)
	}
	if at(hi) {
		return hi, -1, false
	}
	if !at(lo) {
		return lo, -1, true
	}
	prec := d.Precision
	if prec <= 0 {
		prec = DefaultPrecision
	}
	for hi-lo > prec {
		mid := (lo + hi) / 2
		if at(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi, -1, true
}

// columnBox returns the vertical column the cutter sweeps over (x,y).
func columnBox(c cutter.Cutter, x, y float64) d3.Box {
	r := c.DistanceRadius()
	return d3.Box{
		Min: r3.Vec{X: x - r, Y: y - r, Z: math.Inf(-1)},
		Max: r3.Vec{X: x + r, Y: y + r, Z: math.Inf(1)},
	}
}
