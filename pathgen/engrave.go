package pathgen

import (
	"errors"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/soypat/cam"
	"github.com/soypat/cam/cutter"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/internal/d3"
	"github.com/soypat/cam/motion"
	"github.com/soypat/cam/pathproc"
	"gonum.org/v1/gonum/spatial/r3"
)

// engraveSizeFactor relaxes the area ordering of engraved polygons:
// a polygon is milled before another only if it is this many times
// smaller.
const engraveSizeFactor = 2

// EngraveCutter follows the polygons of a contour model down to a final
// depth. At every layer the cutter is pushed along the polygons, skipping
// the parts where it would collide with the obstacles of Model. At the
// final depth the polygons are then followed once more, dropping the
// cutter onto Model at closely spaced points.
type EngraveCutter struct {
	Contour *geom.ContourModel
	// Model holds optional obstacles and the surface followed at the
	// final depth. It may be nil.
	Model  *geom.Model
	Cutter cutter.Cutter
	// Top and Bottom bound the engraving depth. Bottom is the final depth.
	Top, Bottom float64
	// StepDown is the maximum distance between layers.
	StepDown float64
	// Step is the maximum distance between points of the final pass.
	Step float64
	// Offset shifts every polygon to its right before engraving, so
	// outlines grow and holes shrink for positive values.
	Offset float64
	Log    logrus.FieldLogger
}

func (e *EngraveCutter) validate() error {
	switch {
	case e.Contour == nil:
		return errors.New("nil contour model")
	case e.Cutter == nil:
		return errNoCutter
	case e.Bottom > e.Top:
		return errors.New("engrave bottom above top")
	case !(e.Step > 0):
		return errors.New("engrave step must be positive")
	case math.IsNaN(e.Offset) || math.IsInf(e.Offset, 0):
		return errors.New("engrave offset must be finite")
	}
	return nil
}

// Generate feeds every polygon of every push layer as a scanline into
// proc, followed by the polygons of the drop pass. Each layer and the
// drop pass are separate directions.
func (e *EngraveCutter) Generate(proc pathproc.Processor, progress cam.ProgressFunc) (cam.Result, error) {
	if err := e.validate(); err != nil {
		return cam.Result{}, err
	}
	contour, dropped := e.Contour, 0
	if e.Offset != 0 {
		contour, dropped = e.Contour.Offset(e.Offset)
	}
	polys := engraveOrder(contour.Polygons())
	layers := e.layers()
	r := newRun("engrave", proc, progress, e.Log, (len(layers)+1)*len(polys))
	r.log.WithFields(logrus.Fields{
		"polygons": len(polys),
		"layers":   len(layers),
		"offset":   e.Offset,
	}).Debug("engrave start")
	if dropped > 0 {
		r.warn(WarnOffsetCollapsed)
	}
	if len(contour.SelfIntersections()) > 0 {
		r.warn(WarnSelfIntersection)
	}

	for li, z := range layers {
		r.pass(li, motion.DirX)
		for _, p := range polys {
			r.scanline(e.push(p, z)...)
			if !r.step(nil) {
				return r.finish(), nil
			}
		}
	}
	r.pass(len(layers), motion.DirX)
	c := e.Cutter.Clone()
	for _, p := range polys {
		pts := e.drop(c, p)
		r.scanline(pts)
		var tool *r3.Vec
		if len(pts) > 0 {
			tool = &pts[len(pts)-1]
		}
		if !r.step(tool) {
			break
		}
	}
	return r.finish(), nil
}

// layers returns the push heights from Top down to Bottom, Bottom included.
func (e *EngraveCutter) layers() []float64 {
	g := motion.Grid{
		Box:      d3.Box{Min: r3.Vec{Z: e.Bottom}, Max: r3.Vec{Z: e.Top}},
		StepDown: e.StepDown,
	}
	return g.Layers()
}

// outline returns the segments of p at height z. Closed polygons end at
// their first point.
func outline(p geom.Polygon, z float64) []geom.Line {
	flat := p.Clone()
	for i := range flat.Points {
		flat.Points[i].Z = z
	}
	return flat.Lines()
}

// push returns the pieces of p at height z clear of obstacles.
func (e *EngraveCutter) push(p geom.Polygon, z float64) [][]r3.Vec {
	lines := outline(p, z)
	var (
		segs [][]r3.Vec
		cur  []r3.Vec
	)
	add := func(pt r3.Vec) {
		if n := len(cur); n > 0 && cam.EqualVec(cur[n-1], pt, cam.Epsilon) {
			return
		}
		cur = append(cur, pt)
	}
	for _, ln := range lines {
		free := []geom.Line{ln}
		if e.Model != nil && e.Model.Len() > 0 {
			free = FreeSegments(e.Model, e.Cutter, ln.P1, ln.P2)
		}
		for _, f := range free {
			if len(cur) > 0 && !cam.EqualVec(cur[len(cur)-1], f.P1, cam.Epsilon) {
				segs = append(segs, cur)
				cur = nil
			}
			add(f.P1)
			add(f.P2)
		}
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// drop follows p at the final depth, raising the cutter over the surface
// of Model where it is higher.
func (e *EngraveCutter) drop(c cutter.Cutter, p geom.Polygon) []r3.Vec {
	var pts []r3.Vec
	for i, ln := range outline(p, e.Bottom) {
		ml := motion.Line{Start: ln.P1, End: ln.P2}
		for j, pt := range ml.Points(e.Step) {
			if i > 0 && j == 0 {
				continue
			}
			pt.Z = e.surface(c, pt)
			pts = append(pts, pt)
		}
	}
	return pts
}

func (e *EngraveCutter) surface(c cutter.Cutter, p r3.Vec) float64 {
	z := p.Z
	if e.Model == nil {
		return z
	}
	start := r3.Vec{X: p.X, Y: p.Y, Z: e.Top}
	e.Model.TrianglesIn(columnBox(c, p.X, p.Y), func(_ int, t *geom.Triangle) bool {
		if cl, ok := c.Drop(t, start); ok {
			z = math.Max(z, cl.Z)
		}
		return true
	})
	return z
}

// engraveOrder sorts polygons so holes come first and, among polygons of
// the same kind, clearly smaller ones before larger ones.
func engraveOrder(polys []geom.Polygon) []geom.Polygon {
	out := make([]geom.Polygon, len(polys))
	copy(out, polys)
	hole := func(p *geom.Polygon) bool { return p.Closed && !p.IsOuter() }
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if ha, hb := hole(a), hole(b); ha != hb {
			return ha
		}
		return engraveSizeFactor*math.Abs(a.Area()) < math.Abs(b.Area())
	})
	return out
}
