package pathproc

import (
	"github.com/soypat/cam"
	"github.com/soypat/cam/motion"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// scanBuffer collects the points of the scanlines of one direction.
type scanBuffer struct {
	dir   motion.Direction
	z     float64
	hasZ  bool
	lines [][]r2.Vec
	cur   []r2.Vec
}

func (b *scanBuffer) reset(dir motion.Direction) {
	b.dir = dir
	b.hasZ = false
	b.lines = b.lines[:0]
	b.cur = nil
}

func (b *scanBuffer) append(p r3.Vec) {
	if !b.hasZ {
		b.z, b.hasZ = p.Z, true
	}
	b.cur = append(b.cur, r2.Vec{X: p.X, Y: p.Y})
}

func (b *scanBuffer) endLine() {
	b.lines = append(b.lines, b.cur)
	b.cur = nil
}

func (b *scanBuffer) lift(p r2.Vec) r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: b.z} }

// PolygonCutter pockets free areas: the free segments of every direction
// are grouped into monotone regions and each region is cut as one
// zig-zag path.
type PolygonCutter struct {
	paths []cam.Path
	buf   scanBuffer
	open  bool
}

func (c *PolygonCutter) NewDirection(dir motion.Direction) {
	c.EndDirection()
	c.buf.reset(dir)
	c.open = true
}

func (c *PolygonCutter) NewScanline()      { c.buf.cur = nil }
func (c *PolygonCutter) Append(p r3.Vec)   { c.buf.append(p) }
func (c *PolygonCutter) Gap()              {}
func (c *PolygonCutter) EndScanline()      { c.buf.endLine() }
func (c *PolygonCutter) Finish()           { c.EndDirection() }
func (c *PolygonCutter) Paths() []cam.Path { return c.paths }

func (c *PolygonCutter) EndDirection() {
	if !c.open {
		return
	}
	c.open = false
	ex := NewExtractor(Monotone)
	ex.NewDirection(c.buf.dir == motion.DirY)
	for _, line := range c.buf.lines {
		ex.Scanline(line)
	}
	sweep := ex.EndDirection()
	for _, r := range sweep.Regions {
		var p cam.Path
		for i, s := range r.Spans {
			a, b := c.buf.lift(s[0]), c.buf.lift(s[1])
			if i%2 == 1 {
				a, b = b, a
			}
			p.Append(a, b)
		}
		if p.Len() > 0 {
			c.paths = append(c.paths, p)
		}
	}
}

// ContourCutter extracts the closed outlines of the material crossed by
// the scanlines of each layer. The first and last point of a scanline
// are its ends and not material boundaries; they are discarded. When a
// layer is scanned along X and then Y both outlines are merged.
type ContourCutter struct {
	paths   []cam.Path
	buf     scanBuffer
	open    bool
	skipped int

	// Loops of a finished direction waiting for a possible second one.
	pending    []Loop
	pendingZ   float64
	hasPending bool
	tol        float64
}

// NewContourCutter returns a ContourCutter. tol is the distance under
// which outline points of two directions are merged, usually the line
// distance of the grid.
func NewContourCutter(tol float64) *ContourCutter {
	return &ContourCutter{tol: tol}
}

func (c *ContourCutter) NewDirection(dir motion.Direction) {
	c.endDirection()
	if dir != motion.DirY {
		// A new layer starts.
		c.flushPending()
	}
	c.buf.reset(dir)
	c.open = true
}

func (c *ContourCutter) NewScanline()    { c.buf.cur = nil }
func (c *ContourCutter) Append(p r3.Vec) { c.buf.append(p) }
func (c *ContourCutter) Gap()            {}
func (c *ContourCutter) EndScanline()    { c.buf.endLine() }
func (c *ContourCutter) EndDirection()   { c.endDirection() }

func (c *ContourCutter) Finish() {
	c.endDirection()
	c.flushPending()
}

func (c *ContourCutter) Paths() []cam.Path { return c.paths }

// Skipped returns the number of scanlines ignored for having an odd
// number of boundary points.
func (c *ContourCutter) Skipped() int { return c.skipped }

func (c *ContourCutter) endDirection() {
	if !c.open {
		return
	}
	c.open = false
	ex := NewExtractor(Contour)
	ex.NewDirection(c.buf.dir == motion.DirY)
	for _, line := range c.buf.lines {
		if len(line) < 2 {
			continue
		}
		if err := ex.Scanline(line[1 : len(line)-1]); err != nil {
			c.skipped++
		}
	}
	loops := ex.EndDirection().Loops
	if c.hasPending && c.pendingZ == c.buf.z {
		c.pending = MergeLoops(c.pending, loops, c.tol)
		return
	}
	c.flushPending()
	c.pending, c.pendingZ, c.hasPending = loops, c.buf.z, true
}

func (c *ContourCutter) flushPending() {
	if !c.hasPending {
		return
	}
	for _, l := range c.pending {
		var p cam.Path
		for _, v := range l.Points {
			p.Append(r3.Vec{X: v.X, Y: v.Y, Z: c.pendingZ})
		}
		// Simplification also drops the coincident points left where
		// bounds of both sweeps meet.
		cam.SimplifyToolpath(&p)
		p.Close()
		if p.Len() >= 3 {
			c.paths = append(c.paths, p)
		}
	}
	c.pending, c.hasPending = nil, false
}
