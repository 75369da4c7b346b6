// Package pathproc assembles the point stream of a path generator into
// toolpaths.
//
// Generators drive a Processor with nested calls:
//
//	NewDirection
//	    NewScanline, Append..., [Gap, Append...], EndScanline
//	    ...
//	EndDirection
//	...
//	Finish
//
// A direction is one pass of parallel lines over a layer. Gap marks that
// the tool cannot move from the previous point to the next one without
// leaving the surface, as between two free segments of a push cut.
package pathproc

import (
	"github.com/soypat/cam"
	"github.com/soypat/cam/motion"
	"gonum.org/v1/gonum/spatial/r3"
)

// Processor receives the output points of a path generator.
// Processors are not safe for concurrent use.
type Processor interface {
	NewDirection(dir motion.Direction)
	EndDirection()
	NewScanline()
	Append(p r3.Vec)
	Gap()
	EndScanline()
	// Finish flushes buffered state. Paths is complete after Finish.
	Finish()
	Paths() []cam.Path
}

// SimpleCutter stores the points of every scanline verbatim as a path.
type SimpleCutter struct {
	paths []cam.Path
	cur   cam.Path
}

var (
	_ Processor = (*SimpleCutter)(nil)
	_ Processor = (*PathAccumulator)(nil)
	_ Processor = (*ZigZagCutter)(nil)
	_ Processor = (*PolygonCutter)(nil)
	_ Processor = (*ContourCutter)(nil)
)

func (s *SimpleCutter) NewDirection(motion.Direction) {}
func (s *SimpleCutter) EndDirection()                 {}
func (s *SimpleCutter) NewScanline()                  { s.flush() }
func (s *SimpleCutter) Append(p r3.Vec)               { s.cur.Append(p) }
func (s *SimpleCutter) Gap()                          { s.flush() }
func (s *SimpleCutter) EndScanline()                  { s.flush() }
func (s *SimpleCutter) Finish()                       { s.flush() }
func (s *SimpleCutter) Paths() []cam.Path             { return s.paths }

func (s *SimpleCutter) flush() {
	if s.cur.Len() > 0 {
		s.paths = append(s.paths, s.cur)
	}
	s.cur = cam.Path{}
}

// PathAccumulator collects one path per scanline like SimpleCutter. With
// ZigZag set every other path of a direction is reversed so consecutive
// paths connect head to tail.
type PathAccumulator struct {
	ZigZag bool

	paths []cam.Path
	dir   []cam.Path
	cur   cam.Path
}

func (a *PathAccumulator) NewDirection(motion.Direction) { a.endDirection() }
func (a *PathAccumulator) EndDirection()                 { a.endDirection() }
func (a *PathAccumulator) NewScanline()                  { a.flush() }
func (a *PathAccumulator) Append(p r3.Vec)               { a.cur.Append(p) }
func (a *PathAccumulator) Gap()                          { a.flush() }
func (a *PathAccumulator) EndScanline()                  { a.flush() }
func (a *PathAccumulator) Finish()                       { a.endDirection() }
func (a *PathAccumulator) Paths() []cam.Path             { return a.paths }

func (a *PathAccumulator) flush() {
	if a.cur.Len() > 0 {
		a.dir = append(a.dir, a.cur)
	}
	a.cur = cam.Path{}
}

func (a *PathAccumulator) endDirection() {
	a.flush()
	if a.ZigZag {
		for i := 1; i < len(a.dir); i += 2 {
			a.dir[i].Reverse()
		}
	}
	a.paths = append(a.paths, a.dir...)
	a.dir = a.dir[:0]
}

// ZigZagCutter joins the scanlines of a direction into one path,
// reversing every other scanline. A scanline with gaps breaks the joined
// path at every gap.
type ZigZagCutter struct {
	paths   []cam.Path
	cur     cam.Path
	line    [][]r3.Vec
	reverse bool
}

func (z *ZigZagCutter) NewDirection(motion.Direction) {
	z.flush()
	z.reverse = false
}

func (z *ZigZagCutter) EndDirection()     { z.flush() }
func (z *ZigZagCutter) NewScanline()      { z.line = z.line[:0] }
func (z *ZigZagCutter) Finish()           { z.flush() }
func (z *ZigZagCutter) Paths() []cam.Path { return z.paths }

func (z *ZigZagCutter) Append(p r3.Vec) {
	if len(z.line) == 0 {
		z.line = append(z.line, nil)
	}
	last := len(z.line) - 1
	z.line[last] = append(z.line[last], p)
}

func (z *ZigZagCutter) Gap() {
	if n := len(z.line); n > 0 && len(z.line[n-1]) > 0 {
		z.line = append(z.line, nil)
	}
}

func (z *ZigZagCutter) EndScanline() {
	z.takeLine()
	z.reverse = !z.reverse
}

func (z *ZigZagCutter) takeLine() {
	var segs [][]r3.Vec
	for _, seg := range z.line {
		if len(seg) > 0 {
			segs = append(segs, seg)
		}
	}
	for i := range segs {
		seg := segs[i]
		if z.reverse {
			seg = segs[len(segs)-1-i]
		}
		if i > 0 {
			z.flushPath()
		}
		if z.reverse {
			for k := len(seg) - 1; k >= 0; k-- {
				z.cur.Append(seg[k])
			}
		} else {
			z.cur.Append(seg...)
		}
	}
	z.line = z.line[:0]
}

func (z *ZigZagCutter) flushPath() {
	if z.cur.Len() > 0 {
		z.paths = append(z.paths, z.cur)
	}
	z.cur = cam.Path{}
}

func (z *ZigZagCutter) flush() {
	z.takeLine()
	z.flushPath()
}
