// Package motion enumerates the lines a path generator probes: parallel
// scan lines grouped in layers of constant height.
package motion

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soypat/cam"
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Direction is the axis scan lines run along.
type Direction int

const (
	DirX Direction = iota
	DirY
	// DirXY scans every layer along X and then along Y.
	DirXY
)

func (d Direction) String() string {
	switch d {
	case DirX:
		return "x"
	case DirY:
		return "y"
	case DirXY:
		return "xy"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection returns the direction named by s.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "x", "":
		return DirX, nil
	case "y":
		return DirY, nil
	case "xy", "both":
		return DirXY, nil
	}
	return 0, fmt.Errorf("unknown grid direction %q", s)
}

// MillingStyle selects how lines of one layer are traversed.
// Conventional and climb assume a clockwise spindle.
type MillingStyle int

const (
	// Ignore traverses lines in zig-zag.
	Ignore MillingStyle = iota
	// Conventional keeps the uncut material left of the travel direction.
	Conventional
	// Climb keeps the uncut material right of the travel direction.
	Climb
)

func (m MillingStyle) String() string {
	switch m {
	case Ignore:
		return "ignore"
	case Conventional:
		return "conventional"
	case Climb:
		return "climb"
	}
	return fmt.Sprintf("MillingStyle(%d)", int(m))
}

// ParseMillingStyle returns the style named by s.
func ParseMillingStyle(s string) (MillingStyle, error) {
	switch strings.ToLower(s) {
	case "ignore", "", "zigzag":
		return Ignore, nil
	case "conventional", "conv":
		return Conventional, nil
	case "climb":
		return Climb, nil
	}
	return 0, fmt.Errorf("unknown milling style %q", s)
}

// Corner is the start position of a grid as a set of flags.
// The zero Corner starts at minimum x and y on the top layer.
type Corner uint8

const (
	StartMaxX Corner = 1 << iota
	StartMaxY
	// StartBottom enumerates layers from the bottom up.
	StartBottom
)

// Line is one scan line of a grid.
type Line struct {
	Start, End r3.Vec
	// Layer is the index of the line's layer, starting at 0.
	Layer int
	// Index is the position of the line in enumeration order.
	Index int
	Dir   Direction
}

// Vector returns End-Start.
func (l Line) Vector() r3.Vec { return r3.Sub(l.End, l.Start) }

// Points returns evenly spaced points from Start to End, both included,
// no further apart than step. A non-positive step yields the endpoints.
func (l Line) Points(step float64) []r3.Vec {
	v := l.Vector()
	length := r3.Norm(v)
	n := 1
	if step > 0 {
		n = cam.CeilDiv(length, step)
	}
	pts := make([]r3.Vec, n+1)
	for i := range pts {
		pts[i] = r3.Add(l.Start, r3.Scale(float64(i)/float64(n), v))
	}
	pts[n] = l.End
	return pts
}

var errLineDistance = errors.New("grid line distance must be positive")

// Grid describes a layered grid of scan lines over a box.
type Grid struct {
	// Box bounds the grid. Lines span the X or Y extent and layers
	// the Z extent.
	Box d3.Box
	// LineDistance is the maximum spacing between adjacent lines.
	LineDistance float64
	// StepDown is the maximum spacing between layers. A non-positive
	// StepDown yields a single layer at the bottom of Box.
	StepDown float64
	Dir      Direction
	Style    MillingStyle
	Start    Corner
}

// Validate checks the grid parameters.
func (g *Grid) Validate() error {
	if !(g.LineDistance > 0) {
		return errLineDistance
	}
	if g.Box.Empty() {
		return errors.New("empty grid box")
	}
	if g.Dir < DirX || g.Dir > DirXY {
		return fmt.Errorf("invalid grid direction %v", g.Dir)
	}
	return nil
}

// Layers returns the layer heights in enumeration order. The top of the
// box is never a layer unless the box is flat. The bottom always is.
func (g *Grid) Layers() []float64 {
	lo, hi := g.Box.Min.Z, g.Box.Max.Z
	span := hi - lo
	if g.StepDown <= 0 || span < cam.Epsilon {
		return []float64{lo}
	}
	n := cam.CeilDiv(span, g.StepDown)
	z := make([]float64, n)
	for i := range z {
		z[i] = hi - float64(i+1)*span/float64(n)
	}
	z[n-1] = lo
	if g.Start&StartBottom != 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			z[i], z[j] = z[j], z[i]
		}
	}
	return z
}

// linePositions returns the offsets of lines across the span [lo, hi].
func (g *Grid) linePositions(lo, hi float64, reverse bool) []float64 {
	span := hi - lo
	if span < cam.Epsilon {
		return []float64{lo}
	}
	n := cam.CeilDiv(span, g.LineDistance)
	pos := make([]float64, n+1)
	for i := range pos {
		pos[i] = lo + float64(i)*span/float64(n)
	}
	pos[n] = hi
	if reverse {
		for i, j := 0, n; i < j; i, j = i+1, j-1 {
			pos[i], pos[j] = pos[j], pos[i]
		}
	}
	return pos
}

// passes returns the line directions of one layer.
func (g *Grid) passes() []Direction {
	if g.Dir == DirXY {
		return []Direction{DirX, DirY}
	}
	return []Direction{g.Dir}
}

// LinesPerLayer returns the number of lines enumerated for each layer.
func (g *Grid) LinesPerLayer() int {
	n := 0
	for _, dir := range g.passes() {
		if dir == DirX {
			n += len(g.linePositions(g.Box.Min.Y, g.Box.Max.Y, false))
		} else {
			n += len(g.linePositions(g.Box.Min.X, g.Box.Max.X, false))
		}
	}
	return n
}

// NumLines returns the total number of lines of the grid.
func (g *Grid) NumLines() int {
	return len(g.Layers()) * g.LinesPerLayer()
}

// Lines returns an iterator over the lines of g. Lines are produced on
// demand so huge grids can be abandoned early.
func (g *Grid) Lines() *Iterator {
	it := &Iterator{g: g, layers: g.Layers(), passes: g.passes()}
	it.Reset()
	return it
}

// fixCorner moves the start corner to the adjacent corner along the
// shorter side of the grid when it contradicts the milling style.
func (g *Grid) fixCorner(c Corner, dir Direction) Corner {
	if g.Style == Ignore {
		return c
	}
	primary, secondary := StartMaxX, StartMaxY
	if dir == DirY {
		primary, secondary = secondary, primary
	}
	same := (c&primary != 0) == (c&secondary != 0)
	// Starting at the low corner of both axes, lines along X step towards
	// +Y which leaves the material left of travel.
	wantSame := (g.Style == Climb) != (dir == DirX)
	if same == wantSame {
		return c
	}
	size := g.Box.Size()
	if size.X <= size.Y {
		return c ^ StartMaxX
	}
	return c ^ StartMaxY
}

// Iterator enumerates the lines of a Grid. Call Next until it returns
// false, reading Line in between.
type Iterator struct {
	g      *Grid
	layers []float64
	passes []Direction

	layer, pass int
	// positions of the lines of the current pass.
	pos   []float64
	next  int
	index int

	corner  Corner
	forward bool
	cur     Line
}

// Reset rewinds the iterator to the first line.
func (it *Iterator) Reset() {
	it.layer, it.pass, it.next, it.index = 0, 0, 0, 0
	it.corner = it.g.Start
	it.pos = nil
	it.cur = Line{}
}

// Len returns the number of lines not yet enumerated.
func (it *Iterator) Len() int {
	if it.layer >= len(it.layers) {
		return 0
	}
	total := it.g.NumLines()
	return total - it.index
}

// Next advances the iterator and reports whether a line is available.
func (it *Iterator) Next() bool {
	if it.layer >= len(it.layers) {
		return false
	}
	if it.pos == nil {
		it.startPass()
	}
	if it.next >= len(it.pos) {
		it.endPass()
		it.pass++
		if it.pass >= len(it.passes) {
			it.pass = 0
			it.layer++
			if it.layer >= len(it.layers) {
				return false
			}
		}
		it.startPass()
	}
	dir := it.passes[it.pass]
	z := it.layers[it.layer]
	p := it.pos[it.next]
	b := it.g.Box
	var a, e r3.Vec
	if dir == DirX {
		a, e = r3.Vec{X: b.Min.X, Y: p, Z: z}, r3.Vec{X: b.Max.X, Y: p, Z: z}
	} else {
		a, e = r3.Vec{X: p, Y: b.Min.Y, Z: z}, r3.Vec{X: p, Y: b.Max.Y, Z: z}
	}
	if !it.forward {
		a, e = e, a
	}
	it.cur = Line{Start: a, End: e, Layer: it.layer, Index: it.index, Dir: dir}
	it.index++
	it.next++
	if it.g.Style == Ignore {
		it.forward = !it.forward
	}
	return true
}

// Line returns the current line.
func (it *Iterator) Line() Line { return it.cur }

func (it *Iterator) startPass() {
	dir := it.passes[it.pass]
	it.corner = it.g.fixCorner(it.corner, dir)
	b := it.g.Box
	if dir == DirX {
		it.forward = it.corner&StartMaxX == 0
		it.pos = it.g.linePositions(b.Min.Y, b.Max.Y, it.corner&StartMaxY != 0)
	} else {
		it.forward = it.corner&StartMaxY == 0
		it.pos = it.g.linePositions(b.Min.X, b.Max.X, it.corner&StartMaxX != 0)
	}
	it.next = 0
}

// endPass sets the corner to where the last line of the pass ended.
func (it *Iterator) endPass() {
	if len(it.pos) == 0 {
		return
	}
	end := it.cur.End
	b := it.g.Box
	var c Corner
	if math.Abs(end.X-b.Max.X) < math.Abs(end.X-b.Min.X) {
		c |= StartMaxX
	}
	if math.Abs(end.Y-b.Max.Y) < math.Abs(end.Y-b.Min.Y) {
		c |= StartMaxY
	}
	it.corner = c | it.g.Start&StartBottom
}
