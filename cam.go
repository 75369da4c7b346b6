// Package cam turns triangle meshes and 2D contour models into cutter
// location paths for 3 axis milling.
//
// Geometry lives in package geom, tool shapes in package cutter and the
// path generation strategies in package pathgen. Generators feed their
// output points into a pathproc.Processor which assembles the Paths
// returned in a Result.
package cam

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Epsilon is the tolerance used by all boundary, parallelism
	// and coincidence tests.
	Epsilon = 1e-5
)

// Infinite is the sentinel distance meaning "no contact".
var Infinite = math.Inf(1)

// ErrDegenerate is returned when an operation outside the hot intersection
// path cannot handle collapsed geometry, such as a polygon offset
// that makes the polygon vanish.
var ErrDegenerate = errors.New("degenerate geometry")

// Progress is the status reported periodically by path generators.
// Zero valued fields carry no information.
type Progress struct {
	// Text is an optional human readable status message.
	Text string
	// Percent is the completed percentage in [0,100], or negative if unknown.
	Percent float64
	// Tool is the current cutter location, if known.
	Tool *r3.Vec
	// Path is the path currently being generated, for live redraw.
	Path *Path
}

// ProgressFunc receives progress updates. Returning true requests that the
// running generator stop as soon as possible. Partial results are kept.
type ProgressFunc func(Progress) (cancel bool)

// Report calls fn with p if fn is not nil and returns its cancel request.
func (fn ProgressFunc) Report(p Progress) bool {
	if fn == nil {
		return false
	}
	return fn(p)
}

// Result is the outcome of a path generation run.
type Result struct {
	Paths []Path
	// Warnings are aggregated per run, at most one per kind.
	Warnings []string
	// Canceled is true when generation stopped early on user request.
	// Paths then holds everything generated before cancelation.
	Canceled bool
}

// Warn appends msg to the warnings if it is not already present.
func (r *Result) Warn(msg string) {
	for _, w := range r.Warnings {
		if w == msg {
			return
		}
	}
	r.Warnings = append(r.Warnings, msg)
}

// NumPoints returns the total amount of points in all paths.
func (r Result) NumPoints() (n int) {
	for i := range r.Paths {
		n += len(r.Paths[i].Points)
	}
	return n
}
