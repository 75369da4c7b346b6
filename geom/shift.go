package geom

import (
	"github.com/soypat/cam"
	"github.com/soypat/cam/internal/d2"
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ExtendShiftedLines joins a chain of horizontal segments, usually the
// result of shifting the segments of a polygon sideways, so that each
// segment ends exactly where the next one starts. The joint of two
// neighbours is the intersection of their infinite extensions, or the
// midpoint of the gap when they are parallel.
//
// Segments that collapse or flip direction while being trimmed are
// removed, counted in dropped, and the remaining ones joined again. Open
// chains keep their outer endpoints. A closed chain left with fewer than
// three segments, or an open chain with none, returns cam.ErrDegenerate.
func ExtendShiftedLines(lines []Line, closed bool) (out []Line, dropped int, err error) {
	lines = append([]Line(nil), lines...)
	total := len(lines)
	for {
		n := len(lines)
		if n == 0 || (closed && n < 3) {
			return nil, total - n, cam.ErrDegenerate
		}
		joints := make([]r3.Vec, n+1)
		for i := 0; i < n; i++ {
			if i == 0 && !closed {
				joints[0] = lines[0].P1
				continue
			}
			joints[i] = junction(lines[(i-1+n)%n], lines[i])
		}
		if closed {
			joints[n] = joints[0]
		} else {
			joints[n] = lines[n-1].P2
		}

		out = make([]Line, 0, n)
		keep := lines[:0:0]
		for i := range lines {
			nl := NewLine(joints[i], joints[i+1])
			if nl.Degenerate() || r3.Dot(nl.Dir(), lines[i].Dir()) <= 0 {
				continue
			}
			out = append(out, nl)
			keep = append(keep, lines[i])
		}
		if len(out) == n {
			return out, total - n, nil
		}
		lines = keep
	}
}

func junction(a, b Line) r3.Vec {
	if cam.EqualVec(a.P2, b.P1, cam.Epsilon) {
		return a.P2
	}
	p, ok := d2.LineIntersection(d3.ToR2(a.P1), d3.ToR2(a.P2), d3.ToR2(b.P1), d3.ToR2(b.P2), cam.Epsilon)
	if !ok {
		return d3.Lerp(a.P2, b.P1, 0.5)
	}
	return d3.FromR2(p, a.P2.Z)
}
