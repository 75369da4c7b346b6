package cam

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// MoveKind distinguishes cutting feed moves from rapid positioning.
type MoveKind int

const (
	MoveCut MoveKind = iota
	MoveRapid
)

func (k MoveKind) String() string {
	switch k {
	case MoveCut:
		return "cut"
	case MoveRapid:
		return "rapid"
	}
	return "unknown"
}

// Move is a single machine motion ending at To.
type Move struct {
	To   r3.Vec
	Kind MoveKind
}

// PlanMoves joins paths into one motion sequence. Between two paths the
// tool retracts to safetyHeight unless the horizontal gap between the end
// of one path and the start of the next is at most maxSkip, in which case
// the tool moves straight to the next path without lifting.
// The sequence starts and ends at safety height.
func PlanMoves(paths []Path, safetyHeight, maxSkip float64) []Move {
	var moves []Move
	var last r3.Vec
	started := false
	for i := range paths {
		p := &paths[i]
		if len(p.Points) == 0 {
			continue
		}
		first := p.Points[0]
		if !started || r3.Norm(Horizontal(r3.Sub(first, last))) > maxSkip {
			if started {
				moves = append(moves, Move{To: r3.Vec{X: last.X, Y: last.Y, Z: safetyHeight}, Kind: MoveRapid})
			}
			moves = append(moves, Move{To: r3.Vec{X: first.X, Y: first.Y, Z: safetyHeight}, Kind: MoveRapid})
		}
		for _, pt := range p.Points {
			moves = append(moves, Move{To: pt, Kind: MoveCut})
		}
		last = p.Last()
		if p.Closed && len(p.Points) > 2 {
			moves = append(moves, Move{To: first, Kind: MoveCut})
			last = first
		}
		started = true
	}
	if started {
		moves = append(moves, Move{To: r3.Vec{X: last.X, Y: last.Y, Z: safetyHeight}, Kind: MoveRapid})
	}
	return moves
}
