package cam

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSimplifyToolpath(t *testing.T) {
	p := Path{Points: []r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 3, Y: 0, Z: 0},
		{X: 3, Y: 1, Z: 0}, {X: 3, Y: 2, Z: 0}, {X: 3, Y: 2, Z: 1}, {X: 2, Y: 2, Z: 2}, {X: 1, Y: 2, Z: 3},
	}}
	SimplifyToolpath(&p)
	want := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 3, Y: 0, Z: 0}, {X: 3, Y: 2, Z: 0}, {X: 3, Y: 2, Z: 1}, {X: 1, Y: 2, Z: 3}}
	if len(p.Points) != len(want) {
		t.Fatalf("got %d points %v. want %d", len(p.Points), p.Points, len(want))
	}
	for i := range want {
		if !EqualVec(p.Points[i], want[i], Epsilon) {
			t.Errorf("point %d: got %v. want %v", i, p.Points[i], want[i])
		}
	}
}

func TestSimplifyToolpathIdempotent(t *testing.T) {
	var p Path
	// A staircase with redundant midpoints on every tread and riser.
	for i := 0; i < 10; i++ {
		x := float64(i)
		p.Append(r3.Vec{X: x, Z: x}, r3.Vec{X: x + 0.25, Z: x}, r3.Vec{X: x + 0.5, Z: x},
			r3.Vec{X: x + 1, Z: x}, r3.Vec{X: x + 1, Z: x + 0.5})
	}
	SimplifyToolpath(&p)
	once := p.Clone()
	SimplifyToolpath(&p)
	if len(once.Points) != len(p.Points) {
		t.Fatalf("second pass changed length: got %d. want %d", len(p.Points), len(once.Points))
	}
	for i := range once.Points {
		if once.Points[i] != p.Points[i] {
			t.Errorf("second pass changed point %d: got %v. want %v", i, p.Points[i], once.Points[i])
		}
	}
}

func TestPathCloseReverse(t *testing.T) {
	p := Path{Points: []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 0}}}
	p.Close()
	if !p.Closed || p.Len() != 3 {
		t.Fatalf("got closed=%v len=%d. want closed=true len=3", p.Closed, p.Len())
	}
	if got := p.Length(); !EqualFloat(got, 2+1.4142135623730951, 1e-12) {
		t.Errorf("got length %g", got)
	}
	p.Reverse()
	if p.Points[0] != (r3.Vec{X: 1, Y: 1}) {
		t.Errorf("got first point %v after reverse", p.Points[0])
	}
}

func TestPlanMoves(t *testing.T) {
	paths := []Path{
		{Points: []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}},
		{Points: []r3.Vec{{X: 1.5, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}}},
		{Points: []r3.Vec{{X: 10, Y: 0, Z: 0}, {X: 11, Y: 0, Z: 0}}},
	}
	moves := PlanMoves(paths, 5, 1)
	var rapids, cuts int
	for _, m := range moves {
		switch m.Kind {
		case MoveRapid:
			rapids++
			if m.To.Z != 5 {
				t.Errorf("rapid move below safety height: %v", m.To)
			}
		case MoveCut:
			cuts++
		}
	}
	// Enter, retract+approach before the third path, final retract.
	if rapids != 4 {
		t.Errorf("got %d rapids. want 4", rapids)
	}
	if cuts != 6 {
		t.Errorf("got %d cuts. want 6", cuts)
	}
	if len(PlanMoves(nil, 5, 1)) != 0 {
		t.Error("expected no moves for no paths")
	}
}

func TestCeilDiv(t *testing.T) {
	for _, test := range []struct {
		span, step float64
		want       int
	}{
		{10, 1, 10},
		{10, 3, 4},
		{1, 0.1, 10},
		{0, 1, 1},
		{5, 10, 1},
	} {
		if got := CeilDiv(test.span, test.step); got != test.want {
			t.Errorf("CeilDiv(%g,%g): got %d. want %d", test.span, test.step, got, test.want)
		}
	}
}
