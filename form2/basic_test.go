package form2_test

import (
	"math"
	"testing"

	"github.com/soypat/cam/form2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRectangle(t *testing.T) {
	p, err := form2.Rectangle(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 4, Y: 3}, -2)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Closed || p.Len() != 4 {
		t.Fatalf("got closed=%v len=%d. want closed 4 point polygon", p.Closed, p.Len())
	}
	if got := p.Area(); math.Abs(got-6) > 1e-12 {
		t.Errorf("got area %g. want 6", got)
	}
	for _, pt := range p.Points {
		if pt.Z != -2 {
			t.Errorf("got z %g. want -2", pt.Z)
		}
	}
	_, err = form2.Rectangle(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1, Y: 3}, 0)
	if err == nil {
		t.Error("expected error for empty rectangle")
	}
}

func TestPolygonOrientation(t *testing.T) {
	cw := []r2.Vec{{X: 0, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 0}}
	p, err := form2.Polygon(cw, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 4 {
		t.Errorf("got %d points. want 4", p.Len())
	}
	if !p.IsOuter() {
		t.Error("polygon should run counter-clockwise")
	}
	h, err := form2.Hole(cw, 0)
	if err != nil {
		t.Fatal(err)
	}
	if h.IsOuter() {
		t.Error("hole should run clockwise")
	}
	if _, err := form2.Polygon(cw[:2], 0); err == nil {
		t.Error("expected error for two vertices")
	}
}

func TestCircle(t *testing.T) {
	const n = 256
	c, err := form2.Circle(r2.Vec{X: 5, Y: 5}, 2, n, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Pi * 4
	if got := c.Area(); math.Abs(got-want) > 1e-3 {
		t.Errorf("got area %g. want %g", got, want)
	}
	if !c.Contains(r3.Vec{X: 5, Y: 5}) || c.Contains(r3.Vec{X: 7.5, Y: 5}) {
		t.Error("bad containment")
	}
	if _, err := form2.Nagon(2, r2.Vec{}, 1, 0); err == nil {
		t.Error("expected error for 2-gon")
	}
}

func TestFrame(t *testing.T) {
	cm, err := form2.Frame(r2.Vec{}, r2.Vec{X: 10, Y: 10}, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	polys := cm.Polygons()
	if len(polys) != 2 {
		t.Fatalf("got %d polygons. want 2", len(polys))
	}
	if got := polys[0].Area() + polys[1].Area(); math.Abs(got-64) > 1e-9 {
		t.Errorf("got material area %g. want 64", got)
	}
	if len(cm.SelfIntersections()) != 0 {
		t.Error("frame should not self intersect")
	}
}

func TestOpen(t *testing.T) {
	p, err := form2.Open([]r2.Vec{{X: 0}, {X: 1}, {X: 1}, {X: 2, Y: 1}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Closed || p.Len() != 3 {
		t.Errorf("got closed=%v len=%d. want open 3 point chain", p.Closed, p.Len())
	}
	if _, err := form2.Open([]r2.Vec{{X: 1}, {X: 1}}, 0); err == nil {
		t.Error("expected error for coincident vertices")
	}
}
