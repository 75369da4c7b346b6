package cutter

import (
	"math"
	"math/rand"
	"testing"

	"github.com/soypat/cam/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

func flatSquare(half, z float64) []geom.Triangle {
	a := r3.Vec{X: -half, Y: -half, Z: z}
	b := r3.Vec{X: half, Y: -half, Z: z}
	c := r3.Vec{X: half, Y: half, Z: z}
	d := r3.Vec{X: -half, Y: half, Z: z}
	return []geom.Triangle{geom.NewTriangle(a, c, b), geom.NewTriangle(a, d, c)}
}

func allShapes() []Cutter {
	return []Cutter{
		NewCylindrical(1, 10),
		NewSpherical(1, 10),
		NewToroidal(1, 0.25, 10),
	}
}

func dropAll(c Cutter, tris []geom.Triangle, start r3.Vec) (cl r3.Vec, ok bool) {
	for i := range tris {
		p, hit := c.Drop(&tris[i], start)
		if hit && (!ok || p.Z > cl.Z) {
			cl, ok = p, true
		}
	}
	return cl, ok
}

func TestDropFlat(t *testing.T) {
	tris := flatSquare(10, 0)
	for _, c := range allShapes() {
		cl, ok := dropAll(c, tris, r3.Vec{X: 1, Y: 2, Z: 100})
		if !ok {
			t.Errorf("%v: no contact", c)
			continue
		}
		if math.Abs(cl.Z) > 1e-9 || cl.X != 1 || cl.Y != 2 {
			t.Errorf("%v: got %v. want (1,2,0)", c, cl)
		}
	}
}

func TestDropRequiredDistance(t *testing.T) {
	tris := flatSquare(10, 0)
	cyl := NewCylindrical(1, 10)
	start := r3.Vec{X: 11.2, Z: 100}
	if _, ok := dropAll(cyl, tris, start); ok {
		t.Fatal("cutter should miss the square")
	}
	cyl.SetRequiredDistance(0.5)
	if got := cyl.DistanceRadius(); got != 1.5 {
		t.Errorf("got distance radius %g. want 1.5", got)
	}
	cl, ok := dropAll(cyl, tris, start)
	if !ok || math.Abs(cl.Z-0.5) > 1e-9 {
		t.Errorf("cylinder with allowance: got %v %v. want z=0.5", cl, ok)
	}

	sph := NewSpherical(1, 10)
	sph.SetRequiredDistance(0.5)
	cl, ok = dropAll(sph, tris, start)
	// Ball centre 1.2 from the edge: it rests at sqrt(1.5²-1.2²) above it.
	if want := 0.9 - 1; !ok || math.Abs(cl.Z-want) > 1e-9 {
		t.Errorf("sphere with allowance: got %v %v. want z=%g", cl, ok, want)
	}
	if b := sph.Box(); b.Min.Z != -0.5 || b.Max.X != 1.5 {
		t.Errorf("unexpected box %v", b)
	}
}

func TestDropVertex(t *testing.T) {
	tri := geom.NewTriangle(r3.Vec{X: 0.6}, r3.Vec{X: 5, Y: 1, Z: -5}, r3.Vec{X: 5, Y: -1, Z: -5})
	start := r3.Vec{Z: 50}
	cl, ok := NewSpherical(1, 10).Drop(&tri, start)
	if !ok || math.Abs(cl.Z+0.2) > 1e-9 {
		t.Errorf("sphere: got %v %v. want z=-0.2", cl, ok)
	}
	cl, ok = NewCylindrical(1, 10).Drop(&tri, start)
	if !ok || math.Abs(cl.Z) > 1e-9 {
		t.Errorf("cylinder: got %v %v. want z=0", cl, ok)
	}
	// Vertex under the flat bottom of the bull nose.
	cl, ok = NewToroidal(1, 0.25, 10).Drop(&tri, start)
	if !ok || math.Abs(cl.Z) > 1e-9 {
		t.Errorf("toroidal: got %v %v. want z=0", cl, ok)
	}
}

func TestDropOutOfReach(t *testing.T) {
	tris := flatSquare(1, 0)
	for _, c := range allShapes() {
		if cl, ok := dropAll(c, tris, r3.Vec{X: 5, Y: 5, Z: 10}); ok {
			t.Errorf("%v: unexpected contact at %v", c, cl)
		}
	}
}

func TestPushWall(t *testing.T) {
	wall := geom.NewTriangle(r3.Vec{X: 5, Y: -10, Z: -10}, r3.Vec{X: 5, Y: 0, Z: 20}, r3.Vec{X: 5, Y: 10, Z: -10})
	dir := r3.Vec{X: 1}
	for _, c := range allShapes() {
		ct := c.Intersect(dir, &wall, r3.Vec{})
		if !ct.OK() || math.Abs(ct.Dist-4) > 1e-6 {
			t.Errorf("%v: got distance %g. want 4", c, ct.Dist)
			continue
		}
		if math.Abs(ct.CL.X-4) > 1e-6 || math.Abs(ct.CP.X-5) > 1e-6 {
			t.Errorf("%v: got cl %v cp %v", c, ct.CL, ct.CP)
		}
	}
}

func TestPushWallSide(t *testing.T) {
	// A low wall only reachable by the shaft, not the tip.
	wall := geom.NewTriangle(r3.Vec{X: 5, Y: -10}, r3.Vec{X: 5, Y: 10}, r3.Vec{X: 5, Z: 2})
	for _, c := range allShapes() {
		ct := c.Intersect(r3.Vec{X: 1}, &wall, r3.Vec{Z: -1})
		if !ct.OK() || math.Abs(ct.Dist-4) > 1e-6 {
			t.Errorf("%v: got distance %g. want 4", c, ct.Dist)
			continue
		}
		if ct.CP.Z < -1e-9 || ct.CP.Z > 2+1e-9 {
			t.Errorf("%v: contact %v outside wall", c, ct.CP)
		}
	}
	// Shaft above the wall.
	c := NewCylindrical(1, 1)
	if ct := c.Intersect(r3.Vec{X: 1}, &wall, r3.Vec{Z: 3}); ct.OK() {
		t.Errorf("got contact %v above the wall", ct)
	}
}

func randomTriangles(n int) []geom.Triangle {
	rng := rand.New(rand.NewSource(1))
	v := func() r3.Vec {
		return r3.Vec{X: rng.Float64()*6 - 3, Y: rng.Float64()*6 - 3, Z: rng.Float64()*4 - 2}
	}
	var tris []geom.Triangle
	for len(tris) < n {
		tri := geom.NewTriangle(v(), v(), v())
		if tri.Degenerate() || tri.Area() < 0.1 {
			continue
		}
		tris = append(tris, tri)
	}
	return tris
}

func distToTriangle(t *geom.Triangle, p r3.Vec) float64 {
	h := r3.Dot(r3.Sub(p, t.P1), t.N)
	if t.PointInside(r3.Sub(p, r3.Scale(h, t.N))) {
		return math.Abs(h)
	}
	d := math.Inf(1)
	for _, e := range t.Edges() {
		d = math.Min(d, e.DistanceTo(p))
	}
	return d
}

// samples returns points spread over the triangle.
func samples(t *geom.Triangle, n int) []r3.Vec {
	var pts []r3.Vec
	for i := 0; i <= n; i++ {
		for j := 0; i+j <= n; j++ {
			u, v := float64(i)/float64(n), float64(j)/float64(n)
			p := r3.Add(t.P1, r3.Add(r3.Scale(u, r3.Sub(t.P2, t.P1)), r3.Scale(v, r3.Sub(t.P3, t.P1))))
			pts = append(pts, p)
		}
	}
	return pts
}

func TestSphereDropTangent(t *testing.T) {
	c := NewSpherical(1, 10)
	rng := rand.New(rand.NewSource(2))
	for i, tri := range randomTriangles(50) {
		start := r3.Vec{X: rng.Float64()*4 - 2, Y: rng.Float64()*4 - 2, Z: 100}
		cl, ok := c.Drop(&tri, start)
		if !ok {
			continue
		}
		center := r3.Add(cl, r3.Vec{Z: 1})
		if d := distToTriangle(&tri, center); math.Abs(d-1) > 1e-6 {
			t.Errorf("triangle %d: ball centre at distance %g. want 1", i, d)
		}
	}
}

func TestCylinderDropNoGouge(t *testing.T) {
	c := NewCylindrical(1, 10)
	rng := rand.New(rand.NewSource(3))
	for i, tri := range randomTriangles(50) {
		start := r3.Vec{X: rng.Float64()*4 - 2, Y: rng.Float64()*4 - 2, Z: 100}
		cl, ok := c.Drop(&tri, start)
		if !ok {
			continue
		}
		for _, p := range samples(&tri, 30) {
			if math.Hypot(p.X-cl.X, p.Y-cl.Y) < 1-1e-6 && p.Z > cl.Z+1e-6 {
				t.Errorf("triangle %d: point %v above the disc at %v", i, p, cl)
				break
			}
		}
		ct := c.Intersect(down, &tri, start)
		if math.Abs(ct.CP.Z-cl.Z) > 1e-6 || math.Hypot(ct.CP.X-cl.X, ct.CP.Y-cl.Y) > 1+1e-6 {
			t.Errorf("triangle %d: contact %v not on the disc at %v", i, ct.CP, cl)
		}
	}
}

func TestToroidalDropNoGouge(t *testing.T) {
	c := NewToroidal(1, 0.4, 10)
	major, minor := c.MajorRadius(), c.MinorRadius()
	rng := rand.New(rand.NewSource(4))
	for i, tri := range randomTriangles(30) {
		start := r3.Vec{X: rng.Float64()*4 - 2, Y: rng.Float64()*4 - 2, Z: 100}
		cl, ok := c.Drop(&tri, start)
		if !ok {
			continue
		}
		for _, p := range samples(&tri, 30) {
			rho := math.Hypot(p.X-cl.X, p.Y-cl.Y)
			var bottom float64
			switch {
			case rho <= major:
				bottom = cl.Z
			case rho < major+minor:
				bottom = cl.Z + minor - math.Sqrt(minor*minor-(rho-major)*(rho-major))
			default:
				continue
			}
			if p.Z > bottom+1e-3 {
				t.Errorf("triangle %d: point %v inside the cutter at %v", i, p, cl)
				break
			}
		}
	}
}

func TestClone(t *testing.T) {
	c := NewToroidal(2, 0.5, 10)
	c.MoveTo(r3.Vec{X: 1})
	cc := c.Clone()
	cc.MoveTo(r3.Vec{X: 5})
	cc.SetRequiredDistance(1)
	if c.Location().X != 1 || c.RequiredDistance() != 0 {
		t.Errorf("clone modified original: %v", c)
	}
	if cc.DistanceRadius() != 3 || cc.(*Toroidal).MinorRadius() != 1.5 {
		t.Errorf("got radius %g minor %g", cc.DistanceRadius(), cc.(*Toroidal).MinorRadius())
	}
}

func TestNew(t *testing.T) {
	for _, s := range []string{"flat", "ball", "bullnose", "Cylindrical"} {
		if _, err := ParseKind(s); err != nil {
			t.Error(err)
		}
	}
	if _, err := ParseKind("vbit"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := New(KindSpherical, 0, 0, 0); err == nil {
		t.Error("expected error for zero radius")
	}
	if _, err := New(KindToroidal, 1, 2, 0); err == nil {
		t.Error("expected error for minor radius larger than radius")
	}
	c, err := New(KindToroidal, 1, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c.Height() != DefaultHeight {
		t.Errorf("got height %g. want %g", c.Height(), DefaultHeight)
	}
	// A torus without flat bottom behaves as a ball.
	tri := flatSquare(10, 0)
	cl, ok := dropAll(c, tri, r3.Vec{Z: 10})
	if !ok || math.Abs(cl.Z) > 1e-9 {
		t.Errorf("got %v %v. want z=0", cl, ok)
	}
}

func BenchmarkDrop(b *testing.B) {
	tris := randomTriangles(64)
	for _, c := range allShapes() {
		b.Run(c.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				dropAll(c, tris, r3.Vec{X: 0.3, Y: -0.2, Z: 100})
			}
		})
	}
}
