package pathgen

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/cam"
	"github.com/soypat/cam/cutter"
	"github.com/soypat/cam/form3/must3"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/internal/d3"
	"github.com/soypat/cam/motion"
	"github.com/soypat/cam/pathproc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func box(x0, y0, z0, x1, y1, z1 float64) d3.Box {
	return d3.Box{Min: r3.Vec{X: x0, Y: y0, Z: z0}, Max: r3.Vec{X: x1, Y: y1, Z: z1}}
}

func flatModel(x0, y0, x1, y1, z float64) *geom.Model {
	return geom.NewModel(must3.FlatSquare(r2.Vec{X: x0, Y: y0}, r2.Vec{X: x1, Y: y1}, z)...)
}

func shoelace(pts []r3.Vec) (a float64) {
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

func allPoints(res cam.Result) []r3.Vec {
	var pts []r3.Vec
	for _, p := range res.Paths {
		pts = append(pts, p.Points...)
	}
	return pts
}

func TestDropCutterFlat(t *testing.T) {
	for _, workers := range []int{1, 4} {
		d := DropCutter{
			Model:   flatModel(0, 0, 4, 4, 0),
			Cutter:  cutter.NewCylindrical(1, 10),
			Grid:    motion.Grid{Box: box(0, 0, 0, 4, 4, 10), LineDistance: 1},
			Step:    1,
			Workers: workers,
		}
		res, err := d.Generate(&pathproc.PathAccumulator{}, nil)
		require.NoError(t, err)
		assert.False(t, res.Canceled)
		assert.Empty(t, res.Warnings)
		require.Len(t, res.Paths, 5)
		pts := allPoints(res)
		require.Len(t, pts, 25)
		for _, p := range pts {
			assert.InDelta(t, 0, p.Z, cam.Epsilon)
		}
		// Lines arrive in grid order.
		for i, p := range res.Paths {
			assert.Equal(t, float64(i), p.Points[0].Y)
		}
	}
}

func TestDropCutterHeightExceeded(t *testing.T) {
	d := DropCutter{
		Model:        flatModel(-1, -1, 5, 5, 20),
		Cutter:       cutter.NewSpherical(0.5, 10),
		Grid:         motion.Grid{Box: box(0, 0, 0, 4, 4, 10), LineDistance: 2},
		SafetyHeight: 15,
	}
	res, err := d.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{WarnHeightExceeded}, res.Warnings)
	for _, p := range allPoints(res) {
		assert.Equal(t, 15.0, p.Z)
	}
}

func TestDropCutterStepRepair(t *testing.T) {
	m := flatModel(0, -1, 10, 1, 0)
	m.Merge(flatModel(5, -1, 10, 1, 3))
	d := DropCutter{
		Model:  m,
		Cutter: cutter.NewCylindrical(0.5, 10),
		Grid:   motion.Grid{Box: box(0, 0, 0, 10, 0, 10), LineDistance: 1},
		Step:   1,
	}
	res, err := d.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)
	pts := res.Paths[0].Points
	require.Len(t, pts, 12)
	for i, want := range map[int]r3.Vec{4: {X: 4, Z: 0}, 5: {X: 4, Z: 3}, 6: {X: 5, Z: 3}} {
		assert.True(t, cam.EqualVec(want, pts[i], 1e-9), "point %d: got %v. want %v", i, pts[i], want)
	}
}

func TestDropCutterPhysics(t *testing.T) {
	m := flatModel(-2, -2, 6, 6, 2)
	d := DropCutter{
		Cutter:    cutter.NewCylindrical(1, 10),
		Grid:      motion.Grid{Box: box(0, 0, 0, 4, 4, 10), LineDistance: 2},
		Physics:   Serialize(ModelCollider{Model: m}),
		Precision: 0.01,
		Workers:   3,
	}
	res, err := d.Generate(&pathproc.PathAccumulator{ZigZag: true}, nil)
	require.NoError(t, err)
	pts := allPoints(res)
	require.Len(t, pts, 9)
	for _, p := range pts {
		assert.GreaterOrEqual(t, p.Z, 2.0-cam.Epsilon)
		assert.InDelta(t, 2, p.Z, 0.011)
	}
}

func TestDropCutterCancel(t *testing.T) {
	d := DropCutter{
		Model:   flatModel(0, 0, 10, 10, 0),
		Cutter:  cutter.NewSpherical(1, 10),
		Grid:    motion.Grid{Box: box(0, 0, 0, 10, 10, 10), LineDistance: 0.5},
		Workers: 4,
	}
	calls := 0
	res, err := d.Generate(&pathproc.PathAccumulator{}, func(p cam.Progress) bool {
		calls++
		assert.Greater(t, p.Percent, 0.0)
		return calls == 3
	})
	require.NoError(t, err)
	assert.True(t, res.Canceled)
	assert.Len(t, res.Paths, 3)
}

func TestDropCutterInvalid(t *testing.T) {
	d := DropCutter{Cutter: cutter.NewSpherical(1, 10)}
	_, err := d.Generate(&pathproc.SimpleCutter{}, nil)
	assert.Error(t, err)
	d.Model = flatModel(0, 0, 1, 1, 0)
	_, err = d.Generate(&pathproc.SimpleCutter{}, nil)
	assert.Error(t, err, "zero line distance")
}

func TestPushCutterWall(t *testing.T) {
	m := geom.NewModel(must3.Wall(r2.Vec{X: 5, Y: -10}, r2.Vec{X: 5, Y: 10}, -10, 10)...)
	p := PushCutter{
		Model:  m,
		Cutter: cutter.NewCylindrical(1, 10),
		Grid:   motion.Grid{Box: box(0, 0, 0, 10, 0, 0), LineDistance: 1},
	}
	res, err := p.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	require.Len(t, res.Paths, 2)
	a, b := res.Paths[0].Points, res.Paths[1].Points
	require.Len(t, a, 2)
	require.Len(t, b, 2)
	assert.InDelta(t, 0, a[0].X, 1e-9)
	assert.InDelta(t, 4, a[1].X, 1e-6)
	assert.InDelta(t, 6, b[0].X, 1e-6)
	assert.InDelta(t, 10, b[1].X, 1e-9)
}

func TestFreeSegments(t *testing.T) {
	c := cutter.NewSpherical(1, 10)
	a, b := r3.Vec{}, r3.Vec{X: 10}

	// Entirely outside: a closed box far along the line.
	far := geom.NewModel(must3.Box(r3.Vec{X: 50, Y: -5, Z: -5}, r3.Vec{X: 60, Y: 5, Z: 5})...)
	free := FreeSegments(far, c, a, b)
	require.Len(t, free, 1)
	assert.Equal(t, a, free[0].P1)
	assert.Equal(t, b, free[0].P2)

	// Entirely inside a closed box.
	big := geom.NewModel(must3.Box(r3.Vec{X: -100, Y: -100, Z: -10}, r3.Vec{X: 100, Y: 100, Z: 10})...)
	assert.Empty(t, FreeSegments(big, c, a, b))

	// Through a block: the cutter keeps its radius to both faces.
	block := geom.NewModel(must3.Box(r3.Vec{X: 4, Y: -5, Z: -5}, r3.Vec{X: 6, Y: 5, Z: 5})...)
	free = FreeSegments(block, c, a, b)
	require.Len(t, free, 2)
	assert.InDelta(t, 3, free[0].P2.X, 1e-6)
	assert.InDelta(t, 7, free[1].P1.X, 1e-6)
}

func TestPushCutterContour(t *testing.T) {
	m := geom.NewModel(must3.Box(r3.Vec{X: 3, Y: 3, Z: -5}, r3.Vec{X: 7, Y: 7, Z: 5})...)
	p := PushCutter{
		Model:  m,
		Cutter: cutter.NewCylindrical(1, 20),
		Grid:   motion.Grid{Box: box(0, 0, -2, 10, 10, 0), LineDistance: 0.5, StepDown: 1, Dir: motion.DirXY},
	}
	res, err := p.Generate(pathproc.NewContourCutter(0.5), nil)
	require.NoError(t, err)
	require.Len(t, res.Paths, 2)
	for _, path := range res.Paths {
		assert.True(t, path.Closed)
		// The outline of a 4x4 block grown by the cutter radius, sampled
		// by lines 0.5 apart.
		area := math.Abs(shoelace(path.Points))
		assert.InDelta(t, 36, area, 8)
	}
}

func TestContourFollowPyramid(t *testing.T) {
	const r = 0.5
	m := geom.NewModel(must3.Pyramid(5, 10, true)...)
	cf := ContourFollow{
		Model:  m,
		Cutter: cutter.NewCylindrical(r, 10),
		Grid:   motion.Grid{Box: box(-6, -6, 5, 6, 6, 5)},
	}
	res, err := cf.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Paths, 1)
	pts := res.Paths[0].Points
	require.Len(t, pts, 5)
	assert.Equal(t, pts[0], pts[4])
	for _, p := range pts {
		assert.Equal(t, 5.0, p.Z)
	}
	// The waterline at half height is a square of side 5.
	raw, perimeter := 25.0, 20.0
	area := shoelace(pts[:4])
	assert.Greater(t, area, raw+0.9*perimeter*r)
	assert.InDelta(t, raw+perimeter*r+4*r*r, area, 1e-6)
}

func TestContourFollowLayers(t *testing.T) {
	m := geom.NewModel(must3.Pyramid(5, 10, true)...)
	cf := ContourFollow{
		Model:  m,
		Cutter: cutter.NewSpherical(0.5, 10),
		Grid:   motion.Grid{Box: box(-6, -6, 2, 6, 6, 8), StepDown: 2},
	}
	res, err := cf.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	require.Len(t, res.Paths, 3)
	// Top down, so loops grow.
	prev := 0.0
	for _, p := range res.Paths {
		a := shoelace(p.Points[:len(p.Points)-1])
		assert.Greater(t, a, prev)
		prev = a
	}
}

func TestContourFollowModelBottom(t *testing.T) {
	const r = 0.5
	m := geom.NewModel(must3.Box(r3.Vec{}, r3.Vec{X: 4, Y: 4, Z: 5})...)
	cf := ContourFollow{
		Model:  m,
		Cutter: cutter.NewCylindrical(r, 10),
		Grid:   motion.Grid{Box: m.Bounds(), StepDown: 2.5},
	}
	res, err := cf.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Paths, 2)
	for i, z := range []float64{2.5, 0} {
		pts := res.Paths[i].Points
		require.Len(t, pts, 5)
		assert.Equal(t, z, pts[0].Z)
		assert.InDelta(t, 25, shoelace(pts[:4]), 1e-6)
	}
}

func TestContourFollowStackedWalls(t *testing.T) {
	tris := must3.Box(r3.Vec{}, r3.Vec{X: 4, Y: 4, Z: 2})
	tris = append(tris, must3.Box(r3.Vec{Z: 2}, r3.Vec{X: 4, Y: 4, Z: 4})...)
	cf := ContourFollow{
		Model:  geom.NewModel(tris...),
		Cutter: cutter.NewCylindrical(0.5, 10),
		Grid:   motion.Grid{Box: box(-1, -1, 2, 5, 5, 2)},
	}
	res, err := cf.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	// Both blocks report the edges at z=2 once each.
	require.Len(t, res.Paths, 1)
	pts := res.Paths[0].Points
	require.Len(t, pts, 5)
	assert.InDelta(t, 25, shoelace(pts[:4]), 1e-6)
}

func TestContourFollowConcaveSimplified(t *testing.T) {
	corners := []r2.Vec{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 4}, {X: 0, Y: 4}}
	var tris []geom.Triangle
	for i := range corners {
		tris = append(tris, must3.Wall(corners[i], corners[(i+1)%len(corners)], 0, 2)...)
	}
	cf := ContourFollow{
		Model:  geom.NewModel(tris...),
		Cutter: cutter.NewCylindrical(0.5, 10),
		Grid:   motion.Grid{Box: box(-1, -1, 1, 5, 5, 1)},
	}
	res, err := cf.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)
	pts := res.Paths[0].Points
	// Six corners and the repeated start.
	require.Len(t, pts, 7)
	loop := pts[:6]
	for i := range loop {
		prev, cur, next := loop[(i+5)%6], loop[i], loop[(i+1)%6]
		d1 := r3.Unit(r3.Sub(cur, prev))
		d2 := r3.Unit(r3.Sub(next, cur))
		assert.False(t, cam.EqualVec(d1, d2, cam.Epsilon), "collinear point %v", cur)
	}
	assert.InDelta(t, 21, shoelace(loop), 1e-6)
}

func TestContourFollowOverhang(t *testing.T) {
	// The upper block reaches 0.3 past the lower one along +Y, less than
	// the cutter radius.
	tris := must3.Box(r3.Vec{}, r3.Vec{X: 4, Y: 4, Z: 2})
	tris = append(tris, must3.Box(r3.Vec{Z: 2}, r3.Vec{X: 4, Y: 4.3, Z: 3})...)
	cf := ContourFollow{
		Model:  geom.NewModel(tris...),
		Cutter: cutter.NewCylindrical(0.5, 10),
		Grid:   motion.Grid{Box: box(-1, -1, 1, 5, 5, 1)},
	}
	res, err := cf.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)
	pts := res.Paths[0].Points
	maxY := math.Inf(-1)
	for _, p := range pts {
		maxY = math.Max(maxY, p.Y)
	}
	assert.InDelta(t, 4.8, maxY, 1e-6)
	assert.InDelta(t, 5*5.3, math.Abs(shoelace(pts[:len(pts)-1])), 1e-6)
}

func TestContourFollowVanishedSegment(t *testing.T) {
	// Block outline with a V notch whose flat bottom is narrower than
	// the offset can keep.
	block := geom.NewPolygon([]r3.Vec{
		{X: -3, Y: -4}, {X: 3, Y: -4}, {X: 3}, {X: 1.1},
		{X: 0.1, Y: -1}, {X: -0.1, Y: -1}, {X: -1.1}, {X: -3},
	}, true)
	cf := ContourFollow{
		Model:  geom.NewModel(),
		Cutter: cutter.NewCylindrical(0.5, 10),
	}
	r := newRun("test", &pathproc.SimpleCutter{}, nil, nil, 0)
	loops := cf.offsetLoops(r, block.Lines())
	require.Len(t, loops, 1)
	assert.Len(t, loops[0].Points, 7)
	assert.True(t, loops[0].Closed)
	assert.Equal(t, []string{WarnVanishedSegment}, r.res.Warnings)
}

func TestContourFollowCancel(t *testing.T) {
	m := geom.NewModel(must3.Box(r3.Vec{}, r3.Vec{X: 4, Y: 4, Z: 5})...)
	cf := ContourFollow{
		Model:  m,
		Cutter: cutter.NewCylindrical(0.5, 10),
		Grid:   motion.Grid{Box: m.Bounds(), StepDown: 1},
	}
	// Stop after the first layer.
	res, err := cf.Generate(&pathproc.SimpleCutter{}, func(p cam.Progress) bool {
		return p.Percent > 0
	})
	require.NoError(t, err)
	assert.True(t, res.Canceled)
	assert.Len(t, res.Paths, 1)

	// Stop while collecting waterlines.
	res, err = cf.Generate(&pathproc.SimpleCutter{}, func(cam.Progress) bool { return true })
	require.NoError(t, err)
	assert.True(t, res.Canceled)
	assert.Empty(t, res.Paths)
}

func TestPushCutterCancel(t *testing.T) {
	p := PushCutter{
		Model:   flatModel(0, 0, 10, 10, -10),
		Cutter:  cutter.NewCylindrical(1, 5),
		Grid:    motion.Grid{Box: box(0, 0, 0, 10, 10, 0), LineDistance: 1},
		Workers: 4,
	}
	calls := 0
	res, err := p.Generate(&pathproc.SimpleCutter{}, func(cam.Progress) bool {
		calls++
		return calls == 3
	})
	require.NoError(t, err)
	assert.True(t, res.Canceled)
	assert.Len(t, res.Paths, 3)
}

func square(x0, y0, x1, y1 float64, ccw bool) geom.Polygon {
	pts := []r3.Vec{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
	if !ccw {
		pts[1], pts[3] = pts[3], pts[1]
	}
	return geom.NewPolygon(pts, true)
}

func TestEngraveCutter(t *testing.T) {
	e := EngraveCutter{
		Contour:  geom.NewContourModel(square(0, 0, 10, 10, true)),
		Cutter:   cutter.NewCylindrical(0.5, 10),
		Top:      0,
		Bottom:   -5,
		StepDown: 2.5,
		Step:     1,
	}
	res, err := e.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	require.Len(t, res.Paths, 3)
	for i, want := range []float64{-2.5, -5} {
		p := res.Paths[i]
		require.Len(t, p.Points, 5, "push pass %d traces the square", i)
		for _, pt := range p.Points {
			assert.Equal(t, want, pt.Z)
		}
	}
	drop := res.Paths[2].Points
	assert.Len(t, drop, 41)
	for i, pt := range drop {
		assert.Equal(t, -5.0, pt.Z)
		if i > 0 {
			assert.LessOrEqual(t, r3.Norm(r3.Sub(pt, drop[i-1])), 1+cam.Epsilon)
		}
	}
}

func TestEngraveObstacle(t *testing.T) {
	// A post standing on the right edge of the square interrupts the
	// push passes.
	post := geom.NewModel(must3.Box(r3.Vec{X: 9, Y: 4, Z: -10}, r3.Vec{X: 11, Y: 6, Z: 10})...)
	e := EngraveCutter{
		Contour: geom.NewContourModel(square(0, 0, 10, 10, true)),
		Model:   post,
		Cutter:  cutter.NewCylindrical(0.5, 10),
		Top:     0,
		Bottom:  -1,
		Step:    1,
	}
	res, err := e.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	// One push layer split in two by the post and the drop pass, which
	// climbs over the post.
	require.Len(t, res.Paths, 3)
	var top float64
	for _, pt := range res.Paths[2].Points {
		top = math.Max(top, pt.Z)
	}
	assert.InDelta(t, 10, top, 1e-6)
}

func TestEngraveOrder(t *testing.T) {
	big := square(0, 0, 100, 100, true)
	small := square(10, 10, 20, 20, true)
	similar := square(0, 0, 90, 90, true)
	hole := square(40, 40, 60, 60, false)
	got := engraveOrder([]geom.Polygon{big, small, hole, similar})
	require.Len(t, got, 4)
	assert.False(t, got[0].IsOuter())
	assert.InDelta(t, 100, got[1].Area(), 1e-9)
	// Polygons within a factor of two keep their order.
	assert.InDelta(t, 10000, got[2].Area(), 1e-9)
	assert.InDelta(t, 8100, got[3].Area(), 1e-9)
}

func TestEngraveSelfIntersection(t *testing.T) {
	e := EngraveCutter{
		Contour: geom.NewContourModel(square(0, 0, 10, 10, true), square(5, 5, 15, 15, true)),
		Cutter:  cutter.NewCylindrical(0.5, 10),
		Bottom:  -1,
		Step:    1,
	}
	res, err := e.Generate(&pathproc.SimpleCutter{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{WarnSelfIntersection}, res.Warnings)
	assert.Len(t, res.Paths, 4)
}

func TestStrategyProcessors(t *testing.T) {
	assert.NoError(t, StrategyPush.CheckProcessor(pathproc.KindContour))
	err := StrategyDrop.CheckProcessor(pathproc.KindContour)
	assert.True(t, errors.Is(err, ErrUnsupported))
	s, err := ParseStrategy("Engrave")
	require.NoError(t, err)
	assert.Equal(t, StrategyEngrave, s)
	_, err = ParseStrategy("spiral")
	assert.Error(t, err)
}

func BenchmarkDropCutter(b *testing.B) {
	m := geom.NewModel(must3.Hemisphere(10, 32)...)
	d := DropCutter{
		Model:  m,
		Cutter: cutter.NewSpherical(1, 10),
		Grid:   motion.Grid{Box: box(-12, -12, 0, 12, 12, 15), LineDistance: 0.5},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Generate(&pathproc.PathAccumulator{}, nil)
	}
}
