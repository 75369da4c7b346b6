package spatial

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func randomBoxes(rng *rand.Rand, n int) []d3.Box {
	boxes := make([]d3.Box, n)
	for i := range boxes {
		c := r3.Vec{X: rng.Float64() * 100, Y: rng.Float64() * 100, Z: rng.Float64() * 20}
		s := r3.Vec{X: rng.Float64() * 5, Y: rng.Float64() * 5, Z: rng.Float64() * 5}
		boxes[i] = d3.NewBox(c, s)
	}
	return boxes
}

func bruteForce(boxes []d3.Box, q d3.Box) []int {
	var ids []int
	for i := range boxes {
		if boxes[i].Overlaps(q) {
			ids = append(ids, i)
		}
	}
	return ids
}

func sameIDs(t *testing.T, name string, got, want []int) {
	t.Helper()
	sort.Ints(got)
	if len(got) != len(want) {
		t.Fatalf("%s: got %d ids. want %d", name, len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s: id mismatch at %d: got %d. want %d", name, i, got[i], want[i])
		}
	}
}

func TestIndexMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	boxes := randomBoxes(rng, 500)
	inf := math.Inf(1)
	queries := []d3.Box{
		d3.NewBox(r3.Vec{X: 50, Y: 50, Z: 10}, r3.Vec{X: 10, Y: 10, Z: 10}),
		d3.NewBox(r3.Vec{X: 0, Y: 0, Z: 0}, r3.Vec{X: 1, Y: 1, Z: 1}),
		// Unbounded along z and x.
		{Min: r3.Vec{X: -inf, Y: 20, Z: -inf}, Max: r3.Vec{X: inf, Y: 21, Z: inf}},
		d3.InfiniteBox(),
	}
	for _, kind := range []Kind{KindKDTree, KindBIH, KindLinear} {
		idx := New(kind, boxes)
		if idx.Len() != len(boxes) {
			t.Errorf("%s: got len %d. want %d", kind, idx.Len(), len(boxes))
		}
		for _, q := range queries {
			sameIDs(t, kind.String(), Collect(idx, q, nil), bruteForce(boxes, q))
		}
	}
}

func TestIndexInsert(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	boxes := randomBoxes(rng, 300)
	q := d3.NewBox(r3.Vec{X: 40, Y: 60, Z: 10}, r3.Vec{X: 30, Y: 30, Z: 30})
	for _, kind := range []Kind{KindKDTree, KindBIH, KindLinear} {
		idx := New(kind, boxes[:10])
		for i := 10; i < len(boxes); i++ {
			idx.Insert(i, boxes[i])
		}
		if idx.Len() != len(boxes) {
			t.Errorf("%s: got len %d. want %d", kind, idx.Len(), len(boxes))
		}
		sameIDs(t, kind.String(), Collect(idx, q, nil), bruteForce(boxes, q))
	}
}

func TestIndexTouching(t *testing.T) {
	boxes := []d3.Box{
		{Min: r3.Vec{}, Max: r3.Vec{X: 1, Y: 1, Z: 1}},
		{Min: r3.Vec{X: 2}, Max: r3.Vec{X: 3, Y: 1, Z: 1}},
	}
	q := d3.Box{Min: r3.Vec{X: 1}, Max: r3.Vec{X: 2, Y: 1, Z: 1}}
	for _, kind := range []Kind{KindKDTree, KindBIH, KindLinear} {
		sameIDs(t, kind.String(), Collect(New(kind, boxes), q, nil), []int{0, 1})
	}
}

func TestIndexEarlyStop(t *testing.T) {
	boxes := randomBoxes(rand.New(rand.NewSource(3)), 100)
	for _, kind := range []Kind{KindKDTree, KindBIH, KindLinear} {
		n := 0
		New(kind, boxes).Query(d3.InfiniteBox(), func(int) bool {
			n++
			return n < 3
		})
		if n != 3 {
			t.Errorf("%s: got %d calls. want 3", kind, n)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindKDTree, KindBIH, KindLinear} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q): got %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("octree"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func BenchmarkKDTreeQuery(b *testing.B) {
	boxes := randomBoxes(rand.New(rand.NewSource(4)), 10000)
	idx := NewKDTree(boxes)
	q := d3.NewBox(r3.Vec{X: 50, Y: 50, Z: 10}, r3.Vec{X: 4, Y: 4, Z: 100})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Query(q, func(int) bool { return true })
	}
}
