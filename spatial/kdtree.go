package spatial

import (
	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

var (
	_ kdtree.Interface  = kdBoxes{}
	_ kdtree.Comparable = kdBox{}
	_ Index             = (*KDTree)(nil)
)

// KDTree indexes boxes as points in 6 dimensions (the min and max corners).
// A box overlaps the query box Q when each of its min coordinates is at most
// Q.Max and each of its max coordinates is at least Q.Min, which is a
// range query in that space.
type KDTree struct {
	tree *kdtree.Tree
	n    int
}

// NewKDTree builds a balanced tree over boxes.
func NewKDTree(boxes []d3.Box) *KDTree {
	pts := make(kdBoxes, len(boxes))
	for i := range boxes {
		pts[i] = newKDBox(i, boxes[i])
	}
	return &KDTree{
		tree: kdtree.New(pts, false),
		n:    len(pts),
	}
}

func (k *KDTree) Insert(id int, box d3.Box) {
	k.tree.Insert(newKDBox(id, box), false)
	k.n++
}

func (k *KDTree) Len() int { return k.n }

func (k *KDTree) Query(box d3.Box, fn func(id int) bool) {
	var lo, hi [6]float64
	for i := 0; i < 3; i++ {
		lo[i], hi[i] = -inf, elem(&box, i+3)
		lo[i+3], hi[i+3] = elem(&box, i), inf
	}
	if k.tree == nil || k.tree.Root == nil {
		return
	}
	kdQuery(k.tree.Root, &lo, &hi, fn)
}

// kdQuery walks the tree visiting both children on ties, since equal
// keys may end up on either side of a pivot.
func kdQuery(n *kdtree.Node, lo, hi *[6]float64, fn func(int) bool) bool {
	if n == nil {
		return true
	}
	p := n.Point.(kdBox)
	d := int(n.Plane)
	v := p.v[d]
	if lo[d] <= v && !kdQuery(n.Left, lo, hi, fn) {
		return false
	}
	if p.within(lo, hi) && !fn(p.id) {
		return false
	}
	if hi[d] >= v && !kdQuery(n.Right, lo, hi, fn) {
		return false
	}
	return true
}

type kdBox struct {
	id int
	v  [6]float64
}

func newKDBox(id int, b d3.Box) kdBox {
	k := kdBox{id: id}
	for i := range k.v {
		k.v[i] = elem(&b, i)
	}
	return k
}

func (a kdBox) within(lo, hi *[6]float64) bool {
	for i, v := range a.v {
		if v < lo[i] || v > hi[i] {
			return false
		}
	}
	return true
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdBox) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return a.v[d] - b.(kdBox).v[d]
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdBox) Dims() int { return 6 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdBox) Distance(b kdtree.Comparable) float64 {
	bb := b.(kdBox)
	var sum float64
	for i := range a.v {
		d := a.v[i] - bb.v[i]
		sum += d * d
	}
	return sum
}

type kdBoxes []kdBox

func (k kdBoxes) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdBoxes) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdBoxes) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), boxes: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdBoxes) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

type kdPlane struct {
	dim   int
	boxes kdBoxes
}

func (p kdPlane) Less(i, j int) bool {
	return p.boxes[i].v[p.dim] < p.boxes[j].v[p.dim]
}
func (p kdPlane) Swap(i, j int) {
	p.boxes[i], p.boxes[j] = p.boxes[j], p.boxes[i]
}
func (p kdPlane) Len() int {
	return len(p.boxes)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.boxes = p.boxes[start:end]
	return p
}
