package spatial

import (
	"math"
	"sort"

	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	bihLeaf = iota
	bihX
	bihY
	bihZ
)

const bihLeafSize = 4

var _ Index = (*BIH)(nil)

// BIH is a bounding interval hierarchy. Each internal node splits its
// items in two halves along the longest axis and stores two clipping
// planes: the highest coordinate of the left half and the lowest of the
// right half.
//
// Inserted boxes are kept in an overflow list scanned linearly until it
// grows large enough to justify a rebuild.
type BIH struct {
	nodes []bihNode
	items []bihItem
	// overflow holds items inserted after the last build.
	overflow []bihItem
}

type bihNode struct {
	// flags holds the clip axis in the lower two bits
	// and the index of the left child in the rest.
	flags int
	// Clipping planes of internal nodes.
	leftClip, rightClip float64
	// Item range of leaves.
	start, end int
}

func (b *bihNode) isLeaf() bool { return b.flags&3 == bihLeaf }
func (b *bihNode) axis() int    { return b.flags&3 - 1 }
func (b *bihNode) child() int   { return b.flags >> 2 }

type bihItem struct {
	id       int
	box      d3.Box
	centroid r3.Vec
}

// NewBIH builds a hierarchy over boxes.
func NewBIH(boxes []d3.Box) *BIH {
	b := &BIH{items: make([]bihItem, len(boxes))}
	for i := range boxes {
		b.items[i] = bihItem{id: i, box: boxes[i], centroid: boxes[i].Center()}
	}
	b.build()
	return b
}

func (b *BIH) build() {
	b.items = append(b.items, b.overflow...)
	b.overflow = b.overflow[:0]
	b.nodes = make([]bihNode, 1, 2*len(b.items)/bihLeafSize+1)
	b.nodes = b.subdivide(b.nodes, 0, 0, b.items)
}

func (b *BIH) subdivide(nodes []bihNode, nodeIdx, itemIdx int, items []bihItem) []bihNode {
	if len(items) <= bihLeafSize {
		nodes[nodeIdx] = bihNode{flags: bihLeaf, start: itemIdx, end: itemIdx + len(items)}
		return nodes
	}
	bb := d3.EmptyBox()
	for i := range items {
		bb = bb.Include(items[i].centroid)
	}
	// Classical heuristic: longest axis with the median as pivot.
	dims := bb.Size()
	var clip int
	switch {
	case dims.X >= dims.Y && dims.X >= dims.Z:
		clip = bihX
	case dims.Y >= dims.Z:
		clip = bihY
	default:
		clip = bihZ
	}
	axis := clip - 1
	sort.Slice(items, func(i, j int) bool {
		return vecElem(items[i].centroid, axis) < vecElem(items[j].centroid, axis)
	})
	half := len(items) / 2
	leftMax, rightMin := math.Inf(-1), math.Inf(1)
	for i := range items[:half] {
		leftMax = math.Max(leftMax, elem(&items[i].box, axis+3))
	}
	for i := range items[half:] {
		rightMin = math.Min(rightMin, elem(&items[half+i].box, axis))
	}

	childIdx := len(nodes)
	nodes = append(nodes, bihNode{}, bihNode{})
	nodes = b.subdivide(nodes, childIdx, itemIdx, items[:half])
	nodes = b.subdivide(nodes, childIdx+1, itemIdx+half, items[half:])
	nodes[nodeIdx] = bihNode{
		flags:     childIdx<<2 | clip,
		leftClip:  leftMax,
		rightClip: rightMin,
	}
	return nodes
}

func (b *BIH) Insert(id int, box d3.Box) {
	b.overflow = append(b.overflow, bihItem{id: id, box: box, centroid: box.Center()})
	if len(b.overflow) > 16+len(b.items)/4 {
		b.build()
	}
}

func (b *BIH) Len() int { return len(b.items) + len(b.overflow) }

func (b *BIH) Query(box d3.Box, fn func(id int) bool) {
	if len(b.items) > 0 && !b.query(0, &box, fn) {
		return
	}
	for i := range b.overflow {
		if b.overflow[i].box.Overlaps(box) && !fn(b.overflow[i].id) {
			return
		}
	}
}

func (b *BIH) query(idx int, box *d3.Box, fn func(int) bool) bool {
	n := &b.nodes[idx]
	if n.isLeaf() {
		for i := n.start; i < n.end; i++ {
			if b.items[i].box.Overlaps(*box) && !fn(b.items[i].id) {
				return false
			}
		}
		return true
	}
	axis := n.axis()
	if elem(box, axis) <= n.leftClip && !b.query(n.child(), box, fn) {
		return false
	}
	if elem(box, axis+3) >= n.rightClip && !b.query(n.child()+1, box, fn) {
		return false
	}
	return true
}

func vecElem(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}
