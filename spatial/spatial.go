// Package spatial implements range indices over axis aligned boxes.
// Items are identified by dense integer ids handed out by their owner.
package spatial

import (
	"fmt"
	"math"
	"strings"

	"github.com/soypat/cam/internal/d3"
)

// Index answers "which boxes overlap this box" queries. Query boxes may
// have infinite components to describe unbounded ranges. Boxes that only
// touch the query box are reported.
//
// Insert must not be called concurrently with other methods.
// Query is safe for concurrent use.
type Index interface {
	Insert(id int, box d3.Box)
	// Query calls fn for every id whose box overlaps box.
	// Iteration stops early if fn returns false.
	Query(box d3.Box, fn func(id int) bool)
	Len() int
}

// Kind selects an Index implementation.
type Kind int

const (
	// KindKDTree is a k-d tree over 6 dimensional box corners.
	KindKDTree Kind = iota
	// KindBIH is a bounding interval hierarchy.
	KindBIH
	// KindLinear scans all boxes on every query.
	KindLinear
)

func (k Kind) String() string {
	switch k {
	case KindKDTree:
		return "kdtree"
	case KindBIH:
		return "bih"
	case KindLinear:
		return "linear"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses the String representation of a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "kdtree", "kd", "":
		return KindKDTree, nil
	case "bih":
		return KindBIH, nil
	case "linear", "none":
		return KindLinear, nil
	}
	return 0, fmt.Errorf("unknown index kind %q", s)
}

// New builds an index of kind k over boxes, where the id of each box is
// its position in the slice.
func New(k Kind, boxes []d3.Box) Index {
	switch k {
	case KindKDTree:
		return NewKDTree(boxes)
	case KindBIH:
		return NewBIH(boxes)
	case KindLinear:
		return NewLinear(boxes)
	}
	panic("unknown index kind " + k.String())
}

// Linear is the brute force Index.
type Linear struct {
	ids   []int
	boxes []d3.Box
}

// NewLinear returns a Linear index over boxes.
func NewLinear(boxes []d3.Box) *Linear {
	l := &Linear{}
	for i, b := range boxes {
		l.Insert(i, b)
	}
	return l
}

func (l *Linear) Insert(id int, box d3.Box) {
	l.ids = append(l.ids, id)
	l.boxes = append(l.boxes, box)
}

func (l *Linear) Query(box d3.Box, fn func(id int) bool) {
	for i := range l.boxes {
		if l.boxes[i].Overlaps(box) && !fn(l.ids[i]) {
			return
		}
	}
}

func (l *Linear) Len() int { return len(l.ids) }

// Collect returns the ids of all boxes in idx overlapping box, in query order.
func Collect(idx Index, box d3.Box, dst []int) []int {
	idx.Query(box, func(id int) bool {
		dst = append(dst, id)
		return true
	})
	return dst
}

// elem returns component i of the box in min,max order: minx, miny, minz, maxx, maxy, maxz.
func elem(b *d3.Box, i int) float64 {
	switch i {
	case 0:
		return b.Min.X
	case 1:
		return b.Min.Y
	case 2:
		return b.Min.Z
	case 3:
		return b.Max.X
	case 4:
		return b.Max.Y
	case 5:
		return b.Max.Z
	}
	panic("bad box element")
}

var inf = math.Inf(1)
