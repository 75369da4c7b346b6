package pathproc

import (
	"fmt"
	"strings"
)

// Kind names a Processor implementation.
type Kind int

const (
	KindSimple Kind = iota
	KindAccumulator
	KindZigZag
	KindPolygon
	KindContour
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindAccumulator:
		return "accumulator"
	case KindZigZag:
		return "zigzag"
	case KindPolygon:
		return "polygon"
	case KindContour:
		return "contour"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for k := KindSimple; k <= KindContour; k++ {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown path processor %q", s)
}

// New returns a new Processor of kind k. zigzag configures the
// PathAccumulator. tol is the merge tolerance of the ContourCutter.
func New(k Kind, zigzag bool, tol float64) (Processor, error) {
	switch k {
	case KindSimple:
		return &SimpleCutter{}, nil
	case KindAccumulator:
		return &PathAccumulator{ZigZag: zigzag}, nil
	case KindZigZag:
		return &ZigZagCutter{}, nil
	case KindPolygon:
		return &PolygonCutter{}, nil
	case KindContour:
		return NewContourCutter(tol), nil
	}
	return nil, fmt.Errorf("unknown path processor %v", k)
}
