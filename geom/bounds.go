package geom

import (
	"fmt"
	"strings"

	"github.com/soypat/cam/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// BoundsKind selects how Bounds are resolved against a reference box.
type BoundsKind int

const (
	// BoundsRelativeMargin grows the reference box by a fraction of its size per axis.
	BoundsRelativeMargin BoundsKind = iota
	// BoundsFixedMargin grows the reference box by absolute distances.
	BoundsFixedMargin
	// BoundsCustom ignores the reference box.
	BoundsCustom
)

func (k BoundsKind) String() string {
	switch k {
	case BoundsRelativeMargin:
		return "relative"
	case BoundsFixedMargin:
		return "fixed"
	case BoundsCustom:
		return "custom"
	}
	return fmt.Sprintf("BoundsKind(%d)", int(k))
}

// ParseBoundsKind parses the String representation of a BoundsKind.
func ParseBoundsKind(s string) (BoundsKind, error) {
	switch strings.ToLower(s) {
	case "relative", "":
		return BoundsRelativeMargin, nil
	case "fixed":
		return BoundsFixedMargin, nil
	case "custom":
		return BoundsCustom, nil
	}
	return 0, fmt.Errorf("unknown bounds kind %q", s)
}

// Bounds describes the region to process. Low and High are margins
// below the reference minimum and above the reference maximum for the
// margin kinds, or absolute corners for BoundsCustom. Negative margins
// shrink the region.
type Bounds struct {
	Kind      BoundsKind
	Low, High r3.Vec
}

// Resolve returns the absolute processing box for reference box ref.
func (b Bounds) Resolve(ref d3.Box) d3.Box {
	switch b.Kind {
	case BoundsRelativeMargin:
		size := ref.Size()
		return d3.Box{
			Min: r3.Sub(ref.Min, mulElem(size, b.Low)),
			Max: r3.Add(ref.Max, mulElem(size, b.High)),
		}
	case BoundsFixedMargin:
		return d3.Box{
			Min: r3.Sub(ref.Min, b.Low),
			Max: r3.Add(ref.Max, b.High),
		}
	}
	return d3.Box{Min: d3.MinElem(b.Low, b.High), Max: d3.MaxElem(b.Low, b.High)}
}

func mulElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}
