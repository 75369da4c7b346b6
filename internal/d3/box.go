package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is a 3d axis aligned bounding box. Components of Min and Max
// may be infinite to describe a box unbounded along that axis.
type Box r3.Box

// EmptyBox returns a box that contains nothing. Including a point
// in it yields a zero size box around that point.
func EmptyBox() Box {
	return Box{
		Min: Elem(math.Inf(1)),
		Max: Elem(math.Inf(-1)),
	}
}

// InfiniteBox returns a box containing all of space.
func InfiniteBox() Box {
	return Box{
		Min: Elem(math.Inf(-1)),
		Max: Elem(math.Inf(1)),
	}
}

// NewBox creates a 3d box with a given center and size.
func NewBox(center, size r3.Vec) Box {
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// BoxOf returns the smallest box containing all points.
func BoxOf(points ...r3.Vec) Box {
	b := EmptyBox()
	for _, p := range points {
		b = b.Include(p)
	}
	return b
}

// Empty returns true if the box contains no point.
func (a Box) Empty() bool {
	return a.Min.X > a.Max.X || a.Min.Y > a.Max.Y || a.Min.Z > a.Max.Z
}

// Equals test the equality of 3d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Extend returns a box enclosing two 3d boxes.
func (a Box) Extend(b Box) Box {
	return Box{
		Min: MinElem(a.Min, b.Min),
		Max: MaxElem(a.Max, b.Max),
	}
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Translate translates a 3d box.
func (a Box) Translate(v r3.Vec) Box {
	return Box{r3.Add(a.Min, v), r3.Add(a.Max, v)}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// Overlaps returns true if the boxes share at least one point.
// Touching boxes overlap.
func (a Box) Overlaps(b Box) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}

// Vertices returns a slice of 3d box corner vertices.
func (a Box) Vertices() Set {
	v := make([]r3.Vec, 8)
	v[0] = a.Min
	v[1] = r3.Vec{X: a.Min.X, Y: a.Min.Y, Z: a.Max.Z}
	v[2] = r3.Vec{X: a.Min.X, Y: a.Max.Y, Z: a.Min.Z}
	v[3] = r3.Vec{X: a.Min.X, Y: a.Max.Y, Z: a.Max.Z}
	v[4] = r3.Vec{X: a.Max.X, Y: a.Min.Y, Z: a.Min.Z}
	v[5] = r3.Vec{X: a.Max.X, Y: a.Min.Y, Z: a.Max.Z}
	v[6] = r3.Vec{X: a.Max.X, Y: a.Max.Y, Z: a.Min.Z}
	v[7] = a.Max
	return v
}

