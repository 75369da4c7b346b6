package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Box is a 2d bounding box.
type Box r2.Box

// EmptyBox returns a box containing nothing, ready to Include points.
func EmptyBox() Box {
	return Box{Min: Elem(math.Inf(1)), Max: Elem(math.Inf(-1))}
}

// BoxOf returns the smallest box containing all points.
func BoxOf(points ...r2.Vec) Box {
	b := EmptyBox()
	for _, p := range points {
		b = b.Include(p)
	}
	return b
}

// Equals test the equality of 2d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Extend returns a box enclosing two 2d boxes.
func (a Box) Extend(b Box) Box {
	return Box{
		Min: MinElem(a.Min, b.Min),
		Max: MaxElem(a.Max, b.Max),
	}
}

// Include enlarges a 2d box to include a point.
func (a Box) Include(v r2.Vec) Box {
	return Box{MinElem(a.Min, v), MaxElem(a.Max, v)}
}

// Size returns the size of a 2d box.
func (a Box) Size() r2.Vec {
	return r2.Sub(a.Max, a.Min)
}

// Center returns the center of a 2d box.
func (a Box) Center() r2.Vec {
	return r2.Add(a.Min, r2.Scale(0.5, a.Size()))
}

// Contains checks if the 2d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r2.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y &&
		v.X <= a.Max.X && v.Y <= a.Max.Y
}

// Overlaps reports whether the boxes, each grown by tol, share a point.
func (a Box) Overlaps(b Box, tol float64) bool {
	return a.Min.X <= b.Max.X+tol && b.Min.X <= a.Max.X+tol &&
		a.Min.Y <= b.Max.Y+tol && b.Min.Y <= a.Max.Y+tol
}
