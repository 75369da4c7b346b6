package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is an affine transformation of 3D space: a linear 3x3 part
// followed by a translation. The zero value of Transform is the identity.
type Transform struct {
	// The linear part is stored with the identity subtracted so that
	// the zero value is the identity transform:
	//  d00 = x00-1, d11 = x11-1, d22 = x22-1
	d00, x01, x02, x03 float64
	x10, d11, x12, x13 float64
	x20, x21, d22, x23 float64
}

// Transform applies the Transform to the argument point.
func (t Transform) Transform(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: (t.d00+1)*v.X + t.x01*v.Y + t.x02*v.Z + t.x03,
		Y: t.x10*v.X + (t.d11+1)*v.Y + t.x12*v.Z + t.x13,
		Z: t.x20*v.X + t.x21*v.Y + (t.d22+1)*v.Z + t.x23,
	}
}

// Direction applies only the linear part of the Transform to v.
func (t Transform) Direction(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: (t.d00+1)*v.X + t.x01*v.Y + t.x02*v.Z,
		Y: t.x10*v.X + (t.d11+1)*v.Y + t.x12*v.Z,
		Z: t.x20*v.X + t.x21*v.Y + (t.d22+1)*v.Z,
	}
}

// Translate adds v to the positional part of the Transform.
func (t Transform) Translate(v r3.Vec) Transform {
	t.x03 += v.X
	t.x13 += v.Y
	t.x23 += v.Z
	return t
}

// Scale returns the transform followed by a scaling around origin.
func (t Transform) Scale(origin, factor r3.Vec) Transform {
	s := Transform{
		d00: factor.X - 1,
		d11: factor.Y - 1,
		d22: factor.Z - 1,
	}
	s = s.withPivot(origin)
	return s.Mul(t)
}

// RotateZ returns the transform followed by a counter-clockwise rotation
// of angle radians around the Z axis passing through origin.
func (t Transform) RotateZ(origin r3.Vec, angle float64) Transform {
	s, c := math.Sincos(angle)
	r := Transform{
		d00: c - 1, x01: -s,
		x10: s, d11: c - 1,
	}
	r = r.withPivot(origin)
	return r.Mul(t)
}

// withPivot makes a purely linear transform act around origin.
func (t Transform) withPivot(origin r3.Vec) Transform {
	if origin == (r3.Vec{}) {
		return t
	}
	moved := t.Direction(origin)
	return t.Translate(r3.Sub(origin, moved))
}

// Mul returns the composition t∘b: b is applied first, then t.
func (t Transform) Mul(b Transform) Transform {
	if t == (Transform{}) {
		return b
	}
	if b == (Transform{}) {
		return t
	}
	x00, x11, x22 := t.d00+1, t.d11+1, t.d22+1
	y00, y11, y22 := b.d00+1, b.d11+1, b.d22+1
	var m Transform
	m.d00 = x00*y00 + t.x01*b.x10 + t.x02*b.x20 - 1
	m.x01 = x00*b.x01 + t.x01*y11 + t.x02*b.x21
	m.x02 = x00*b.x02 + t.x01*b.x12 + t.x02*y22
	m.x03 = x00*b.x03 + t.x01*b.x13 + t.x02*b.x23 + t.x03

	m.x10 = t.x10*y00 + x11*b.x10 + t.x12*b.x20
	m.d11 = t.x10*b.x01 + x11*y11 + t.x12*b.x21 - 1
	m.x12 = t.x10*b.x02 + x11*b.x12 + t.x12*y22
	m.x13 = t.x10*b.x03 + x11*b.x13 + t.x12*b.x23 + t.x13

	m.x20 = t.x20*y00 + t.x21*b.x10 + x22*b.x20
	m.x21 = t.x20*b.x01 + t.x21*y11 + x22*b.x21
	m.d22 = t.x20*b.x02 + t.x21*b.x12 + x22*y22 - 1
	m.x23 = t.x20*b.x03 + t.x21*b.x13 + x22*b.x23 + t.x23
	return m
}

// Det returns the determinant of the linear part. A negative
// determinant means the transform mirrors space and flips triangle winding.
func (t Transform) Det() float64 {
	x00, x11, x22 := t.d00+1, t.d11+1, t.d22+1
	return x00*(x11*x22-t.x12*t.x21) -
		t.x01*(t.x10*x22-t.x12*t.x20) +
		t.x02*(t.x10*t.x21-x11*t.x20)
}
