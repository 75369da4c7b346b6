package intersect

import (
	"math"

	"github.com/soypat/cam"
	"gonum.org/v1/gonum/spatial/r3"
)

// The torus functions model a torus with centre c, unit axis a, major
// radius R (centre to tube centre) and minor radius r (tube radius).

// TorusPlane returns the first contact of the torus with plane pl.
// For a plane perpendicular to the axis the whole bottom ring touches at
// once and the point below the centre is reported.
func TorusPlane(c, a r3.Vec, R, r float64, d r3.Vec, pl Plane) (ccp, cp r3.Vec, t float64) {
	s := r3.Dot(pl.N, d)
	if math.Abs(s) < cam.Epsilon {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	sign := math.Copysign(1, s)
	ccp = r3.Add(c, r3.Scale(sign*r, pl.N))
	if u, ok := unitOrZero(perp(pl.N, a)); ok {
		ccp = r3.Add(ccp, r3.Scale(sign*R, u))
	}
	cp, t = PlanePoint(pl, d, ccp)
	return ccp, cp, t
}

// TorusPoint returns the first contact of the torus with point p by
// solving the quartic of the torus surface along the line of travel.
// Only contacts at t ≥ 0 are considered.
func TorusPoint(c, a r3.Vec, R, r float64, d, p r3.Vec) (ccp, cp r3.Vec, t float64) {
	// The point moves along -d relative to the torus: w(t) = w0 - t*d.
	w0 := r3.Sub(p, c)
	w02 := r3.Norm2(w0)
	aw := r3.Dot(a, w0)
	ad := r3.Dot(a, d)
	alpha := w02 + R*R - r*r
	beta := -2 * r3.Dot(w0, d)
	g0 := w02 - aw*aw
	g1 := beta + 2*aw*ad
	g2 := 1 - ad*ad
	R4 := 4 * R * R
	roots := QuarticRoots(
		2*beta,
		beta*beta+2*alpha-R4*g2,
		2*alpha*beta-R4*g1,
		alpha*alpha-R4*g0,
	)
	for _, root := range roots {
		if root >= -cam.Epsilon {
			return behind(p, d, root), p, root
		}
	}
	return r3.Vec{}, r3.Vec{}, noContact
}

const (
	torusEdgeCoarse = 12
	torusEdgeFine   = 10
	torusEdgePasses = 3
)

// TorusEdge approximates the first contact of the torus with the segment
// p1-p2. There is no closed form, so the segment is sampled uniformly, at
// least every half minor radius, and each local minimum of the samples is
// refined with a few denser passes around it. The result is exact only at
// sample points and may overshoot the true contact distance by a small
// amount.
func TorusEdge(c, a r3.Vec, R, r float64, d, p1, p2 r3.Vec) (ccp, cp r3.Vec, t float64) {
	// Only the part of the segment within the swept volume can be hit.
	smin, smax, ok := sweptSpan(c, R+r, d, p1, p2)
	if !ok {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	t = noContact
	probe := func(s float64) float64 {
		q := r3.Add(p1, r3.Scale(s, r3.Sub(p2, p1)))
		qccp, qcp, qt := TorusPoint(c, a, R, r, d, q)
		if qt < t {
			ccp, cp, t = qccp, qcp, qt
		}
		return qt
	}
	refine := func(bs, bt, step float64) {
		for pass := 0; pass < torusEdgePasses; pass++ {
			lo := math.Max(smin, bs-step)
			hi := math.Min(smax, bs+step)
			step = (hi - lo) / (torusEdgeFine - 1)
			for i := 0; i < torusEdgeFine; i++ {
				s := lo + float64(i)*step
				if qt := probe(s); qt < bt {
					bs, bt = s, qt
				}
			}
		}
	}

	n := torusEdgeCoarse
	span := (smax - smin) * r3.Norm(r3.Sub(p2, p1))
	if m := int(math.Ceil(2*span/r)) + 1; m > n {
		n = m
	}
	step := (smax - smin) / float64(n-1)
	coarse := make([]float64, n)
	for i := range coarse {
		coarse[i] = probe(smin + float64(i)*step)
	}
	for i, ct := range coarse {
		if math.IsInf(ct, 1) {
			continue
		}
		if (i == 0 || ct <= coarse[i-1]) && (i == n-1 || ct < coarse[i+1]) {
			refine(smin+float64(i)*step, ct, step)
		}
	}
	if math.IsInf(t, 1) {
		return r3.Vec{}, r3.Vec{}, noContact
	}
	return ccp, cp, t
}

// sweptSpan returns the parameter range of segment p1-p2 lying within
// distance radius of the line through c along d.
func sweptSpan(c r3.Vec, radius float64, d, p1, p2 r3.Vec) (smin, smax float64, ok bool) {
	wp := perp(r3.Sub(p1, c), d)
	vp := perp(r3.Sub(p2, p1), d)
	qa := r3.Norm2(vp)
	qb := 2 * r3.Dot(wp, vp)
	qc := r3.Norm2(wp) - radius*radius
	if qa < cam.Epsilon*cam.Epsilon {
		return 0, 1, qc <= 0
	}
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	smin = math.Max(0, (-qb-sq)/(2*qa))
	smax = math.Min(1, (-qb+sq)/(2*qa))
	return smin, smax, smin <= smax
}
