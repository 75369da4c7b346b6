package cutter

import (
	"math"

	"github.com/soypat/cam"
	"github.com/soypat/cam/geom"
	"github.com/soypat/cam/intersect"
	"gonum.org/v1/gonum/spatial/r3"
)

func plane(t *geom.Triangle) intersect.Plane {
	return intersect.Plane{P: t.P1, N: t.N}
}

// sideContact checks the vertical side of the tool: a cylinder of the
// given radius around the axis through start, spanning heights [zlo, zhi]
// at the start position. Only motion with a horizontal component can
// touch the side first.
func sideContact(best *Contact, t *geom.Triangle, d, start r3.Vec, radius, zlo, zhi float64) {
	if math.Hypot(d.X, d.Y) < cam.Epsilon {
		return
	}
	axis := r3.Vec{X: start.X, Y: start.Y}
	inShaft := func(ccp r3.Vec) bool {
		return ccp.Z >= zlo-cam.Epsilon && ccp.Z <= zhi+cam.Epsilon
	}

	// Vertical faces: the side touches a vertical line of the face.
	if _, cp, dist := intersect.CylinderPlane(axis, axisZ, radius, d, plane(t)); !math.IsInf(dist, 1) {
		lo, hi, ok := verticalSpan(t, cp)
		slo, shi := zlo+dist*d.Z, zhi+dist*d.Z
		if ok && lo <= shi+cam.Epsilon && hi >= slo-cam.Epsilon {
			cp.Z = math.Max(lo, slo)
			best.consider(start, d, cp, dist)
		}
	}

	for _, e := range t.Edges() {
		if e.Degenerate() {
			continue
		}
		if math.Abs(e.Dir().Z) > 1-cam.Epsilon {
			// Vertical edge: the contact distance does not depend on height.
			_, cp, dist := intersect.CylinderPoint(axis, axisZ, radius, d, e.P1)
			if math.IsInf(dist, 1) {
				continue
			}
			elo, ehi := math.Min(e.P1.Z, e.P2.Z), math.Max(e.P1.Z, e.P2.Z)
			slo, shi := zlo+dist*d.Z, zhi+dist*d.Z
			if elo <= shi+cam.Epsilon && ehi >= slo-cam.Epsilon {
				cp.Z = math.Max(elo, slo)
				best.consider(start, d, cp, dist)
			}
			continue
		}
		ccp, cp, dist := intersect.CylinderLine(axis, axisZ, radius, d, e.P1, e.Dir())
		if !math.IsInf(dist, 1) && e.Spans(cp) && inShaft(ccp) {
			best.consider(start, d, cp, dist)
		}
	}

	for _, p := range t.Vertices() {
		ccp, cp, dist := intersect.CylinderPoint(axis, axisZ, radius, d, p)
		if !math.IsInf(dist, 1) && inShaft(ccp) {
			best.consider(start, d, cp, dist)
		}
	}
}

// verticalSpan returns the height range covered by a vertical triangle
// along the vertical line through p.
func verticalSpan(t *geom.Triangle, p r3.Vec) (lo, hi float64, ok bool) {
	u := r3.Vec{X: -t.N.Y, Y: t.N.X}
	n := math.Hypot(u.X, u.Y)
	if n < cam.Epsilon {
		return 0, 0, false
	}
	u = r3.Scale(1/n, u)
	h := r3.Dot(r3.Sub(p, t.P1), u)
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, e := range t.Edges() {
		ha := r3.Dot(r3.Sub(e.P1, t.P1), u)
		hb := r3.Dot(r3.Sub(e.P2, t.P1), u)
		if h < math.Min(ha, hb)-cam.Epsilon || h > math.Max(ha, hb)+cam.Epsilon {
			continue
		}
		if math.Abs(hb-ha) < cam.Epsilon {
			lo = math.Min(lo, math.Min(e.P1.Z, e.P2.Z))
			hi = math.Max(hi, math.Max(e.P1.Z, e.P2.Z))
			continue
		}
		s := cam.Clamp((h-ha)/(hb-ha), 0, 1)
		z := e.P1.Z + s*(e.P2.Z-e.P1.Z)
		lo = math.Min(lo, z)
		hi = math.Max(hi, z)
	}
	return lo, hi, lo <= hi
}
