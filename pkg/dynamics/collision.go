package dynamics

import (
	"github.com/Faultbox/bonephys/pkg/math"
)

// contact is a single penetrating contact point. The normal points from
// body a toward body b; depth is the penetration along that normal.
type contact struct {
	a, b   *Body
	point  math.Vec3
	normal math.Vec3
	depth  float32

	// Solver state, accumulated across iterations.
	normalImpulse   float32
	tangent1        math.Vec3
	tangent2        math.Vec3
	tangentImpulse1 float32
	tangentImpulse2 float32
}

// collide dispatches narrowphase collision between two bodies and appends
// any contacts to dst.
func collide(dst []contact, a, b *Body) []contact {
	// Planes collide against everything else; normalize order so the plane
	// is always the first argument.
	if _, ok := b.shape.(*StaticPlaneShape); ok {
		a, b = b, a
	}

	switch sa := a.shape.(type) {
	case *StaticPlaneShape:
		return collidePlane(dst, a, sa, b)
	case *SphereShape:
		switch sb := b.shape.(type) {
		case *SphereShape:
			return collideSpheres(dst, a, sa.Radius, a.transform.Origin, b, sb.Radius, b.transform.Origin)
		case *CapsuleShape:
			p0, p1 := sb.segment(b.transform)
			cp := closestPointOnSegment(a.transform.Origin, p0, p1)
			return collideSpheres(dst, a, sa.Radius, a.transform.Origin, b, sb.Radius, cp)
		case *BoxShape:
			return collideSphereBox(dst, a, sa.Radius, a.transform.Origin, b, sb)
		}
	case *CapsuleShape:
		switch sb := b.shape.(type) {
		case *SphereShape:
			p0, p1 := sa.segment(a.transform)
			cp := closestPointOnSegment(b.transform.Origin, p0, p1)
			return collideSpheres(dst, a, sa.Radius, cp, b, sb.Radius, b.transform.Origin)
		case *CapsuleShape:
			a0, a1 := sa.segment(a.transform)
			b0, b1 := sb.segment(b.transform)
			pa, pb := closestPointsOnSegments(a0, a1, b0, b1)
			return collideSpheres(dst, a, sa.Radius, pa, b, sb.Radius, pb)
		case *BoxShape:
			a0, a1 := sa.segment(a.transform)
			// Closest segment point to the box center, refined once against
			// the box surface point it maps to.
			sp := closestPointOnSegment(b.transform.Origin, a0, a1)
			bp := closestPointOnBox(sp, b, sb)
			sp = closestPointOnSegment(bp, a0, a1)
			return collideSphereBox(dst, a, sa.Radius, sp, b, sb)
		}
	case *BoxShape:
		switch sb := b.shape.(type) {
		case *SphereShape:
			n := len(dst)
			dst = collideSphereBox(dst, b, sb.Radius, b.transform.Origin, a, sa)
			return flipContacts(dst, n)
		case *CapsuleShape:
			n := len(dst)
			b0, b1 := sb.segment(b.transform)
			sp := closestPointOnSegment(a.transform.Origin, b0, b1)
			ap := closestPointOnBox(sp, a, sa)
			sp = closestPointOnSegment(ap, b0, b1)
			dst = collideSphereBox(dst, b, sb.Radius, sp, a, sa)
			return flipContacts(dst, n)
		case *BoxShape:
			return collideBoxes(dst, a, sa, b, sb)
		}
	}
	return dst
}

// flipContacts swaps a/b and negates normals for contacts appended after
// index from, restoring the caller's body order.
func flipContacts(dst []contact, from int) []contact {
	for i := from; i < len(dst); i++ {
		dst[i].a, dst[i].b = dst[i].b, dst[i].a
		dst[i].normal = dst[i].normal.Neg()
	}
	return dst
}

func collidePlane(dst []contact, pb *Body, plane *StaticPlaneShape, b *Body) []contact {
	n := pb.transform.Rot.RotatePoint(plane.Normal)
	offset := plane.Offset + n.Dot(pb.transform.Origin)

	addPoint := func(center math.Vec3, radius float32) {
		dist := n.Dot(center) - offset - radius
		if dist < 0 {
			dst = append(dst, contact{
				a:      pb,
				b:      b,
				point:  center.Sub(n.Scale(radius)),
				normal: n,
				depth:  -dist,
			})
		}
	}

	switch sb := b.shape.(type) {
	case *SphereShape:
		addPoint(b.transform.Origin, sb.Radius)
	case *CapsuleShape:
		p0, p1 := sb.segment(b.transform)
		addPoint(p0, sb.Radius)
		addPoint(p1, sb.Radius)
	case *BoxShape:
		for _, corner := range boxCorners(b, sb) {
			addPoint(corner, 0)
		}
	}
	return dst
}

// collideSpheres emits a contact between two sphere centers (also used for
// the swept-sphere cases of capsules).
func collideSpheres(dst []contact, a *Body, ra float32, ca math.Vec3, b *Body, rb float32, cb math.Vec3) []contact {
	d := cb.Sub(ca)
	distSq := d.LengthSq()
	rsum := ra + rb
	if distSq >= rsum*rsum {
		return dst
	}
	var n math.Vec3
	dist := d.Length()
	if dist > 1e-6 {
		n = d.Scale(1 / dist)
	} else {
		n = math.Vec3{Y: 1}
	}
	return append(dst, contact{
		a:      a,
		b:      b,
		point:  ca.Add(n.Scale(ra + (dist-rsum)/2)),
		normal: n,
		depth:  rsum - dist,
	})
}

// closestPointOnBox returns the point of the (oriented) box closest to p.
func closestPointOnBox(p math.Vec3, b *Body, box *BoxShape) math.Vec3 {
	local := b.transform.InvTransformPoint(p)
	clamped := math.Vec3{
		X: clamp(local.X, -box.HalfExtents.X, box.HalfExtents.X),
		Y: clamp(local.Y, -box.HalfExtents.Y, box.HalfExtents.Y),
		Z: clamp(local.Z, -box.HalfExtents.Z, box.HalfExtents.Z),
	}
	return b.transform.TransformPoint(clamped)
}

func collideSphereBox(dst []contact, sb *Body, radius float32, center math.Vec3, bb *Body, box *BoxShape) []contact {
	local := bb.transform.InvTransformPoint(center)
	h := box.HalfExtents
	clamped := math.Vec3{
		X: clamp(local.X, -h.X, h.X),
		Y: clamp(local.Y, -h.Y, h.Y),
		Z: clamp(local.Z, -h.Z, h.Z),
	}

	if clamped != local {
		// Center outside the box: usual closest-point contact.
		closest := bb.transform.TransformPoint(clamped)
		d := closest.Sub(center)
		dist := d.Length()
		if dist >= radius {
			return dst
		}
		n := d.Scale(1 / dist)
		return append(dst, contact{
			a:      sb,
			b:      bb,
			point:  closest,
			normal: n,
			depth:  radius - dist,
		})
	}

	// Center inside the box: push out along the axis of least penetration.
	axis, sign, depth := 0, float32(1), h.X-abs(local.X)
	if d := h.Y - abs(local.Y); d < depth {
		axis, depth = 1, d
	}
	if d := h.Z - abs(local.Z); d < depth {
		axis, depth = 2, d
	}
	if local.Axis(axis) < 0 {
		sign = -1
	}
	var localN math.Vec3
	localN.SetAxis(axis, sign)
	n := bb.transform.Rot.RotatePoint(localN)
	return append(dst, contact{
		a:      sb,
		b:      bb,
		point:  center,
		normal: n.Neg(),
		depth:  depth + radius,
	})
}

// collideBoxes tests each box's corners against the other box. This misses
// edge-edge configurations but holds up for the shallow stacking contacts
// secondary physics produces.
func collideBoxes(dst []contact, a *Body, sa *BoxShape, b *Body, sb *BoxShape) []contact {
	dst = cornersInBox(dst, a, sa, b, sb)
	mark := len(dst)
	return flipContacts(cornersInBox(dst, b, sb, a, sa), mark)
}

// cornersInBox emits contacts for corners of box A inside box B.
func cornersInBox(dst []contact, a *Body, sa *BoxShape, b *Body, sb *BoxShape) []contact {
	h := sb.HalfExtents
	for _, corner := range boxCorners(a, sa) {
		local := b.transform.InvTransformPoint(corner)
		if abs(local.X) >= h.X || abs(local.Y) >= h.Y || abs(local.Z) >= h.Z {
			continue
		}
		axis, sign, depth := 0, float32(1), h.X-abs(local.X)
		if d := h.Y - abs(local.Y); d < depth {
			axis, depth = 1, d
		}
		if d := h.Z - abs(local.Z); d < depth {
			axis, depth = 2, d
		}
		if local.Axis(axis) < 0 {
			sign = -1
		}
		var localN math.Vec3
		localN.SetAxis(axis, sign)
		dst = append(dst, contact{
			a:      a,
			b:      b,
			point:  corner,
			normal: b.transform.Rot.RotatePoint(localN).Neg(),
			depth:  depth,
		})
	}
	return dst
}

func boxCorners(b *Body, box *BoxShape) [8]math.Vec3 {
	h := box.HalfExtents
	var out [8]math.Vec3
	i := 0
	for _, x := range [2]float32{-h.X, h.X} {
		for _, y := range [2]float32{-h.Y, h.Y} {
			for _, z := range [2]float32{-h.Z, h.Z} {
				out[i] = b.transform.TransformPoint(math.Vec3{X: x, Y: y, Z: z})
				i++
			}
		}
	}
	return out
}

// closestPointOnSegment returns the point on segment [a, b] closest to p.
func closestPointOnSegment(p, a, b math.Vec3) math.Vec3 {
	ab := b.Sub(a)
	denom := ab.LengthSq()
	if denom < 1e-12 {
		return a
	}
	t := clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
	return a.Add(ab.Scale(t))
}

// closestPointsOnSegments returns the closest pair of points between two
// segments.
func closestPointsOnSegments(p1, q1, p2, q2 math.Vec3) (math.Vec3, math.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.LengthSq()
	e := d2.LengthSq()
	f := d2.Dot(r)

	var s, t float32
	switch {
	case a < 1e-12 && e < 1e-12:
		return p1, p2
	case a < 1e-12:
		t = clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e < 1e-12 {
			s = clamp(-c/a, 0, 1)
		} else {
			bb := d1.Dot(d2)
			denom := a*e - bb*bb
			if denom > 1e-12 {
				s = clamp((bb*f-c*e)/denom, 0, 1)
			}
			t = (bb*s + f) / e
			if t < 0 {
				t = 0
				s = clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = clamp((bb-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Scale(s)), p2.Add(d2.Scale(t))
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
