package dynamics

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/bonephys/pkg/math"
)

// Solver tuning. Baumgarte feeds a fraction of the remaining penetration
// back as a bias velocity each iteration; the slop keeps resting contacts
// from being pumped with energy.
const (
	velocityIterations   = 10
	baumgarte            = 0.2
	penetrationSlop      = 0.005
	restitutionThreshold = 1.0 // m/s of approach speed below which restitution is ignored
)

// solveContacts resolves a batch of contacts with sequential impulses:
// accumulated, clamped normal impulses with a Baumgarte position bias, and
// two-direction Coulomb friction clamped by the normal impulse.
func solveContacts(contacts []contact, h float32) {
	for i := range contacts {
		c := &contacts[i]
		c.tangent1, c.tangent2 = tangentBasis(c.normal)
	}

	for iter := 0; iter < velocityIterations; iter++ {
		for i := range contacts {
			c := &contacts[i]
			ra := c.point.Sub(c.a.transform.Origin)
			rb := c.point.Sub(c.b.transform.Origin)

			// Normal impulse.
			relVel := c.b.velocityAt(rb).Sub(c.a.velocityAt(ra))
			vn := relVel.Dot(c.normal)
			kn := effectiveMass(c.a, c.b, ra, rb, c.normal)
			if kn <= 0 {
				continue
			}

			restitution := c.a.restitution * c.b.restitution
			target := baumgarte / h * max32(c.depth-penetrationSlop, 0)
			if vn < -restitutionThreshold {
				if bounce := -restitution * vn; bounce > target {
					target = bounce
				}
			}

			dj := (target - vn) / kn
			old := c.normalImpulse
			c.normalImpulse = max32(old+dj, 0)
			dj = c.normalImpulse - old
			impulse := c.normal.Scale(dj)
			c.a.applyImpulse(impulse.Neg(), ra)
			c.b.applyImpulse(impulse, rb)

			// Friction, clamped by the accumulated normal impulse.
			friction := math32.Sqrt(c.a.friction * c.b.friction)
			maxFriction := friction * c.normalImpulse
			relVel = c.b.velocityAt(rb).Sub(c.a.velocityAt(ra))

			solveFriction(c, ra, rb, relVel, c.tangent1, &c.tangentImpulse1, maxFriction)
			relVel = c.b.velocityAt(rb).Sub(c.a.velocityAt(ra))
			solveFriction(c, ra, rb, relVel, c.tangent2, &c.tangentImpulse2, maxFriction)
		}
	}
}

func solveFriction(c *contact, ra, rb, relVel, tangent math.Vec3, accum *float32, maxFriction float32) {
	kt := effectiveMass(c.a, c.b, ra, rb, tangent)
	if kt <= 0 {
		return
	}
	vt := relVel.Dot(tangent)
	dj := -vt / kt
	old := *accum
	*accum = clamp(old+dj, -maxFriction, maxFriction)
	dj = *accum - old
	impulse := tangent.Scale(dj)
	c.a.applyImpulse(impulse.Neg(), ra)
	c.b.applyImpulse(impulse, rb)
}

// effectiveMass returns the inverse of the impulse-to-velocity ratio along
// dir for an impulse applied at the two center offsets.
func effectiveMass(a, b *Body, ra, rb, dir math.Vec3) float32 {
	k := a.invMass + b.invMass
	ta := a.mulInvInertiaWorld(ra.Cross(dir)).Cross(ra)
	tb := b.mulInvInertiaWorld(rb.Cross(dir)).Cross(rb)
	return k + dir.Dot(ta.Add(tb))
}

// tangentBasis returns two unit vectors orthogonal to n and each other.
func tangentBasis(n math.Vec3) (math.Vec3, math.Vec3) {
	var t1 math.Vec3
	if abs(n.X) < 0.9 {
		t1 = n.Cross(math.Vec3{X: 1}).Normalize()
	} else {
		t1 = n.Cross(math.Vec3{Y: 1}).Normalize()
	}
	return t1, n.Cross(t1)
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
