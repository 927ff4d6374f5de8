package dynamics

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/bonephys/pkg/math"
)

// Constraint restricts the relative motion of a pair of bodies. Constraints
// are solved once per sub-step, before contacts.
type Constraint interface {
	bodies() (*Body, *Body)
	solve(h float32)
}

// Generic6DofSpringConstraint constrains all six relative degrees of
// freedom between two bodies, each axis independently limited and
// optionally driven by a spring toward the rest pose.
//
// Axis indices are 0-2 for linear X/Y/Z and 3-5 for angular X/Y/Z,
// expressed in constraint frame A. Per-axis limit semantics follow the
// usual 6-DoF convention: lower > upper leaves the axis free, lower ==
// upper locks it, anything else is a hard range.
type Generic6DofSpringConstraint struct {
	bodyA, bodyB   *Body
	frameA, frameB math.Transform

	linearLower  math.Vec3
	linearUpper  math.Vec3
	angularLower math.Vec3
	angularUpper math.Vec3

	springEnabled [6]bool
	stiffness     [6]float32
	springDamping [6]float32
}

// NewGeneric6DofSpringConstraint creates a 6-DoF spring constraint between
// two bodies. frameA and frameB are the constraint frame in each body's
// local space. Linear axes default to locked, angular axes to free.
func NewGeneric6DofSpringConstraint(a, b *Body, frameA, frameB math.Transform) *Generic6DofSpringConstraint {
	c := &Generic6DofSpringConstraint{
		bodyA:        a,
		bodyB:        b,
		frameA:       frameA,
		frameB:       frameB,
		angularLower: math.Vec3{X: 1, Y: 1, Z: 1},
		angularUpper: math.Vec3{X: -1, Y: -1, Z: -1},
	}
	for i := range c.springDamping {
		c.springDamping[i] = 1
	}
	return c
}

// SetLinearLowerLimit sets the per-axis linear lower limits.
func (c *Generic6DofSpringConstraint) SetLinearLowerLimit(v math.Vec3) {
	c.linearLower = v
}

// SetLinearUpperLimit sets the per-axis linear upper limits.
func (c *Generic6DofSpringConstraint) SetLinearUpperLimit(v math.Vec3) {
	c.linearUpper = v
}

// SetAngularLowerLimit sets the per-axis angular lower limits in radians.
func (c *Generic6DofSpringConstraint) SetAngularLowerLimit(v math.Vec3) {
	c.angularLower = v
}

// SetAngularUpperLimit sets the per-axis angular upper limits in radians.
func (c *Generic6DofSpringConstraint) SetAngularUpperLimit(v math.Vec3) {
	c.angularUpper = v
}

// EnableSpring toggles the spring on axis (0-5).
func (c *Generic6DofSpringConstraint) EnableSpring(axis int, enabled bool) {
	c.springEnabled[axis] = enabled
}

// SetStiffness sets the spring stiffness on axis (0-5).
func (c *Generic6DofSpringConstraint) SetStiffness(axis int, stiffness float32) {
	c.stiffness[axis] = stiffness
}

// SetSpringDamping sets the spring damping ratio on axis (0-5). Default 1.
func (c *Generic6DofSpringConstraint) SetSpringDamping(axis int, damping float32) {
	c.springDamping[axis] = damping
}

func (c *Generic6DofSpringConstraint) bodies() (*Body, *Body) {
	return c.bodyA, c.bodyB
}

// solve applies spring forces and limit impulses for the sub-step.
func (c *Generic6DofSpringConstraint) solve(h float32) {
	fA := c.bodyA.transform.Mul(c.frameA)
	fB := c.bodyB.transform.Mul(c.frameB)

	c.solveLinear(h, fA, fB)
	c.solveAngular(h, fA, fB)
}

func (c *Generic6DofSpringConstraint) solveLinear(h float32, fA, fB math.Transform) {
	ra := fA.Origin.Sub(c.bodyA.transform.Origin)
	rb := fB.Origin.Sub(c.bodyB.transform.Origin)
	diff := fB.Origin.Sub(fA.Origin)

	for i := 0; i < 3; i++ {
		axis := fA.AxisColumn(i)
		d := axis.Dot(diff)
		relVel := c.bodyB.velocityAt(rb).Sub(c.bodyA.velocityAt(ra)).Dot(axis)

		if c.springEnabled[i] && c.stiffness[i] != 0 {
			k := effectiveMass(c.bodyA, c.bodyB, ra, rb, axis)
			if k > 0 {
				// Critical damping scaled by the per-axis ratio.
				cd := c.springDamping[i] * 2 * math32.Sqrt(abs(c.stiffness[i])/k)
				force := -c.stiffness[i]*d - cd*relVel
				impulse := axis.Scale(force * h)
				c.bodyA.applyImpulse(impulse.Neg(), ra)
				c.bodyB.applyImpulse(impulse, rb)
				relVel = c.bodyB.velocityAt(rb).Sub(c.bodyA.velocityAt(ra)).Dot(axis)
			}
		}

		lo := c.linearLower.Axis(i)
		hi := c.linearUpper.Axis(i)
		if lo > hi {
			continue // free axis
		}
		var violation float32
		switch {
		case d < lo:
			violation = d - lo
		case d > hi:
			violation = d - hi
		default:
			continue
		}

		k := effectiveMass(c.bodyA, c.bodyB, ra, rb, axis)
		if k <= 0 {
			continue
		}
		target := -baumgarte / h * violation
		j := (target - relVel) / k
		impulse := axis.Scale(j)
		c.bodyA.applyImpulse(impulse.Neg(), ra)
		c.bodyB.applyImpulse(impulse, rb)
	}
}

func (c *Generic6DofSpringConstraint) solveAngular(h float32, fA, fB math.Transform) {
	angles := fA.Rot.Conjugate().Mul(fB.Rot).EulerXYZ()
	relAng := c.bodyB.angularVel.Sub(c.bodyA.angularVel)

	for i := 0; i < 3; i++ {
		axis := fA.AxisColumn(i)
		theta := angles.Axis(i)
		relVel := relAng.Dot(axis)

		if c.springEnabled[3+i] && c.stiffness[3+i] != 0 {
			k := angularEffectiveMass(c.bodyA, c.bodyB, axis)
			if k > 0 {
				cd := c.springDamping[3+i] * 2 * math32.Sqrt(abs(c.stiffness[3+i])/k)
				torque := -c.stiffness[3+i]*theta - cd*relVel
				impulse := axis.Scale(torque * h)
				c.bodyA.applyAngularImpulse(impulse.Neg())
				c.bodyB.applyAngularImpulse(impulse)
				relAng = c.bodyB.angularVel.Sub(c.bodyA.angularVel)
				relVel = relAng.Dot(axis)
			}
		}

		lo := c.angularLower.Axis(i)
		hi := c.angularUpper.Axis(i)
		if lo > hi {
			continue
		}
		var violation float32
		switch {
		case theta < lo:
			violation = theta - lo
		case theta > hi:
			violation = theta - hi
		default:
			continue
		}

		k := angularEffectiveMass(c.bodyA, c.bodyB, axis)
		if k <= 0 {
			continue
		}
		target := -baumgarte / h * violation
		j := (target - relVel) / k
		impulse := axis.Scale(j)
		c.bodyA.applyAngularImpulse(impulse.Neg())
		c.bodyB.applyAngularImpulse(impulse)
		relAng = c.bodyB.angularVel.Sub(c.bodyA.angularVel)
	}
}

// angularEffectiveMass returns the inverse of the angular-impulse-to-
// angular-velocity ratio about axis.
func angularEffectiveMass(a, b *Body, axis math.Vec3) float32 {
	return axis.Dot(a.mulInvInertiaWorld(axis)) + axis.Dot(b.mulInvInertiaWorld(axis))
}
