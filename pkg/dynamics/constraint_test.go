package dynamics

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/bonephys/pkg/math"
)

// anchorAt returns an immovable body to hang things from.
func anchorAt(at math.Vec3) *Body {
	b := NewBody(BodyConfig{
		Shape:       NewSphereShape(0.1),
		MotionState: NewDefaultMotionState(math.Transform{Rot: math.QuatIdentity(), Origin: at}),
	})
	b.SetSleepingAllowed(false)
	return b
}

func TestLockedLinearAxesHoldBody(t *testing.T) {
	w := NewWorld()
	anchor := anchorAt(math.Vec3{Y: 2})
	hanging := dynamicSphere(0.2, 1, math.Vec3{Y: 2})
	w.AddBody(anchor)
	w.AddBody(hanging)

	// Constraint frame at the shared origin, all linear axes locked at
	// zero (the constructor default), angular axes free.
	joint := math.Transform{Rot: math.QuatIdentity(), Origin: math.Vec3{Y: 2}}
	frameA := anchor.Transform().Inverse().Mul(joint)
	frameB := hanging.Transform().Inverse().Mul(joint)
	c := NewGeneric6DofSpringConstraint(anchor, hanging, frameA, frameB)
	w.AddConstraint(c, true)

	for i := 0; i < 120; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	// Two seconds of free fall would be ~19m; the lock must keep the body
	// essentially at the anchor.
	if d := hanging.Transform().Origin.Distance(math.Vec3{Y: 2}); d > 0.1 {
		t.Errorf("locked joint drifted %v from anchor", d)
	}
}

func TestFreeAxesDoNotConstrain(t *testing.T) {
	w := NewWorld()
	anchor := anchorAt(math.Vec3{Y: 5})
	falling := dynamicSphere(0.2, 1, math.Vec3{Y: 5})
	w.AddBody(anchor)
	w.AddBody(falling)

	c := NewGeneric6DofSpringConstraint(anchor, falling,
		math.TransformIdentity(), math.TransformIdentity())
	// lower > upper frees an axis.
	c.SetLinearLowerLimit(math.Vec3{X: 1, Y: 1, Z: 1})
	c.SetLinearUpperLimit(math.Vec3{X: -1, Y: -1, Z: -1})
	w.AddConstraint(c, true)

	for i := 0; i < 60; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	if y := falling.Transform().Origin.Y; y > 1 {
		t.Errorf("free-axis joint restrained fall: y = %v", y)
	}
}

func TestLinearRangeLimitStopsBody(t *testing.T) {
	w := NewWorld()
	anchor := anchorAt(math.Vec3{Y: 3})
	hanging := dynamicSphere(0.2, 1, math.Vec3{Y: 3})
	w.AddBody(anchor)
	w.AddBody(hanging)

	joint := math.Transform{Rot: math.QuatIdentity(), Origin: math.Vec3{Y: 3}}
	c := NewGeneric6DofSpringConstraint(anchor, hanging,
		anchor.Transform().Inverse().Mul(joint),
		hanging.Transform().Inverse().Mul(joint))
	// X and Z locked, Y allowed to slide down half a meter.
	c.SetLinearLowerLimit(math.Vec3{Y: -0.5})
	c.SetLinearUpperLimit(math.Vec3{})
	w.AddConstraint(c, true)

	for i := 0; i < 300; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	y := hanging.Transform().Origin.Y
	if y < 2.4 || y > 2.7 {
		t.Errorf("range-limited body at y = %v, want ~2.5", y)
	}
}

func TestLinearSpringPullsTowardRest(t *testing.T) {
	w := NewWorld()
	w.SetGravity(math.Vec3{})
	anchor := anchorAt(math.Vec3{})
	moving := dynamicSphere(0.2, 1, math.Vec3{X: 1})
	w.AddBody(anchor)
	w.AddBody(moving)

	c := NewGeneric6DofSpringConstraint(anchor, moving,
		math.TransformIdentity(), math.TransformIdentity())
	c.SetLinearLowerLimit(math.Vec3{X: 1, Y: 1, Z: 1})
	c.SetLinearUpperLimit(math.Vec3{X: -1, Y: -1, Z: -1})
	c.EnableSpring(0, true)
	c.SetStiffness(0, 60)
	w.AddConstraint(c, true)

	start := math32.Abs(moving.Transform().Origin.X)
	for i := 0; i < 300; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	if got := math32.Abs(moving.Transform().Origin.X); got > start/2 {
		t.Errorf("spring displacement %v did not decay from %v", got, start)
	}
}

func TestAngularSpringRightsRotation(t *testing.T) {
	w := NewWorld()
	w.SetGravity(math.Vec3{})
	anchor := anchorAt(math.Vec3{})

	shape := NewBoxShape(math.Vec3{X: 0.2, Y: 0.2, Z: 0.2})
	tilted := NewBody(BodyConfig{
		Mass:  1,
		Shape: shape,
		MotionState: NewDefaultMotionState(math.Transform{
			Rot: math.QuatFromAxisAngle(math.Vec3{X: 1}, 0.6),
		}),
		LocalInertia: shape.Inertia(1),
	})
	tilted.SetSleepingAllowed(false)
	w.AddBody(anchor)
	w.AddBody(tilted)

	c := NewGeneric6DofSpringConstraint(anchor, tilted,
		math.TransformIdentity(), math.TransformIdentity())
	c.EnableSpring(3, true)
	c.SetStiffness(3, 20)
	w.AddConstraint(c, true)

	startTilt := relTiltX(anchor, tilted, c)
	for i := 0; i < 600; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	if got := relTiltX(anchor, tilted, c); math32.Abs(got) > math32.Abs(startTilt)/2 {
		t.Errorf("angular spring tilt %v did not decay from %v", got, startTilt)
	}
}

func relTiltX(a, b *Body, c *Generic6DofSpringConstraint) float32 {
	fA := a.Transform().Mul(c.frameA)
	fB := b.Transform().Mul(c.frameB)
	return fA.Rot.Conjugate().Mul(fB.Rot).EulerXYZ().X
}
