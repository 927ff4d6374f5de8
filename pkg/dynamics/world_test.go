package dynamics

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/bonephys/pkg/math"
)

func dynamicSphere(radius, mass float32, at math.Vec3) *Body {
	shape := NewSphereShape(radius)
	b := NewBody(BodyConfig{
		Mass:         mass,
		Shape:        shape,
		MotionState:  NewDefaultMotionState(math.Transform{Rot: math.QuatIdentity(), Origin: at}),
		LocalInertia: shape.Inertia(mass),
		Friction:     0.5,
	})
	b.SetSleepingAllowed(false)
	return b
}

func groundPlane() *Body {
	return NewBody(BodyConfig{
		Shape:       NewStaticPlaneShape(math.Vec3{Y: 1}, 0),
		MotionState: NewDefaultMotionState(math.TransformIdentity()),
	})
}

func TestBodyFallsUnderGravity(t *testing.T) {
	w := NewWorld()
	b := dynamicSphere(0.5, 1, math.Vec3{Y: 10})
	w.AddBody(b)

	for i := 0; i < 30; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	if y := b.Transform().Origin.Y; y >= 10 {
		t.Errorf("body did not fall: y = %v", y)
	}
	if vy := b.LinearVelocity().Y; vy >= 0 {
		t.Errorf("body has no downward velocity: vy = %v", vy)
	}
}

func TestSphereRestsOnPlane(t *testing.T) {
	w := NewWorld()
	w.AddBody(groundPlane())
	b := dynamicSphere(0.5, 1, math.Vec3{Y: 3})
	w.AddBody(b)

	for i := 0; i < 600; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	if y := b.Transform().Origin.Y; math32.Abs(y-0.5) > 0.05 {
		t.Errorf("sphere rest height = %v, want ~0.5", y)
	}
}

func TestCapsuleRestsOnPlane(t *testing.T) {
	w := NewWorld()
	w.AddBody(groundPlane())

	shape := NewCapsuleShape(0.3, 0.5)
	b := NewBody(BodyConfig{
		Mass:         1,
		Shape:        shape,
		MotionState:  NewDefaultMotionState(math.Transform{Rot: math.QuatIdentity(), Origin: math.Vec3{Y: 2}}),
		LocalInertia: shape.Inertia(1),
		Friction:     0.5,
	})
	b.SetSleepingAllowed(false)
	w.AddBody(b)

	for i := 0; i < 600; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	// Upright capsule rests with its lower cap touching the plane.
	if y := b.Transform().Origin.Y; math32.Abs(y-0.8) > 0.1 {
		t.Errorf("capsule rest height = %v, want ~0.8", y)
	}
}

func TestOverdampedBodyStaysFinite(t *testing.T) {
	w := NewWorld()
	shape := NewSphereShape(0.5)
	b := NewBody(BodyConfig{
		Mass:           1,
		Shape:          shape,
		MotionState:    NewDefaultMotionState(math.Transform{Rot: math.QuatIdentity(), Origin: math.Vec3{Y: 5}}),
		LocalInertia:   shape.Inertia(1),
		LinearDamping:  1.5,
		AngularDamping: 2,
	})
	b.SetSleepingAllowed(false)
	w.AddBody(b)

	for i := 0; i < 10; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	y := b.Transform().Origin.Y
	if math32.IsNaN(y) || y > 5 {
		t.Errorf("over-damped body at y = %v, want finite and at most 5", y)
	}
	if vy := b.LinearVelocity().Y; math32.IsNaN(vy) {
		t.Errorf("over-damped body velocity went NaN")
	}
}

func TestKinematicBodyFollowsMotionState(t *testing.T) {
	w := NewWorld()
	ms := NewDefaultMotionState(math.Transform{Rot: math.QuatIdentity(), Origin: math.Vec3{Y: 1}})
	b := NewBody(BodyConfig{Shape: NewSphereShape(0.5), MotionState: ms})
	b.SetKinematic(true)
	b.SetSleepingAllowed(false)
	w.AddBody(b)

	ms.Transform.Origin = math.Vec3{X: 2, Y: 1}
	w.StepSimulation(1.0/60, 1, 1.0/60)

	if got := b.Transform().Origin; got != (math.Vec3{X: 2, Y: 1}) {
		t.Errorf("kinematic body at %v, want {2 1 0}", got)
	}
}

func TestKinematicAngularVelocityTakesShortArc(t *testing.T) {
	w := NewWorld()
	start := math.QuatFromAxisAngle(math.Vec3{Y: 1}, 0.1)
	ms := NewDefaultMotionState(math.Transform{Rot: start})
	b := NewBody(BodyConfig{Shape: NewSphereShape(0.5), MotionState: ms})
	b.SetKinematic(true)
	b.SetSleepingAllowed(false)
	w.AddBody(b)

	// The same small rotation step, written on the opposite quaternion
	// cover. The derived angular speed must reflect the 0.1 rad delta, not
	// an almost-full turn.
	next := math.QuatFromAxisAngle(math.Vec3{Y: 1}, 0.2)
	ms.Transform.Rot = math.Quat{X: -next.X, Y: -next.Y, Z: -next.Z, W: -next.W}
	w.StepSimulation(1.0/60, 1, 1.0/60)

	want := float32(0.1 * 60)
	if got := b.AngularVelocity().Length(); math32.Abs(got-want) > 0.1 {
		t.Errorf("kinematic angular speed = %v, want ~%v", got, want)
	}
}

func TestStepSimulationClampsSubSteps(t *testing.T) {
	w := NewWorld()
	b := dynamicSphere(0.5, 1, math.Vec3{Y: 100})
	w.AddBody(b)

	// 50ms of wall time but at most 2 substeps of 10ms: only 20ms of
	// gravity should be integrated.
	w.StepSimulation(0.05, 2, 0.01)

	want := float32(-9.81 * 0.02)
	if vy := b.LinearVelocity().Y; math32.Abs(vy-want) > 1e-3 {
		t.Errorf("vy after clamped step = %v, want %v", vy, want)
	}
}

func TestOverlapFilterBlocksPair(t *testing.T) {
	w := NewWorld()
	w.SetGravity(math.Vec3{})
	a := dynamicSphere(1, 1, math.Vec3{})
	b := dynamicSphere(1, 1, math.Vec3{X: 0.5})
	w.AddBody(a)
	w.AddBody(b)
	w.SetOverlapFilter(func(*Body, *Body) bool { return false })

	for i := 0; i < 10; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	if a.LinearVelocity() != (math.Vec3{}) || b.LinearVelocity() != (math.Vec3{}) {
		t.Errorf("filtered pair gained velocity: %v / %v", a.LinearVelocity(), b.LinearVelocity())
	}
}

func TestOverlappingSpheresSeparate(t *testing.T) {
	w := NewWorld()
	w.SetGravity(math.Vec3{})
	a := dynamicSphere(1, 1, math.Vec3{})
	b := dynamicSphere(1, 1, math.Vec3{X: 0.5})
	w.AddBody(a)
	w.AddBody(b)

	for i := 0; i < 120; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}

	dist := a.Transform().Origin.Distance(b.Transform().Origin)
	if dist < 1.5 {
		t.Errorf("overlapping spheres still interpenetrating: distance %v", dist)
	}
}

func TestRemoveBodyAndConstraintCounts(t *testing.T) {
	w := NewWorld()
	a := dynamicSphere(0.5, 1, math.Vec3{})
	b := dynamicSphere(0.5, 1, math.Vec3{Y: 2})
	w.AddBody(a)
	w.AddBody(b)
	c := NewGeneric6DofSpringConstraint(a, b, math.TransformIdentity(), math.TransformIdentity())
	w.AddConstraint(c, true)

	if w.NumBodies() != 2 || w.NumConstraints() != 1 {
		t.Fatalf("counts = %d bodies, %d constraints; want 2, 1", w.NumBodies(), w.NumConstraints())
	}

	w.RemoveConstraint(c)
	w.RemoveBody(a)
	w.RemoveBody(b)

	if w.NumBodies() != 0 || w.NumConstraints() != 0 {
		t.Errorf("counts after removal = %d bodies, %d constraints; want 0, 0", w.NumBodies(), w.NumConstraints())
	}
	if w.linked(a, b) {
		t.Error("linked-pair exclusion survived constraint removal")
	}
}

func TestRemoveConstraintKeepsOtherLinkedPair(t *testing.T) {
	w := NewWorld()
	a := dynamicSphere(0.5, 1, math.Vec3{})
	b := dynamicSphere(0.5, 1, math.Vec3{Y: 2})
	w.AddBody(a)
	w.AddBody(b)

	// Same pair, mixed collision flags: removing the collision-enabled
	// constraint must not release the other one's exclusion.
	linked := NewGeneric6DofSpringConstraint(a, b, math.TransformIdentity(), math.TransformIdentity())
	plain := NewGeneric6DofSpringConstraint(a, b, math.TransformIdentity(), math.TransformIdentity())
	w.AddConstraint(linked, true)
	w.AddConstraint(plain, false)

	w.RemoveConstraint(plain)
	if !w.linked(a, b) {
		t.Error("pair collision re-enabled by removing a collision-enabled constraint")
	}

	w.RemoveConstraint(linked)
	if w.linked(a, b) {
		t.Error("linked-pair exclusion survived removal of the disabling constraint")
	}
}
