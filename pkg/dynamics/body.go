package dynamics

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/bonephys/pkg/math"
)

// Velocity thresholds below which additional damping kicks in, and the
// factor applied when it does. Matches Bullet's defaults.
const (
	additionalDampingFactor  = 0.005
	additionalVelocityThresh = 0.01
)

// BodyConfig describes a rigid body to be created. Zero Mass (or a zero
// LocalInertia with nonzero mass on an axis) produces an immovable body on
// the affected degrees of freedom.
type BodyConfig struct {
	Mass         float32
	Shape        Shape
	MotionState  MotionState
	LocalInertia math.Vec3

	LinearDamping  float32
	AngularDamping float32
	Restitution    float32
	Friction       float32

	// AdditionalDamping applies an extra damping factor when the body is
	// nearly at rest, suppressing low-energy jitter.
	AdditionalDamping bool
}

// Body is a rigid body. All state is in world space except the shape, which
// is expressed in body space.
type Body struct {
	shape       Shape
	motionState MotionState

	transform  math.Transform
	linearVel  math.Vec3
	angularVel math.Vec3

	invMass    float32
	invInertia math.Vec3 // local-space diagonal

	linearDamping     float32
	angularDamping    float32
	additionalDamping bool
	restitution       float32
	friction          float32

	kinematic   bool
	sleepingOK  bool
	sleepTimer  float32
	asleep      bool
	group, mask uint32
}

// NewBody creates a body from a config. The initial world transform is read
// from the motion state when one is provided, identity otherwise.
func NewBody(cfg BodyConfig) *Body {
	b := &Body{
		shape:             cfg.Shape,
		motionState:       cfg.MotionState,
		transform:         math.TransformIdentity(),
		linearDamping:     clamp01(cfg.LinearDamping),
		angularDamping:    clamp01(cfg.AngularDamping),
		additionalDamping: cfg.AdditionalDamping,
		restitution:       cfg.Restitution,
		friction:          cfg.Friction,
		sleepingOK:        true,
		group:             1,
		mask:              0xffffffff,
	}
	if cfg.Mass != 0 {
		b.invMass = 1 / cfg.Mass
	}
	if cfg.LocalInertia.X != 0 {
		b.invInertia.X = 1 / cfg.LocalInertia.X
	}
	if cfg.LocalInertia.Y != 0 {
		b.invInertia.Y = 1 / cfg.LocalInertia.Y
	}
	if cfg.LocalInertia.Z != 0 {
		b.invInertia.Z = 1 / cfg.LocalInertia.Z
	}
	if cfg.MotionState != nil {
		b.transform = cfg.MotionState.WorldTransform()
	}
	return b
}

// clamp01 restricts damping to [0, 1]. The attenuation factor is
// (1-damping)^h, which needs a base in [0, 1] to stay finite.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Transform returns the body's current world transform.
func (b *Body) Transform() math.Transform {
	return b.transform
}

// SetTransform teleports the body.
func (b *Body) SetTransform(t math.Transform) {
	b.transform = t
}

// LinearVelocity returns the body's linear velocity.
func (b *Body) LinearVelocity() math.Vec3 {
	return b.linearVel
}

// AngularVelocity returns the body's angular velocity.
func (b *Body) AngularVelocity() math.Vec3 {
	return b.angularVel
}

// Shape returns the body's collision shape.
func (b *Body) Shape() Shape {
	return b.shape
}

// SetKinematic marks the body as externally driven: it is re-read from its
// motion state every sub-step and never integrated by the solver.
func (b *Body) SetKinematic(kinematic bool) {
	b.kinematic = kinematic
}

// Kinematic reports whether the body is kinematic.
func (b *Body) Kinematic() bool {
	return b.kinematic
}

// SetSleepingAllowed controls auto-deactivation. Bodies driven by external
// poses should disable it, since the engine's rest heuristics cannot see
// external motion sources.
func (b *Body) SetSleepingAllowed(allowed bool) {
	b.sleepingOK = allowed
	if !allowed {
		b.asleep = false
		b.sleepTimer = 0
	}
}

// SetCollisionFilter sets the broadphase group and mask bits.
func (b *Body) SetCollisionFilter(group, mask uint32) {
	b.group = group
	b.mask = mask
}

// CollisionGroup returns the broadphase group bits.
func (b *Body) CollisionGroup() uint32 {
	return b.group
}

// CollisionMask returns the broadphase mask bits.
func (b *Body) CollisionMask() uint32 {
	return b.mask
}

// static reports whether the body can never move under simulation forces.
func (b *Body) static() bool {
	return b.invMass == 0 || b.kinematic
}

// velocityAt returns the velocity of the body surface point at center
// offset rel.
func (b *Body) velocityAt(rel math.Vec3) math.Vec3 {
	return b.linearVel.Add(b.angularVel.Cross(rel))
}

// mulInvInertiaWorld applies the world-space inverse inertia tensor
// R * diag(invInertia) * R^T to v.
func (b *Body) mulInvInertiaWorld(v math.Vec3) math.Vec3 {
	local := b.transform.Rot.Conjugate().RotatePoint(v)
	return b.transform.Rot.RotatePoint(local.Mul(b.invInertia))
}

// applyImpulse applies an impulse at center offset rel.
func (b *Body) applyImpulse(impulse, rel math.Vec3) {
	if b.static() {
		return
	}
	b.linearVel = b.linearVel.Add(impulse.Scale(b.invMass))
	b.angularVel = b.angularVel.Add(b.mulInvInertiaWorld(rel.Cross(impulse)))
	b.asleep = false
}

// applyAngularImpulse applies a pure angular impulse.
func (b *Body) applyAngularImpulse(impulse math.Vec3) {
	if b.static() {
		return
	}
	b.angularVel = b.angularVel.Add(b.mulInvInertiaWorld(impulse))
	b.asleep = false
}

// applyDamping applies linear/angular damping over the sub-step, plus the
// extra near-rest damping when enabled.
func (b *Body) applyDamping(h float32) {
	b.linearVel = b.linearVel.Scale(math32.Pow(1-b.linearDamping, h))
	b.angularVel = b.angularVel.Scale(math32.Pow(1-b.angularDamping, h))

	if b.additionalDamping {
		if b.linearVel.LengthSq() < additionalVelocityThresh &&
			b.angularVel.LengthSq() < additionalVelocityThresh {
			b.linearVel = b.linearVel.Scale(1 - additionalDampingFactor)
			b.angularVel = b.angularVel.Scale(1 - additionalDampingFactor)
		}
	}
}

// integrate advances position and orientation by the sub-step.
func (b *Body) integrate(h float32) {
	b.transform.Origin = b.transform.Origin.Add(b.linearVel.Scale(h))

	w := b.angularVel
	q := b.transform.Rot
	dq := math.Quat{X: w.X, Y: w.Y, Z: w.Z}.Mul(q)
	q.X += 0.5 * h * dq.X
	q.Y += 0.5 * h * dq.Y
	q.Z += 0.5 * h * dq.Z
	q.W += 0.5 * h * dq.W
	b.transform.Rot = q.Normalize()
}

// updateSleep advances the rest timer and puts a slow body to sleep once it
// has been slow for half a second. Any applied impulse wakes it again.
func (b *Body) updateSleep(h float32) {
	if !b.sleepingOK {
		return
	}
	const linThresh, angThresh = 0.0064, 0.01 // squared
	if b.linearVel.LengthSq() < linThresh && b.angularVel.LengthSq() < angThresh {
		b.sleepTimer += h
	} else {
		b.sleepTimer = 0
		b.asleep = false
	}
	if b.sleepTimer > 0.5 {
		b.asleep = true
		b.linearVel = math.Vec3{}
		b.angularVel = math.Vec3{}
	}
}
