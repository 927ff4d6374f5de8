package physics

import (
	"fmt"

	"github.com/Faultbox/bonephys/pkg/dynamics"
	"github.com/Faultbox/bonephys/pkg/math"
)

// World is a live simulation built from a Scene: one engine rigid body per
// scene rigid body, one 6-DoF spring constraint per scene joint, and the
// shared transform buffer the motion-state bridges read and write.
//
// A World is single-threaded: the caller must not touch the transform
// buffer while Step is running. The buffer layout is one column-major 4x4
// matrix (16 floats) per rigid body, in scene order.
type World struct {
	engine *dynamics.World
	ground *dynamics.Body

	bodies     []*dynamics.Body
	shapes     []dynamics.Shape
	bridges    []dynamics.MotionState
	joints     []*dynamics.Generic6DofSpringConstraint
	transforms []float32

	closed bool
}

// NewWorld builds a World from a scene and an initial transform buffer
// snapshot (16 floats per rigid body, the authored pose). Construction is
// atomic: on error nothing remains added to the engine.
func NewWorld(scene *Scene, initialTransforms []float32) (*World, error) {
	w, err := newWorld(scene, initialTransforms)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// newWorld does the actual construction. It returns the partially built
// World alongside the error so tests can check that a failed build left the
// engine empty.
func newWorld(scene *Scene, initialTransforms []float32) (*World, error) {
	rigidbodies := scene.RigidBodies()

	w := &World{
		engine:     dynamics.NewWorld(),
		transforms: make([]float32, len(initialTransforms)),
	}
	copy(w.transforms, initialTransforms)

	if len(initialTransforms) != len(rigidbodies)*16 {
		return w, fmt.Errorf("%w: got %d floats, want %d",
			ErrTransformBufferSize, len(initialTransforms), len(rigidbodies)*16)
	}

	// Static ground plane, excluded from group/mask filtering so that
	// everything collides with it.
	groundShape := dynamics.NewStaticPlaneShape(math.Vec3{Y: 1}, 0)
	w.ground = dynamics.NewBody(dynamics.BodyConfig{
		Shape:       groundShape,
		MotionState: dynamics.NewDefaultMotionState(math.TransformIdentity()),
	})
	w.engine.AddBody(w.ground)
	w.engine.SetOverlapFilter(func(a, b *dynamics.Body) bool {
		if a == w.ground || b == w.ground {
			return true
		}
		return a.CollisionGroup()&b.CollisionMask() != 0 &&
			b.CollisionGroup()&a.CollisionMask() != 0
	})

	for i, rb := range rigidbodies {
		shape, err := buildShape(rb)
		if err != nil {
			w.teardown()
			return w, fmt.Errorf("rigidbody %d: %w", i, err)
		}

		// FollowBone bodies are forced immovable regardless of the decoded
		// mass; zero-mass bodies keep zero inertia.
		mass := rb.Mass
		if rb.PhysicsMode == ModeFollowBone {
			mass = 0
		}
		var inertia math.Vec3
		if mass != 0 {
			inertia = shape.Inertia(mass)
		}

		bridge, ok := newMotionState(rb.PhysicsMode, w.transforms, i)
		if !ok {
			w.teardown()
			return w, fmt.Errorf("rigidbody %d: %w (%d)", i, ErrInvalidPhysicsMode, uint32(rb.PhysicsMode))
		}

		body := dynamics.NewBody(dynamics.BodyConfig{
			Mass:              mass,
			Shape:             shape,
			MotionState:       bridge,
			LocalInertia:      inertia,
			LinearDamping:     rb.MoveAttenuation,
			AngularDamping:    rb.RotationDamping,
			Restitution:       rb.Repulsion,
			Friction:          rb.FrictionForce,
			AdditionalDamping: true,
		})
		// Bodies driven from bone poses can move outside the engine's own
		// activity heuristics, so none of them may ever sleep.
		body.SetSleepingAllowed(false)
		if rb.PhysicsMode == ModeFollowBone {
			body.SetKinematic(true)
		}
		body.SetCollisionFilter(rb.CollisionGroup, rb.CollisionMask)

		w.engine.AddBody(body)
		w.bodies = append(w.bodies, body)
		w.shapes = append(w.shapes, shape)
		w.bridges = append(w.bridges, bridge)
	}

	for i, joint := range scene.Joints() {
		if err := w.buildJoint(joint); err != nil {
			w.teardown()
			return w, fmt.Errorf("joint %d: %w", i, err)
		}
	}

	return w, nil
}

// buildShape maps a decoded shape description onto a collision shape.
func buildShape(rb RigidBody) (dynamics.Shape, error) {
	switch rb.ShapeType {
	case ShapeSphere:
		return dynamics.NewSphereShape(rb.ShapeSize.X), nil
	case ShapeBox:
		return dynamics.NewBoxShape(rb.ShapeSize), nil
	case ShapeCapsule:
		return dynamics.NewCapsuleShape(rb.ShapeSize.X, rb.ShapeSize.Y), nil
	default:
		return nil, fmt.Errorf("%w (%d)", ErrInvalidShapeType, uint32(rb.ShapeType))
	}
}

// buildJoint creates the 6-DoF spring constraint for one joint definition.
// Anchor frames are computed in each body's local space from the joint's
// world placement at this instant, pinning the constraint to the authored
// pose.
func (w *World) buildJoint(joint Joint) error {
	if int(joint.RigidBodyAIndex) >= len(w.bodies) {
		return fmt.Errorf("%w: a=%d", ErrInvalidRigidBodyIndex, joint.RigidBodyAIndex)
	}
	if int(joint.RigidBodyBIndex) >= len(w.bodies) {
		return fmt.Errorf("%w: b=%d", ErrInvalidRigidBodyIndex, joint.RigidBodyBIndex)
	}
	bodyA := w.bodies[joint.RigidBodyAIndex]
	bodyB := w.bodies[joint.RigidBodyBIndex]

	jointWorld := math.Transform{
		Rot:    math.QuatFromEulerZYX(joint.Rotation.X, joint.Rotation.Y, joint.Rotation.Z),
		Origin: joint.Position,
	}
	frameA := bodyA.Transform().Inverse().Mul(jointWorld)
	frameB := bodyB.Transform().Inverse().Mul(jointWorld)

	c := dynamics.NewGeneric6DofSpringConstraint(bodyA, bodyB, frameA, frameB)
	c.SetLinearLowerLimit(joint.PositionMin)
	c.SetLinearUpperLimit(joint.PositionMax)
	c.SetAngularLowerLimit(joint.RotationMin)
	c.SetAngularUpperLimit(joint.RotationMax)

	springs := [6]float32{
		joint.PositionSpring.X,
		joint.PositionSpring.Y,
		// The linear Z stiffness is stored negated in the record format.
		-joint.PositionSpring.Z,
		joint.RotationSpring.X,
		joint.RotationSpring.Y,
		joint.RotationSpring.Z,
	}
	for axis, stiffness := range springs {
		if stiffness != 0 {
			c.EnableSpring(axis, true)
			c.SetStiffness(axis, stiffness)
		}
	}

	w.engine.AddConstraint(c, true)
	w.joints = append(w.joints, c)
	return nil
}

// Step advances the simulation by deltaTime, sub-divided into at most
// maxSubSteps increments of fixedTimeStep. maxSubSteps is a float32 at this
// boundary for exchange-format compatibility but carries an integral count;
// it is truncated toward zero. Each sub-step runs the bridges' read/write
// cycle, mutating the transform buffer in place.
func (w *World) Step(deltaTime, maxSubSteps, fixedTimeStep float32) {
	w.engine.StepSimulation(deltaTime, int(maxSubSteps), fixedTimeStep)
}

// SetGravity overrides the default downward gravity of 9.81 m/s².
func (w *World) SetGravity(g math.Vec3) {
	w.engine.SetGravity(g)
}

// Transforms returns the live transform buffer: 16 floats per rigid body in
// scene order. The host reads simulated poses out of it and writes animated
// poses into it between Step calls.
func (w *World) Transforms() []float32 {
	return w.transforms
}

// Close removes everything the World added to the engine: constraints
// first, then bodies, then the ground plane. Safe to call more than once.
func (w *World) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.teardown()
}

func (w *World) teardown() {
	for _, c := range w.joints {
		w.engine.RemoveConstraint(c)
	}
	w.joints = nil
	for _, b := range w.bodies {
		w.engine.RemoveBody(b)
	}
	w.bodies = nil
	if w.ground != nil {
		w.engine.RemoveBody(w.ground)
		w.ground = nil
	}
}
