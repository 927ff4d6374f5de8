// Package physics drives secondary physics (hair, clothing, accessories)
// for animated models: it decodes authored rigid-body and joint definitions
// from their binary records, builds a live simulation around them, and
// reconciles animation-driven and physics-driven poses through a shared
// transform buffer.
package physics

import (
	"fmt"

	"github.com/Faultbox/bonephys/pkg/math"
)

// Record sizes in bytes for the binary exchange format.
const (
	RigidBodyRecordSize = 72
	JointRecordSize     = 108
)

// ShapeType selects a rigid body's collision geometry.
type ShapeType uint32

// Shape type constants.
const (
	ShapeSphere  ShapeType = 0 // radius = ShapeSize.X
	ShapeBox     ShapeType = 1 // half extents = ShapeSize
	ShapeCapsule ShapeType = 2 // radius = ShapeSize.X, half height = ShapeSize.Y
)

// String returns a human-readable shape type name.
func (t ShapeType) String() string {
	switch t {
	case ShapeSphere:
		return "Sphere"
	case ShapeBox:
		return "Box"
	case ShapeCapsule:
		return "Capsule"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
}

// PhysicsMode selects how a rigid body couples animation and simulation.
type PhysicsMode uint32

// Physics mode constants.
const (
	// ModeFollowBone bodies are kinematic: driven by the animation pose,
	// never moved by the solver, but still colliding with others.
	ModeFollowBone PhysicsMode = 0
	// ModePhysics bodies are fully owned by the simulation.
	ModePhysics PhysicsMode = 1
	// ModePhysicsPlusBone bodies simulate rotation but keep the
	// animation-driven position: bone-anchored, physically swinging.
	ModePhysicsPlusBone PhysicsMode = 2
)

// String returns a human-readable physics mode name.
func (m PhysicsMode) String() string {
	switch m {
	case ModeFollowBone:
		return "FollowBone"
	case ModePhysics:
		return "Physics"
	case ModePhysicsPlusBone:
		return "PhysicsPlusBone"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(m))
	}
}

// JointType selects a joint's constraint variant.
type JointType uint32

// Joint type constants.
const (
	JointSpring6DoF JointType = 0
)

// String returns a human-readable joint type name.
func (t JointType) String() string {
	if t == JointSpring6DoF {
		return "Spring6DoF"
	}
	return fmt.Sprintf("Unknown(%d)", uint32(t))
}

// RigidBody is one decoded rigid-body definition. Enum-typed fields keep
// whatever raw value the record carried; the domain is checked when a World
// is built, not here.
type RigidBody struct {
	CollisionGroup uint32
	CollisionMask  uint32
	ShapeType      ShapeType
	PhysicsMode    PhysicsMode

	ShapeSize math.Vec3

	// ShapePosition and ShapeRotation are part of the record contract but
	// are not applied to shape placement; the shape sits on the body origin.
	ShapePosition math.Vec3
	ShapeRotation math.Vec3

	Mass            float32
	MoveAttenuation float32 // linear damping
	RotationDamping float32 // angular damping
	Repulsion       float32 // restitution
	FrictionForce   float32 // friction
}

// Joint is one decoded joint definition: a 6-DoF spring constraint between
// two rigid bodies, placed in world space in the authored pose.
type Joint struct {
	Type            JointType
	RigidBodyAIndex uint32
	RigidBodyBIndex uint32

	Position math.Vec3 // world-space joint origin
	Rotation math.Vec3 // world-space joint rotation, Euler ZYX radians

	PositionMin math.Vec3
	PositionMax math.Vec3
	RotationMin math.Vec3
	RotationMax math.Vec3

	// Per-axis spring stiffness; exactly 0 leaves the spring on that axis
	// disabled.
	PositionSpring math.Vec3
	RotationSpring math.Vec3
}
