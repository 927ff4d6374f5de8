package physics

import (
	"encoding/binary"
	"math"

	vecmath "github.com/Faultbox/bonephys/pkg/math"
)

// AppendRigidBody appends the 72-byte record encoding of rb to dst. The
// inverse of DecodeRigidBodies, used by authoring tools and tests.
func AppendRigidBody(dst []byte, rb RigidBody) []byte {
	dst = appendU32(dst, rb.CollisionGroup)
	dst = appendU32(dst, rb.CollisionMask)
	dst = appendU32(dst, uint32(rb.ShapeType))
	dst = appendU32(dst, uint32(rb.PhysicsMode))
	dst = appendVec3(dst, rb.ShapeSize)
	dst = appendVec3(dst, rb.ShapePosition)
	dst = appendVec3(dst, rb.ShapeRotation)
	dst = appendF32(dst, rb.Mass)
	dst = appendF32(dst, rb.MoveAttenuation)
	dst = appendF32(dst, rb.RotationDamping)
	dst = appendF32(dst, rb.Repulsion)
	return appendF32(dst, rb.FrictionForce)
}

// AppendJoint appends the 108-byte record encoding of j to dst.
func AppendJoint(dst []byte, j Joint) []byte {
	dst = appendU32(dst, uint32(j.Type))
	dst = appendU32(dst, j.RigidBodyAIndex)
	dst = appendU32(dst, j.RigidBodyBIndex)
	dst = appendVec3(dst, j.Position)
	dst = appendVec3(dst, j.Rotation)
	dst = appendVec3(dst, j.PositionMin)
	dst = appendVec3(dst, j.PositionMax)
	dst = appendVec3(dst, j.RotationMin)
	dst = appendVec3(dst, j.RotationMax)
	dst = appendVec3(dst, j.PositionSpring)
	return appendVec3(dst, j.RotationSpring)
}

func appendU32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

func appendF32(dst []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
}

func appendVec3(dst []byte, v vecmath.Vec3) []byte {
	dst = appendF32(dst, v.X)
	dst = appendF32(dst, v.Y)
	return appendF32(dst, v.Z)
}
