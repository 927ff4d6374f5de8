package physics

import (
	"encoding/binary"
	"math"

	vecmath "github.com/Faultbox/bonephys/pkg/math"
)

// DecodeRigidBodies parses fixed-width 72-byte rigid-body records. The
// input must be a whole number of records and may not be empty; decoding is
// all-or-nothing.
func DecodeRigidBodies(data []byte) ([]RigidBody, error) {
	if len(data) == 0 {
		return nil, ErrEmptyRigidBodyData
	}
	if len(data)%RigidBodyRecordSize != 0 {
		return nil, ErrInvalidRigidBodySize
	}

	count := len(data) / RigidBodyRecordSize
	bodies := make([]RigidBody, count)
	for i := 0; i < count; i++ {
		rec := data[i*RigidBodyRecordSize:]
		bodies[i] = RigidBody{
			CollisionGroup:  readU32(rec, 0),
			CollisionMask:   readU32(rec, 4),
			ShapeType:       ShapeType(readU32(rec, 8)),
			PhysicsMode:     PhysicsMode(readU32(rec, 12)),
			ShapeSize:       readVec3(rec, 16),
			ShapePosition:   readVec3(rec, 28),
			ShapeRotation:   readVec3(rec, 40),
			Mass:            readF32(rec, 52),
			MoveAttenuation: readF32(rec, 56),
			RotationDamping: readF32(rec, 60),
			Repulsion:       readF32(rec, 64),
			FrictionForce:   readF32(rec, 68),
		}
	}
	return bodies, nil
}

// DecodeJoints parses fixed-width 108-byte joint records. An empty input is
// a legitimate zero-joint scene.
func DecodeJoints(data []byte) ([]Joint, error) {
	if len(data)%JointRecordSize != 0 {
		return nil, ErrInvalidJointSize
	}

	count := len(data) / JointRecordSize
	joints := make([]Joint, count)
	for i := 0; i < count; i++ {
		rec := data[i*JointRecordSize:]
		joints[i] = Joint{
			Type:            JointType(readU32(rec, 0)),
			RigidBodyAIndex: readU32(rec, 4),
			RigidBodyBIndex: readU32(rec, 8),
			Position:        readVec3(rec, 12),
			Rotation:        readVec3(rec, 24),
			PositionMin:     readVec3(rec, 36),
			PositionMax:     readVec3(rec, 48),
			RotationMin:     readVec3(rec, 60),
			RotationMax:     readVec3(rec, 72),
			PositionSpring:  readVec3(rec, 84),
			RotationSpring:  readVec3(rec, 96),
		}
	}
	return joints, nil
}

func readU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

func readF32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func readVec3(b []byte, off int) vecmath.Vec3 {
	return vecmath.Vec3{
		X: readF32(b, off),
		Y: readF32(b, off+4),
		Z: readF32(b, off+8),
	}
}
