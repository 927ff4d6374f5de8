package physics

import "errors"

// Decode errors.
var (
	ErrEmptyRigidBodyData   = errors.New("empty rigidbody data")
	ErrInvalidRigidBodySize = errors.New("rigidbody data is not a multiple of the record size")
	ErrInvalidJointSize     = errors.New("joint data is not a multiple of the record size")
)

// World construction errors.
var (
	ErrTransformBufferSize   = errors.New("transform buffer size does not match rigidbody count")
	ErrInvalidShapeType      = errors.New("invalid shape type")
	ErrInvalidPhysicsMode    = errors.New("invalid physics mode")
	ErrInvalidRigidBodyIndex = errors.New("joint rigidbody index out of range")
)
