package physics

// Scene is an immutable set of decoded rigid-body and joint definitions:
// the authoritative description of what to simulate. A Scene performs no
// cross-validation (joint indices are checked when a World is built) and
// can back any number of Worlds.
type Scene struct {
	rigidbodies []RigidBody
	joints      []Joint
}

// NewScene decodes both record buffers into a Scene. jointData may be
// empty; rigidBodyData may not.
func NewScene(rigidBodyData, jointData []byte) (*Scene, error) {
	rigidbodies, err := DecodeRigidBodies(rigidBodyData)
	if err != nil {
		return nil, err
	}
	joints, err := DecodeJoints(jointData)
	if err != nil {
		return nil, err
	}
	return &Scene{rigidbodies: rigidbodies, joints: joints}, nil
}

// RigidBodies returns the scene's rigid-body definitions in record order.
func (s *Scene) RigidBodies() []RigidBody {
	return s.rigidbodies
}

// Joints returns the scene's joint definitions in record order.
func (s *Scene) Joints() []Joint {
	return s.joints
}
