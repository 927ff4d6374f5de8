package physics

import (
	"github.com/Faultbox/bonephys/pkg/dynamics"
	"github.com/Faultbox/bonephys/pkg/math"
)

// The motion-state bridges connect one slot of the shared transform buffer
// to the engine's motion-state callbacks. Each bridge holds the buffer
// slice and its body index; the World owns the backing array. The engine
// may read and write a bridge several times within one Step.

// matrixSlot returns the 16-float slice of body i's column-major matrix.
func matrixSlot(buf []float32, index int) []float32 {
	return buf[index*16 : index*16+16]
}

func readSlot(buf []float32, index int) math.Transform {
	var m math.Mat4
	copy(m[:], matrixSlot(buf, index))
	return math.TransformFromMat4(m)
}

func writeSlot(buf []float32, index int, t math.Transform) {
	m := t.Mat4()
	copy(matrixSlot(buf, index), m[:])
}

// followBoneState drives a kinematic body from the animation pose: the
// engine reads the live buffer slot every sub-step and its write-backs are
// discarded.
type followBoneState struct {
	buf   []float32
	index int
}

func (s *followBoneState) WorldTransform() math.Transform {
	return readSlot(s.buf, s.index)
}

func (s *followBoneState) SetWorldTransform(math.Transform) {}

// physicsState hands the slot to the simulation entirely.
type physicsState struct {
	buf   []float32
	index int
}

func (s *physicsState) WorldTransform() math.Transform {
	return readSlot(s.buf, s.index)
}

func (s *physicsState) SetWorldTransform(t math.Transform) {
	writeSlot(s.buf, s.index, t)
}

// physicsPlusBoneState keeps the simulated rotation but pins the position
// back to the animation-driven translation currently in the slot, producing
// bone-anchored swinging motion.
type physicsPlusBoneState struct {
	buf   []float32
	index int
}

func (s *physicsPlusBoneState) WorldTransform() math.Transform {
	return readSlot(s.buf, s.index)
}

func (s *physicsPlusBoneState) SetWorldTransform(t math.Transform) {
	anchored := readSlot(s.buf, s.index)
	t.Origin = anchored.Origin
	writeSlot(s.buf, s.index, t)
}

// newMotionState selects the bridge variant for a physics mode.
func newMotionState(mode PhysicsMode, buf []float32, index int) (dynamics.MotionState, bool) {
	switch mode {
	case ModeFollowBone:
		return &followBoneState{buf: buf, index: index}, true
	case ModePhysics:
		return &physicsState{buf: buf, index: index}, true
	case ModePhysicsPlusBone:
		return &physicsPlusBoneState{buf: buf, index: index}, true
	default:
		return nil, false
	}
}
