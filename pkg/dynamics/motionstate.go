package dynamics

import "github.com/Faultbox/bonephys/pkg/math"

// MotionState is the callback contract through which the engine exchanges a
// body's world transform with external state. WorldTransform is queried when
// a body is created and, for kinematic bodies, at the start of every
// sub-step; SetWorldTransform is invoked for every dynamic body after each
// sub-step's integration. Either side may be called several times per
// StepSimulation call.
type MotionState interface {
	WorldTransform() math.Transform
	SetWorldTransform(t math.Transform)
}

// DefaultMotionState stores the transform in place, for bodies with no
// external pose source.
type DefaultMotionState struct {
	Transform math.Transform
}

// NewDefaultMotionState returns a motion state holding the given transform.
func NewDefaultMotionState(t math.Transform) *DefaultMotionState {
	return &DefaultMotionState{Transform: t}
}

// WorldTransform returns the stored transform.
func (m *DefaultMotionState) WorldTransform() math.Transform {
	return m.Transform
}

// SetWorldTransform stores the transform.
func (m *DefaultMotionState) SetWorldTransform(t math.Transform) {
	m.Transform = t
}
