package physics

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/bonephys/pkg/math"
)

// sphereBody returns a dynamic sphere record colliding with everything.
func sphereBody(radius, mass float32, mode PhysicsMode) RigidBody {
	return RigidBody{
		CollisionGroup: 1,
		CollisionMask:  0xffffffff,
		ShapeType:      ShapeSphere,
		PhysicsMode:    mode,
		ShapeSize:      math.Vec3{X: radius},
		Mass:           mass,
		FrictionForce:  0.5,
	}
}

func sceneOf(t *testing.T, bodies []RigidBody, joints []Joint) *Scene {
	t.Helper()
	var rbData, jData []byte
	for _, rb := range bodies {
		rbData = AppendRigidBody(rbData, rb)
	}
	for _, j := range joints {
		jData = AppendJoint(jData, j)
	}
	s, err := NewScene(rbData, jData)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	return s
}

// poseBuffer builds a transform buffer holding one translation per body.
func poseBuffer(origins ...math.Vec3) []float32 {
	buf := make([]float32, len(origins)*16)
	for i, o := range origins {
		m := math.Translate(o.X, o.Y, o.Z)
		copy(matrixSlot(buf, i), m[:])
	}
	return buf
}

func slotOrigin(buf []float32, index int) math.Vec3 {
	return readSlot(buf, index).Origin
}

func TestNewWorldRejectsBufferSizeMismatch(t *testing.T) {
	s := sceneOf(t, []RigidBody{sphereBody(0.5, 1, ModePhysics)}, nil)

	_, err := NewWorld(s, make([]float32, 15))
	if !errors.Is(err, ErrTransformBufferSize) {
		t.Errorf("error = %v, want ErrTransformBufferSize", err)
	}
}

func TestNewWorldRejectsInvalidShapeType(t *testing.T) {
	rb := sphereBody(0.5, 1, ModePhysics)
	rb.ShapeType = ShapeType(9)
	s := sceneOf(t, []RigidBody{rb}, nil)

	w, err := newWorld(s, poseBuffer(math.Vec3{Y: 1}))
	if !errors.Is(err, ErrInvalidShapeType) {
		t.Fatalf("error = %v, want ErrInvalidShapeType", err)
	}
	if w.engine.NumBodies() != 0 || w.engine.NumConstraints() != 0 {
		t.Errorf("failed build left %d bodies, %d constraints in engine",
			w.engine.NumBodies(), w.engine.NumConstraints())
	}
}

func TestNewWorldRejectsInvalidPhysicsMode(t *testing.T) {
	rb := sphereBody(0.5, 1, PhysicsMode(5))
	s := sceneOf(t, []RigidBody{rb}, nil)

	w, err := newWorld(s, poseBuffer(math.Vec3{Y: 1}))
	if !errors.Is(err, ErrInvalidPhysicsMode) {
		t.Fatalf("error = %v, want ErrInvalidPhysicsMode", err)
	}
	if w.engine.NumBodies() != 0 {
		t.Errorf("failed build left %d bodies in engine", w.engine.NumBodies())
	}
}

func TestNewWorldRejectsDanglingJointIndex(t *testing.T) {
	j := sampleJoint()
	j.RigidBodyBIndex = 5
	s := sceneOf(t, []RigidBody{
		sphereBody(0.5, 0, ModeFollowBone),
		sphereBody(0.5, 1, ModePhysics),
	}, []Joint{j})

	w, err := newWorld(s, poseBuffer(math.Vec3{Y: 2}, math.Vec3{Y: 1}))
	if !errors.Is(err, ErrInvalidRigidBodyIndex) {
		t.Fatalf("error = %v, want ErrInvalidRigidBodyIndex", err)
	}
	if w.engine.NumBodies() != 0 || w.engine.NumConstraints() != 0 {
		t.Errorf("failed build left %d bodies, %d constraints in engine",
			w.engine.NumBodies(), w.engine.NumConstraints())
	}
}

func TestFollowBoneBodyStaysOnAnimationPose(t *testing.T) {
	s := sceneOf(t, []RigidBody{sphereBody(0.5, 1, ModeFollowBone)}, nil)

	w, err := NewWorld(s, poseBuffer(math.Vec3{Y: 3}))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	defer w.Close()

	for i := 0; i < 60; i++ {
		w.Step(1.0/60, 1, 1.0/60)
	}

	if got := slotOrigin(w.Transforms(), 0); got != (math.Vec3{Y: 3}) {
		t.Errorf("kinematic body moved to %v, want {0 3 0}", got)
	}
}

func TestPhysicsBodySettlesOnGround(t *testing.T) {
	s := sceneOf(t, []RigidBody{sphereBody(0.5, 1, ModePhysics)}, nil)

	w, err := NewWorld(s, poseBuffer(math.Vec3{Y: 3}))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	defer w.Close()

	for i := 0; i < 600; i++ {
		w.Step(1.0/60, 1, 1.0/60)
	}

	if y := slotOrigin(w.Transforms(), 0).Y; math32.Abs(y-0.5) > 0.05 {
		t.Errorf("sphere rest height = %v, want ~0.5", y)
	}
}

func TestPhysicsPlusBoneBodyKeepsAnimatedTranslation(t *testing.T) {
	s := sceneOf(t, []RigidBody{sphereBody(0.5, 1, ModePhysicsPlusBone)}, nil)

	start := math.Vec3{X: 1, Y: 2, Z: 0}
	w, err := NewWorld(s, poseBuffer(start))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	defer w.Close()

	for i := 0; i < 60; i++ {
		w.Step(1.0/60, 1, 1.0/60)
	}

	if got := slotOrigin(w.Transforms(), 0); got.Distance(start) > 1e-5 {
		t.Errorf("anchored body translated to %v, want %v", got, start)
	}
}

func TestDisjointMasksPassThroughEachOther(t *testing.T) {
	// Group 1 with a mask that excludes group 1: the two spheres ignore
	// each other but still land on the ground plane.
	a := sphereBody(0.5, 1, ModePhysics)
	a.CollisionMask = 2
	b := sphereBody(0.5, 1, ModePhysics)
	b.CollisionMask = 2
	s := sceneOf(t, []RigidBody{a, b}, nil)

	w, err := NewWorld(s, poseBuffer(math.Vec3{Y: 3}, math.Vec3{Y: 1}))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	defer w.Close()

	for i := 0; i < 600; i++ {
		w.Step(1.0/60, 1, 1.0/60)
	}

	for i := 0; i < 2; i++ {
		if y := slotOrigin(w.Transforms(), i).Y; math32.Abs(y-0.5) > 0.05 {
			t.Errorf("sphere %d rest height = %v, want ~0.5", i, y)
		}
	}
}

func TestJointHoldsChainTogether(t *testing.T) {
	// A kinematic anchor at the top, a dynamic sphere below it, joined by a
	// locked joint at the midpoint. The sphere must hang instead of falling.
	j := Joint{
		Type:            JointSpring6DoF,
		RigidBodyAIndex: 0,
		RigidBodyBIndex: 1,
		Position:        math.Vec3{Y: 4.5},
	}
	s := sceneOf(t, []RigidBody{
		sphereBody(0.2, 0, ModeFollowBone),
		sphereBody(0.2, 1, ModePhysics),
	}, []Joint{j})

	w, err := NewWorld(s, poseBuffer(math.Vec3{Y: 5}, math.Vec3{Y: 4}))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	defer w.Close()

	for i := 0; i < 120; i++ {
		w.Step(1.0/60, 1, 1.0/60)
	}

	if y := slotOrigin(w.Transforms(), 1).Y; y < 3.5 {
		t.Errorf("jointed body fell to y = %v", y)
	}
}

func TestCloseRemovesEngineResources(t *testing.T) {
	j := sampleJoint()
	j.RigidBodyAIndex, j.RigidBodyBIndex = 0, 1
	s := sceneOf(t, []RigidBody{
		sphereBody(0.5, 0, ModeFollowBone),
		sphereBody(0.5, 1, ModePhysics),
	}, []Joint{j})

	w, err := newWorld(s, poseBuffer(math.Vec3{Y: 2}, math.Vec3{Y: 1}))
	if err != nil {
		t.Fatalf("newWorld: %v", err)
	}
	if w.engine.NumBodies() != 3 || w.engine.NumConstraints() != 1 {
		t.Fatalf("counts = %d bodies, %d constraints; want 3 (incl. ground), 1",
			w.engine.NumBodies(), w.engine.NumConstraints())
	}

	w.Close()
	w.Close()

	if w.engine.NumBodies() != 0 || w.engine.NumConstraints() != 0 {
		t.Errorf("counts after Close = %d bodies, %d constraints; want 0, 0",
			w.engine.NumBodies(), w.engine.NumConstraints())
	}
}

func TestStepTruncatesMaxSubSteps(t *testing.T) {
	s := sceneOf(t, []RigidBody{sphereBody(0.5, 1, ModePhysics)}, nil)

	w, err := NewWorld(s, poseBuffer(math.Vec3{Y: 100}))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	defer w.Close()

	// 2.9 truncates to 2 substeps of 10ms: 20ms of fall.
	w.Step(0.05, 2.9, 0.01)

	// Symplectic Euler over two 10ms substeps: g*h*h*(1+2).
	wantDrop := float32(9.81 * 0.01 * 0.01 * 3)
	got := 100 - slotOrigin(w.Transforms(), 0).Y
	if math32.Abs(got-wantDrop) > 1e-3 {
		t.Errorf("drop after clamped step = %v, want %v", got, wantDrop)
	}
}
