package dynamics

import (
	"github.com/Faultbox/bonephys/pkg/math"
)

// OverlapFilter decides whether a pair of bodies may generate contacts.
// Returning false hides the pair from the narrowphase entirely.
type OverlapFilter func(a, b *Body) bool

// World steps a set of rigid bodies and constraints under gravity.
// Not safe for concurrent use; construction and stepping belong to one
// goroutine at a time.
type World struct {
	gravity     math.Vec3
	bodies      []*Body
	constraints []Constraint
	filter      OverlapFilter

	// Pairs linked by a constraint with collisions disabled, and which
	// constraints hold such an exclusion.
	noCollide    map[bodyPair]int
	collisionOff map[Constraint]bool

	localTime float32
	contacts  []contact // reused between sub-steps
}

type bodyPair struct {
	a, b *Body
}

// linked reports whether a pair is excluded from collisions, checking both
// orders since pointer pairs have no canonical ordering.
func (w *World) linked(a, b *Body) bool {
	if _, ok := w.noCollide[bodyPair{a, b}]; ok {
		return true
	}
	_, ok := w.noCollide[bodyPair{b, a}]
	return ok
}

// NewWorld returns a world with standard gravity (0, -9.81, 0).
func NewWorld() *World {
	return &World{
		gravity:      math.Vec3{Y: -9.81},
		noCollide:    make(map[bodyPair]int),
		collisionOff: make(map[Constraint]bool),
	}
}

// SetGravity sets the gravity acceleration applied to dynamic bodies.
func (w *World) SetGravity(g math.Vec3) {
	w.gravity = g
}

// Gravity returns the current gravity vector.
func (w *World) Gravity() math.Vec3 {
	return w.gravity
}

// SetOverlapFilter installs the pairwise collision filter. A nil filter
// allows all pairs.
func (w *World) SetOverlapFilter(f OverlapFilter) {
	w.filter = f
}

// AddBody adds a body to the simulation.
func (w *World) AddBody(b *Body) {
	w.bodies = append(w.bodies, b)
}

// RemoveBody removes a body from the simulation. Constraints referencing
// the body should be removed first.
func (w *World) RemoveBody(b *Body) {
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

// AddConstraint adds a constraint. When disableLinkedCollision is true the
// constrained pair is excluded from collision detection, the usual setting
// for chains of touching bodies.
func (w *World) AddConstraint(c Constraint, disableLinkedCollision bool) {
	w.constraints = append(w.constraints, c)
	if disableLinkedCollision {
		w.collisionOff[c] = true
		a, b := c.bodies()
		w.noCollide[bodyPair{a, b}]++
	}
}

// RemoveConstraint removes a constraint.
func (w *World) RemoveConstraint(c Constraint) {
	for i, other := range w.constraints {
		if other == c {
			w.constraints = append(w.constraints[:i], w.constraints[i+1:]...)
			// Only constraints added with disableLinkedCollision hold a
			// share of the pair's exclusion count.
			if w.collisionOff[c] {
				delete(w.collisionOff, c)
				a, b := c.bodies()
				for _, p := range []bodyPair{{a, b}, {b, a}} {
					if n, ok := w.noCollide[p]; ok {
						if n <= 1 {
							delete(w.noCollide, p)
						} else {
							w.noCollide[p] = n - 1
						}
						break
					}
				}
			}
			return
		}
	}
}

// NumBodies returns the number of bodies in the simulation.
func (w *World) NumBodies() int {
	return len(w.bodies)
}

// NumConstraints returns the number of constraints in the simulation.
func (w *World) NumConstraints() int {
	return len(w.constraints)
}

// StepSimulation advances the world by deltaTime, running up to maxSubSteps
// internal sub-steps of fixedTimeStep each; leftover time is carried into
// the next call. With maxSubSteps <= 0 a single variable step of deltaTime
// is taken.
func (w *World) StepSimulation(deltaTime float32, maxSubSteps int, fixedTimeStep float32) {
	if maxSubSteps > 0 {
		if fixedTimeStep <= 0 {
			return
		}
		w.localTime += deltaTime
		n := int(w.localTime / fixedTimeStep)
		if n <= 0 {
			return
		}
		w.localTime -= float32(n) * fixedTimeStep
		if n > maxSubSteps {
			n = maxSubSteps
		}
		for i := 0; i < n; i++ {
			w.singleStep(fixedTimeStep)
		}
		return
	}
	if deltaTime > 0 {
		w.singleStep(deltaTime)
	}
}

// singleStep runs one fixed sub-step: kinematic pose pull, forces,
// constraints, contacts, integration, motion-state write-back.
func (w *World) singleStep(h float32) {
	for _, b := range w.bodies {
		if b.kinematic && b.motionState != nil {
			next := b.motionState.WorldTransform()
			b.setKinematicVelocities(next, h)
			b.transform = next
		}
	}

	for _, b := range w.bodies {
		if b.static() || b.asleep {
			continue
		}
		b.linearVel = b.linearVel.Add(w.gravity.Scale(h))
		b.applyDamping(h)
	}

	for _, c := range w.constraints {
		c.solve(h)
	}

	w.contacts = w.collectContacts(w.contacts[:0])
	solveContacts(w.contacts, h)

	for _, b := range w.bodies {
		if b.static() || b.asleep {
			continue
		}
		b.integrate(h)
		b.updateSleep(h)
		if b.motionState != nil {
			b.motionState.SetWorldTransform(b.transform)
		}
	}
}

// collectContacts runs broadphase filtering and narrowphase for all pairs.
func (w *World) collectContacts(dst []contact) []contact {
	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if a.static() && b.static() {
				continue
			}
			if w.linked(a, b) {
				continue
			}
			if w.filter != nil && !w.filter(a, b) {
				continue
			}
			dst = collide(dst, a, b)
		}
	}
	return dst
}

// setKinematicVelocities derives the body's velocities from the externally
// driven pose delta so friction against kinematic bodies behaves.
func (b *Body) setKinematicVelocities(next math.Transform, h float32) {
	if h <= 0 {
		return
	}
	b.linearVel = next.Origin.Sub(b.transform.Origin).Scale(1 / h)
	dq := next.Rot.Mul(b.transform.Rot.Conjugate())
	// q and -q are the same rotation; keep the cover with the short arc so
	// the decomposed angle stays near 0 instead of near 2*pi.
	if dq.W < 0 {
		dq = math.Quat{X: -dq.X, Y: -dq.Y, Z: -dq.Z, W: -dq.W}
	}
	axis, angle := dq.ToAxisAngle()
	b.angularVel = axis.Scale(angle / h)
}
