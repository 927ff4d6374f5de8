// Package dynamics implements a small rigid-body dynamics engine: convex
// collision shapes, bodies with motion-state callbacks, pairwise collision
// filtering, an impulse-based contact solver and 6-DoF spring constraints,
// advanced with fixed-size sub-steps.
package dynamics

import (
	"github.com/Faultbox/bonephys/pkg/math"
)

// Shape is a collision shape. Inertia returns the diagonal of the local
// inertia tensor for the given mass; static shapes return zero.
type Shape interface {
	Inertia(mass float32) math.Vec3
}

// SphereShape is a sphere centered on the body origin.
type SphereShape struct {
	Radius float32
}

// NewSphereShape returns a sphere shape.
func NewSphereShape(radius float32) *SphereShape {
	return &SphereShape{Radius: radius}
}

// Inertia returns the solid-sphere inertia diagonal: 2/5 m r^2.
func (s *SphereShape) Inertia(mass float32) math.Vec3 {
	i := 0.4 * mass * s.Radius * s.Radius
	return math.Vec3{X: i, Y: i, Z: i}
}

// BoxShape is an axis-aligned box (in body space) described by half extents.
type BoxShape struct {
	HalfExtents math.Vec3
}

// NewBoxShape returns a box shape with the given half extents.
func NewBoxShape(halfExtents math.Vec3) *BoxShape {
	return &BoxShape{HalfExtents: halfExtents}
}

// Inertia returns the solid-box inertia diagonal: m/3 (h_j^2 + h_k^2) per axis.
func (b *BoxShape) Inertia(mass float32) math.Vec3 {
	h := b.HalfExtents
	k := mass / 3
	return math.Vec3{
		X: k * (h.Y*h.Y + h.Z*h.Z),
		Y: k * (h.X*h.X + h.Z*h.Z),
		Z: k * (h.X*h.X + h.Y*h.Y),
	}
}

// CapsuleShape is a capsule around the body-space Y axis: a segment of
// length 2*HalfHeight swept by a sphere of the given radius.
type CapsuleShape struct {
	Radius     float32
	HalfHeight float32
}

// NewCapsuleShape returns a capsule shape.
func NewCapsuleShape(radius, halfHeight float32) *CapsuleShape {
	return &CapsuleShape{Radius: radius, HalfHeight: halfHeight}
}

// Inertia approximates the capsule with its bounding box, the same
// approximation Bullet uses for capsules.
func (c *CapsuleShape) Inertia(mass float32) math.Vec3 {
	box := BoxShape{HalfExtents: math.Vec3{
		X: c.Radius,
		Y: c.HalfHeight + c.Radius,
		Z: c.Radius,
	}}
	return box.Inertia(mass)
}

// segment returns the capsule's core segment endpoints in world space.
func (c *CapsuleShape) segment(t math.Transform) (math.Vec3, math.Vec3) {
	return t.TransformPoint(math.Vec3{Y: -c.HalfHeight}),
		t.TransformPoint(math.Vec3{Y: c.HalfHeight})
}

// StaticPlaneShape is an infinite plane: points p with dot(Normal, p) == Offset.
// Plane-shaped bodies are always static.
type StaticPlaneShape struct {
	Normal math.Vec3
	Offset float32
}

// NewStaticPlaneShape returns a static plane shape. normal should be unit length.
func NewStaticPlaneShape(normal math.Vec3, offset float32) *StaticPlaneShape {
	return &StaticPlaneShape{Normal: normal, Offset: offset}
}

// Inertia of a static plane is zero; planes cannot be dynamic.
func (p *StaticPlaneShape) Inertia(mass float32) math.Vec3 {
	return math.Vec3{}
}
