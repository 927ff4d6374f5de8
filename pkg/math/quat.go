package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	halfAngle := angle / 2
	s := math32.Sin(halfAngle)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math32.Cos(halfAngle),
	}
}

// QuatFromEulerZYX creates a quaternion from Euler angles in radians,
// composed as Rz(z) * Ry(y) * Rx(x): rotate about X first, then Y, then Z.
func QuatFromEulerZYX(x, y, z float32) Quat {
	qx := QuatFromAxisAngle(Vec3{X: 1}, x)
	qy := QuatFromAxisAngle(Vec3{Y: 1}, y)
	qz := QuatFromAxisAngle(Vec3{Z: 1}, z)
	return qz.Mul(qy).Mul(qx)
}

// QuatFromMat4 extracts the rotation of a rigid-body matrix.
// The upper-left 3x3 block must be orthonormal (no scale or shear).
func QuatFromMat4(m Mat4) Quat {
	// Column-major: element (row, col) lives at m[col*4+row].
	r00, r01, r02 := m[0], m[4], m[8]
	r10, r11, r12 := m[1], m[5], m[9]
	r20, r21, r22 := m[2], m[6], m[10]

	trace := r00 + r11 + r22
	var q Quat
	switch {
	case trace > 0:
		s := math32.Sqrt(trace+1) * 2
		q = Quat{
			X: (r21 - r12) / s,
			Y: (r02 - r20) / s,
			Z: (r10 - r01) / s,
			W: s / 4,
		}
	case r00 > r11 && r00 > r22:
		s := math32.Sqrt(1+r00-r11-r22) * 2
		q = Quat{
			X: s / 4,
			Y: (r01 + r10) / s,
			Z: (r02 + r20) / s,
			W: (r21 - r12) / s,
		}
	case r11 > r22:
		s := math32.Sqrt(1+r11-r00-r22) * 2
		q = Quat{
			X: (r01 + r10) / s,
			Y: s / 4,
			Z: (r12 + r21) / s,
			W: (r02 - r20) / s,
		}
	default:
		s := math32.Sqrt(1+r22-r00-r11) * 2
		q = Quat{
			X: (r02 + r20) / s,
			Y: (r12 + r21) / s,
			Z: s / 4,
			W: (r10 - r01) / s,
		}
	}
	return q.Normalize()
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Conjugate returns the conjugate quaternion. For unit quaternions this
// is the inverse rotation.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// RotatePoint rotates a point by the quaternion.
func (q Quat) RotatePoint(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	// Normalize first
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// ToAxisAngle decomposes the quaternion into a rotation axis and an angle
// in radians. The identity rotation returns the X axis with angle 0.
func (q Quat) ToAxisAngle() (Vec3, float32) {
	q = q.Normalize()
	w := q.W
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	angle := 2 * math32.Acos(w)
	s := math32.Sqrt(1 - w*w)
	if s < 1e-6 {
		return Vec3{X: 1}, 0
	}
	return Vec3{q.X / s, q.Y / s, q.Z / s}, angle
}

// EulerXYZ returns Euler angles (radians) such that the rotation equals
// Rx(x) * Ry(y) * Rz(z). Used for per-axis angular displacement of
// constraint frames.
func (q Quat) EulerXYZ() Vec3 {
	m := q.ToMat4()
	// r02 = sin(y)
	r02 := m[8]
	if r02 > 0.99999 {
		return Vec3{math32.Atan2(m[4], m[5]), math32.Pi / 2, 0}
	}
	if r02 < -0.99999 {
		return Vec3{-math32.Atan2(m[4], m[5]), -math32.Pi / 2, 0}
	}
	return Vec3{
		math32.Atan2(-m[9], m[10]),
		math32.Asin(r02),
		math32.Atan2(-m[4], m[0]),
	}
}
