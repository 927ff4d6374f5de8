package math

// Transform is a rigid transform: a rotation followed by a translation.
// It is the position-and-orientation currency between the animation side
// and the simulation side; no scale or shear is representable.
type Transform struct {
	Rot    Quat
	Origin Vec3
}

// TransformIdentity returns the identity transform.
func TransformIdentity() Transform {
	return Transform{Rot: QuatIdentity()}
}

// TransformFromMat4 extracts a rigid transform from a column-major matrix.
// The rotation block must be orthonormal; any scale is discarded.
func TransformFromMat4(m Mat4) Transform {
	return Transform{
		Rot:    QuatFromMat4(m),
		Origin: m.Translation(),
	}
}

// Mat4 returns the transform as a column-major matrix.
func (t Transform) Mat4() Mat4 {
	m := t.Rot.ToMat4()
	m.SetTranslation(t.Origin)
	return m
}

// Mul composes two transforms: the result applies other first, then t.
func (t Transform) Mul(other Transform) Transform {
	return Transform{
		Rot:    t.Rot.Mul(other.Rot).Normalize(),
		Origin: t.Rot.RotatePoint(other.Origin).Add(t.Origin),
	}
}

// Inverse returns the inverse transform.
func (t Transform) Inverse() Transform {
	inv := t.Rot.Conjugate()
	return Transform{
		Rot:    inv,
		Origin: inv.RotatePoint(t.Origin).Neg(),
	}
}

// TransformPoint applies the transform to a point.
func (t Transform) TransformPoint(p Vec3) Vec3 {
	return t.Rot.RotatePoint(p).Add(t.Origin)
}

// InvTransformPoint applies the inverse transform to a point without
// constructing the inverse.
func (t Transform) InvTransformPoint(p Vec3) Vec3 {
	return t.Rot.Conjugate().RotatePoint(p.Sub(t.Origin))
}

// AxisColumn returns the world direction of the local basis axis i (0=X, 1=Y, 2=Z).
func (t Transform) AxisColumn(i int) Vec3 {
	var local Vec3
	local.SetAxis(i, 1)
	return t.Rot.RotatePoint(local)
}
