package sim

import "math"

// Vec3 defines a position or direction in 3D.
type Vec3 struct {
	X, Y, Z float64
}

// Quat is a unit quaternion (w, x, y, z) representing an orientation.
type Quat struct {
	W, X, Y, Z float64
}

// QuatIdentity is the identity orientation.
var QuatIdentity = Quat{W: 1}

// Add is a helper to add Vec3.
func (v Vec3) Add(v1 Vec3) Vec3 {
	return Vec3{X: v.X + v1.X, Y: v.Y + v1.Y, Z: v.Z + v1.Z}
}

// Sub subtracts v1 from v.
func (v Vec3) Sub(v1 Vec3) Vec3 {
	return Vec3{X: v.X - v1.X, Y: v.Y - v1.Y, Z: v.Z - v1.Z}
}

// Scale multiplies all components by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot computes the dot product.
func (v Vec3) Dot(v1 Vec3) float64 {
	return v.X*v1.X + v.Y*v1.Y + v.Z*v1.Z
}

// Cross computes the cross product.
func (v Vec3) Cross(v1 Vec3) Vec3 {
	return Vec3{
		X: v.Y*v1.Z - v.Z*v1.Y,
		Y: v.Z*v1.X - v.X*v1.Z,
		Z: v.X*v1.Y - v.Y*v1.X,
	}
}

// Norm computes the Euclidean length.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// OffsetBy performs Add in-place.
func (v *Vec3) OffsetBy(v1 Vec3) *Vec3 {
	v.X += v1.X
	v.Y += v1.Y
	v.Z += v1.Z
	return v
}

// Normalize returns a unit quaternion. The identity is returned for a
// near-zero quaternion.
func (q Quat) Normalize() Quat {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n < 1e-12 {
		return QuatIdentity
	}
	return Quat{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Mul composes two rotations, applying q1 first.
func (q Quat) Mul(q1 Quat) Quat {
	return Quat{
		W: q.W*q1.W - q.X*q1.X - q.Y*q1.Y - q.Z*q1.Z,
		X: q.W*q1.X + q.X*q1.W + q.Y*q1.Z - q.Z*q1.Y,
		Y: q.W*q1.Y - q.X*q1.Z + q.Y*q1.W + q.Z*q1.X,
		Z: q.W*q1.Z + q.X*q1.Y - q.Y*q1.X + q.Z*q1.W,
	}
}

// Rotate applies the rotation to a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}
