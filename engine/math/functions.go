package math

import (
	m "math"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float32 = 3.14159265358979323846
	/** @brief An approximate representation of PI divided by 2. */
	K_HALF_PI float32 = 0.5 * K_PI
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	K_RAD2DEG_MULTIPLIER float32 = 180.0 / K_PI
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
	/** @brief Below this distance from +/-1 the slerp weights degrade to a lerp. */
	K_SLERP_TOLERANCE float32 = 1.0e-5
)

func ksin(x float32) float32 {
	return float32(m.Sin(float64(x)))
}

func kacos(x float32) float32 {
	return float32(m.Acos(float64(x)))
}

func ksqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func kabs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float32) bool {
	f := float64(x)
	return !m.IsNaN(f) && !m.IsInf(f, 0)
}

// ------------------------------------------
// Vector 3
// ------------------------------------------

/**
 * @brief Creates and returns a new 3-element vector using the supplied values.
 */
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

/**
 * @brief Creates and returns a 3-component vector with all components set to 0.0f.
 */
func NewVec3Zero() Vec3 {
	return Vec3{0.0, 0.0, 0.0}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

func (v Vec3) MulScalar(scalar float32) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

func (v Vec3) Length() float32 {
	return ksqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

/**
 * @brief Linearly interpolates between v and other. t is not clamped, so
 * values outside [0, 1] extrapolate. t=0 yields v and t=1 yields other exactly.
 *
 * @param other The target vector.
 * @param t The interpolation factor.
 * @return The interpolated vector.
 */
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	return Vec3{
		Lerp(v.X, other.X, t),
		Lerp(v.Y, other.Y, t),
		Lerp(v.Z, other.Z, t)}
}

/**
 * @brief Compares all elements of v and other and ensures the difference
 * is less than tolerance.
 *
 * @param tolerance The difference tolerance. Typically K_FLOAT_EPSILON or similar.
 * @return True if within tolerance; otherwise false.
 */
func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	return kabs(v.X-other.X) <= tolerance &&
		kabs(v.Y-other.Y) <= tolerance &&
		kabs(v.Z-other.Z) <= tolerance
}

// ------------------------------------------
// Quaternion
// ------------------------------------------

/**
 * @brief Creates an identity quaternion.
 */
func NewQuatIdentity() Quaternion {
	return Quaternion{0, 0, 0, 1.0}
}

/**
 * @brief Creates a quaternion from the given axis and angle.
 *
 * @param axis The axis of rotation. Expected to be unit length.
 * @param angle The angle of rotation in radians.
 */
func NewQuatFromAxisAngle(axis Vec3, angle float32) Quaternion {
	halfAngle := 0.5 * angle
	s := ksin(halfAngle)
	c := float32(m.Cos(float64(halfAngle)))
	return Quaternion{s * axis.X, s * axis.Y, s * axis.Z, c}
}

/**
 * @brief Returns the normal (length) of the provided quaternion.
 */
func (q Quaternion) Normal() float32 {
	return ksqrt(q.Dot(q))
}

/**
 * @brief Returns a normalized copy of the provided quaternion.
 */
func (q Quaternion) Normalize() Quaternion {
	normal := q.Normal()
	return Quaternion{
		q.X / normal,
		q.Y / normal,
		q.Z / normal,
		q.W / normal}
}

/**
 * @brief Calculates the dot product of the provided quaternions.
 */
func (q Quaternion) Dot(other Quaternion) float32 {
	return q.X*other.X +
		q.Y*other.Y +
		q.Z*other.Z +
		q.W*other.W
}

func (q Quaternion) Negate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, -q.W}
}

/**
 * @brief Compares all components of q and other against tolerance.
 */
func (q Quaternion) Compare(other Quaternion, tolerance float32) bool {
	return kabs(q.X-other.X) <= tolerance &&
		kabs(q.Y-other.Y) <= tolerance &&
		kabs(q.Z-other.Z) <= tolerance &&
		kabs(q.W-other.W) <= tolerance
}

/**
 * @brief Calculates spherical linear interpolation of a given percentage
 * between two quaternions, taking the shorter path.
 *
 * Inputs are not normalized and neither is the result. Nearly parallel inputs
 * fall back to a linear blend of the weights. percentage 0 returns q and 1
 * returns other unchanged; other values, including ones outside [0, 1], are
 * evaluated on the arc.
 *
 * @param other The second quaternion.
 * @param percentage The percentage of interpolation, typically a value from 0.0f-1.0f.
 * @return An interpolated quaternion.
 */
func (q Quaternion) Slerp(other Quaternion, percentage float32) Quaternion {
	if percentage == 0 {
		return q
	}
	if percentage == 1 {
		return other
	}

	cosom := q.Dot(other)
	target := other
	if cosom < 0.0 {
		cosom = -cosom
		target = other.Negate()
	}

	var s0, s1 float32
	if (1.0 + cosom) > K_SLERP_TOLERANCE {
		if (1.0 - cosom) > K_SLERP_TOLERANCE {
			om := kacos(cosom)
			rsinom := 1.0 / ksin(om)
			s0 = ksin((1.0-percentage)*om) * rsinom
			s1 = ksin(percentage*om) * rsinom
		} else {
			s0 = 1.0 - percentage
			s1 = percentage
		}
		return Quaternion{
			s0*q.X + s1*target.X,
			s0*q.Y + s1*target.Y,
			s0*q.Z + s1*target.Z,
			s0*q.W + s1*target.W}
	}

	// opposite rotations: go through a perpendicular quaternion
	s0 = ksin((1.0 - percentage) * K_HALF_PI)
	s1 = ksin(percentage * K_HALF_PI)
	return Quaternion{
		s0*q.X - s1*q.Y,
		s0*q.Y + s1*q.X,
		s0*q.Z - s1*q.W,
		s0*q.W + s1*q.Z}
}

/**
 * @brief Converts provided degrees to radians.
 */
func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

/**
 * @brief Converts provided radians to degrees.
 */
func RadToDeg(radians float32) float32 {
	return radians * K_RAD2DEG_MULTIPLIER
}
