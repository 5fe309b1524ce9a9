package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

/**
 * @brief A quaternion, used to represent rotational orientation.
 * Components are stored x, y, z, w; w is the scalar part.
 */
type Quaternion struct {
	X, Y, Z, W float32
}
