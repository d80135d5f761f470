package mathutil

import "math"

// singularityThreshold marks pitch close enough to ±90° that yaw and roll
// are no longer independent.
const singularityThreshold = 0.4999995

// YUpToZUp re-expresses a Y-up rotation matrix in a Z-up, left-handed frame:
// the source Y and Z axes swap and the new Y is negated.
func YUpToZUp(m Mat3) Mat3 {
	return Mat3{
		m[0], m[2], -m[1],
		m[6], m[8], -m[7],
		-m[3], -m[5], m[4],
	}
}

// NormalizeAxis wraps an angle in degrees into (-180, 180].
func NormalizeAxis(a float64) float64 {
	a = math.Mod(a, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}
