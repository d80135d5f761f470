package mathutil

import "math"

// Quat represents a quaternion (x, y, z, w).
type Quat [4]float64

// QuatIdentity is the no-rotation quaternion.
var QuatIdentity = Quat{0, 0, 0, 1}

// Mat3ToQuat converts a rotation matrix to a unit quaternion, picking the
// numerically stable branch by the largest diagonal term.
func Mat3ToQuat(m Mat3) Quat {
	m00, m01, m02 := m[0], m[1], m[2]
	m10, m11, m12 := m[3], m[4], m[5]
	m20, m21, m22 := m[6], m[7], m[8]

	var q Quat
	if trace := m00 + m11 + m22; trace > 0 {
		s := 0.5 / math.Sqrt(trace+1)
		q = Quat{(m21 - m12) * s, (m02 - m20) * s, (m10 - m01) * s, 0.25 / s}
	} else if m00 > m11 && m00 > m22 {
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = Quat{0.25 * s, (m01 + m10) / s, (m02 + m20) / s, (m21 - m12) / s}
	} else if m11 > m22 {
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = Quat{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s, (m02 - m20) / s}
	} else {
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = Quat{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s, (m10 - m01) / s}
	}

	for _, c := range q {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return QuatIdentity
		}
	}
	return q
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return r * 180 / math.Pi
}

// Rotator is an editor rotation in degrees.
type Rotator struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// ToRotator decomposes q into pitch (about Y), yaw (about Z) and roll
// (about X), handling the gimbal-lock poles.
func (q Quat) ToRotator() Rotator {
	x, y, z, w := q[0], q[1], q[2], q[3]

	sing := z*x - w*y
	yaw := Rad2Deg(math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)))

	switch {
	case sing < -singularityThreshold:
		return Rotator{
			Pitch: -90,
			Yaw:   yaw,
			Roll:  NormalizeAxis(-yaw - 2*Rad2Deg(math.Atan2(x, w))),
		}
	case sing > singularityThreshold:
		return Rotator{
			Pitch: 90,
			Yaw:   yaw,
			Roll:  NormalizeAxis(yaw - 2*Rad2Deg(math.Atan2(x, w))),
		}
	}
	return Rotator{
		Pitch: Rad2Deg(math.Asin(2 * sing)),
		Yaw:   yaw,
		Roll:  Rad2Deg(math.Atan2(-2*(w*x+y*z), 1-2*(x*x+y*y))),
	}
}
