package mathutil

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 [3]float64

// Uniform returns a vector with all components set to s.
func Uniform(s float64) Vec3 {
	return Vec3{s, s, s}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}
