package mathutil

import "math"

// orthoTolerance bounds how far MᵀM may drift from identity before the
// columns are rebuilt.
const orthoTolerance = 1e-6

// mirrorZ flips the local Z axis.
var mirrorZ = Mat3{1, 0, 0, 0, 1, 0, 0, 0, -1}

// ProperRotation extracts the rotation part of m. Columns are the local axes;
// scale or shear baked into them is removed by Gram-Schmidt, keeping the X
// axis direction. A reflection is undone by flipping local Z, and mirrored
// reports it so the caller can carry the flip as a negative scale.
// A degenerate matrix yields identity.
func ProperRotation(m Mat3) (r Mat3, mirrored bool) {
	r = m
	if !isOrthonormal(m) {
		var ok bool
		if r, ok = orthonormalize(m); !ok {
			return Mat3Identity(), false
		}
	}
	if r.Det() < 0 {
		return Mat3Mul(r, mirrorZ), true
	}
	return r, false
}

func isOrthonormal(m Mat3) bool {
	p := Mat3Mul(m.Transpose(), m)
	id := Mat3Identity()
	for i := range p {
		if math.Abs(p[i]-id[i]) > orthoTolerance {
			return false
		}
	}
	return true
}

// orthonormalize runs Gram-Schmidt over the columns of m.
func orthonormalize(m Mat3) (Mat3, bool) {
	cols := m.Transpose()
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		v := [3]float64{cols[i*3], cols[i*3+1], cols[i*3+2]}
		for j := 0; j < i; j++ {
			d := v[0]*out[j][0] + v[1]*out[j][1] + v[2]*out[j][2]
			for k := range v {
				v[k] -= d * out[j][k]
			}
		}
		n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		if n < orthoTolerance {
			return Mat3{}, false
		}
		for k := range v {
			out[i][k] = v[k] / n
		}
	}
	return Mat3{
		out[0][0], out[0][1], out[0][2],
		out[1][0], out[1][1], out[1][2],
		out[2][0], out[2][1], out[2][2],
	}.Transpose(), true
}
