package topology

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// normalTolerance is the squared distance below which two vertex normals
// count as the same normal when welding.
const normalTolerance = 1e-10

// toVec converts a float64 triple into a vector.
func toVec(p [3]float64) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

// normalize returns the unit vector along v, or the zero vector when v has
// no length.
func normalize(v v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 || math.IsNaN(l) {
		return v3.Vec{}
	}
	return v.MulScalar(1 / l)
}

// sameNormal reports whether two normals are equal within normalTolerance.
func sameNormal(a, b v3.Vec) bool {
	d := a.Sub(b)
	return d.Dot(d) <= normalTolerance
}

// isFinite reports whether no component of v is NaN or infinite.
func isFinite(v v3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// isZero reports whether v is exactly the zero vector.
func isZero(v v3.Vec) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
