package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// singularRatio bounds det(M)/(tr(M)/3)³ for a symmetric positive definite
// M. The ratio is 1 for a multiple of the identity and independent of scale.
const singularRatio = 1e-14

// invert returns the inverse of m from its adjugate. Unlike mgl64's Mat3.Inv
// it applies no cutoff to the determinant, so tiny but regular matrices are
// inverted and a singular one yields Inf or NaN entries.
func invert(m mgl64.Mat3) mgl64.Mat3 {
	c0, c1, c2 := m.Col(0), m.Col(1), m.Col(2)
	r0 := c1.Cross(c2)
	r1 := c2.Cross(c0)
	r2 := c0.Cross(c1)
	det := c0.Dot(r0)
	return mgl64.Mat3FromRows(r0, r1, r2).Mul(1 / det)
}

// nearSingular reports whether the symmetric positive semi-definite m is
// singular relative to its own scale.
func nearSingular(m mgl64.Mat3) (bool, float64) {
	det := m.Det()
	mean := m.Trace() / 3
	if !(mean > 0) || math.IsInf(mean, 0) {
		return true, det
	}
	return !(det/(mean*mean*mean) > singularRatio), det
}
