package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Up is the world vertical e3: the plane normal and the direction opposite
// to gravity.
var Up = mgl64.Vec3{0, 0, 1}

// ContactPoint returns the lowest point of the ellipsoid x'Bx = 1 relative
// to its centre, given the inverse world shape tensor:
//
//	r = -B⁻¹e3 / sqrt(e3ᵀB⁻¹e3)
//
// A non-positive e3ᵀB⁻¹e3 yields NaN components.
func ContactPoint(bInv mgl64.Mat3) mgl64.Vec3 {
	be3 := bInv.Mul3x1(Up)
	return be3.Mul(-1.0 / math.Sqrt(Up.Dot(be3)))
}

// ContactVelocity is the time derivative of the contact vector r while the
// body turns with angular velocity w. The contact point slides over the
// surface as the body reorients, so this is not just w×r:
//
//	dr = w×r + B⁻¹(w×e3)/s + r·(e3ᵀ(w×r))/s,  s = -e3ᵀr
func ContactVelocity(w, r mgl64.Vec3, bInv mgl64.Mat3) mgl64.Vec3 {
	s := -Up.Dot(r)
	wxr := w.Cross(r)
	return wxr.
		Add(bInv.Mul3x1(w.Cross(Up)).Mul(1.0 / s)).
		Add(r.Mul(Up.Dot(wxr) / s))
}

// SurfaceResidual returns rᵀBr - 1, which vanishes for points on the surface.
func SurfaceResidual(r mgl64.Vec3, B mgl64.Mat3) float64 {
	return r.Dot(B.Mul3x1(r)) - 1.0
}
