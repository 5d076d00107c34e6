package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Phi is the golden ratio, the long semi-axis of the classic phi top.
var Phi = 0.5 * (1.0 + math.Sqrt(5.0))

// Shape holds the body-frame constants of a solid ellipsoid. It is built
// once and only read afterwards.
type Shape struct {
	// Semi-axes a, b, c along the body x, y, z axes.
	Axes mgl64.Vec3
	Mass float64
	// I0 is the inertia tensor about the centre of mass in the body frame.
	I0 mgl64.Mat3
	// B0 holds the quadratic-form coefficients of x'B0x = 1.
	B0 mgl64.Mat3
	// Offset is the ellipsoid centre seen from the centre of mass, in the
	// body frame. It is zero unless point masses are attached.
	Offset mgl64.Vec3
	Points []PointMass
}

// PointMass is a mass fixed to the body at Position, measured in the body
// frame from the centre of the ellipsoid.
type PointMass struct {
	Mass     float64
	Position mgl64.Vec3
}

// NewEllipsoid builds the inertia and shape tensors of a homogeneous solid
// ellipsoid with semi-axes a, b, c and mass mE. Non-positive axes are not
// rejected here; see Validate.
func NewEllipsoid(a, b, c, mE float64) Shape {
	a2 := a * a
	b2 := b * b
	c2 := c * c

	ixx := 0.2 * mE * (b2 + c2)
	iyy := 0.2 * mE * (a2 + c2)
	izz := 0.2 * mE * (a2 + b2)

	return Shape{
		Axes: mgl64.Vec3{a, b, c},
		Mass: mE,
		I0:   mgl64.Diag3(mgl64.Vec3{ixx, iyy, izz}),
		B0:   mgl64.Diag3(mgl64.Vec3{1.0 / a2, 1.0 / b2, 1.0 / c2}),
	}
}

// World returns I and B rotated into the world frame, R*X*R^T.
func (s Shape) World(R mgl64.Mat3) (I, B mgl64.Mat3) {
	RT := R.Transpose()
	B = R.Mul3(s.B0).Mul3(RT)
	I = R.Mul3(s.I0).Mul3(RT)
	return I, B
}

// WithPointMasses attaches masses to the body. The result carries the
// combined mass, the inertia about the shifted centre of mass and the
// matching Offset. A rattleback is an ellipsoid with a skewed pair.
func (s Shape) WithPointMasses(points ...PointMass) Shape {
	if len(points) == 0 {
		return s
	}
	com := s.Offset.Mul(-1)
	total := s.Mass
	moment := com.Mul(s.Mass)
	// Inertia about the ellipsoid centre.
	Ic := s.I0.Add(pointInertia(s.Mass, com))
	for _, pm := range points {
		total += pm.Mass
		moment = moment.Add(pm.Position.Mul(pm.Mass))
		Ic = Ic.Add(pointInertia(pm.Mass, pm.Position))
	}
	com = moment.Mul(1 / total)

	s.Mass = total
	s.I0 = Ic.Sub(pointInertia(total, com))
	s.Offset = com.Mul(-1)
	s.Points = append(append([]PointMass(nil), s.Points...), points...)
	return s
}

// pointInertia is the inertia of mass m at p about the origin,
// m(|p|²·1 - ppᵀ).
func pointInertia(m float64, p mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Ident3().Mul(p.Dot(p)).Sub(p.OuterProd3(p)).Mul(m)
}

// contact returns the lowest point relative to the centre of mass and its
// rate of change, for rotation R and angular velocity w.
func (s Shape) contact(R, bInv mgl64.Mat3, w mgl64.Vec3) (r, dr mgl64.Vec3) {
	r = ContactPoint(bInv)
	dr = ContactVelocity(w, r, bInv)
	if s.Offset != (mgl64.Vec3{}) {
		d := R.Mul3x1(s.Offset)
		r = r.Add(d)
		dr = dr.Add(w.Cross(d))
	}
	return r, dr
}
