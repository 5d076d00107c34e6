package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/phitop/internal/dynamo"
)

// Params are the scalar constants of the contact model.
type Params struct {
	Gravity  float64
	Friction float64
	// RollFriction opposes the spin with a torque proportional to the
	// normal force. Zero disables it.
	RollFriction float64
	// ReferenceHeight is the centre height at which potential energy is zero.
	ReferenceHeight float64
}

func DefaultParams() Params {
	return Params{
		Gravity:         9.81,
		Friction:        0.3,
		ReferenceHeight: 1.0,
	}
}

// PhiTop is a solid ellipsoid spinning and rolling on the plane z = 0 under
// gravity, with viscous friction at the contact point. The contact is kept
// closed at all times: the normal force is whatever keeps the lowest point
// on the plane.
//
// PhiTop holds no per-run state; Derive is safe for concurrent use as long
// as SetParam is not called at the same time.
type PhiTop struct {
	shape  Shape
	params Params
}

func NewPhiTop(shape Shape, params Params) *PhiTop {
	return &PhiTop{shape: shape, params: params}
}

func (p *PhiTop) Shape() Shape   { return p.shape }
func (p *PhiTop) Params() Params { return p.params }

func (p *PhiTop) StateDim() int { return StateDim }

// Derive evaluates the equations of motion at state x. Degenerate
// configurations are not guarded and surface as NaN or Inf.
func (p *PhiTop) Derive(x dynamo.State, t float64) dynamo.State {
	b := Unpack(x)
	v, w := b.Velocity, b.AngularVelocity
	m, g, mu := p.shape.Mass, p.params.Gravity, p.params.Friction

	R := b.Rotation()
	I, B := p.shape.World(R)
	r, dr := p.shape.contact(R, invert(B), w)
	rxe3 := r.Cross(Up)
	wxdr := w.Cross(dr)
	vwxr := v.Add(w.Cross(r))

	// The normal force acts through the lever W; rolling resistance tilts
	// it against the spin.
	W := rxe3
	if p.params.RollFriction != 0 {
		if n := w.Len(); n > 0 {
			W = W.Sub(w.Mul(p.params.RollFriction / (n * r.Len())))
		}
	}

	// The normal reaction enters as the rank-1 term m*W(r×e3)ᵀ.
	I1 := invert(I.Add(W.OuterProd3(rxe3).Mul(m)))
	u := W.Mul(m*g - m*Up.Dot(wxdr)).
		Sub(w.Cross(I.Mul3x1(w))).
		Sub(r.Cross(vwxr).Mul(mu))
	dw := I1.Mul3x1(u)

	lambda := -Up.Dot(dw.Cross(r)) - Up.Dot(w.Cross(dr))
	dv := Up.Mul(lambda).Sub(vwxr.Mul(mu / m))

	dq := mgl64.Quat{W: 0, V: w}.Mul(b.Orientation).Scale(0.5)

	return BodyState{
		Position:        v,
		Orientation:     dq,
		Velocity:        dv,
		AngularVelocity: dw,
	}.Pack()
}

// Contact returns the contact vector r for state x, measured from the
// centre of mass.
func (p *PhiTop) Contact(x dynamo.State) mgl64.Vec3 {
	R := Unpack(x).Rotation()
	_, B := p.shape.World(R)
	r, _ := p.shape.contact(R, invert(B), mgl64.Vec3{})
	return r
}

func (p *PhiTop) KineticEnergy(x dynamo.State) float64 {
	b := Unpack(x)
	I, _ := p.shape.World(b.Rotation())
	w := b.AngularVelocity
	return 0.5*p.shape.Mass*b.Velocity.Dot(b.Velocity) + 0.5*w.Dot(I.Mul3x1(w))
}

func (p *PhiTop) PotentialEnergy(x dynamo.State) float64 {
	return p.shape.Mass * p.params.Gravity * (x[idxPosition+2] - p.params.ReferenceHeight)
}

func (p *PhiTop) Energy(x dynamo.State) float64 {
	return p.KineticEnergy(x) + p.PotentialEnergy(x)
}

// Height is the vertical coordinate of the centre of mass.
func Height(x dynamo.State) float64 {
	return x[idxPosition+2]
}

// QuatNorm is the norm of the orientation part of x.
func QuatNorm(x dynamo.State) float64 {
	return Unpack(x).Orientation.Len()
}

// Project renormalises the orientation quaternion. Derive never does this;
// it is offered to drivers that want to bound the drift.
func (p *PhiTop) Project(x dynamo.State) dynamo.State {
	b := Unpack(x)
	n := b.Orientation.Len()
	if n == 0 || math.IsNaN(n) {
		return x.Clone()
	}
	b.Orientation = b.Orientation.Scale(1 / n)
	return b.Pack()
}

// DefaultState is the start of the reference run: upright, resting on the
// plane, spinning with w = (4, -1, 25).
func (p *PhiTop) DefaultState() dynamo.State {
	return RestingState(p.shape, mgl64.QuatIdent(), mgl64.Vec3{4, -1, 25}, ContactVertical)
}

func (p *PhiTop) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":          p.params.Gravity,
		"friction":         p.params.Friction,
		"roll_friction":    p.params.RollFriction,
		"reference_height": p.params.ReferenceHeight,
		"mass":             p.shape.Mass,
	}
}

// SetParam changes a scalar constant. Changing "mass" rebuilds the tensors
// from the stored semi-axes, scaling any point masses by the same factor.
func (p *PhiTop) SetParam(name string, value float64) error {
	switch name {
	case "gravity":
		p.params.Gravity = value
	case "friction":
		p.params.Friction = value
	case "roll_friction":
		p.params.RollFriction = value
	case "reference_height":
		p.params.ReferenceHeight = value
	case "mass":
		a := p.shape.Axes
		if len(p.shape.Points) == 0 {
			p.shape = NewEllipsoid(a[0], a[1], a[2], value)
			break
		}
		k := value / p.shape.Mass
		body := p.shape.Mass
		points := make([]PointMass, len(p.shape.Points))
		for i, pm := range p.shape.Points {
			body -= pm.Mass
			points[i] = PointMass{Mass: pm.Mass * k, Position: pm.Position}
		}
		p.shape = NewEllipsoid(a[0], a[1], a[2], body*k).WithPointMasses(points...)
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
