package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/phitop/internal/dynamo"
)

func newTestTop(mu float64) *PhiTop {
	params := DefaultParams()
	params.Friction = mu
	return NewPhiTop(NewEllipsoid(Phi, 1, 1, 1), params)
}

func TestDefaultState(t *testing.T) {
	x := newTestTop(0.3).DefaultState()

	want := dynamo.State{0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 4, -1, 25}
	for i := range want {
		if math.Abs(x[i]-want[i]) > 1e-12 {
			t.Errorf("x[%d] = %v, want %v", i, x[i], want[i])
		}
	}
}

func TestEnergy_DefaultState(t *testing.T) {
	top := newTestTop(0.3)
	x := top.DefaultState()

	iyy := 0.2 * (Phi*Phi + 1)
	want := 0.5 * (0.4*16 + iyy*1 + iyy*625)

	if got := top.Energy(x); math.Abs(got-want) > 1e-9 {
		t.Errorf("Energy = %.12f, want %.12f", got, want)
	}
	if pe := top.PotentialEnergy(x); math.Abs(pe) > 1e-12 {
		t.Errorf("PotentialEnergy = %v, want 0 at the reference height", pe)
	}
}

func TestDerive_UprightRestIsFixedPoint(t *testing.T) {
	for _, mu := range []float64{0, 0.3, 5} {
		top := newTestTop(mu)
		x := RestingState(top.Shape(), mgl64.QuatIdent(), mgl64.Vec3{}, ContactNone)

		dx := top.Derive(x, 0)
		for i, v := range dx {
			if math.Abs(v) > 1e-12 {
				t.Errorf("mu=%v: dx[%d] = %v, want 0", mu, i, v)
			}
		}
	}
}

func TestDerive_TiltedRestFallsVertically(t *testing.T) {
	for _, mu := range []float64{0, 0.3, 2} {
		top := newTestTop(mu)
		x := RestingState(top.Shape(), mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0}), mgl64.Vec3{}, ContactNone)

		d := Unpack(top.Derive(x, 0))
		r := top.Contact(x)
		lambda := -Up.Dot(d.AngularVelocity.Cross(r))

		if d.Velocity.X() != 0 || d.Velocity.Y() != 0 {
			t.Errorf("mu=%v: horizontal acceleration %v, want none at rest", mu, d.Velocity)
		}
		if math.Abs(d.Velocity.Z()-lambda) > 1e-12 {
			t.Errorf("mu=%v: dv_z = %v, want lambda = %v", mu, d.Velocity.Z(), lambda)
		}
		if math.Abs(d.Velocity.Z()-(-1.978741359961895)) > 1e-9 {
			t.Errorf("mu=%v: dv_z = %v", mu, d.Velocity.Z())
		}
		if math.Abs(d.AngularVelocity.Y()-(-4.627633757406028)) > 1e-9 {
			t.Errorf("mu=%v: dw_y = %v", mu, d.AngularVelocity.Y())
		}
		if d.Position.Len() != 0 || d.Orientation.Len() != 0 {
			t.Errorf("mu=%v: dc=%v dq=%v, want zero at rest", mu, d.Position, d.Orientation)
		}
	}
}

func TestDerive_ContactStaysOnPlane(t *testing.T) {
	// The vertical velocity of the contact point is v_z + e3·dr. It must
	// stay zero, and so must its rate.
	top := newTestTop(0.3)
	q := mgl64.QuatRotate(0.4, mgl64.Vec3{1, 2, 0.5}.Normalize())
	w := mgl64.Vec3{4, -1, 25}
	x := RestingState(top.Shape(), q, w, ContactRolling)

	d := Unpack(top.Derive(x, 0))
	b := Unpack(x)
	_, B := top.Shape().World(b.Rotation())
	r := ContactPoint(invert(B))
	dr := ContactVelocity(w, r, invert(B))

	if vz := b.Velocity.Z() + Up.Dot(w.Cross(r)); math.Abs(vz) > 1e-12 {
		t.Errorf("initial contact point vertical velocity = %v", vz)
	}
	az := d.Velocity.Z() + Up.Dot(d.AngularVelocity.Cross(r)) + Up.Dot(w.Cross(dr))
	if math.Abs(az) > 1e-9 {
		t.Errorf("contact point vertical acceleration = %v, want 0", az)
	}
}

func TestDerive_QuaternionRate(t *testing.T) {
	top := newTestTop(0.3)
	q := mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 1}.Normalize())
	w := mgl64.Vec3{1, 2, 3}
	x := RestingState(top.Shape(), q, w, ContactVertical)

	dq := Unpack(top.Derive(x, 0)).Orientation
	want := mgl64.Quat{V: w}.Mul(q).Scale(0.5)

	if !dq.ApproxEqualThreshold(want, 1e-15) {
		t.Errorf("dq = %v, want %v", dq, want)
	}
	// d|q|²/dt = 2 q·dq vanishes for a pure angular velocity.
	if dot := q.Dot(dq); math.Abs(dot) > 1e-13 {
		t.Errorf("q·dq = %v, want 0", dot)
	}
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	top := newTestTop(0.3)
	x := top.DefaultState()
	orig := x.Clone()

	top.Derive(x, 0)
	for i := range x {
		if x[i] != orig[i] {
			t.Fatalf("x[%d] changed from %v to %v", i, orig[i], x[i])
		}
	}
}

func TestDerive_DegenerateShapePropagatesNaN(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
	}{
		{"zero semi-axis", NewEllipsoid(0, 1, 1, 1)},
		{"infinite semi-axis", NewEllipsoid(math.Inf(1), 1, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := NewPhiTop(tt.shape, DefaultParams())
			x := dynamo.State{0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 4, -1, 25}

			if dx := top.Derive(x, 0); dx.IsValid() {
				t.Errorf("Derive = %v, want non-finite components", dx)
			}
		})
	}
}

func TestProject(t *testing.T) {
	top := newTestTop(0.3)
	x := top.DefaultState()
	x[3], x[4] = 2, 0.5

	p := top.Project(x)
	if n := QuatNorm(p); math.Abs(n-1) > 1e-15 {
		t.Errorf("|q| = %v after Project, want 1", n)
	}
	if x[3] != 2 {
		t.Error("Project modified its input")
	}
	for _, i := range []int{0, 1, 2, 7, 8, 9, 10, 11, 12} {
		if p[i] != x[i] {
			t.Errorf("Project changed component %d", i)
		}
	}
}

func TestParams(t *testing.T) {
	top := newTestTop(0.3)

	if err := top.SetParam("friction", 0.1); err != nil {
		t.Fatal(err)
	}
	if err := top.SetParam("mass", 2); err != nil {
		t.Fatal(err)
	}
	if err := top.SetParam("spin", 1); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("SetParam(spin) = %v, want ErrUnknownParam", err)
	}

	p := top.GetParams()
	if p["friction"] != 0.1 || p["mass"] != 2 || p["gravity"] != 9.81 {
		t.Errorf("GetParams = %v", p)
	}
	if got := top.Shape().I0.At(0, 0); math.Abs(got-0.8) > 1e-12 {
		t.Errorf("I0[0][0] = %v after mass change, want 0.8", got)
	}
}

func TestRestingState_Modes(t *testing.T) {
	shape := NewEllipsoid(Phi, 1, 1, 1)
	q := mgl64.QuatRotate(0.5, mgl64.Vec3{1, 0, 1}.Normalize())
	w := mgl64.Vec3{0.5, 2, 10}

	for _, mode := range []ContactMode{ContactNone, ContactVertical, ContactRolling} {
		b := Unpack(RestingState(shape, q, w, mode))
		_, B := shape.World(q.Mat4().Mat3())
		r := ContactPoint(invert(B))

		if math.Abs(b.Position.Z()+r.Z()) > 1e-15 {
			t.Errorf("%s: centre height %v does not rest on plane (r_z=%v)", mode, b.Position.Z(), r.Z())
		}

		slip := b.Velocity.Add(w.Cross(r))
		switch mode {
		case ContactNone:
			if b.Velocity.Len() != 0 {
				t.Errorf("none: v = %v", b.Velocity)
			}
		case ContactVertical:
			if math.Abs(slip.Z()) > 1e-12 || b.Velocity.X() != 0 || b.Velocity.Y() != 0 {
				t.Errorf("vertical: v = %v, slip = %v", b.Velocity, slip)
			}
		case ContactRolling:
			if slip.Len() > 1e-12 {
				t.Errorf("rolling: contact slip = %v, want zero", slip)
			}
		}
	}
}

func TestParseContactMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ContactMode
		wantErr bool
	}{
		{"", ContactVertical, false},
		{"none", ContactNone, false},
		{"rolling", ContactRolling, false},
		{"sliding", "", true},
	}

	for _, tt := range tests {
		got, err := ParseContactMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseContactMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestDerive_ScalesWithBodySize(t *testing.T) {
	// At rest the angular acceleration goes as g/L and the vertical
	// acceleration does not depend on size or mass.
	tilt := mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0})
	tests := []struct {
		name       string
		length, mE float64
	}{
		{"centimetre and gram", 0.01, 0.001},
		{"unit", 1, 1},
		{"ten kilometre", 1e4, 1e6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := tt.length
			top := NewPhiTop(NewEllipsoid(Phi*L, L, L, tt.mE), DefaultParams())
			x := RestingState(top.Shape(), tilt, mgl64.Vec3{}, ContactNone)

			d := Unpack(top.Derive(x, 0))
			want := -4.627633757406028 / L
			if math.Abs(d.AngularVelocity.Y()-want) > 1e-9*math.Abs(want) {
				t.Errorf("dw_y = %v, want %v", d.AngularVelocity.Y(), want)
			}
			if math.Abs(d.Velocity.Z()-(-1.978741359961895)) > 1e-9 {
				t.Errorf("dv_z = %v", d.Velocity.Z())
			}
		})
	}
}

func TestDerive_SmallSpinningBody(t *testing.T) {
	shape := NewEllipsoid(0.016, 0.01, 0.01, 0.001)
	top := NewPhiTop(shape, DefaultParams())
	q := mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0})
	w := mgl64.Vec3{4, -1, 25}
	x := RestingState(shape, q, w, ContactVertical)

	dx := top.Derive(x, 0)
	if !dx.IsValid() {
		t.Fatalf("Derive = %v, want finite", dx)
	}
	d := Unpack(dx)
	if d.AngularVelocity.Len() == 0 {
		t.Fatal("tilted spinning body has no angular acceleration")
	}

	R := q.Mat4().Mat3()
	_, B := shape.World(R)
	r, dr := shape.contact(R, invert(B), w)
	az := d.Velocity.Z() + Up.Dot(d.AngularVelocity.Cross(r)) + Up.Dot(w.Cross(dr))
	if math.Abs(az) > 1e-9 {
		t.Errorf("contact point vertical acceleration = %v, want 0", az)
	}
}

func TestDerive_RollFriction(t *testing.T) {
	params := DefaultParams()
	params.Friction = 0
	params.RollFriction = 0.1
	top := NewPhiTop(NewEllipsoid(Phi, 1, 1, 1), params)

	x := RestingState(top.Shape(), mgl64.QuatIdent(), mgl64.Vec3{0, 0, 10}, ContactNone)
	d := Unpack(top.Derive(x, 0))

	// Upright on the z axis the torque is -µ_roll·m·g about the spin.
	izz := 0.2 * (Phi*Phi + 1)
	want := -0.1 * 9.81 / izz
	if math.Abs(d.AngularVelocity.Z()-want) > 1e-12 {
		t.Errorf("dw_z = %v, want %v", d.AngularVelocity.Z(), want)
	}
	if math.Abs(d.AngularVelocity.X()) > 1e-12 || math.Abs(d.AngularVelocity.Y()) > 1e-12 {
		t.Errorf("dw = %v, want spin-down only", d.AngularVelocity)
	}

	still := RestingState(top.Shape(), mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0}), mgl64.Vec3{}, ContactNone)
	plain := newTestTop(0)
	got, want0 := top.Derive(still, 0), plain.Derive(still, 0)
	for i := range got {
		if got[i] != want0[i] {
			t.Errorf("without spin dx[%d] = %v, want %v", i, got[i], want0[i])
		}
	}
}

func TestDerive_PointMasses(t *testing.T) {
	// A sphere weighted straight below its centre rests upright.
	tippe := NewEllipsoid(1, 1, 1, 1).WithPointMasses(PointMass{Mass: 0.5, Position: mgl64.Vec3{0, 0, -0.5}})
	top := NewPhiTop(tippe, DefaultParams())
	x := RestingState(tippe, mgl64.QuatIdent(), mgl64.Vec3{}, ContactNone)

	if h := Height(x); math.Abs(h-(1-0.5/3)) > 1e-12 {
		t.Errorf("centre of mass height = %v, want %v", h, 1-0.5/3)
	}
	for i, v := range top.Derive(x, 0) {
		if math.Abs(v) > 1e-12 {
			t.Errorf("dx[%d] = %v, want 0", i, v)
		}
	}

	// A skewed pair keeps the contact on the plane while the body spins.
	rattle := NewEllipsoid(Phi, 1, 0.5, 1).WithPointMasses(
		PointMass{Mass: 0.2, Position: mgl64.Vec3{0.5, 0.5, -0.3}},
		PointMass{Mass: 0.2, Position: mgl64.Vec3{-0.5, -0.5, -0.3}},
	)
	top = NewPhiTop(rattle, DefaultParams())
	q := mgl64.QuatRotate(0.2, mgl64.Vec3{1, 0, 0})
	w := mgl64.Vec3{0.1, 0.2, -2}
	x = RestingState(rattle, q, w, ContactVertical)

	d := Unpack(top.Derive(x, 0))
	R := q.Mat4().Mat3()
	_, B := rattle.World(R)
	r, dr := rattle.contact(R, invert(B), w)
	if !top.Contact(x).ApproxEqualThreshold(r, 1e-15) {
		t.Errorf("Contact = %v, want %v", top.Contact(x), r)
	}
	if vz := Unpack(x).Velocity.Z() + Up.Dot(w.Cross(r)); math.Abs(vz) > 1e-12 {
		t.Errorf("initial contact point vertical velocity = %v", vz)
	}
	az := d.Velocity.Z() + Up.Dot(d.AngularVelocity.Cross(r)) + Up.Dot(w.Cross(dr))
	if math.Abs(az) > 1e-9 {
		t.Errorf("contact point vertical acceleration = %v, want 0", az)
	}
}

func TestSetParam_MassWithPointMasses(t *testing.T) {
	shape := NewEllipsoid(1, 1, 1, 1).WithPointMasses(PointMass{Mass: 1, Position: mgl64.Vec3{0, 0, -0.5}})
	top := NewPhiTop(shape, DefaultParams())

	if err := top.SetParam("mass", 4); err != nil {
		t.Fatal(err)
	}
	got := top.Shape()
	if math.Abs(got.Mass-4) > 1e-12 {
		t.Errorf("Mass = %v, want 4", got.Mass)
	}
	if !got.Offset.ApproxEqualThreshold(shape.Offset, 1e-12) {
		t.Errorf("Offset = %v, want %v", got.Offset, shape.Offset)
	}
	if len(got.Points) != 1 || got.Points[0].Mass != 2 {
		t.Errorf("Points = %v, want one mass of 2", got.Points)
	}
	if !got.I0.ApproxEqualThreshold(shape.I0.Mul(2), 1e-12) {
		t.Errorf("I0 = %v, want twice %v", got.I0, shape.I0)
	}
}
