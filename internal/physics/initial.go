package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/phitop/internal/dynamo"
)

// ContactMode selects how an initial centre velocity is derived from the
// spin so that the start is consistent with the contact.
type ContactMode string

const (
	// ContactNone leaves the velocity at zero.
	ContactNone ContactMode = "none"
	// ContactVertical cancels only the vertical velocity of the contact
	// point: v = (0, 0, -e3·(w×r)).
	ContactVertical ContactMode = "vertical"
	// ContactRolling starts in pure rolling: v = -(w×r).
	ContactRolling ContactMode = "rolling"
)

func ParseContactMode(s string) (ContactMode, error) {
	switch m := ContactMode(s); m {
	case ContactNone, ContactVertical, ContactRolling:
		return m, nil
	case "":
		return ContactVertical, nil
	default:
		return "", fmt.Errorf("unknown contact mode %q (want none, vertical or rolling)", s)
	}
}

// ContactVelocityFor returns the centre velocity that matches mode for a
// body with contact vector r and angular velocity w.
func ContactVelocityFor(mode ContactMode, w, r mgl64.Vec3) mgl64.Vec3 {
	wxr := w.Cross(r)
	switch mode {
	case ContactVertical:
		return mgl64.Vec3{0, 0, -Up.Dot(wxr)}
	case ContactRolling:
		return wxr.Mul(-1)
	default:
		return mgl64.Vec3{}
	}
}

// RestingState places the body at the origin with orientation q, lowered so
// its lowest point touches the plane, spinning with w.
func RestingState(shape Shape, q mgl64.Quat, w mgl64.Vec3, mode ContactMode) dynamo.State {
	R := q.Mat4().Mat3()
	_, B := shape.World(R)
	r, _ := shape.contact(R, invert(B), w)

	return BodyState{
		Position:        mgl64.Vec3{0, 0, -r.Z()},
		Orientation:     q,
		Velocity:        ContactVelocityFor(mode, w, r),
		AngularVelocity: w,
	}.Pack()
}
