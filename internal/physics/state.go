package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/phitop/internal/dynamo"
)

// StateDim is the length of a rigid-body state vector.
const StateDim = 13

// Offsets of each quantity within the state vector.
const (
	idxPosition        = 0
	idxOrientation     = 3
	idxVelocity        = 7
	idxAngularVelocity = 10
)

// BodyState is the 13-component state vector split into its physical
// quantities. Position, Velocity and AngularVelocity are world-frame; the
// orientation is a unit quaternion stored scalar first.
type BodyState struct {
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// Unpack reads a state vector. x must have at least StateDim entries.
func Unpack(x dynamo.State) BodyState {
	return BodyState{
		Position: vec3At(x, idxPosition),
		Orientation: mgl64.Quat{
			W: x[idxOrientation],
			V: vec3At(x, idxOrientation+1),
		},
		Velocity:        vec3At(x, idxVelocity),
		AngularVelocity: vec3At(x, idxAngularVelocity),
	}
}

// Pack writes the state in the fixed layout c, q(w,x,y,z), v, w.
func (b BodyState) Pack() dynamo.State {
	x := make(dynamo.State, StateDim)
	copy(x[idxPosition:], b.Position[:])
	x[idxOrientation] = b.Orientation.W
	copy(x[idxOrientation+1:], b.Orientation.V[:])
	copy(x[idxVelocity:], b.Velocity[:])
	copy(x[idxAngularVelocity:], b.AngularVelocity[:])
	return x
}

// Rotation returns the rotation matrix of the orientation quaternion. The
// quaternion is used as is, without normalisation.
func (b BodyState) Rotation() mgl64.Mat3 {
	return b.Orientation.Mat4().Mat3()
}

func vec3At(x dynamo.State, i int) mgl64.Vec3 {
	return mgl64.Vec3{x[i], x[i+1], x[i+2]}
}
