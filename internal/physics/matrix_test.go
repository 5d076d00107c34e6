package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestInvert_TinyMatrix(t *testing.T) {
	R := mgl64.QuatRotate(0.7, mgl64.Vec3{1, 2, 3}.Normalize()).Mat4().Mat3()
	m := R.Mul3(mgl64.Diag3(mgl64.Vec3{1e-8, 2e-8, 3e-8})).Mul3(R.Transpose())

	if det := m.Det(); math.Abs(det) > 1e-20 {
		t.Fatalf("det = %v, want below the mgl64 cutoff", det)
	}
	if got := m.Mul3(invert(m)); !got.ApproxEqualThreshold(mgl64.Ident3(), 1e-9) {
		t.Errorf("m * invert(m) = %v, want identity", got)
	}
}

func TestInvert_Singular(t *testing.T) {
	m := mgl64.Diag3(mgl64.Vec3{1, 1, 0})
	inv := invert(m)
	finite := true
	for _, v := range inv {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			finite = false
		}
	}
	if finite {
		t.Errorf("invert(singular) = %v, want non-finite entries", inv)
	}
}

func TestNearSingular(t *testing.T) {
	tests := []struct {
		name string
		m    mgl64.Mat3
		want bool
	}{
		{"identity", mgl64.Ident3(), false},
		{"tiny multiple of identity", mgl64.Ident3().Mul(1e-9), false},
		{"huge multiple of identity", mgl64.Ident3().Mul(1e9), false},
		{"elongated", mgl64.Diag3(mgl64.Vec3{1e-4, 1, 1}), false},
		{"degenerate axis", mgl64.Diag3(mgl64.Vec3{1e-22, 1, 1}), true},
		{"zero", mgl64.Mat3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := nearSingular(tt.m); got != tt.want {
				t.Errorf("nearSingular = %v, want %v", got, tt.want)
			}
		})
	}
}
