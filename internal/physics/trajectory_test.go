package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/phitop/internal/dynamo"
	"github.com/san-kum/phitop/internal/integrators"
	"github.com/san-kum/phitop/internal/physics"
)

type stepFunc func(f integrators.Func[dynamo.State], t, h float64, y dynamo.State) dynamo.State

func integrate(top *physics.PhiTop, step stepFunc, x0 dynamo.State, h float64, n int) []dynamo.State {
	f := integrators.Bind(top)
	out := make([]dynamo.State, 0, n+1)
	out = append(out, x0)
	x := x0
	for i := 0; i < n; i++ {
		x = step(f, float64(i)*h, h, x)
		out = append(out, x)
	}
	return out
}

func relDrift(top *physics.PhiTop, xs []dynamo.State) float64 {
	e0 := top.Energy(xs[0])
	return math.Abs(top.Energy(xs[len(xs)-1])-e0) / math.Abs(e0)
}

var _ = Describe("PhiTop trajectories", func() {
	const (
		h     = 1e-3
		steps = 100
	)

	var (
		shape  physics.Shape
		params physics.Params
	)

	BeforeEach(func() {
		shape = physics.NewEllipsoid(physics.Phi, 1, 1, 1)
		params = physics.DefaultParams()
	})

	Context("without friction", func() {
		var top *physics.PhiTop

		BeforeEach(func() {
			params.Friction = 0
			top = physics.NewPhiTop(shape, params)
		})

		It("conserves energy under RK4", func() {
			xs := integrate(top, integrators.RK4Step[dynamo.State], top.DefaultState(), h, steps)
			Expect(xs).To(HaveLen(steps + 1))
			Expect(xs[steps].IsValid()).To(BeTrue())
			Expect(relDrift(top, xs)).To(BeNumerically("<", 1e-3))
		})

		It("drifts more under Euler than under Heun or RK4", func() {
			x0 := top.DefaultState()
			euler := relDrift(top, integrate(top, integrators.EulerStep[dynamo.State], x0, h, steps))
			heun := relDrift(top, integrate(top, integrators.HeunStep[dynamo.State], x0, h, steps))
			rk4 := relDrift(top, integrate(top, integrators.RK4Step[dynamo.State], x0, h, steps))

			Expect(euler).To(BeNumerically(">", heun))
			Expect(heun).To(BeNumerically(">", rk4))
		})

		It("keeps the orientation quaternion near unit length", func() {
			xs := integrate(top, integrators.RK4Step[dynamo.State], top.DefaultState(), h, steps)
			for _, x := range xs {
				Expect(physics.QuatNorm(x)).To(BeNumerically("~", 1, 1e-8))
			}
		})

		It("keeps the lowest point on the plane", func() {
			xs := integrate(top, integrators.RK4Step[dynamo.State], top.DefaultState(), h, steps)
			for _, x := range xs {
				r := top.Contact(x)
				Expect(physics.Height(x) + r.Z()).To(BeNumerically("~", 0, 1e-6))
			}
		})
	})

	Context("with friction", func() {
		It("dissipates energy", func() {
			top := physics.NewPhiTop(shape, params)
			xs := integrate(top, integrators.RK4Step[dynamo.State], top.DefaultState(), h, steps)
			Expect(top.Energy(xs[steps])).To(BeNumerically("<", top.Energy(xs[0])))
		})
	})

	Context("with rolling friction only", func() {
		It("spins down while the plane stays frictionless", func() {
			params.Friction = 0
			params.RollFriction = 0.05
			top := physics.NewPhiTop(shape, params)
			xs := integrate(top, integrators.RK4Step[dynamo.State], top.DefaultState(), h, steps)
			Expect(xs[steps].IsValid()).To(BeTrue())
			Expect(top.Energy(xs[steps])).To(BeNumerically("<", top.Energy(xs[0])))
		})
	})

	Context("with point masses", func() {
		var top *physics.PhiTop

		BeforeEach(func() {
			params.Friction = 0
			rattleback := physics.NewEllipsoid(physics.Phi, 1, 0.5, 1).WithPointMasses(
				physics.PointMass{Mass: 0.2, Position: mgl64.Vec3{0.5, 0.5, -0.3}},
				physics.PointMass{Mass: 0.2, Position: mgl64.Vec3{-0.5, -0.5, -0.3}},
			)
			top = physics.NewPhiTop(rattleback, params)
		})

		It("conserves energy on a frictionless plane", func() {
			q := mgl64.QuatRotate(0.1, mgl64.Vec3{1, 0, 0})
			x0 := physics.RestingState(top.Shape(), q, mgl64.Vec3{0, 0.5, -2}, physics.ContactVertical)
			xs := integrate(top, integrators.RK4Step[dynamo.State], x0, h, steps)
			Expect(xs[steps].IsValid()).To(BeTrue())
			Expect(relDrift(top, xs)).To(BeNumerically("<", 1e-3))
			for _, x := range xs {
				Expect(physics.Height(x) + top.Contact(x).Z()).To(BeNumerically("~", 0, 1e-6))
			}
		})
	})

	Context("with renormalisation", func() {
		It("restores a unit quaternion after each step", func() {
			top := physics.NewPhiTop(shape, params)
			f := integrators.Bind(top)
			x := top.DefaultState()
			for i := 0; i < 10; i++ {
				x = top.Project(integrators.EulerStep(f, float64(i)*h, h, x))
				Expect(physics.QuatNorm(x)).To(BeNumerically("~", 1, 1e-14))
			}
		})
	})

	DescribeTable("rejects degenerate inputs",
		func(a, b, c, m float64) {
			s := physics.NewEllipsoid(a, b, c, m)
			top := physics.NewPhiTop(physics.NewEllipsoid(1, 1, 1, 1), params)
			err := physics.Validate(s, params, top.DefaultState())
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		},
		Entry("negative axis", -1.0, 1.0, 1.0, 1.0),
		Entry("zero mass", 1.0, 1.0, 1.0, 0.0),
		Entry("non-finite axis", math.Inf(1), 1.0, 1.0, 1.0),
	)
})
