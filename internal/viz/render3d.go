package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/phitop/internal/physics"
)

// Camera is an orthographic view of the world with z up. At zero yaw and
// pitch it looks along +y.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64
	Target     mgl64.Vec3
}

func NewCamera() *Camera {
	return &Camera{Pitch: 0.35, Zoom: 1}
}

func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch = mgl64.Clamp(c.Pitch+dPitch, -math.Pi/2, math.Pi/2)
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) view() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DZ(c.Yaw))
}

// Project maps a world point to a pixel on a w×h surface. ok is false for
// points that land far outside the surface or are not finite.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (x, y int, ok bool) {
	q := c.view().Mul3x1(p.Sub(c.Target))
	s := c.Zoom * float64(min(w, h)) / 6
	fx := q.X()*s + float64(w/2)
	fy := -q.Z()*s + float64(h/2)
	if !(fx > -float64(w) && fx < 2*float64(w) && fy > -float64(h) && fy < 2*float64(h)) {
		return 0, 0, false
	}
	return int(math.Round(fx)), int(math.Round(fy)), true
}

type Segment struct {
	Start, End mgl64.Vec3
}

type Wireframe struct {
	Segments []Segment
}

func (w *Wireframe) AddSegment(a, b mgl64.Vec3) {
	w.Segments = append(w.Segments, Segment{a, b})
}

func (w *Wireframe) AddPoint(p mgl64.Vec3) { w.AddSegment(p, p) }

// AddRing adds the closed curve center + u cos θ + v sin θ as n segments.
func (w *Wireframe) AddRing(center, u, v mgl64.Vec3, n int) {
	prev := center.Add(u)
	for i := 1; i <= n; i++ {
		th := 2 * math.Pi * float64(i) / float64(n)
		next := center.Add(u.Mul(math.Cos(th))).Add(v.Mul(math.Sin(th)))
		w.AddSegment(prev, next)
		prev = next
	}
}

// BodyWireframe outlines the ellipsoid of shape at the pose in x with its
// three principal sections, marks the contact point and draws a patch of
// the ground plane under it.
func BodyWireframe(top *physics.PhiTop, x []float64) *Wireframe {
	b := physics.Unpack(x)
	R := b.Rotation()
	axes := top.Shape().Axes
	e := [3]mgl64.Vec3{
		R.Col(0).Mul(axes[0]),
		R.Col(1).Mul(axes[1]),
		R.Col(2).Mul(axes[2]),
	}

	centre := b.Position.Add(R.Mul3x1(top.Shape().Offset))
	w := &Wireframe{}
	w.AddRing(centre, e[0], e[1], 48)
	w.AddRing(centre, e[1], e[2], 48)
	w.AddRing(centre, e[0], e[2], 48)

	contact := b.Position.Add(top.Contact(x))
	w.AddPoint(contact)

	ground := mgl64.Vec3{contact.X(), contact.Y(), 0}
	size := 1.5 * math.Max(axes[0], math.Max(axes[1], axes[2]))
	for i := -2; i <= 2; i++ {
		d := size * float64(i) / 2
		w.AddSegment(ground.Add(mgl64.Vec3{-size, d, 0}), ground.Add(mgl64.Vec3{size, d, 0}))
		w.AddSegment(ground.Add(mgl64.Vec3{d, -size, 0}), ground.Add(mgl64.Vec3{d, size, 0}))
	}
	return w
}

// Render draws the segments of w whose ends both project near the canvas.
func Render(c *Canvas, w *Wireframe, cam *Camera) {
	pw, ph := c.Pixels()
	for _, s := range w.Segments {
		x0, y0, ok0 := cam.Project(s.Start, pw, ph)
		x1, y1, ok1 := cam.Project(s.End, pw, ph)
		if ok0 && ok1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}
}

// Snapshot draws the body at state x on a new w×h canvas, with cam
// centred on the body.
func Snapshot(top *physics.PhiTop, x []float64, cam *Camera, w, h int) *Canvas {
	c := NewCanvas(w, h)
	view := *cam
	view.Target = physics.Unpack(x).Position
	Render(c, BodyWireframe(top, x), &view)
	return c
}
