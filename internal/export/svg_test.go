package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/phitop/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should give empty output")
	}

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)
	svg := CanvasToSVG(c, 2)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("%d circles, want 2", n)
	}
	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Error("size should be pixels times scale")
	}
	if !strings.Contains(svg, `cx="15.0" cy="15.0"`) {
		t.Error("last pixel misplaced")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	if TrajectoryToSVG([]Point{{0, 0}}, 100, 100, "#fff") != "" {
		t.Error("single point should give empty output")
	}

	points := []Point{{0, 0}, {1, 0}, {math.NaN(), 2}, {1, 1}}
	svg := TrajectoryToSVG(points, 200, 100, "#ff0000")

	if !strings.Contains(svg, `stroke="#ff0000"`) {
		t.Error("stroke colour missing")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("non-finite point written")
	}
	if n := strings.Count(svg, " L"); n != 2 {
		t.Errorf("%d line segments, want 2", n)
	}
	// Equal scale: the unit square spans 100/1.2 pixels both ways.
	if !strings.Contains(svg, "M58.3,91.7") {
		t.Errorf("unexpected start point:\n%s", svg)
	}
}
