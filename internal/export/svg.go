// Package export renders trajectories and wireframe frames as SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/phitop/internal/viz"
)

// Point is a position in plot coordinates, y up.
type Point struct{ X, Y float64 }

// CanvasToSVG draws every set dot of a braille canvas as a circle, scale
// pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.Pixels()
	width := float64(pw) * scale
	height := float64(ph) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff88">
`, width, height, width, height)

	r := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws points as one polyline fitted into width by height
// with equal scale on both axes. Non-finite points are dropped.
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	finite := make([]Point, 0, len(points))
	for _, p := range points {
		if isFinite(p.X) && isFinite(p.Y) {
			finite = append(finite, p)
		}
	}
	if len(finite) < 2 {
		return ""
	}

	minX, maxX := finite[0].X, finite[0].X
	minY, maxY := finite[0].Y, finite[0].Y
	for _, p := range finite {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	scale := math.Min(float64(width), float64(height)) / span

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, strokeColor)

	for i, p := range finite {
		x := float64(width)/2 + (p.X-cx)*scale
		y := float64(height)/2 - (p.Y-cy)*scale
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
