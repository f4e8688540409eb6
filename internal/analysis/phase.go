package analysis

import (
	"strings"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// PhasePortrait2D holds a planar projection of a trajectory.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []struct{ X, Y float64 }
}

// PortraitFromSeries pairs two recorded state columns, so stored runs can be
// rendered without re-integrating.
func PortraitFromSeries(xs, ys []float64) *PhasePortrait2D {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	portrait := &PhasePortrait2D{
		XIndex: 0,
		YIndex: 1,
		Points: make([]struct{ X, Y float64 }, n),
	}
	for i := 0; i < n; i++ {
		portrait.Points[i] = struct{ X, Y float64 }{X: xs[i], Y: ys[i]}
	}
	return portrait
}

// GeneratePhasePortrait integrates the system with a fixed-step stepper and
// records the (xIdx, yIdx) projection of the trajectory.
func GeneratePhasePortrait(
	sys dynamo.System[scalar.Real],
	integ dynamo.Stepper[scalar.Real],
	x0 dynamo.Vector[scalar.Real],
	xIdx, yIdx int,
	dt, duration float64,
) *PhasePortrait2D {
	if xIdx >= len(x0) || yIdx >= len(x0) {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]struct{ X, Y float64 }, 0, int(duration/dt)),
	}

	x := x0.Clone()
	t := 0.0

	for t < duration {
		x = integ.Step(sys, x, t, dt)
		t += dt

		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: x[xIdx].Float64(),
			Y: x[yIdx].Float64(),
		})
	}

	return portrait
}

// PhasePortraitToASCII renders the trajectory onto a width-by-height rune
// canvas, with axes drawn where they cross the view.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	// Pad 10% so the trajectory never hugs the frame.
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
