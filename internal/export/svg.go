// Package export renders stored trajectories into portable formats.
package export

import (
	"fmt"
	"strings"
)

var seriesColors = []string{"#00ff87", "#5fd7ff", "#ff5f87", "#ffd75f"}

type bounds struct {
	min, max float64
}

func boundsOf(vals ...[]float64) bounds {
	b := bounds{min: vals[0][0], max: vals[0][0]}
	for _, series := range vals {
		for _, v := range series {
			if v < b.min {
				b.min = v
			}
			if v > b.max {
				b.max = v
			}
		}
	}
	return b
}

// pad widens the range by 10% each side; a degenerate range opens to unit
// width so constant series still land mid-chart.
func (b bounds) pad() bounds {
	span := b.max - b.min
	if span == 0 {
		span = 1
	}
	return bounds{min: b.min - span*0.1, max: b.max + span*0.1}
}

func (b bounds) span() float64 { return b.max - b.min }

func svgHeader(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func polyline(sb *strings.Builder, xs, ys []float64, bx, by bounds, width, height int, color string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
	for i := range xs {
		x := (xs[i] - bx.min) / bx.span() * float64(width)
		y := float64(height) - (ys[i]-by.min)/by.span()*float64(height)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// TimeSeriesSVG draws every state component against time, one colored
// polyline per component with a small legend in the top-left corner.
func TimeSeriesSVG(times []float64, states [][]float64, width, height int) string {
	if len(times) < 2 || len(states) != len(times) || len(states[0]) == 0 {
		return ""
	}
	dim := len(states[0])

	series := make([][]float64, dim)
	for v := 0; v < dim; v++ {
		series[v] = make([]float64, len(states))
		for i := range states {
			series[v][i] = states[i][v]
		}
	}

	bx := boundsOf(times).pad()
	by := boundsOf(series...).pad()

	var sb strings.Builder
	svgHeader(&sb, width, height)
	for v, data := range series {
		color := seriesColors[v%len(seriesColors)]
		polyline(&sb, times, data, bx, by, width, height, color)
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">x%d</text>
`, 16+14*v, color, v)
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// PhaseSVG draws one state component against another as a single trail.
func PhaseSVG(xs, ys []float64, width, height int) string {
	if len(xs) < 2 || len(xs) != len(ys) {
		return ""
	}

	bx := boundsOf(xs).pad()
	by := boundsOf(ys).pad()

	var sb strings.Builder
	svgHeader(&sb, width, height)
	polyline(&sb, xs, ys, bx, by, width, height, seriesColors[0])
	sb.WriteString("</svg>")
	return sb.String()
}
