package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart is a plot.Plotter drawing proportional wedges with percentage
// labels. Wedges start at twelve o'clock and run counter-clockwise.
type pieChart struct {
	Labels []string
	Values []float64
	Colors []color.Color
}

// arcSteps is the number of polygon segments per full circle.
const arcSteps = 180

// Plot implements plot.Plotter.
func (pc *pieChart) Plot(c draw.Canvas, p *plot.Plot) {
	total := 0.0
	for _, v := range pc.Values {
		total += v
	}
	if total <= 0 {
		return
	}

	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	radius := vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))) / 2 * 0.75

	labelStyle := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(11)),
		XAlign:  text.XCenter,
		YAlign:  text.YCenter,
		Handler: plot.DefaultTextHandler,
	}

	start := math.Pi / 2
	for i, v := range pc.Values {
		sweep := v / total * 2 * math.Pi
		fill := pc.Colors[i%len(pc.Colors)]

		c.FillPolygon(fill, wedge(center, radius, start, sweep))

		mid := start + sweep/2
		at := vg.Point{
			X: center.X + radius*1.18*vg.Length(math.Cos(mid)),
			Y: center.Y + radius*1.18*vg.Length(math.Sin(mid)),
		}
		c.FillText(labelStyle, at, fmt.Sprintf("%s\n%.1f%%", pc.Labels[i], v/total*100))

		start += sweep
	}
}

// wedge returns the outline of a circular sector.
func wedge(center vg.Point, radius vg.Length, start, sweep float64) []vg.Point {
	steps := int(math.Ceil(sweep / (2 * math.Pi) * arcSteps))
	if steps < 1 {
		steps = 1
	}

	pts := make([]vg.Point, 0, steps+2)
	pts = append(pts, center)
	for s := 0; s <= steps; s++ {
		a := start + sweep*float64(s)/float64(steps)
		pts = append(pts, vg.Point{
			X: center.X + radius*vg.Length(math.Cos(a)),
			Y: center.Y + radius*vg.Length(math.Sin(a)),
		})
	}
	return pts
}
