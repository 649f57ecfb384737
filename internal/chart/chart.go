// Package chart renders the static four-panel sales chart image.
package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/hargabyte/salesreport/internal/report"
)

// FileName is the chart image name inside the output directory.
const FileName = "sales_analysis_charts.png"

// Panel palette
var (
	Blue    = color.RGBA{R: 0x2E, G: 0x86, B: 0xAB, A: 0xFF}
	Magenta = color.RGBA{R: 0xA2, G: 0x3B, B: 0x72, A: 0xFF}
	Orange  = color.RGBA{R: 0xF1, G: 0x8F, B: 0x01, A: 0xFF}
	Red     = color.RGBA{R: 0xC7, G: 0x3E, B: 0x1D, A: 0xFF}
	Scarlet = color.RGBA{R: 0xF2, G: 0x42, B: 0x36, A: 0xFF}

	// PiePalette colours regional wedges in order, cycling when needed.
	PiePalette = []color.Color{Orange, Red, Blue, Magenta, Scarlet}
)

// MonthLabels are the abbreviated month names used on the monthly panel.
var MonthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

const (
	imageWidth  = 15 * vg.Inch
	imageHeight = 12 * vg.Inch
	imageDPI    = 150
)

// Renderer draws the 2x2 chart grid:
//
//	daily sales trend    | sales by category
//	regional pie         | monthly sales
type Renderer struct{}

// NewRenderer returns a chart renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render writes the chart image to dest and returns dest.
func (r *Renderer) Render(records []report.RawRecord, result *report.AggregationResult, dest string) (string, error) {
	plots, err := buildPanels(records, result)
	if err != nil {
		return "", fmt.Errorf("build chart panels: %w", err)
	}

	img := vgimg.NewWith(vgimg.UseWH(imageWidth, imageHeight), vgimg.UseDPI(imageDPI))
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Centimeter,
		PadY:      vg.Centimeter,
		PadTop:    vg.Points(10),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
	}

	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", report.NewWriteError(dest, err)
		}
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", report.NewWriteError(dest, err)
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return "", report.NewWriteError(dest, err)
	}
	if err := f.Close(); err != nil {
		return "", report.NewWriteError(dest, err)
	}

	return dest, nil
}

func buildPanels(records []report.RawRecord, result *report.AggregationResult) ([][]*plot.Plot, error) {
	daily, err := dailyPanel(records)
	if err != nil {
		return nil, err
	}
	category, err := barPanel("Sales by Product Category", "Category",
		labels(result.CategoryPerformance), amounts(result.CategoryPerformance), Magenta)
	if err != nil {
		return nil, err
	}
	region := regionalPanel(result.RegionalPerformance)

	year := result.FullYear()
	monthly := make([]float64, len(year))
	for i, m := range year {
		monthly[i] = m.SalesAmount.InexactFloat64()
	}
	months, err := barPanel("Monthly Sales Performance", "Month", MonthLabels, monthly, Orange)
	if err != nil {
		return nil, err
	}

	return [][]*plot.Plot{
		{daily, category},
		{region, months},
	}, nil
}

func newPanel(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Title.TextStyle.Font.Weight = xfont.WeightBold
	p.Title.Padding = vg.Points(6)
	return p
}

func dailyPanel(records []report.RawRecord) (*plot.Plot, error) {
	p := newPanel("Daily Sales Trend")
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Sales Amount ($)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02", Time: plot.UTCUnixTime}

	grid := plotter.NewGrid()
	grid.Vertical.Color = color.Gray{Y: 0xD8}
	grid.Horizontal.Color = color.Gray{Y: 0xD8}
	p.Add(grid)

	days := report.DailySales(records)
	pts := make(plotter.XYs, len(days))
	for i, d := range days {
		pts[i].X = float64(d.Date.Unix())
		pts[i].Y = d.SalesAmount.InexactFloat64()
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("daily sales line: %w", err)
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = Blue
	p.Add(line)

	return p, nil
}

func barPanel(title, xLabel string, names []string, values []float64, fill color.Color) (*plot.Plot, error) {
	p := newPanel(title)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Sales Amount ($)"

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(28))
	if err != nil {
		return nil, fmt.Errorf("%s bars: %w", title, err)
	}
	bars.Color = fill
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)

	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	return p, nil
}

func regionalPanel(regions []report.LabelAmount) *plot.Plot {
	p := newPanel("Sales Distribution by Region")
	p.HideAxes()
	p.Add(&pieChart{
		Labels: labels(regions),
		Values: amounts(regions),
		Colors: PiePalette,
	})
	return p
}

func labels(items []report.LabelAmount) []string {
	out := make([]string, len(items))
	for i, la := range items {
		out[i] = la.Label
	}
	return out
}

func amounts(items []report.LabelAmount) []float64 {
	out := make([]float64, len(items))
	for i, la := range items {
		out[i] = la.Amount.InexactFloat64()
	}
	return out
}
