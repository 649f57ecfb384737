// Package dashboard renders the interactive single-file HTML dashboard.
package dashboard

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/hargabyte/salesreport/internal/report"
)

// FileName is the dashboard name inside the output directory.
const FileName = "interactive_dashboard.html"

// PageTitle is the browser title of the dashboard.
const PageTitle = "Sales Performance Dashboard"

// Chart element IDs. Fixed so repeated renders of the same input are identical.
// go-echarts derives JavaScript variable names from them, so they must be
// valid identifiers.
const (
	DailyChartID    = "daily_sales"
	CategoryChartID = "category_performance"
	RegionChartID   = "regional_distribution"
	MonthlyChartID  = "monthly_performance"
)

var (
	lineColor     = "#2E86AB"
	categoryColor = "#A23B72"
	monthlyColor  = "#F18F01"
	monthLabels   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

const (
	chartWidth  = "720px"
	chartHeight = "420px"
)

// regionColors returns the pie palette. go-echarts reverses the slice it is
// given, so every chart needs its own copy.
func regionColors() opts.Colors {
	return opts.Colors{"#F18F01", "#C73E1D", "#2E86AB", "#A23B72", "#F24236"}
}

// Renderer builds the dashboard page.
type Renderer struct {
	// AssetsHost loads the ECharts runtime from a remote host instead of
	// inlining it.
	AssetsHost string

	// Runtime is the ECharts script inlined into the page when AssetsHost
	// is empty. Without one the page falls back to the go-echarts CDN.
	Runtime []byte
}

// NewRenderer returns a dashboard renderer. An empty host inlines the
// embedded ECharts runtime.
func NewRenderer(host string) *Renderer {
	return &Renderer{AssetsHost: host, Runtime: EmbeddedRuntime()}
}

// Render writes the dashboard to dest and returns dest.
func (r *Renderer) Render(records []report.RawRecord, result *report.AggregationResult, dest string) (string, error) {
	page := r.page(records, result)

	inline := r.AssetsHost == "" && len(r.Runtime) > 0
	if inline {
		page.ClearPresetJSAssets()
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return "", fmt.Errorf("render dashboard: %w", err)
	}
	html := buf.Bytes()
	if inline {
		html = inlineScript(html, r.Runtime)
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", report.NewWriteError(dest, err)
		}
	}
	if err := os.WriteFile(dest, html, 0644); err != nil {
		return "", report.NewWriteError(dest, err)
	}
	return dest, nil
}

func (r *Renderer) page(records []report.RawRecord, result *report.AggregationResult) *components.Page {
	page := components.NewPage()
	page.PageTitle = PageTitle
	if r.AssetsHost != "" {
		page.AssetsHost = r.AssetsHost
	}
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		r.dailyChart(records),
		r.categoryChart(result.CategoryPerformance),
		r.regionChart(result.RegionalPerformance),
		r.monthlyChart(result.FullYear()),
	)
	return page
}

func (r *Renderer) init(id string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID:    id,
		Width:      chartWidth,
		Height:     chartHeight,
		AssetsHost: r.AssetsHost,
	})
}

func (r *Renderer) dailyChart(records []report.RawRecord) *charts.Line {
	days := report.DailySales(records)
	x := make([]string, len(days))
	y := make([]opts.LineData, len(days))
	for i, d := range days {
		x[i] = d.Date.Format(report.DateLayout)
		y[i] = opts.LineData{Value: d.SalesAmount.Round(2).InexactFloat64()}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		r.init(DailyChartID),
		charts.WithTitleOpts(opts.Title{Title: "Daily Sales Trend"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", Start: 0, End: 100},
			opts.DataZoom{Type: "slider", Start: 0, End: 100},
		),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Sales ($)"}),
	)
	line.SetXAxis(x).AddSeries("Daily Sales", y,
		charts.WithLineStyleOpts(opts.LineStyle{Color: lineColor, Width: 2}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: lineColor}),
	)
	return line
}

func (r *Renderer) categoryChart(categories []report.LabelAmount) *charts.Bar {
	x := make([]string, len(categories))
	y := make([]opts.BarData, len(categories))
	for i, c := range categories {
		x[i] = c.Label
		y[i] = opts.BarData{Value: c.Amount.Round(2).InexactFloat64()}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		r.init(CategoryChartID),
		charts.WithTitleOpts(opts.Title{Title: "Sales by Product Category"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Sales ($)"}),
	)
	bar.SetXAxis(x).AddSeries("Category Sales", y,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: categoryColor}),
	)
	return bar
}

func (r *Renderer) regionChart(regions []report.LabelAmount) *charts.Pie {
	data := make([]opts.PieData, len(regions))
	for i, reg := range regions {
		data[i] = opts.PieData{Name: reg.Label, Value: reg.Amount.Round(2).InexactFloat64()}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		r.init(RegionChartID),
		charts.WithTitleOpts(opts.Title{Title: "Sales Distribution by Region"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithColorsOpts(regionColors()),
	)
	pie.AddSeries("Regional Sales", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
		charts.WithPieChartOpts(opts.PieChart{Radius: "60%"}),
	)
	return pie
}

func (r *Renderer) monthlyChart(year [12]report.MonthTotals) *charts.Bar {
	y := make([]opts.BarData, len(year))
	for i, m := range year {
		y[i] = opts.BarData{Value: m.SalesAmount.Round(2).InexactFloat64()}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		r.init(MonthlyChartID),
		charts.WithTitleOpts(opts.Title{Title: "Monthly Sales Performance"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Sales ($)"}),
	)
	bar.SetXAxis(monthLabels).AddSeries("Monthly Sales", y,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: monthlyColor}),
	)
	return bar
}
