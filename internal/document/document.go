// Package document composes the printable PDF sales report.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/hargabyte/salesreport/internal/report"
)

// DefaultTitle is used when a template has no title.
const DefaultTitle = "Sales Performance Report"

// FileName returns the document name for a run on day.
func FileName(day time.Time) string {
	return "sales_report_" + day.Format("20060102") + ".pdf"
}

// Layout, in millimetres on A4 portrait.
const (
	pageWidth    = 210.0
	margin       = 20.0
	labelColumn  = 76.2  // 3in
	valueColumn  = 50.8  // 2in
	chartWidth   = 152.4 // 6in
	chartHeight  = 114.3 // 4.5in
	rowHeight    = 8.0
	bodyFontSize = 11.0
)

type rgb struct{ r, g, b int }

var (
	titleBlue  = rgb{46, 134, 171}  // #2E86AB
	headerFill = rgb{46, 134, 171}  // #2E86AB
	bodyFill   = rgb{245, 245, 220} // beige
	textBlack  = rgb{0, 0, 0}
	white      = rgb{255, 255, 255}
)

// Composer builds report documents.
type Composer struct {
	Title string
	// Now supplies the run date; defaults to time.Now.
	Now func() time.Time
}

// NewComposer returns a composer using title for the document heading.
func NewComposer(title string) *Composer {
	return &Composer{Title: title}
}

func (c *Composer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Compose writes the PDF to dest and returns dest. The charts section is
// included only when chartPath names an existing file.
func (c *Composer) Compose(result *report.AggregationResult, chartPath, dest string) (string, error) {
	pdf := c.build(result, chartPath)
	if err := pdf.Error(); err != nil {
		return "", fmt.Errorf("compose document: %w", err)
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", report.NewWriteError(dest, err)
		}
	}
	if err := pdf.OutputFileAndClose(dest); err != nil {
		return "", report.NewWriteError(dest, err)
	}
	return dest, nil
}

// textFunc converts UTF-8 text to the code page of the core fonts.
type textFunc func(string) string

func (c *Composer) build(result *report.AggregationResult, chartPath string) *fpdf.Fpdf {
	now := c.now()
	title := c.Title
	if title == "" {
		title = DefaultTitle
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := textFunc(pdf.UnicodeTranslatorFromDescriptor(""))
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(title, true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		setText(pdf, textBlack)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	writeTitle(pdf, tr, title, now)
	writeSummary(pdf, tr, result)
	writeKPITable(pdf, tr, result)

	if chartPath != "" {
		if _, err := os.Stat(chartPath); err == nil {
			writeCharts(pdf, chartPath)
		}
	}
	return pdf
}

func writeTitle(pdf *fpdf.Fpdf, tr textFunc, title string, now time.Time) {
	pdf.SetFont("Helvetica", "B", 24)
	setText(pdf, titleBlue)
	pdf.CellFormat(0, 14, tr(title), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	setText(pdf, textBlack)
	pdf.CellFormat(0, 8, tr("Generated on "+now.Format("January 2, 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(10)
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 16)
	setText(pdf, titleBlue)
	pdf.CellFormat(0, 10, text, "", 1, "L", false, 0, "")
	setText(pdf, textBlack)
	pdf.Ln(2)
}

func writeSummary(pdf *fpdf.Fpdf, tr textFunc, result *report.AggregationResult) {
	heading(pdf, "Executive Summary")

	pdf.SetFont("Helvetica", "", bodyFontSize)
	pdf.MultiCell(0, 6, tr(summaryText(result)), "", "J", false)
	pdf.Ln(2)
	for _, line := range highlights(result) {
		pdf.MultiCell(0, 6, tr("• "+line), "", "L", false)
	}
	pdf.Ln(8)
}

func writeKPITable(pdf *fpdf.Fpdf, tr textFunc, result *report.AggregationResult) {
	heading(pdf, "Key Performance Indicators")

	left := (pageWidth - labelColumn - valueColumn) / 2
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)

	pdf.SetX(left)
	pdf.SetFont("Helvetica", "B", 12)
	setFill(pdf, headerFill)
	setText(pdf, white)
	pdf.CellFormat(labelColumn, rowHeight+2, "Metric", "1", 0, "C", true, 0, "")
	pdf.CellFormat(valueColumn, rowHeight+2, "Value", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	setFill(pdf, bodyFill)
	setText(pdf, textBlack)
	for _, row := range kpiRows(result) {
		pdf.SetX(left)
		pdf.CellFormat(labelColumn, rowHeight, tr(row[0]), "1", 0, "L", true, 0, "")
		pdf.CellFormat(valueColumn, rowHeight, tr(row[1]), "1", 1, "R", true, 0, "")
	}
	pdf.Ln(10)
}

func writeCharts(pdf *fpdf.Fpdf, chartPath string) {
	// Keep the heading on the same page as the image.
	_, pageHeight := pdf.GetPageSize()
	if pdf.GetY()+12+chartHeight > pageHeight-margin {
		pdf.AddPage()
	}

	heading(pdf, "Performance Charts")
	pdf.ImageOptions(chartPath, (pageWidth-chartWidth)/2, 0, chartWidth, chartHeight, true,
		fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}, 0, "")
}

// summaryText is the executive summary paragraph.
func summaryText(result *report.AggregationResult) string {
	return fmt.Sprintf(
		"This report analyzes sales performance across %s sales records. "+
			"Total sales reached %s from %s orders, an average order value of %s. "+
			"Daily sales averaged %s.",
		report.FormatCount(int64(result.RecordCount)),
		report.FormatCurrency(result.TotalSales),
		report.FormatCount(result.TotalOrders),
		report.FormatCurrency(result.AvgOrderValue),
		report.FormatCurrency(result.DailyAvgSales),
	)
}

func highlights(result *report.AggregationResult) []string {
	var lines []string
	if len(result.CategoryPerformance) > 0 {
		top := result.CategoryPerformance[0]
		lines = append(lines, fmt.Sprintf("Top category: %s (%s)", top.Label, report.FormatCurrency(top.Amount)))
	}
	if len(result.RegionalPerformance) > 0 {
		top := result.RegionalPerformance[0]
		lines = append(lines, fmt.Sprintf("Top region: %s (%s)", top.Label, report.FormatCurrency(top.Amount)))
	}
	lines = append(lines, "Best sales day: "+report.FormatDay(result.BestDay))
	return lines
}

// kpiRows returns the indicator table body as label/value pairs.
func kpiRows(result *report.AggregationResult) [][2]string {
	return [][2]string{
		{"Total Sales", report.FormatCurrency(result.TotalSales)},
		{"Total Orders", report.FormatCount(result.TotalOrders)},
		{"Average Order Value", report.FormatCurrency(result.AvgOrderValue)},
		{"Daily Average Sales", report.FormatCurrency(result.DailyAvgSales)},
		{"Best Sales Day", report.FormatDay(result.BestDay)},
		{"Worst Sales Day", report.FormatDay(result.WorstDay)},
	}
}

func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
