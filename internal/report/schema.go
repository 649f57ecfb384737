// Package report provides the data model and aggregation for sales reports.
//
// Raw sales records are reduced into an AggregationResult, an immutable
// snapshot consumed by the chart, dashboard and document renderers. The
// types here are shared by every stage of the report pipeline.
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date layout used for record dates.
const DateLayout = "2006-01-02"

// RawRecord is one dated transactional observation.
type RawRecord struct {
	// Date is the calendar day of the observation (time of day is ignored).
	Date time.Time `yaml:"date" json:"date"`

	// SalesAmount is the revenue for the day, never negative.
	SalesAmount decimal.Decimal `yaml:"sales_amount" json:"sales_amount"`

	Orders    int64 `yaml:"orders" json:"orders"`
	Customers int64 `yaml:"customers" json:"customers"`

	// Category is the product category label (Electronics, Books, ...).
	Category string `yaml:"category" json:"category"`

	// Region is the sales region label (North, South, ...).
	Region string `yaml:"region" json:"region"`
}

// CustomerRecord is a row of the sibling customer dataset. It is not used by
// the sales KPIs.
type CustomerRecord struct {
	CustomerID      string          `yaml:"customer_id" json:"customer_id"`
	Age             int             `yaml:"age" json:"age"`
	Gender          string          `yaml:"gender" json:"gender"`
	Location        string          `yaml:"location" json:"location"`
	LifetimeValue   decimal.Decimal `yaml:"lifetime_value" json:"lifetime_value"`
	AcquisitionDate time.Time       `yaml:"acquisition_date" json:"acquisition_date"`
}

// MonthTotals holds the sums for one calendar month (1-12), independent of year.
type MonthTotals struct {
	Month       time.Month      `yaml:"month" json:"month"`
	SalesAmount decimal.Decimal `yaml:"sales_amount" json:"sales_amount"`
	Orders      int64           `yaml:"orders" json:"orders"`
	Customers   int64           `yaml:"customers" json:"customers"`
}

// LabelAmount is a summed sales amount for a category or region label.
type LabelAmount struct {
	Label  string          `yaml:"label" json:"label"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
}

// DailyTotal is the summed sales amount of a single calendar day.
type DailyTotal struct {
	Date        time.Time
	SalesAmount decimal.Decimal
}

// AggregationResult is the summary of one batch of raw records.
// It is built once per pipeline run and never mutated afterwards.
type AggregationResult struct {
	TotalSales    decimal.Decimal `yaml:"total_sales" json:"total_sales"`
	TotalOrders   int64           `yaml:"total_orders" json:"total_orders"`
	AvgOrderValue decimal.Decimal `yaml:"avg_order_value" json:"avg_order_value"`
	DailyAvgSales decimal.Decimal `yaml:"daily_avg_sales" json:"daily_avg_sales"`
	RecordCount   int             `yaml:"record_count" json:"record_count"`

	BestDay  RawRecord `yaml:"best_day" json:"best_day"`
	WorstDay RawRecord `yaml:"worst_day" json:"worst_day"`

	// MonthlyTrends contains only observed months, ascending by month number.
	MonthlyTrends []MonthTotals `yaml:"monthly_trends" json:"monthly_trends"`

	// CategoryPerformance and RegionalPerformance are sorted descending by
	// amount; ties keep the order in which labels were first seen.
	CategoryPerformance []LabelAmount `yaml:"category_performance" json:"category_performance"`
	RegionalPerformance []LabelAmount `yaml:"regional_performance" json:"regional_performance"`
}

// FullYear returns monthly totals for all twelve months, January first.
// Months absent from the input are zero.
func (r *AggregationResult) FullYear() [12]MonthTotals {
	var year [12]MonthTotals
	for i := range year {
		year[i] = MonthTotals{Month: time.Month(i + 1), SalesAmount: decimal.Zero}
	}
	for _, m := range r.MonthlyTrends {
		year[m.Month-1] = m
	}
	return year
}

// Summary is a flat, formatted view of the KPIs, suitable for printing.
type Summary struct {
	TotalSales    string `yaml:"total_sales" json:"total_sales"`
	TotalOrders   string `yaml:"total_orders" json:"total_orders"`
	AvgOrderValue string `yaml:"avg_order_value" json:"avg_order_value"`
	DailyAvgSales string `yaml:"daily_avg_sales" json:"daily_avg_sales"`
	BestDay       string `yaml:"best_day" json:"best_day"`
	WorstDay      string `yaml:"worst_day" json:"worst_day"`
	Records       int    `yaml:"records" json:"records"`
}

// Summarize formats the headline KPIs of r.
func (r *AggregationResult) Summarize() Summary {
	return Summary{
		TotalSales:    FormatCurrency(r.TotalSales),
		TotalOrders:   FormatCount(r.TotalOrders),
		AvgOrderValue: FormatCurrency(r.AvgOrderValue),
		DailyAvgSales: FormatCurrency(r.DailyAvgSales),
		BestDay:       FormatDay(r.BestDay),
		WorstDay:      FormatDay(r.WorstDay),
		Records:       r.RecordCount,
	}
}
