package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Aggregate reduces records into an AggregationResult.
//
// Records need not be sorted. Best and worst days are the first records
// holding the maximum and minimum sales amount in iteration order. Monthly
// trends group by month number only, so different years share a month.
func Aggregate(records []RawRecord) (*AggregationResult, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	result := &AggregationResult{
		TotalSales:  decimal.Zero,
		RecordCount: len(records),
		BestDay:     records[0],
		WorstDay:    records[0],
	}

	months := make(map[time.Month]*MonthTotals)
	categories := newLabelSums()
	regions := newLabelSums()

	for _, r := range records {
		result.TotalSales = result.TotalSales.Add(r.SalesAmount)
		result.TotalOrders += r.Orders

		if r.SalesAmount.GreaterThan(result.BestDay.SalesAmount) {
			result.BestDay = r
		}
		if r.SalesAmount.LessThan(result.WorstDay.SalesAmount) {
			result.WorstDay = r
		}

		m := r.Date.Month()
		mt, ok := months[m]
		if !ok {
			mt = &MonthTotals{Month: m, SalesAmount: decimal.Zero}
			months[m] = mt
		}
		mt.SalesAmount = mt.SalesAmount.Add(r.SalesAmount)
		mt.Orders += r.Orders
		mt.Customers += r.Customers

		categories.add(r.Category, r.SalesAmount)
		regions.add(r.Region, r.SalesAmount)
	}

	if result.TotalOrders == 0 {
		return nil, ErrDivisionByZero
	}

	result.AvgOrderValue = result.TotalSales.Div(decimal.NewFromInt(result.TotalOrders))
	result.DailyAvgSales = result.TotalSales.Div(decimal.NewFromInt(int64(len(records))))

	result.MonthlyTrends = make([]MonthTotals, 0, len(months))
	for m := time.January; m <= time.December; m++ {
		if mt, ok := months[m]; ok {
			result.MonthlyTrends = append(result.MonthlyTrends, *mt)
		}
	}

	result.CategoryPerformance = categories.sorted()
	result.RegionalPerformance = regions.sorted()

	return result, nil
}

// DailySales sums sales per calendar day, ascending by date.
func DailySales(records []RawRecord) []DailyTotal {
	index := make(map[string]int)
	var days []DailyTotal
	for _, r := range records {
		key := r.Date.Format(DateLayout)
		i, ok := index[key]
		if !ok {
			y, m, d := r.Date.Date()
			i = len(days)
			index[key] = i
			days = append(days, DailyTotal{
				Date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
				SalesAmount: decimal.Zero,
			})
		}
		days[i].SalesAmount = days[i].SalesAmount.Add(r.SalesAmount)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

// labelSums accumulates amounts per label, remembering first-seen order.
type labelSums struct {
	index map[string]int
	sums  []LabelAmount
}

func newLabelSums() *labelSums {
	return &labelSums{index: make(map[string]int)}
}

func (l *labelSums) add(label string, amount decimal.Decimal) {
	i, ok := l.index[label]
	if !ok {
		i = len(l.sums)
		l.index[label] = i
		l.sums = append(l.sums, LabelAmount{Label: label, Amount: decimal.Zero})
	}
	l.sums[i].Amount = l.sums[i].Amount.Add(amount)
}

// sorted returns the sums descending by amount. The sort is stable, so equal
// amounts keep first-seen order.
func (l *labelSums) sorted() []LabelAmount {
	out := make([]LabelAmount, len(l.sums))
	copy(out, l.sums)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}
