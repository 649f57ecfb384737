package report

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.5", "$1,234.50"},
		{"0", "$0.00"},
		{"0.07", "$0.07"},
		{"999.999", "$1,000.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-12.3", "-$12.30"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := FormatCurrency(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Errorf("FormatCurrency(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{7302, "7,302"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		if got := FormatCount(tt.in); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	result, err := Aggregate([]RawRecord{
		rec("2024-06-01", "1500", 10, "Books", "North"),
		rec("2024-06-02", "500", 10, "Home", "South"),
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	s := result.Summarize()
	if s.TotalSales != "$2,000.00" {
		t.Errorf("TotalSales = %q", s.TotalSales)
	}
	if s.TotalOrders != "20" {
		t.Errorf("TotalOrders = %q", s.TotalOrders)
	}
	if s.AvgOrderValue != "$100.00" {
		t.Errorf("AvgOrderValue = %q", s.AvgOrderValue)
	}
	if s.BestDay != "$1,500.00 (2024-06-01)" {
		t.Errorf("BestDay = %q", s.BestDay)
	}
	if s.Records != 2 {
		t.Errorf("Records = %d", s.Records)
	}
}
