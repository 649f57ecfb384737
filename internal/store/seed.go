package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hargabyte/salesreport/internal/report"
)

// Sample data labels
var (
	SampleCategories = []string{"Electronics", "Clothing", "Books", "Home", "Sports"}
	SampleRegions    = []string{"North", "South", "East", "West", "Central"}
	sampleGenders    = []string{"M", "F"}
	sampleLocations  = []string{"Urban", "Suburban", "Rural"}
)

// SeedOptions controls sample data generation.
type SeedOptions struct {
	Seed      int64
	Start     time.Time // first sales day
	Days      int       // number of consecutive sales days
	Customers int
	Now       time.Time // reference for customer acquisition dates
}

// DefaultSeedOptions returns one calendar year (2024) of sales and 1000 customers.
func DefaultSeedOptions(seed int64) SeedOptions {
	return SeedOptions{
		Seed:      seed,
		Start:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Days:      366,
		Customers: 1000,
		Now:       time.Now().UTC(),
	}
}

// SeedResult reports how many rows were generated.
type SeedResult struct {
	Sales     int `yaml:"sales" json:"sales"`
	Customers int `yaml:"customers" json:"customers"`
}

// Seed replaces sales and customer rows with generated sample data in a
// single transaction. Output is deterministic for a given SeedOptions.
func (s *Store) Seed(ctx context.Context, opts SeedOptions) (*SeedResult, error) {
	sales := GenerateSales(opts)
	customers := GenerateCustomers(opts)

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := clearData(ctx, tx); err != nil {
			return err
		}
		if err := insertSales(ctx, tx, sales); err != nil {
			return fmt.Errorf("seed sales: %w", err)
		}
		if err := insertCustomers(ctx, tx, customers); err != nil {
			return fmt.Errorf("seed customers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SeedResult{Sales: len(sales), Customers: len(customers)}, nil
}

// SeedIfEmpty seeds the store only when the sales table has no rows.
func (s *Store) SeedIfEmpty(ctx context.Context, opts SeedOptions) (bool, error) {
	n, err := s.CountSales(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.Seed(ctx, opts); err != nil {
		return false, err
	}
	return true, nil
}

// GenerateSales produces one record per day with a seasonal baseline
// (1000 +/- 200 over the year), normal noise, and Poisson order and
// customer counts.
func GenerateSales(opts SeedOptions) []report.RawRecord {
	src := rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)^0x9e3779b97f4a7c15)
	rng := rand.New(src)

	records := make([]report.RawRecord, 0, opts.Days)
	for i := 0; i < opts.Days; i++ {
		date := opts.Start.AddDate(0, 0, i)

		base := 1000 + math.Sin(float64(date.YearDay())*2*math.Pi/365)*200
		noise := distuv.Normal{Mu: base, Sigma: 150, Src: rng}
		daily := math.Max(0, noise.Rand())
		amount := decimal.NewFromFloat(daily).Round(2)

		records = append(records, report.RawRecord{
			Date:        date,
			SalesAmount: amount,
			Orders:      poisson(rng, daily/50),
			Customers:   poisson(rng, daily/100),
			Category:    SampleCategories[rng.IntN(len(SampleCategories))],
			Region:      SampleRegions[rng.IntN(len(SampleRegions))],
		})
	}
	return records
}

// GenerateCustomers produces the sibling customer dataset.
func GenerateCustomers(opts SeedOptions) []report.CustomerRecord {
	src := rand.NewPCG(uint64(opts.Seed)+1, uint64(opts.Seed)^0x2545f4914f6cdd1d)
	rng := rand.New(src)
	value := distuv.Exponential{Rate: 1.0 / 500, Src: rng}

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	customers := make([]report.CustomerRecord, 0, opts.Customers)
	for i := 0; i < opts.Customers; i++ {
		customers = append(customers, report.CustomerRecord{
			CustomerID:      fmt.Sprintf("CUST_%04d", i),
			Age:             18 + rng.IntN(62),
			Gender:          sampleGenders[rng.IntN(len(sampleGenders))],
			Location:        sampleLocations[rng.IntN(len(sampleLocations))],
			LifetimeValue:   decimal.NewFromFloat(value.Rand()).Round(2),
			AcquisitionDate: today.AddDate(0, 0, -(1 + rng.IntN(364))),
		})
	}
	return customers
}

func poisson(rng *rand.Rand, lambda float64) int64 {
	if lambda <= 0 {
		return 0
	}
	return int64(distuv.Poisson{Lambda: lambda, Src: rng}.Rand())
}
