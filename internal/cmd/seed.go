package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hargabyte/salesreport/internal/logger"
	"github.com/hargabyte/salesreport/internal/store"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate sample sales and customer data",
	Long: `Replace the sales and customers tables with generated sample data.

Sales follow a seasonal baseline with random noise; order and customer
counts are Poisson distributed. The same seed always produces the same data.

Examples:
  reportgen seed                      # One year from 2024-01-01, seed from config
  reportgen seed --seed 7 --days 90   # 90 days with seed 7
  reportgen seed --start 2025-01-01   # Start on another day`,
	RunE: runSeed,
}

var (
	seedValue     int64
	seedDays      int
	seedCustomers int
	seedStart     string
)

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "Random seed (default: storage.seed from config)")
	seedCmd.Flags().IntVar(&seedDays, "days", 366, "Number of consecutive sales days")
	seedCmd.Flags().IntVar(&seedCustomers, "customers", 1000, "Number of customers")
	seedCmd.Flags().StringVar(&seedStart, "start", "2024-01-01", "First sales day (YYYY-MM-DD)")
}

// SeedOutput is printed after seeding.
type SeedOutput struct {
	Database  string `yaml:"database" json:"database"`
	Seed      int64  `yaml:"seed" json:"seed"`
	Start     string `yaml:"start" json:"start"`
	Sales     int    `yaml:"sales" json:"sales"`
	Customers int    `yaml:"customers" json:"customers"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	if seedCustomers < 0 {
		return fmt.Errorf("--customers must not be negative")
	}
	start, err := time.Parse("2006-01-02", seedStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}

	cfg := loadConfig()
	opts := store.DefaultSeedOptions(cfg.Storage.Seed)
	if cmd.Flags().Changed("seed") {
		opts.Seed = seedValue
	}
	opts.Start = start
	opts.Days = seedDays
	opts.Customers = seedCustomers

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Seed(context.Background(), opts)
	if err != nil {
		return err
	}
	logger.Get("seed").WithField("sales", res.Sales).WithField("customers", res.Customers).Info("sample data generated")

	return printResult(cmd, SeedOutput{
		Database:  s.Path(),
		Seed:      opts.Seed,
		Start:     seedStart,
		Sales:     res.Sales,
		Customers: res.Customers,
	})
}
