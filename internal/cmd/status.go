package cmd

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hargabyte/salesreport/internal/store"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show data source and recent report runs",
	Long: `Show the configured data source, how much data it holds, and the most
recent report runs with their artifacts, notification outcome and any
failure stage.

Examples:
  reportgen status                 # Last 10 runs
  reportgen status --limit 3       # Last 3 runs
  reportgen status --format json   # JSON output for scripts`,
	RunE: runStatus,
}

var statusLimit int

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "Number of runs to show")
}

// StatusOutput represents the status output structure
type StatusOutput struct {
	Database DatabaseStatus `yaml:"database" json:"database"`
	Runs     []RunStatus    `yaml:"runs" json:"runs"`
}

// DatabaseStatus describes the data source.
type DatabaseStatus struct {
	Backend   string `yaml:"backend" json:"backend"`
	Path      string `yaml:"path" json:"path"`
	Sales     int    `yaml:"sales_records" json:"sales_records"`
	Customers int    `yaml:"customers" json:"customers"`
}

// RunStatus is one history row with a relative start time.
type RunStatus struct {
	store.RunRecord `yaml:",inline"`
	Age             string `yaml:"age" json:"age"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := context.Background()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	out, err := collectStatus(ctx, s, statusLimit, time.Now())
	if err != nil {
		return err
	}
	return printResult(cmd, out)
}

func collectStatus(ctx context.Context, s *store.Store, limit int, now time.Time) (*StatusOutput, error) {
	out := &StatusOutput{
		Database: DatabaseStatus{Backend: s.Backend(), Path: s.Path()},
		Runs:     []RunStatus{},
	}

	var err error
	if out.Database.Sales, err = s.CountSales(ctx); err != nil {
		return nil, err
	}
	if out.Database.Customers, err = s.CountCustomers(ctx); err != nil {
		return nil, err
	}

	runs, err := s.RecentRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		out.Runs = append(out.Runs, RunStatus{
			RunRecord: r,
			Age:       humanize.RelTime(r.StartedAt, now, "ago", "from now"),
		})
	}
	return out, nil
}
